package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-id/portal-auth/internal/auth"
	"github.com/campus-id/portal-auth/internal/models"
)

// AccountHandler serves the authenticated account endpoints.
type AccountHandler struct {
	svc *auth.Service
}

// NewAccountHandler constructs an AccountHandler.
func NewAccountHandler(svc *auth.Service) *AccountHandler {
	return &AccountHandler{svc: svc}
}

// sessionUserID returns the user ID placed on the context by the session
// middleware.
func sessionUserID(c *gin.Context) string {
	return c.GetString("userID")
}

// Me returns the authenticated user's record.
func (h *AccountHandler) Me(c *gin.Context) {
	user, errGet := h.svc.User(sessionUserID(c))
	if errGet != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// LoginHistory returns the authenticated user's recorded login attempts,
// most-recent-last.
func (h *AccountHandler) LoginHistory(c *gin.Context) {
	history := h.svc.LoginHistory(sessionUserID(c))
	if history == nil {
		history = []models.LoginAttempt{}
	}
	c.JSON(http.StatusOK, gin.H{"attempts": history})
}

// GetSecuritySettings returns the authenticated user's security settings.
func (h *AccountHandler) GetSecuritySettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.SecuritySettings(sessionUserID(c)))
}

// UpdateSecuritySettings applies a partial settings update.
func (h *AccountHandler) UpdateSecuritySettings(c *gin.Context) {
	var patch models.SecuritySettingsPatch
	if errBind := c.ShouldBindJSON(&patch); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	h.svc.UpdateSecuritySettings(sessionUserID(c), patch)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
