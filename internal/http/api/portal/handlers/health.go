package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-id/portal-auth/internal/auth"
)

// HealthHandler serves liveness checks.
type HealthHandler struct {
	svc *auth.Service
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(svc *auth.Service) *HealthHandler {
	return &HealthHandler{svc: svc}
}

// Healthz reports service health.
func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "users": h.svc.UserCount()})
}
