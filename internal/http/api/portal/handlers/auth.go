package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/campus-id/portal-auth/internal/auth"
	"github.com/campus-id/portal-auth/internal/config"
	"github.com/campus-id/portal-auth/internal/security"
)

// AuthHandler manages registration, password login, and the OTP step.
type AuthHandler struct {
	svc       *auth.Service
	jwtCfg    config.JWTConfig
	exposeOTP bool
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(svc *auth.Service, jwtCfg config.JWTConfig, exposeOTP bool) *AuthHandler {
	return &AuthHandler{svc: svc, jwtCfg: jwtCfg, exposeOTP: exposeOTP}
}

// registerRequest defines the request body for registration.
type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// Register creates a new portal account.
func (h *AuthHandler) Register(c *gin.Context) {
	var body registerRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}

	user, errRegister := h.svc.Register(
		strings.TrimSpace(body.Username),
		strings.TrimSpace(body.Email),
		strings.TrimSpace(body.Phone),
		body.Password,
	)
	if errRegister != nil {
		c.JSON(statusForError(errRegister), gin.H{"success": false, "message": errRegister.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully",
		"userId":  user.ID,
	})
}

// loginRequest defines the request body for password login.
type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies a username/password pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}

	userID, errLogin := h.svc.Login(strings.TrimSpace(body.Username), body.Password, auth.LoginMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if errLogin != nil {
		resp := gin.H{"success": false, "message": errLogin.Error()}
		if auth.IsAccountLocked(errLogin) {
			resp["isLocked"] = true
		}
		c.JSON(statusForError(errLogin), resp)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"userId":  userID,
	})
}

// otpIssueRequest defines the request body for OTP issuance.
type otpIssueRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// IssueOTP creates a one-time code for the user. The code itself is returned
// only in demo mode; otherwise delivery is simulated and only the expiry is
// reported.
func (h *AuthHandler) IssueOTP(c *gin.Context) {
	var body otpIssueRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}

	code, expiresAt, errIssue := h.svc.IssueOTP(strings.TrimSpace(body.UserID))
	if errIssue != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to issue OTP"})
		return
	}

	// Stand-in for out-of-band delivery.
	log.WithField("user_id", body.UserID).Infof("one-time code issued: %s", code)

	resp := gin.H{"success": true, "expiresAt": expiresAt.UTC().Format(time.RFC3339)}
	if h.exposeOTP {
		resp["otp"] = code
	} else {
		resp["dispatched"] = true
	}
	c.JSON(http.StatusOK, resp)
}

// otpVerifyRequest defines the request body for OTP verification.
type otpVerifyRequest struct {
	UserID string `json:"userId" binding:"required"`
	Code   string `json:"code" binding:"required"`
}

// VerifyOTP checks a candidate code and establishes a session on success.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var body otpVerifyRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}

	userID := strings.TrimSpace(body.UserID)
	if errVerify := h.svc.VerifyOTP(userID, strings.TrimSpace(body.Code)); errVerify != nil {
		c.JSON(statusForError(errVerify), gin.H{"success": false, "message": errVerify.Error()})
		return
	}

	token, errToken := security.GenerateSessionToken(userID, []byte(h.jwtCfg.Secret), h.sessionValidity(userID))
	if errToken != nil {
		log.WithError(errToken).Error("mint session token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to establish session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "OTP verified successfully",
		"token":   token,
	})
}

// sessionValidity derives the token lifetime from the user's session-timeout
// setting, falling back to the configured expiry.
func (h *AuthHandler) sessionValidity(userID string) time.Duration {
	if timeout := h.svc.SecuritySettings(userID).SessionTimeout; timeout > 0 {
		return time.Duration(timeout) * time.Minute
	}
	return h.jwtCfg.Expiry
}

// OTPRemaining reports the seconds left on the user's OTP session.
func (h *AuthHandler) OTPRemaining(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("id"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "missing user id"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"remainingSeconds": h.svc.OTPRemainingSeconds(userID)})
}

// statusForError maps core errors to HTTP status codes.
func statusForError(err error) int {
	var locked *auth.AccountLockedError
	switch {
	case errors.Is(err, auth.ErrDuplicateIdentity):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.As(err, &locked):
		return http.StatusLocked
	case errors.Is(err, auth.ErrNoOTPSession), errors.Is(err, auth.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrOTPExpired):
		return http.StatusGone
	case errors.Is(err, auth.ErrOTPTooManyAttempts):
		return http.StatusTooManyRequests
	case errors.Is(err, auth.ErrInvalidOTPCode):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
