package portal

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campus-id/portal-auth/internal/auth"
	"github.com/campus-id/portal-auth/internal/config"
	"github.com/campus-id/portal-auth/internal/http/api/portal/handlers"
	"github.com/campus-id/portal-auth/internal/security"
)

// RegisterPortalRoutes registers the portal routes, middleware, and handlers.
func RegisterPortalRoutes(r *gin.Engine, svc *auth.Service, cfg config.Config) {
	if r == nil || svc == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(svc)
	r.GET("/healthz", healthHandler.Healthz)

	portalGroup := r.Group("/v0/portal")

	authHandler := handlers.NewAuthHandler(svc, cfg.JWT, cfg.Demo.ExposeOTP)
	portalGroup.POST("/register", authHandler.Register)
	portalGroup.POST("/login", authHandler.Login)
	portalGroup.POST("/otp/issue", authHandler.IssueOTP)
	portalGroup.POST("/otp/verify", authHandler.VerifyOTP)
	portalGroup.GET("/otp/remaining/:id", authHandler.OTPRemaining)

	authed := portalGroup.Group("")
	authed.Use(sessionAuthMiddleware(svc, cfg.JWT))

	accountHandler := handlers.NewAccountHandler(svc)
	authed.GET("/me", accountHandler.Me)
	authed.GET("/login-history", accountHandler.LoginHistory)
	authed.GET("/security-settings", accountHandler.GetSecuritySettings)
	authed.PUT("/security-settings", accountHandler.UpdateSecuritySettings)
}

// sessionAuthMiddleware validates session tokens and loads the user onto the
// request context.
func sessionAuthMiddleware(svc *auth.Service, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		userID, errParse := security.ParseSessionToken(token, []byte(jwtCfg.Secret))
		if errParse != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		user, errGet := svc.User(userID)
		if errGet != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}

		c.Set("userID", user.ID)
		c.Set("username", user.Username)
		c.Next()
	}
}
