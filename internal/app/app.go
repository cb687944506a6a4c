package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/campus-id/portal-auth/internal/auth"
	"github.com/campus-id/portal-auth/internal/config"
	"github.com/campus-id/portal-auth/internal/http/api/portal"
)

// NewEngine assembles the gin engine with all portal routes registered.
func NewEngine(svc *auth.Service, cfg config.Config) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	portal.RegisterPortalRoutes(engine, svc, cfg)
	return engine
}

// RunServer boots the portal API server and blocks until the context is
// canceled or the listener fails.
func RunServer(ctx context.Context, cfg config.Config) error {
	if level, errParse := log.ParseLevel(cfg.LogLevel); errParse == nil {
		log.SetLevel(level)
	}

	svc := auth.NewService(nil, nil)
	engine := NewEngine(svc, cfg)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	log.Infof("portal auth server listening on :%d", cfg.Port)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			return errShutdown
		}
		return nil
	case errServe := <-errCh:
		if errors.Is(errServe, http.ErrServerClosed) {
			return nil
		}
		return errServe
	}
}
