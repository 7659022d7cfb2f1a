package server

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/novamart/admin-console/internal/app/domain/resolver"
	"github.com/novamart/admin-console/internal/app/domain/session"
	"github.com/novamart/admin-console/internal/app/domain/settings"
	"github.com/novamart/admin-console/internal/app/domain/shell"
	"github.com/novamart/admin-console/internal/app/middleware"
)

const serviceName = "admin-console"

// SetupRouter configures and returns the Gin router with all middleware and routes
func SetupRouter(s *Server) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.AccessLogMiddleware(s.logger))
	r.Use(middleware.OTELGinMiddleware(serviceName))
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.SecurityMiddleware())

	tmpl, err := shell.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse shell templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	sessionHandlers := session.NewHandlers(s.sessions, s.flashes, s.cfg, s.logger)
	settingsHandlers := settings.NewHandlers(s.prefs, s.logger)
	shellHandlers := shell.NewHandlers(s.sessions, s.flashes, s.prefs, s.cfg, s.logger)

	guard := resolver.Guard(s.sessions, s.cfg, s.logger)
	pendingGuard := resolver.PendingGuard(s.sessions, s.cfg, s.logger)

	r.GET("/", shellHandlers.Home)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := r.Group("/auth")
	{
		auth.GET("/signin", shellHandlers.SignInPage)
		auth.POST("/signin", sessionHandlers.SignIn)
		auth.POST("/signout", sessionHandlers.SignOut)
	}

	console := r.Group("/console", guard)
	{
		console.GET("", shellHandlers.ConsolePage)
		console.POST("/preferences", settingsHandlers.UpdatePreferences)
	}

	r.GET("/pending", pendingGuard, shellHandlers.PendingPage)

	return r, nil
}
