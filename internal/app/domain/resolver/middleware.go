package resolver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/novamart/admin-console/internal/app/models"
	"github.com/novamart/admin-console/internal/pkg/config"
)

// SessionReader is the read-only slice of the session store the guards need.
type SessionReader interface {
	User() *models.User
	Initialized() bool
}

// Guard protects console routes. Only OutcomeConsole passes through.
func Guard(store SessionReader, cfg *config.Config, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		outcome := Resolve(store.User(), store.Initialized())
		switch outcome {
		case OutcomeConsole:
			c.Next()
		case OutcomePendingReview:
			handleAuthRedirect(c, cfg.PendingPath)
		case OutcomeNone:
			// Rehydration has not finished; serve nothing rather than a wrong
			// branch.
			c.Header("Retry-After", "1")
			c.AbortWithStatus(http.StatusServiceUnavailable)
		default:
			logger.Debug("Unauthorized console access", zap.String("outcome", outcome.String()))
			handleAuthRedirect(c, cfg.SignInPath)
		}
	}
}

// PendingGuard protects the pending-review page. Operators who already have
// console access are bounced there; everyone unauthorized goes to sign-in.
func PendingGuard(store SessionReader, cfg *config.Config, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		outcome := Resolve(store.User(), store.Initialized())
		switch outcome {
		case OutcomePendingReview:
			c.Next()
		case OutcomeConsole:
			handleAuthRedirect(c, cfg.LandingPath)
		case OutcomeNone:
			c.Header("Retry-After", "1")
			c.AbortWithStatus(http.StatusServiceUnavailable)
		default:
			logger.Debug("Unauthorized pending-page access", zap.String("outcome", outcome.String()))
			handleAuthRedirect(c, cfg.SignInPath)
		}
	}
}

// handleAuthRedirect handles redirects for both regular and HTMX requests.
func handleAuthRedirect(c *gin.Context, redirectURL string) {
	if c.GetHeader("HX-Request") == "true" {
		// For HTMX requests, use HX-Redirect header to trigger client-side redirect
		c.Header("HX-Redirect", redirectURL)
		c.AbortWithStatus(http.StatusUnauthorized)
	} else {
		c.Redirect(http.StatusFound, redirectURL)
		c.Abort()
	}
}
