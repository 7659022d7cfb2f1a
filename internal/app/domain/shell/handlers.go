package shell

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/novamart/admin-console/internal/app/domain/resolver"
	"github.com/novamart/admin-console/internal/app/domain/session"
	"github.com/novamart/admin-console/internal/app/domain/settings"
	"github.com/novamart/admin-console/internal/app/models"
	"github.com/novamart/admin-console/internal/app/notify"
	"github.com/novamart/admin-console/internal/pkg/config"
)

type Handlers struct {
	store   session.Store
	flashes *notify.FlashCenter
	prefs   settings.PreferencesRepo
	cfg     *config.Config
	logger  *zap.Logger
}

func NewHandlers(store session.Store, flashes *notify.FlashCenter, prefs settings.PreferencesRepo, cfg *config.Config, logger *zap.Logger) *Handlers {
	return &Handlers{
		store:   store,
		flashes: flashes,
		prefs:   prefs,
		cfg:     cfg,
		logger:  logger,
	}
}

// Home sends the operator to wherever the resolver says they belong.
func (h *Handlers) Home(c *gin.Context) {
	switch resolver.Resolve(h.store.User(), h.store.Initialized()) {
	case resolver.OutcomeConsole:
		c.Redirect(http.StatusFound, h.cfg.LandingPath)
	case resolver.OutcomePendingReview:
		c.Redirect(http.StatusFound, h.cfg.PendingPath)
	default:
		c.Redirect(http.StatusFound, h.cfg.SignInPath)
	}
}

// SignInPage renders the sign-in form. An operator who already has console
// access is sent straight to the console.
func (h *Handlers) SignInPage(c *gin.Context) {
	if resolver.Resolve(h.store.User(), h.store.Initialized()) == resolver.OutcomeConsole {
		c.Redirect(http.StatusFound, h.cfg.LandingPath)
		return
	}

	c.HTML(http.StatusOK, "signin.gohtml", gin.H{
		"Title":   "Sign In",
		"Flashes": h.flashes.Drain(),
	})
}

// ConsolePage renders the console shell for admins and approved sellers. The
// resolver guard runs before this handler; it only deals with presentation.
func (h *Handlers) ConsolePage(c *gin.Context) {
	user := h.store.User()

	prefs, err := h.prefs.Get(c.Request.Context())
	if err != nil {
		h.logger.Warn("Failed to load preferences, using defaults", zap.Error(err))
		prefs = models.DefaultPreferences()
	}

	c.HTML(http.StatusOK, "console.gohtml", gin.H{
		"Title":       "Console",
		"User":        user,
		"Preferences": prefs,
		"Flashes":     h.flashes.Drain(),
		"Loading":     h.store.Loading(),
	})
}

// PendingPage renders the restricted page for sellers awaiting review. The
// only action offered is sign-out.
func (h *Handlers) PendingPage(c *gin.Context) {
	c.HTML(http.StatusOK, "pending.gohtml", gin.H{
		"Title":   "Account Under Review",
		"User":    h.store.User(),
		"Flashes": h.flashes.Drain(),
	})
}
