package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/novamart/admin-console/internal/app/notify"
	"github.com/novamart/admin-console/internal/pkg/config"
)

// Handlers exposes the session operations over HTTP form posts.
type Handlers struct {
	store    Store
	notifier notify.Notifier
	cfg      *config.Config
	logger   *zap.Logger
}

func NewHandlers(store Store, notifier notify.Notifier, cfg *config.Config, logger *zap.Logger) *Handlers {
	return &Handlers{
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// SignIn handles the sign-in form post. On success the session store drives
// the redirect through the navigation callback; on failure the operator lands
// back on the form with the flash the store emitted.
func (h *Handlers) SignIn(c *gin.Context) {
	emailOrPhone := c.PostForm("emailOrPhone")
	password := c.PostForm("password")

	if emailOrPhone == "" || password == "" {
		h.logger.Warn("Sign-in attempt with missing fields")
		h.notifier.Error("Email/phone and password are required")
		c.Redirect(http.StatusFound, h.cfg.SignInPath)
		return
	}

	navigated := false
	h.store.Login(c.Request.Context(), LoginInput{
		EmailOrPhone: emailOrPhone,
		Password:     password,
		Navigate: func(path string) {
			navigated = true
			c.Redirect(http.StatusFound, path)
		},
	})

	if !navigated {
		c.Redirect(http.StatusFound, h.cfg.SignInPath)
	}
}

// SignOut handles the sign-out post from both the console shell and the
// pending-review page.
func (h *Handlers) SignOut(c *gin.Context) {
	h.store.Logout(c.Request.Context(), func(path string) {
		c.Redirect(http.StatusFound, path)
	})
}
