package settings

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/novamart/admin-console/internal/app/models"
)

type Handlers struct {
	repo   PreferencesRepo
	logger *zap.Logger
}

func NewHandlers(repo PreferencesRepo, logger *zap.Logger) *Handlers {
	return &Handlers{repo: repo, logger: logger}
}

// UpdatePreferences handles the preferences form post from the console shell.
func (h *Handlers) UpdatePreferences(c *gin.Context) {
	theme := c.PostForm("theme")
	if theme != "dark" {
		theme = "light"
	}

	prefs := &models.Preferences{
		Theme:        theme,
		SidebarMini:  c.PostForm("sidebarMini") == "on",
		SidebarHover: c.PostForm("sidebarHover") == "on",
	}

	if err := h.repo.Set(c.Request.Context(), prefs); err != nil {
		h.logger.Error("Failed to save preferences", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to save preferences")
		return
	}

	h.logger.Info("Preferences updated",
		zap.String("theme", prefs.Theme),
		zap.Bool("sidebar_mini", prefs.SidebarMini),
		zap.Bool("sidebar_hover", prefs.SidebarHover),
	)
	c.Redirect(http.StatusFound, "/console")
}
