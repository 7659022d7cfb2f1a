// Package notify is the console's transient notification surface. Session
// operations fire success/error messages here and the shell drains whatever
// is still alive at render time.
package notify

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Level classifies a flash message.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Flash is a single transient notification.
type Flash struct {
	ID      string
	Level   Level
	Message string
	At      time.Time
}

// Notifier is the fire-and-forget notification contract consumed by session
// bookkeeping. Calls never block and return nothing.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// FlashCenter keeps flashes in a TTL cache so unread notifications age out
// instead of piling up.
type FlashCenter struct {
	flashes *cache.Cache
	logger  *zap.Logger
}

var _ Notifier = (*FlashCenter)(nil)

// NewFlashCenter creates a flash center whose entries expire after ttl.
func NewFlashCenter(ttl time.Duration, logger *zap.Logger) *FlashCenter {
	return &FlashCenter{
		flashes: cache.New(ttl, 2*ttl),
		logger:  logger,
	}
}

func (f *FlashCenter) Success(message string) {
	f.add(LevelSuccess, message)
}

func (f *FlashCenter) Error(message string) {
	f.add(LevelError, message)
}

func (f *FlashCenter) add(level Level, message string) {
	flash := Flash{
		ID:      uuid.NewString(),
		Level:   level,
		Message: message,
		At:      time.Now(),
	}
	f.flashes.SetDefault(flash.ID, flash)

	if level == LevelError {
		f.logger.Warn("Notification", zap.String("level", string(level)), zap.String("message", message))
	} else {
		f.logger.Info("Notification", zap.String("level", string(level)), zap.String("message", message))
	}
}

// Drain returns all live flashes oldest-first and removes them, so each
// notification is rendered at most once.
func (f *FlashCenter) Drain() []Flash {
	items := f.flashes.Items()
	out := make([]Flash, 0, len(items))
	for id, item := range items {
		flash, ok := item.Object.(Flash)
		if !ok {
			continue
		}
		out = append(out, flash)
		f.flashes.Delete(id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}
