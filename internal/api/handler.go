package api

import (
	"time"

	"rota-backend/internal/mw"
	"rota-backend/internal/store"
)

// Notifier dispatches an asynchronous push notification about a roster
// change made on someone else's behalf.
type Notifier interface {
	NotifyRotaChange(userID int64, branch string, date time.Time, hour int, added bool)
}

// noopNotifier is used when push notifications are not configured.
type noopNotifier struct{}

func (noopNotifier) NotifyRotaChange(int64, string, time.Time, int, bool) {}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store          store.Store
	cache          *mw.ResponseCache
	notifier       Notifier
	vapidPublicKey string
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, rc *mw.ResponseCache, notifier Notifier, vapidPublicKey string) *Handler {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &Handler{
		store:          s,
		cache:          rc,
		notifier:       notifier,
		vapidPublicKey: vapidPublicKey,
	}
}
