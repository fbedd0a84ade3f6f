package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"holidaze/internal/models"

	"github.com/nats-io/stan.go"
)

// Subscriber is the part of messaging.NATSClient the listener needs
type Subscriber interface {
	Subscribe(subject string, handler stan.MsgHandler) (stan.Subscription, error)
}

// Listen applies session.changed events from other instances to m. Every
// instance subscribes on its own, so each one sees every event.
func Listen(sub Subscriber, m *Manager) (stan.Subscription, error) {
	return sub.Subscribe(models.EventSessionChanged, func(msg *stan.Msg) {
		var event models.SessionChangedEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			slog.Error("Failed to unmarshal session event", "error", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := m.HandleEvent(ctx, event); err != nil {
			slog.Error("Failed to refresh session", "session_id", event.SessionID, "error", err)
		}
	})
}
