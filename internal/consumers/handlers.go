package consumers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"holidaze/internal/models"

	"github.com/nats-io/stan.go"
)

// Index is the part of the venue search index the event handlers update
type Index interface {
	Upsert(ctx context.Context, venue *models.Venue) error
	Delete(ctx context.Context, id string) error
}

// message is the subset of *stan.Msg the handlers use
type message interface {
	Ack() error
}

type Handlers struct {
	index   Index
	timeout time.Duration
}

func NewHandlers(index Index, timeout time.Duration) *Handlers {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Handlers{index: index, timeout: timeout}
}

// HandleVenueChanged mirrors a created or updated venue into the index
func (h *Handlers) HandleVenueChanged(m *stan.Msg) {
	h.venueChanged(m, m.Data)
}

// HandleVenueDeleted removes a deleted venue from the index
func (h *Handlers) HandleVenueDeleted(m *stan.Msg) {
	h.venueDeleted(m, m.Data)
}

func (h *Handlers) venueChanged(m message, data []byte) {
	var event models.VenueChangedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		slog.Error("Failed to unmarshal venue changed event", "error", err)
		ack(m) // битое сообщение повторно не обработать
		return
	}

	slog.Info("Processing venue changed event", "venue_id", event.Venue.ID, "profile", event.Profile)

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	venue := models.Venue(event.Venue)
	models.NormalizeVenue(&venue)
	if err := h.index.Upsert(ctx, &venue); err != nil {
		// no ack: the streaming server redelivers after the ack wait
		slog.Error("Failed to index venue", "venue_id", event.Venue.ID, "error", err)
		return
	}

	ack(m)
}

func (h *Handlers) venueDeleted(m message, data []byte) {
	var event models.VenueDeletedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		slog.Error("Failed to unmarshal venue deleted event", "error", err)
		ack(m)
		return
	}

	slog.Info("Processing venue deleted event", "venue_id", event.VenueID, "profile", event.Profile)

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	if err := h.index.Delete(ctx, event.VenueID); err != nil {
		slog.Error("Failed to remove venue from index", "venue_id", event.VenueID, "error", err)
		return
	}

	ack(m)
}

func ack(m message) {
	if err := m.Ack(); err != nil {
		slog.Error("Failed to ack message", "error", err)
	}
}
