package service

import (
	"context"
	"time"

	"holidaze/internal/logger"
	"holidaze/internal/messaging"
	"holidaze/internal/models"
)

// eventPublisher announces confirmed mutations. Publishing is best effort:
// the mutation already succeeded upstream.
type eventPublisher struct {
	publisher messaging.Publisher
}

func newEventPublisher(p messaging.Publisher) *eventPublisher {
	return &eventPublisher{publisher: p}
}

func (e *eventPublisher) publish(ctx context.Context, subject string, data any) {
	if e == nil || e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(subject, data); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event",
			"error", err,
			"event_type", subject)
	}
}

func (e *eventPublisher) venueChanged(ctx context.Context, subject string, venue *models.Venue, profile string) {
	e.publish(ctx, subject, models.VenueChangedEvent{
		Venue:     models.StoredVenue(*venue),
		Profile:   profile,
		Timestamp: time.Now(),
	})
}

func (e *eventPublisher) venueDeleted(ctx context.Context, id, profile string) {
	e.publish(ctx, models.EventVenueDeleted, models.VenueDeletedEvent{
		VenueID:   id,
		Profile:   profile,
		Timestamp: time.Now(),
	})
}

func (e *eventPublisher) bookingCreated(ctx context.Context, b *models.Booking, profile string) {
	e.publish(ctx, models.EventBookingCreated, models.BookingCreatedEvent{
		BookingID: b.ID,
		VenueID:   b.VenueID,
		Profile:   profile,
		DateFrom:  b.DateFrom,
		DateTo:    b.DateTo,
		Guests:    b.Guests,
		Timestamp: time.Now(),
	})
}

func (e *eventPublisher) bookingDeleted(ctx context.Context, id, profile string) {
	e.publish(ctx, models.EventBookingDeleted, models.BookingDeletedEvent{
		BookingID: id,
		Profile:   profile,
		Timestamp: time.Now(),
	})
}
