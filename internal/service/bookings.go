package service

import (
	"context"
	"strings"
	"time"

	"holidaze/internal/availability"
	apperrors "holidaze/internal/errors"
	"holidaze/internal/logger"
	"holidaze/internal/metrics"
	"holidaze/internal/models"
)

type BookingService struct {
	api     API
	events  *eventPublisher
	profile *ProfileService
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewBookingService(deps Deps, events *eventPublisher, profile *ProfileService) *BookingService {
	return &BookingService{
		api:     deps.API,
		events:  events,
		profile: profile,
		metrics: deps.Metrics,
		now:     deps.Now,
	}
}

// Create books a venue. Dates and guest count are checked against the venue
// before the booking is sent.
func (s *BookingService) Create(ctx context.Context, sessionID string, creds models.Credentials, req *models.CreateBookingRequest) (*models.Booking, error) {
	venueID := strings.TrimSpace(req.VenueID)
	if venueID == "" {
		return nil, apperrors.Validation("venueId", "Venue is required.")
	}
	from, to, err := parseRange(req.DateFrom, req.DateTo)
	if err != nil {
		return nil, err
	}
	if req.Guests < 1 {
		return nil, apperrors.Validation("guests", "Guests must be at least 1.")
	}

	venue, err := s.api.GetVenue(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if err := availability.ValidateGuests(req.Guests, venue.MaxGuests); err != nil {
		return nil, err
	}
	booked := availability.BookedDates(venue.Bookings)
	if err := availability.ValidateRange(from, to, booked, availability.DateOf(s.now())); err != nil {
		return nil, err
	}

	booking, err := s.api.CreateBooking(ctx, creds.AccessToken, &models.BookingRequest{
		DateFrom: from.Time(),
		DateTo:   to.Time(),
		Guests:   req.Guests,
		VenueID:  venueID,
	})
	s.metrics.Mutation("booking.create", err)
	if err != nil {
		return nil, err
	}
	if booking.VenueID == "" {
		booking.VenueID = venueID
	}

	s.profile.dropView(sessionID)
	s.events.bookingCreated(ctx, booking, creds.ProfileName)
	logger.WithContext(ctx).Info("Booking created", "booking_id", booking.ID, "venue_id", venueID)
	return booking, nil
}

// Delete cancels a booking. When the profile page is open its booking list
// is updated and returned; otherwise the result is nil.
func (s *BookingService) Delete(ctx context.Context, sessionID string, creds models.Credentials, id string) ([]models.Booking, error) {
	err := s.api.DeleteBooking(ctx, creds.AccessToken, id)
	s.metrics.Mutation("booking.delete", err)
	if err != nil {
		return nil, err
	}

	s.events.bookingDeleted(ctx, id, creds.ProfileName)
	logger.WithContext(ctx).Info("Booking deleted", "booking_id", id)
	return s.profile.bookingRemoved(sessionID, creds.ProfileName, id), nil
}
