package models

import "time"

// NATS Event Types
const (
	EventSessionChanged = "session.changed"
	EventVenueCreated   = "venue.created"
	EventVenueUpdated   = "venue.updated"
	EventVenueDeleted   = "venue.deleted"
	EventBookingCreated = "booking.created"
	EventBookingDeleted = "booking.deleted"
)

// SessionChangedEvent is published whenever a session logs in or out so that
// other BFF instances serving the same browser re-read the credential store.
type SessionChangedEvent struct {
	SessionID     string    `json:"session_id"`
	Authenticated bool      `json:"authenticated"`
	Origin        string    `json:"origin"`
	Timestamp     time.Time `json:"timestamp"`
}

// VenueChangedEvent covers create and update; Venue carries the confirmed state.
type VenueChangedEvent struct {
	Venue     StoredVenue `json:"venue"`
	Profile   string      `json:"profile"`
	Timestamp time.Time   `json:"timestamp"`
}

// VenueDeletedEvent represents a venue removal by its owner
type VenueDeletedEvent struct {
	VenueID   string    `json:"venue_id"`
	Profile   string    `json:"profile"`
	Timestamp time.Time `json:"timestamp"`
}

// BookingCreatedEvent represents a booking confirmed by the API
type BookingCreatedEvent struct {
	BookingID string    `json:"booking_id"`
	VenueID   string    `json:"venue_id"`
	Profile   string    `json:"profile"`
	DateFrom  time.Time `json:"date_from"`
	DateTo    time.Time `json:"date_to"`
	Guests    int       `json:"guests"`
	Timestamp time.Time `json:"timestamp"`
}

// BookingDeletedEvent represents a booking cancelled by its customer
type BookingDeletedEvent struct {
	BookingID string    `json:"booking_id"`
	Profile   string    `json:"profile"`
	Timestamp time.Time `json:"timestamp"`
}
