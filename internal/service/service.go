package service

import (
	"context"
	"time"

	"holidaze/internal/directory"
	"holidaze/internal/filter"
	"holidaze/internal/messaging"
	"holidaze/internal/metrics"
	"holidaze/internal/models"
	"holidaze/internal/validation"
)

// API is the Noroff Holidaze API as implemented by external.HolidazeClient
type API interface {
	directory.PageSource

	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
	Register(ctx context.Context, req *models.RegisterRequest) (*models.Profile, error)

	GetVenue(ctx context.Context, id string) (*models.Venue, error)
	CreateVenue(ctx context.Context, token string, req *models.VenueRequest) (*models.Venue, error)
	UpdateVenue(ctx context.Context, token, id string, req *models.VenueRequest) (*models.Venue, error)
	DeleteVenue(ctx context.Context, token, id string) error

	CreateBooking(ctx context.Context, token string, req *models.BookingRequest) (*models.Booking, error)
	DeleteBooking(ctx context.Context, token, id string) error

	GetProfile(ctx context.Context, token, name string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, token, name string, req *models.ProfileUpdateRequest) (*models.Profile, error)
	ProfileBookings(ctx context.Context, token, name string) ([]models.Booking, error)
	ProfileVenues(ctx context.Context, token, name string) ([]models.Venue, error)
}

// SearchIndex is the optional Elasticsearch mirror of the directory
type SearchIndex interface {
	Search(ctx context.Context, criteria filter.Criteria) ([]models.Venue, error)
}

type Services struct {
	Auth     *AuthService
	Venues   *VenueService
	Bookings *BookingService
	Profile  *ProfileService
}

// Deps carries what the services share. Publisher, Index and Metrics may be nil.
type Deps struct {
	API          API
	Validator    *validation.Validator
	Publisher    messaging.Publisher
	Index        SearchIndex
	Metrics      *metrics.Metrics
	PageSize     int
	HomePageSize int
	// Now is the clock used for "today"; defaults to time.Now
	Now func() time.Time
}

func NewServices(deps Deps) *Services {
	if deps.Validator == nil {
		deps.Validator = validation.New()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.PageSize < 1 {
		deps.PageSize = directory.SearchPageSize
	}
	if deps.HomePageSize < 1 {
		deps.HomePageSize = directory.HomePageSize
	}

	fetcher := directory.NewFetcher(deps.API, deps.Metrics)
	events := newEventPublisher(deps.Publisher)

	venueService := NewVenueService(deps, fetcher, events)
	profileService := NewProfileService(deps)

	return &Services{
		Auth:     NewAuthService(deps),
		Venues:   venueService,
		Bookings: NewBookingService(deps, events, profileService),
		Profile:  profileService,
	}
}
