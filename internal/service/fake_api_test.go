package service

import (
	"context"
	"sync"

	apperrors "holidaze/internal/errors"
	"holidaze/internal/models"
)

// fakeAPI is an in-memory stand-in for the Noroff API
type fakeAPI struct {
	mu sync.Mutex

	venues   map[string]*models.Venue
	profiles map[string]*models.Profile
	bookings map[string][]models.Booking
	pages    [][]models.Venue

	loginResult *models.LoginResult
	err         error // returned by every mutation when set
	calls       []string
	lastBooking *models.BookingRequest
	lastVenue   *models.VenueRequest
	lastProfile *models.ProfileUpdateRequest
	registered  *models.RegisterRequest
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		venues:   map[string]*models.Venue{},
		profiles: map[string]*models.Profile{},
		bookings: map[string][]models.Booking{},
	}
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (f *fakeAPI) ListVenues(_ context.Context, page, _ int) ([]models.Venue, models.PageMeta, error) {
	f.record("venues.list")
	if page > len(f.pages) {
		return nil, models.PageMeta{IsLastPage: true}, nil
	}
	return f.pages[page-1], models.PageMeta{IsLastPage: page == len(f.pages), CurrentPage: page}, nil
}

func (f *fakeAPI) Login(_ context.Context, _, _ string) (*models.LoginResult, error) {
	f.record("auth.login")
	if f.err != nil {
		return nil, f.err
	}
	return f.loginResult, nil
}

func (f *fakeAPI) Register(_ context.Context, req *models.RegisterRequest) (*models.Profile, error) {
	f.record("auth.register")
	f.registered = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Profile{Name: req.Name, Email: req.Email, Avatar: req.Avatar}, nil
}

func (f *fakeAPI) GetVenue(_ context.Context, id string) (*models.Venue, error) {
	f.record("venues.get")
	v, ok := f.venues[id]
	if !ok {
		return nil, &apperrors.APIRejection{Status: 404, Message: "No venue with such ID"}
	}
	cp := *v
	return &cp, nil
}

func (f *fakeAPI) CreateVenue(_ context.Context, _ string, req *models.VenueRequest) (*models.Venue, error) {
	f.record("venues.create")
	f.lastVenue = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Venue{ID: "new-venue", Name: req.Name, Price: req.Price, MaxGuests: req.MaxGuests}, nil
}

func (f *fakeAPI) UpdateVenue(_ context.Context, _, id string, req *models.VenueRequest) (*models.Venue, error) {
	f.record("venues.update")
	f.lastVenue = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Venue{ID: id, Name: req.Name, Price: req.Price, MaxGuests: req.MaxGuests}, nil
}

func (f *fakeAPI) DeleteVenue(_ context.Context, _, id string) error {
	f.record("venues.delete")
	if f.err != nil {
		return f.err
	}
	delete(f.venues, id)
	return nil
}

func (f *fakeAPI) CreateBooking(_ context.Context, _ string, req *models.BookingRequest) (*models.Booking, error) {
	f.record("bookings.create")
	f.lastBooking = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Booking{ID: "b-new", DateFrom: req.DateFrom, DateTo: req.DateTo, Guests: req.Guests}, nil
}

func (f *fakeAPI) DeleteBooking(_ context.Context, _, _ string) error {
	f.record("bookings.delete")
	return f.err
}

func (f *fakeAPI) GetProfile(_ context.Context, _, name string) (*models.Profile, error) {
	f.record("profiles.get")
	p, ok := f.profiles[name]
	if !ok {
		return nil, &apperrors.APIRejection{Status: 404, Message: "No profile with this name"}
	}
	cp := *p
	return &cp, nil
}

func (f *fakeAPI) UpdateProfile(_ context.Context, _, name string, req *models.ProfileUpdateRequest) (*models.Profile, error) {
	f.record("profiles.update")
	f.lastProfile = req
	if f.err != nil {
		return nil, f.err
	}
	p := *f.profiles[name]
	if req.Bio != nil {
		p.Bio = *req.Bio
	}
	if req.Avatar != nil {
		p.Avatar = req.Avatar
	}
	return &p, nil
}

func (f *fakeAPI) ProfileBookings(_ context.Context, _, name string) ([]models.Booking, error) {
	f.record("profiles.bookings")
	return f.bookings[name], nil
}

func (f *fakeAPI) ProfileVenues(_ context.Context, _, name string) ([]models.Venue, error) {
	f.record("profiles.venues")
	var out []models.Venue
	for _, v := range f.venues {
		if v.OwnerName() == name {
			out = append(out, *v)
		}
	}
	return out, nil
}
