package service

import (
	"context"
	"strings"
	"sync"

	"holidaze/internal/logger"
	"holidaze/internal/metrics"
	"holidaze/internal/models"
	"holidaze/internal/validation"
)

type ProfileService struct {
	api       API
	validator *validation.Validator
	metrics   *metrics.Metrics

	mu    sync.Mutex
	views map[string]*profileView
}

// profileView is the open profile page of one session
type profileView struct {
	mu       sync.Mutex
	profile  models.Profile
	bookings *BookingList
	venues   *VenueList
}

func (v *profileView) response() *models.ProfileResponse {
	v.mu.Lock()
	defer v.mu.Unlock()
	resp := &models.ProfileResponse{
		Profile:  v.profile,
		Bookings: v.bookings.Items(),
	}
	if v.profile.VenueManager {
		resp.Venues = v.venues.Items()
	}
	return resp
}

func NewProfileService(deps Deps) *ProfileService {
	return &ProfileService{
		api:       deps.API,
		validator: deps.Validator,
		metrics:   deps.Metrics,
		views:     make(map[string]*profileView),
	}
}

// View loads the profile with its bookings (oldest stay first) and, for venue
// managers, the venues they own.
func (s *ProfileService) View(ctx context.Context, sessionID string, creds models.Credentials) (*models.ProfileResponse, error) {
	profile, err := s.api.GetProfile(ctx, creds.AccessToken, creds.ProfileName)
	if err != nil {
		return nil, err
	}
	bookings, err := s.api.ProfileBookings(ctx, creds.AccessToken, creds.ProfileName)
	if err != nil {
		return nil, err
	}

	var venues []models.Venue
	if profile.VenueManager {
		venues, err = s.api.ProfileVenues(ctx, creds.AccessToken, creds.ProfileName)
		if err != nil {
			return nil, err
		}
	}

	view := &profileView{
		profile:  *profile,
		bookings: NewBookingList(bookings),
		venues:   NewVenueList(venues),
	}
	s.mu.Lock()
	s.views[sessionID] = view
	s.mu.Unlock()

	return view.response(), nil
}

// Update changes bio and avatar. An empty avatar leaves the current one.
func (s *ProfileService) Update(ctx context.Context, sessionID string, creds models.Credentials, form *models.ProfileForm) (*models.Profile, error) {
	bio := form.Bio
	req := &models.ProfileUpdateRequest{Bio: &bio}
	if url := strings.TrimSpace(form.Avatar); url != "" {
		req.Avatar = &models.Media{URL: url, Alt: UserAvatarAlt}
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	profile, err := s.api.UpdateProfile(ctx, creds.AccessToken, creds.ProfileName, req)
	s.metrics.Mutation("profile.update", err)
	if err != nil {
		return nil, err
	}

	if view := s.view(sessionID, creds.ProfileName); view != nil {
		view.mu.Lock()
		view.profile.Bio = profile.Bio
		view.profile.Avatar = profile.Avatar
		view.mu.Unlock()
	}

	logger.WithContext(ctx).Info("Profile updated", "profile", creds.ProfileName)
	return profile, nil
}

// view returns the open page of a session if it belongs to profile
func (s *ProfileService) view(sessionID, profile string) *profileView {
	s.mu.Lock()
	view := s.views[sessionID]
	s.mu.Unlock()
	if view == nil {
		return nil
	}

	view.mu.Lock()
	defer view.mu.Unlock()
	if !strings.EqualFold(view.profile.Name, profile) {
		return nil
	}
	return view
}

func (s *ProfileService) dropView(sessionID string) {
	s.mu.Lock()
	delete(s.views, sessionID)
	s.mu.Unlock()
}

// Forget drops the cached page of a session, e.g. on logout
func (s *ProfileService) Forget(sessionID string) {
	s.dropView(sessionID)
}

func (s *ProfileService) bookingRemoved(sessionID, profile, id string) []models.Booking {
	view := s.view(sessionID, profile)
	if view == nil {
		return nil
	}
	view.mu.Lock()
	defer view.mu.Unlock()
	view.bookings.Remove(id)
	return view.bookings.Items()
}

// VenueRemoved updates the open profile page after a confirmed venue delete
func (s *ProfileService) VenueRemoved(sessionID, profile, id string) []models.Venue {
	view := s.view(sessionID, profile)
	if view == nil {
		return nil
	}
	view.mu.Lock()
	defer view.mu.Unlock()
	view.venues.Remove(id)
	return view.venues.Items()
}

// VenueSaved replaces an edited venue on the open profile page
func (s *ProfileService) VenueSaved(sessionID, profile string, venue *models.Venue) {
	view := s.view(sessionID, profile)
	if view == nil {
		return
	}
	view.mu.Lock()
	defer view.mu.Unlock()
	view.venues.Replace(*venue)
}
