package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"holidaze/internal/availability"
	"holidaze/internal/directory"
	apperrors "holidaze/internal/errors"
	"holidaze/internal/filter"
	"holidaze/internal/logger"
	"holidaze/internal/metrics"
	"holidaze/internal/models"
	"holidaze/internal/validation"
)

const (
	calendarDefaultDays = 90
	calendarMaxDays     = 366
)

type VenueService struct {
	api          API
	validator    *validation.Validator
	fetcher      *directory.Fetcher
	pageSize     int
	index        SearchIndex
	events       *eventPublisher
	metrics      *metrics.Metrics
	now          func() time.Time
	homePageSize int

	mu      sync.Mutex
	editors map[string]*Editor
}

func NewVenueService(deps Deps, fetcher *directory.Fetcher, events *eventPublisher) *VenueService {
	return &VenueService{
		api:          deps.API,
		validator:    deps.Validator,
		fetcher:      fetcher,
		pageSize:     deps.PageSize,
		index:        deps.Index,
		events:       events,
		metrics:      deps.Metrics,
		now:          deps.Now,
		homePageSize: deps.HomePageSize,
		editors:      make(map[string]*Editor),
	}
}

func (s *VenueService) today() availability.Date {
	return availability.DateOf(s.now())
}

// Page returns one page of the newest venues
func (s *VenueService) Page(ctx context.Context, page, limit int) (*models.VenuePageResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.homePageSize
	}

	venues, last, err := s.fetcher.FetchPage(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	return &models.VenuePageResponse{Venues: venues, Page: page, IsLastPage: last}, nil
}

// Search filters the whole directory. The Elasticsearch mirror is used when
// configured; otherwise, or if it fails, every search walks the upstream
// directory again so that venues changed elsewhere are visible.
func (s *VenueService) Search(ctx context.Context, criteria filter.Criteria) ([]models.Venue, error) {
	if s.index != nil {
		venues, err := s.index.Search(ctx, criteria)
		if err == nil {
			return venues, nil
		}
		logger.WithContext(ctx).Warn("Venue index search failed, filtering directory", "error", err)
	}

	venues, err := s.fetcher.FetchAll(ctx, s.pageSize)
	if err != nil {
		return nil, err
	}
	return filter.Apply(venues, criteria), nil
}

// Details returns a venue with its unavailable days
func (s *VenueService) Details(ctx context.Context, id string, creds models.Credentials, authenticated bool) (*models.VenueDetailsResponse, error) {
	venue, err := s.api.GetVenue(ctx, id)
	if err != nil {
		return nil, err
	}

	booked := availability.BookedDates(venue.Bookings)
	return &models.VenueDetailsResponse{
		Venue:       *venue,
		BookedDates: booked.Strings(),
		CanBook:     authenticated,
		CanEdit:     authenticated && isOwner(venue, creds.ProfileName),
	}, nil
}

// Calendar lists selectable days between from and to (YYYY-MM-DD). Empty
// bounds default to today and 90 days on.
func (s *VenueService) Calendar(ctx context.Context, id, from, to string) ([]availability.Day, error) {
	today := s.today()

	start := today
	if from != "" {
		d, err := availability.ParseDate(from)
		if err != nil {
			return nil, apperrors.Validation("from", "Invalid start date.")
		}
		start = d
	}
	end := start.AddDays(calendarDefaultDays - 1)
	if to != "" {
		d, err := availability.ParseDate(to)
		if err != nil {
			return nil, apperrors.Validation("to", "Invalid end date.")
		}
		end = d
	}
	if end.Before(start) {
		return nil, apperrors.Validation("to", "End date must be on or after the start date.")
	}
	if start.DaysUntil(end) >= calendarMaxDays {
		return nil, apperrors.Validation("to", "Calendar range is limited to one year.")
	}

	venue, err := s.api.GetVenue(ctx, id)
	if err != nil {
		return nil, err
	}
	return availability.Calendar(start, end, availability.BookedDates(venue.Bookings), today), nil
}

// Quote prices a stay without booking it
func (s *VenueService) Quote(ctx context.Context, id string, req *models.QuoteRequest) (*models.QuoteResponse, error) {
	from, to, err := parseRange(req.DateFrom, req.DateTo)
	if err != nil {
		return nil, err
	}

	venue, err := s.api.GetVenue(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Guests != 0 {
		if err := availability.ValidateGuests(req.Guests, venue.MaxGuests); err != nil {
			return nil, err
		}
	}

	stay, err := availability.ComputeStay(from, to, venue.Price)
	if err != nil {
		return nil, err
	}
	return &models.QuoteResponse{Nights: stay.Nights, Total: stay.Total}, nil
}

func parseRange(from, to string) (availability.Date, availability.Date, error) {
	if from == "" || to == "" {
		return availability.Date{}, availability.Date{}, apperrors.Validation("dates", "Select start and end date.")
	}
	start, err := availability.ParseDate(from)
	if err != nil {
		return availability.Date{}, availability.Date{}, apperrors.Validation("dateFrom", "Invalid start date.")
	}
	end, err := availability.ParseDate(to)
	if err != nil {
		return availability.Date{}, availability.Date{}, apperrors.Validation("dateTo", "Invalid end date.")
	}
	if end.Before(start) {
		return availability.Date{}, availability.Date{}, apperrors.Validation("dates", "End date must be on or after the start date.")
	}
	return start, end, nil
}

func isOwner(venue *models.Venue, profile string) bool {
	return profile != "" && strings.EqualFold(venue.OwnerName(), profile)
}

// authorize checks the venue-manager role and, for an existing venue, ownership
func (s *VenueService) authorize(ctx context.Context, creds models.Credentials, venueID string) (bool, *models.Venue, error) {
	profile, err := s.api.GetProfile(ctx, creds.AccessToken, creds.ProfileName)
	if err != nil {
		return false, nil, err
	}
	if !profile.VenueManager {
		return false, nil, nil
	}
	if venueID == "" {
		return true, nil, nil
	}

	venue, err := s.api.GetVenue(ctx, venueID)
	if err != nil {
		return false, nil, err
	}
	return isOwner(venue, creds.ProfileName), venue, nil
}

// editorKey binds an open form to the profile that was authorized for it, so a
// different login on the same session never reuses it.
func editorKey(sessionID, profile, venueID string) string {
	if venueID == "" {
		venueID = "new"
	}
	return sessionID + "/" + strings.ToLower(profile) + "/" + venueID
}

// OpenEditor resolves the role for a create (venueID == "") or edit form and
// keeps the editor for the following submit.
func (s *VenueService) OpenEditor(ctx context.Context, sessionID string, creds models.Credentials, venueID string) (EditorStatus, error) {
	editor := NewEditor()

	allowed, venue, err := s.authorize(ctx, creds, venueID)
	if err != nil {
		return editor.Status(), err
	}
	if err := editor.Authorize(allowed, venue); err != nil {
		return editor.Status(), err
	}

	s.mu.Lock()
	s.editors[editorKey(sessionID, creds.ProfileName, venueID)] = editor
	s.mu.Unlock()

	return editor.Status(), nil
}

func (s *VenueService) editor(ctx context.Context, sessionID string, creds models.Credentials, venueID string) (*Editor, error) {
	s.mu.Lock()
	editor, ok := s.editors[editorKey(sessionID, creds.ProfileName, venueID)]
	s.mu.Unlock()
	if ok {
		return editor, nil
	}

	if _, err := s.OpenEditor(ctx, sessionID, creds, venueID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editors[editorKey(sessionID, creds.ProfileName, venueID)], nil
}

func (s *VenueService) closeEditor(sessionID, profile, venueID string) {
	s.mu.Lock()
	delete(s.editors, editorKey(sessionID, profile, venueID))
	s.mu.Unlock()
}

// CloseEditors drops every open form of a session, e.g. on login or logout
func (s *VenueService) CloseEditors(sessionID string) {
	prefix := sessionID + "/"
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.editors {
		if strings.HasPrefix(key, prefix) {
			delete(s.editors, key)
		}
	}
}

// Create submits the create form. Only venue managers may create venues.
func (s *VenueService) Create(ctx context.Context, sessionID string, creds models.Credentials, form *models.VenueForm) (*models.Venue, EditorStatus, error) {
	return s.submit(ctx, sessionID, creds, "", form, models.EventVenueCreated, "venue.create",
		func(ctx context.Context, req *models.VenueRequest) (*models.Venue, error) {
			return s.api.CreateVenue(ctx, creds.AccessToken, req)
		})
}

// Update submits the edit form. Only the owning venue manager may edit.
func (s *VenueService) Update(ctx context.Context, sessionID string, creds models.Credentials, id string, form *models.VenueForm) (*models.Venue, EditorStatus, error) {
	return s.submit(ctx, sessionID, creds, id, form, models.EventVenueUpdated, "venue.update",
		func(ctx context.Context, req *models.VenueRequest) (*models.Venue, error) {
			return s.api.UpdateVenue(ctx, creds.AccessToken, id, req)
		})
}

func (s *VenueService) submit(
	ctx context.Context,
	sessionID string,
	creds models.Credentials,
	venueID string,
	form *models.VenueForm,
	subject, kind string,
	send func(context.Context, *models.VenueRequest) (*models.Venue, error),
) (*models.Venue, EditorStatus, error) {
	editor, err := s.editor(ctx, sessionID, creds, venueID)
	if err != nil {
		return nil, EditorStatus{State: EditorLoadingRole}, err
	}

	venue, err := editor.Submit(ctx, func(ctx context.Context) (*models.Venue, error) {
		req := form.Request()
		if err := s.validator.Validate(req); err != nil {
			return nil, err
		}
		venue, err := send(ctx, req)
		s.metrics.Mutation(kind, err)
		return venue, err
	})
	status := editor.Status()
	if err != nil {
		return nil, status, err
	}

	s.closeEditor(sessionID, creds.ProfileName, venueID)
	s.events.venueChanged(ctx, subject, venue, creds.ProfileName)

	logger.WithContext(ctx).Info("Venue saved", "venue_id", venue.ID, "kind", kind)
	return venue, status, nil
}

// Delete removes a venue owned by the session's profile
func (s *VenueService) Delete(ctx context.Context, creds models.Credentials, id string) error {
	allowed, _, err := s.authorize(ctx, creds, id)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.ErrForbidden
	}

	err = s.api.DeleteVenue(ctx, creds.AccessToken, id)
	s.metrics.Mutation("venue.delete", err)
	if err != nil {
		return err
	}

	s.events.venueDeleted(ctx, id, creds.ProfileName)
	logger.WithContext(ctx).Info("Venue deleted", "venue_id", id)
	return nil
}
