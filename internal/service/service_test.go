package service

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "holidaze/internal/errors"
	"holidaze/internal/filter"
	"holidaze/internal/metrics"
	"holidaze/internal/models"
	"holidaze/internal/session"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	manager  = models.Credentials{AccessToken: "tok-m", ProfileName: "mona"}
	guest    = models.Credentials{AccessToken: "tok-g", ProfileName: "gus"}
)

type capturePublisher struct {
	subjects []string
}

func (p *capturePublisher) Publish(subject string, _ any) error {
	p.subjects = append(p.subjects, subject)
	return nil
}

func setup(t *testing.T) (*Services, *fakeAPI, *capturePublisher, *metrics.Metrics) {
	t.Helper()
	api := newFakeAPI()
	api.profiles["mona"] = &models.Profile{Name: "mona", VenueManager: true}
	api.profiles["gus"] = &models.Profile{Name: "gus"}
	api.venues["v1"] = &models.Venue{
		ID: "v1", Name: "Fjord Cabin", Price: 100, MaxGuests: 4,
		Owner: &models.ProfileRef{Name: "mona"},
		Bookings: []models.Booking{{
			ID:       "b1",
			DateFrom: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
			DateTo:   time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC),
		}},
	}

	pub := &capturePublisher{}
	m := metrics.New()
	svc := NewServices(Deps{
		API:       api,
		Publisher: pub,
		Metrics:   m,
		Now:       func() time.Time { return fixedNow },
	})
	return svc, api, pub, m
}

func requireValidation(t *testing.T, err error, field string) {
	t.Helper()
	var v *apperrors.ValidationError
	require.True(t, errors.As(err, &v), "expected validation error, got %v", err)
	assert.Equal(t, field, v.Field)
}

func TestCreateBookingValidatesBeforeSubmitting(t *testing.T) {
	svc, api, _, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Bookings.Create(ctx, "s1", guest, &models.CreateBookingRequest{VenueID: "v1", Guests: 1})
	requireValidation(t, err, "dates")

	_, err = svc.Bookings.Create(ctx, "s1", guest, &models.CreateBookingRequest{
		VenueID: "v1", DateFrom: "2024-06-12", DateTo: "2024-06-11", Guests: 1,
	})
	requireValidation(t, err, "dates")

	_, err = svc.Bookings.Create(ctx, "s1", guest, &models.CreateBookingRequest{
		VenueID: "v1", DateFrom: "2024-06-11", DateTo: "2024-06-12", Guests: 5,
	})
	requireValidation(t, err, "guests")
	assert.Equal(t, "Guests must be between 1 and 4.", apperrors.Message(err))

	// range crosses an existing booking
	_, err = svc.Bookings.Create(ctx, "s1", guest, &models.CreateBookingRequest{
		VenueID: "v1", DateFrom: "2024-06-14", DateTo: "2024-06-15", Guests: 2,
	})
	requireValidation(t, err, "dates")

	assert.False(t, api.called("bookings.create"))
}

func TestCreateBookingSubmitsDayBoundaries(t *testing.T) {
	svc, api, pub, m := setup(t)

	booking, err := svc.Bookings.Create(context.Background(), "s1", guest, &models.CreateBookingRequest{
		VenueID: "v1", DateFrom: "2024-06-11", DateTo: "2024-06-13", Guests: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, "b-new", booking.ID)
	assert.Equal(t, "v1", booking.VenueID)
	assert.Equal(t, time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC), api.lastBooking.DateFrom)
	assert.Equal(t, time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC), api.lastBooking.DateTo)
	assert.Equal(t, []string{models.EventBookingCreated}, pub.subjects)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mutations.WithLabelValues("booking.create", "ok")))
}

func TestCreateBookingSurfacesRejection(t *testing.T) {
	svc, api, pub, m := setup(t)
	api.err = &apperrors.APIRejection{Status: 400, Message: "Booking failed, try again later"}

	_, err := svc.Bookings.Create(context.Background(), "s1", guest, &models.CreateBookingRequest{
		VenueID: "v1", DateFrom: "2024-06-11", DateTo: "2024-06-11", Guests: 1,
	})

	assert.Equal(t, "Booking failed, try again later", apperrors.Message(err))
	assert.Empty(t, pub.subjects)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mutations.WithLabelValues("booking.create", "failed")))
}

func TestQuote(t *testing.T) {
	svc, _, _, _ := setup(t)

	quote, err := svc.Venues.Quote(context.Background(), "v1", &models.QuoteRequest{
		DateFrom: "2024-06-01", DateTo: "2024-06-03",
	})
	require.NoError(t, err)
	assert.Equal(t, &models.QuoteResponse{Nights: 3, Total: 300}, quote)

	_, err = svc.Venues.Quote(context.Background(), "v1", &models.QuoteRequest{
		DateFrom: "2024-06-01", DateTo: "2024-06-01", Guests: 9,
	})
	requireValidation(t, err, "guests")
}

func TestDetailsMarksBookedDatesAndOwnership(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	details, err := svc.Venues.Details(ctx, "v1", manager, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-06-15", "2024-06-16"}, details.BookedDates)
	assert.True(t, details.CanBook)
	assert.True(t, details.CanEdit)

	details, err = svc.Venues.Details(ctx, "v1", models.Credentials{}, false)
	require.NoError(t, err)
	assert.False(t, details.CanBook)
	assert.False(t, details.CanEdit)

	_, err = svc.Venues.Details(ctx, "missing", guest, true)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCalendarDefaultsAndLimits(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	days, err := svc.Venues.Calendar(ctx, "v1", "", "")
	require.NoError(t, err)
	assert.Len(t, days, calendarDefaultDays)
	assert.Equal(t, "2024-06-10", days[0].Date)
	assert.True(t, days[0].Selectable, "today is selectable")
	assert.False(t, days[5].Selectable, "2024-06-15 is booked")

	_, err = svc.Venues.Calendar(ctx, "v1", "2024-01-01", "2025-06-01")
	requireValidation(t, err, "to")
}

func TestSearchFiltersDirectory(t *testing.T) {
	svc, api, _, _ := setup(t)
	api.pages = [][]models.Venue{
		{{ID: "a", Name: "Oslo Loft", MaxGuests: 2, Meta: models.Meta{Wifi: true}}},
		{{ID: "b", Name: "Bergen Cabin", MaxGuests: 6}},
	}

	venues, err := svc.Venues.Search(context.Background(), filter.Criteria{Query: "cabin", MinGuests: 1})
	require.NoError(t, err)
	require.Len(t, venues, 1)
	assert.Equal(t, "b", venues[0].ID)

	venues, err = svc.Venues.Search(context.Background(), filter.Criteria{Facilities: filter.Facilities{Wifi: true}})
	require.NoError(t, err)
	require.Len(t, venues, 1)
	assert.Equal(t, "a", venues[0].ID)
}

func TestSearchSeesVenuesChangedElsewhere(t *testing.T) {
	svc, api, _, _ := setup(t)
	ctx := context.Background()
	api.pages = [][]models.Venue{{{ID: "a", Name: "Loft", MaxGuests: 2}}}

	venues, err := svc.Venues.Search(ctx, filter.Criteria{MinGuests: 1})
	require.NoError(t, err)
	require.Len(t, venues, 1)

	// another user creates a venue upstream
	api.pages = [][]models.Venue{{{ID: "b", Name: "New Cabin", MaxGuests: 4}, {ID: "a", Name: "Loft", MaxGuests: 2}}}

	venues, err = svc.Venues.Search(ctx, filter.Criteria{Query: "cabin", MinGuests: 1})
	require.NoError(t, err)
	require.Len(t, venues, 1)
	assert.Equal(t, "b", venues[0].ID)
}

type failingIndex struct{}

func (failingIndex) Search(context.Context, filter.Criteria) ([]models.Venue, error) {
	return nil, errors.New("index down")
}

func TestSearchFallsBackWhenIndexFails(t *testing.T) {
	api := newFakeAPI()
	api.pages = [][]models.Venue{{{ID: "a", Name: "Loft", MaxGuests: 2}}}
	svc := NewServices(Deps{API: api, Index: failingIndex{}})

	venues, err := svc.Venues.Search(context.Background(), filter.Criteria{})
	require.NoError(t, err)
	assert.Len(t, venues, 1)
}

func TestEditorGatesNonManagers(t *testing.T) {
	svc, api, _, _ := setup(t)
	ctx := context.Background()

	status, err := svc.Venues.OpenEditor(ctx, "s1", guest, "")
	require.NoError(t, err)
	assert.Equal(t, EditorNotAuthorized, status.State)

	_, _, err = svc.Venues.Create(ctx, "s1", guest, &models.VenueForm{Name: "x", Price: 1, MaxGuests: 1})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.False(t, api.called("venues.create"))
}

func TestEditorGatesNonOwners(t *testing.T) {
	svc, api, _, _ := setup(t)
	api.profiles["other"] = &models.Profile{Name: "other", VenueManager: true}
	other := models.Credentials{AccessToken: "tok-o", ProfileName: "other"}

	_, _, err := svc.Venues.Update(context.Background(), "s2", other, "v1", &models.VenueForm{Name: "x", Price: 1, MaxGuests: 1})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	err = svc.Venues.Delete(context.Background(), other, "v1")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.False(t, api.called("venues.delete"))
}

func TestEditorIsBoundToAuthorizedProfile(t *testing.T) {
	svc, api, _, _ := setup(t)
	api.profiles["gus"] = &models.Profile{Name: "gus", VenueManager: true}
	ctx := context.Background()

	status, err := svc.Venues.OpenEditor(ctx, "sess", manager, "v1")
	require.NoError(t, err)
	assert.Equal(t, EditorIdle, status.State)

	// another profile logs in on the same session
	gus := models.Credentials{AccessToken: "tok-g", ProfileName: "gus"}
	_, _, err = svc.Venues.Update(ctx, "sess", gus, "v1", &models.VenueForm{Name: "Mine now", Price: 10, MaxGuests: 2})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.False(t, api.called("venues.update"))
}

func TestProfileViewIsBoundToProfile(t *testing.T) {
	svc, api, _, _ := setup(t)
	ctx := context.Background()
	api.bookings["mona"] = []models.Booking{{ID: "b-mona"}}

	_, err := svc.Profile.View(ctx, "sess", manager)
	require.NoError(t, err)

	assert.Nil(t, svc.Profile.bookingRemoved("sess", "gus", "b-mona"))
	assert.Nil(t, svc.Profile.VenueRemoved("sess", "gus", "v1"))
	assert.Len(t, svc.Profile.bookingRemoved("sess", "mona", "missing"), 1)
}

func TestEditorFailureThenRetry(t *testing.T) {
	svc, api, pub, _ := setup(t)
	ctx := context.Background()

	status, err := svc.Venues.OpenEditor(ctx, "s1", manager, "v1")
	require.NoError(t, err)
	assert.Equal(t, EditorIdle, status.State)
	require.NotNil(t, status.Venue)

	// invalid form fails locally and keeps the message
	_, status, err = svc.Venues.Update(ctx, "s1", manager, "v1", &models.VenueForm{Name: "", Price: 10, MaxGuests: 2})
	requireValidation(t, err, "name")
	assert.Equal(t, EditorFailed, status.State)
	assert.Equal(t, "Name is required.", status.Message)
	assert.False(t, api.called("venues.update"))

	// api rejection
	api.err = &apperrors.APIRejection{Status: 400, Message: "could not update venue"}
	_, status, err = svc.Venues.Update(ctx, "s1", manager, "v1", &models.VenueForm{Name: "Cabin", Price: 10, MaxGuests: 2})
	require.Error(t, err)
	assert.Equal(t, EditorFailed, status.State)
	assert.Equal(t, "could not update venue", status.Message)

	api.err = nil
	venue, status, err := svc.Venues.Update(ctx, "s1", manager, "v1", &models.VenueForm{Name: "Cabin", Price: 10, MaxGuests: 2})
	require.NoError(t, err)
	assert.Equal(t, EditorSuccess, status.State)
	assert.Empty(t, status.Message)
	assert.Equal(t, "Cabin", venue.Name)
	assert.Equal(t, []string{models.EventVenueUpdated}, pub.subjects)
}

func TestCreateVenueMapsForm(t *testing.T) {
	svc, api, _, _ := setup(t)
	rating := 4.0

	venue, _, err := svc.Venues.Create(context.Background(), "s1", manager, &models.VenueForm{
		Name: " Loft ", MediaURL: "https://img.example/loft.jpg", MediaAlt: "front",
		City: "Oslo", Price: 80, MaxGuests: 2, Rating: &rating, Wifi: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "new-venue", venue.ID)
	assert.Equal(t, "Loft", api.lastVenue.Name)
	assert.Equal(t, []models.Media{{URL: "https://img.example/loft.jpg", Alt: "front"}}, api.lastVenue.Media)
	assert.True(t, api.lastVenue.Meta.Wifi)
	assert.Equal(t, "Oslo", api.lastVenue.Location.City)
}

func TestLoginStoresCredentials(t *testing.T) {
	svc, api, _, _ := setup(t)
	api.loginResult = &models.LoginResult{Name: "gus", AccessToken: "tok"}
	ctx := context.Background()

	sess, err := session.New(ctx, "s1", session.NewMemoryStore())
	require.NoError(t, err)

	_, err = svc.Auth.Login(ctx, sess, &models.LoginRequest{Email: "gus@stud.noroff.no", Password: "pw"})
	require.NoError(t, err)

	creds, ok := sess.Credentials()
	assert.True(t, ok)
	assert.Equal(t, models.Credentials{AccessToken: "tok", ProfileName: "gus"}, creds)

	require.NoError(t, svc.Auth.Logout(ctx, sess))
	assert.False(t, sess.Authenticated())
}

func TestLoginFailureLeavesSessionAnonymous(t *testing.T) {
	svc, api, _, _ := setup(t)
	api.err = &apperrors.APIRejection{Status: 401, Message: "Invalid email or password"}
	ctx := context.Background()

	sess, err := session.New(ctx, "s1", session.NewMemoryStore())
	require.NoError(t, err)

	_, err = svc.Auth.Login(ctx, sess, &models.LoginRequest{Email: "gus@stud.noroff.no", Password: "pw"})
	assert.Equal(t, "Invalid email or password", apperrors.Message(err))
	assert.False(t, sess.Authenticated())
}

func TestRegister(t *testing.T) {
	svc, api, _, _ := setup(t)
	yes := true
	form := &models.RegisterForm{Name: "newbie", Email: "newbie@stud.noroff.no", Password: "longenough", VenueManager: &yes}

	profile, err := svc.Auth.Register(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, "newbie", profile.Name)
	assert.Equal(t, DefaultAvatarURL, api.registered.Avatar.URL)

	form.Email = "newbie@gmail.com"
	_, err = svc.Auth.Register(context.Background(), form)
	requireValidation(t, err, "email")

	form.Email = "newbie@stud.noroff.no"
	form.VenueManager = nil
	_, err = svc.Auth.Register(context.Background(), form)
	requireValidation(t, err, "venueManager")
}

func TestRegisterHidesCollisionDetails(t *testing.T) {
	svc, api, _, _ := setup(t)
	no := false
	form := &models.RegisterForm{Name: "gus", Email: "gus@stud.noroff.no", Password: "longenough", VenueManager: &no}

	for _, msg := range []string{"Profile already exists", "Email is taken", "Name must be unique"} {
		api.err = &apperrors.APIRejection{Status: 400, Message: msg}
		_, err := svc.Auth.Register(context.Background(), form)
		assert.Equal(t, "Username or email is already in use", apperrors.Message(err), msg)
	}

	api.err = &apperrors.APIRejection{Status: 500, Message: "Server exploded"}
	_, err := svc.Auth.Register(context.Background(), form)
	assert.Equal(t, "Server exploded", apperrors.Message(err))
}

func TestProfileViewAndBookingRemoval(t *testing.T) {
	svc, api, _, _ := setup(t)
	ctx := context.Background()
	api.bookings["mona"] = []models.Booking{
		{ID: "late", DateFrom: time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "early", DateFrom: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
	}

	view, err := svc.Profile.View(ctx, "s1", manager)
	require.NoError(t, err)
	require.Len(t, view.Bookings, 2)
	assert.Equal(t, "early", view.Bookings[0].ID)
	assert.Len(t, view.Venues, 1)

	remaining, err := svc.Bookings.Delete(ctx, "s1", manager, "early")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "late", remaining[0].ID)

	// failed delete leaves the list alone
	api.err = errors.New("boom")
	_, err = svc.Bookings.Delete(ctx, "s1", manager, "late")
	require.Error(t, err)
	assert.Len(t, svc.Profile.bookingRemoved("s1", manager.ProfileName, "nothing"), 1)
}

func TestProfileUpdate(t *testing.T) {
	svc, api, _, _ := setup(t)

	profile, err := svc.Profile.Update(context.Background(), "s1", guest, &models.ProfileForm{
		Bio: "hello", Avatar: "https://img.example/me.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", profile.Bio)
	assert.Equal(t, UserAvatarAlt, api.lastProfile.Avatar.Alt)

	long := make([]byte, 1001)
	for i := range long {
		long[i] = 'x'
	}
	_, err = svc.Profile.Update(context.Background(), "s1", guest, &models.ProfileForm{Bio: string(long)})
	requireValidation(t, err, "bio")
}

func TestLists(t *testing.T) {
	list := NewVenueList([]models.Venue{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}})

	assert.True(t, list.Replace(models.Venue{ID: "b", Name: "B2"}))
	assert.False(t, list.Replace(models.Venue{ID: "zz"}))
	assert.True(t, list.Remove("a"))
	assert.False(t, list.Remove("a"))

	assert.Equal(t, []models.Venue{{ID: "b", Name: "B2"}}, list.Items())
}
