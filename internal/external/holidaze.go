package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "holidaze/internal/errors"
	"holidaze/internal/metrics"
	"holidaze/internal/models"
)

const apiKeyHeader = "X-Noroff-API-Key"

// HolidazeClient talks to the Noroff v2 API (auth + holidaze resources)
type HolidazeClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	metrics    *metrics.Metrics
}

type HolidazeConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration // 0 keeps the transport default
}

func NewHolidazeClient(cfg HolidazeConfig, m *metrics.Metrics) *HolidazeClient {
	httpClient := &http.Client{}
	if cfg.Timeout > 0 {
		httpClient.Timeout = cfg.Timeout
	}

	return &HolidazeClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		metrics:    m,
	}
}

// call describes one round trip
type call struct {
	op       string
	method   string
	path     string
	query    url.Values
	token    string
	body     any
	fallback string
}

func (hc *HolidazeClient) do(ctx context.Context, c call, out any) error {
	var reqBody io.Reader
	if c.body != nil {
		jsonBody, err := json.Marshal(c.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	target := hc.baseURL + c.path
	if len(c.query) > 0 {
		target += "?" + c.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, c.method, target, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if hc.apiKey != "" {
		req.Header.Set(apiKeyHeader, hc.apiKey)
	}

	start := time.Now()
	resp, err := hc.httpClient.Do(req)
	if err != nil {
		hc.metrics.ObserveUpstream(c.op, 0, time.Since(start))
		return &apperrors.NetworkError{Op: c.op, Err: err}
	}
	defer resp.Body.Close()
	hc.metrics.ObserveUpstream(c.op, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return rejection(resp, c.fallback)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// rejection turns a non-2xx answer into a typed error. A 401 caused by the API key is
// a plain rejection; any other 401 means the user's credential is gone.
func rejection(resp *http.Response, fallback string) error {
	var body models.ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)

	message := body.FirstMessage()
	if resp.StatusCode == http.StatusUnauthorized {
		if strings.Contains(message, "API key") {
			return &apperrors.APIRejection{Status: resp.StatusCode, Message: message}
		}
		return &apperrors.AuthError{Message: message}
	}
	if message == "" {
		message = fallback
	}
	return &apperrors.APIRejection{Status: resp.StatusCode, Message: message}
}

// Auth

func (hc *HolidazeClient) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	var result models.Response[models.LoginResult]
	err := hc.do(ctx, call{
		op:       "auth.login",
		method:   http.MethodPost,
		path:     "/auth/login",
		body:     models.LoginRequest{Email: email, Password: password},
		fallback: "wrong email or password",
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result.Data, nil
}

func (hc *HolidazeClient) Register(ctx context.Context, req *models.RegisterRequest) (*models.Profile, error) {
	var result models.Response[models.Profile]
	err := hc.do(ctx, call{
		op:       "auth.register",
		method:   http.MethodPost,
		path:     "/auth/register",
		body:     req,
		fallback: "Registration failed.",
	}, &result)
	if err != nil {
		return nil, err
	}
	models.NormalizeProfile(&result.Data)
	return &result.Data, nil
}

// Venues

// ListVenues returns one page of venues, newest first
func (hc *HolidazeClient) ListVenues(ctx context.Context, page, limit int) ([]models.Venue, models.PageMeta, error) {
	query := url.Values{}
	query.Set("sort", "created")
	query.Set("sortOrder", "desc")
	query.Set("limit", strconv.Itoa(limit))
	query.Set("page", strconv.Itoa(page))

	var result models.Response[[]models.Venue]
	err := hc.do(ctx, call{
		op:       "venues.list",
		method:   http.MethodGet,
		path:     "/holidaze/venues",
		query:    query,
		fallback: "Failed to load venues",
	}, &result)
	if err != nil {
		return nil, models.PageMeta{}, err
	}
	models.NormalizeVenues(result.Data)
	return result.Data, result.Meta, nil
}

// GetVenue returns a venue with its bookings and owner embedded
func (hc *HolidazeClient) GetVenue(ctx context.Context, id string) (*models.Venue, error) {
	query := url.Values{}
	query.Set("_bookings", "true")
	query.Set("_owner", "true")

	var result models.Response[models.Venue]
	err := hc.do(ctx, call{
		op:       "venues.get",
		method:   http.MethodGet,
		path:     "/holidaze/venues/" + url.PathEscape(id),
		query:    query,
		fallback: "Venue not found",
	}, &result)
	if err != nil {
		return nil, err
	}
	models.NormalizeVenue(&result.Data)
	return &result.Data, nil
}

func (hc *HolidazeClient) CreateVenue(ctx context.Context, token string, req *models.VenueRequest) (*models.Venue, error) {
	var result models.Response[models.Venue]
	err := hc.do(ctx, call{
		op:       "venues.create",
		method:   http.MethodPost,
		path:     "/holidaze/venues",
		token:    token,
		body:     req,
		fallback: "Could not create venue",
	}, &result)
	if err != nil {
		return nil, err
	}
	models.NormalizeVenue(&result.Data)
	return &result.Data, nil
}

func (hc *HolidazeClient) UpdateVenue(ctx context.Context, token, id string, req *models.VenueRequest) (*models.Venue, error) {
	var result models.Response[models.Venue]
	err := hc.do(ctx, call{
		op:       "venues.update",
		method:   http.MethodPut,
		path:     "/holidaze/venues/" + url.PathEscape(id),
		token:    token,
		body:     req,
		fallback: "could not update venue",
	}, &result)
	if err != nil {
		return nil, err
	}
	models.NormalizeVenue(&result.Data)
	return &result.Data, nil
}

func (hc *HolidazeClient) DeleteVenue(ctx context.Context, token, id string) error {
	return hc.do(ctx, call{
		op:       "venues.delete",
		method:   http.MethodDelete,
		path:     "/holidaze/venues/" + url.PathEscape(id),
		token:    token,
		fallback: "Could not delete venue",
	}, nil)
}

// Bookings

func (hc *HolidazeClient) CreateBooking(ctx context.Context, token string, req *models.BookingRequest) (*models.Booking, error) {
	var result models.Response[models.Booking]
	err := hc.do(ctx, call{
		op:       "bookings.create",
		method:   http.MethodPost,
		path:     "/holidaze/bookings",
		token:    token,
		body:     req,
		fallback: "Booking failed, try again later",
	}, &result)
	if err != nil {
		return nil, err
	}
	models.NormalizeBooking(&result.Data)
	return &result.Data, nil
}

func (hc *HolidazeClient) DeleteBooking(ctx context.Context, token, id string) error {
	return hc.do(ctx, call{
		op:       "bookings.delete",
		method:   http.MethodDelete,
		path:     "/holidaze/bookings/" + url.PathEscape(id),
		token:    token,
		fallback: "Could not cancel booking",
	}, nil)
}

// Profiles

func (hc *HolidazeClient) GetProfile(ctx context.Context, token, name string) (*models.Profile, error) {
	var result models.Response[models.Profile]
	err := hc.do(ctx, call{
		op:       "profiles.get",
		method:   http.MethodGet,
		path:     "/holidaze/profiles/" + url.PathEscape(name),
		token:    token,
		fallback: "error fetching profile.",
	}, &result)
	if err != nil {
		return nil, err
	}
	models.NormalizeProfile(&result.Data)
	return &result.Data, nil
}

func (hc *HolidazeClient) UpdateProfile(ctx context.Context, token, name string, req *models.ProfileUpdateRequest) (*models.Profile, error) {
	var result models.Response[models.Profile]
	err := hc.do(ctx, call{
		op:       "profiles.update",
		method:   http.MethodPut,
		path:     "/holidaze/profiles/" + url.PathEscape(name),
		token:    token,
		body:     req,
		fallback: "error updating profile",
	}, &result)
	if err != nil {
		return nil, err
	}
	models.NormalizeProfile(&result.Data)
	return &result.Data, nil
}

// ProfileBookings returns the profile's bookings with the venue embedded
func (hc *HolidazeClient) ProfileBookings(ctx context.Context, token, name string) ([]models.Booking, error) {
	query := url.Values{}
	query.Set("_venue", "true")

	var result models.Response[[]models.Booking]
	err := hc.do(ctx, call{
		op:       "profiles.bookings",
		method:   http.MethodGet,
		path:     "/holidaze/profiles/" + url.PathEscape(name) + "/bookings",
		query:    query,
		token:    token,
		fallback: "error fetching bookings.",
	}, &result)
	if err != nil {
		return nil, err
	}
	for i := range result.Data {
		models.NormalizeBooking(&result.Data[i])
	}
	return result.Data, nil
}

// ProfileVenues returns the venues managed by the profile with their bookings
func (hc *HolidazeClient) ProfileVenues(ctx context.Context, token, name string) ([]models.Venue, error) {
	query := url.Values{}
	query.Set("_bookings", "true")

	var result models.Response[[]models.Venue]
	err := hc.do(ctx, call{
		op:       "profiles.venues",
		method:   http.MethodGet,
		path:     "/holidaze/profiles/" + url.PathEscape(name) + "/venues",
		query:    query,
		token:    token,
		fallback: "error fetching venues.",
	}, &result)
	if err != nil {
		return nil, err
	}
	models.NormalizeVenues(result.Data)
	return result.Data, nil
}
