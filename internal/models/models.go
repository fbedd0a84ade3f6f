package models

import (
	"fmt"
	"strings"
	"time"
)

// FlexibleBool - гибкий boolean тип, поддерживающий строки и числа
type FlexibleBool bool

// UnmarshalJSON поддерживает парсинг boolean из строки, числа и boolean
func (fb *FlexibleBool) UnmarshalJSON(data []byte) error {
	v, err := ParseFlexibleBool(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*fb = FlexibleBool(v)
	return nil
}

// Bool возвращает bool значение
func (fb FlexibleBool) Bool() bool {
	return bool(fb)
}

// ParseFlexibleBool accepts true/false, 1/0, yes/no, on/off. Empty is false.
func ParseFlexibleBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off", "", "null":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value: %s", s)
	}
}

// Upstream envelopes

// PageMeta is the pagination block of list responses
type PageMeta struct {
	IsFirstPage  bool `json:"isFirstPage"`
	IsLastPage   bool `json:"isLastPage"`
	CurrentPage  int  `json:"currentPage"`
	PreviousPage *int `json:"previousPage"`
	NextPage     *int `json:"nextPage"`
	PageCount    int  `json:"pageCount"`
	TotalCount   int  `json:"totalCount"`
}

// Response wraps every successful API body
type Response[T any] struct {
	Data T        `json:"data"`
	Meta PageMeta `json:"meta"`
}

// APIErrorItem is one entry of the errors list
type APIErrorItem struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// ErrorResponse is the body of a non-2xx answer
type ErrorResponse struct {
	Errors     []APIErrorItem `json:"errors"`
	Status     string         `json:"status"`
	StatusCode int            `json:"statusCode"`
	Message    string         `json:"message,omitempty"`
}

// FirstMessage returns errors[0].message, then message, then "".
func (r *ErrorResponse) FirstMessage() string {
	if len(r.Errors) > 0 && r.Errors[0].Message != "" {
		return r.Errors[0].Message
	}
	return r.Message
}

// Upstream request bodies

// LoginRequest - POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult - data of POST /auth/login
type LoginResult struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	AccessToken  string `json:"accessToken"`
	VenueManager bool   `json:"venueManager"`
	Avatar       *Media `json:"avatar"`
	Banner       *Media `json:"banner"`
}

// RegisterRequest - POST /auth/register
type RegisterRequest struct {
	Name         string `json:"name" validate:"required,max=20"`
	Email        string `json:"email" validate:"required,email,studemail"`
	Password     string `json:"password" validate:"required,min=8"`
	Bio          string `json:"bio,omitempty" validate:"max=160"`
	Avatar       *Media `json:"avatar,omitempty"`
	Banner       *Media `json:"banner,omitempty"`
	VenueManager *bool  `json:"venueManager" validate:"required"`
}

// VenueRequest - body of POST/PUT /holidaze/venues
type VenueRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description" validate:"max=1000"`
	Media       []Media  `json:"media" validate:"max=5,dive"`
	Price       float64  `json:"price" validate:"gt=0"`
	MaxGuests   int      `json:"maxGuests" validate:"min=1,max=100"`
	Rating      *float64 `json:"rating,omitempty" validate:"omitempty,min=0,max=5"`
	Meta        Meta     `json:"meta"`
	Location    Location `json:"location"`
}

// BookingRequest - body of POST /holidaze/bookings
type BookingRequest struct {
	DateFrom time.Time `json:"dateFrom"`
	DateTo   time.Time `json:"dateTo"`
	Guests   int       `json:"guests"`
	VenueID  string    `json:"venueId"`
}

// ProfileUpdateRequest - body of PUT /holidaze/profiles/{name}
type ProfileUpdateRequest struct {
	Bio          *string `json:"bio,omitempty" validate:"omitempty,max=1000"`
	Avatar       *Media  `json:"avatar,omitempty"`
	Banner       *Media  `json:"banner,omitempty"`
	VenueManager *bool   `json:"venueManager,omitempty"`
}

// BFF request/response models

// CreateBookingRequest - POST /api/bookings
type CreateBookingRequest struct {
	VenueID  string `json:"venueId"`
	DateFrom string `json:"dateFrom"`
	DateTo   string `json:"dateTo"`
	Guests   int    `json:"guests"`
}

// QuoteRequest - POST /api/venues/:id/quote
type QuoteRequest struct {
	DateFrom string `json:"dateFrom"`
	DateTo   string `json:"dateTo"`
	Guests   int    `json:"guests"`
}

// QuoteResponse - price of a stay
type QuoteResponse struct {
	Nights int     `json:"nights"`
	Total  float64 `json:"total"`
}

// VenueForm - POST/PUT /api/venues. Mirrors the create/edit form fields.
type VenueForm struct {
	Name        string       `json:"name"`
	MediaURL    string       `json:"mediaUrl"`
	MediaAlt    string       `json:"mediaAlt"`
	Description string       `json:"description"`
	Address     string       `json:"address"`
	City        string       `json:"city"`
	Zip         string       `json:"zip"`
	Country     string       `json:"country"`
	Price       float64      `json:"price"`
	MaxGuests   int          `json:"maxGuests"`
	Rating      *float64     `json:"rating"`
	Wifi        FlexibleBool `json:"wifi"`
	Parking     FlexibleBool `json:"parking"`
	Breakfast   FlexibleBool `json:"breakfast"`
	Pets        FlexibleBool `json:"pets"`
}

// ProfileForm - PUT /api/profile
type ProfileForm struct {
	Bio    string `json:"bio"`
	Avatar string `json:"avatar"`
}

// RegisterForm - POST /api/auth/register
type RegisterForm struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Avatar       string `json:"avatar"`
	VenueManager *bool  `json:"venueManager"`
}

// AuthStateResponse - GET /api/auth/state
type AuthStateResponse struct {
	Authenticated bool   `json:"authenticated"`
	Profile       string `json:"profile,omitempty"`
}

// VenueDetailsResponse - GET /api/venues/:id
type VenueDetailsResponse struct {
	Venue       Venue    `json:"venue"`
	BookedDates []string `json:"bookedDates"`
	CanBook     bool     `json:"canBook"`
	CanEdit     bool     `json:"canEdit"`
}

// VenuePageResponse - GET /api/venues
type VenuePageResponse struct {
	Venues     []Venue `json:"venues"`
	Page       int     `json:"page"`
	IsLastPage bool    `json:"isLastPage"`
}

// ProfileResponse - GET /api/profile
type ProfileResponse struct {
	Profile  Profile   `json:"profile"`
	Bookings []Booking `json:"bookings"`
	Venues   []Venue   `json:"venues,omitempty"`
}
