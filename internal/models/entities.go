package models

import (
	"time"
)

// Media is an image reference as the API returns it
type Media struct {
	URL string `json:"url" validate:"required,url"`
	Alt string `json:"alt" validate:"max=120"`
}

// Location of a venue
type Location struct {
	Address   string  `json:"address"`
	City      string  `json:"city"`
	Zip       string  `json:"zip"`
	Country   string  `json:"country"`
	Continent string  `json:"continent,omitempty"`
	Lat       float64 `json:"lat,omitempty"`
	Lng       float64 `json:"lng,omitempty"`
}

// Meta holds the facility flags of a venue
type Meta struct {
	Wifi      bool `json:"wifi"`
	Parking   bool `json:"parking"`
	Breakfast bool `json:"breakfast"`
	Pets      bool `json:"pets"`
}

// ProfileRef is the embedded owner/customer object
type ProfileRef struct {
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Bio    string `json:"bio,omitempty"`
	Avatar *Media `json:"avatar,omitempty"`
}

// Venue represents a listing managed by a venue manager
type Venue struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Media       []Media     `json:"media"`
	Price       float64     `json:"price"`
	MaxGuests   int         `json:"maxGuests"`
	Rating      float64     `json:"rating"`
	Tags        []string    `json:"tags,omitempty"`
	Created     time.Time   `json:"created"`
	Updated     time.Time   `json:"updated"`
	Meta        Meta        `json:"meta"`
	Location    Location    `json:"location"`
	Owner       *ProfileRef `json:"owner,omitempty"`
	Bookings    []Booking   `json:"bookings,omitempty"` // only with ?_bookings=true
}

// OwnerName returns the owning profile name or "" when the API did not embed it
func (v *Venue) OwnerName() string {
	if v.Owner == nil {
		return ""
	}
	return v.Owner.Name
}

// Booking represents a guest's stay at a venue
type Booking struct {
	ID       string      `json:"id"`
	DateFrom time.Time   `json:"dateFrom"`
	DateTo   time.Time   `json:"dateTo"`
	Guests   int         `json:"guests"`
	Created  time.Time   `json:"created"`
	Updated  time.Time   `json:"updated"`
	VenueID  string      `json:"venueId,omitempty"`
	Venue    *Venue      `json:"venue,omitempty"` // only with ?_venue=true
	Customer *ProfileRef `json:"customer,omitempty"`
}

// Count mirrors the _count object on profiles
type Count struct {
	Venues   int `json:"venues"`
	Bookings int `json:"bookings"`
}

// Profile represents a registered user
type Profile struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Bio          string  `json:"bio"`
	Avatar       *Media  `json:"avatar"`
	Banner       *Media  `json:"banner"`
	VenueManager bool    `json:"venueManager"`
	Count        Count   `json:"_count"`
	Venues       []Venue `json:"venues,omitempty"`
}

// Credentials is the durable per-session state: bearer token plus profile name
type Credentials struct {
	AccessToken string `json:"accessToken"`
	ProfileName string `json:"name"`
}

// Valid reports whether a token is present
func (c Credentials) Valid() bool {
	return c.AccessToken != ""
}
