package models

import (
	"encoding/json"
	"strings"
)

const (
	PlaceholderVenueImage  = "https://cdn.pixabay.com/photo/2017/11/10/04/47/image-2935360_1280.png"
	PlaceholderAvatarImage = "https://cdn.pixabay.com/photo/2017/11/10/05/48/user-2935527_960_720.png"
	UnknownLocation        = "Unknown"
	NoDescription          = "No description."
)

// NormalizeVenue fills the optional fields the API may omit. It is applied once
// when a venue enters the process so the rest of the code never checks for blanks.
// Location and description stay raw for matching; MarshalJSON renders them.
func NormalizeVenue(v *Venue) {
	if len(v.Media) == 0 || strings.TrimSpace(v.Media[0].URL) == "" {
		v.Media = append([]Media{{URL: PlaceholderVenueImage, Alt: v.Name}}, nonEmptyMedia(v.Media)...)
	}
	for i := range v.Media {
		if v.Media[i].Alt == "" {
			v.Media[i].Alt = v.Name
		}
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	for i := range v.Bookings {
		if v.Bookings[i].VenueID == "" {
			v.Bookings[i].VenueID = v.ID
		}
	}
}

// StoredVenue is a Venue serialized without display placeholders. Events and
// the search index carry it so that consumers see the fields the API returned.
type StoredVenue Venue

// MarshalJSON renders missing location and description as placeholders
func (v Venue) MarshalJSON() ([]byte, error) {
	out := StoredVenue(v)
	if strings.TrimSpace(out.Location.City) == "" {
		out.Location.City = UnknownLocation
	}
	if strings.TrimSpace(out.Location.Country) == "" {
		out.Location.Country = UnknownLocation
	}
	if strings.TrimSpace(out.Description) == "" {
		out.Description = NoDescription
	}
	return json.Marshal(out)
}

// NormalizeVenues applies NormalizeVenue to every element in place
func NormalizeVenues(vs []Venue) {
	for i := range vs {
		NormalizeVenue(&vs[i])
	}
}

// NormalizeBooking resolves the embedded venue and its id
func NormalizeBooking(b *Booking) {
	if b.Venue != nil {
		NormalizeVenue(b.Venue)
		if b.VenueID == "" {
			b.VenueID = b.Venue.ID
		}
	}
}

// NormalizeProfile sets a placeholder avatar when none is present
func NormalizeProfile(p *Profile) {
	if p.Avatar == nil || strings.TrimSpace(p.Avatar.URL) == "" {
		p.Avatar = &Media{URL: PlaceholderAvatarImage, Alt: p.Name}
	}
	NormalizeVenues(p.Venues)
}

func nonEmptyMedia(ms []Media) []Media {
	out := make([]Media, 0, len(ms))
	for _, m := range ms {
		if strings.TrimSpace(m.URL) != "" {
			out = append(out, m)
		}
	}
	return out
}
