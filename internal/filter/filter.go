package filter

import (
	"net/url"
	"strconv"
	"strings"

	"holidaze/internal/models"
)

// Facilities are AND-combined amenity requirements. A false flag imposes nothing.
type Facilities struct {
	Wifi      bool `json:"wifi"`
	Parking   bool `json:"parking"`
	Breakfast bool `json:"breakfast"`
	Pets      bool `json:"pets"`
}

// Criteria is everything the venue search form submits
type Criteria struct {
	Query      string     `json:"search"`
	Facilities Facilities `json:"facilities"`
	MinGuests  int        `json:"guests"`
}

// Filter returns the venues matching query, facilities and guest count, in input order.
// An empty query matches every venue.
func Filter(venues []models.Venue, query string, facilities Facilities, minGuests int) []models.Venue {
	q := normalizeQuery(query)
	if minGuests < 1 {
		minGuests = 1
	}

	out := make([]models.Venue, 0, len(venues))
	for _, v := range venues {
		if Matches(&v, q, facilities, minGuests) {
			out = append(out, v)
		}
	}
	return out
}

// Apply runs Filter with c
func Apply(venues []models.Venue, c Criteria) []models.Venue {
	return Filter(venues, c.Query, c.Facilities, c.MinGuests)
}

// Matches evaluates a single venue. q must already be normalized.
func Matches(v *models.Venue, q string, f Facilities, minGuests int) bool {
	if f.Pets && !v.Meta.Pets {
		return false
	}
	if f.Parking && !v.Meta.Parking {
		return false
	}
	if f.Wifi && !v.Meta.Wifi {
		return false
	}
	if f.Breakfast && !v.Meta.Breakfast {
		return false
	}
	if v.MaxGuests < minGuests {
		return false
	}
	return matchesText(v, q)
}

// matchesText tests each field independently; fields are not concatenated,
// so a query spanning two fields does not match.
func matchesText(v *models.Venue, q string) bool {
	fields := [...]string{
		v.Name,
		v.Location.City,
		v.Location.Country,
		v.Description,
		strings.Join(v.Tags, " "),
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// ParseQuery reads criteria from ?search=&wifi=&parking=&breakfast=&pets=&guests=.
// Unparsable guest counts fall back to 1 and unparsable flags to false.
func ParseQuery(values url.Values) Criteria {
	c := Criteria{
		Query:     strings.TrimSpace(values.Get("search")),
		MinGuests: 1,
	}
	if g, err := strconv.Atoi(values.Get("guests")); err == nil && g > 0 {
		c.MinGuests = g
	}
	c.Facilities.Wifi = flag(values, "wifi")
	c.Facilities.Parking = flag(values, "parking")
	c.Facilities.Breakfast = flag(values, "breakfast")
	c.Facilities.Pets = flag(values, "pets")
	return c
}

func flag(values url.Values, key string) bool {
	b, err := models.ParseFlexibleBool(values.Get(key))
	return err == nil && b
}
