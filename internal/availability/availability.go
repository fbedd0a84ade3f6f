// Package availability computes which calendar days of a venue can still be booked
// and what a stay costs.
package availability

import (
	"fmt"
	"sort"
	"time"

	apperrors "holidaze/internal/errors"
	"holidaze/internal/models"
)

const dateLayout = "2006-01-02"

// Date is a calendar day without time of day
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates t to its calendar day in t's own location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	return DateOf(t), nil
}

// Time returns midnight UTC of the day
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d Date) Before(o Date) bool {
	return d.Time().Before(o.Time())
}

func (d Date) After(o Date) bool {
	return o.Before(d)
}

func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

// DaysUntil is the whole number of days from d to o (negative when o is earlier)
func (d Date) DaysUntil(o Date) int {
	return int(o.Time().Sub(d.Time()).Hours() / 24)
}

// DateSet is a set of unavailable days
type DateSet map[Date]struct{}

func (s DateSet) Contains(d Date) bool {
	_, ok := s[d]
	return ok
}

// Sorted returns the days in ascending order
func (s DateSet) Sorted() []Date {
	out := make([]Date, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Strings returns the sorted days as YYYY-MM-DD
func (s DateSet) Strings() []string {
	days := s.Sorted()
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.String()
	}
	return out
}

// BookedDates expands every booking into each day from dateFrom to dateTo inclusive
func BookedDates(bookings []models.Booking) DateSet {
	set := make(DateSet)
	for _, b := range bookings {
		from, to := DateOf(b.DateFrom), DateOf(b.DateTo)
		for d := from; !d.After(to); d = d.AddDays(1) {
			set[d] = struct{}{}
		}
	}
	return set
}

// IsSelectable reports whether date can be picked: not booked and not before today.
// Today itself is selectable.
func IsSelectable(date Date, booked DateSet, today Date) bool {
	if booked.Contains(date) {
		return false
	}
	return !date.Before(today)
}

// Stay is the priced result of a date range
type Stay struct {
	Nights int
	Total  float64
}

// ComputeStay counts nights inclusively (a single day is one night) and prices them.
func ComputeStay(from, to Date, pricePerNight float64) (Stay, error) {
	if to.Before(from) {
		return Stay{}, apperrors.Validation("dates", "End date must be on or after the start date.")
	}
	nights := from.DaysUntil(to) + 1
	return Stay{Nights: nights, Total: float64(nights) * pricePerNight}, nil
}

// ValidateGuests enforces 1 <= guests <= maxGuests
func ValidateGuests(guests, maxGuests int) error {
	if guests < 1 || guests > maxGuests {
		return apperrors.Validation("guests", fmt.Sprintf("Guests must be between 1 and %d.", maxGuests))
	}
	return nil
}

// ValidateRange checks ordering and that no day in [from, to] is unavailable
func ValidateRange(from, to Date, booked DateSet, today Date) error {
	if to.Before(from) {
		return apperrors.Validation("dates", "End date must be on or after the start date.")
	}
	for d := from; !d.After(to); d = d.AddDays(1) {
		if !IsSelectable(d, booked, today) {
			return apperrors.Validation("dates", fmt.Sprintf("%s is not available.", d))
		}
	}
	return nil
}

// Day is one calendar tile
type Day struct {
	Date       string `json:"date"`
	Selectable bool   `json:"selectable"`
}

// Calendar lists every day from..to with its selectability
func Calendar(from, to Date, booked DateSet, today Date) []Day {
	if to.Before(from) {
		return nil
	}
	days := make([]Day, 0, from.DaysUntil(to)+1)
	for d := from; !d.After(to); d = d.AddDays(1) {
		days = append(days, Day{Date: d.String(), Selectable: IsSelectable(d, booked, today)})
	}
	return days
}
