package service

import (
	"sort"

	"holidaze/internal/models"
)

// List is an ordered collection owned by one flow. It is changed only after
// the API confirmed the mutation and is not safe for concurrent use.
type List[T any] struct {
	items []T
	id    func(*T) string
}

func (l *List[T]) Items() []T {
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

func (l *List[T]) Len() int {
	return len(l.items)
}

// Remove drops the item with id and reports whether it was present
func (l *List[T]) Remove(id string) bool {
	for i := range l.items {
		if l.id(&l.items[i]) == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

// Replace swaps in item at the position of the element with the same id
func (l *List[T]) Replace(item T) bool {
	id := l.id(&item)
	for i := range l.items {
		if l.id(&l.items[i]) == id {
			l.items[i] = item
			return true
		}
	}
	return false
}

func (l *List[T]) Find(id string) (T, bool) {
	for i := range l.items {
		if l.id(&l.items[i]) == id {
			return l.items[i], true
		}
	}
	var zero T
	return zero, false
}

type VenueList = List[models.Venue]

type BookingList = List[models.Booking]

func NewVenueList(venues []models.Venue) *VenueList {
	items := make([]models.Venue, len(venues))
	copy(items, venues)
	return &VenueList{items: items, id: func(v *models.Venue) string { return v.ID }}
}

// NewBookingList orders bookings by start date
func NewBookingList(bookings []models.Booking) *BookingList {
	items := make([]models.Booking, len(bookings))
	copy(items, bookings)
	sort.SliceStable(items, func(i, j int) bool { return items[i].DateFrom.Before(items[j].DateFrom) })
	return &BookingList{items: items, id: func(b *models.Booking) string { return b.ID }}
}
