package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xavierca1/sitm-outreach/internal/entity"
)

type BookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]entity.Booking
	// slot holds the booking id per "date|slot".
	slot map[string]string
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		bookings: make(map[string]entity.Booking),
		slot:     make(map[string]string),
	}
}

func slotKey(date time.Time, slot string) string {
	return date.Format(entity.DateLayout) + "|" + slot
}

func (r *BookingRepository) Create(ctx context.Context, b *entity.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bookings[b.ID]; exists {
		return entity.ErrDuplicateID
	}
	key := slotKey(b.Date, b.Slot)
	if _, taken := r.slot[key]; taken {
		return entity.ErrSlotTaken
	}
	r.bookings[b.ID] = *b
	r.slot[key] = b.ID
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return entity.ErrBookingNotFound
	}
	delete(r.bookings, id)
	delete(r.slot, slotKey(b.Date, b.Slot))
	return nil
}

// ListByDate returns the bookings of one day ordered by slot.
func (r *BookingRepository) ListByDate(ctx context.Context, date time.Time) ([]*entity.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	day := date.Format(entity.DateLayout)
	var out []*entity.Booking
	for _, b := range r.bookings {
		if b.Date.Format(entity.DateLayout) == day {
			b := b
			out = append(out, &b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return slotIndex(out[i].Slot) < slotIndex(out[j].Slot) })
	return out, nil
}

func slotIndex(slot string) int {
	for i, s := range entity.TimeSlots {
		if s == slot {
			return i
		}
	}
	return len(entity.TimeSlots)
}
