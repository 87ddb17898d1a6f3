package entity

import (
	"context"
	"time"
)

type BookingService string

const (
	ServiceCareerAssessment     BookingService = "Free Career Assessment"
	ServiceTrainingConsultation BookingService = "Training Program Consultation"
	ServiceRecruiting           BookingService = "Recruiting Services"
	ServiceBusinessITConsulting BookingService = "Business IT Consulting"
)

var BookingServices = []BookingService{
	ServiceCareerAssessment, ServiceTrainingConsultation, ServiceRecruiting, ServiceBusinessITConsulting,
}

// ParseBookingService accepts the display name ignoring case and spaces.
func ParseBookingService(s string) (BookingService, bool) {
	want := normalizeName(s)
	for _, svc := range BookingServices {
		if normalizeName(string(svc)) == want {
			return svc, true
		}
	}
	return "", false
}

// TimeSlots are the bookable hours of every day, in display order.
var TimeSlots = []string{
	"9:00 AM - 10:00 AM",
	"10:30 AM - 11:30 AM",
	"1:00 PM - 2:00 PM",
	"2:30 PM - 3:30 PM",
	"4:00 PM - 5:00 PM",
}

func ValidTimeSlot(slot string) bool {
	for _, s := range TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// BookingWindowDays is how far ahead of today an appointment may be booked.
const BookingWindowDays = 30

// DateLayout is the wire format of a booking date.
const DateLayout = "2006-01-02"

// Booking is one consultation or assessment appointment. Date carries the
// calendar day at midnight UTC.
type Booking struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone,omitempty"`
	Service   BookingService `json:"service"`
	Date      time.Time      `json:"date"`
	Slot      string         `json:"slot"`
	CreatedAt time.Time      `json:"created_at"`
}

type BookingRepositoryInterface interface {
	// Create fails with ErrSlotTaken when the date and slot are already booked.
	Create(ctx context.Context, b *Booking) error
	Delete(ctx context.Context, id string) error
	ListByDate(ctx context.Context, date time.Time) ([]*Booking, error)
}
