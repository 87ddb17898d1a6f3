package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/sitm-outreach/internal/entity"
	"github.com/xavierca1/sitm-outreach/internal/infra/memstore"
)

func newBookingUseCase(t *testing.T, notifier NotificationDispatcher) (*BookAppointmentUseCase, *memstore.BookingRepository) {
	t.Helper()
	repo := memstore.NewBookingRepository()
	uc := NewBookAppointmentUseCase(repo, notifier, "", "SolidITMinds")
	uc.now = func() time.Time { return time.Date(2026, 10, 18, 15, 4, 0, 0, time.Local) }
	n := 0
	uc.newID = func() string {
		n++
		return fmt.Sprintf("bk-%d", n)
	}
	return uc, repo
}

func bookingInput() BookAppointmentInput {
	return BookAppointmentInput{
		Name:    "Alex Kim",
		Email:   "alex@example.com",
		Phone:   "+1-404-555-0100",
		Service: "free career assessment",
		Date:    "2026-10-20",
		Slot:    entity.TimeSlots[1],
	}
}

func TestBookAppointment(t *testing.T) {
	notifier := new(MockNotificationDispatcher)
	notifier.On("Send", mock.Anything, mock.Anything).Return(nil)
	uc, _ := newBookingUseCase(t, notifier)

	b, err := uc.Execute(context.Background(), bookingInput())

	require.NoError(t, err)
	assert.Equal(t, "bk-1", b.ID)
	assert.Equal(t, entity.ServiceCareerAssessment, b.Service)
	assert.Equal(t, "2026-10-20", b.Date.Format(entity.DateLayout))

	sent := notifier.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, DefaultBookingInbox, sent[0].ToEmail)
	assert.Equal(t, entity.ChannelEmail, sent[0].Channel)
	assert.Equal(t, "Appointment Booking from Alex Kim", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "Date: Tuesday, October 20, 2026")
	assert.Contains(t, sent[0].Body, "Time: 10:30 AM - 11:30 AM")
	assert.Equal(t, "alex@example.com", sent[1].ToEmail)

	free, err := uc.AvailableSlots(context.Background(), "2026-10-20")
	require.NoError(t, err)
	assert.Len(t, free, len(entity.TimeSlots)-1)
	assert.NotContains(t, free, entity.TimeSlots[1])
}

func TestBookAppointmentDateWindow(t *testing.T) {
	notifier := new(MockNotificationDispatcher)
	notifier.On("Send", mock.Anything, mock.Anything).Return(nil)
	uc, _ := newBookingUseCase(t, notifier)

	tests := []struct {
		date string
		ok   bool
	}{
		{"2026-10-17", false},
		{"2026-10-18", true},
		{"2026-11-17", true},
		{"2026-11-18", false},
		{"10/20/2026", false},
	}
	for i, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			in := bookingInput()
			in.Date = tt.date
			in.Slot = entity.TimeSlots[i%len(entity.TimeSlots)]
			_, err := uc.Execute(context.Background(), in)
			if tt.ok {
				require.NoError(t, err)
				return
			}
			var de *DomainError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, CodeValidation, de.Code)
			assert.Equal(t, "date", de.Field)
		})
	}
}

func TestBookAppointmentValidation(t *testing.T) {
	uc, _ := newBookingUseCase(t, new(MockNotificationDispatcher))

	_, err := uc.Execute(context.Background(), BookAppointmentInput{Email: "nope", Service: "Haircut", Date: "2026-10-20", Slot: "noon"})

	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "name", de.Field)
	for _, field := range []string{"email", "service", "slot"} {
		assert.True(t, strings.Contains(de.Message, field), "missing %s in %q", field, de.Message)
	}
}

func TestBookAppointmentSlotTaken(t *testing.T) {
	notifier := new(MockNotificationDispatcher)
	notifier.On("Send", mock.Anything, mock.Anything).Return(nil)
	uc, _ := newBookingUseCase(t, notifier)

	_, err := uc.Execute(context.Background(), bookingInput())
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), bookingInput())
	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, CodeSlotTaken, de.Code)
	assert.Equal(t, "slot", de.Field)
	assert.Len(t, notifier.Sent(), 2)
}

func TestBookAppointmentReleasesSlotWhenOfficeUnreachable(t *testing.T) {
	notifier := new(MockNotificationDispatcher)
	notifier.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp: 421 service not available")).Once()
	notifier.On("Send", mock.Anything, mock.Anything).Return(nil)
	uc, repo := newBookingUseCase(t, notifier)

	_, err := uc.Execute(context.Background(), bookingInput())
	require.True(t, IsTechnicalError(err))
	var te *TechnicalError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, CodeNotification, te.Code)

	day, _ := time.Parse(entity.DateLayout, "2026-10-20")
	booked, err := repo.ListByDate(context.Background(), day)
	require.NoError(t, err)
	assert.Empty(t, booked)

	_, err = uc.Execute(context.Background(), bookingInput())
	require.NoError(t, err)
}

func TestBookAppointmentConfirmationIsBestEffort(t *testing.T) {
	notifier := new(MockNotificationDispatcher)
	notifier.On("Send", mock.Anything, mock.MatchedBy(func(m entity.OutboundMessage) bool { return m.ToEmail == DefaultBookingInbox })).Return(nil)
	notifier.On("Send", mock.Anything, mock.Anything).Return(errors.New("mailbox full"))
	uc, _ := newBookingUseCase(t, notifier)

	b, err := uc.Execute(context.Background(), bookingInput())

	require.NoError(t, err)
	assert.Equal(t, "bk-1", b.ID)
}

func TestAvailableSlotsOutsideWindow(t *testing.T) {
	uc, _ := newBookingUseCase(t, new(MockNotificationDispatcher))

	_, err := uc.AvailableSlots(context.Background(), "2027-01-01")

	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "date", de.Field)
}
