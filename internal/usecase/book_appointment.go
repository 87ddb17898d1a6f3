package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/sitm-outreach/internal/entity"
)

// DefaultBookingInbox receives the notice of every new appointment.
const DefaultBookingInbox = "contact@soliditminds.com"

type BookAppointmentInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Service string `json:"service"`
	Date    string `json:"date"`
	Slot    string `json:"slot"`
}

type BookAppointmentUseCase struct {
	Repo        entity.BookingRepositoryInterface
	Notifier    NotificationDispatcher
	Inbox       string
	CompanyName string

	now   func() time.Time
	newID func() string
}

func NewBookAppointmentUseCase(
	repo entity.BookingRepositoryInterface,
	notifier NotificationDispatcher,
	inbox, companyName string,
) *BookAppointmentUseCase {
	if inbox == "" {
		inbox = DefaultBookingInbox
	}
	return &BookAppointmentUseCase{
		Repo:        repo,
		Notifier:    notifier,
		Inbox:       inbox,
		CompanyName: companyName,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

func (uc *BookAppointmentUseCase) today() time.Time {
	n := uc.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// Execute reserves the slot and emails the office. If the office cannot be
// reached the slot is released and nothing is booked. The confirmation sent
// to the requester afterwards is best effort.
func (uc *BookAppointmentUseCase) Execute(ctx context.Context, input BookAppointmentInput) (*entity.Booking, error) {
	if errs := ValidateBookAppointmentInput(input, uc.today()); len(errs) > 0 {
		return nil, validationFailed(errs)
	}
	service, _ := entity.ParseBookingService(input.Service)
	date, _ := time.Parse(entity.DateLayout, input.Date)

	b := &entity.Booking{
		ID:        uc.newID(),
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.TrimSpace(input.Email),
		Phone:     strings.TrimSpace(input.Phone),
		Service:   service,
		Date:      date,
		Slot:      input.Slot,
		CreatedAt: uc.now(),
	}

	reserved := false
	txn := NewTransaction()
	txn.AddOperation("reserve_slot", func(ctx context.Context) error {
		if err := uc.Repo.Create(ctx, b); err != nil {
			return err
		}
		reserved = true
		return nil
	})
	txn.AddCompensation("release_slot", func(ctx context.Context) error {
		return uc.Repo.Delete(ctx, b.ID)
	})
	txn.AddOperation("notify_office", func(ctx context.Context) error {
		return uc.Notifier.Send(ctx, uc.officeNotice(b))
	})

	if err := txn.Execute(ctx); err != nil {
		switch {
		case errors.Is(err, entity.ErrSlotTaken):
			return nil, &DomainError{
				Code:    CodeSlotTaken,
				Message: fmt.Sprintf("%s on %s is already booked", b.Slot, input.Date),
				Field:   "slot",
				Err:     err,
			}
		case !reserved:
			return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to reserve slot: " + err.Error(), Err: err}
		default:
			return nil, &TechnicalError{Code: CodeNotification, Message: "failed to notify office: " + err.Error(), Err: err}
		}
	}

	if err := uc.Notifier.Send(ctx, uc.confirmation(b)); err != nil {
		log.Printf("⚠️ Confirmação do agendamento %s não enviada para %s: %v", b.ID, b.Email, err)
	}
	log.Printf("📅 Agendamento %s: %s em %s (%s)", b.ID, b.Service, input.Date, b.Slot)
	return b, nil
}

// AvailableSlots lists the slots of date that are still free.
func (uc *BookAppointmentUseCase) AvailableSlots(ctx context.Context, date string) ([]string, error) {
	today := uc.today()
	day, err := time.Parse(entity.DateLayout, date)
	if err != nil {
		return nil, validationFailed([]ValidationError{{"date", "must be YYYY-MM-DD"}})
	}
	if last := today.AddDate(0, 0, entity.BookingWindowDays); day.Before(today) || day.After(last) {
		return nil, validationFailed([]ValidationError{{"date", fmt.Sprintf("must be between %s and %s", today.Format(entity.DateLayout), last.Format(entity.DateLayout))}})
	}

	booked, err := uc.Repo.ListByDate(ctx, day)
	if err != nil {
		return nil, classify(err, CodeDatabase)
	}
	taken := make(map[string]bool, len(booked))
	for _, b := range booked {
		taken[b.Slot] = true
	}
	free := make([]string, 0, len(entity.TimeSlots))
	for _, s := range entity.TimeSlots {
		if !taken[s] {
			free = append(free, s)
		}
	}
	return free, nil
}

func (uc *BookAppointmentUseCase) officeNotice(b *entity.Booking) entity.OutboundMessage {
	phone := b.Phone
	if phone == "" {
		phone = "not provided"
	}
	body := fmt.Sprintf(`New appointment booking from %s.

Service: %s
Date: %s
Time: %s

Contact Information:
Email: %s
Phone: %s

Please confirm this appointment via email or phone.`,
		b.Name, b.Service, b.Date.Format("Monday, January 02, 2006"), b.Slot, b.Email, phone)

	return entity.OutboundMessage{
		Channel: entity.ChannelEmail,
		ToName:  uc.CompanyName,
		ToEmail: uc.Inbox,
		Subject: "Appointment Booking from " + b.Name,
		Body:    body,
	}
}

func (uc *BookAppointmentUseCase) confirmation(b *entity.Booking) entity.OutboundMessage {
	company := uc.CompanyName
	if company == "" {
		company = "us"
	}
	body := fmt.Sprintf(`Hi %s,

Your %s with %s is booked for %s, %s.
We'll reach out to confirm before the appointment.`,
		b.Name, b.Service, company, b.Date.Format("Monday, January 02, 2006"), b.Slot)

	return entity.OutboundMessage{
		Channel: entity.ChannelEmail,
		ToName:  b.Name,
		ToEmail: b.Email,
		Subject: "Appointment booked: " + string(b.Service),
		Body:    body,
	}
}
