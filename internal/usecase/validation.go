package usecase

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/xavierca1/sitm-outreach/internal/entity"
	"github.com/xavierca1/sitm-outreach/internal/leadgen"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors lets callers recover the whole list from a DomainError.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

func ValidateGenerateLeadsInput(input GenerateLeadsInput) []ValidationError {
	var errors []ValidationError

	if input.Count < 0 {
		errors = append(errors, ValidationError{"count", "must be zero or positive"})
	}
	if strings.TrimSpace(string(input.Kind)) == "" {
		errors = append(errors, ValidationError{"kind", "is required"})
	} else if !input.Kind.Valid() {
		errors = append(errors, ValidationError{"kind", "must be Student, Corporate or GovernmentOffice"})
	}
	if input.Kind == entity.LeadGovernmentOffice && input.Count > len(leadgen.Jurisdictions) {
		errors = append(errors, ValidationError{"count", fmt.Sprintf("must not exceed %d for GovernmentOffice (one per jurisdiction)", len(leadgen.Jurisdictions))})
	}
	if len(input.Source) > 100 {
		errors = append(errors, ValidationError{"source", "must not exceed 100 characters"})
	}

	return errors
}

func ValidateProcessPaymentInput(input ProcessPaymentInput, programs entity.ProgramCatalog) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.PayerName) == "" {
		errors = append(errors, ValidationError{"payer_name", "is required"})
	} else if len(input.PayerName) > 200 {
		errors = append(errors, ValidationError{"payer_name", "must not exceed 200 characters"})
	}

	if strings.TrimSpace(input.PayerEmail) == "" {
		errors = append(errors, ValidationError{"payer_email", "is required"})
	} else if _, err := mail.ParseAddress(input.PayerEmail); err != nil {
		errors = append(errors, ValidationError{"payer_email", "is invalid"})
	}

	if strings.TrimSpace(input.Method) == "" {
		errors = append(errors, ValidationError{"method", "is required"})
	} else if _, ok := entity.ParsePaymentMethod(input.Method); !ok {
		errors = append(errors, ValidationError{"method", "must be Credit Card, Affirm, Klarna, Bank Transfer or County Sponsorship"})
	}

	if input.Program != "" && programs != nil {
		if _, ok := programs.Program(input.Program); !ok {
			errors = append(errors, ValidationError{"program", "is not in the catalog"})
		}
	}

	return errors
}

func ValidateRenderContentInput(input RenderContentInput) []ValidationError {
	var errors []ValidationError

	if input.Channel == "" {
		errors = append(errors, ValidationError{"channel", "is required"})
	} else if !input.Channel.Valid() {
		errors = append(errors, ValidationError{"channel", "must be email, social or sms"})
	}
	if input.Audience == "" {
		errors = append(errors, ValidationError{"audience", "is required"})
	} else if !input.Audience.Valid() {
		errors = append(errors, ValidationError{"audience", "must be student or corporate"})
	}
	if strings.TrimSpace(input.Program) == "" {
		errors = append(errors, ValidationError{"program", "is required"})
	}

	return errors
}

func ValidateCreateCampaignInput(input CreateCampaignInput) []ValidationError {
	var errors []ValidationError

	if !input.Type.Valid() {
		errors = append(errors, ValidationError{"type", "must be email, social, sms or payment"})
	}
	if !input.Audience.Valid() {
		errors = append(errors, ValidationError{"audience", "must be student or corporate"})
	}
	if !input.Channel.Valid() {
		errors = append(errors, ValidationError{"channel", "must be email, social or sms"})
	}
	if strings.TrimSpace(input.Program) == "" {
		errors = append(errors, ValidationError{"program", "is required"})
	}
	if input.TargetCount < 0 {
		errors = append(errors, ValidationError{"target_count", "must be zero or positive"})
	}

	return errors
}

// ValidateBookAppointmentInput checks the booking form. today is the first
// bookable day; the last is BookingWindowDays later.
func ValidateBookAppointmentInput(input BookAppointmentInput, today time.Time) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Name) == "" {
		errors = append(errors, ValidationError{"name", "is required"})
	} else if len(input.Name) > 200 {
		errors = append(errors, ValidationError{"name", "must not exceed 200 characters"})
	}

	if strings.TrimSpace(input.Email) == "" {
		errors = append(errors, ValidationError{"email", "is required"})
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		errors = append(errors, ValidationError{"email", "is invalid"})
	}

	if _, ok := entity.ParseBookingService(input.Service); !ok {
		errors = append(errors, ValidationError{"service", "must be Free Career Assessment, Training Program Consultation, Recruiting Services or Business IT Consulting"})
	}

	if strings.TrimSpace(input.Date) == "" {
		errors = append(errors, ValidationError{"date", "is required"})
	} else if date, err := time.Parse(entity.DateLayout, input.Date); err != nil {
		errors = append(errors, ValidationError{"date", "must be YYYY-MM-DD"})
	} else if last := today.AddDate(0, 0, entity.BookingWindowDays); date.Before(today) || date.After(last) {
		errors = append(errors, ValidationError{"date", fmt.Sprintf("must be between %s and %s", today.Format(entity.DateLayout), last.Format(entity.DateLayout))})
	}

	if !entity.ValidTimeSlot(input.Slot) {
		errors = append(errors, ValidationError{"slot", "must be one of: " + strings.Join(entity.TimeSlots, ", ")})
	}

	return errors
}
