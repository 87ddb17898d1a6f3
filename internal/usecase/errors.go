package usecase

import (
	"context"
	"errors"

	"github.com/xavierca1/sitm-outreach/internal/entity"
)

// DomainError is a recoverable error reported to the caller. Field names the
// offending input when there is one.
type DomainError struct {
	Code    string
	Message string
	Field   string
	Err     error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError wraps storage and transport failures.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error { return e.Err }

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeUnknownProgram    = "UNKNOWN_PROGRAM"
	CodeTemplateNotFound  = "TEMPLATE_NOT_FOUND"
	CodeMissingField      = "MISSING_PLACEHOLDER"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeUnsupported       = "UNSUPPORTED_PROVIDER"
	CodeInvalidAmount     = "INVALID_AMOUNT"
	CodeLimitExceeded     = "GENERATION_LIMIT_EXCEEDED"
	CodeSlotTaken         = "SLOT_TAKEN"
	CodeDatabase          = "DATABASE_ERROR"
	CodeGateway           = "GATEWAY_ERROR"
	CodeQueue             = "QUEUE_ERROR"
	CodeNotification      = "NOTIFICATION_ERROR"
	CodeInternal          = "INTERNAL_ERROR"
)

var domainCodes = []struct {
	err  error
	code string
}{
	{entity.ErrUnknownProgram, CodeUnknownProgram},
	{entity.ErrTemplateNotFound, CodeTemplateNotFound},
	{entity.ErrMissingPlaceholder, CodeMissingField},
	{entity.ErrInvalidTransition, CodeInvalidTransition},
	{entity.ErrUnsupportedProvider, CodeUnsupported},
	{entity.ErrInvalidAmount, CodeInvalidAmount},
	{entity.ErrGenerationLimitExceeded, CodeLimitExceeded},
	{entity.ErrUnsupportedChannel, CodeValidation},
	{entity.ErrUnsupportedAudience, CodeValidation},
	{entity.ErrUnsupportedPlan, CodeValidation},
	{entity.ErrSlotTaken, CodeSlotTaken},
	{entity.ErrLeadNotFound, CodeNotFound},
	{entity.ErrCampaignNotFound, CodeNotFound},
	{entity.ErrPaymentNotFound, CodeNotFound},
	{entity.ErrJobNotFound, CodeNotFound},
	{entity.ErrBookingNotFound, CodeNotFound},
}

// classify turns a lower layer error into a DomainError when it matches a
// known sentinel. Context errors pass through untouched; anything else is a
// TechnicalError with the given code.
func classify(err error, technicalCode string) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) || IsTechnicalError(err) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	for _, dc := range domainCodes {
		if errors.Is(err, dc.err) {
			return &DomainError{Code: dc.code, Message: err.Error(), Err: err}
		}
	}
	return &TechnicalError{Code: technicalCode, Message: err.Error(), Err: err}
}

func validationFailed(errs []ValidationError) *DomainError {
	msg := "validation failed: "
	for i, e := range errs {
		if i > 0 {
			msg += ", "
		}
		msg += e.Field + " (" + e.Message + ")"
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: msg,
		Field:   errs[0].Field,
		Err:     ValidationErrors(errs),
	}
}
