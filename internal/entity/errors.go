package entity

import "errors"

// Erros de domínio recuperáveis.
var (
	ErrUnknownProgram          = errors.New("unknown program")
	ErrTemplateNotFound        = errors.New("template not found")
	ErrMissingPlaceholder      = errors.New("missing placeholder value")
	ErrInvalidTransition       = errors.New("invalid status transition")
	ErrUnsupportedProvider     = errors.New("unsupported financing provider")
	ErrInvalidAmount           = errors.New("amount must be greater than zero")
	ErrGenerationLimitExceeded = errors.New("generation limit exceeded for synchronous request")
	ErrUnsupportedChannel      = errors.New("unsupported channel")
	ErrUnsupportedAudience     = errors.New("unsupported audience")
	ErrSlotTaken               = errors.New("time slot already booked")
	ErrUnsupportedPlan         = errors.New("unsupported payment plan")
)

var (
	ErrLeadNotFound     = errors.New("lead not found")
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrJobNotFound      = errors.New("job not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrStaleCampaign    = errors.New("campaign status changed concurrently")
	ErrDuplicateID      = errors.New("duplicate id")
)
