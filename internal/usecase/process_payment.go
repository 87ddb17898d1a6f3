package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xavierca1/sitm-outreach/internal/billing"
	"github.com/xavierca1/sitm-outreach/internal/entity"
)

const maxTransactionIDAttempts = 5

type ProcessPaymentInput struct {
	PayerName  string          `json:"payer_name"`
	PayerEmail string          `json:"payer_email"`
	Program    string          `json:"program,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
}

type ProcessPaymentUseCase struct {
	Repo     entity.PaymentRepositoryInterface
	Gateway  PaymentGateway
	Programs entity.ProgramCatalog
	Metrics  Metrics

	now   func() time.Time
	newID func() string
}

func NewProcessPaymentUseCase(
	repo entity.PaymentRepositoryInterface,
	gateway PaymentGateway,
	programs entity.ProgramCatalog,
	metrics Metrics,
) *ProcessPaymentUseCase {
	return &ProcessPaymentUseCase{
		Repo:     repo,
		Gateway:  gateway,
		Programs: programs,
		Metrics:  metricsOrNoop(metrics),
		now:      time.Now,
		newID:    newTransactionID,
	}
}

// newTransactionID returns "TX-" followed by the first 8 hex digits of a
// random uuid.
func newTransactionID() string {
	return "TX-" + strings.SplitN(uuid.New().String(), "-", 2)[0]
}

// Execute authorizes and records one payment. The record is written once and
// never updated. Retrying a declined or failed payment is up to the caller.
func (uc *ProcessPaymentUseCase) Execute(ctx context.Context, input ProcessPaymentInput) (*entity.Payment, error) {
	if errs := ValidateProcessPaymentInput(input, uc.Programs); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	cents := input.Amount.Round(2).Shift(2).IntPart()
	if !input.Amount.IsPositive() || cents <= 0 {
		return nil, &DomainError{
			Code:    CodeInvalidAmount,
			Message: fmt.Sprintf("amount must be greater than zero, got %s", input.Amount.String()),
			Field:   "amount",
			Err:     entity.ErrInvalidAmount,
		}
	}
	method, _ := entity.ParsePaymentMethod(input.Method)

	txID, err := uc.reserveID(ctx)
	if err != nil {
		return nil, err
	}

	payment := &entity.Payment{
		TransactionID: txID,
		PayerName:     strings.TrimSpace(input.PayerName),
		PayerEmail:    strings.TrimSpace(input.PayerEmail),
		Program:       input.Program,
		AmountCents:   cents,
		Method:        method,
		CreatedAt:     uc.now(),
	}

	txn := NewTransaction()
	txn.AddOperation("authorize_payment", func(ctx context.Context) error {
		res, err := uc.Gateway.Authorize(ctx, billing.AuthorizationRequest{
			TransactionID: txID,
			AmountCents:   cents,
			Method:        method,
			PayerName:     payment.PayerName,
			PayerEmail:    payment.PayerEmail,
		})
		if err != nil {
			return err
		}
		payment.Status = entity.PaymentDeclined
		if res.Approved {
			payment.Status = entity.PaymentApproved
		}
		return nil
	})
	txn.AddCompensation("void_authorization", func(ctx context.Context) error {
		if payment.Status != entity.PaymentApproved {
			return nil
		}
		return uc.Gateway.Void(ctx, txID)
	})
	txn.AddOperation("persist_payment", func(ctx context.Context) error {
		return uc.Repo.Create(ctx, payment)
	})

	if err := txn.Execute(ctx); err != nil {
		if payment.Status == "" {
			return nil, &TechnicalError{
				Code:    CodeGateway,
				Message: "payment authorization failed: " + err.Error(),
				Err:     err,
			}
		}
		return nil, &TechnicalError{
			Code:    CodeDatabase,
			Message: "failed to persist payment: " + err.Error(),
			Err:     err,
		}
	}

	uc.Metrics.PaymentProcessed(payment.Method, payment.Status)
	log.Printf("💳 Pagamento %s (%s, %s): %s", payment.TransactionID, payment.Method, payment.Amount().StringFixed(2), payment.Status)
	return payment, nil
}

func (uc *ProcessPaymentUseCase) GetPayment(ctx context.Context, transactionID string) (*entity.Payment, error) {
	p, err := uc.Repo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, classify(err, CodeDatabase)
	}
	return p, nil
}

// reserveID draws transaction ids until one is free in the repository.
func (uc *ProcessPaymentUseCase) reserveID(ctx context.Context) (string, error) {
	for i := 0; i < maxTransactionIDAttempts; i++ {
		id := uc.newID()
		_, err := uc.Repo.FindByID(ctx, id)
		if errors.Is(err, entity.ErrPaymentNotFound) {
			return id, nil
		}
		if err != nil {
			return "", &TechnicalError{Code: CodeDatabase, Message: "failed to check transaction id: " + err.Error(), Err: err}
		}
		log.Printf("⚠️ Transaction id %s já existe, gerando outro", id)
	}
	return "", &TechnicalError{
		Code:    CodeInternal,
		Message: fmt.Sprintf("could not allocate a unique transaction id after %d attempts", maxTransactionIDAttempts),
	}
}
