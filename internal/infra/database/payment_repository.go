package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/sitm-outreach/internal/entity"
)

type PaymentRepository struct {
	DB *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *entity.Payment) error {
	query := `
		INSERT INTO payments (
			transaction_id, payer_name, payer_email, program,
			amount_cents, method, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.DB.ExecContext(ctx, query,
		p.TransactionID, p.PayerName, p.PayerEmail, p.Program,
		p.AmountCents, p.Method, p.Status, p.CreatedAt,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, transactionID string) (*entity.Payment, error) {
	query := `
		SELECT transaction_id, payer_name, payer_email, program,
			amount_cents, method, status, created_at
		FROM payments WHERE transaction_id = $1
	`
	var p entity.Payment
	err := r.DB.QueryRowContext(ctx, query, transactionID).Scan(
		&p.TransactionID, &p.PayerName, &p.PayerEmail, &p.Program,
		&p.AmountCents, &p.Method, &p.Status, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
