package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/xavierca1/sitm-outreach/internal/entity"
)

const leadColumns = `id, kind, status, source, name, contact_name, email, phone,
	location, country, interest, company, employee_count, budget_cents, needs,
	jurisdiction, office, unemployment_rate, created_at, updated_at`

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

// SaveBatch grava o lote inteiro numa única transação.
func (r *LeadRepository) SaveBatch(ctx context.Context, leads []*entity.Lead) error {
	if len(leads) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO leads (`+leadColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, l := range leads {
		_, err := stmt.ExecContext(ctx,
			l.ID, l.Kind, l.Status, l.Source, l.Name, l.ContactName, l.Email, l.Phone,
			l.Location, l.Country, l.Interest, l.Company, l.EmployeeCount, l.BudgetCents, l.Needs,
			l.Jurisdiction, l.Office, l.UnemploymentRate, l.CreatedAt, l.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("lead %s: %w", l.ID, mapUniqueViolation(err))
		}
	}

	return tx.Commit()
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	l, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	return l, err
}

// List returns leads in insertion order.
func (r *LeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		where = append(where, fmt.Sprintf("kind = $%d", len(args)))
	}
	if filter.Source != "" {
		args = append(args, filter.Source)
		where = append(where, fmt.Sprintf("source = $%d", len(args)))
	}

	query := `SELECT ` + leadColumns + ` FROM leads`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*entity.Lead, 0)
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// UpdateStatus só altera o lead se o status gravado ainda for from.
func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, from, to entity.LeadStatus) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE leads SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		to, id, from,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var current entity.LeadStatus
	err = r.DB.QueryRowContext(ctx, `SELECT status FROM leads WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrLeadNotFound
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("lead %s is %s, expected %s: %w", id, current, from, entity.ErrInvalidTransition)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(s scanner) (*entity.Lead, error) {
	var l entity.Lead
	err := s.Scan(
		&l.ID, &l.Kind, &l.Status, &l.Source, &l.Name, &l.ContactName, &l.Email, &l.Phone,
		&l.Location, &l.Country, &l.Interest, &l.Company, &l.EmployeeCount, &l.BudgetCents, &l.Needs,
		&l.Jurisdiction, &l.Office, &l.UnemploymentRate, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
