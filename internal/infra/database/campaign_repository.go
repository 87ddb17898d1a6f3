package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xavierca1/sitm-outreach/internal/entity"
)

const campaignColumns = `id, type, audience, program, channel, status, target_count,
	succeeded, failed, rerun_of, created_at, scheduled_at, started_at, completed_at, updated_at,
	cancel_requested`

type CampaignRepository struct {
	DB *sql.DB
}

func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{DB: db}
}

func (r *CampaignRepository) Create(ctx context.Context, c *entity.Campaign) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO campaigns (`+campaignColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		c.ID, c.Type, c.Audience, c.Program, c.Channel, c.Status, c.TargetCount,
		c.Succeeded, c.Failed, nullString(c.RerunOf), c.CreatedAt,
		nullTime(c.ScheduledAt), nullTime(c.StartedAt), nullTime(c.CompletedAt), c.UpdatedAt,
		c.CancelRequested,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

func (r *CampaignRepository) FindByID(ctx context.Context, id string) (*entity.Campaign, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id)
	c, err := scanCampaign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrCampaignNotFound
	}
	return c, err
}

func (r *CampaignRepository) List(ctx context.Context, filter entity.CampaignFilter) ([]*entity.Campaign, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}

	query := `SELECT ` + campaignColumns + ` FROM campaigns`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*entity.Campaign, 0)
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update é um compare-and-set sobre o status.
func (r *CampaignRepository) Update(ctx context.Context, c *entity.Campaign, expected entity.CampaignStatus) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE campaigns SET
			status = $2, succeeded = $3, failed = $4,
			scheduled_at = $5, started_at = $6, completed_at = $7, updated_at = $8,
			cancel_requested = $9
		WHERE id = $1 AND status = $10`,
		c.ID, c.Status, c.Succeeded, c.Failed,
		nullTime(c.ScheduledAt), nullTime(c.StartedAt), nullTime(c.CompletedAt), c.UpdatedAt,
		c.CancelRequested, expected,
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

	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM campaigns WHERE id = $1)`, c.ID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return entity.ErrCampaignNotFound
	}
	return entity.ErrStaleCampaign
}

func scanCampaign(s scanner) (*entity.Campaign, error) {
	var c entity.Campaign
	var rerunOf sql.NullString
	var scheduledAt, startedAt, completed sql.NullTime
	err := s.Scan(
		&c.ID, &c.Type, &c.Audience, &c.Program, &c.Channel, &c.Status, &c.TargetCount,
		&c.Succeeded, &c.Failed, &rerunOf, &c.CreatedAt, &scheduledAt, &startedAt, &completed, &c.UpdatedAt,
		&c.CancelRequested,
	)
	if err != nil {
		return nil, err
	}
	c.RerunOf = rerunOf.String
	c.ScheduledAt = timePtr(scheduledAt)
	c.StartedAt = timePtr(startedAt)
	c.CompletedAt = timePtr(completed)
	return &c, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
