package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/fortuna/augur/internal/store"
)

// SlipRepository persists and retrieves analyzed betting slips.
type SlipRepository struct {
	db *store.Database
}

// NewSlipRepository creates a slip repository.
func NewSlipRepository(db *store.Database) *SlipRepository {
	return &SlipRepository{db: db}
}

// Insert stores a fresh analysis and returns its generated slip ID.
func (r *SlipRepository) Insert(ctx context.Context, analysis interface{}) (string, error) {
	data, err := json.Marshal(analysis)
	if err != nil {
		return "", fmt.Errorf("marshal analysis: %w", err)
	}

	slipID := uuid.NewString()
	query := `
		INSERT INTO slips (slip_id, created_at, analysis)
		VALUES ($1, NOW(), $2)
	`
	if _, err := r.db.DB().ExecContext(ctx, query, slipID, data); err != nil {
		return "", fmt.Errorf("insert slip: %w", err)
	}
	return slipID, nil
}

// SetResolved attaches resolved selections to a stored slip.
func (r *SlipRepository) SetResolved(ctx context.Context, slipID string, resolved interface{}) error {
	data, err := json.Marshal(resolved)
	if err != nil {
		return fmt.Errorf("marshal resolved selections: %w", err)
	}

	query := `
		UPDATE slips SET resolved = $2, resolved_at = NOW()
		WHERE slip_id = $1
	`
	result, err := r.db.DB().ExecContext(ctx, query, slipID, data)
	if err != nil {
		return fmt.Errorf("update slip %s: %w", slipID, err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("slip %s not found", slipID)
	}
	return nil
}

// GetByID fetches one stored slip.
func (r *SlipRepository) GetByID(ctx context.Context, slipID string) (*store.StoredSlip, error) {
	query := `
		SELECT slip_id, created_at, resolved_at, analysis, resolved
		FROM slips
		WHERE slip_id = $1
	`
	slip, err := scanSlip(r.db.DB().QueryRowContext(ctx, query, slipID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("slip %s not found", slipID)
	}
	if err != nil {
		return nil, fmt.Errorf("query slip %s: %w", slipID, err)
	}
	return slip, nil
}

// List returns the most recent stored slips, newest first.
func (r *SlipRepository) List(ctx context.Context, limit int) ([]*store.StoredSlip, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT slip_id, created_at, resolved_at, analysis, resolved
		FROM slips
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.DB().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list slips: %w", err)
	}
	defer rows.Close()

	var slips []*store.StoredSlip
	for rows.Next() {
		slip, err := scanSlip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slip row: %w", err)
		}
		slips = append(slips, slip)
	}
	return slips, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSlip(s scanner) (*store.StoredSlip, error) {
	var (
		slip       store.StoredSlip
		resolvedAt sql.NullTime
		analysis   []byte
		resolved   []byte
	)
	if err := s.Scan(&slip.SlipID, &slip.CreatedAt, &resolvedAt, &analysis, &resolved); err != nil {
		return nil, err
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time.UTC()
		slip.ResolvedAt = &t
	}
	slip.CreatedAt = slip.CreatedAt.UTC()
	slip.Analysis = json.RawMessage(analysis)
	if len(resolved) > 0 {
		slip.Resolved = json.RawMessage(resolved)
	}
	return &slip, nil
}
