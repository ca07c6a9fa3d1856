package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/dispatch-service/internal/domain"
	"github.com/onurcolak/dispatch-service/internal/errs"
)

const providerColumns = `id, api_type, base_url, params, method, status, created_at, updated_at`

type ProviderRepository struct {
	db *sqlx.DB
}

func NewProviderRepository(db *sqlx.DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

// GetActive returns the lowest-id Active provider for the channel, or nil, nil.
func (r *ProviderRepository) GetActive(ctx context.Context, channel domain.Channel) (*domain.ProviderConfig, error) {
	query := `SELECT ` + providerColumns + `
		FROM msg_apis
		WHERE status = 'Active' AND api_type = ?
		ORDER BY id ASC
		LIMIT 1`

	var provider domain.ProviderConfig
	if err := r.db.GetContext(ctx, &provider, query, channel); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active provider: %w", err)
	}

	return &provider, nil
}

func (r *ProviderRepository) GetByID(ctx context.Context, id int64) (*domain.ProviderConfig, error) {
	query := `SELECT ` + providerColumns + ` FROM msg_apis WHERE id = ?`

	var provider domain.ProviderConfig
	if err := r.db.GetContext(ctx, &provider, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}

	return &provider, nil
}

func (r *ProviderRepository) List(ctx context.Context) ([]domain.ProviderConfig, error) {
	query := `SELECT ` + providerColumns + ` FROM msg_apis ORDER BY api_type ASC, id ASC`

	var providers []domain.ProviderConfig
	if err := r.db.SelectContext(ctx, &providers, query); err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}

	return providers, nil
}

// Create stores a new provider. New providers start Inactive; use SetStatus to
// activate them so exclusivity is enforced.
func (r *ProviderRepository) Create(ctx context.Context, p *domain.ProviderConfig) (*domain.ProviderConfig, error) {
	query := `
		INSERT INTO msg_apis (api_type, base_url, params, method, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, 'Inactive', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`

	result, err := r.db.ExecContext(ctx, query, p.APIType, p.BaseURL, p.Params, p.Method)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return r.GetByID(ctx, id)
}

// SetStatus changes a provider's status. Activating a provider deactivates every
// other provider of the same channel in the same transaction.
func (r *ProviderRepository) SetStatus(ctx context.Context, id int64, status domain.Status) (*domain.ProviderConfig, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var apiType domain.Channel
	if err := tx.GetContext(ctx, &apiType, `SELECT api_type FROM msg_apis WHERE id = ? FOR UPDATE`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %d", errs.ErrProviderNotFound, id)
		}
		return nil, fmt.Errorf("failed to lock provider: %w", err)
	}

	if status == domain.StatusActive {
		deactivate := `
			UPDATE msg_apis
			SET status = 'Inactive', updated_at = CURRENT_TIMESTAMP
			WHERE api_type = ? AND id <> ? AND status = 'Active'
		`
		if _, err := tx.ExecContext(ctx, deactivate, apiType, id); err != nil {
			return nil, fmt.Errorf("failed to deactivate sibling providers: %w", err)
		}
	}

	update := `UPDATE msg_apis SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := tx.ExecContext(ctx, update, status, id); err != nil {
		return nil, fmt.Errorf("failed to update provider status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit provider status: %w", err)
	}

	return r.GetByID(ctx, id)
}
