package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/dispatch-service/internal/domain"
)

const signatureColumns = `id, signature_type, signature, status, created_at, updated_at`

type SignatureRepository struct {
	db *sqlx.DB
}

func NewSignatureRepository(db *sqlx.DB) *SignatureRepository {
	return &SignatureRepository{db: db}
}

// GetActive returns the lowest-id Active signature for the channel, or nil, nil.
func (r *SignatureRepository) GetActive(ctx context.Context, channel domain.Channel) (*domain.SignatureConfig, error) {
	query := `SELECT ` + signatureColumns + `
		FROM msg_signatures
		WHERE status = 'Active' AND signature_type = ?
		ORDER BY id ASC
		LIMIT 1`

	var sig domain.SignatureConfig
	if err := r.db.GetContext(ctx, &sig, query, channel); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active signature: %w", err)
	}

	return &sig, nil
}

func (r *SignatureRepository) List(ctx context.Context) ([]domain.SignatureConfig, error) {
	query := `SELECT ` + signatureColumns + ` FROM msg_signatures ORDER BY signature_type ASC`

	var sigs []domain.SignatureConfig
	if err := r.db.SelectContext(ctx, &sigs, query); err != nil {
		return nil, fmt.Errorf("failed to list signatures: %w", err)
	}

	return sigs, nil
}

// Upsert keeps one signature row per channel type.
func (r *SignatureRepository) Upsert(
	ctx context.Context,
	channel domain.Channel,
	signature string,
	status domain.Status,
) (*domain.SignatureConfig, error) {
	query := `
		INSERT INTO msg_signatures (signature_type, signature, status, created_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON DUPLICATE KEY UPDATE signature = VALUES(signature), status = VALUES(status), updated_at = CURRENT_TIMESTAMP
	`

	if _, err := r.db.ExecContext(ctx, query, channel, signature, status); err != nil {
		return nil, fmt.Errorf("failed to upsert signature: %w", err)
	}

	var sig domain.SignatureConfig
	get := `SELECT ` + signatureColumns + ` FROM msg_signatures WHERE signature_type = ?`
	if err := r.db.GetContext(ctx, &sig, get, channel); err != nil {
		return nil, fmt.Errorf("failed to read signature: %w", err)
	}

	return &sig, nil
}
