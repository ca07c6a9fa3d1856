package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/dispatch-service/internal/domain"
)

const otpColumns = `id, user_id, otp, type, expires_at, is_verified, created_at`

type OtpRepository struct {
	db *sqlx.DB
}

func NewOtpRepository(db *sqlx.DB) *OtpRepository {
	return &OtpRepository{db: db}
}

func (r *OtpRepository) Create(ctx context.Context, rec *domain.OtpRecord) error {
	query := `
		INSERT INTO otp_verifications (user_id, otp, type, expires_at, is_verified, created_at)
		VALUES (?, ?, ?, ?, 0, ?)
	`

	result, err := r.db.ExecContext(ctx, query, rec.UserID, rec.Otp, rec.Type, rec.ExpiresAt, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create otp record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	rec.ID = id

	return nil
}

// FindLatestUnverified returns the most recently created unverified record for
// the subject and code, or nil, nil.
func (r *OtpRepository) FindLatestUnverified(ctx context.Context, userID, code string) (*domain.OtpRecord, error) {
	query := `SELECT ` + otpColumns + `
		FROM otp_verifications
		WHERE user_id = ? AND otp = ? AND is_verified = 0
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	var rec domain.OtpRecord
	if err := r.db.GetContext(ctx, &rec, query, userID, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find otp record: %w", err)
	}

	return &rec, nil
}

// HasVerified reports whether the subject already consumed this code.
func (r *OtpRepository) HasVerified(ctx context.Context, userID, code string) (bool, error) {
	query := `SELECT COUNT(*) FROM otp_verifications WHERE user_id = ? AND otp = ? AND is_verified = 1`

	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, code); err != nil {
		return false, fmt.Errorf("failed to check verified otp: %w", err)
	}

	return count > 0, nil
}

// MarkVerified flips is_verified once. It returns false when the record was
// already verified by a concurrent call.
func (r *OtpRepository) MarkVerified(ctx context.Context, id int64) (bool, error) {
	query := `UPDATE otp_verifications SET is_verified = 1 WHERE id = ? AND is_verified = 0`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark otp verified: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows == 1, nil
}

func (r *OtpRepository) UpdateType(ctx context.Context, id int64, channels string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE otp_verifications SET type = ? WHERE id = ?`, channels, id); err != nil {
		return fmt.Errorf("failed to update otp type: %w", err)
	}
	return nil
}

// Discard removes a code that was never delivered. Verified records are kept.
func (r *OtpRepository) Discard(ctx context.Context, id int64) error {
	query := `DELETE FROM otp_verifications WHERE id = ? AND is_verified = 0`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to discard otp record: %w", err)
	}
	return nil
}
