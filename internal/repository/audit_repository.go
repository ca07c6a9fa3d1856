package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/dispatch-service/internal/audit"
)

// AuditRepository persists audit trail entries.
type AuditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Write(ctx context.Context, entry audit.Entry) error {
	query := `
		INSERT INTO audit_trail (table_name, row_id, action, actor_id, ip_address, correlation_id, remark, created_at)
		VALUES (?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.Table, entry.RowID, entry.Action, entry.ActorID, entry.IP, entry.CorrelationID,
		entry.Remark, entry.At,
	)
	if err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}

	return nil
}
