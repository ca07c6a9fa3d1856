package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/dispatch-service/internal/domain"
)

const deliveryColumns = `id, job_id, channel, api_id, numbers, message, base_url, params,
	COALESCE(api_response, '') AS api_response, status, job_payload, created_at`

// DeliveryLogRepository is the append-only store of executed jobs.
type DeliveryLogRepository struct {
	db *sqlx.DB
}

func NewDeliveryLogRepository(db *sqlx.DB) *DeliveryLogRepository {
	return &DeliveryLogRepository{db: db}
}

func (r *DeliveryLogRepository) Create(ctx context.Context, entry *domain.DeliveryLogEntry) error {
	query := `
		INSERT INTO msg_logs
			(job_id, channel, api_id, numbers, message, base_url, params, api_response, status, job_payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		entry.JobID, entry.Channel, entry.APIID, entry.Numbers, entry.Message, entry.BaseURL,
		entry.Params, entry.APIResponse, entry.Status, entry.JobPayload, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create delivery log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	entry.ID = id

	return nil
}

func (r *DeliveryLogRepository) GetByID(ctx context.Context, id int64) (*domain.DeliveryLogEntry, error) {
	query := `SELECT ` + deliveryColumns + ` FROM msg_logs WHERE id = ?`

	var entry domain.DeliveryLogEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get delivery log: %w", err)
	}

	return &entry, nil
}

func (r *DeliveryLogRepository) GetAll(
	ctx context.Context,
	filter domain.DeliveryFilter,
	page, pageSize int,
) ([]domain.DeliveryLogEntry, int64, error) {
	offset := (page - 1) * pageSize

	var (
		conditions []string
		args       []any
	)
	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *filter.Status)
	}
	if filter.Channel != nil {
		conditions = append(conditions, "channel = ?")
		args = append(args, *filter.Channel)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var totalCount int64
	if err := r.db.GetContext(ctx, &totalCount, "SELECT COUNT(*) FROM msg_logs"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count delivery logs: %w", err)
	}

	query := `SELECT ` + deliveryColumns + ` FROM msg_logs` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`

	var entries []domain.DeliveryLogEntry
	if err := r.db.SelectContext(ctx, &entries, query, append(args, pageSize, offset)...); err != nil {
		return nil, 0, fmt.Errorf("failed to get delivery logs: %w", err)
	}

	return entries, totalCount, nil
}

func (r *DeliveryLogRepository) GetStats(ctx context.Context) (*domain.DeliveryStats, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END), 0) AS success,
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0)  AS failed,
			COUNT(*) AS total
		FROM msg_logs
	`

	var stats domain.DeliveryStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return &stats, nil
}
