package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/dispatch-service/internal/domain"
)

const templateColumns = `id, send_sms, send_whatsapp, send_email, send_notification, sms_content, sms_template_id,
	whatsapp_content, mail_subject, mail_content, notification_title, notification_content, keywords,
	created_at, updated_at`

// TemplateRepository reads message templates. Templates are maintained by the
// admin side and are read-only to the dispatch pipeline.
type TemplateRepository struct {
	db *sqlx.DB
}

func NewTemplateRepository(db *sqlx.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// GetByID returns nil, nil when the template does not exist.
func (r *TemplateRepository) GetByID(ctx context.Context, id int64) (*domain.MessageTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM message_templates WHERE id = ?`

	var tpl domain.MessageTemplate
	if err := r.db.GetContext(ctx, &tpl, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	return &tpl, nil
}
