package database

import (
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/dispatch-service/environments"
	"github.com/onurcolak/dispatch-service/pkg/logger"
)

func NewMySQLDB(cfg environments.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4&collation=utf8mb4_unicode_ci",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
	)

	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Infof("Connected to MySQL database")
	return db, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS message_templates (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		send_sms VARCHAR(3) NOT NULL DEFAULT 'No',
		send_whatsapp VARCHAR(3) NOT NULL DEFAULT 'No',
		send_email VARCHAR(3) NOT NULL DEFAULT 'No',
		send_notification VARCHAR(3) NOT NULL DEFAULT 'No',
		sms_content TEXT,
		sms_template_id VARCHAR(100),
		whatsapp_content TEXT,
		mail_subject VARCHAR(255),
		mail_content TEXT,
		notification_title VARCHAR(255),
		notification_content TEXT,
		keywords TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS msg_apis (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		api_type VARCHAR(20) NOT NULL,
		base_url VARCHAR(500) NOT NULL,
		params VARCHAR(1000) NOT NULL DEFAULT '',
		method VARCHAR(10) NOT NULL DEFAULT 'GET',
		status VARCHAR(10) NOT NULL DEFAULT 'Inactive',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_msg_apis_type_status (api_type, status)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS msg_signatures (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		signature_type VARCHAR(20) NOT NULL,
		signature TEXT NOT NULL,
		status VARCHAR(10) NOT NULL DEFAULT 'Active',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_msg_signatures_type (signature_type)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS msg_logs (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		job_id VARCHAR(36) NOT NULL,
		channel VARCHAR(20) NOT NULL,
		api_id BIGINT NOT NULL,
		numbers VARCHAR(255) NOT NULL,
		message TEXT NOT NULL,
		base_url VARCHAR(500) NOT NULL,
		params TEXT NOT NULL,
		api_response TEXT,
		status VARCHAR(10) NOT NULL,
		job_payload TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_msg_logs_status (status),
		INDEX idx_msg_logs_channel (channel),
		INDEX idx_msg_logs_created_at (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS otp_verifications (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id VARCHAR(64) NOT NULL,
		otp CHAR(6) NOT NULL,
		type VARCHAR(100) NOT NULL,
		expires_at DATETIME(3) NOT NULL,
		is_verified TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		INDEX idx_otp_user_code (user_id, otp, is_verified)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS audit_trail (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		table_name VARCHAR(64) NOT NULL,
		row_id VARCHAR(64) NOT NULL,
		action VARCHAR(64) NOT NULL,
		actor_id VARCHAR(64),
		ip_address VARCHAR(64),
		correlation_id VARCHAR(64),
		remark TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
}

func RunMigrations(db *sqlx.DB) error {
	for _, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	logger.Infof("Database migrations completed")

	return nil
}

type seedTemplate struct {
	id              int64
	sendSMS         string
	sendWhatsApp    string
	sendEmail       string
	smsContent      string
	smsTemplateID   string
	whatsappContent string
	mailSubject     string
	mailContent     string
}

func SeedTestData(db *sqlx.DB) error {
	var count int

	if err := db.Get(&count, "SELECT COUNT(*) FROM message_templates"); err != nil {
		return err
	}

	if count > 0 {
		logger.Infof("Database already has %d templates, skipping seed", count)
		return nil
	}

	templates := []seedTemplate{
		{1, "Yes", "Yes", "Yes", "Hi {FULL_NAME}, welcome aboard!", "1107160000000000001",
			"Hi {FULL_NAME}, welcome aboard!", "Welcome", "Hi {FULL_NAME}, welcome aboard!"},
		{2, "Yes", "Yes", "Yes", "Your verification code is {OTP}. It expires in {EXPIRY_MINUTES} minutes.",
			"1107160000000000002", "Your verification code is {OTP}.", "Verification code",
			"Your verification code is {OTP}."},
		{3, "Yes", "No", "Yes", "Hi {FULL_NAME}, your password was changed.", "", "", "Password changed",
			"Hi {FULL_NAME}, your password was changed."},
		{7, "Yes", "No", "Yes", "Hi {FULL_NAME}, your order {ORDER_ID} has shipped.", "", "", "Order shipped",
			"Hi {FULL_NAME}, your order {ORDER_ID} has shipped."},
		{10, "Yes", "No", "Yes", "Reminder: your appointment is on {DATE}.", "", "", "Reminder",
			"Reminder: your appointment is on {DATE}."},
	}

	for _, tpl := range templates {
		_, err := db.Exec(
			`INSERT INTO message_templates
				(id, send_sms, send_whatsapp, send_email, send_notification, sms_content, sms_template_id,
				 whatsapp_content, mail_subject, mail_content)
			VALUES (?, ?, ?, ?, 'No', ?, NULLIF(?, ''), NULLIF(?, ''), ?, ?)`,
			tpl.id, tpl.sendSMS, tpl.sendWhatsApp, tpl.sendEmail, tpl.smsContent, tpl.smsTemplateID,
			tpl.whatsappContent, tpl.mailSubject, tpl.mailContent,
		)
		if err != nil {
			return fmt.Errorf("failed to seed templates: %w", err)
		}
	}

	seedStatements := []string{
		`INSERT INTO msg_apis (api_type, base_url, params, method, status) VALUES
			('SMS', 'https://sms.example.com/api/send', 'to=[NUMBER]&msg=[MESSAGE]&dlt=[TEMP_ID]', 'GET', 'Active'),
			('WhatsApp', 'https://wa.example.com/api/send', 'phone=[NUMBER]&text=[MESSAGE]&file=[FILE]', 'POST', 'Active'),
			('Email', 'smtp://localhost:1025', 'to=[NUMBER]&subject=[SUBJECT]', 'SMTP', 'Inactive')`,
		`INSERT INTO msg_signatures (signature_type, signature, status) VALUES
			('SMS', '- Dispatch Team', 'Active'),
			('WhatsApp', '_Dispatch Team_', 'Active')`,
	}

	for _, stmt := range seedStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to seed test data: %w", err)
		}
	}

	logger.Infof("Seeded %d templates with providers and signatures", len(templates))
	return nil
}
