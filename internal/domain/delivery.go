package domain

import "time"

type DeliveryStatus string

const (
	DeliverySuccess DeliveryStatus = "success"
	DeliveryFailed  DeliveryStatus = "failed"
)

// DeliveryLogEntry is the append-only record of one executed job.
type DeliveryLogEntry struct {
	ID          int64          `db:"id" json:"id"`
	JobID       string         `db:"job_id" json:"jobId"`
	Channel     Channel        `db:"channel" json:"channel"`
	APIID       int64          `db:"api_id" json:"apiId"`
	Numbers     string         `db:"numbers" json:"numbers"`
	Message     string         `db:"message" json:"message"`
	BaseURL     string         `db:"base_url" json:"baseUrl"`
	Params      string         `db:"params" json:"params"`
	APIResponse string         `db:"api_response" json:"apiResponse"`
	Status      DeliveryStatus `db:"status" json:"status"`
	JobPayload  string         `db:"job_payload" json:"-"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
}

type DeliveryFilter struct {
	Status  *DeliveryStatus
	Channel *Channel
}

type DeliveryStats struct {
	Success int64 `db:"success" json:"success"`
	Failed  int64 `db:"failed" json:"failed"`
	Total   int64 `db:"total" json:"total"`
}

// CachedDelivery is the short-lived outcome kept in valkey per job.
type CachedDelivery struct {
	JobID     string         `json:"jobId"`
	Channel   Channel        `json:"channel"`
	Status    DeliveryStatus `json:"status"`
	Recipient string         `json:"recipient"`
	SentAt    time.Time      `json:"sentAt"`
}
