package domain

import "time"

type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

const (
	MethodGet  = "GET"
	MethodPost = "POST"
	MethodSMTP = "SMTP"
)

// ProviderConfig is a gateway endpoint for one channel. Params is a query
// template holding tokens such as [NUMBER] and [MESSAGE].
type ProviderConfig struct {
	ID        int64     `db:"id" json:"id"`
	APIType   Channel   `db:"api_type" json:"apiType"`
	BaseURL   string    `db:"base_url" json:"baseUrl"`
	Params    string    `db:"params" json:"params"`
	Method    string    `db:"method" json:"method"`
	Status    Status    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type SignatureConfig struct {
	ID            int64     `db:"id" json:"id"`
	SignatureType Channel   `db:"signature_type" json:"signatureType"`
	Signature     string    `db:"signature" json:"signature"`
	Status        Status    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}
