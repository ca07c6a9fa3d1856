package domain

import "time"

type OtpRecord struct {
	ID         int64     `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"userId"`
	Otp        string    `db:"otp" json:"-"`
	Type       string    `db:"type" json:"type"`
	ExpiresAt  time.Time `db:"expires_at" json:"expiresAt"`
	IsVerified bool      `db:"is_verified" json:"isVerified"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// Expired reports whether the record can no longer be verified at now.
func (r *OtpRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

type OtpIssueRequest struct {
	SubjectID    string
	Contact      Recipient
	Placeholders map[string]string
}

type OtpIssueResult struct {
	Issued    bool      `json:"issued"`
	Channels  []Channel `json:"channels,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	Message   string    `json:"message"`
}

type OtpFailureReason string

const (
	OtpReasonInvalid         OtpFailureReason = "invalid"
	OtpReasonExpired         OtpFailureReason = "expired"
	OtpReasonAlreadyVerified OtpFailureReason = "already_verified"
)

type OtpVerifyResult struct {
	Verified bool             `json:"verified"`
	Reason   OtpFailureReason `json:"reason,omitempty"`
}
