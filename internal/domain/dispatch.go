package domain

import "time"

// Recipient holds the contact points a dispatch may use.
type Recipient struct {
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// For returns the address used by the given channel, or "" when missing.
func (r Recipient) For(channel Channel) string {
	if channel.UsesPhone() {
		return r.Phone
	}
	return r.Email
}

func (r Recipient) Empty() bool {
	return r.Phone == "" && r.Email == ""
}

type DispatchRequest struct {
	TemplateID   int64
	Placeholders map[string]string
	Recipient    Recipient
	Attachment   string
	SubjectID    string
}

// ProviderRef is the snapshot of a provider bound into a job, so workers never
// resolve providers themselves.
type ProviderRef struct {
	ID      int64  `json:"id"`
	BaseURL string `json:"baseUrl"`
	Params  string `json:"params"`
	Method  string `json:"method"`
}

// DispatchJob is one rendered, provider-bound unit of work for a single channel.
type DispatchJob struct {
	ID            string      `json:"id"`
	Channel       Channel     `json:"channel"`
	TemplateID    int64       `json:"templateId"`
	TemplateRef   string      `json:"templateRef,omitempty"`
	Recipient     string      `json:"recipient"`
	Subject       string      `json:"subject,omitempty"`
	Title         string      `json:"title,omitempty"`
	Message       string      `json:"message"`
	Attachment    string      `json:"attachment,omitempty"`
	Provider      ProviderRef `json:"provider"`
	SubjectID     string      `json:"subjectId,omitempty"`
	ActorID       string      `json:"actorId,omitempty"`
	CorrelationID string      `json:"correlationId,omitempty"`
	EnqueuedAt    time.Time   `json:"enqueuedAt"`
}

type SkipReason string

const (
	SkipDisabled         SkipReason = "disabled"
	SkipExcluded         SkipReason = "excluded"
	SkipNoContent        SkipReason = "no_content"
	SkipNoRecipient      SkipReason = "no_recipient"
	SkipNoActiveProvider SkipReason = "no_active_provider"
	SkipRenderError      SkipReason = "render_error"
	SkipEnqueueFailed    SkipReason = "enqueue_failed"
)

type ChannelSkip struct {
	Channel Channel    `json:"channel"`
	Reason  SkipReason `json:"reason"`
}

type JobRef struct {
	ID      string  `json:"id"`
	Channel Channel `json:"channel"`
}

type DispatchResult struct {
	Accepted bool          `json:"accepted"`
	Jobs     []JobRef      `json:"jobs"`
	Skipped  []ChannelSkip `json:"skipped,omitempty"`
}

// Channels lists the channels a job was enqueued for.
func (r *DispatchResult) Channels() []Channel {
	channels := make([]Channel, 0, len(r.Jobs))
	for _, j := range r.Jobs {
		channels = append(channels, j.Channel)
	}
	return channels
}

// ExecutionResult is the outcome of one outbound provider call. Err classifies
// failures and is never returned past the executor.
type ExecutionResult struct {
	Success    bool
	StatusCode int
	URL        string
	Params     string
	Response   string
	Err        error
	Duration   time.Duration
}
