package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"time"

	"github.com/onurcolak/dispatch-service/environments"
	"github.com/onurcolak/dispatch-service/internal/audit"
	"github.com/onurcolak/dispatch-service/internal/domain"
	"github.com/onurcolak/dispatch-service/internal/errs"
	"github.com/onurcolak/dispatch-service/internal/metrics"
	"github.com/onurcolak/dispatch-service/pkg/logger"
)

var otpPattern = regexp.MustCompile(`^\d{6}$`)

var errMissingSubject = errors.New("subject id is required")

type otpStore interface {
	Create(ctx context.Context, rec *domain.OtpRecord) error
	FindLatestUnverified(ctx context.Context, userID, code string) (*domain.OtpRecord, error)
	HasVerified(ctx context.Context, userID, code string) (bool, error)
	MarkVerified(ctx context.Context, id int64) (bool, error)
	UpdateType(ctx context.Context, id int64, channels string) error
	Discard(ctx context.Context, id int64) error
}

type dispatcher interface {
	Plan(ctx context.Context, templateID int64, recipient domain.Recipient) ([]domain.Channel, error)
	Dispatch(ctx context.Context, req domain.DispatchRequest) (*domain.DispatchResult, error)
}

type OtpService struct {
	store      otpStore
	dispatcher dispatcher
	config     environments.OTPConfig
	audit      auditRecorder
	metrics    *metrics.Metrics
	now        func() time.Time
	generate   func() (string, error)
}

func NewOtpService(
	store otpStore,
	dispatcher dispatcher,
	config environments.OTPConfig,
	recorder auditRecorder,
	m *metrics.Metrics,
) *OtpService {
	return &OtpService{
		store:      store,
		dispatcher: dispatcher,
		config:     config,
		audit:      recorder,
		metrics:    m,
		now:        time.Now,
		generate:   generateCode,
	}
}

// generateCode returns a uniformly random six digit code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

// Issue stores a new code for the subject and dispatches it through the OTP
// template. The record is persisted before any job is enqueued, so a code can
// be verified as soon as it arrives.
func (s *OtpService) Issue(ctx context.Context, req domain.OtpIssueRequest) (*domain.OtpIssueResult, error) {
	if req.SubjectID == "" {
		return nil, errMissingSubject
	}
	if req.Contact.Empty() {
		return nil, errs.ErrNoContact
	}

	channels, err := s.dispatcher.Plan(ctx, s.config.TemplateID, req.Contact)
	if err != nil {
		return nil, err
	}
	if len(channels) == 0 {
		return &domain.OtpIssueResult{
			Issued:  false,
			Message: "No delivery channel is available for the given contact",
		}, nil
	}

	code, err := s.generate()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rec := &domain.OtpRecord{
		UserID:    req.SubjectID,
		Otp:       code,
		Type:      joinChannels(channels),
		ExpiresAt: now.Add(s.config.TTL),
		CreatedAt: now,
	}
	if err := s.store.Create(ctx, rec); err != nil {
		return nil, err
	}

	values := make(map[string]string, len(req.Placeholders)+2)
	for k, v := range req.Placeholders {
		values[k] = v
	}
	values["{OTP}"] = code
	values["{EXPIRY_MINUTES}"] = strconv.Itoa(int(s.config.TTL / time.Minute))

	result, err := s.dispatcher.Dispatch(ctx, domain.DispatchRequest{
		TemplateID:   s.config.TemplateID,
		Placeholders: values,
		Recipient:    req.Contact,
		SubjectID:    req.SubjectID,
	})
	if err != nil {
		s.discard(ctx, rec.ID)
		return nil, err
	}

	// The record names the channels the code actually left through, and a code
	// that was never sent cannot be verified.
	sent := result.Channels()
	if len(sent) == 0 {
		s.discard(ctx, rec.ID)
		return &domain.OtpIssueResult{
			Issued:  false,
			Message: "No delivery channel is available for the given contact",
		}, nil
	}
	if sentType := joinChannels(sent); sentType != rec.Type {
		if err := s.store.UpdateType(context.WithoutCancel(ctx), rec.ID, sentType); err != nil {
			logger.With(ctx).Warnf("Failed to update channels of OTP %d: %v", rec.ID, err)
		}
	}

	s.metrics.OtpIssue()
	logger.With(ctx).Infof("Issued OTP %d for subject %s via %s", rec.ID, req.SubjectID, joinChannels(sent))
	s.record(ctx, audit.Entry{
		Table:  "otp_verifications",
		RowID:  strconv.FormatInt(rec.ID, 10),
		Action: "otp.issued",
		Remark: joinChannels(sent),
	})

	return &domain.OtpIssueResult{
		Issued:    true,
		Channels:  sent,
		ExpiresAt: rec.ExpiresAt,
		Message:   issueMessage(sent),
	}, nil
}

func (s *OtpService) discard(ctx context.Context, id int64) {
	if err := s.store.Discard(context.WithoutCancel(ctx), id); err != nil {
		logger.With(ctx).Errorf("Failed to discard unsent OTP %d: %v", id, err)
	}
}

func issueMessage(channels []domain.Channel) string {
	var phone, email bool
	for _, c := range channels {
		if c.UsesPhone() {
			phone = true
		} else {
			email = true
		}
	}

	switch {
	case phone && email:
		return "OTP sent to your registered mobile no. and email id"
	case email:
		return "OTP sent to your registered email id"
	default:
		return "OTP sent to your registered mobile no."
	}
}

// Verify checks a code for the subject. Failures are reported both in the
// result reason and as the matching errs sentinel.
func (s *OtpService) Verify(ctx context.Context, subjectID, code string) (*domain.OtpVerifyResult, error) {
	if !otpPattern.MatchString(code) {
		return s.reject(domain.OtpReasonInvalid, errs.ErrOtpInvalid)
	}

	rec, err := s.store.FindLatestUnverified(ctx, subjectID, code)
	if err != nil {
		return nil, err
	}

	if rec == nil {
		verified, err := s.store.HasVerified(ctx, subjectID, code)
		if err != nil {
			return nil, err
		}
		if verified {
			return s.reject(domain.OtpReasonAlreadyVerified, errs.ErrOtpAlreadyVerified)
		}
		return s.reject(domain.OtpReasonInvalid, errs.ErrOtpInvalid)
	}

	if rec.Expired(s.now()) {
		return s.reject(domain.OtpReasonExpired, errs.ErrOtpExpired)
	}

	marked, err := s.store.MarkVerified(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	if !marked {
		return s.reject(domain.OtpReasonAlreadyVerified, errs.ErrOtpAlreadyVerified)
	}

	s.metrics.OtpVerify("verified")
	s.record(ctx, audit.Entry{
		Table:  "otp_verifications",
		RowID:  strconv.FormatInt(rec.ID, 10),
		Action: "otp.verified",
	})

	return &domain.OtpVerifyResult{Verified: true}, nil
}

func (s *OtpService) reject(reason domain.OtpFailureReason, err error) (*domain.OtpVerifyResult, error) {
	s.metrics.OtpVerify(string(reason))
	return &domain.OtpVerifyResult{Verified: false, Reason: reason}, err
}

func (s *OtpService) record(ctx context.Context, entry audit.Entry) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, entry)
}
