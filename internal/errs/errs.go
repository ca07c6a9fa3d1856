package errs

import "errors"

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrNoActiveProvider = errors.New("no active provider")
	ErrProviderNotFound = errors.New("provider not found")
	ErrRender           = errors.New("render error")
	ErrNoContact        = errors.New("no contact information")
	ErrEnqueue          = errors.New("failed to enqueue dispatch job")

	ErrTransport = errors.New("transport error")
	ErrHTTP      = errors.New("http error")

	ErrOtpInvalid         = errors.New("invalid OTP")
	ErrOtpExpired         = errors.New("OTP expired")
	ErrOtpAlreadyVerified = errors.New("OTP already verified")

	ErrDeliveryNotFound = errors.New("delivery log entry not found")
	ErrReplayNotAllowed = errors.New("only failed deliveries can be replayed")
)
