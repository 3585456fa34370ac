package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// ErrTokenInvalid covers every OTP/token verification failure: wrong code,
	// expired, already consumed, wrong purpose. Callers surface a single
	// "invalid or expired" outcome and never distinguish the reasons.
	ErrTokenInvalid = errors.New("invalid or expired token")

	// ErrUpstream marks failures of external senders/uploaders (email, SMS, S3).
	ErrUpstream = errors.New("upstream service failed")
)
