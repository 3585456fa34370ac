package verification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/event-registration-api/internal/domain"
	pkgtoken "github.com/event-registration-api/internal/pkg/token"
)

// Service is the one-time-secret lifecycle: numeric OTPs delivered out of band
// and opaque magic-link tokens. Issuing invalidates any prior unconsumed
// secret of the same purpose; consumption is atomic and exactly-once.
type Service interface {
	IssueOTP(ctx context.Context, userID, contact string, purpose domain.OTPPurpose, ttl time.Duration) (string, error)
	VerifyOTP(ctx context.Context, contact string, purpose domain.OTPPurpose, code string) (string, error)
	IssueToken(ctx context.Context, userID string, purpose domain.TokenPurpose, ttl time.Duration) (string, error)
	ConsumeToken(ctx context.Context, token string, purpose domain.TokenPurpose) (string, error)
	Sweep(ctx context.Context) error
	RunSweeper(ctx context.Context, interval time.Duration)
}

type otpStore interface {
	Put(ctx context.Context, o *domain.OTP) error
	Consume(ctx context.Context, contact string, purpose domain.OTPPurpose, code string) (string, error)
	DeleteExpired(ctx context.Context) (int, error)
}

type tokenStore interface {
	Put(ctx context.Context, t *domain.VerificationToken) error
	DeleteUnused(ctx context.Context, userID string, purpose domain.TokenPurpose) error
	Consume(ctx context.Context, token string, purpose domain.TokenPurpose) (string, error)
	DeleteExpired(ctx context.Context) (int, error)
}

type userStore interface {
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type service struct {
	otpRepo   otpStore
	tokenRepo tokenStore
	userRepo  userStore
	otpLength int
}

type ServiceDeps struct {
	OTPRepo   otpStore
	TokenRepo tokenStore
	UserRepo  userStore
	OTPLength int
}

func NewService(deps ServiceDeps) Service {
	length := deps.OTPLength
	if length <= 0 {
		length = 6
	}
	return &service{
		otpRepo:   deps.OTPRepo,
		tokenRepo: deps.TokenRepo,
		userRepo:  deps.UserRepo,
		otpLength: length,
	}
}

// IssueOTP generates a numeric code for the contact and persists it. The
// (contact, purpose) keyed write replaces any previous unconsumed code, so a
// resend always invalidates the earlier one. Returns the plaintext code for
// out-of-band delivery.
func (s *service) IssueOTP(ctx context.Context, userID, contact string, purpose domain.OTPPurpose, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("otp ttl must be positive: %w", domain.ErrBadRequest)
	}
	code, err := pkgtoken.NewOTPCode(s.otpLength)
	if err != nil {
		return "", err
	}
	now := time.Now()
	o := &domain.OTP{
		Contact:   contact,
		Purpose:   purpose,
		UserID:    userID,
		Code:      code,
		ExpiresAt: now.Add(ttl).Unix(),
		CreatedAt: now.Unix(),
	}
	if err := s.otpRepo.Put(ctx, o); err != nil {
		return "", err
	}
	return code, nil
}

// VerifyOTP consumes a presented code and returns the owning user id. The
// store performs a conditional update, so under concurrent calls exactly one
// succeeds. Success marks the user verified; every failure mode collapses to
// domain.ErrTokenInvalid.
func (s *service) VerifyOTP(ctx context.Context, contact string, purpose domain.OTPPurpose, code string) (string, error) {
	userID, err := s.otpRepo.Consume(ctx, contact, purpose, code)
	if err != nil {
		return "", err
	}
	if err := s.userRepo.Update(ctx, userID, map[string]interface{}{"verified": true}); err != nil {
		return "", err
	}
	return userID, nil
}

// IssueToken generates an opaque magic-link token. Prior unconsumed tokens of
// the same purpose are deleted first, so only the newest link works.
func (s *service) IssueToken(ctx context.Context, userID string, purpose domain.TokenPurpose, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("token ttl must be positive: %w", domain.ErrBadRequest)
	}
	tok, err := pkgtoken.NewLinkToken()
	if err != nil {
		return "", err
	}
	if err := s.tokenRepo.DeleteUnused(ctx, userID, purpose); err != nil {
		return "", err
	}
	now := time.Now()
	t := &domain.VerificationToken{
		Token:     tok,
		UserID:    userID,
		Purpose:   purpose,
		ExpiresAt: now.Add(ttl).Unix(),
		CreatedAt: now.Unix(),
	}
	if err := s.tokenRepo.Put(ctx, t); err != nil {
		return "", err
	}
	return tok, nil
}

// ConsumeToken redeems a magic-link token once and returns the owning user id.
// verify_email marks the user verified; reset_password leaves the user row to
// the caller, which sets the new password hash.
func (s *service) ConsumeToken(ctx context.Context, token string, purpose domain.TokenPurpose) (string, error) {
	userID, err := s.tokenRepo.Consume(ctx, token, purpose)
	if err != nil {
		return "", err
	}
	if purpose == domain.TokenVerifyEmail {
		if err := s.userRepo.Update(ctx, userID, map[string]interface{}{"verified": true}); err != nil {
			return "", err
		}
	}
	return userID, nil
}

// Sweep garbage-collects expired OTP and token rows. Expiry is already
// enforced on every read, so the sweep only keeps the tables small.
func (s *service) Sweep(ctx context.Context) error {
	otps, err := s.otpRepo.DeleteExpired(ctx)
	if err != nil {
		return fmt.Errorf("sweep otps: %w", err)
	}
	tokens, err := s.tokenRepo.DeleteExpired(ctx)
	if err != nil {
		return fmt.Errorf("sweep tokens: %w", err)
	}
	if otps > 0 || tokens > 0 {
		slog.Info("swept expired secrets", "otps", otps, "tokens", tokens)
	}
	return nil
}

// RunSweeper runs Sweep on the given interval until ctx is cancelled.
// Failures are logged and never propagate to request paths.
func (s *service) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				slog.Error("secret sweep failed", "err", err)
			}
		}
	}
}
