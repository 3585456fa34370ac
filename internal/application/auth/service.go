package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/event-registration-api/internal/application/verification"
	"github.com/event-registration-api/internal/domain"
	"github.com/event-registration-api/internal/infrastructure/smtp"
	"github.com/event-registration-api/internal/infrastructure/sns"
	"github.com/event-registration-api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

type VerifyOTPRequest struct {
	Contact string `json:"contact" validate:"required"`
	Code    string `json:"code" validate:"required"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required,min=10"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginResult bundles the signed bearer token with its session.
type LoginResult struct {
	Bearer  string
	Session *domain.Session
}

type Service interface {
	RegisterMobile(ctx context.Context, req domain.RegisterMobileRequest) (string, error)
	RegisterEmail(ctx context.Context, req domain.RegisterEmailRequest) (string, error)
	LoginMobile(ctx context.Context, req domain.LoginMobileRequest) (string, error)
	LoginEmail(ctx context.Context, req domain.LoginEmailRequest) (*LoginResult, error)
	VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*LoginResult, error)
	ResendVerification(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	Logout(ctx context.Context, sessionID string) error
	CurrentSession(ctx context.Context, sessionID string) (*domain.Session, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByMobile(ctx context.Context, mobile string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteByUser(ctx context.Context, userID string) error
}

type jwtSigner interface {
	Sign(userID, sessionID, role string) (string, error)
}

type service struct {
	userRepo    userStore
	sessionRepo sessionStore
	verifier    verification.Service
	mailer      smtp.Mailer
	smsSender   sns.SMSSender
	jwtProvider jwtSigner

	appURL        string
	otpTTL        time.Duration
	emailTokenTTL time.Duration
	resetTokenTTL time.Duration
	sessionTTL    time.Duration
}

type ServiceDeps struct {
	UserRepo    userStore
	SessionRepo sessionStore
	Verifier    verification.Service
	Mailer      smtp.Mailer
	SMSSender   sns.SMSSender
	JWTProvider jwtSigner

	AppURL        string
	OTPTTL        time.Duration
	EmailTokenTTL time.Duration
	ResetTokenTTL time.Duration
	SessionTTL    time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		userRepo:      deps.UserRepo,
		sessionRepo:   deps.SessionRepo,
		verifier:      deps.Verifier,
		mailer:        deps.Mailer,
		smsSender:     deps.SMSSender,
		jwtProvider:   deps.JWTProvider,
		appURL:        deps.AppURL,
		otpTTL:        deps.OTPTTL,
		emailTokenTTL: deps.EmailTokenTTL,
		resetTokenTTL: deps.ResetTokenTTL,
		sessionTTL:    deps.SessionTTL,
	}
}

// RegisterMobile finds or creates the user for the mobile number and sends a
// login OTP. Re-registering an existing number just re-sends a code.
func (s *service) RegisterMobile(ctx context.Context, req domain.RegisterMobileRequest) (string, error) {
	u, err := s.userRepo.GetByMobile(ctx, req.Mobile)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return "", err
		}
		now := time.Now().UTC()
		u = &domain.User{
			UserID:    id.New(),
			Mobile:    &req.Mobile,
			Name:      req.Name,
			Role:      domain.RoleUser,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.userRepo.Put(ctx, u); err != nil {
			return "", err
		}
	}
	return u.UserID, s.sendMobileOTP(ctx, u.UserID, req.Mobile)
}

// RegisterEmail creates an email+password account and sends a verification
// magic link. Duplicate emails are a Conflict.
func (s *service) RegisterEmail(ctx context.Context, req domain.RegisterEmailRequest) (string, error) {
	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return "", fmt.Errorf("email already registered: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Email:        &req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Put(ctx, u); err != nil {
		return "", err
	}
	return u.UserID, s.sendVerificationEmail(ctx, u.UserID, req.Email)
}

// LoginMobile sends a login OTP to a registered number.
func (s *service) LoginMobile(ctx context.Context, req domain.LoginMobileRequest) (string, error) {
	u, err := s.userRepo.GetByMobile(ctx, req.Mobile)
	if err != nil {
		return "", fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return u.UserID, s.sendMobileOTP(ctx, u.UserID, req.Mobile)
}

// LoginEmail authenticates with password and opens a session. Unknown email
// and wrong password both report the same generic failure.
func (s *service) LoginEmail(ctx context.Context, req domain.LoginEmailRequest) (*LoginResult, error) {
	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	return s.openSession(ctx, u)
}

// VerifyOTP redeems a presented code and opens a session. The purpose is
// inferred from the contact shape: anything containing @ is an email.
func (s *service) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*LoginResult, error) {
	purpose := domain.OTPMobile
	if isEmail(req.Contact) {
		purpose = domain.OTPEmail
	}
	userID, err := s.verifier.VerifyOTP(ctx, req.Contact, purpose, req.Code)
	if err != nil {
		return nil, err
	}
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.openSession(ctx, u)
}

// ResendVerification issues a fresh verification link. The outcome is
// success-shaped whether or not the email belongs to an account, so the
// endpoint cannot be used to enumerate users. Already-verified accounts are
// silently skipped.
func (s *service) ResendVerification(ctx context.Context, email string) error {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil || u.Verified {
		return nil
	}
	return s.sendVerificationEmail(ctx, u.UserID, email)
}

// VerifyEmail consumes a verification magic-link token.
func (s *service) VerifyEmail(ctx context.Context, token string) error {
	_, err := s.verifier.ConsumeToken(ctx, token, domain.TokenVerifyEmail)
	return err
}

// RequestPasswordReset issues a reset link. Same enumeration-safe contract as
// ResendVerification: unknown emails succeed without sending anything.
func (s *service) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil
	}
	tok, err := s.verifier.IssueToken(ctx, u.UserID, domain.TokenResetPassword, s.resetTokenTTL)
	if err != nil {
		return err
	}
	link := fmt.Sprintf("%s/reset-password?token=%s", s.appURL, tok)
	html := fmt.Sprintf(`<p>We received a request to reset your password.</p>
<p>Click the link below to set a new password:</p>
<p><a href="%s">Reset Password</a></p>
<p>This link will expire in %d minutes.</p>`, link, int(s.resetTokenTTL.Minutes()))
	return s.mailer.SendEmail(email, "Reset your password", html)
}

// ResetPassword consumes a reset token, stores the new password hash, marks
// the account verified, and revokes existing sessions.
func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	userID, err := s.verifier.ConsumeToken(ctx, req.Token, domain.TokenResetPassword)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, userID, map[string]interface{}{
		"password_hash": string(hash),
		"verified":      true,
	}); err != nil {
		return err
	}
	return s.sessionRepo.DeleteByUser(ctx, userID)
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	return s.sessionRepo.Delete(ctx, sessionID)
}

// CurrentSession loads and checks the session row behind a bearer token.
func (s *service) CurrentSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", domain.ErrUnauthorized)
	}
	if sess.Revoked || sess.ExpiresAt < time.Now().Unix() {
		return nil, fmt.Errorf("session expired: %w", domain.ErrUnauthorized)
	}
	u, err := s.userRepo.Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	sess.User = u
	return sess, nil
}

func (s *service) openSession(ctx context.Context, u *domain.User) (*LoginResult, error) {
	now := time.Now().UTC()
	sess := &domain.Session{
		SessionID: id.New(),
		UserID:    u.UserID,
		ExpiresAt: now.Add(s.sessionTTL).Unix(),
		CreatedAt: now,
	}
	if err := s.sessionRepo.Put(ctx, sess); err != nil {
		return nil, err
	}
	bearer, err := s.jwtProvider.Sign(u.UserID, sess.SessionID, u.Role)
	if err != nil {
		return nil, err
	}
	sess.User = u
	return &LoginResult{Bearer: bearer, Session: sess}, nil
}

func (s *service) sendMobileOTP(ctx context.Context, userID, mobile string) error {
	code, err := s.verifier.IssueOTP(ctx, userID, mobile, domain.OTPMobile, s.otpTTL)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("Your verification code is: %s. Valid for %d minutes.", code, int(s.otpTTL.Minutes()))
	return s.smsSender.SendSMS(ctx, mobile, msg)
}

func (s *service) sendVerificationEmail(ctx context.Context, userID, email string) error {
	tok, err := s.verifier.IssueToken(ctx, userID, domain.TokenVerifyEmail, s.emailTokenTTL)
	if err != nil {
		return err
	}
	link := fmt.Sprintf("%s/verify-email?token=%s", s.appURL, tok)
	html := fmt.Sprintf(`<p>Welcome!</p>
<p>Please verify your email by clicking the link below:</p>
<p><a href="%s">Verify Email</a></p>
<p>This link will expire in %d hours.</p>`, link, int(s.emailTokenTTL.Hours()))
	return s.mailer.SendEmail(email, "Verify your email", html)
}

func isEmail(contact string) bool {
	for _, r := range contact {
		if r == '@' {
			return true
		}
	}
	return false
}
