package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/event-registration-api/internal/application/auth"
	"github.com/event-registration-api/internal/domain"
	jwtinfra "github.com/event-registration-api/internal/infrastructure/jwt"
	"github.com/event-registration-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) RegisterMobile(ctx context.Context, req domain.RegisterMobileRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
func (m *mockAuthSvc) RegisterEmail(ctx context.Context, req domain.RegisterEmailRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
func (m *mockAuthSvc) LoginMobile(ctx context.Context, req domain.LoginMobileRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
func (m *mockAuthSvc) LoginEmail(ctx context.Context, req domain.LoginEmailRequest) (*auth.LoginResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*auth.LoginResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthSvc) VerifyOTP(ctx context.Context, req auth.VerifyOTPRequest) (*auth.LoginResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*auth.LoginResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthSvc) ResendVerification(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
func (m *mockAuthSvc) VerifyEmail(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}
func (m *mockAuthSvc) RequestPasswordReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
func (m *mockAuthSvc) ResetPassword(ctx context.Context, req auth.ResetPasswordRequest) error {
	return m.Called(ctx, req).Error(0)
}
func (m *mockAuthSvc) Logout(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}
func (m *mockAuthSvc) CurrentSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func postJSON(t *testing.T, h http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// --- tests ---

func TestRegisterEmail_InvalidBody(t *testing.T) {
	h := NewAuthHandler(&mockAuthSvc{})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	h.RegisterEmail(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegisterEmail_ValidationFailure_ShortPassword(t *testing.T) {
	h := NewAuthHandler(&mockAuthSvc{})
	rr := postJSON(t, h.RegisterEmail, map[string]string{"email": "a@b.com", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegisterEmail_Duplicate_MapsToConflict(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("RegisterEmail", mock.Anything, mock.Anything).Return("", domain.ErrConflict)
	h := NewAuthHandler(svc)

	rr := postJSON(t, h.RegisterEmail, map[string]string{"email": "a@b.com", "password": "long-enough-pw"})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestRegisterEmail_Success_Created(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("RegisterEmail", mock.Anything, mock.Anything).Return("u1", nil)
	h := NewAuthHandler(svc)

	rr := postJSON(t, h.RegisterEmail, map[string]string{"email": "a@b.com", "password": "long-enough-pw"})
	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp RegisterEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "u1", resp.UserID)
}

func TestLoginEmail_BadCredentials_Unauthorized(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("LoginEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrUnauthorized)
	h := NewAuthHandler(svc)

	rr := postJSON(t, h.LoginEmail, map[string]string{"email": "a@b.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLoginEmail_Success_ReturnsBearer(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("LoginEmail", mock.Anything, mock.Anything).Return(&auth.LoginResult{
		Bearer:  "jwt-token",
		Session: &domain.Session{SessionID: "s1", UserID: "u1"},
	}, nil)
	h := NewAuthHandler(svc)

	rr := postJSON(t, h.LoginEmail, map[string]string{"email": "a@b.com", "password": "right-password"})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp AuthEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "jwt-token", resp.Bearer)
}

func TestVerifyEmail_InvalidToken_Unauthorized(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("VerifyEmail", mock.Anything, "bad-token-xyz").Return(domain.ErrTokenInvalid)
	h := NewAuthHandler(svc)

	rr := postJSON(t, h.VerifyEmail, map[string]string{"token": "bad-token-xyz"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequestPasswordReset_AlwaysOK(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("RequestPasswordReset", mock.Anything, "ghost@b.com").Return(nil)
	h := NewAuthHandler(svc)

	rr := postJSON(t, h.RequestPasswordReset, map[string]string{"email": "ghost@b.com"})
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestLogout_UsesSessionFromClaims(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Logout", mock.Anything, "s1").Return(nil)
	h := NewAuthHandler(svc)

	claims := &jwtinfra.Claims{UserID: "u1", SessionID: "s1"}
	ctx := context.WithValue(context.Background(), middleware.ClaimsKey, claims)
	req := httptest.NewRequest(http.MethodPost, "/", nil).WithContext(ctx)
	rr := httptest.NewRecorder()
	h.Logout(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestLogout_NoClaims_Unauthorized(t *testing.T) {
	h := NewAuthHandler(&mockAuthSvc{})
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rr := httptest.NewRecorder()
	h.Logout(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
