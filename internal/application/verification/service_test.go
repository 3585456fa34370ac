package verification

import (
	"context"
	"testing"
	"time"

	"github.com/event-registration-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockOTPStore struct{ mock.Mock }

func (m *mockOTPStore) Put(ctx context.Context, o *domain.OTP) error {
	return m.Called(ctx, o).Error(0)
}
func (m *mockOTPStore) Consume(ctx context.Context, contact string, purpose domain.OTPPurpose, code string) (string, error) {
	args := m.Called(ctx, contact, purpose, code)
	return args.String(0), args.Error(1)
}
func (m *mockOTPStore) DeleteExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockTokenStore struct{ mock.Mock }

func (m *mockTokenStore) Put(ctx context.Context, t *domain.VerificationToken) error {
	return m.Called(ctx, t).Error(0)
}
func (m *mockTokenStore) DeleteUnused(ctx context.Context, userID string, purpose domain.TokenPurpose) error {
	return m.Called(ctx, userID, purpose).Error(0)
}
func (m *mockTokenStore) Consume(ctx context.Context, token string, purpose domain.TokenPurpose) (string, error) {
	args := m.Called(ctx, token, purpose)
	return args.String(0), args.Error(1)
}
func (m *mockTokenStore) DeleteExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}

func newTestService(otps *mockOTPStore, ts *mockTokenStore, us *mockUserStore) Service {
	return NewService(ServiceDeps{OTPRepo: otps, TokenRepo: ts, UserRepo: us, OTPLength: 6})
}

// --- IssueOTP ---

func TestIssueOTP_GeneratesAndStoresCode(t *testing.T) {
	otps := &mockOTPStore{}
	var stored *domain.OTP
	otps.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.OTP)
	}).Return(nil)

	svc := newTestService(otps, nil, nil)
	code, err := svc.IssueOTP(context.Background(), "u1", "+15551234567", domain.OTPMobile, 5*time.Minute)

	require.NoError(t, err)
	assert.Len(t, code, 6)
	require.NotNil(t, stored)
	assert.Equal(t, code, stored.Code)
	assert.Equal(t, "u1", stored.UserID)
	assert.Equal(t, "+15551234567", stored.Contact)
	assert.Greater(t, stored.ExpiresAt, time.Now().Unix())
	otps.AssertExpectations(t)
}

func TestIssueOTP_RejectsNonPositiveTTL(t *testing.T) {
	svc := newTestService(&mockOTPStore{}, nil, nil)
	_, err := svc.IssueOTP(context.Background(), "u1", "+15551234567", domain.OTPMobile, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

// --- VerifyOTP ---

func TestVerifyOTP_Success_MarksUserVerified(t *testing.T) {
	otps := &mockOTPStore{}
	us := &mockUserStore{}
	otps.On("Consume", mock.Anything, "+15551234567", domain.OTPMobile, "123456").Return("u1", nil)
	us.On("Update", mock.Anything, "u1", map[string]interface{}{"verified": true}).Return(nil)

	svc := newTestService(otps, nil, us)
	userID, err := svc.VerifyOTP(context.Background(), "+15551234567", domain.OTPMobile, "123456")

	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	us.AssertExpectations(t)
}

func TestVerifyOTP_WrongCode_FailsWithoutSideEffects(t *testing.T) {
	otps := &mockOTPStore{}
	us := &mockUserStore{}
	otps.On("Consume", mock.Anything, "+15551234567", domain.OTPMobile, "000000").Return("", domain.ErrTokenInvalid)

	svc := newTestService(otps, nil, us)
	_, err := svc.VerifyOTP(context.Background(), "+15551234567", domain.OTPMobile, "000000")

	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

// --- IssueToken ---

func TestIssueToken_InvalidatesPriorTokens(t *testing.T) {
	ts := &mockTokenStore{}
	var stored *domain.VerificationToken
	ts.On("DeleteUnused", mock.Anything, "u1", domain.TokenVerifyEmail).Return(nil)
	ts.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.VerificationToken)
	}).Return(nil)

	svc := newTestService(nil, ts, nil)
	tok, err := svc.IssueToken(context.Background(), "u1", domain.TokenVerifyEmail, 24*time.Hour)

	require.NoError(t, err)
	assert.Len(t, tok, 64)
	require.NotNil(t, stored)
	assert.Equal(t, tok, stored.Token)
	ts.AssertExpectations(t)
}

func TestIssueToken_TwoIssues_ProduceDistinctTokens(t *testing.T) {
	ts := &mockTokenStore{}
	ts.On("DeleteUnused", mock.Anything, "u1", domain.TokenResetPassword).Return(nil)
	ts.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(nil, ts, nil)
	first, err := svc.IssueToken(context.Background(), "u1", domain.TokenResetPassword, time.Hour)
	require.NoError(t, err)
	second, err := svc.IssueToken(context.Background(), "u1", domain.TokenResetPassword, time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	ts.AssertNumberOfCalls(t, "DeleteUnused", 2)
}

// --- ConsumeToken ---

func TestConsumeToken_VerifyEmail_MarksUserVerified(t *testing.T) {
	ts := &mockTokenStore{}
	us := &mockUserStore{}
	ts.On("Consume", mock.Anything, "tok123", domain.TokenVerifyEmail).Return("u1", nil)
	us.On("Update", mock.Anything, "u1", map[string]interface{}{"verified": true}).Return(nil)

	svc := newTestService(nil, ts, us)
	userID, err := svc.ConsumeToken(context.Background(), "tok123", domain.TokenVerifyEmail)

	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	us.AssertExpectations(t)
}

func TestConsumeToken_ResetPassword_DoesNotTouchUser(t *testing.T) {
	ts := &mockTokenStore{}
	us := &mockUserStore{}
	ts.On("Consume", mock.Anything, "tok123", domain.TokenResetPassword).Return("u1", nil)

	svc := newTestService(nil, ts, us)
	userID, err := svc.ConsumeToken(context.Background(), "tok123", domain.TokenResetPassword)

	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestConsumeToken_Invalid(t *testing.T) {
	ts := &mockTokenStore{}
	ts.On("Consume", mock.Anything, "nope", domain.TokenVerifyEmail).Return("", domain.ErrTokenInvalid)

	svc := newTestService(nil, ts, &mockUserStore{})
	_, err := svc.ConsumeToken(context.Background(), "nope", domain.TokenVerifyEmail)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

// --- Sweep ---

func TestSweep_DeletesExpiredRows(t *testing.T) {
	otps := &mockOTPStore{}
	ts := &mockTokenStore{}
	otps.On("DeleteExpired", mock.Anything).Return(3, nil)
	ts.On("DeleteExpired", mock.Anything).Return(2, nil)

	svc := newTestService(otps, ts, nil)
	require.NoError(t, svc.Sweep(context.Background()))
	otps.AssertExpectations(t)
	ts.AssertExpectations(t)
}
