package user

import (
	"context"
	"errors"
	"testing"

	"github.com/event-registration-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByMobile(ctx context.Context, mobile string) (*domain.User, error) {
	args := m.Called(ctx, mobile)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}

func strPtr(s string) *string { return &s }

func TestUpdate_NameOnly_KeepsVerified(t *testing.T) {
	us := &mockUserStore{}
	var updates map[string]interface{}
	us.On("Update", mock.Anything, "u1", mock.Anything).Run(func(args mock.Arguments) {
		updates = args.Get(2).(map[string]interface{})
	}).Return(nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Verified: true}, nil)

	svc := NewService(ServiceDeps{UserRepo: us})
	_, err := svc.Update(context.Background(), "u1", domain.UpdateUserRequest{Name: strPtr("New Name")})

	require.NoError(t, err)
	assert.Equal(t, "New Name", updates["name"])
	assert.NotContains(t, updates, "verified")
}

func TestUpdate_EmailChange_DropsVerified(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "new@b.com").Return(nil, domain.ErrNotFound)
	var updates map[string]interface{}
	us.On("Update", mock.Anything, "u1", mock.Anything).Run(func(args mock.Arguments) {
		updates = args.Get(2).(map[string]interface{})
	}).Return(nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)

	svc := NewService(ServiceDeps{UserRepo: us})
	_, err := svc.Update(context.Background(), "u1", domain.UpdateUserRequest{Email: strPtr("new@b.com")})

	require.NoError(t, err)
	assert.Equal(t, "new@b.com", updates["email"])
	assert.Equal(t, false, updates["verified"])
}

func TestUpdate_EmailTakenByOtherUser_Conflict(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "taken@b.com").Return(&domain.User{UserID: "u2"}, nil)

	svc := NewService(ServiceDeps{UserRepo: us})
	_, err := svc.Update(context.Background(), "u1", domain.UpdateUserRequest{Email: strPtr("taken@b.com")})

	assert.ErrorIs(t, err, domain.ErrConflict)
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_EmailLookupFailure_DoesNotWrite(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "new@b.com").Return(nil, errors.New("throttled"))

	svc := NewService(ServiceDeps{UserRepo: us})
	_, err := svc.Update(context.Background(), "u1", domain.UpdateUserRequest{Email: strPtr("new@b.com")})

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrConflict)
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_OwnEmail_NoConflict(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "mine@b.com").Return(&domain.User{UserID: "u1"}, nil)
	us.On("Update", mock.Anything, "u1", mock.Anything).Return(nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)

	svc := NewService(ServiceDeps{UserRepo: us})
	_, err := svc.Update(context.Background(), "u1", domain.UpdateUserRequest{Email: strPtr("mine@b.com")})
	require.NoError(t, err)
}

func TestUpdate_MobileTaken_Conflict(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByMobile", mock.Anything, "+15551234567").Return(&domain.User{UserID: "u2"}, nil)

	svc := NewService(ServiceDeps{UserRepo: us})
	_, err := svc.Update(context.Background(), "u1", domain.UpdateUserRequest{Mobile: strPtr("+15551234567")})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUpdate_NoChanges_SkipsWrite(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)

	svc := NewService(ServiceDeps{UserRepo: us})
	u, err := svc.Update(context.Background(), "u1", domain.UpdateUserRequest{})

	require.NoError(t, err)
	assert.Equal(t, "u1", u.UserID)
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}
