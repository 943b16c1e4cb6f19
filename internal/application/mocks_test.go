package application

import (
	"context"
	"time"

	"github.com/arenalink/auth-service/internal/domain"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id ulid.ULID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) RecordFailedLogin(ctx context.Context, id ulid.ULID, threshold int, lockFor time.Duration) (int, error) {
	args := m.Called(ctx, id, threshold, lockFor)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) ResetLoginAttempts(ctx context.Context, id ulid.ULID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindByClientID(ctx context.Context, clientID string) (*domain.Client, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

type MockCodeRepository struct {
	mock.Mock
}

func (m *MockCodeRepository) Create(ctx context.Context, code *domain.AuthorizationCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockCodeRepository) Get(ctx context.Context, code string) (*domain.AuthorizationCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthorizationCode), args.Error(1)
}

func (m *MockCodeRepository) Consume(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockCodeRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) CreatePair(ctx context.Context, access *domain.AccessTokenRecord, refresh *domain.RefreshTokenRecord) error {
	args := m.Called(ctx, access, refresh)
	return args.Error(0)
}

func (m *MockTokenRepository) FindAccessTokenByHash(ctx context.Context, hash string) (*domain.AccessTokenRecord, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccessTokenRecord), args.Error(1)
}

func (m *MockTokenRepository) FindRefreshTokenByHash(ctx context.Context, hash string) (*domain.RefreshTokenRecord, *domain.AccessTokenRecord, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.RefreshTokenRecord), args.Get(1).(*domain.AccessTokenRecord), args.Error(2)
}

func (m *MockTokenRepository) Rotate(ctx context.Context, oldRefreshID, oldAccessID ulid.ULID, newAccess *domain.AccessTokenRecord, newRefresh *domain.RefreshTokenRecord) error {
	args := m.Called(ctx, oldRefreshID, oldAccessID, newAccess, newRefresh)
	return args.Error(0)
}

func (m *MockTokenRepository) RevokeAccessTokenByHash(ctx context.Context, hash string) error {
	args := m.Called(ctx, hash)
	return args.Error(0)
}

func (m *MockTokenRepository) RevokeRefreshTokenByHash(ctx context.Context, hash string) error {
	args := m.Called(ctx, hash)
	return args.Error(0)
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.UserSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) FindByTokenHash(ctx context.Context, hash string) (*domain.UserSession, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserSession), args.Error(1)
}

func (m *MockSessionRepository) DeleteByTokenHash(ctx context.Context, hash string) error {
	args := m.Called(ctx, hash)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (domain.RateLimitResult, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Get(0).(domain.RateLimitResult), args.Error(1)
}
