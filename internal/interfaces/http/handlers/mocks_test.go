package handlers

import (
	"context"
	"time"

	"github.com/arenalink/auth-service/internal/domain"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"
)

type MockClientService struct {
	mock.Mock
}

func (m *MockClientService) ValidateClient(ctx context.Context, clientID, clientSecret string) (*domain.Client, error) {
	args := m.Called(ctx, clientID, clientSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientService) ValidateRedirectURI(client *domain.Client, uri string) bool {
	args := m.Called(client, uri)
	return args.Bool(0)
}

func (m *MockClientService) ValidateScope(client *domain.Client, scope string) bool {
	args := m.Called(client, scope)
	return args.Bool(0)
}

type MockAuthorizationService struct {
	mock.Mock
}

func (m *MockAuthorizationService) CreateCode(ctx context.Context, clientID string, userID ulid.ULID, redirectURI, scope, codeChallenge, codeChallengeMethod string) (string, error) {
	args := m.Called(ctx, clientID, userID, redirectURI, scope, codeChallenge, codeChallengeMethod)
	return args.String(0), args.Error(1)
}

func (m *MockAuthorizationService) RedeemCode(ctx context.Context, code, clientID, redirectURI, codeVerifier string) (*domain.UserGrant, error) {
	args := m.Called(ctx, code, clientID, redirectURI, codeVerifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserGrant), args.Error(1)
}

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) IssueTokenPair(ctx context.Context, userID ulid.ULID, clientID, scope string) (*domain.TokenPair, error) {
	args := m.Called(ctx, userID, clientID, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TokenPair), args.Error(1)
}

func (m *MockTokenService) RotateRefreshToken(ctx context.Context, refreshToken, clientID string) (*domain.TokenPair, error) {
	args := m.Called(ctx, refreshToken, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TokenPair), args.Error(1)
}

func (m *MockTokenService) Revoke(ctx context.Context, token, tokenTypeHint string) error {
	args := m.Called(ctx, token, tokenTypeHint)
	return args.Error(0)
}

func (m *MockTokenService) VerifyAccessToken(ctx context.Context, token string) (*domain.AccessTokenRecord, *domain.Claims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.AccessTokenRecord), args.Get(1).(*domain.Claims), args.Error(2)
}

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Login(ctx context.Context, email, password, ip, userAgent string) (*domain.LoginResult, error) {
	args := m.Called(ctx, email, password, ip, userAgent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoginResult), args.Error(1)
}

func (m *MockSessionService) ValidateSession(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockSessionService) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

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

type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (domain.RateLimitResult, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Get(0).(domain.RateLimitResult), args.Error(1)
}
