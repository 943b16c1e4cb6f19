package application

import (
	"context"
	"errors"
	"time"

	"github.com/arenalink/auth-service/internal/domain"
	"github.com/arenalink/auth-service/internal/infrastructure/password"
	"github.com/arenalink/auth-service/internal/infrastructure/token"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const sessionTokenBytes = 32

// SessionService implements domain.SessionService. Login is guarded by a
// fixed-window rate limit keyed on the email before any credential work
// happens, so a locked-out or unknown account costs an attacker the same as
// a real one.
type SessionService struct {
	users            domain.UserRepository
	sessions         domain.SessionRepository
	limiter          domain.Limiter
	maxLoginAttempts int
	lockoutDuration  time.Duration
	userSessionTTL   time.Duration
	adminSessionTTL  time.Duration
	logger           *zap.Logger
}

// NewSessionService creates a new SessionService. Non-positive thresholds
// and durations fall back to the domain defaults.
func NewSessionService(users domain.UserRepository, sessions domain.SessionRepository, limiter domain.Limiter, maxLoginAttempts int, lockoutDuration, userSessionTTL, adminSessionTTL time.Duration, logger *zap.Logger) *SessionService {
	if maxLoginAttempts <= 0 {
		maxLoginAttempts = domain.DefaultMaxLoginAttempts
	}
	if lockoutDuration <= 0 {
		lockoutDuration = domain.DefaultLockoutDuration
	}
	if userSessionTTL <= 0 {
		userSessionTTL = domain.DefaultUserSessionDuration
	}
	if adminSessionTTL <= 0 {
		adminSessionTTL = domain.DefaultAdminSessionDuration
	}
	return &SessionService{
		users:            users,
		sessions:         sessions,
		limiter:          limiter,
		maxLoginAttempts: maxLoginAttempts,
		lockoutDuration:  lockoutDuration,
		userSessionTTL:   userSessionTTL,
		adminSessionTTL:  adminSessionTTL,
		logger:           logger,
	}
}

// Login authenticates an email/password pair and mints an opaque session
// token. The checks run in a fixed order: rate limit, account existence,
// lockout, active flag, password. Credential failures are indistinguishable
// to the caller; the distinction lives in the logs.
func (s *SessionService) Login(ctx context.Context, email, plaintext, ip, userAgent string) (*domain.LoginResult, error) {
	window := domain.DefaultRateWindows[domain.RateOpLogin]
	res, err := s.limiter.Allow(ctx, domain.RateKey(domain.RateOpLogin, email), window.Limit, window.Window)
	if err != nil {
		s.logger.Error("login rate limit check failed", zap.Error(err))
		return nil, domain.ErrInternal
	}
	if !res.Allowed {
		s.logger.Warn("login rate limited",
			zap.String("email", email),
			zap.String("ip", ip),
			zap.Duration("retry_after", res.RetryAfter))
		return nil, domain.ErrRateLimited
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Warn("login for unknown email",
				zap.String("email", email),
				zap.String("ip", ip))
			return nil, domain.ErrInvalidCredentials
		}
		s.logger.Error("failed to load user for login", zap.Error(err))
		return nil, domain.ErrInternal
	}

	now := time.Now()
	if user.Locked(now) {
		s.logger.Warn("login on locked account",
			zap.String("user_id", user.ID.String()),
			zap.Timep("locked_until", user.LockedUntil))
		return nil, domain.ErrAccountLocked
	}
	if !user.IsActive {
		s.logger.Warn("login on deactivated account",
			zap.String("user_id", user.ID.String()))
		return nil, domain.ErrAccountDeactivated
	}

	if err := password.Check(plaintext, user.Password); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			attempts, recErr := s.users.RecordFailedLogin(ctx, user.ID, s.maxLoginAttempts, s.lockoutDuration)
			if recErr != nil {
				s.logger.Error("failed to record failed login",
					zap.String("user_id", user.ID.String()),
					zap.Error(recErr))
			} else if attempts >= s.maxLoginAttempts {
				s.logger.Warn("account locked after repeated failures",
					zap.String("user_id", user.ID.String()),
					zap.Int("attempts", attempts))
			}
			return nil, domain.ErrInvalidCredentials
		}
		s.logger.Error("password check failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
		return nil, domain.ErrInternal
	}

	if err := s.users.ResetLoginAttempts(ctx, user.ID); err != nil {
		s.logger.Error("failed to reset login attempts",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
		return nil, domain.ErrInternal
	}

	sessionToken, err := token.Generate(sessionTokenBytes)
	if err != nil {
		return nil, err
	}

	ttl := s.userSessionTTL
	if user.UserType == domain.UserTypeAdmin {
		ttl = s.adminSessionTTL
	}
	session := &domain.UserSession{
		ID:        ulid.Make(),
		TokenHash: token.Hash(sessionToken),
		UserID:    user.ID,
		IPAddress: ip,
		UserAgent: userAgent,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("user_type", user.UserType),
		zap.String("ip", ip))

	return &domain.LoginResult{
		User:         user,
		SessionToken: sessionToken,
		ExpiresAt:    session.ExpiresAt,
	}, nil
}

// ValidateSession resolves a presented session token to its user. Expired
// sessions are filtered by the repository; a deactivated user invalidates
// every session they hold.
func (s *SessionService) ValidateSession(ctx context.Context, presented string) (*domain.User, error) {
	session, err := s.sessions.FindByTokenHash(ctx, token.Hash(presented))
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		s.logger.Warn("session for missing user",
			zap.String("user_id", session.UserID.String()))
		return nil, domain.ErrSessionNotFound
	}
	if !user.IsActive {
		s.logger.Warn("session for deactivated user",
			zap.String("user_id", user.ID.String()))
		return nil, domain.ErrSessionNotFound
	}
	return user, nil
}

// Logout deletes the session. Unknown tokens are a no-op.
func (s *SessionService) Logout(ctx context.Context, presented string) error {
	return s.sessions.DeleteByTokenHash(ctx, token.Hash(presented))
}
