package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/arenalink/auth-service/internal/domain"
	"github.com/arenalink/auth-service/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Service signs and verifies the platform JWTs with an HS256 server secret.
type Service struct {
	secret     []byte
	issuer     string
	accessDur  time.Duration
	refreshDur time.Duration
	logger     *zap.Logger
}

// NewService creates a new JWT service from configuration.
func NewService(cfg *config.Config, logger *zap.Logger) (*Service, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret must not be empty")
	}
	return &Service{
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.JWTIssuer,
		accessDur:  cfg.JWTAccessDuration,
		refreshDur: cfg.JWTRefreshDuration,
		logger:     logger,
	}, nil
}

// Sign signs the claims with the server secret.
func (s *Service) Sign(claims *domain.Claims) (string, error) {
	claims.Issuer = s.issuer
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		s.logger.Error("Failed to sign token",
			zap.String("token_id", claims.ID),
			zap.Error(err))
		return "", domain.ErrInternal
	}
	return signed, nil
}

// Verify parses the token and validates signature, expiry and issuer.
func (s *Service) Verify(tokenString string) (*domain.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &domain.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			s.logger.Warn("Token expired", zap.Error(err))
			return nil, domain.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			s.logger.Error("Malformed token", zap.Error(err))
			return nil, domain.ErrInvalidToken
		default:
			s.logger.Error("Failed to parse token", zap.Error(err))
			return nil, domain.ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*domain.Claims)
	if !ok || !token.Valid {
		s.logger.Error("Invalid token claims")
		return nil, domain.ErrInvalidToken
	}

	if claims.Subject == "" {
		s.logger.Error("Missing subject in token", zap.String("token_id", claims.ID))
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}

// AccessDuration returns the configured access token lifetime.
func (s *Service) AccessDuration() time.Duration {
	return s.accessDur
}

// RefreshDuration returns the configured refresh token lifetime.
func (s *Service) RefreshDuration() time.Duration {
	return s.refreshDur
}
