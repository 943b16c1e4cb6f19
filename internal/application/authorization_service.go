package application

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"time"

	"github.com/arenalink/auth-service/internal/domain"
	"github.com/arenalink/auth-service/internal/infrastructure/token"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const codeBytes = 32

// AuthorizationService implements domain.AuthorizationService: single-use
// authorization codes with PKCE.
type AuthorizationService struct {
	codes  domain.AuthorizationCodeRepository
	logger *zap.Logger
}

// NewAuthorizationService creates a new AuthorizationService.
func NewAuthorizationService(codes domain.AuthorizationCodeRepository, logger *zap.Logger) *AuthorizationService {
	return &AuthorizationService{
		codes:  codes,
		logger: logger,
	}
}

// CreateCode issues a fresh authorization code after the resource owner has
// approved the consent screen.
func (s *AuthorizationService) CreateCode(ctx context.Context, clientID string, userID ulid.ULID, redirectURI, scope, codeChallenge, codeChallengeMethod string) (string, error) {
	code, err := token.Generate(codeBytes)
	if err != nil {
		s.logger.Error("failed to generate authorization code", zap.Error(err))
		return "", domain.ErrInternal
	}

	now := time.Now()
	rec := &domain.AuthorizationCode{
		Code:                code,
		ClientID:            clientID,
		UserID:              userID,
		RedirectURI:         redirectURI,
		Scope:               scope,
		CodeChallenge:       codeChallenge,
		CodeChallengeMethod: codeChallengeMethod,
		CreatedAt:           now,
		ExpiresAt:           now.Add(domain.AuthorizationCodeDuration),
	}

	if err := s.codes.Create(ctx, rec); err != nil {
		return "", err
	}

	s.logger.Debug("issued authorization code",
		zap.String("client_id", clientID),
		zap.String("user_id", userID.String()),
		zap.String("scope", scope))
	return code, nil
}

// RedeemCode validates and consumes an authorization code. Every failure
// surfaces as ErrInvalidGrant; the precise cause is only logged. The consume
// is a conditional write, so concurrent redemptions yield exactly one winner.
// A PKCE or binding failure leaves the code unconsumed.
func (s *AuthorizationService) RedeemCode(ctx context.Context, code, clientID, redirectURI, codeVerifier string) (*domain.UserGrant, error) {
	rec, err := s.codes.Get(ctx, code)
	if err != nil {
		s.logger.Warn("authorization code not found", zap.String("client_id", clientID))
		return nil, domain.ErrInvalidGrant
	}

	now := time.Now()
	switch {
	case rec.Used:
		s.logger.Warn("authorization code already used",
			zap.String("client_id", clientID),
			zap.String("user_id", rec.UserID.String()))
		return nil, domain.ErrInvalidGrant
	case rec.Expired(now):
		s.logger.Warn("authorization code expired",
			zap.String("client_id", clientID),
			zap.Time("expires_at", rec.ExpiresAt))
		return nil, domain.ErrInvalidGrant
	case rec.ClientID != clientID:
		s.logger.Warn("authorization code client mismatch",
			zap.String("client_id", clientID),
			zap.String("code_client_id", rec.ClientID))
		return nil, domain.ErrInvalidGrant
	case rec.RedirectURI != redirectURI:
		s.logger.Warn("authorization code redirect mismatch",
			zap.String("client_id", clientID),
			zap.String("redirect_uri", redirectURI))
		return nil, domain.ErrInvalidGrant
	}

	if rec.CodeChallenge != "" {
		if err := verifyPKCE(codeVerifier, rec.CodeChallenge, rec.CodeChallengeMethod); err != nil {
			s.logger.Warn("PKCE verification failed",
				zap.String("client_id", clientID),
				zap.String("method", rec.CodeChallengeMethod))
			return nil, domain.ErrInvalidGrant
		}
	}

	if err := s.codes.Consume(ctx, code); err != nil {
		// lost a concurrent redemption, or the row expired underneath us
		s.logger.Warn("authorization code consume lost",
			zap.String("client_id", clientID),
			zap.Error(err))
		return nil, domain.ErrInvalidGrant
	}

	return &domain.UserGrant{
		UserID:   rec.UserID,
		ClientID: rec.ClientID,
		Scope:    rec.Scope,
	}, nil
}

// verifyPKCE recomputes the challenge from the presented verifier per
// RFC 7636. An empty method means plain.
func verifyPKCE(verifier, challenge, method string) error {
	if verifier == "" {
		return domain.ErrInvalidGrant
	}

	var computed string
	switch method {
	case domain.CodeChallengeS256:
		sum := sha256.Sum256([]byte(verifier))
		computed = base64.RawURLEncoding.EncodeToString(sum[:])
	case domain.CodeChallengePlain, "":
		computed = verifier
	default:
		return domain.ErrInvalidGrant
	}

	if subtle.ConstantTimeCompare([]byte(computed), []byte(challenge)) != 1 {
		return domain.ErrInvalidGrant
	}
	return nil
}
