package application

import (
	"context"
	"errors"
	"time"

	"github.com/arenalink/auth-service/internal/domain"
	"github.com/arenalink/auth-service/internal/infrastructure/token"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// TokenService implements domain.TokenService: signed JWT pairs tracked by
// hash in the store so they can be revoked and rotated.
type TokenService struct {
	tokens domain.TokenRepository
	users  domain.UserRepository
	signer domain.JWTSigner
	logger *zap.Logger
}

// NewTokenService creates a new TokenService.
func NewTokenService(tokens domain.TokenRepository, users domain.UserRepository, signer domain.JWTSigner, logger *zap.Logger) *TokenService {
	return &TokenService{
		tokens: tokens,
		users:  users,
		signer: signer,
		logger: logger,
	}
}

// IssueTokenPair signs a fresh access/refresh pair and persists the hashed
// records in one transaction.
func (s *TokenService) IssueTokenPair(ctx context.Context, userID ulid.ULID, clientID, scope string) (*domain.TokenPair, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load user for token issuance",
			zap.String("user_id", userID.String()),
			zap.String("client_id", clientID))
		return nil, domain.ErrInvalidGrant
	}
	if !user.IsActive {
		s.logger.Warn("token issuance for deactivated user",
			zap.String("user_id", userID.String()),
			zap.String("client_id", clientID))
		return nil, domain.ErrInvalidGrant
	}

	pair, accessRec, refreshRec, err := s.buildPair(user, clientID, scope)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.CreatePair(ctx, accessRec, refreshRec); err != nil {
		return nil, err
	}

	s.logger.Debug("issued token pair",
		zap.String("user_id", user.ID.String()),
		zap.String("client_id", clientID),
		zap.String("scope", scope))
	return pair, nil
}

// RotateRefreshToken redeems a refresh token. The old pair is revoked and a
// new pair minted; the revoke-and-insert happens in one repository
// transaction so a crash can never leave two live pairs. Any lookup failure
// is the uniform ErrInvalidGrant.
func (s *TokenService) RotateRefreshToken(ctx context.Context, refreshToken, clientID string) (*domain.TokenPair, error) {
	refresh, access, err := s.tokens.FindRefreshTokenByHash(ctx, token.Hash(refreshToken))
	if err != nil {
		s.logger.Warn("refresh token not found", zap.String("client_id", clientID))
		return nil, domain.ErrInvalidGrant
	}

	now := time.Now()
	switch {
	case refresh.Revoked:
		// replay after rotation: the strongest signal of token theft we get
		s.logger.Warn("revoked refresh token replayed",
			zap.String("client_id", clientID),
			zap.String("user_id", access.UserID.String()))
		return nil, domain.ErrInvalidGrant
	case refresh.Expired(now):
		s.logger.Warn("refresh token expired",
			zap.String("client_id", clientID),
			zap.Time("expires_at", refresh.ExpiresAt))
		return nil, domain.ErrInvalidGrant
	case access.ClientID != clientID:
		s.logger.Warn("refresh token client mismatch",
			zap.String("client_id", clientID),
			zap.String("token_client_id", access.ClientID))
		return nil, domain.ErrInvalidGrant
	}

	user, err := s.users.FindByID(ctx, access.UserID)
	if err != nil || !user.IsActive {
		s.logger.Warn("refresh rotation for missing or deactivated user",
			zap.String("user_id", access.UserID.String()))
		return nil, domain.ErrInvalidGrant
	}

	pair, accessRec, refreshRec, err := s.buildPair(user, clientID, access.Scope)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Rotate(ctx, refresh.ID, access.ID, accessRec, refreshRec); err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			// a concurrent rotation won the conditional revoke
			s.logger.Warn("concurrent refresh rotation lost",
				zap.String("client_id", clientID),
				zap.String("user_id", user.ID.String()))
			return nil, domain.ErrInvalidGrant
		}
		return nil, err
	}

	return pair, nil
}

// Revoke marks the matching record revoked. Unknown tokens are a no-op per
// RFC 7009. The hint only orders the lookup; both kinds are tried.
func (s *TokenService) Revoke(ctx context.Context, presented, tokenTypeHint string) error {
	hash := token.Hash(presented)
	if tokenTypeHint == domain.TokenTypeRefresh {
		return s.tokens.RevokeRefreshTokenByHash(ctx, hash)
	}
	if err := s.tokens.RevokeAccessTokenByHash(ctx, hash); err != nil {
		return err
	}
	return s.tokens.RevokeRefreshTokenByHash(ctx, hash)
}

// VerifyAccessToken runs both mandatory checks: the store record must exist
// unrevoked and unexpired, and the JWT must independently verify. Either
// failing alone rejects the token.
func (s *TokenService) VerifyAccessToken(ctx context.Context, presented string) (*domain.AccessTokenRecord, *domain.Claims, error) {
	rec, err := s.tokens.FindAccessTokenByHash(ctx, token.Hash(presented))
	if err != nil {
		s.logger.Warn("access token record not found")
		return nil, nil, domain.ErrInvalidToken
	}

	now := time.Now()
	if rec.Revoked {
		s.logger.Warn("revoked access token presented",
			zap.String("client_id", rec.ClientID),
			zap.String("user_id", rec.UserID.String()))
		return nil, nil, domain.ErrInvalidToken
	}
	if rec.Expired(now) {
		s.logger.Warn("expired access token presented",
			zap.String("client_id", rec.ClientID),
			zap.Time("expires_at", rec.ExpiresAt))
		return nil, nil, domain.ErrInvalidToken
	}

	claims, err := s.signer.Verify(presented)
	if err != nil {
		s.logger.Warn("access token signature verification failed",
			zap.String("client_id", rec.ClientID),
			zap.Error(err))
		return nil, nil, domain.ErrInvalidToken
	}
	if claims.TokenUse == "refresh" {
		s.logger.Warn("refresh token presented as bearer",
			zap.String("client_id", rec.ClientID))
		return nil, nil, domain.ErrInvalidToken
	}

	return rec, claims, nil
}

func (s *TokenService) buildPair(user *domain.User, clientID, scope string) (*domain.TokenPair, *domain.AccessTokenRecord, *domain.RefreshTokenRecord, error) {
	now := time.Now()
	accessExpiry := now.Add(s.signer.AccessDuration())
	refreshExpiry := now.Add(s.signer.RefreshDuration())

	accessToken, err := s.signer.Sign(&domain.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(accessExpiry),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		Email:    user.Email,
		UserType: user.UserType,
		Scope:    scope,
		ClientID: clientID,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	refreshToken, err := s.signer.Sign(&domain.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(refreshExpiry),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		ClientID: clientID,
		TokenUse: "refresh",
	})
	if err != nil {
		return nil, nil, nil, err
	}

	accessRec := &domain.AccessTokenRecord{
		ID:        ulid.Make(),
		TokenHash: token.Hash(accessToken),
		ClientID:  clientID,
		UserID:    user.ID,
		Scope:     scope,
		CreatedAt: now,
		ExpiresAt: accessExpiry,
	}
	refreshRec := &domain.RefreshTokenRecord{
		ID:            ulid.Make(),
		TokenHash:     token.Hash(refreshToken),
		AccessTokenID: accessRec.ID,
		CreatedAt:     now,
		ExpiresAt:     refreshExpiry,
	}

	pair := &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.signer.AccessDuration().Seconds()),
		Scope:        scope,
	}
	return pair, accessRec, refreshRec, nil
}
