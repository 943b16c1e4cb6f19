package repository

import (
	"context"
	"errors"

	"github.com/arenalink/auth-service/internal/domain"
	"github.com/arenalink/auth-service/internal/infrastructure/database"
	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// PostgresTokenRepository implements domain.TokenRepository using PostgreSQL
type PostgresTokenRepository struct {
	db     *database.Postgres
	logger *zap.Logger
}

// NewTokenRepository creates a new PostgresTokenRepository
func NewTokenRepository(db *database.Postgres, logger *zap.Logger) domain.TokenRepository {
	return &PostgresTokenRepository{
		db:     db,
		logger: logger,
	}
}

func (r *PostgresTokenRepository) CreatePair(ctx context.Context, access *domain.AccessTokenRecord, refresh *domain.RefreshTokenRecord) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		r.logger.Error("failed to begin token transaction", zap.Error(err))
		return domain.ErrInternal
	}
	defer tx.Rollback(ctx)

	if err := insertPair(ctx, tx, access, refresh); err != nil {
		r.logger.Error("failed to store token pair", zap.String("client_id", access.ClientID), zap.Error(err))
		return domain.ErrInternal
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error("failed to commit token pair", zap.Error(err))
		return domain.ErrInternal
	}
	return nil
}

func (r *PostgresTokenRepository) FindAccessTokenByHash(ctx context.Context, hash string) (*domain.AccessTokenRecord, error) {
	rec := &domain.AccessTokenRecord{}
	err := r.db.QueryRow(ctx, `
		SELECT id, token_hash, client_id, user_id, scope, revoked, created_at, expires_at
		FROM access_tokens WHERE token_hash = $1
	`, hash).Scan(&rec.ID, &rec.TokenHash, &rec.ClientID, &rec.UserID, &rec.Scope,
		&rec.Revoked, &rec.CreatedAt, &rec.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTokenNotFound
		}
		r.logger.Error("failed to fetch access token record", zap.Error(err))
		return nil, domain.ErrInternal
	}
	return rec, nil
}

func (r *PostgresTokenRepository) FindRefreshTokenByHash(ctx context.Context, hash string) (*domain.RefreshTokenRecord, *domain.AccessTokenRecord, error) {
	refresh := &domain.RefreshTokenRecord{}
	access := &domain.AccessTokenRecord{}
	err := r.db.QueryRow(ctx, `
		SELECT r.id, r.token_hash, r.access_token_id, r.revoked, r.created_at, r.expires_at,
		       a.id, a.token_hash, a.client_id, a.user_id, a.scope, a.revoked, a.created_at, a.expires_at
		FROM refresh_tokens r
		JOIN access_tokens a ON a.id = r.access_token_id
		WHERE r.token_hash = $1
	`, hash).Scan(&refresh.ID, &refresh.TokenHash, &refresh.AccessTokenID, &refresh.Revoked, &refresh.CreatedAt, &refresh.ExpiresAt,
		&access.ID, &access.TokenHash, &access.ClientID, &access.UserID, &access.Scope, &access.Revoked, &access.CreatedAt, &access.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, domain.ErrTokenNotFound
		}
		r.logger.Error("failed to fetch refresh token record", zap.Error(err))
		return nil, nil, domain.ErrInternal
	}
	return refresh, access, nil
}

// Rotate revokes the presented pair and stores the replacement in one
// transaction. The refresh revocation is conditional on revoked = false, so
// of two concurrent rotations exactly one commits.
func (r *PostgresTokenRepository) Rotate(ctx context.Context, oldRefreshID, oldAccessID ulid.ULID, access *domain.AccessTokenRecord, refresh *domain.RefreshTokenRecord) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		r.logger.Error("failed to begin rotation transaction", zap.Error(err))
		return domain.ErrInternal
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE refresh_tokens SET revoked = true WHERE id = $1 AND revoked = false
	`, oldRefreshID.String())
	if err != nil {
		r.logger.Error("failed to revoke refresh token", zap.Error(err))
		return domain.ErrInternal
	}
	if tag.RowsAffected() == 0 {
		// lost a concurrent rotation
		return domain.ErrTokenNotFound
	}

	if _, err := tx.Exec(ctx, `
		UPDATE access_tokens SET revoked = true WHERE id = $1
	`, oldAccessID.String()); err != nil {
		r.logger.Error("failed to revoke paired access token", zap.Error(err))
		return domain.ErrInternal
	}

	if err := insertPair(ctx, tx, access, refresh); err != nil {
		r.logger.Error("failed to store rotated token pair", zap.Error(err))
		return domain.ErrInternal
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error("failed to commit rotation", zap.Error(err))
		return domain.ErrInternal
	}
	return nil
}

func (r *PostgresTokenRepository) RevokeAccessTokenByHash(ctx context.Context, hash string) error {
	if _, err := r.db.Exec(ctx, `
		UPDATE access_tokens SET revoked = true WHERE token_hash = $1
	`, hash); err != nil {
		return domain.ErrInternal
	}
	return nil
}

func (r *PostgresTokenRepository) RevokeRefreshTokenByHash(ctx context.Context, hash string) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return domain.ErrInternal
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE access_tokens SET revoked = true
		WHERE id = (SELECT access_token_id FROM refresh_tokens WHERE token_hash = $1)
	`, hash); err != nil {
		return domain.ErrInternal
	}
	if _, err := tx.Exec(ctx, `
		UPDATE refresh_tokens SET revoked = true WHERE token_hash = $1
	`, hash); err != nil {
		return domain.ErrInternal
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal
	}
	return nil
}

func insertPair(ctx context.Context, tx pgx.Tx, access *domain.AccessTokenRecord, refresh *domain.RefreshTokenRecord) error {
	if _, err := tx.Exec(ctx, `
		INSERT INTO access_tokens (id, token_hash, client_id, user_id, scope, revoked, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, false, $6, $7)
	`, access.ID.String(), access.TokenHash, access.ClientID, access.UserID.String(), access.Scope,
		access.CreatedAt, access.ExpiresAt); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO refresh_tokens (id, token_hash, access_token_id, revoked, created_at, expires_at)
		VALUES ($1, $2, $3, false, $4, $5)
	`, refresh.ID.String(), refresh.TokenHash, refresh.AccessTokenID.String(),
		refresh.CreatedAt, refresh.ExpiresAt); err != nil {
		return err
	}
	return nil
}
