package repository

import (
	"context"
	"errors"

	"github.com/arenalink/auth-service/internal/domain"
	"github.com/arenalink/auth-service/internal/infrastructure/database"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// PostgresCodeRepository implements domain.AuthorizationCodeRepository using PostgreSQL
type PostgresCodeRepository struct {
	db     *database.Postgres
	logger *zap.Logger
}

// NewCodeRepository creates a new PostgresCodeRepository
func NewCodeRepository(db *database.Postgres, logger *zap.Logger) domain.AuthorizationCodeRepository {
	return &PostgresCodeRepository{
		db:     db,
		logger: logger,
	}
}

func (r *PostgresCodeRepository) Create(ctx context.Context, code *domain.AuthorizationCode) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO authorization_codes
			(code, client_id, user_id, redirect_uri, scope, code_challenge, code_challenge_method, used, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false, $8, $9)
	`, code.Code, code.ClientID, code.UserID.String(), code.RedirectURI, code.Scope,
		code.CodeChallenge, code.CodeChallengeMethod, code.CreatedAt, code.ExpiresAt)
	if err != nil {
		r.logger.Error("failed to store authorization code", zap.String("client_id", code.ClientID), zap.Error(err))
		return domain.ErrInternal
	}
	return nil
}

func (r *PostgresCodeRepository) Get(ctx context.Context, code string) (*domain.AuthorizationCode, error) {
	rec := &domain.AuthorizationCode{}
	err := r.db.QueryRow(ctx, `
		SELECT code, client_id, user_id, redirect_uri, scope, code_challenge, code_challenge_method, used, created_at, expires_at
		FROM authorization_codes WHERE code = $1
	`, code).Scan(&rec.Code, &rec.ClientID, &rec.UserID, &rec.RedirectURI, &rec.Scope,
		&rec.CodeChallenge, &rec.CodeChallengeMethod, &rec.Used, &rec.CreatedAt, &rec.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCodeNotFound
		}
		r.logger.Error("failed to fetch authorization code", zap.Error(err))
		return nil, domain.ErrInternal
	}
	return rec, nil
}

// Consume flips used false->true. The WHERE clause makes it a single-winner
// write: a second caller matches no rows and gets ErrCodeConsumed.
func (r *PostgresCodeRepository) Consume(ctx context.Context, code string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE authorization_codes
		SET used = true
		WHERE code = $1 AND used = false AND expires_at > now()
	`, code)
	if err != nil {
		r.logger.Error("failed to consume authorization code", zap.Error(err))
		return domain.ErrInternal
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCodeConsumed
	}
	return nil
}

func (r *PostgresCodeRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM authorization_codes WHERE expires_at <= now()")
	if err != nil {
		return 0, domain.ErrInternal
	}
	return tag.RowsAffected(), nil
}
