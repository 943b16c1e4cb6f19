package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/arenalink/auth-service/internal/domain"
	"github.com/arenalink/auth-service/internal/infrastructure/database"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// PostgresClientRepository implements domain.ClientRepository using PostgreSQL
type PostgresClientRepository struct {
	db     *database.Postgres
	logger *zap.Logger
}

// NewClientRepository creates a new PostgresClientRepository
func NewClientRepository(db *database.Postgres, logger *zap.Logger) domain.ClientRepository {
	return &PostgresClientRepository{
		db:     db,
		logger: logger,
	}
}

func (r *PostgresClientRepository) FindByClientID(ctx context.Context, clientID string) (*domain.Client, error) {
	client := &domain.Client{}
	var redirectURIs, scopes []byte

	err := r.db.QueryRow(ctx, `
		SELECT client_id, client_secret, name, redirect_uris, scopes, active, created_at, updated_at
		FROM oauth_clients WHERE client_id = $1
	`, clientID).Scan(&client.ClientID, &client.ClientSecret, &client.Name, &redirectURIs, &scopes,
		&client.Active, &client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}
		r.logger.Error("failed to find client", zap.String("client_id", clientID), zap.Error(err))
		return nil, domain.ErrInternal
	}

	if err := json.Unmarshal(redirectURIs, &client.RedirectURIs); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(scopes, &client.Scopes); err != nil {
		return nil, err
	}

	return client, nil
}
