package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/arenalink/auth-service/internal/domain"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Client metadata changes rarely; a short read-through cache keeps the hot
// token path off the database without letting deactivations linger.
const (
	clientCacheTTL     = 30 * time.Second
	clientCacheCleanup = time.Minute
)

// ClientService implements domain.ClientService.
type ClientService struct {
	repo   domain.ClientRepository
	cache  *gocache.Cache
	logger *zap.Logger
}

// NewClientService creates a new ClientService.
func NewClientService(repo domain.ClientRepository, logger *zap.Logger) *ClientService {
	return &ClientService{
		repo:   repo,
		cache:  gocache.New(clientCacheTTL, clientCacheCleanup),
		logger: logger,
	}
}

// ValidateClient looks up an active client by its public identifier. When a
// secret is supplied it must match exactly; public (PKCE-only) clients may
// omit it.
func (s *ClientService) ValidateClient(ctx context.Context, clientID, clientSecret string) (*domain.Client, error) {
	client, err := s.findClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, domain.ErrClientNotFound) {
			s.logger.Warn("unknown client", zap.String("client_id", clientID))
			return nil, domain.ErrInvalidClient
		}
		return nil, err
	}

	if !client.Active {
		s.logger.Warn("inactive client", zap.String("client_id", clientID))
		return nil, domain.ErrInvalidClient
	}

	if clientSecret != "" {
		if subtle.ConstantTimeCompare([]byte(client.ClientSecret), []byte(clientSecret)) != 1 {
			s.logger.Warn("client secret mismatch", zap.String("client_id", clientID))
			return nil, domain.ErrInvalidClient
		}
	} else if !client.Public() {
		// confidential clients must authenticate
		s.logger.Warn("missing client secret", zap.String("client_id", clientID))
		return nil, domain.ErrInvalidClient
	}

	return client, nil
}

// ValidateRedirectURI requires exact string membership; no prefix matching.
func (s *ClientService) ValidateRedirectURI(client *domain.Client, uri string) bool {
	for _, registered := range client.RedirectURIs {
		if registered == uri {
			return true
		}
	}
	return false
}

// ValidateScope checks every requested token against the global allow-list
// and the client's registered subset. The empty scope is trivially valid.
func (s *ClientService) ValidateScope(client *domain.Client, scope string) bool {
	return domain.ScopeAllowed(scope, client.Scopes)
}

func (s *ClientService) findClient(ctx context.Context, clientID string) (*domain.Client, error) {
	if cached, ok := s.cache.Get(clientID); ok {
		return cached.(*domain.Client), nil
	}

	client, err := s.repo.FindByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	s.cache.Set(clientID, client, gocache.DefaultExpiration)
	return client, nil
}
