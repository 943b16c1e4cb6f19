package auth

import (
	"net/http"
	"strings"

	"github.com/arenalink/auth-service/internal/domain"
	httperrors "github.com/arenalink/auth-service/internal/interfaces/http/errors"
	"go.uber.org/zap"
)

const sessionCookieName = "arena_session"

// Middleware guards routes with either bearer tokens or login sessions.
type Middleware struct {
	tokens   domain.TokenService
	sessions domain.SessionService
	logger   *zap.Logger
}

func NewMiddleware(tokens domain.TokenService, sessions domain.SessionService, logger *zap.Logger) *Middleware {
	return &Middleware{tokens: tokens, sessions: sessions, logger: logger}
}

// RequireScopes verifies the bearer token and checks that it covers every
// listed scope. A missing or malformed header and a failed token check are
// both 401; a verified token lacking a scope is 403 with both scope lists in
// the body. The verified grant is placed on the request context.
func (m *Middleware) RequireScopes(required ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := extractBearer(r)
			if presented == "" {
				httperrors.RespondWithError(w, http.StatusUnauthorized, httperrors.ErrCodeUnauthorized, "missing bearer token")
				return
			}

			rec, claims, err := m.tokens.VerifyAccessToken(r.Context(), presented)
			if err != nil {
				httperrors.RespondWithError(w, http.StatusUnauthorized, httperrors.ErrCodeInvalidToken, "token verification failed")
				return
			}

			grant := &domain.BearerGrant{
				UserID:   claims.Subject,
				Email:    claims.Email,
				UserType: claims.UserType,
				ClientID: rec.ClientID,
				Scopes:   domain.SplitScope(rec.Scope),
			}

			if !domain.ScopeCovers(grant.Scopes, required) {
				m.logger.Warn("bearer token lacks required scopes",
					zap.String("client_id", grant.ClientID),
					zap.Strings("required", required),
					zap.Strings("granted", grant.Scopes))
				httperrors.RespondInsufficientScope(w, required, grant.Scopes)
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.WithGrant(r.Context(), grant)))
		})
	}
}

// RequireSession resolves the session cookie to its user and places the
// user on the request context. Any failure is a uniform 401.
func (m *Middleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			httperrors.RespondWithError(w, http.StatusUnauthorized, httperrors.ErrCodeUnauthorized, "missing session")
			return
		}

		user, err := m.sessions.ValidateSession(r.Context(), cookie.Value)
		if err != nil {
			httperrors.RespondWithError(w, http.StatusUnauthorized, httperrors.ErrCodeUnauthorized, "invalid session")
			return
		}

		next.ServeHTTP(w, r.WithContext(domain.WithSessionUser(r.Context(), user)))
	})
}

// SessionCookieName is the cookie the session endpoints set and read.
func SessionCookieName() string {
	return sessionCookieName
}

func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
