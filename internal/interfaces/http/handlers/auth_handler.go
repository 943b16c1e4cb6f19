package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/arenalink/auth-service/internal/domain"
	httperrors "github.com/arenalink/auth-service/internal/interfaces/http/errors"
	"github.com/arenalink/auth-service/internal/interfaces/http/middleware/auth"
	"github.com/arenalink/auth-service/internal/observability/metrics"
	"go.uber.org/zap"
)

// AuthHandler serves the human login endpoints.
type AuthHandler struct {
	sessions domain.SessionService
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewAuthHandler(sessions domain.SessionService, m *metrics.Metrics, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, metrics: m, logger: logger}
}

// LoginHandler authenticates an email/password pair and sets the HTTP-only
// session cookie. Rate-limited, locked and deactivated accounts each get
// their own status; bad credentials stay indistinguishable from unknown
// emails.
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondWithError(w, http.StatusBadRequest, httperrors.ErrCodeInvalidRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httperrors.RespondWithError(w, http.StatusBadRequest, httperrors.ErrCodeInvalidRequest, "email and password are required")
		return
	}

	result, err := h.sessions.Login(r.Context(), req.Email, req.Password, r.RemoteAddr, r.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRateLimited):
			h.metrics.LoginTotal.WithLabelValues("rate_limited").Inc()
			h.metrics.RateLimitRejectedTotal.WithLabelValues(domain.RateOpLogin).Inc()
			httperrors.RespondWithError(w, http.StatusTooManyRequests, httperrors.ErrCodeRateLimited, "too many login attempts")
		case errors.Is(err, domain.ErrAccountLocked):
			h.metrics.LoginTotal.WithLabelValues("locked").Inc()
			httperrors.RespondWithError(w, http.StatusLocked, httperrors.ErrCodeAccountLocked, "account is temporarily locked")
		case errors.Is(err, domain.ErrAccountDeactivated):
			h.metrics.LoginTotal.WithLabelValues("failure").Inc()
			httperrors.RespondWithError(w, http.StatusUnauthorized, httperrors.ErrCodeAccountDeactivated, "account is deactivated")
		case errors.Is(err, domain.ErrInvalidCredentials):
			h.metrics.LoginTotal.WithLabelValues("failure").Inc()
			httperrors.RespondWithError(w, http.StatusUnauthorized, httperrors.ErrCodeInvalidCredentials, "invalid email or password")
		default:
			h.logger.Error("login failed", zap.Error(err))
			httperrors.RespondWithError(w, http.StatusInternalServerError, httperrors.ErrCodeServerError, "")
		}
		return
	}
	h.metrics.LoginTotal.WithLabelValues("success").Inc()

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName(),
		Value:    result.SessionToken,
		Path:     "/",
		Expires:  result.ExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"user_id":    result.User.ID.String(),
		"name":       result.User.Name,
		"user_type":  result.User.UserType,
		"expires_at": result.ExpiresAt,
	})
}

// LogoutHandler tears the session down and clears the cookie. A missing or
// unknown session is still a 204.
func (h *AuthHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookieName()); err == nil && cookie.Value != "" {
		if err := h.sessions.Logout(r.Context(), cookie.Value); err != nil {
			h.logger.Error("logout failed", zap.Error(err))
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
