package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/arenalink/auth-service/internal/domain"
	httperrors "github.com/arenalink/auth-service/internal/interfaces/http/errors"
	"github.com/arenalink/auth-service/internal/observability/metrics"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// OAuthHandler serves the authorization-code flow endpoints.
type OAuthHandler struct {
	clients domain.ClientService
	codes   domain.AuthorizationService
	tokens  domain.TokenService
	users   domain.UserRepository
	limiter domain.Limiter
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewOAuthHandler(clients domain.ClientService, codes domain.AuthorizationService, tokens domain.TokenService, users domain.UserRepository, limiter domain.Limiter, m *metrics.Metrics, logger *zap.Logger) *OAuthHandler {
	return &OAuthHandler{
		clients: clients,
		codes:   codes,
		tokens:  tokens,
		users:   users,
		limiter: limiter,
		metrics: m,
		logger:  logger,
	}
}

// AuthorizeHandler issues an authorization code for a session-authenticated
// resource owner. Client and redirect URI failures never redirect; once the
// redirect URI is known good, all further failures redirect with an OAuth
// error so the relying party sees them.
func (h *OAuthHandler) AuthorizeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := domain.GetSessionUser(r.Context())
	if !ok {
		httperrors.RespondWithError(w, http.StatusUnauthorized, httperrors.ErrCodeUnauthorized, "authentication required")
		return
	}

	q := r.URL.Query()
	clientID := q.Get("client_id")
	redirectURI := q.Get("redirect_uri")
	state := q.Get("state")

	client, err := h.clients.ValidateClient(r.Context(), clientID, "")
	if err != nil {
		httperrors.RespondWithError(w, http.StatusBadRequest, httperrors.ErrCodeInvalidClient, "unknown or inactive client")
		return
	}
	if redirectURI == "" || !h.clients.ValidateRedirectURI(client, redirectURI) {
		// never redirect to an unregistered URI
		h.logger.Warn("authorize with unregistered redirect uri",
			zap.String("client_id", clientID),
			zap.String("redirect_uri", redirectURI))
		httperrors.RespondWithError(w, http.StatusBadRequest, httperrors.ErrCodeInvalidRequest, "redirect_uri is not registered for this client")
		return
	}

	if q.Get("response_type") != "code" {
		redirectError(w, r, redirectURI, httperrors.ErrCodeUnsupportedResponseType, state)
		return
	}

	scope := q.Get("scope")
	if !h.clients.ValidateScope(client, scope) {
		h.logger.Warn("authorize with disallowed scope",
			zap.String("client_id", clientID),
			zap.String("scope", scope))
		redirectError(w, r, redirectURI, httperrors.ErrCodeInvalidScope, state)
		return
	}

	// the consent screen lives upstream; it signals denial back through us
	if q.Get("approved") == "false" {
		redirectError(w, r, redirectURI, httperrors.ErrCodeAccessDenied, state)
		return
	}

	challenge := q.Get("code_challenge")
	method := q.Get("code_challenge_method")
	if challenge != "" && method != "" && method != domain.CodeChallengeS256 && method != domain.CodeChallengePlain {
		redirectError(w, r, redirectURI, httperrors.ErrCodeInvalidRequest, state)
		return
	}
	if client.Public() && challenge == "" {
		// public clients have no secret; PKCE is their only proof
		redirectError(w, r, redirectURI, httperrors.ErrCodeInvalidRequest, state)
		return
	}

	code, err := h.codes.CreateCode(r.Context(), clientID, user.ID, redirectURI, scope, challenge, method)
	if err != nil {
		h.logger.Error("failed to create authorization code",
			zap.String("client_id", clientID),
			zap.Error(err))
		redirectError(w, r, redirectURI, httperrors.ErrCodeServerError, state)
		return
	}
	h.metrics.CodesIssuedTotal.Inc()

	location, _ := url.Parse(redirectURI)
	params := location.Query()
	params.Set("code", code)
	if state != "" {
		params.Set("state", state)
	}
	location.RawQuery = params.Encode()
	http.Redirect(w, r, location.String(), http.StatusFound)
}

// TokenHandler serves the authorization_code and refresh_token grants.
func (h *OAuthHandler) TokenHandler(w http.ResponseWriter, r *http.Request) {
	req, err := parseTokenRequest(r)
	if err != nil {
		httperrors.RespondWithError(w, http.StatusBadRequest, httperrors.ErrCodeInvalidRequest, "malformed request body")
		return
	}
	if req.ClientID == "" {
		httperrors.RespondWithError(w, http.StatusBadRequest, httperrors.ErrCodeInvalidRequest, "client_id is required")
		return
	}

	window := domain.DefaultRateWindows[domain.RateOpTokenExchange]
	res, err := h.limiter.Allow(r.Context(), domain.RateKey(domain.RateOpTokenExchange, req.ClientID), window.Limit, window.Window)
	if err != nil {
		h.logger.Error("token exchange rate limit check failed", zap.Error(err))
		httperrors.RespondWithError(w, http.StatusInternalServerError, httperrors.ErrCodeServerError, "")
		return
	}
	if !res.Allowed {
		h.metrics.RateLimitRejectedTotal.WithLabelValues(domain.RateOpTokenExchange).Inc()
		httperrors.RespondWithError(w, http.StatusTooManyRequests, httperrors.ErrCodeRateLimited, "too many token requests")
		return
	}

	if _, err := h.clients.ValidateClient(r.Context(), req.ClientID, req.ClientSecret); err != nil {
		httperrors.RespondWithError(w, http.StatusUnauthorized, httperrors.ErrCodeInvalidClient, "client authentication failed")
		return
	}

	var pair *domain.TokenPair
	switch req.GrantType {
	case "authorization_code":
		if req.Code == "" || req.RedirectURI == "" {
			httperrors.RespondWithError(w, http.StatusBadRequest, httperrors.ErrCodeInvalidRequest, "code and redirect_uri are required")
			return
		}
		grant, err := h.codes.RedeemCode(r.Context(), req.Code, req.ClientID, req.RedirectURI, req.CodeVerifier)
		if err != nil {
			httperrors.RespondWithError(w, http.StatusBadRequest, httperrors.ErrCodeInvalidGrant, "authorization code is invalid")
			return
		}
		pair, err = h.tokens.IssueTokenPair(r.Context(), grant.UserID, grant.ClientID, grant.Scope)
		if err != nil {
			h.respondGrantFailure(w, err, req.ClientID)
			return
		}
		h.metrics.TokensIssuedTotal.WithLabelValues("authorization_code").Inc()

	case "refresh_token":
		if req.RefreshToken == "" {
			httperrors.RespondWithError(w, http.StatusBadRequest, httperrors.ErrCodeInvalidRequest, "refresh_token is required")
			return
		}
		pair, err = h.tokens.RotateRefreshToken(r.Context(), req.RefreshToken, req.ClientID)
		if err != nil {
			h.respondGrantFailure(w, err, req.ClientID)
			return
		}
		h.metrics.TokensIssuedTotal.WithLabelValues("refresh_token").Inc()

	default:
		httperrors.RespondWithError(w, http.StatusBadRequest, httperrors.ErrCodeUnsupportedGrantType, "grant_type must be authorization_code or refresh_token")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(pair); err != nil {
		h.logger.Error("failed to encode token response", zap.Error(err))
	}
}

// RevokeHandler implements RFC 7009: the response is 200 whether or not the
// presented token resolved to anything.
func (h *OAuthHandler) RevokeHandler(w http.ResponseWriter, r *http.Request) {
	req, err := parseTokenRequest(r)
	if err != nil || req.Token == "" {
		httperrors.RespondWithError(w, http.StatusBadRequest, httperrors.ErrCodeInvalidRequest, "token is required")
		return
	}

	if _, err := h.clients.ValidateClient(r.Context(), req.ClientID, req.ClientSecret); err != nil {
		httperrors.RespondWithError(w, http.StatusUnauthorized, httperrors.ErrCodeInvalidClient, "client authentication failed")
		return
	}

	if err := h.tokens.Revoke(r.Context(), req.Token, req.TokenTypeHint); err != nil {
		h.logger.Error("revocation failed",
			zap.String("client_id", req.ClientID),
			zap.Error(err))
		httperrors.RespondWithError(w, http.StatusInternalServerError, httperrors.ErrCodeServerError, "")
		return
	}
	h.metrics.TokensRevokedTotal.Inc()
	w.WriteHeader(http.StatusOK)
}

// UserInfoHandler returns the normalized profile for the verified grant.
func (h *OAuthHandler) UserInfoHandler(w http.ResponseWriter, r *http.Request) {
	grant, ok := domain.GetGrant(r.Context())
	if !ok {
		httperrors.RespondWithError(w, http.StatusUnauthorized, httperrors.ErrCodeUnauthorized, "authentication required")
		return
	}

	resp := UserInfoResponse{
		Sub:      grant.UserID,
		Email:    grant.Email,
		UserType: grant.UserType,
	}
	if id, err := ulid.Parse(grant.UserID); err == nil {
		if user, err := h.users.FindByID(r.Context(), id); err == nil {
			resp.Name = user.Name
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode userinfo response", zap.Error(err))
	}
}

func (h *OAuthHandler) respondGrantFailure(w http.ResponseWriter, err error, clientID string) {
	if errors.Is(err, domain.ErrInvalidGrant) {
		httperrors.RespondWithError(w, http.StatusBadRequest, httperrors.ErrCodeInvalidGrant, "grant is invalid")
		return
	}
	h.logger.Error("token issuance failed",
		zap.String("client_id", clientID),
		zap.Error(err))
	httperrors.RespondWithError(w, http.StatusInternalServerError, httperrors.ErrCodeServerError, "")
}

func redirectError(w http.ResponseWriter, r *http.Request, redirectURI, code, state string) {
	location, _ := url.Parse(redirectURI)
	params := location.Query()
	params.Set("error", code)
	if state != "" {
		params.Set("state", state)
	}
	location.RawQuery = params.Encode()
	http.Redirect(w, r, location.String(), http.StatusFound)
}

func parseTokenRequest(r *http.Request) (*TokenRequest, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req TokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
		return &req, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return &TokenRequest{
		GrantType:     r.PostForm.Get("grant_type"),
		Code:          r.PostForm.Get("code"),
		RefreshToken:  r.PostForm.Get("refresh_token"),
		ClientID:      r.PostForm.Get("client_id"),
		ClientSecret:  r.PostForm.Get("client_secret"),
		RedirectURI:   r.PostForm.Get("redirect_uri"),
		CodeVerifier:  r.PostForm.Get("code_verifier"),
		TokenTypeHint: r.PostForm.Get("token_type_hint"),
		Token:         r.PostForm.Get("token"),
	}, nil
}
