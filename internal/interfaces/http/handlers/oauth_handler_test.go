package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/arenalink/auth-service/internal/domain"
	"github.com/arenalink/auth-service/internal/observability/metrics"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type oauthMocks struct {
	clients *MockClientService
	codes   *MockAuthorizationService
	tokens  *MockTokenService
	users   *MockUserRepository
	limiter *MockLimiter
}

func newOAuthHandler() (*OAuthHandler, *oauthMocks) {
	m := &oauthMocks{
		clients: new(MockClientService),
		codes:   new(MockAuthorizationService),
		tokens:  new(MockTokenService),
		users:   new(MockUserRepository),
		limiter: new(MockLimiter),
	}
	h := NewOAuthHandler(m.clients, m.codes, m.tokens, m.users, m.limiter, metrics.Init(), zap.NewNop())
	return h, m
}

func confidentialClient() *domain.Client {
	return &domain.Client{
		ClientID:     "client_123",
		ClientSecret: "s3cret",
		RedirectURIs: []string{"https://app.example.com/cb"},
		Scopes:       []string{"openid", "profile", "clubs:read"},
		Active:       true,
	}
}

func sessionRequest(target string, user *domain.User) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return req.WithContext(domain.WithSessionUser(req.Context(), user))
}

func redirectQuery(t *testing.T, w *httptest.ResponseRecorder) url.Values {
	t.Helper()
	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	return loc.Query()
}

func TestOAuthHandler_Authorize(t *testing.T) {
	user := &domain.User{ID: ulid.Make(), Email: "casey@example.com", IsActive: true}

	t.Run("issues a code and echoes state", func(t *testing.T) {
		h, m := newOAuthHandler()
		client := confidentialClient()
		m.clients.On("ValidateClient", mock.Anything, "client_123", "").Return(client, nil)
		m.clients.On("ValidateRedirectURI", client, "https://app.example.com/cb").Return(true)
		m.clients.On("ValidateScope", client, "openid clubs:read").Return(true)
		m.codes.On("CreateCode", mock.Anything, "client_123", user.ID, "https://app.example.com/cb", "openid clubs:read", "", "").Return("issued-code", nil)

		target := "/oauth2/authorize?response_type=code&client_id=client_123&redirect_uri=" +
			url.QueryEscape("https://app.example.com/cb") + "&scope=" + url.QueryEscape("openid clubs:read") + "&state=xyz"
		w := httptest.NewRecorder()
		h.AuthorizeHandler(w, sessionRequest(target, user))

		q := redirectQuery(t, w)
		assert.Equal(t, "issued-code", q.Get("code"))
		assert.Equal(t, "xyz", q.Get("state"))
	})

	t.Run("unknown client never redirects", func(t *testing.T) {
		h, m := newOAuthHandler()
		m.clients.On("ValidateClient", mock.Anything, "ghost", "").Return(nil, domain.ErrInvalidClient)

		w := httptest.NewRecorder()
		h.AuthorizeHandler(w, sessionRequest("/oauth2/authorize?response_type=code&client_id=ghost&redirect_uri=https%3A%2F%2Fapp.example.com%2Fcb", user))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, w.Header().Get("Location"))
	})

	t.Run("unregistered redirect URI never redirects", func(t *testing.T) {
		h, m := newOAuthHandler()
		client := confidentialClient()
		m.clients.On("ValidateClient", mock.Anything, "client_123", "").Return(client, nil)
		m.clients.On("ValidateRedirectURI", client, "https://evil.example.com/cb").Return(false)

		w := httptest.NewRecorder()
		h.AuthorizeHandler(w, sessionRequest("/oauth2/authorize?response_type=code&client_id=client_123&redirect_uri=https%3A%2F%2Fevil.example.com%2Fcb", user))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, w.Header().Get("Location"))
	})

	t.Run("wrong response_type redirects with the error", func(t *testing.T) {
		h, m := newOAuthHandler()
		client := confidentialClient()
		m.clients.On("ValidateClient", mock.Anything, "client_123", "").Return(client, nil)
		m.clients.On("ValidateRedirectURI", client, "https://app.example.com/cb").Return(true)

		w := httptest.NewRecorder()
		h.AuthorizeHandler(w, sessionRequest("/oauth2/authorize?response_type=token&client_id=client_123&redirect_uri=https%3A%2F%2Fapp.example.com%2Fcb&state=xyz", user))

		q := redirectQuery(t, w)
		assert.Equal(t, "unsupported_response_type", q.Get("error"))
		assert.Equal(t, "xyz", q.Get("state"))
	})

	t.Run("disallowed scope redirects with invalid_scope", func(t *testing.T) {
		h, m := newOAuthHandler()
		client := confidentialClient()
		m.clients.On("ValidateClient", mock.Anything, "client_123", "").Return(client, nil)
		m.clients.On("ValidateRedirectURI", client, "https://app.example.com/cb").Return(true)
		m.clients.On("ValidateScope", client, "clubs:write").Return(false)

		w := httptest.NewRecorder()
		h.AuthorizeHandler(w, sessionRequest("/oauth2/authorize?response_type=code&client_id=client_123&redirect_uri=https%3A%2F%2Fapp.example.com%2Fcb&scope=clubs%3Awrite", user))

		q := redirectQuery(t, w)
		assert.Equal(t, "invalid_scope", q.Get("error"))
	})

	t.Run("denied consent redirects with access_denied", func(t *testing.T) {
		h, m := newOAuthHandler()
		client := confidentialClient()
		m.clients.On("ValidateClient", mock.Anything, "client_123", "").Return(client, nil)
		m.clients.On("ValidateRedirectURI", client, "https://app.example.com/cb").Return(true)
		m.clients.On("ValidateScope", client, "openid").Return(true)

		w := httptest.NewRecorder()
		h.AuthorizeHandler(w, sessionRequest("/oauth2/authorize?response_type=code&client_id=client_123&redirect_uri=https%3A%2F%2Fapp.example.com%2Fcb&scope=openid&state=xyz&approved=false", user))

		q := redirectQuery(t, w)
		assert.Equal(t, "access_denied", q.Get("error"))
		assert.Equal(t, "xyz", q.Get("state"))
	})

	t.Run("public client without PKCE is rejected", func(t *testing.T) {
		h, m := newOAuthHandler()
		client := confidentialClient()
		client.ClientSecret = ""
		m.clients.On("ValidateClient", mock.Anything, "client_123", "").Return(client, nil)
		m.clients.On("ValidateRedirectURI", client, "https://app.example.com/cb").Return(true)
		m.clients.On("ValidateScope", client, "openid").Return(true)

		w := httptest.NewRecorder()
		h.AuthorizeHandler(w, sessionRequest("/oauth2/authorize?response_type=code&client_id=client_123&redirect_uri=https%3A%2F%2Fapp.example.com%2Fcb&scope=openid", user))

		q := redirectQuery(t, w)
		assert.Equal(t, "invalid_request", q.Get("error"))
	})

	t.Run("unauthenticated request", func(t *testing.T) {
		h, _ := newOAuthHandler()
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/oauth2/authorize", nil)
		h.AuthorizeHandler(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestOAuthHandler_Token(t *testing.T) {
	tokenPair := &domain.TokenPair{
		AccessToken:  "signed-access",
		RefreshToken: "signed-refresh",
		TokenType:    "Bearer",
		ExpiresIn:    3600,
		Scope:        "openid clubs:read",
	}

	allowLimiter := func(m *oauthMocks) {
		m.limiter.On("Allow", mock.Anything, "token_exchange:client_123", 10, mock.Anything).
			Return(domain.RateLimitResult{Allowed: true}, nil)
	}

	t.Run("authorization_code grant with JSON body", func(t *testing.T) {
		h, m := newOAuthHandler()
		allowLimiter(m)
		m.clients.On("ValidateClient", mock.Anything, "client_123", "s3cret").Return(confidentialClient(), nil)
		grant := &domain.UserGrant{UserID: ulid.Make(), ClientID: "client_123", Scope: "openid clubs:read"}
		m.codes.On("RedeemCode", mock.Anything, "issued-code", "client_123", "https://app.example.com/cb", "verifier123").Return(grant, nil)
		m.tokens.On("IssueTokenPair", mock.Anything, grant.UserID, "client_123", "openid clubs:read").Return(tokenPair, nil)

		body := `{"grant_type":"authorization_code","code":"issued-code","client_id":"client_123","client_secret":"s3cret","redirect_uri":"https://app.example.com/cb","code_verifier":"verifier123"}`
		req := httptest.NewRequest(http.MethodPost, "/oauth2/token", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h.TokenHandler(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
		var resp domain.TokenPair
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "signed-access", resp.AccessToken)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, 3600, resp.ExpiresIn)
	})

	t.Run("authorization_code grant with form body", func(t *testing.T) {
		h, m := newOAuthHandler()
		allowLimiter(m)
		m.clients.On("ValidateClient", mock.Anything, "client_123", "s3cret").Return(confidentialClient(), nil)
		grant := &domain.UserGrant{UserID: ulid.Make(), ClientID: "client_123", Scope: "openid"}
		m.codes.On("RedeemCode", mock.Anything, "issued-code", "client_123", "https://app.example.com/cb", "").Return(grant, nil)
		m.tokens.On("IssueTokenPair", mock.Anything, grant.UserID, "client_123", "openid").Return(tokenPair, nil)

		form := url.Values{
			"grant_type":    {"authorization_code"},
			"code":          {"issued-code"},
			"client_id":     {"client_123"},
			"client_secret": {"s3cret"},
			"redirect_uri":  {"https://app.example.com/cb"},
		}
		req := httptest.NewRequest(http.MethodPost, "/oauth2/token", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		h.TokenHandler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("refresh_token grant", func(t *testing.T) {
		h, m := newOAuthHandler()
		allowLimiter(m)
		m.clients.On("ValidateClient", mock.Anything, "client_123", "s3cret").Return(confidentialClient(), nil)
		m.tokens.On("RotateRefreshToken", mock.Anything, "old-refresh", "client_123").Return(tokenPair, nil)

		body := `{"grant_type":"refresh_token","refresh_token":"old-refresh","client_id":"client_123","client_secret":"s3cret"}`
		req := httptest.NewRequest(http.MethodPost, "/oauth2/token", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h.TokenHandler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("bad code is invalid_grant", func(t *testing.T) {
		h, m := newOAuthHandler()
		allowLimiter(m)
		m.clients.On("ValidateClient", mock.Anything, "client_123", "s3cret").Return(confidentialClient(), nil)
		m.codes.On("RedeemCode", mock.Anything, "bad", "client_123", "https://app.example.com/cb", "").Return(nil, domain.ErrInvalidGrant)

		body := `{"grant_type":"authorization_code","code":"bad","client_id":"client_123","client_secret":"s3cret","redirect_uri":"https://app.example.com/cb"}`
		req := httptest.NewRequest(http.MethodPost, "/oauth2/token", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h.TokenHandler(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "invalid_grant", resp["error"])
	})

	t.Run("client authentication failure is 401", func(t *testing.T) {
		h, m := newOAuthHandler()
		allowLimiter(m)
		m.clients.On("ValidateClient", mock.Anything, "client_123", "wrong").Return(nil, domain.ErrInvalidClient)

		body := `{"grant_type":"authorization_code","code":"x","client_id":"client_123","client_secret":"wrong","redirect_uri":"https://app.example.com/cb"}`
		req := httptest.NewRequest(http.MethodPost, "/oauth2/token", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h.TokenHandler(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "invalid_client", resp["error"])
	})

	t.Run("rate limited exchange is rejected before client validation", func(t *testing.T) {
		h, m := newOAuthHandler()
		m.limiter.On("Allow", mock.Anything, "token_exchange:client_123", 10, mock.Anything).
			Return(domain.RateLimitResult{Allowed: false}, nil)

		body := `{"grant_type":"refresh_token","refresh_token":"r","client_id":"client_123"}`
		req := httptest.NewRequest(http.MethodPost, "/oauth2/token", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h.TokenHandler(w, req)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		m.clients.AssertNotCalled(t, "ValidateClient", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unsupported grant type", func(t *testing.T) {
		h, m := newOAuthHandler()
		allowLimiter(m)
		m.clients.On("ValidateClient", mock.Anything, "client_123", "s3cret").Return(confidentialClient(), nil)

		body := `{"grant_type":"password","client_id":"client_123","client_secret":"s3cret"}`
		req := httptest.NewRequest(http.MethodPost, "/oauth2/token", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h.TokenHandler(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "unsupported_grant_type", resp["error"])
	})

	t.Run("missing client_id", func(t *testing.T) {
		h, _ := newOAuthHandler()
		req := httptest.NewRequest(http.MethodPost, "/oauth2/token", strings.NewReader(`{"grant_type":"refresh_token"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h.TokenHandler(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOAuthHandler_Revoke(t *testing.T) {
	t.Run("revocation of an unknown token is still 200", func(t *testing.T) {
		h, m := newOAuthHandler()
		m.clients.On("ValidateClient", mock.Anything, "client_123", "s3cret").Return(confidentialClient(), nil)
		m.tokens.On("Revoke", mock.Anything, "whatever", "refresh_token").Return(nil)

		body := `{"token":"whatever","token_type_hint":"refresh_token","client_id":"client_123","client_secret":"s3cret"}`
		req := httptest.NewRequest(http.MethodPost, "/oauth2/revoke", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h.RevokeHandler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing token is invalid_request", func(t *testing.T) {
		h, _ := newOAuthHandler()
		req := httptest.NewRequest(http.MethodPost, "/oauth2/revoke", strings.NewReader(`{"client_id":"client_123"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h.RevokeHandler(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("client authentication failure is 401", func(t *testing.T) {
		h, m := newOAuthHandler()
		m.clients.On("ValidateClient", mock.Anything, "client_123", "wrong").Return(nil, domain.ErrInvalidClient)

		body := `{"token":"tok","client_id":"client_123","client_secret":"wrong"}`
		req := httptest.NewRequest(http.MethodPost, "/oauth2/revoke", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h.RevokeHandler(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestOAuthHandler_UserInfo(t *testing.T) {
	t.Run("returns the normalized profile", func(t *testing.T) {
		h, m := newOAuthHandler()
		userID := ulid.Make()
		m.users.On("FindByID", mock.Anything, userID).Return(&domain.User{
			ID:       userID,
			Name:     "Casey",
			Email:    "casey@example.com",
			UserType: domain.UserTypeUser,
			IsActive: true,
		}, nil)

		grant := &domain.BearerGrant{
			UserID:   userID.String(),
			Email:    "casey@example.com",
			UserType: domain.UserTypeUser,
			ClientID: "client_123",
			Scopes:   []string{"openid"},
		}
		req := httptest.NewRequest(http.MethodGet, "/oauth2/userinfo", nil)
		req = req.WithContext(domain.WithGrant(req.Context(), grant))
		w := httptest.NewRecorder()
		h.UserInfoHandler(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp UserInfoResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, userID.String(), resp.Sub)
		assert.Equal(t, "casey@example.com", resp.Email)
		assert.Equal(t, "Casey", resp.Name)
	})

	t.Run("missing grant is 401", func(t *testing.T) {
		h, _ := newOAuthHandler()
		req := httptest.NewRequest(http.MethodGet, "/oauth2/userinfo", nil)
		w := httptest.NewRecorder()
		h.UserInfoHandler(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
