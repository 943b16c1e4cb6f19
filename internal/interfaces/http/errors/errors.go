package errors

import (
	"encoding/json"
	"net/http"
)

// OAuth 2.0 error codes (RFC 6749 §5.2, RFC 6750 §3.1) plus the codes the
// session endpoints use.
const (
	ErrCodeInvalidRequest          = "invalid_request"
	ErrCodeInvalidClient           = "invalid_client"
	ErrCodeInvalidGrant            = "invalid_grant"
	ErrCodeInvalidScope            = "invalid_scope"
	ErrCodeUnauthorizedClient      = "unauthorized_client"
	ErrCodeUnsupportedGrantType    = "unsupported_grant_type"
	ErrCodeUnsupportedResponseType = "unsupported_response_type"
	ErrCodeAccessDenied            = "access_denied"
	ErrCodeServerError             = "server_error"

	ErrCodeInvalidToken      = "invalid_token"
	ErrCodeInsufficientScope = "insufficient_scope"

	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeRateLimited        = "rate_limited"
	ErrCodeAccountLocked      = "account_locked"
	ErrCodeAccountDeactivated = "account_deactivated"
	ErrCodeInvalidCredentials = "invalid_credentials"
)

// ErrorResponse is the OAuth-style error body
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// ScopeErrorResponse extends the error body for insufficient_scope so the
// caller can see which scopes were required and which the token carried.
type ScopeErrorResponse struct {
	Error            string   `json:"error"`
	ErrorDescription string   `json:"error_description,omitempty"`
	RequiredScopes   []string `json:"required_scopes"`
	TokenScopes      []string `json:"token_scopes"`
}

// RespondWithError sends a standardized OAuth error response
func RespondWithError(w http.ResponseWriter, status int, code, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:            code,
		ErrorDescription: description,
	})
}

// RespondInsufficientScope sends the 403 insufficient_scope response with
// both scope lists.
func RespondInsufficientScope(w http.ResponseWriter, required, tokenScopes []string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	json.NewEncoder(w).Encode(ScopeErrorResponse{
		Error:            ErrCodeInsufficientScope,
		ErrorDescription: "token does not carry the required scopes",
		RequiredScopes:   required,
		TokenScopes:      tokenScopes,
	})
}
