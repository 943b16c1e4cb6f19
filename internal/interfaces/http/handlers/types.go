package handlers

// TokenRequest is the /oauth2/token request body, accepted form-encoded or
// as JSON.
type TokenRequest struct {
	GrantType     string `json:"grant_type"`
	Code          string `json:"code"`
	RefreshToken  string `json:"refresh_token"`
	ClientID      string `json:"client_id"`
	ClientSecret  string `json:"client_secret"`
	RedirectURI   string `json:"redirect_uri"`
	CodeVerifier  string `json:"code_verifier"`
	TokenTypeHint string `json:"token_type_hint"`
	Token         string `json:"token"`
}

// LoginRequest is the /login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserInfoResponse is the /oauth2/userinfo response shape
type UserInfoResponse struct {
	Sub      string `json:"sub"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	UserType string `json:"user_type"`
}
