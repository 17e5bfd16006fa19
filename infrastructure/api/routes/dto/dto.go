// Package dto defines the request and response bodies of the HTTP API.
package dto

import "github.com/simdex/simdex/domain/similarity"

// CredentialsRequest is the body of POST /register and POST /login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is the body returned by /register and /login. Register
// fills the api_key fields, login fills the token field; the other side
// stays null.
type SessionResponse struct {
	AccountType *string `json:"account_type"`
	APIKey      *string `json:"api_key"`
	Message     string  `json:"message"`
	Token       *string `json:"token"`
}

// ServiceRequest is the body of POST /service. The api_key field is an
// alternative to the Authorization bearer header.
type ServiceRequest struct {
	EntityInput *similarity.EntityRef `json:"entity_input"`
	APIKey      string                `json:"api_key,omitempty"`
}

// ServiceResponse is the body returned by /service.
type ServiceResponse struct {
	Cache  bool                  `json:"cache"`
	Result similarity.Prediction `json:"result"`
}

// HomeResponse is the body returned by GET /.
type HomeResponse struct {
	Service   string   `json:"service"`
	Version   string   `json:"version"`
	GoVersion string   `json:"go_version"`
	Status    string   `json:"status"`
	Endpoints []string `json:"endpoints"`
}

// HealthResponse is the body returned by the health endpoints.
type HealthResponse struct {
	Status string `json:"status"`
}
