// Package routes implements the HTTP endpoints of the similarity service.
package routes

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/simdex/simdex/application/service"
	"github.com/simdex/simdex/infrastructure/api/middleware"
	"github.com/simdex/simdex/infrastructure/api/routes/dto"
	"github.com/simdex/simdex/internal/log"
)

// SessionRouter handles account registration and login.
type SessionRouter struct {
	auth   *service.Auth
	logger *log.Logger
}

// NewSessionRouter creates a new SessionRouter.
func NewSessionRouter(auth *service.Auth, logger *log.Logger) *SessionRouter {
	return &SessionRouter{auth: auth, logger: logger}
}

// Register handles POST /register.
func (rt *SessionRouter) Register(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body dto.CredentialsRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, fmt.Errorf("%w: %s", service.ErrValidation, err), rt.logger)
		return
	}

	reg, err := rt.auth.Register(ctx, body.Email, body.Password)
	if err != nil {
		middleware.WriteError(w, req, err, rt.logger)
		return
	}

	accountType := string(reg.AccountType())
	apiKey := reg.APIKey()
	middleware.WriteJSON(w, http.StatusCreated, dto.SessionResponse{
		AccountType: &accountType,
		APIKey:      &apiKey,
		Message:     "registration successful, store your api key safely",
	})
}

// Login handles POST /login.
func (rt *SessionRouter) Login(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body dto.CredentialsRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, fmt.Errorf("%w: %s", service.ErrValidation, err), rt.logger)
		return
	}

	token, err := rt.auth.Login(ctx, body.Email, body.Password)
	if err != nil {
		middleware.WriteError(w, req, err, rt.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.SessionResponse{
		Message: "login successful",
		Token:   &token,
	})
}
