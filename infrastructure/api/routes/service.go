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

// ServiceRouter handles similarity queries.
type ServiceRouter struct {
	auth       *service.Auth
	similarity *service.Similarity
	logger     *log.Logger
}

// NewServiceRouter creates a new ServiceRouter.
func NewServiceRouter(auth *service.Auth, similarity *service.Similarity, logger *log.Logger) *ServiceRouter {
	return &ServiceRouter{auth: auth, similarity: similarity, logger: logger}
}

// Query handles POST /service.
func (rt *ServiceRouter) Query(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body dto.ServiceRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, fmt.Errorf("%w: %s", service.ErrValidation, err), rt.logger)
		return
	}
	if body.EntityInput == nil {
		middleware.WriteError(w, req, fmt.Errorf("%w: entity_input is required", service.ErrValidation), rt.logger)
		return
	}
	ref := *body.EntityInput
	if !ref.ByID() && ref.Label() == "" {
		middleware.WriteError(w, req, fmt.Errorf("%w: entity_input must not be empty", service.ErrValidation), rt.logger)
		return
	}

	caller, err := rt.auth.Authenticate(ctx, middleware.BearerToken(req), body.APIKey)
	if err != nil {
		middleware.WriteError(w, req, err, rt.logger)
		return
	}

	pred, cached, err := rt.similarity.Query(ctx, caller, ref)
	if err != nil {
		middleware.WriteError(w, req, err, rt.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.ServiceResponse{
		Cache:  cached,
		Result: pred,
	})
}
