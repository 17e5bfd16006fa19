package routes

import (
	"net/http"
	"runtime"

	"github.com/simdex/simdex/infrastructure/api/middleware"
	"github.com/simdex/simdex/infrastructure/api/routes/dto"
)

// HomeRouter serves service metadata and health probes.
type HomeRouter struct {
	version string
}

// NewHomeRouter creates a new HomeRouter.
func NewHomeRouter(version string) *HomeRouter {
	return &HomeRouter{version: version}
}

// Home handles GET /.
func (rt *HomeRouter) Home(w http.ResponseWriter, req *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, dto.HomeResponse{
		Service:   "simdex",
		Version:   rt.version,
		GoVersion: runtime.Version(),
		Status:    "ok",
		Endpoints: []string{"/register", "/login", "/service", "/health", "/docs"},
	})
}

// Health handles GET /health and GET /healthz.
func (rt *HomeRouter) Health(w http.ResponseWriter, req *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, dto.HealthResponse{Status: "ok"})
}
