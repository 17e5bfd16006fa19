package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/simdex/simdex"
	"github.com/simdex/simdex/infrastructure/api/routes"
	"github.com/simdex/simdex/internal/log"
)

// APIServer provides the HTTP API backed by a simdex Client.
type APIServer struct {
	client       *simdex.Client
	server       *Server
	router       chi.Router
	routerCalled bool
	logger       *log.Logger
}

// NewAPIServer creates a new APIServer wired to the given simdex Client.
func NewAPIServer(client *simdex.Client) *APIServer {
	return &APIServer{
		client: client,
		logger: client.Logger(),
	}
}

// Router returns the chi router for customization before starting.
// Call this first, add custom middleware with router.Use(), then call
// MountRoutes(). If not called, ListenAndServe creates a default router
// with all standard routes.
func (a *APIServer) Router() chi.Router {
	if a.router != nil {
		return a.router
	}

	a.router = chi.NewRouter()
	a.routerCalled = true
	return a.router
}

// MountRoutes wires up all routes on the router.
// Call this after adding any custom middleware via Router().Use().
func (a *APIServer) MountRoutes() {
	if a.router == nil {
		a.Router()
	}
	a.mountRoutes(a.router)
}

// mountRoutes wires up all routes on the given router.
func (a *APIServer) mountRoutes(router chi.Router) {
	c := a.client

	sessionRouter := routes.NewSessionRouter(c.Auth, a.logger)
	serviceRouter := routes.NewServiceRouter(c.Auth, c.Similarity, a.logger)
	homeRouter := routes.NewHomeRouter(simdex.Version)

	router.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(60 * time.Second))

		r.Get("/", homeRouter.Home)
		r.Get("/health", homeRouter.Health)
		r.Get("/healthz", homeRouter.Health)
		r.Post("/register", sessionRouter.Register)
		r.Post("/login", sessionRouter.Login)
		r.Post("/service", serviceRouter.Query)
	})

	router.Mount("/docs", NewDocsRouter("/docs/openapi.json").Routes())
}

// ListenAndServe starts the HTTP server on the given address.
func (a *APIServer) ListenAndServe(addr string) error {
	server := NewServer(addr, a.logger)
	a.server = &server

	if a.routerCalled && a.router != nil {
		server.Router().Mount("/", a.router)
	} else {
		a.mountRoutes(server.Router())
	}

	return server.Start()
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Handler returns the router as an http.Handler for use with custom servers.
func (a *APIServer) Handler() http.Handler {
	if a.router == nil {
		a.Router()
		a.MountRoutes()
	}
	return a.router
}
