package api

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/papercomputeco/folio/pkg/document"
	"github.com/papercomputeco/folio/pkg/orchestrator"
	"github.com/papercomputeco/folio/pkg/similarity"
	"github.com/papercomputeco/folio/pkg/storage"
)

// Searcher runs cosine similarity searches. *similarity.Engine implements it.
type Searcher interface {
	Search(ctx context.Context, q similarity.Query) ([]similarity.Result, error)
}

// Resolver ranks result sets and assembles suggestions.
// *orchestrator.Orchestrator implements it.
type Resolver interface {
	Resolve(ctx context.Context, req orchestrator.Request) (*orchestrator.Response, error)
	Suggestions(ctx context.Context, ids []int64) ([]document.Document, error)
}

// Dependencies are the collaborators of a Server. Without Search the
// similarity route answers 503, and without Resolver the listing and
// suggestion routes do.
type Dependencies struct {
	Store    storage.Driver
	Search   Searcher
	Resolver Resolver
	Logger   *slog.Logger
}

// Server is the folio API server.
type Server struct {
	config   Config
	store    storage.Driver
	search   Searcher
	resolver Resolver
	logger   *slog.Logger
	app      *fiber.App
}

// NewServer creates a new API server. The store is injected so the CLI can
// share one driver between the server and its background workers.
func NewServer(config Config, deps Dependencies) (*Server, error) {
	if deps.Store == nil {
		return nil, errors.New("api server requires a storage driver")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(recover.New())

	s := &Server{
		config:   config,
		store:    deps.Store,
		search:   deps.Search,
		resolver: deps.Resolver,
		logger:   deps.Logger,
		app:      app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/books", s.handleListBooks)
	app.Get("/books/similar", s.handleSimilarBooks)
	app.Get("/books/suggestions", s.handleSuggestions)
	app.Get("/books/:id/neighbors", s.handleNeighbors)

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
