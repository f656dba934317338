package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/folio/pkg/centrality"
	"github.com/papercomputeco/folio/pkg/document"
	"github.com/papercomputeco/folio/pkg/graph"
	"github.com/papercomputeco/folio/pkg/orchestrator"
	"github.com/papercomputeco/folio/pkg/similarity"
	"github.com/papercomputeco/folio/pkg/storage"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// sortDownloads is the sort value ordering by download count.
const sortDownloads = "download_count"

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleListBooks filters the catalog, then ranks the result by centrality
// when sort is closeness or betweenness, and attaches suggestions.
//
// Query parameters:
//   - languages, author_name, author_name_type, title, title_type,
//     keyword, keyword_type: catalog filter
//   - sort: download_count, closeness or betweenness
//   - order: ascending or descending (default)
func (s *Server) handleListBooks(c *fiber.Ctx) error {
	if s.resolver == nil {
		return fail(c, fiber.StatusServiceUnavailable, "ranking is not configured")
	}

	filter, err := parseFilter(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	order, err := graph.ParseOrder(c.Query("order"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	mode := centrality.ModeNone
	switch sort := c.Query("sort"); sort {
	case "", sortDownloads:
	default:
		mode, err = centrality.ParseMode(sort)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, err.Error())
		}
	}

	ctx := c.Context()

	docs, err := s.store.ListDocuments(ctx, filter)
	if err != nil {
		return s.storageError(c, "failed to list books", err)
	}

	resp, err := s.resolver.Resolve(ctx, orchestrator.Request{
		IDs:   document.IDs(docs),
		Mode:  mode,
		Order: order,
	})
	if err != nil {
		return s.storageError(c, "failed to resolve books", err)
	}

	return c.JSON(resp)
}

// handleSimilarBooks expands keyword matches within the filtered catalog by
// cosine similarity. Without a keyword the filtered catalog is returned.
//
// Query parameters, besides the catalog filter of handleListBooks:
//   - top (optional, default 10): number of results
//   - min_score (optional, default 0.3): cosine floor
//   - sort=download_count re-sorts the cut result
func (s *Server) handleSimilarBooks(c *fiber.Ctx) error {
	if s.search == nil {
		return fail(c, fiber.StatusServiceUnavailable, "similarity search is not configured")
	}

	filter, err := parseFilter(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	order, err := graph.ParseOrder(c.Query("order"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	keyword, keywordMode := filter.Keyword, filter.KeywordMode
	filter.Keyword = ""

	topN := 0
	if raw := c.Query("top"); raw != "" {
		topN, err = strconv.Atoi(raw)
		if err != nil || topN <= 0 {
			return fail(c, fiber.StatusBadRequest, "top must be a positive integer")
		}
	}
	minScore := 0.0
	if raw := c.Query("min_score"); raw != "" {
		minScore, err = strconv.ParseFloat(raw, 64)
		if err != nil || minScore <= 0 || minScore > 1 {
			return fail(c, fiber.StatusBadRequest, "min_score must be in (0, 1]")
		}
	}

	ctx := c.Context()

	candidates, err := s.store.ListDocuments(ctx, filter)
	if err != nil {
		return s.storageError(c, "failed to list books", err)
	}
	if keyword == "" {
		return c.JSON(candidates)
	}

	results, err := s.search.Search(ctx, similarity.Query{
		CandidateIDs:    document.IDs(candidates),
		Keyword:         keyword,
		Mode:            keywordMode,
		Languages:       filter.KeywordLanguages(),
		MinScore:        minScore,
		TopN:            topN,
		SortByDownloads: c.Query("sort") == sortDownloads,
		Ascending:       order == graph.Ascending,
	})
	if err != nil {
		return s.storageError(c, "similarity search failed", err)
	}

	return c.JSON(results)
}

// handleSuggestions returns the neighbor suggestions of ids=1,2,...
func (s *Server) handleSuggestions(c *fiber.Ctx) error {
	if s.resolver == nil {
		return fail(c, fiber.StatusServiceUnavailable, "suggestions are not configured")
	}

	ids, err := document.ParseIDs(c.Query("ids"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	if len(ids) == 0 {
		return fail(c, fiber.StatusBadRequest, "ids parameter is required")
	}

	suggestions, err := s.resolver.Suggestions(c.Context(), ids)
	if err != nil {
		return s.storageError(c, "failed to build suggestions", err)
	}

	return c.JSON(suggestions)
}

// handleNeighbors returns the stored Jaccard neighbors of one book.
func (s *Server) handleNeighbors(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "id must be an integer")
	}

	ctx := c.Context()

	if _, err := s.store.GetDocument(ctx, id); err != nil {
		return s.storageError(c, "failed to get book", err)
	}

	ids, err := s.store.Neighbors(ctx, id)
	if err != nil {
		return s.storageError(c, "failed to get neighbors", err)
	}
	if len(ids) == 0 {
		return c.JSON([]document.Document{})
	}

	docs, err := s.store.GetDocuments(ctx, ids)
	if err != nil {
		return s.storageError(c, "failed to get neighbors", err)
	}

	return c.JSON(docs)
}

// storageError maps a storage failure to a status code. msg is used for
// failures whose detail should not leak to clients.
func (s *Server) storageError(c *fiber.Ctx, msg string, err error) error {
	switch {
	case storage.IsNotFound(err):
		return fail(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrInvalidPattern):
		return fail(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrUnavailable):
		s.logger.Error(msg, "path", c.Path(), "error", err)
		return fail(c, fiber.StatusServiceUnavailable, msg)
	default:
		s.logger.Error(msg, "path", c.Path(), "error", err)
		return fail(c, fiber.StatusInternalServerError, msg)
	}
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ErrorResponse{Error: msg})
}

// errorHandler renders errors escaping a handler, such as unknown routes,
// as an ErrorResponse.
func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	return fail(c, status, err.Error())
}

// parseFilter reads the catalog filter shared by the listing routes.
func parseFilter(c *fiber.Ctx) (storage.Filter, error) {
	f := storage.Filter{
		Language: c.Query("languages"),
		Author:   c.Query("author_name"),
		Title:    c.Query("title"),
		Keyword:  c.Query("keyword"),
	}

	var err error
	if f.AuthorMode, err = storage.ParseMatchMode(c.Query("author_name_type")); err != nil {
		return f, err
	}
	if f.TitleMode, err = storage.ParseMatchMode(c.Query("title_type")); err != nil {
		return f, err
	}
	if f.KeywordMode, err = storage.ParseMatchMode(c.Query("keyword_type")); err != nil {
		return f, err
	}

	if c.Query("sort") == sortDownloads {
		f.SortByDownloads = true
		f.Ascending = strings.HasPrefix(strings.ToLower(c.Query("order")), "asc")
	}

	return f, f.Validate()
}
