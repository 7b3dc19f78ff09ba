package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/comic-catalog/pkg/catalog"
	"github.com/Sternrassler/comic-catalog/pkg/comic"
	"github.com/Sternrassler/comic-catalog/pkg/handoff"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HandoffStore parks detail navigation state under a token.
// *handoff.Store implements it.
type HandoffStore interface {
	Put(ctx context.Context, route comic.DetailRoute) (string, error)
	Get(ctx context.Context, token string) (*comic.DetailRoute, error)
	Ping(ctx context.Context) error
}

// Handler serves the catalog API.
type Handler struct {
	library  catalog.PageLoader
	trending catalog.TrendingLoader
	home     *catalog.Home
	handoffs HandoffStore
	logger   zerolog.Logger
}

// NewHandler creates the API handler. handoffs may be nil when no Redis is
// configured; the handoff routes then answer 503.
func NewHandler(library catalog.PageLoader, trending catalog.TrendingLoader, handoffs HandoffStore, logger zerolog.Logger) *Handler {
	return &Handler{
		library:  library,
		trending: trending,
		home:     catalog.NewHome(library, trending),
		handoffs: handoffs,
		logger:   logger,
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type handoffResponse struct {
	Token string `json:"token"`
	Path  string `json:"path"`
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// Ready handles GET /ready.
func (h *Handler) Ready(c *gin.Context) {
	if h.handoffs == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ready", "redis": "disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.handoffs.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":      "not_ready",
			"redis":       "error",
			"redis_error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready", "redis": "ok"})
}

// Home handles GET /api/home?page=N.
func (h *Handler) Home(c *gin.Context) {
	page, ok := pageParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.home.Load(c.Request.Context(), page))
}

// Catalog handles GET /api/catalog?page=N.
func (h *Handler) Catalog(c *gin.Context) {
	page, ok := pageParam(c)
	if !ok {
		return
	}

	result, err := h.library.Load(c.Request.Context(), page)
	if err != nil {
		h.logger.Error().Err(err).Int("page", page).Msg("Catalog load failed")
		c.JSON(http.StatusBadGateway, errorResponse{
			Error:   catalog.ErrorTitleLibrary,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, catalog.BuildView(page, result, nil))
}

// Trending handles GET /api/trending.
func (h *Handler) Trending(c *gin.Context) {
	comics, err := h.trending.Load(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Trending load failed")
		c.JSON(http.StatusBadGateway, errorResponse{
			Error:   catalog.ErrorTitleTrending,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, catalog.NewTrendingSection(comics, nil))
}

// CreateHandoff handles POST /api/handoff.
func (h *Handler) CreateHandoff(c *gin.Context) {
	if !h.handoffsEnabled(c) {
		return
	}

	var route comic.DetailRoute
	if err := c.ShouldBindJSON(&route); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid json", Message: err.Error()})
		return
	}
	if !strings.HasPrefix(route.Path, comic.DetailPathPrefix) || route.State.ProcessedLink == "" {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:   "invalid route",
			Message: "path must start with " + comic.DetailPathPrefix + " and carry a processed link",
		})
		return
	}

	token, err := h.handoffs.Put(c.Request.Context(), route)
	if err != nil {
		h.logger.Error().Err(err).Str("path", route.Path).Msg("Handoff store failed")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "handoff failed", Message: err.Error()})
		return
	}

	h.logger.Info().Str("token", token).Str("path", route.Path).Msg("Handoff stored")
	c.JSON(http.StatusCreated, handoffResponse{Token: token, Path: route.Path})
}

// GetHandoff handles GET /api/handoff/:token.
func (h *Handler) GetHandoff(c *gin.Context) {
	if !h.handoffsEnabled(c) {
		return
	}

	token := c.Param("token")
	route, err := h.handoffs.Get(c.Request.Context(), token)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, route)
	case errors.Is(err, handoff.ErrInvalidToken):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid token", Message: err.Error()})
	case errors.Is(err, handoff.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "handoff not found", Message: err.Error()})
	default:
		h.logger.Error().Err(err).Str("token", token).Msg("Handoff lookup failed")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "handoff failed", Message: err.Error()})
	}
}

func (h *Handler) handoffsEnabled(c *gin.Context) bool {
	if h.handoffs != nil {
		return true
	}
	c.JSON(http.StatusServiceUnavailable, errorResponse{
		Error:   "handoff unavailable",
		Message: "no redis configured",
	})
	return false
}

// pageParam reads the optional page query parameter. Missing means page 1.
// Writes a 400 response and returns false when it is not a positive integer.
func pageParam(c *gin.Context) (int, bool) {
	raw := c.Query("page")
	if raw == "" {
		return 1, true
	}

	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:   "invalid page",
			Message: "page must be a positive integer",
		})
		return 0, false
	}
	return page, true
}
