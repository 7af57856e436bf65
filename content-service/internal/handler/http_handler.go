package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/domain"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/service"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/log"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/middleware"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/resilience"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/response"
)

// Handler handles HTTP requests for the content service.
type Handler struct {
	search         service.SearchService
	contents       service.ContentService
	pages          service.PageService
	stats          service.StatsService
	authMiddleware *middleware.AuthMiddleware
	adminRole      string
	ping           func(ctx context.Context) error
}

// NewHandler creates a new HTTP handler. ping backs the health check and
// may be nil.
func NewHandler(
	search service.SearchService,
	contents service.ContentService,
	pages service.PageService,
	stats service.StatsService,
	authMiddleware *middleware.AuthMiddleware,
	adminRole string,
	ping func(ctx context.Context) error,
) *Handler {
	return &Handler{
		search:         search,
		contents:       contents,
		pages:          pages,
		stats:          stats,
		authMiddleware: authMiddleware,
		adminRole:      adminRole,
		ping:           ping,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/health", h.Health)
		api.GET("/stats", h.Stats)

		search := api.Group("/search")
		{
			search.GET("", h.Search)
			search.GET("/suggest", h.Suggest)
			search.GET("/correct", h.Correct)
			search.GET("/expand", h.Expand)
		}

		api.GET("/contents/:kind", h.ListContents)
		api.GET("/contents/:kind/:slug", h.GetContent)
		api.GET("/pages/:slug", h.GetPage)

		admin := api.Group("/admin", h.authMiddleware.RequireAuth(), h.authMiddleware.RequireRole(h.adminRole))
		{
			admin.POST("/contents/:kind", h.CreateContent)
			admin.PUT("/contents/:kind/:id", h.UpdateContent)
			admin.DELETE("/contents/:kind/:id", h.DeleteContent)
			admin.GET("/pages", h.ListPages)
			admin.PUT("/pages/:slug", h.UpsertPage)
			admin.DELETE("/pages/:slug", h.DeletePage)
			admin.DELETE("/cache", h.FlushCache)
		}
	}
}

// writeError maps service errors to responses. Store errors never reach
// the client verbatim.
func writeError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrContentNotFound):
		response.NotFound(c, "content not found")
	case errors.Is(err, service.ErrPageNotFound):
		response.NotFound(c, "page not found")
	case errors.Is(err, service.ErrInvalidKind):
		response.NotFound(c, "unknown content kind")
	case errors.Is(err, service.ErrInvalidSlug):
		response.BadRequest(c, "invalid slug")
	case errors.Is(err, service.ErrDuplicateSlug):
		response.Conflict(c, "slug already exists")
	case resilience.IsTimeout(err):
		response.ServiceUnavailable(c, "content store timed out")
	default:
		l := log.Ctx(c.Request.Context())
		l.Error().Err(err).Msg(msg)
		response.InternalError(c, msg)
	}
}

func parseKind(c *gin.Context) (domain.EntityKind, bool) {
	kind, ok := domain.ParseKind(c.Param("kind"))
	if !ok {
		response.NotFound(c, "unknown content kind")
	}
	return kind, ok
}

func actor(c *gin.Context) service.Actor {
	return service.Actor{
		UserID:   middleware.GetUserID(c),
		Username: middleware.GetUsername(c),
	}
}

// Health reports whether the primary store is reachable.
func (h *Handler) Health(c *gin.Context) {
	if h.ping != nil {
		if err := h.ping(c.Request.Context()); err != nil {
			l := log.Ctx(c.Request.Context())
			l.Warn().Err(err).Msg("health check failed")
			response.ServiceUnavailable(c, "database unavailable")
			return
		}
	}
	response.Success(c, gin.H{"status": "ok"})
}

// Search runs a submitted search across every content kind.
func (h *Handler) Search(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind search request")
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.search.Search(ctx, &req)
	if err != nil {
		writeError(c, err, "failed to search")
		return
	}

	response.Success(c, resp)
}

// Suggest returns autocomplete suggestions.
func (h *Handler) Suggest(c *gin.Context) {
	ctx := c.Request.Context()

	var req domain.SuggestRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	suggestions, err := h.search.GetSuggestions(ctx, req.Query, req.Limit)
	if err != nil {
		writeError(c, err, "failed to get suggestions")
		return
	}

	response.Success(c, suggestions)
}

func (h *Handler) Correct(c *gin.Context) {
	response.Success(c, h.search.CorrectSpelling(c.Query("q")))
}

func (h *Handler) Expand(c *gin.Context) {
	q := c.Query("q")
	response.Success(c, gin.H{
		"query": q,
		"terms": h.search.ExpandSynonyms(q),
	})
}

// ListContents lists published items of one kind.
func (h *Handler) ListContents(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}

	var req domain.ListContentRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.contents.List(c.Request.Context(), kind, &req)
	if err != nil {
		writeError(c, err, "failed to list contents")
		return
	}

	response.Paginated(c, result.Data, response.Meta{
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      result.Total,
		TotalPages: result.TotalPages,
		HasMore:    result.TotalPages > req.Page,
	})
}

// GetContent returns one published item by slug.
func (h *Handler) GetContent(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}

	item, err := h.contents.GetPublished(c.Request.Context(), kind, c.Param("slug"))
	if err != nil {
		writeError(c, err, "failed to get content")
		return
	}

	response.Success(c, item)
}

func (h *Handler) GetPage(c *gin.Context) {
	page, err := h.pages.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err, "failed to get page")
		return
	}

	response.Success(c, page)
}

// Stats returns per-kind counts. Unavailable counts read as zero.
func (h *Handler) Stats(c *gin.Context) {
	response.Success(c, h.stats.Stats(c.Request.Context()))
}

// CreateContent creates an item.
func (h *Handler) CreateContent(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}

	var req domain.CreateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l := log.Ctx(c.Request.Context())
		l.Warn().Err(err).Msg("failed to bind create content request")
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.contents.Create(c.Request.Context(), actor(c), kind, &req)
	if err != nil {
		writeError(c, err, "failed to create content")
		return
	}

	response.Created(c, item)
}

// UpdateContent applies a partial update.
func (h *Handler) UpdateContent(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}

	var req domain.UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.contents.Update(c.Request.Context(), actor(c), kind, c.Param("id"), &req)
	if err != nil {
		writeError(c, err, "failed to update content")
		return
	}

	response.Success(c, item)
}

func (h *Handler) DeleteContent(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}

	if err := h.contents.Delete(c.Request.Context(), actor(c), kind, c.Param("id")); err != nil {
		writeError(c, err, "failed to delete content")
		return
	}

	response.NoContent(c)
}

func (h *Handler) ListPages(c *gin.Context) {
	pages, err := h.pages.List(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to list pages")
		return
	}

	response.Success(c, pages)
}

func (h *Handler) UpsertPage(c *gin.Context) {
	var req domain.UpsertPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	page, err := h.pages.Upsert(c.Request.Context(), actor(c), c.Param("slug"), &req)
	if err != nil {
		writeError(c, err, "failed to save page")
		return
	}

	response.Success(c, page)
}

func (h *Handler) DeletePage(c *gin.Context) {
	if err := h.pages.Delete(c.Request.Context(), actor(c), c.Param("slug")); err != nil {
		writeError(c, err, "failed to delete page")
		return
	}

	response.NoContent(c)
}

// FlushCache drops every cached read on every instance.
func (h *Handler) FlushCache(c *gin.Context) {
	h.contents.FlushCache(c.Request.Context(), actor(c))
	response.NoContent(c)
}
