package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/business/similarity"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/business/trending"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/domain"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

// pipeline runs rebuild whole tables and can take a while
const pipelineTimeout = 10 * time.Minute

type (
	AdminHandler struct {
		trendingPipeline   TrendingPipeline
		similarityPipeline SimilarityPipeline
		trendingRepo       TrendingFreshnessRepository
		similarityRepo     SimilarityFreshnessRepository
		cache              CacheAdmin
	}

	TrendingPipeline interface {
		Run(ctx context.Context, windows []domain.TimeWindow) (trending.RunStats, error)
	}

	SimilarityPipeline interface {
		Run(ctx context.Context) (similarity.RunStats, error)
	}

	TrendingFreshnessRepository interface {
		LastComputedAt(ctx context.Context, window domain.TimeWindow) (*domain.TrendingScore, error)
	}

	SimilarityFreshnessRepository interface {
		LastComputedAt(ctx context.Context) (*domain.ItemSimilarity, error)
	}

	CacheAdmin interface {
		FlushAll(ctx context.Context) error
	}

	RunTrendingRequest struct {
		Windows []string `json:"windows"`
	}
)

func NewAdminHandler(
	trendingPipeline TrendingPipeline,
	similarityPipeline SimilarityPipeline,
	trendingRepo TrendingFreshnessRepository,
	similarityRepo SimilarityFreshnessRepository,
	cache CacheAdmin,
) *AdminHandler {
	return &AdminHandler{
		trendingPipeline:   trendingPipeline,
		similarityPipeline: similarityPipeline,
		trendingRepo:       trendingRepo,
		similarityRepo:     similarityRepo,
		cache:              cache,
	}
}

// POST /api/v1/admin/pipelines/trending
func (h *AdminHandler) RunTrending(c echo.Context) error {
	var req RunTrendingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	windows := make([]domain.TimeWindow, 0, len(req.Windows))
	for _, w := range req.Windows {
		windows = append(windows, domain.TimeWindow(w))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), pipelineTimeout)
	defer cancel()

	stats, err := h.trendingPipeline.Run(ctx, windows)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTimeWindow) {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		logger.Error("trending pipeline failed", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]any{
		"rows_per_window": stats.RowsPerWindow,
		"skipped_events":  stats.SkippedEvents,
		"duration":        stats.Duration.String(),
	}))
}

// POST /api/v1/admin/pipelines/similarity
func (h *AdminHandler) RunSimilarity(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), pipelineTimeout)
	defer cancel()

	stats, err := h.similarityPipeline.Run(ctx)
	if err != nil {
		logger.Error("similarity pipeline failed", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]any{
		"users":          stats.Users,
		"products":       stats.Products,
		"edges":          stats.Edges,
		"batches":        stats.Batches,
		"skipped_events": stats.SkippedEvents,
		"duration":       stats.Duration.String(),
	}))
}

// GET /api/v1/admin/freshness
func (h *AdminHandler) Freshness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	freshness := map[string]any{}

	for _, window := range []domain.TimeWindow{domain.Window7d, domain.Window30d} {
		row, err := h.trendingRepo.LastComputedAt(ctx, window)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
		}
		key := "trending_" + string(window)
		if row == nil {
			freshness[key] = nil
		} else {
			freshness[key] = row.ComputedAt
		}
	}

	simRow, err := h.similarityRepo.LastComputedAt(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	if simRow == nil {
		freshness["similarity"] = nil
	} else {
		freshness["similarity"] = simRow.ComputedAt
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(freshness))
}

// POST /api/v1/admin/cache/flush
func (h *AdminHandler) FlushCache(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.cache.FlushAll(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("cache flushed"))
}
