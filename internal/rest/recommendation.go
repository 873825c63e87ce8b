package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/domain"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	RecommendationHandler struct {
		validate              *validator.Validate
		recommendationService RecommendationService
		timeout               time.Duration
	}

	RecommendationService interface {
		Recommend(ctx context.Context, userExternalID string, k int, categoryID uint64) (domain.RecommendationResult, error)
		SimilarProducts(ctx context.Context, productID uint64, k int) ([]domain.ScoredProduct, error)
		Trending(ctx context.Context, window domain.TimeWindow, categoryID uint64, k int) ([]domain.ScoredProduct, error)
	}

	RecommendQuery struct {
		UserID     string `query:"user_id" validate:"required"`
		K          int    `query:"k"`
		CategoryID uint64 `query:"category_id"`
	}

	TrendingQuery struct {
		Window     string `query:"window" validate:"omitempty,oneof=7d 30d"`
		K          int    `query:"k"`
		CategoryID uint64 `query:"category_id"`
	}
)

func NewRecommendationHandler(recommendationService RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		validate:              validator.New(),
		recommendationService: recommendationService,
		timeout:               10 * time.Second,
	}
}

// GET /api/v1/recommendations?user_id=u42&k=10&category_id=3
func (h *RecommendationHandler) Recommend(c echo.Context) error {
	var q RecommendQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if q.K <= 0 {
		q.K = 10
	}
	if q.K > 100 {
		q.K = 100
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	start := time.Now()
	result, err := h.recommendationService.Recommend(ctx, q.UserID, q.K, q.CategoryID)
	if err != nil {
		if errors.Is(err, domain.ErrRecommendationUnavailable) {
			return c.JSON(http.StatusServiceUnavailable, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	metrics.RecommendLatency.Observe(time.Since(start).Seconds())

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}

// GET /api/v1/products/:id/similar?k=10
func (h *RecommendationHandler) SimilarProducts(c echo.Context) error {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid product id"})
	}

	k := 10
	if kStr := c.QueryParam("k"); kStr != "" {
		k, err = strconv.Atoi(kStr)
		if err != nil || k <= 0 {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid k"})
		}
		if k > 100 {
			k = 100
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	similar, err := h.recommendationService.SimilarProducts(ctx, productID, k)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]any{
		"product_id": productID,
		"similar":    similar,
	}))
}

// GET /api/v1/trending?window=7d&k=10&category_id=3
func (h *RecommendationHandler) Trending(c echo.Context) error {
	var q TrendingQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if q.Window == "" {
		q.Window = string(domain.Window7d)
	}
	if q.K <= 0 {
		q.K = 10
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	trending, err := h.recommendationService.Trending(ctx, domain.TimeWindow(q.Window), q.CategoryID, q.K)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTimeWindow) {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]any{
		"window":   q.Window,
		"trending": trending,
	}))
}
