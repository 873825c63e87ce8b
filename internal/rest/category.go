package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/domain"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type CategoryService interface {
	GetAllCategories(ctx context.Context) ([]domain.Category, error)
	GetCategoryByID(ctx context.Context, id uint64) (domain.Category, error)
	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
}

type CategoryHandler struct {
	categoryService CategoryService
	validator       *validator.Validate
	timeout         time.Duration
}

func NewCategoryHandler(categoryService CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		validator:       validator.New(),
		timeout:         10 * time.Second,
	}
}

type CreateCategoryRequest struct {
	Name     string  `json:"name" validate:"required"`
	ParentID *uint64 `json:"parent_id"`
}

func (h *CategoryHandler) GetAllCategories(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	categories, err := h.categoryService.GetAllCategories(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(categories))
}

func (h *CategoryHandler) GetCategoryByID(c echo.Context) error {
	categoryID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	category, err := h.categoryService.GetCategoryByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(category))
}

func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req CreateCategoryRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	category := &domain.Category{
		Name:     req.Name,
		ParentID: req.ParentID,
	}

	newCategory, err := h.categoryService.CreateCategory(ctx, category)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(newCategory))
}
