package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/business/events"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/domain"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	EventHandler struct {
		validate     *validator.Validate
		eventService EventService
		timeout      time.Duration
	}

	EventService interface {
		Ingest(ctx context.Context, input events.IngestInput) (*domain.Event, error)
		RecentEvents(ctx context.Context, userExternalID string, limit int) ([]domain.Event, error)
	}

	IngestEventRequest struct {
		UserID    string         `json:"user_id" validate:"required"`
		ProductID uint64         `json:"product_id" validate:"required"`
		EventType string         `json:"event_type" validate:"required,oneof=view add_to_cart purchase"`
		Timestamp *time.Time     `json:"timestamp"`
		SessionID string         `json:"session_id"`
		Metadata  map[string]any `json:"metadata"`
	}
)

func NewEventHandler(eventService EventService) *EventHandler {
	return &EventHandler{
		validate:     validator.New(),
		eventService: eventService,
		timeout:      10 * time.Second,
	}
}

func (h *EventHandler) IngestEvent(c echo.Context) error {
	var req IngestEventRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind event request", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	event, err := h.eventService.Ingest(ctx, events.IngestInput{
		UserExternalID: req.UserID,
		ProductID:      req.ProductID,
		EventType:      domain.EventType(req.EventType),
		Timestamp:      req.Timestamp,
		SessionID:      req.SessionID,
		Metadata:       req.Metadata,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnknownEventType) {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		if errors.Is(err, domain.ErrProductNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(event))
}

// GET /api/v1/events?user_id=u42&limit=50
func (h *EventHandler) RecentEvents(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "user_id is required"})
	}

	limit := 0
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid limit"})
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	recent, err := h.eventService.RecentEvents(ctx, userID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(recent))
}
