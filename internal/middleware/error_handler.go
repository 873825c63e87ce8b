package middleware

import (
	"errors"
	"net/http"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/domain"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/logger"

	jsonres "github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/response"

	"github.com/labstack/echo/v4"
)

// ErrorHandler maps errors that escape the handlers to JSON responses.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal server error"

	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		code = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, domain.ErrUnknownEventType),
		errors.Is(err, domain.ErrInvalidTimeWindow):
		code = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, domain.ErrRecommendationUnavailable):
		code = http.StatusServiceUnavailable
		message = err.Error()
	}

	if code == http.StatusInternalServerError {
		logger.Error("unhandled error", "path", c.Path(), "error", err)
	}

	_ = c.JSON(code, jsonres.Error(http.StatusText(code), message, nil))
}
