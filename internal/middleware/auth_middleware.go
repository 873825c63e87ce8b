package middleware

import (
	"net/http"
	"strings"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/utils"

	jsonres "github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/response"

	"github.com/labstack/echo/v4"
)

// AdminAuth guards the admin surface with a JWT bearer token
func AdminAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "Missing authorization header", nil,
				))
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "Invalid authorization format", nil,
				))
			}

			claims, err := utils.ParseAdminToken(tokenParts[1], secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "Invalid token", nil,
				))
			}

			if strings.ToUpper(claims.Role) != "ADMIN" {
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "Admin access required", nil,
				))
			}

			c.Set("admin_subject", claims.Subject)

			return next(c)
		}
	}
}
