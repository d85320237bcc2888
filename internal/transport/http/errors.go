package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/foodies/foodies-api/internal/service"
	"github.com/foodies/foodies-api/internal/util"
)

// writeServiceError maps service sentinels onto status codes. Internal errors
// are logged and replaced by a generic message.
func writeServiceError(c echo.Context, logger *zap.Logger, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusUnprocessableEntity, util.Error(publicMessage(err)))
	case errors.Is(err, service.ErrEmailAlreadyUsed):
		return c.JSON(http.StatusUnprocessableEntity, util.Error("an account already exists for this email, log in instead"))
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, util.Error("no account found for this id"))
	case errors.Is(err, service.ErrRecipeNotFound):
		return c.JSON(http.StatusNotFound, util.Error("no recipe found for this id"))
	case errors.Is(err, service.ErrAccountNotFound):
		return c.JSON(http.StatusForbidden, util.Error("no account exists for this email, sign up instead"))
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusForbidden, util.Error("invalid credentials"))
	case errors.Is(err, service.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, util.Error("authentication failed"))
	case errors.Is(err, service.ErrEmailUnverified):
		return c.JSON(http.StatusUnauthorized, util.Error("email address is not verified"))
	case errors.Is(err, service.ErrFederatedTokenInvalid):
		return c.JSON(http.StatusUnauthorized, util.Error("identity token rejected"))
	case errors.Is(err, service.ErrResetTokenInvalid):
		return c.JSON(http.StatusUnprocessableEntity, util.Error("no account found or the reset link has expired"))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, util.Error("you are not allowed to perform this action"))
	case errors.Is(err, service.ErrStorageDisabled):
		return c.JSON(http.StatusServiceUnavailable, util.Error("image uploads are not configured"))
	default:
		logger.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			zap.Error(err),
		)
		return c.JSON(http.StatusInternalServerError, util.Error("something went wrong, please try again"))
	}
}

// publicMessage strips the sentinel prefix from a wrapped validation error.
func publicMessage(err error) string {
	msg := err.Error()
	prefix := service.ErrValidation.Error() + ": "
	if strings.HasPrefix(msg, prefix) {
		return strings.TrimPrefix(msg, prefix)
	}
	return msg
}
