package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/foodies/foodies-api/internal/service"
	"github.com/foodies/foodies-api/internal/util"
)

type AuthHandler struct {
	auth   *service.AuthService
	logger *zap.Logger
}

func RegisterAuth(e *echo.Echo, auth *service.AuthService, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := &AuthHandler{auth: auth, logger: logger}

	group := e.Group("/api/auth")
	group.GET("", handler.listUsers)
	group.POST("/signup", handler.signup)
	group.POST("/login", handler.login)
	group.POST("/googlelogin", handler.googleLogin)
	group.POST("/forgotpassword", handler.forgotPassword)
	group.POST("/resetpassword/:token", handler.resetPassword)
	group.GET("/profile/:uid", handler.getProfile)
	group.PATCH("/profile/update/:uid", handler.updateProfile, RequireAuth(auth))
}

func (h *AuthHandler) listUsers(c echo.Context) error {
	users, err := h.auth.ListUsers(c.Request().Context())
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Data("users", users))
}

func (h *AuthHandler) signup(c echo.Context) error {
	var req SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	result, err := h.auth.Signup(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, newAuthTokenResponse(result.User, result.Token, result.ExpiresAt))
}

func (h *AuthHandler) login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	result, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, newAuthTokenResponse(result.User, result.Token, result.ExpiresAt))
}

func (h *AuthHandler) googleLogin(c echo.Context) error {
	var req GoogleLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	token := strings.TrimSpace(req.token())
	if token == "" {
		return c.JSON(http.StatusUnprocessableEntity, util.Error("id_token is required"))
	}
	result, err := h.auth.LoginWithFederatedIdentity(c.Request().Context(), token)
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, newAuthTokenResponse(result.User, result.Token, result.ExpiresAt))
}

func (h *AuthHandler) forgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.auth.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return writeServiceError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, util.Success(nil))
}

func (h *AuthHandler) resetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	result, err := h.auth.ResetPassword(c.Request().Context(), c.Param("token"), req.Password, req.ConfirmPassword)
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, newAuthTokenResponse(result.User, result.Token, result.ExpiresAt))
}

func (h *AuthHandler) getProfile(c echo.Context) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("uid")))
	if err != nil {
		return writeServiceError(c, h.logger, service.ErrUserNotFound)
	}
	user, err := h.auth.GetProfile(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Data("user", user))
}

func (h *AuthHandler) updateProfile(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	id, err := uuid.Parse(strings.TrimSpace(c.Param("uid")))
	if err != nil {
		return writeServiceError(c, h.logger, service.ErrUserNotFound)
	}
	var req UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	updated, err := h.auth.UpdateProfile(c.Request().Context(), id, user.ID, req.Username, req.avatar())
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success(util.Envelope{
		"user":    updated,
		"message": "your profile has been updated",
	}))
}
