package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/foodies/foodies-api/internal/media"
	"github.com/foodies/foodies-api/internal/service"
	"github.com/foodies/foodies-api/internal/util"
)

type RecipeHandler struct {
	recipes *service.RecipeService
	images  *service.ImageService
	logger  *zap.Logger
}

func RegisterRecipes(e *echo.Echo, auth *service.AuthService, recipes *service.RecipeService, images *service.ImageService, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := &RecipeHandler{recipes: recipes, images: images, logger: logger}

	requireAuth := RequireAuth(auth)
	group := e.Group("/api/recipes")
	group.GET("", handler.listRecipes)
	group.GET("/:rid", handler.getRecipe)
	group.GET("/user/:uid", handler.listByOwner)
	group.POST("", handler.createRecipe, requireAuth)
	group.POST("/images", handler.uploadImage, requireAuth)
	group.PATCH("/:rid", handler.updateRecipe, requireAuth)
	group.DELETE("/:rid", handler.deleteRecipe, requireAuth)
}

func (h *RecipeHandler) listRecipes(c echo.Context) error {
	page, limit := parsePagination(c)
	result, err := h.recipes.ListRecipes(c.Request().Context(), page, limit)
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success(util.Envelope{
		"recipes":    result.Items,
		"pagination": newPaginationResponse(result),
	}))
}

func (h *RecipeHandler) getRecipe(c echo.Context) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("rid")))
	if err != nil {
		return writeServiceError(c, h.logger, service.ErrRecipeNotFound)
	}
	recipe, err := h.recipes.GetRecipe(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Data("recipe", recipe))
}

// listByOwner answers 404 both for an unknown user and for a user without
// recipes.
func (h *RecipeHandler) listByOwner(c echo.Context) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("uid")))
	if err != nil {
		return c.JSON(http.StatusNotFound, util.Error("no recipes found for this user"))
	}
	recipes, err := h.recipes.ListByOwner(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}
	if len(recipes) == 0 {
		return c.JSON(http.StatusNotFound, util.Error("no recipes found for this user"))
	}
	return c.JSON(http.StatusOK, util.Data("recipes", recipes))
}

func (h *RecipeHandler) createRecipe(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	var req CreateRecipeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	recipe, err := h.recipes.CreateRecipe(c.Request().Context(), user.ID, req.toInput())
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, util.Data("recipe", recipe))
}

func (h *RecipeHandler) updateRecipe(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	id, err := uuid.Parse(strings.TrimSpace(c.Param("rid")))
	if err != nil {
		return writeServiceError(c, h.logger, service.ErrRecipeNotFound)
	}
	var req UpdateRecipeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	recipe, err := h.recipes.UpdateRecipe(c.Request().Context(), id, user.ID, req.toPatch())
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Data("recipe", recipe))
}

func (h *RecipeHandler) deleteRecipe(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	id, err := uuid.Parse(strings.TrimSpace(c.Param("rid")))
	if err != nil {
		return writeServiceError(c, h.logger, service.ErrRecipeNotFound)
	}
	if err := h.recipes.DeleteRecipe(c.Request().Context(), id, user.ID); err != nil {
		return writeServiceError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success(util.Envelope{
		"message": "recipe has been successfully deleted",
	}))
}

func (h *RecipeHandler) uploadImage(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	if !h.images.Enabled() {
		return writeServiceError(c, h.logger, service.ErrStorageDisabled)
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("image upload required"))
	}
	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("unable to read upload"))
	}
	defer src.Close()

	images, err := h.images.UploadRecipeImage(c.Request().Context(), user.ID, media.Upload{
		Reader:      src,
		Size:        fileHeader.Size,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(echo.HeaderContentType),
	})
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, util.Data("images", RecipeImagesPayload{
		Regular: images.Regular,
		Large:   images.Large,
	}))
}

// parsePagination reads ?page= and ?limit=. A malformed page means the first
// one; a zero limit lets the service apply its page size.
func parsePagination(c echo.Context) (int, int) {
	page, limit := 1, 0
	if v := strings.TrimSpace(c.QueryParam("page")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			page = parsed
		}
	}
	if v := strings.TrimSpace(c.QueryParam("limit")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return page, limit
}
