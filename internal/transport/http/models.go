package http

import (
	"time"

	"github.com/foodies/foodies-api/internal/domain"
)

// ErrorResponse represents a generic error payload.
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"invalid credentials"`
}

// SignupRequest carries the fields of a new local account.
type SignupRequest struct {
	Username string `json:"username" validate:"required" example:"alice"`
	Email    string `json:"email" validate:"required,email" example:"alice@example.com"`
	Password string `json:"password" validate:"required,min=6" example:"secret1"`
}

// LoginRequest carries email login fields.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"alice@example.com"`
	Password string `json:"password" validate:"required,min=6" example:"secret1"`
}

// GoogleLoginRequest carries the Google ID token. Both spellings used by
// clients are accepted.
type GoogleLoginRequest struct {
	IDToken  string `json:"id_token" example:"eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenID  string `json:"tokenId"`
	Username string `json:"username,omitempty"`
}

func (r GoogleLoginRequest) token() string {
	if r.IDToken != "" {
		return r.IDToken
	}
	return r.TokenID
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email" example:"alice@example.com"`
}

type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"required,min=6" example:"newpass1"`
	ConfirmPassword string `json:"confirmPassword" validate:"required" example:"newpass1"`
}

// UpdateProfileRequest changes the username and avatar. The avatar may be sent
// as "avatar" or, as older clients do, "images".
type UpdateProfileRequest struct {
	Username string `json:"username" validate:"required" example:"alice"`
	Avatar   string `json:"avatar,omitempty" example:"https://cdn.example.com/avatar.png"`
	Images   string `json:"images,omitempty"`
}

func (r UpdateProfileRequest) avatar() string {
	if r.Avatar != "" {
		return r.Avatar
	}
	return r.Images
}

// AuthTokenResponse is returned by endpoints that issue JWT tokens.
type AuthTokenResponse struct {
	Success   bool   `json:"success" example:"true"`
	UserID    string `json:"userId" example:"9fd13fd2-63c5-4f29-a210-4a1a8e285f74"`
	Email     string `json:"email" example:"alice@example.com"`
	Username  string `json:"username" example:"alice"`
	Token     string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt string `json:"expiresAt" example:"2024-01-02T09:30:00Z"`
}

func newAuthTokenResponse(user *domain.User, token string, expiresAt time.Time) AuthTokenResponse {
	return AuthTokenResponse{
		Success:   true,
		UserID:    user.ID.String(),
		Email:     user.Email,
		Username:  user.Username,
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	}
}

// RecipeImagesPayload is the image-variant pair of a recipe.
type RecipeImagesPayload struct {
	Regular string `json:"regularImage" example:"https://cdn.example.com/recipes/r.jpg"`
	Large   string `json:"largeImage" example:"https://cdn.example.com/recipes/l.jpg"`
}

// CreateRecipeRequest carries a new recipe. A single "image" URL fills both
// variants when "images" is absent.
type CreateRecipeRequest struct {
	Title       string               `json:"title" validate:"required" example:"Pancakes"`
	Ingredients string               `json:"ingredients" validate:"required" example:"flour, milk, eggs"`
	Cooking     string               `json:"cooking" validate:"required" example:"Mix and fry."`
	Duration    int                  `json:"duration" validate:"required,gt=0" example:"25"`
	Category    string               `json:"category" example:"dessert"`
	Difficulty  string               `json:"difficulty" validate:"required" example:"easy"`
	Images      *RecipeImagesPayload `json:"images,omitempty"`
	Image       string               `json:"image,omitempty"`
}

func (r CreateRecipeRequest) toInput() domain.RecipeInput {
	input := domain.RecipeInput{
		Title:       r.Title,
		Ingredients: r.Ingredients,
		Cooking:     r.Cooking,
		Duration:    r.Duration,
		Category:    r.Category,
		Difficulty:  r.Difficulty,
	}
	if r.Images != nil {
		input.Images = domain.RecipeImages{Regular: r.Images.Regular, Large: r.Images.Large}
	} else if r.Image != "" {
		input.Images = domain.RecipeImages{Regular: r.Image, Large: r.Image}
	}
	return input
}

// UpdateRecipeRequest lists the editable recipe fields; omitted fields keep
// their value.
type UpdateRecipeRequest struct {
	Title       *string              `json:"title,omitempty"`
	Ingredients *string              `json:"ingredients,omitempty"`
	Cooking     *string              `json:"cooking,omitempty"`
	Duration    *int                 `json:"duration,omitempty"`
	Images      *RecipeImagesPayload `json:"images,omitempty"`
}

func (r UpdateRecipeRequest) toPatch() domain.RecipePatch {
	patch := domain.RecipePatch{
		Title:       r.Title,
		Ingredients: r.Ingredients,
		Cooking:     r.Cooking,
		Duration:    r.Duration,
	}
	if r.Images != nil {
		patch.Images = &domain.RecipeImages{Regular: r.Images.Regular, Large: r.Images.Large}
	}
	return patch
}

// PaginationResponse describes one page of the recipe feed.
type PaginationResponse struct {
	Page       int   `json:"page" example:"1"`
	Limit      int   `json:"limit" example:"6"`
	Total      int64 `json:"total" example:"13"`
	TotalPages int   `json:"totalPages" example:"3"`
	HasNext    bool  `json:"hasNext" example:"true"`
	HasPrev    bool  `json:"hasPrev" example:"false"`
}

func newPaginationResponse(page *domain.RecipePage) PaginationResponse {
	return PaginationResponse{
		Page:       page.Page,
		Limit:      page.PageSize,
		Total:      page.TotalItems,
		TotalPages: page.TotalPages,
		HasNext:    page.HasNext,
		HasPrev:    page.HasPrev,
	}
}
