package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type RecipeCategory string

const (
	RecipeCategoryStarter            RecipeCategory = "starter"
	RecipeCategoryMain               RecipeCategory = "main"
	RecipeCategoryAppetizerAndBuffet RecipeCategory = "appetizer-and-buffet"
	RecipeCategoryDessert            RecipeCategory = "dessert"
)

type RecipeDifficulty string

const (
	RecipeDifficultyEasy   RecipeDifficulty = "easy"
	RecipeDifficultyMedium RecipeDifficulty = "medium"
	RecipeDifficultyHard   RecipeDifficulty = "hard"
)

// ParseRecipeCategory maps user input to a category. Empty input yields the
// default category.
func ParseRecipeCategory(value string) (RecipeCategory, bool) {
	switch RecipeCategory(strings.ToLower(strings.TrimSpace(value))) {
	case "":
		return RecipeCategoryMain, true
	case RecipeCategoryStarter:
		return RecipeCategoryStarter, true
	case RecipeCategoryMain:
		return RecipeCategoryMain, true
	case RecipeCategoryAppetizerAndBuffet:
		return RecipeCategoryAppetizerAndBuffet, true
	case RecipeCategoryDessert:
		return RecipeCategoryDessert, true
	default:
		return "", false
	}
}

// ParseRecipeDifficulty maps user input to a difficulty. Empty input yields
// the default difficulty.
func ParseRecipeDifficulty(value string) (RecipeDifficulty, bool) {
	switch RecipeDifficulty(strings.ToLower(strings.TrimSpace(value))) {
	case "":
		return RecipeDifficultyEasy, true
	case RecipeDifficultyEasy:
		return RecipeDifficultyEasy, true
	case RecipeDifficultyMedium:
		return RecipeDifficultyMedium, true
	case RecipeDifficultyHard:
		return RecipeDifficultyHard, true
	default:
		return "", false
	}
}

type RecipeImages struct {
	Regular string `json:"regularImage"`
	Large   string `json:"largeImage"`
}

func (i RecipeImages) IsZero() bool {
	return strings.TrimSpace(i.Regular) == "" || strings.TrimSpace(i.Large) == ""
}

type Recipe struct {
	ID          uuid.UUID        `json:"id"`
	Title       string           `json:"title"`
	Ingredients string           `json:"ingredients"`
	Cooking     string           `json:"cooking"`
	Duration    int              `json:"duration"`
	Category    RecipeCategory   `json:"category"`
	Difficulty  RecipeDifficulty `json:"difficulty"`
	Images      RecipeImages     `json:"images"`
	Published   time.Time        `json:"published"`
	UserID      uuid.UUID        `json:"user"`
}

// RecipeInput holds the caller-supplied fields of a new recipe.
type RecipeInput struct {
	Title       string
	Ingredients string
	Cooking     string
	Duration    int
	Category    string
	Difficulty  string
	Images      RecipeImages
}

// RecipePatch lists the mutable recipe fields. Nil pointers are left as is.
type RecipePatch struct {
	Title       *string
	Ingredients *string
	Cooking     *string
	Duration    *int
	Images      *RecipeImages
}

func (p RecipePatch) Apply(r *Recipe) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Ingredients != nil {
		r.Ingredients = *p.Ingredients
	}
	if p.Cooking != nil {
		r.Cooking = *p.Cooking
	}
	if p.Duration != nil {
		r.Duration = *p.Duration
	}
	if p.Images != nil {
		r.Images = *p.Images
	}
}

type RecipePage struct {
	Items      []Recipe
	Page       int
	PageSize   int
	TotalItems int64
	TotalPages int
	HasNext    bool
	HasPrev    bool
}
