package service

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/foodies/foodies-api/internal/domain"
	"github.com/foodies/foodies-api/internal/util"
)

var validate = validator.New()

func validateEmail(email string) error {
	if err := validate.Var(strings.TrimSpace(email), "required,email"); err != nil {
		return fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	return nil
}

func validatePassword(password string) error {
	if err := util.ValidatePassword(password); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func validateUsername(username string) (string, error) {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		return "", fmt.Errorf("%w: username is required", ErrValidation)
	}
	return trimmed, nil
}

func validateRecipeInput(input domain.RecipeInput) (domain.RecipeCategory, domain.RecipeDifficulty, error) {
	required := map[string]string{
		"title":       input.Title,
		"ingredients": input.Ingredients,
		"cooking":     input.Cooking,
	}
	for _, field := range []string{"title", "ingredients", "cooking"} {
		if strings.TrimSpace(required[field]) == "" {
			return "", "", fmt.Errorf("%w: %s is required", ErrValidation, field)
		}
	}
	if input.Duration <= 0 {
		return "", "", fmt.Errorf("%w: duration must be a positive number of minutes", ErrValidation)
	}
	if input.Images.IsZero() {
		return "", "", fmt.Errorf("%w: regular and large images are required", ErrValidation)
	}
	category, ok := domain.ParseRecipeCategory(input.Category)
	if !ok {
		return "", "", fmt.Errorf("%w: unknown category %q", ErrValidation, input.Category)
	}
	difficulty, ok := domain.ParseRecipeDifficulty(input.Difficulty)
	if !ok {
		return "", "", fmt.Errorf("%w: unknown difficulty %q", ErrValidation, input.Difficulty)
	}
	return category, difficulty, nil
}

func validateRecipePatch(patch domain.RecipePatch) (domain.RecipePatch, error) {
	out := patch
	trim := func(field string, value *string) (*string, error) {
		if value == nil {
			return nil, nil
		}
		trimmed := strings.TrimSpace(*value)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: %s cannot be empty", ErrValidation, field)
		}
		return &trimmed, nil
	}
	var err error
	if out.Title, err = trim("title", patch.Title); err != nil {
		return domain.RecipePatch{}, err
	}
	if out.Ingredients, err = trim("ingredients", patch.Ingredients); err != nil {
		return domain.RecipePatch{}, err
	}
	if out.Cooking, err = trim("cooking", patch.Cooking); err != nil {
		return domain.RecipePatch{}, err
	}
	if patch.Duration != nil && *patch.Duration <= 0 {
		return domain.RecipePatch{}, fmt.Errorf("%w: duration must be a positive number of minutes", ErrValidation)
	}
	if patch.Images != nil && patch.Images.IsZero() {
		return domain.RecipePatch{}, fmt.Errorf("%w: regular and large images are required", ErrValidation)
	}
	return out, nil
}
