package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foodies/foodies-api/internal/domain"
	"github.com/foodies/foodies-api/internal/repository/ports"
)

const (
	DefaultRecipePageSize = 6
	maxRecipePageSize     = 100
)

type RecipeServiceConfig struct {
	PageSize int
}

// RecipeService owns every write that touches both a recipe and its owner's
// recipe list, so the two never disagree.
type RecipeService struct {
	recipes ports.RecipeRepository
	users   ports.UserRepository
	tx      ports.Transactor
	logger  *zap.Logger

	pageSize int
	now      func() time.Time
}

func NewRecipeService(
	recipes ports.RecipeRepository,
	users ports.UserRepository,
	tx ports.Transactor,
	logger *zap.Logger,
	cfg RecipeServiceConfig,
) *RecipeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultRecipePageSize
	}
	return &RecipeService{
		recipes:  recipes,
		users:    users,
		tx:       tx,
		logger:   logger,
		pageSize: pageSize,
		now:      time.Now,
	}
}

func (s *RecipeService) CreateRecipe(ctx context.Context, ownerID uuid.UUID, input domain.RecipeInput) (*domain.Recipe, error) {
	category, difficulty, err := validateRecipeInput(input)
	if err != nil {
		return nil, err
	}

	owner, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: lookup owner: %v", ErrPersistence, err)
	}

	recipe := &domain.Recipe{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(input.Title),
		Ingredients: strings.TrimSpace(input.Ingredients),
		Cooking:     strings.TrimSpace(input.Cooking),
		Duration:    input.Duration,
		Category:    category,
		Difficulty:  difficulty,
		Images: domain.RecipeImages{
			Regular: strings.TrimSpace(input.Images.Regular),
			Large:   strings.TrimSpace(input.Images.Large),
		},
		Published: s.now().UTC(),
		UserID:    owner.ID,
	}

	var created *domain.Recipe
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		stored, err := s.recipes.Create(ctx, recipe)
		if err != nil {
			return fmt.Errorf("create recipe: %w", err)
		}
		if err := s.users.AddRecipe(ctx, owner.ID, stored.ID); err != nil {
			if !s.tx.Atomic() {
				s.compensateCreate(ctx, stored.ID)
			}
			return fmt.Errorf("link recipe to owner: %w", err)
		}
		created = stored
		return nil
	})
	if err != nil {
		s.logger.Error("create recipe failed",
			zap.String("user_id", owner.ID.String()),
			zap.String("recipe_id", recipe.ID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrTransaction, err)
	}

	s.logger.Info("recipe created", zap.String("recipe_id", created.ID.String()), zap.String("user_id", owner.ID.String()))
	return created, nil
}

func (s *RecipeService) DeleteRecipe(ctx context.Context, recipeID, requesterID uuid.UUID) error {
	recipe, err := s.GetRecipe(ctx, recipeID)
	if err != nil {
		return err
	}
	owner, err := s.users.FindByID(ctx, recipe.UserID)
	if err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("%w: lookup owner: %v", ErrPersistence, err)
	}
	if owner.ID != requesterID {
		return ErrForbidden
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.recipes.Delete(ctx, recipe.ID); err != nil {
			return fmt.Errorf("delete recipe: %w", err)
		}
		if err := s.users.RemoveRecipe(ctx, owner.ID, recipe.ID); err != nil {
			if !s.tx.Atomic() {
				s.compensateDelete(ctx, recipe)
			}
			return fmt.Errorf("unlink recipe from owner: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("delete recipe failed",
			zap.String("user_id", owner.ID.String()),
			zap.String("recipe_id", recipe.ID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrTransaction, err)
	}

	s.logger.Info("recipe deleted", zap.String("recipe_id", recipe.ID.String()), zap.String("user_id", owner.ID.String()))
	return nil
}

// ListRecipes returns one page of the feed, newest first. Pages start at 1;
// smaller values are treated as 1 and pages past the end are empty.
func (s *RecipeService) ListRecipes(ctx context.Context, page, limit int) (*domain.RecipePage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = s.pageSize
	}
	if limit > maxRecipePageSize {
		limit = maxRecipePageSize
	}

	total, err := s.recipes.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: count recipes: %v", ErrPersistence, err)
	}
	items, err := s.recipes.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list recipes: %v", ErrPersistence, err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &domain.RecipePage{
		Items:      items,
		Page:       page,
		PageSize:   limit,
		TotalItems: total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}, nil
}

func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*domain.Recipe, error) {
	recipe, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("%w: lookup recipe: %v", ErrPersistence, err)
	}
	return recipe, nil
}

// ListByOwner resolves the owner's recipe list, newest first.
func (s *RecipeService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Recipe, error) {
	owner, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: lookup owner: %v", ErrPersistence, err)
	}
	recipes, err := s.recipes.FindByIDs(ctx, owner.Recipes)
	if err != nil {
		return nil, fmt.Errorf("%w: load recipes: %v", ErrPersistence, err)
	}
	sort.SliceStable(recipes, func(i, j int) bool {
		if recipes[i].Published.Equal(recipes[j].Published) {
			return recipes[i].ID.String() > recipes[j].ID.String()
		}
		return recipes[i].Published.After(recipes[j].Published)
	})
	return recipes, nil
}

func (s *RecipeService) UpdateRecipe(ctx context.Context, recipeID, requesterID uuid.UUID, patch domain.RecipePatch) (*domain.Recipe, error) {
	patch, err := validateRecipePatch(patch)
	if err != nil {
		return nil, err
	}
	recipe, err := s.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe.UserID != requesterID {
		return nil, ErrForbidden
	}

	updated, err := s.recipes.Update(ctx, recipe.ID, patch)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("%w: update recipe: %v", ErrPersistence, err)
	}
	return updated, nil
}

func (s *RecipeService) compensateCreate(ctx context.Context, recipeID uuid.UUID) {
	if err := s.recipes.Delete(ctx, recipeID); err != nil && !errors.Is(err, ports.ErrNotFound) {
		s.logger.Error("compensation: remove orphan recipe", zap.String("recipe_id", recipeID.String()), zap.Error(err))
	}
}

func (s *RecipeService) compensateDelete(ctx context.Context, recipe *domain.Recipe) {
	if _, err := s.recipes.Create(ctx, recipe); err != nil {
		s.logger.Error("compensation: restore recipe", zap.String("recipe_id", recipe.ID.String()), zap.Error(err))
	}
}
