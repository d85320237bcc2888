package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/foodies/foodies-api/internal/domain"
)

type RecipeRepository interface {
	Create(ctx context.Context, recipe *domain.Recipe) (*domain.Recipe, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Recipe, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Recipe, error)
	List(ctx context.Context, offset, limit int) ([]domain.Recipe, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.RecipePatch) (*domain.Recipe, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
