package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/foodies/foodies-api/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, username, avatar string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	// ConsumeResetToken stores passwordHash and clears the reset token in one
	// step, only while token still matches and expires after now. A token that
	// was already consumed yields ErrNotFound.
	ConsumeResetToken(ctx context.Context, token string, now time.Time, passwordHash string) (*domain.User, error)
	SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error
	AddRecipe(ctx context.Context, userID, recipeID uuid.UUID) error
	RemoveRecipe(ctx context.Context, userID, recipeID uuid.UUID) error
}
