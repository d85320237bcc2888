package mongo

import (
	"time"

	"github.com/google/uuid"

	"github.com/foodies/foodies-api/internal/domain"
)

// Ids are stored as canonical uuid strings so documents stay readable from the
// shell and comparable with the ids handed out by the API.

type userDocument struct {
	ID               string     `bson:"_id"`
	Username         string     `bson:"username"`
	Email            string     `bson:"email"`
	Password         string     `bson:"password"`
	Avatar           string     `bson:"avatar"`
	ResetToken       *string    `bson:"reset_token,omitempty"`
	ResetTokenExpiry *time.Time `bson:"reset_token_expiry,omitempty"`
	Recipes          []string   `bson:"recipes"`
	CreatedAt        time.Time  `bson:"created_at"`
	UpdatedAt        time.Time  `bson:"updated_at"`
}

type imagesDocument struct {
	Regular string `bson:"regular_image"`
	Large   string `bson:"large_image"`
}

type recipeDocument struct {
	ID          string         `bson:"_id"`
	Title       string         `bson:"title"`
	Ingredients string         `bson:"ingredients"`
	Cooking     string         `bson:"cooking"`
	Duration    int            `bson:"duration"`
	Category    string         `bson:"category"`
	Difficulty  string         `bson:"difficulty"`
	Images      imagesDocument `bson:"images"`
	Published   time.Time      `bson:"published"`
	User        string         `bson:"user"`
}

func newUserDocument(u *domain.User) userDocument {
	doc := userDocument{
		ID:               u.ID.String(),
		Username:         u.Username,
		Email:            u.Email,
		Password:         u.PasswordHash,
		Avatar:           u.Avatar,
		ResetToken:       u.ResetToken,
		ResetTokenExpiry: u.ResetTokenExpiry,
		Recipes:          make([]string, 0, len(u.Recipes)),
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
	for _, id := range u.Recipes {
		doc.Recipes = append(doc.Recipes, id.String())
	}
	return doc
}

func (d userDocument) toDomain() (*domain.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	recipes := make([]uuid.UUID, 0, len(d.Recipes))
	for _, raw := range d.Recipes {
		rid, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, rid)
	}
	return &domain.User{
		ID:               id,
		Username:         d.Username,
		Email:            d.Email,
		PasswordHash:     d.Password,
		Avatar:           d.Avatar,
		ResetToken:       d.ResetToken,
		ResetTokenExpiry: d.ResetTokenExpiry,
		Recipes:          recipes,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}, nil
}

func newRecipeDocument(r *domain.Recipe) recipeDocument {
	return recipeDocument{
		ID:          r.ID.String(),
		Title:       r.Title,
		Ingredients: r.Ingredients,
		Cooking:     r.Cooking,
		Duration:    r.Duration,
		Category:    string(r.Category),
		Difficulty:  string(r.Difficulty),
		Images:      imagesDocument{Regular: r.Images.Regular, Large: r.Images.Large},
		Published:   r.Published.UTC(),
		User:        r.UserID.String(),
	}
}

func (d recipeDocument) toDomain() (*domain.Recipe, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	owner, err := uuid.Parse(d.User)
	if err != nil {
		return nil, err
	}
	return &domain.Recipe{
		ID:          id,
		Title:       d.Title,
		Ingredients: d.Ingredients,
		Cooking:     d.Cooking,
		Duration:    d.Duration,
		Category:    domain.RecipeCategory(d.Category),
		Difficulty:  domain.RecipeDifficulty(d.Difficulty),
		Images:      domain.RecipeImages{Regular: d.Images.Regular, Large: d.Images.Large},
		Published:   d.Published,
		UserID:      owner,
	}, nil
}
