package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/foodies/foodies-api/internal/domain"
	"github.com/foodies/foodies-api/internal/repository/ports"
)

const recipeColumns = `id, title, ingredients, cooking, duration, category, difficulty, image_regular, image_large, published, user_id`

type recipeRow struct {
	ID           uuid.UUID `db:"id"`
	Title        string    `db:"title"`
	Ingredients  string    `db:"ingredients"`
	Cooking      string    `db:"cooking"`
	Duration     int       `db:"duration"`
	Category     string    `db:"category"`
	Difficulty   string    `db:"difficulty"`
	ImageRegular string    `db:"image_regular"`
	ImageLarge   string    `db:"image_large"`
	Published    time.Time `db:"published"`
	UserID       uuid.UUID `db:"user_id"`
}

func (r recipeRow) toDomain() domain.Recipe {
	return domain.Recipe{
		ID:          r.ID,
		Title:       r.Title,
		Ingredients: r.Ingredients,
		Cooking:     r.Cooking,
		Duration:    r.Duration,
		Category:    domain.RecipeCategory(r.Category),
		Difficulty:  domain.RecipeDifficulty(r.Difficulty),
		Images:      domain.RecipeImages{Regular: r.ImageRegular, Large: r.ImageLarge},
		Published:   r.Published,
		UserID:      r.UserID,
	}
}

type RecipeRepository struct {
	db *sqlx.DB
}

func NewRecipeRepo(db *sqlx.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

func (r *RecipeRepository) Create(ctx context.Context, recipe *domain.Recipe) (*domain.Recipe, error) {
	const query = `
        INSERT INTO recipes (id, title, ingredients, cooking, duration, category, difficulty, image_regular, image_large, published, user_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING ` + recipeColumns

	id := recipe.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	published := recipe.Published
	if published.IsZero() {
		published = time.Now()
	}

	var row recipeRow
	err := conn(ctx, r.db).GetContext(ctx, &row, query,
		id, recipe.Title, recipe.Ingredients, recipe.Cooking, recipe.Duration,
		string(recipe.Category), string(recipe.Difficulty),
		recipe.Images.Regular, recipe.Images.Large, published.UTC(), recipe.UserID,
	)
	if err != nil {
		return nil, translateError(err)
	}
	created := row.toDomain()
	return &created, nil
}

func (r *RecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Recipe, error) {
	const query = `SELECT ` + recipeColumns + ` FROM recipes WHERE id = $1`

	var row recipeRow
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, id); err != nil {
		return nil, translateError(err)
	}
	recipe := row.toDomain()
	return &recipe, nil
}

func (r *RecipeRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Recipe, error) {
	if len(ids) == 0 {
		return []domain.Recipe{}, nil
	}
	const query = `SELECT ` + recipeColumns + ` FROM recipes WHERE id = ANY($1::uuid[])`

	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.String())
	}
	return r.selectRows(ctx, query, pq.Array(raw))
}

func (r *RecipeRepository) List(ctx context.Context, offset, limit int) ([]domain.Recipe, error) {
	if limit <= 0 {
		const query = `SELECT ` + recipeColumns + ` FROM recipes ORDER BY published DESC, id DESC OFFSET $1`
		return r.selectRows(ctx, query, offset)
	}
	const query = `SELECT ` + recipeColumns + ` FROM recipes ORDER BY published DESC, id DESC OFFSET $1 LIMIT $2`
	return r.selectRows(ctx, query, offset, limit)
}

func (r *RecipeRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := conn(ctx, r.db).GetContext(ctx, &total, `SELECT COUNT(*) FROM recipes`); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *RecipeRepository) Update(ctx context.Context, id uuid.UUID, patch domain.RecipePatch) (*domain.Recipe, error) {
	sets := make([]string, 0, 6)
	params := []interface{}{id}
	add := func(column string, value interface{}) {
		params = append(params, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(params)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Ingredients != nil {
		add("ingredients", *patch.Ingredients)
	}
	if patch.Cooking != nil {
		add("cooking", *patch.Cooking)
	}
	if patch.Duration != nil {
		add("duration", *patch.Duration)
	}
	if patch.Images != nil {
		add("image_regular", patch.Images.Regular)
		add("image_large", patch.Images.Large)
	}
	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}

	query := `UPDATE recipes SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + recipeColumns
	var row recipeRow
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, params...); err != nil {
		return nil, translateError(err)
	}
	updated := row.toDomain()
	return &updated, nil
}

func (r *RecipeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	return requireAffected(res)
}

func (r *RecipeRepository) selectRows(ctx context.Context, query string, args ...interface{}) ([]domain.Recipe, error) {
	var rows []recipeRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	recipes := make([]domain.Recipe, 0, len(rows))
	for _, row := range rows {
		recipes = append(recipes, row.toDomain())
	}
	return recipes, nil
}

var _ ports.RecipeRepository = (*RecipeRepository)(nil)
