package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/foodies/foodies-api/internal/domain"
	"github.com/foodies/foodies-api/internal/repository/ports"
)

const userColumns = `id, username, email, password_hash, avatar, reset_token, reset_token_expiry,
        array_to_string(recipe_ids, ',') AS recipe_ids, created_at, updated_at`

type userRow struct {
	ID               uuid.UUID      `db:"id"`
	Username         string         `db:"username"`
	Email            string         `db:"email"`
	PasswordHash     string         `db:"password_hash"`
	Avatar           string         `db:"avatar"`
	ResetToken       sql.NullString `db:"reset_token"`
	ResetTokenExpiry sql.NullTime   `db:"reset_token_expiry"`
	RecipeIDs        string         `db:"recipe_ids"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func (r userRow) toDomain() (*domain.User, error) {
	user := &domain.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Avatar:       r.Avatar,
		Recipes:      []uuid.UUID{},
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.ResetToken.Valid {
		token := r.ResetToken.String
		user.ResetToken = &token
	}
	if r.ResetTokenExpiry.Valid {
		expiry := r.ResetTokenExpiry.Time
		user.ResetTokenExpiry = &expiry
	}
	for _, raw := range strings.Split(r.RecipeIDs, ",") {
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		user.Recipes = append(user.Recipes, id)
	}
	return user, nil
}

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	const query = `
        INSERT INTO users (id, username, email, password_hash, avatar)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + userColumns

	id := user.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	email := strings.ToLower(strings.TrimSpace(user.Email))
	return r.getOne(ctx, query, id, user.Username, email, user.PasswordHash, user.Avatar)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getOne(ctx, query, strings.ToLower(strings.TrimSpace(email)))
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *UserRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM users
        WHERE reset_token = $1 AND reset_token_expiry > $2`
	return r.getOne(ctx, query, token, now.UTC())
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id`

	var rows []userRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		user, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, username, avatar string) (*domain.User, error) {
	const query = `
        UPDATE users
        SET username = $2,
            avatar = $3,
            updated_at = NOW()
        WHERE id = $1
        RETURNING ` + userColumns
	return r.getOne(ctx, query, id, username, avatar)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	const query = `
        UPDATE users
        SET password_hash = $2,
            reset_token = NULL,
            reset_token_expiry = NULL,
            updated_at = NOW()
        WHERE id = $1`
	return r.exec(ctx, query, id, passwordHash)
}

func (r *UserRepository) ConsumeResetToken(ctx context.Context, token string, now time.Time, passwordHash string) (*domain.User, error) {
	const query = `
        UPDATE users
        SET password_hash = $3,
            reset_token = NULL,
            reset_token_expiry = NULL,
            updated_at = NOW()
        WHERE reset_token = $1 AND reset_token_expiry > $2
        RETURNING ` + userColumns
	return r.getOne(ctx, query, token, now.UTC(), passwordHash)
}

func (r *UserRepository) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	const query = `
        UPDATE users
        SET reset_token = $2,
            reset_token_expiry = $3,
            updated_at = NOW()
        WHERE id = $1`
	return r.exec(ctx, query, id, token, expiresAt.UTC())
}

func (r *UserRepository) AddRecipe(ctx context.Context, userID, recipeID uuid.UUID) error {
	const query = `
        UPDATE users
        SET recipe_ids = CASE WHEN $2::uuid = ANY(recipe_ids) THEN recipe_ids ELSE array_append(recipe_ids, $2::uuid) END,
            updated_at = NOW()
        WHERE id = $1`
	return r.exec(ctx, query, userID, recipeID)
}

func (r *UserRepository) RemoveRecipe(ctx context.Context, userID, recipeID uuid.UUID) error {
	const query = `
        UPDATE users
        SET recipe_ids = array_remove(recipe_ids, $2::uuid),
            updated_at = NOW()
        WHERE id = $1`
	return r.exec(ctx, query, userID, recipeID)
}

func (r *UserRepository) getOne(ctx context.Context, query string, args ...interface{}) (*domain.User, error) {
	var row userRow
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		return nil, translateError(err)
	}
	return row.toDomain()
}

func (r *UserRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return translateError(err)
	}
	return requireAffected(res)
}

var _ ports.UserRepository = (*UserRepository)(nil)
