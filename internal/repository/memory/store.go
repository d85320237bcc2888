// Package memory keeps users and recipes in process memory. It backs local
// development (DATABASE_URL=memory://) and the service and handler tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/foodies/foodies-api/internal/domain"
	"github.com/foodies/foodies-api/internal/repository/ports"
)

type Store struct {
	mu      sync.RWMutex
	txMu    sync.Mutex
	users   map[uuid.UUID]domain.User
	recipes map[uuid.UUID]domain.Recipe
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:   make(map[uuid.UUID]domain.User),
		recipes: make(map[uuid.UUID]domain.Recipe),
		now:     time.Now,
	}
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{store: s}
}

func (s *Store) Recipes() *RecipeRepository {
	return &RecipeRepository{store: s}
}

func (s *Store) Transactor() *Transactor {
	return &Transactor{store: s}
}

func (s *Store) Close(context.Context) error {
	return nil
}

// Transactor snapshots both collections before fn runs and restores them if
// fn fails. Transactions are serialized against each other and against writes
// made outside any transaction, so a rollback never discards them.
type Transactor struct {
	store *Store
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if t.store.inTransaction(ctx) {
		return fn(ctx)
	}

	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()

	users, recipes := t.store.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		t.store.restore(users, recipes)
		return err
	}
	return nil
}

func (t *Transactor) Atomic() bool {
	return true
}

type txKey struct{}

func (s *Store) inTransaction(ctx context.Context) bool {
	tx, ok := ctx.Value(txKey{}).(*Transactor)
	return ok && tx.store == s
}

// writeGuard holds txMu for a write made outside a transaction. Writes inside
// one already run under it.
func (s *Store) writeGuard(ctx context.Context) func() {
	if s.inTransaction(ctx) {
		return func() {}
	}
	s.txMu.Lock()
	return s.txMu.Unlock
}

func (s *Store) snapshot() (map[uuid.UUID]domain.User, map[uuid.UUID]domain.Recipe) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make(map[uuid.UUID]domain.User, len(s.users))
	for id, u := range s.users {
		users[id] = cloneUser(u)
	}
	recipes := make(map[uuid.UUID]domain.Recipe, len(s.recipes))
	for id, r := range s.recipes {
		recipes[id] = r
	}
	return users, recipes
}

func (s *Store) restore(users map[uuid.UUID]domain.User, recipes map[uuid.UUID]domain.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = users
	s.recipes = recipes
}

func cloneUser(u domain.User) domain.User {
	u.Recipes = append([]uuid.UUID(nil), u.Recipes...)
	if u.ResetToken != nil {
		token := *u.ResetToken
		u.ResetToken = &token
	}
	if u.ResetTokenExpiry != nil {
		expiry := *u.ResetTokenExpiry
		u.ResetTokenExpiry = &expiry
	}
	return u
}

type UserRepository struct {
	store *Store
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	s := r.store
	defer s.writeGuard(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(user.Email))
	for _, existing := range s.users {
		if existing.Email == email {
			return nil, ports.ErrDuplicate
		}
	}

	stored := cloneUser(*user)
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	stored.Email = email
	if stored.Recipes == nil {
		stored.Recipes = []uuid.UUID{}
	}
	now := s.now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.users[stored.ID] = stored

	out := cloneUser(stored)
	return &out, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			out := cloneUser(u)
			return &out, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	out := cloneUser(u)
	return &out, nil
}

func (r *UserRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ResetToken == nil || u.ResetTokenExpiry == nil {
			continue
		}
		if *u.ResetToken == token && u.ResetTokenExpiry.After(now) {
			out := cloneUser(u)
			return &out, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, username, avatar string) (*domain.User, error) {
	var out domain.User
	err := r.mutate(ctx, id, func(u *domain.User) {
		u.Username = username
		u.Avatar = avatar
		out = cloneUser(*u)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.mutate(ctx, id, func(u *domain.User) {
		u.PasswordHash = passwordHash
		u.ResetToken = nil
		u.ResetTokenExpiry = nil
	})
}

func (r *UserRepository) ConsumeResetToken(ctx context.Context, token string, now time.Time, passwordHash string) (*domain.User, error) {
	s := r.store
	defer s.writeGuard(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, u := range s.users {
		if u.ResetToken == nil || u.ResetTokenExpiry == nil {
			continue
		}
		if *u.ResetToken != token || !u.ResetTokenExpiry.After(now) {
			continue
		}
		u = cloneUser(u)
		u.PasswordHash = passwordHash
		u.ResetToken = nil
		u.ResetTokenExpiry = nil
		u.UpdatedAt = s.now()
		s.users[id] = u
		out := cloneUser(u)
		return &out, nil
	}
	return nil, ports.ErrNotFound
}

func (r *UserRepository) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	return r.mutate(ctx, id, func(u *domain.User) {
		u.ResetToken = &token
		u.ResetTokenExpiry = &expiresAt
	})
}

func (r *UserRepository) AddRecipe(ctx context.Context, userID, recipeID uuid.UUID) error {
	return r.mutate(ctx, userID, func(u *domain.User) {
		if !u.OwnsRecipe(recipeID) {
			u.Recipes = append(u.Recipes, recipeID)
		}
	})
}

func (r *UserRepository) RemoveRecipe(ctx context.Context, userID, recipeID uuid.UUID) error {
	return r.mutate(ctx, userID, func(u *domain.User) {
		kept := u.Recipes[:0]
		for _, id := range u.Recipes {
			if id != recipeID {
				kept = append(kept, id)
			}
		}
		u.Recipes = kept
	})
}

func (r *UserRepository) mutate(ctx context.Context, id uuid.UUID, fn func(u *domain.User)) error {
	s := r.store
	defer s.writeGuard(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ports.ErrNotFound
	}
	u = cloneUser(u)
	fn(&u)
	u.UpdatedAt = s.now()
	s.users[id] = u
	return nil
}

type RecipeRepository struct {
	store *Store
}

func (r *RecipeRepository) Create(ctx context.Context, recipe *domain.Recipe) (*domain.Recipe, error) {
	s := r.store
	defer s.writeGuard(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *recipe
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	if _, exists := s.recipes[stored.ID]; exists {
		return nil, ports.ErrDuplicate
	}
	s.recipes[stored.ID] = stored
	out := stored
	return &out, nil
}

func (r *RecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Recipe, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	recipe, ok := s.recipes[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &recipe, nil
}

func (r *RecipeRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Recipe, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Recipe, 0, len(ids))
	for _, id := range ids {
		if recipe, ok := s.recipes[id]; ok {
			out = append(out, recipe)
		}
	}
	return out, nil
}

func (r *RecipeRepository) List(ctx context.Context, offset, limit int) ([]domain.Recipe, error) {
	s := r.store
	s.mu.RLock()
	all := make([]domain.Recipe, 0, len(s.recipes))
	for _, recipe := range s.recipes {
		all = append(all, recipe)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Published.Equal(all[j].Published) {
			return all[i].ID.String() > all[j].ID.String()
		}
		return all[i].Published.After(all[j].Published)
	})

	if offset >= len(all) {
		return []domain.Recipe{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return append([]domain.Recipe(nil), all[offset:end]...), nil
}

func (r *RecipeRepository) Count(ctx context.Context) (int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.recipes)), nil
}

func (r *RecipeRepository) Update(ctx context.Context, id uuid.UUID, patch domain.RecipePatch) (*domain.Recipe, error) {
	s := r.store
	defer s.writeGuard(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	recipe, ok := s.recipes[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	patch.Apply(&recipe)
	s.recipes[id] = recipe
	out := recipe
	return &out, nil
}

func (r *RecipeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	s := r.store
	defer s.writeGuard(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recipes[id]; !ok {
		return ports.ErrNotFound
	}
	delete(s.recipes, id)
	return nil
}

var (
	_ ports.UserRepository   = (*UserRepository)(nil)
	_ ports.RecipeRepository = (*RecipeRepository)(nil)
	_ ports.Transactor       = (*Transactor)(nil)
)
