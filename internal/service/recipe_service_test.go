package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/foodies/foodies-api/internal/domain"
	"github.com/foodies/foodies-api/internal/repository/memory"
	"github.com/foodies/foodies-api/internal/repository/ports"
)

func newTestRecipeService(store *memory.Store) *RecipeService {
	return NewRecipeService(store.Recipes(), store.Users(), store.Transactor(), nil, RecipeServiceConfig{})
}

// steppingClock returns a clock that advances one minute per call.
func steppingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
}

func TestCreateRecipeLinksOwner(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRecipeService(store)
	owner := seedUser(t, store, "alice", "a@x.com")
	ctx := context.Background()

	recipe, err := svc.CreateRecipe(ctx, owner.ID, validRecipeInput("Pancakes"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if recipe.UserID != owner.ID || recipe.Category != domain.RecipeCategoryDessert {
		t.Fatalf("unexpected recipe %+v", recipe)
	}

	stored, _ := store.Users().FindByID(ctx, owner.ID)
	if !stored.OwnsRecipe(recipe.ID) {
		t.Fatalf("owner recipe list missing %s", recipe.ID)
	}

	owned, err := svc.ListByOwner(ctx, owner.ID)
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(owned) != 1 || owned[0].ID != recipe.ID {
		t.Fatalf("unexpected owned recipes %+v", owned)
	}
}

func TestCreateRecipeDefaultsEnums(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRecipeService(store)
	owner := seedUser(t, store, "alice", "a@x.com")

	input := validRecipeInput("Soup")
	input.Category = ""
	input.Difficulty = ""
	recipe, err := svc.CreateRecipe(context.Background(), owner.ID, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if recipe.Category != domain.RecipeCategoryMain || recipe.Difficulty != domain.RecipeDifficultyEasy {
		t.Fatalf("unexpected defaults %s/%s", recipe.Category, recipe.Difficulty)
	}
}

func TestCreateRecipeValidation(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRecipeService(store)
	owner := seedUser(t, store, "alice", "a@x.com")

	cases := []struct {
		name   string
		mutate func(in *domain.RecipeInput)
	}{
		{"missing title", func(in *domain.RecipeInput) { in.Title = " " }},
		{"zero duration", func(in *domain.RecipeInput) { in.Duration = 0 }},
		{"missing image", func(in *domain.RecipeInput) { in.Images.Large = "" }},
		{"bad category", func(in *domain.RecipeInput) { in.Category = "brunch" }},
		{"bad difficulty", func(in *domain.RecipeInput) { in.Difficulty = "extreme" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validRecipeInput("Pancakes")
			tc.mutate(&input)
			if _, err := svc.CreateRecipe(context.Background(), owner.ID, input); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}

	count, _ := store.Recipes().Count(context.Background())
	if count != 0 {
		t.Fatalf("no recipe should be stored, got %d", count)
	}
}

func TestCreateRecipeUnknownOwner(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRecipeService(store)

	if _, err := svc.CreateRecipe(context.Background(), uuid.New(), validRecipeInput("Pancakes")); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	count, _ := store.Recipes().Count(context.Background())
	if count != 0 {
		t.Fatalf("no recipe should be stored, got %d", count)
	}
}

func TestCreateRecipeRollsBackWhenLinkFails(t *testing.T) {
	cases := []struct {
		name string
		tx   func(store *memory.Store) ports.Transactor
	}{
		{"atomic", func(store *memory.Store) ports.Transactor { return store.Transactor() }},
		{"compensated", func(*memory.Store) ports.Transactor { return directTransactor{} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := memory.NewStore()
			owner := seedUser(t, store, "alice", "a@x.com")
			users := &failingUsers{UserRepository: store.Users(), addRecipeErr: errors.New("disk full")}
			svc := NewRecipeService(store.Recipes(), users, tc.tx(store), nil, RecipeServiceConfig{})

			_, err := svc.CreateRecipe(context.Background(), owner.ID, validRecipeInput("Pancakes"))
			if !errors.Is(err, ErrTransaction) {
				t.Fatalf("expected ErrTransaction, got %v", err)
			}

			count, _ := store.Recipes().Count(context.Background())
			if count != 0 {
				t.Fatalf("orphan recipe left behind: count = %d", count)
			}
			stored, _ := store.Users().FindByID(context.Background(), owner.ID)
			if len(stored.Recipes) != 0 {
				t.Fatalf("owner list should be empty, got %v", stored.Recipes)
			}
		})
	}
}

func TestDeleteRecipe(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRecipeService(store)
	owner := seedUser(t, store, "alice", "a@x.com")
	ctx := context.Background()

	recipe, err := svc.CreateRecipe(ctx, owner.ID, validRecipeInput("Pancakes"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteRecipe(ctx, recipe.ID, owner.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := svc.GetRecipe(ctx, recipe.ID); !errors.Is(err, ErrRecipeNotFound) {
		t.Fatalf("expected ErrRecipeNotFound, got %v", err)
	}
	stored, _ := store.Users().FindByID(ctx, owner.ID)
	if stored.OwnsRecipe(recipe.ID) {
		t.Fatalf("owner list still references deleted recipe")
	}
	if err := svc.DeleteRecipe(ctx, recipe.ID, owner.ID); !errors.Is(err, ErrRecipeNotFound) {
		t.Fatalf("second delete: expected ErrRecipeNotFound, got %v", err)
	}
}

func TestDeleteRecipeForbiddenForOtherUser(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRecipeService(store)
	owner := seedUser(t, store, "alice", "a@x.com")
	other := seedUser(t, store, "bob", "b@x.com")
	ctx := context.Background()

	recipe, _ := svc.CreateRecipe(ctx, owner.ID, validRecipeInput("Pancakes"))
	if err := svc.DeleteRecipe(ctx, recipe.ID, other.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.GetRecipe(ctx, recipe.ID); err != nil {
		t.Fatalf("recipe should still exist: %v", err)
	}
}

func TestDeleteRecipeRestoresWhenUnlinkFails(t *testing.T) {
	cases := []struct {
		name string
		tx   func(store *memory.Store) ports.Transactor
	}{
		{"atomic", func(store *memory.Store) ports.Transactor { return store.Transactor() }},
		{"compensated", func(*memory.Store) ports.Transactor { return directTransactor{} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := memory.NewStore()
			owner := seedUser(t, store, "alice", "a@x.com")
			ctx := context.Background()

			recipe, err := newTestRecipeService(store).CreateRecipe(ctx, owner.ID, validRecipeInput("Pancakes"))
			if err != nil {
				t.Fatalf("create: %v", err)
			}

			users := &failingUsers{UserRepository: store.Users(), removeRecipeErr: errors.New("timeout")}
			svc := NewRecipeService(store.Recipes(), users, tc.tx(store), nil, RecipeServiceConfig{})
			if err := svc.DeleteRecipe(ctx, recipe.ID, owner.ID); !errors.Is(err, ErrTransaction) {
				t.Fatalf("expected ErrTransaction, got %v", err)
			}

			restored, err := store.Recipes().FindByID(ctx, recipe.ID)
			if err != nil {
				t.Fatalf("recipe should be restored: %v", err)
			}
			if restored.Title != "Pancakes" {
				t.Fatalf("unexpected restored recipe %+v", restored)
			}
			stored, _ := store.Users().FindByID(ctx, owner.ID)
			if !stored.OwnsRecipe(recipe.ID) {
				t.Fatalf("owner list lost the recipe")
			}
		})
	}
}

func TestListRecipesPagination(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRecipeService(store)
	svc.now = steppingClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	owner := seedUser(t, store, "alice", "a@x.com")
	ctx := context.Background()

	var newest uuid.UUID
	for i := 0; i < 13; i++ {
		recipe, err := svc.CreateRecipe(ctx, owner.ID, validRecipeInput("Dish"))
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		newest = recipe.ID
	}

	first, err := svc.ListRecipes(ctx, 1, 0)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if first.TotalPages != 3 || first.TotalItems != 13 || len(first.Items) != 6 {
		t.Fatalf("unexpected first page %+v", first)
	}
	if first.Items[0].ID != newest {
		t.Fatalf("feed should start with the newest recipe")
	}
	if !first.HasNext || first.HasPrev {
		t.Fatalf("unexpected navigation flags on page 1")
	}

	third, err := svc.ListRecipes(ctx, 3, 0)
	if err != nil {
		t.Fatalf("page 3: %v", err)
	}
	if len(third.Items) != 1 || third.HasNext || !third.HasPrev {
		t.Fatalf("unexpected third page %+v", third)
	}

	beyond, err := svc.ListRecipes(ctx, 4, 0)
	if err != nil {
		t.Fatalf("page 4: %v", err)
	}
	if len(beyond.Items) != 0 {
		t.Fatalf("page past the end should be empty, got %d", len(beyond.Items))
	}

	clamped, err := svc.ListRecipes(ctx, 0, 500)
	if err != nil {
		t.Fatalf("clamped: %v", err)
	}
	if clamped.Page != 1 || clamped.PageSize != maxRecipePageSize || len(clamped.Items) != 13 {
		t.Fatalf("unexpected clamped page %+v", clamped)
	}
}

func TestListByOwnerNewestFirst(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRecipeService(store)
	svc.now = steppingClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	alice := seedUser(t, store, "alice", "a@x.com")
	bob := seedUser(t, store, "bob", "b@x.com")
	ctx := context.Background()

	older, _ := svc.CreateRecipe(ctx, alice.ID, validRecipeInput("Older"))
	if _, err := svc.CreateRecipe(ctx, bob.ID, validRecipeInput("Bob's")); err != nil {
		t.Fatalf("create: %v", err)
	}
	newer, _ := svc.CreateRecipe(ctx, alice.ID, validRecipeInput("Newer"))

	owned, err := svc.ListByOwner(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(owned) != 2 || owned[0].ID != newer.ID || owned[1].ID != older.ID {
		t.Fatalf("unexpected order %+v", owned)
	}

	if _, err := svc.ListByOwner(ctx, uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateRecipe(t *testing.T) {
	store := memory.NewStore()
	svc := newTestRecipeService(store)
	owner := seedUser(t, store, "alice", "a@x.com")
	other := seedUser(t, store, "bob", "b@x.com")
	ctx := context.Background()

	recipe, _ := svc.CreateRecipe(ctx, owner.ID, validRecipeInput("Pancakes"))
	title := "  Crepes "
	duration := 40
	patch := domain.RecipePatch{Title: &title, Duration: &duration}

	if _, err := svc.UpdateRecipe(ctx, recipe.ID, other.ID, patch); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	updated, err := svc.UpdateRecipe(ctx, recipe.ID, owner.ID, patch)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Crepes" || updated.Duration != 40 || updated.Ingredients != recipe.Ingredients {
		t.Fatalf("unexpected update result %+v", updated)
	}

	empty := " "
	if _, err := svc.UpdateRecipe(ctx, recipe.ID, owner.ID, domain.RecipePatch{Cooking: &empty}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := svc.UpdateRecipe(ctx, uuid.New(), owner.ID, patch); !errors.Is(err, ErrRecipeNotFound) {
		t.Fatalf("expected ErrRecipeNotFound, got %v", err)
	}
}
