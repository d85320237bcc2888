package mongo

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/foodies/foodies-api/internal/domain"
	"github.com/foodies/foodies-api/internal/repository/ports"
)

type RecipeRepository struct {
	coll *mongo.Collection
}

func NewRecipeRepo(db *mongo.Database) *RecipeRepository {
	return &RecipeRepository{coll: db.Collection(recipesCollection)}
}

func (r *RecipeRepository) Create(ctx context.Context, recipe *domain.Recipe) (*domain.Recipe, error) {
	stored := *recipe
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	if _, err := r.coll.InsertOne(ctx, newRecipeDocument(&stored)); err != nil {
		return nil, translateError(err)
	}
	return &stored, nil
}

func (r *RecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Recipe, error) {
	var doc recipeDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return doc.toDomain()
}

func (r *RecipeRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Recipe, error) {
	if len(ids) == 0 {
		return []domain.Recipe{}, nil
	}
	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.String())
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": raw}}, options.Find())
}

func (r *RecipeRepository) List(ctx context.Context, offset, limit int) ([]domain.Recipe, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "published", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, bson.M{}, opts)
}

func (r *RecipeRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

func (r *RecipeRepository) Update(ctx context.Context, id uuid.UUID, patch domain.RecipePatch) (*domain.Recipe, error) {
	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Ingredients != nil {
		set["ingredients"] = *patch.Ingredients
	}
	if patch.Cooking != nil {
		set["cooking"] = *patch.Cooking
	}
	if patch.Duration != nil {
		set["duration"] = *patch.Duration
	}
	if patch.Images != nil {
		set["images"] = imagesDocument{Regular: patch.Images.Regular, Large: patch.Images.Large}
	}
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc recipeDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id.String()}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return doc.toDomain()
}

func (r *RecipeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return translateError(err)
	}
	if result.DeletedCount == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *RecipeRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Recipe, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	recipes := make([]domain.Recipe, 0)
	for cursor.Next(ctx) {
		var doc recipeDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		recipe, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, *recipe)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return recipes, nil
}

var _ ports.RecipeRepository = (*RecipeRepository)(nil)
