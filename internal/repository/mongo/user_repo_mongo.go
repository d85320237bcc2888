package mongo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/foodies/foodies-api/internal/domain"
	"github.com/foodies/foodies-api/internal/repository/ports"
)

type UserRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewUserRepo(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection), now: time.Now}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	stored := *user
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	stored.Email = strings.ToLower(strings.TrimSpace(stored.Email))
	now := r.now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, newUserDocument(&stored)); err != nil {
		return nil, translateError(err)
	}
	if stored.Recipes == nil {
		stored.Recipes = []uuid.UUID{}
	}
	return &stored, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *UserRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error) {
	return r.findOne(ctx, bson.M{
		"reset_token":        token,
		"reset_token_expiry": bson.M{"$gt": now.UTC()},
	})
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"password": 0})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := make([]domain.User, 0)
	for cursor.Next(ctx) {
		var doc userDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		user, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, username, avatar string) (*domain.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{
		"username":   username,
		"avatar":     avatar,
		"updated_at": r.now().UTC(),
	}}

	var doc userDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id.String()}, update, opts).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return doc.toDomain()
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.updateOne(ctx, id, bson.M{
		"$set":   bson.M{"password": passwordHash, "updated_at": r.now().UTC()},
		"$unset": bson.M{"reset_token": "", "reset_token_expiry": ""},
	})
}

func (r *UserRepository) ConsumeResetToken(ctx context.Context, token string, now time.Time, passwordHash string) (*domain.User, error) {
	filter := bson.M{
		"reset_token":        token,
		"reset_token_expiry": bson.M{"$gt": now.UTC()},
	}
	update := bson.M{
		"$set":   bson.M{"password": passwordHash, "updated_at": r.now().UTC()},
		"$unset": bson.M{"reset_token": "", "reset_token_expiry": ""},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDocument
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return doc.toDomain()
}

func (r *UserRepository) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{
		"reset_token":        token,
		"reset_token_expiry": expiresAt.UTC(),
		"updated_at":         r.now().UTC(),
	}})
}

func (r *UserRepository) AddRecipe(ctx context.Context, userID, recipeID uuid.UUID) error {
	return r.updateOne(ctx, userID, bson.M{
		"$addToSet": bson.M{"recipes": recipeID.String()},
		"$set":      bson.M{"updated_at": r.now().UTC()},
	})
}

func (r *UserRepository) RemoveRecipe(ctx context.Context, userID, recipeID uuid.UUID) error {
	return r.updateOne(ctx, userID, bson.M{
		"$pull": bson.M{"recipes": recipeID.String()},
		"$set":  bson.M{"updated_at": r.now().UTC()},
	})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return doc.toDomain()
}

func (r *UserRepository) updateOne(ctx context.Context, id uuid.UUID, update bson.M) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id.String()}, update)
	if err != nil {
		return translateError(err)
	}
	if result.MatchedCount == 0 {
		return ports.ErrNotFound
	}
	return nil
}

var _ ports.UserRepository = (*UserRepository)(nil)
