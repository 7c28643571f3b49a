package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"paypal-premium-service/internal/domain"
	"paypal-premium-service/internal/domain/model"
	"paypal-premium-service/internal/domain/ports/repository"
)

const usersCollection = "users"

// Compile-time check
var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo is the document-store adapter for user records. All writes are
// field-level last-write-wins; there is no optimistic concurrency check.
type UserRepo struct {
	col *mongo.Collection
}

func NewUserRepo(s *Store) *UserRepo {
	return &UserRepo{col: s.DB.Collection(usersCollection)}
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.col.FindOne(ctx, bson.M{"email": model.NormalizeEmail(email)}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	_, err := r.col.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert user %s: %w", u.ID, err)
	}
	return nil
}

// Merge $set-updates only the supplied fields so a partial record never
// clobbers fields absent from it.
func (r *UserRepo) Merge(ctx context.Context, id string, fields map[string]any) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("merge user %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetPremium writes the flag unconditionally. Concurrent writers converge
// because the value is never computed from the prior state.
func (r *UserRepo) SetPremium(ctx context.Context, id string, premium bool) error {
	now := time.Now().UTC()
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"premium":          premium,
		"premiumUpdatedAt": now,
		"updatedAt":        now,
	}})
	if err != nil {
		return fmt.Errorf("set premium for user %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
