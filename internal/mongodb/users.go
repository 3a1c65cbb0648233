package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matchday/matchday-api/internal/auth"
)

// Users is the MongoDB-backed credential store.
type Users struct {
	collection *mongo.Collection
}

// NewUsers creates the user repository, ensuring the unique email index.
func NewUsers(db *mongo.Database) *Users {
	collection := db.Collection("users")
	ensureIndex(collection, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &Users{collection: collection}
}

// FindByEmail returns (nil, nil) when no user holds the address.
func (u *Users) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	var user auth.User
	err := u.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns (nil, nil) when the id is malformed or unknown. A
// malformed id cannot name a stored user, so it is not an error.
func (u *Users) FindByID(ctx context.Context, id string) (*auth.User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var user auth.User
	err = u.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding user by id: %w", err)
	}
	return &user, nil
}

func (u *Users) Insert(ctx context.Context, user *auth.User) (*auth.User, error) {
	user.ID = primitive.NewObjectID()

	if _, err := u.collection.InsertOne(ctx, user); err != nil {
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	return user, nil
}
