package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matchday/matchday-api/internal/fixture"
)

// Fixtures is the MongoDB-backed fixture repository.
type Fixtures struct {
	collection *mongo.Collection
}

// NewFixtures creates the fixture repository, ensuring the unique share
// link index.
func NewFixtures(db *mongo.Database) *Fixtures {
	collection := db.Collection("fixtures")
	ensureIndex(collection, mongo.IndexModel{
		Keys:    bson.D{{Key: "uniqueLink", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &Fixtures{collection: collection}
}

func (f *Fixtures) Insert(ctx context.Context, fx *fixture.Fixture) (*fixture.Fixture, error) {
	fx.ID = primitive.NewObjectID()
	fx.CreatedAt = time.Now()
	fx.UpdatedAt = fx.CreatedAt

	if _, err := f.collection.InsertOne(ctx, fx); err != nil {
		return nil, fmt.Errorf("inserting fixture: %w", err)
	}
	return fx, nil
}

// FindByID returns (nil, nil) when the id is malformed or unknown.
func (f *Fixtures) FindByID(ctx context.Context, id string) (*fixture.Fixture, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var fx fixture.Fixture
	err = f.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&fx)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding fixture: %w", err)
	}
	return &fx, nil
}

func (f *Fixtures) List(ctx context.Context, skip, limit int64) ([]fixture.Fixture, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := f.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing fixtures: %w", err)
	}
	defer cursor.Close(ctx)

	var fixtures []fixture.Fixture
	if err := cursor.All(ctx, &fixtures); err != nil {
		return nil, fmt.Errorf("decoding fixtures: %w", err)
	}
	return fixtures, nil
}

func (f *Fixtures) Count(ctx context.Context) (int64, error) {
	count, err := f.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("counting fixtures: %w", err)
	}
	return count, nil
}

// FindByStatus returns every fixture when status is empty.
func (f *Fixtures) FindByStatus(ctx context.Context, status fixture.Status) ([]fixture.Fixture, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	cursor, err := f.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("finding fixtures by status: %w", err)
	}
	defer cursor.Close(ctx)

	var fixtures []fixture.Fixture
	if err := cursor.All(ctx, &fixtures); err != nil {
		return nil, fmt.Errorf("decoding fixtures: %w", err)
	}
	return fixtures, nil
}

func (f *Fixtures) Search(ctx context.Context, term string) ([]fixture.Fixture, error) {
	regex := searchRegex(term)
	filter := bson.M{"$or": bson.A{
		bson.M{"homeTeam": regex},
		bson.M{"awayTeam": regex},
		bson.M{"status": regex},
	}}

	cursor, err := f.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("searching fixtures: %w", err)
	}
	defer cursor.Close(ctx)

	var fixtures []fixture.Fixture
	if err := cursor.All(ctx, &fixtures); err != nil {
		return nil, fmt.Errorf("decoding fixtures: %w", err)
	}
	return fixtures, nil
}

func (f *Fixtures) Update(ctx context.Context, id string, req fixture.UpdateRequest) (*fixture.Fixture, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.HomeTeam != nil {
		set["homeTeam"] = *req.HomeTeam
	}
	if req.AwayTeam != nil {
		set["awayTeam"] = *req.AwayTeam
	}
	if req.Date != nil {
		set["date"] = *req.Date
	}
	if req.Status != nil {
		set["status"] = *req.Status
	}
	if req.Score != nil {
		set["score"] = *req.Score
	}

	result := f.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if errors.Is(result.Err(), mongo.ErrNoDocuments) {
		return nil, nil
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("updating fixture: %w", result.Err())
	}

	var updated fixture.Fixture
	if err := result.Decode(&updated); err != nil {
		return nil, fmt.Errorf("decoding updated fixture: %w", err)
	}
	return &updated, nil
}

func (f *Fixtures) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}

	if _, err := f.collection.DeleteOne(ctx, bson.M{"_id": objectID}); err != nil {
		return fmt.Errorf("deleting fixture: %w", err)
	}
	return nil
}
