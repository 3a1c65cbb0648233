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

	"github.com/matchday/matchday-api/internal/team"
)

// Teams is the MongoDB-backed team repository.
type Teams struct {
	collection *mongo.Collection
}

func NewTeams(db *mongo.Database) *Teams {
	return &Teams{collection: db.Collection("teams")}
}

func (t *Teams) Insert(ctx context.Context, tm *team.Team) (*team.Team, error) {
	tm.ID = primitive.NewObjectID()
	tm.CreatedOn = time.Now()

	if _, err := t.collection.InsertOne(ctx, tm); err != nil {
		return nil, fmt.Errorf("inserting team: %w", err)
	}
	return tm, nil
}

// FindByID returns (nil, nil) when the id is malformed or unknown.
func (t *Teams) FindByID(ctx context.Context, id string) (*team.Team, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var tm team.Team
	err = t.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&tm)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding team: %w", err)
	}
	return &tm, nil
}

func (t *Teams) List(ctx context.Context, skip, limit int64) ([]team.Team, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdOn", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := t.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	defer cursor.Close(ctx)

	var teams []team.Team
	if err := cursor.All(ctx, &teams); err != nil {
		return nil, fmt.Errorf("decoding teams: %w", err)
	}
	return teams, nil
}

func (t *Teams) Count(ctx context.Context) (int64, error) {
	count, err := t.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("counting teams: %w", err)
	}
	return count, nil
}

func (t *Teams) Search(ctx context.Context, term string) ([]team.Team, error) {
	regex := searchRegex(term)
	filter := bson.M{"$or": bson.A{
		bson.M{"teamName": regex},
		bson.M{"stadium": regex},
	}}

	cursor, err := t.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("searching teams: %w", err)
	}
	defer cursor.Close(ctx)

	var teams []team.Team
	if err := cursor.All(ctx, &teams); err != nil {
		return nil, fmt.Errorf("decoding teams: %w", err)
	}
	return teams, nil
}

func (t *Teams) Update(ctx context.Context, id string, req team.UpdateRequest) (*team.Team, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	set := bson.M{"modifiedOn": time.Now()}
	if req.TeamName != nil {
		set["teamName"] = *req.TeamName
	}
	if req.Stadium != nil {
		set["stadium"] = *req.Stadium
	}
	if req.ModifiedBy != nil {
		set["modifiedBy"] = *req.ModifiedBy
	}

	result := t.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if errors.Is(result.Err(), mongo.ErrNoDocuments) {
		return nil, nil
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("updating team: %w", result.Err())
	}

	var updated team.Team
	if err := result.Decode(&updated); err != nil {
		return nil, fmt.Errorf("decoding updated team: %w", err)
	}
	return &updated, nil
}

func (t *Teams) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}

	if _, err := t.collection.DeleteOne(ctx, bson.M{"_id": objectID}); err != nil {
		return fmt.Errorf("deleting team: %w", err)
	}
	return nil
}
