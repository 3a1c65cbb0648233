// Package mongodb provides the MongoDB connection and collection-backed
// repositories for the API's domain types.
package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matchday/matchday-api/internal/config"
)

// Connect dials MongoDB and verifies the connection with a ping. The
// returned client must be disconnected on shutdown.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Database, func(context.Context) error, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	log.Info().Str("database", cfg.Database).Msg("mongodb connected")
	return client.Database(cfg.Database), client.Disconnect, nil
}

// ensureIndex creates an index, warning rather than failing when the
// server refuses (e.g. insufficient privileges on a shared cluster).
func ensureIndex(collection *mongo.Collection, model mongo.IndexModel) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateOne(ctx, model); err != nil {
		log.Warn().Err(err).
			Str("collection", collection.Name()).
			Msg("index creation failed")
	}
}

// searchRegex builds a case-insensitive substring matcher for user input.
// The term is quoted so metacharacters match literally.
func searchRegex(term string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(term), "$options": "i"}
}
