package docstore

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// EnsureIndexes creates idempotent indexes on the feed_log collection.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	type idx struct {
		collection string
		model      mongo.IndexModel
	}

	indexes := []idx{
		{
			collection: "feed_log",
			model: mongo.IndexModel{
				Keys: bson.D{
					{Key: "event_id", Value: 1},
					{Key: "timestamp", Value: -1},
				},
			},
		},
		{
			collection: "feed_log",
			model: mongo.IndexModel{
				Keys: bson.D{{Key: "profile_id", Value: 1}},
			},
		},
	}

	for _, i := range indexes {
		_, err := db.Collection(i.collection).Indexes().CreateOne(ctx, i.model)
		if err != nil {
			return fmt.Errorf("docstore: create index on %s: %w", i.collection, err)
		}
	}

	log.Println("docstore: MongoDB indexes ensured")
	return nil
}
