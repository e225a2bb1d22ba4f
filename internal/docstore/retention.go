package docstore

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// RunRetention periodically deletes feed_log documents older than the
// retention window. Blocks until ctx is cancelled. Pass retainDays <= 0 to
// disable.
func RunRetention(ctx context.Context, store *Store, retainDays int) {
	if retainDays <= 0 {
		log.Println("docstore: feed log retention disabled (keep forever)")
		return
	}

	interval := 1 * time.Hour
	log.Printf("docstore: pruning feed_log older than %d days every %v", retainDays, interval)

	prune(ctx, store, retainDays)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune(ctx, store, retainDays)
		}
	}
}

func prune(ctx context.Context, store *Store, retainDays int) {
	cutoff := time.Now().AddDate(0, 0, -retainDays).UnixMilli()

	result, err := store.db.Collection("feed_log").DeleteMany(ctx, bson.M{
		"timestamp": bson.M{"$lt": cutoff},
	})
	if err != nil {
		log.Printf("docstore: feed log retention prune error: %v", err)
		return
	}

	if result.DeletedCount > 0 {
		log.Printf("docstore: pruned %d feed_log entries older than %d days", result.DeletedCount, retainDays)
	}
}
