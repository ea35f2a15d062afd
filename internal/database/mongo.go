package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	appconfig "github.com/GTDGit/catalog_api/internal/config"
)

// ConnectMongo opens the product document store and returns its database
// handle. It follows the same retry policy as Connect.
func ConnectMongo(cfg *appconfig.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	if cfg == nil || cfg.URI == "" {
		return nil, nil, errors.New("nil mongo config")
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(10 * time.Second).
		SetMaxPoolSize(50)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := mongo.Connect(ctx, opts)
		if err == nil {
			err = client.Ping(ctx, readpref.Primary())
			if err == nil {
				cancel()
				return client, client.Database(cfg.Database), nil
			}
			_ = client.Disconnect(context.Background())
		}
		cancel()
		lastErr = err
		sleepWithBackoff(attempt, baseDelay)
	}

	return nil, nil, fmt.Errorf("failed to connect to mongo after %d attempts: %w", maxAttempts, lastErr)
}
