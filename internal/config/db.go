package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB establishes a connection to the document store, retrying a few
// times so the service survives a store that is still starting.
func ConnectDB(cfg Config, logger *zap.Logger) (*mongo.Client, error) {
	const maxRetries = 5
	const retryInterval = 5 * time.Second

	var client *mongo.Client
	var err error

	for i := 0; i < maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err = mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err == nil {
			err = client.Ping(ctx, readpref.Primary())
			if err == nil {
				cancel()
				logger.Info("connected to document store", zap.String("db", cfg.MongoDB))
				return client, nil
			}
		}
		cancel()
		logger.Warn("failed to connect to document store, retrying",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", maxRetries),
			zap.Error(err),
		)
		time.Sleep(retryInterval)
	}
	return nil, fmt.Errorf("unable to connect to document store after %d attempts: %w", maxRetries, err)
}

// EnsureIndexes creates the store-level constraints: uniqueness on email is
// the arbiter for concurrent duplicate signups.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "resetPasswordToken", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
	if err != nil {
		return fmt.Errorf("unable to ensure indexes: %w", err)
	}
	return nil
}
