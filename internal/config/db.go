package config

import (
	"context"
	"fmt"
	"time"

	"sunnah_sayings/internal/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Store owns the process-wide document store connection
type Store struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// ConnectDB establishes a pooled connection to MongoDB using the stable
// server API, retrying a few times before giving up
func ConnectDB(ctx context.Context, cfg DBConfig, log logger.Logger) (*Store, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)
	opts := options.Client().ApplyURI(cfg.URI).SetServerAPIOptions(serverAPI)

	var lastErr error
	for i := 0; i < cfg.ConnectTries; i++ {
		client, err := mongo.Connect(ctx, opts)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err = client.Ping(pingCtx, readpref.Primary())
			cancel()
			if err == nil {
				log.Info("Pinged your deployment. You successfully connected to MongoDB!", "db", cfg.Name)
				return &Store{Client: client, DB: client.Database(cfg.Name)}, nil
			}
			_ = client.Disconnect(ctx)
		}
		lastErr = err
		log.Warn("Failed to connect to database",
			"attempt", fmt.Sprintf("%d/%d", i+1, cfg.ConnectTries),
			"error", err,
			"retry_in", cfg.ConnectPeriod)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("unable to connect to database: %w", ctx.Err())
		case <-time.After(cfg.ConnectPeriod):
		}
	}
	return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", cfg.ConnectTries, lastErr)
}

// Ping reports whether the primary is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client and releases pooled connections
func (s *Store) Close(ctx context.Context) error {
	if err := s.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from database: %w", err)
	}
	return nil
}
