package client

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"trustvest-backend/internal/config"
	"trustvest-backend/internal/util"
)

// MongoClient wraps the document store holding user records.
type MongoClient struct {
	client   *mongo.Client
	database *mongo.Database
	config   *config.MongoConfig
}

// NewMongoClient connects to MongoDB and ensures the unique indexes that
// close the registration race (concurrent duplicate registrations must
// result in exactly one record).
func NewMongoClient(cfg *config.Config, logger *zap.Logger) (*MongoClient, error) {
	mongoConfig := cfg.Mongo
	if mongoConfig.URL == "" {
		return nil, fmt.Errorf("MONGO_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(mongoConfig.URL).
		SetServerSelectionTimeout(5 * time.Second)

	mc, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := mc.Ping(ctx, readpref.Primary()); err != nil {
		_ = mc.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	c := &MongoClient{
		client:   mc,
		database: mc.Database(mongoConfig.Database),
		config:   &mongoConfig,
	}

	if err := c.ensureIndexes(ctx); err != nil {
		_ = mc.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	util.Info("MongoDB client initialized",
		zap.String("database", mongoConfig.Database),
	)

	return c, nil
}

// Users returns the users collection.
func (c *MongoClient) Users() *mongo.Collection {
	return c.database.Collection("users")
}

func (c *MongoClient) ensureIndexes(ctx context.Context) error {
	_, err := c.Users().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}

// HealthCheck verifies connectivity to the primary.
func (c *MongoClient) HealthCheck(ctx context.Context) error {
	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping failed: %w", err)
	}
	return nil
}

// Close disconnects from MongoDB.
func (c *MongoClient) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.client.Disconnect(ctx); err != nil {
		util.Error("failed to close MongoDB client", zap.Error(err))
		return err
	}
	util.Info("MongoDB client closed")
	return nil
}
