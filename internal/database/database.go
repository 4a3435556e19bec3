package database

import (
	"context"
	"fmt"

	"agrosense-backend/internal/config"

	nuts "github.com/vaudience/go-nuts"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names used by the service.
const (
	CollectionUsers          = "user"
	CollectionReports        = "report"
	CollectionSensorReadings = "sensor_readings"
	CollectionLoginHistories = "login_histories"
)

// DB is the handle the repositories work against
type DB interface {
	Close(ctx context.Context) error
	Ping(ctx context.Context) error
	Collection(name string) *mongo.Collection
}

// MongoDB wraps a connected MongoDB client and the application database
type MongoDB struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoDB creates a new MongoDB connection
func NewMongoDB(ctx context.Context, cfg config.MongoConfig) (DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("error connecting to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("error pinging MongoDB: %w", err)
	}

	nuts.L.Infof("[MongoDB] Connected to database %q", cfg.Database)
	return &MongoDB{client: client, db: client.Database(cfg.Database)}, nil
}

func (m *MongoDB) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *MongoDB) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoDB) Collection(name string) *mongo.Collection {
	return m.db.Collection(name)
}

// EnsureIndexes creates the secondary indexes the queries rely on. It runs
// once at startup; index creation is idempotent on the server side.
func EnsureIndexes(ctx context.Context, db DB) error {
	readings := []mongo.IndexModel{
		{Keys: bson.D{{Key: "deviceId", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
	}
	if _, err := db.Collection(CollectionSensorReadings).Indexes().CreateMany(ctx, readings); err != nil {
		return fmt.Errorf("error creating sensor_readings indexes: %w", err)
	}

	reports := []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "createDate", Value: 1}}},
	}
	if _, err := db.Collection(CollectionReports).Indexes().CreateMany(ctx, reports); err != nil {
		return fmt.Errorf("error creating report indexes: %w", err)
	}

	users := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := db.Collection(CollectionUsers).Indexes().CreateMany(ctx, users); err != nil {
		return fmt.Errorf("error creating user indexes: %w", err)
	}

	history := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "loginAt", Value: -1}}},
		{Keys: bson.D{{Key: "loginAt", Value: -1}}},
	}
	if _, err := db.Collection(CollectionLoginHistories).Indexes().CreateMany(ctx, history); err != nil {
		return fmt.Errorf("error creating login_histories indexes: %w", err)
	}

	return nil
}
