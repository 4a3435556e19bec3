package mongodb

import (
	"context"

	"agrosense-backend/internal/database"
	"agrosense-backend/internal/models"
	"agrosense-backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReadingRepo struct {
	MongoBaseRepo
}

// NewReadingRepository creates a MongoDB-backed sensor reading repository
func NewReadingRepository(db database.DB) repository.ReadingRepository {
	return &ReadingRepo{MongoBaseRepo{db: db}}
}

func (r *ReadingRepo) Insert(ctx context.Context, reading *models.SensorReading) error {
	res, err := r.collection(database.CollectionSensorReadings).InsertOne(ctx, reading)
	if err != nil {
		return wrapWriteErr(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		reading.ID = oid
	}
	return nil
}

func (r *ReadingRepo) List(ctx context.Context, limit int64) ([]models.SensorReading, error) {
	return r.find(ctx, bson.M{}, nil, limit)
}

func (r *ReadingRepo) ListByDevice(ctx context.Context, deviceID string, limit int64) ([]models.SensorReading, error) {
	return r.find(ctx, bson.M{"deviceId": deviceID}, nil, limit)
}

// ListBySensorType returns readings that carry the given sub-reading,
// projected down to deviceId, timestamp and that sub-object.
func (r *ReadingRepo) ListBySensorType(ctx context.Context, sensorType models.SensorType, limit int64) ([]models.SensorReading, error) {
	field := "sensors." + string(sensorType)
	projection := bson.D{
		{Key: "deviceId", Value: 1},
		{Key: "timestamp", Value: 1},
		{Key: field, Value: 1},
		{Key: "_id", Value: 0},
	}
	return r.find(ctx, bson.M{field: bson.M{"$exists": true}}, projection, limit)
}

func (r *ReadingRepo) find(ctx context.Context, filter bson.M, projection bson.D, limit int64) ([]models.SensorReading, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)
	if projection != nil {
		opts = opts.SetProjection(projection)
	}

	cursor, err := r.collection(database.CollectionSensorReadings).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	readings := []models.SensorReading{}
	if err := cursor.All(ctx, &readings); err != nil {
		return nil, err
	}
	return readings, nil
}
