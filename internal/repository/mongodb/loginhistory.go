package mongodb

import (
	"context"

	"agrosense-backend/internal/database"
	"agrosense-backend/internal/models"
	"agrosense-backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type LoginHistoryRepo struct {
	MongoBaseRepo
}

// NewLoginHistoryRepository creates a MongoDB-backed login history repository
func NewLoginHistoryRepository(db database.DB) repository.LoginHistoryRepository {
	return &LoginHistoryRepo{MongoBaseRepo{db: db}}
}

func (r *LoginHistoryRepo) Append(ctx context.Context, entry *models.LoginHistory) error {
	_, err := r.collection(database.CollectionLoginHistories).InsertOne(ctx, entry)
	return wrapWriteErr(err)
}

func (r *LoginHistoryRepo) List(ctx context.Context, limit int64) ([]models.LoginHistory, error) {
	return r.find(ctx, bson.M{}, limit)
}

func (r *LoginHistoryRepo) ListByUser(ctx context.Context, userID string, limit int64) ([]models.LoginHistory, error) {
	return r.find(ctx, bson.M{"userId": userID}, limit)
}

func (r *LoginHistoryRepo) find(ctx context.Context, filter bson.M, limit int64) ([]models.LoginHistory, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "loginAt", Value: -1}}).
		SetLimit(limit).
		SetProjection(bson.D{{Key: "_id", Value: 0}})

	cursor, err := r.collection(database.CollectionLoginHistories).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []models.LoginHistory{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
