package mongodb

import (
	"context"

	"agrosense-backend/internal/database"
	"agrosense-backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoBaseRepo carries the shared database handle and helpers for the
// collection-specific repositories.
type MongoBaseRepo struct {
	db database.DB
}

func (r *MongoBaseRepo) collection(name string) *mongo.Collection {
	return r.db.Collection(name)
}

// objectID parses a hex document id. A malformed id cannot match any
// document, so it is reported as not-found rather than as a server error.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, repository.ErrNotFound
	}
	return oid, nil
}

// wrapWriteErr maps driver write errors onto the repository sentinels.
func wrapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *MongoBaseRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
