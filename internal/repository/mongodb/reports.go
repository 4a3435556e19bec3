package mongodb

import (
	"context"
	"errors"
	"time"

	"agrosense-backend/internal/database"
	"agrosense-backend/internal/models"
	"agrosense-backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReportRepo struct {
	MongoBaseRepo
}

// NewReportRepository creates a MongoDB-backed incident report repository
func NewReportRepository(db database.DB) repository.ReportRepository {
	return &ReportRepo{MongoBaseRepo{db: db}}
}

func (r *ReportRepo) Create(ctx context.Context, report *models.Report) error {
	res, err := r.collection(database.CollectionReports).InsertOne(ctx, report)
	if err != nil {
		return wrapWriteErr(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		report.ID = oid
	}
	return nil
}

func (r *ReportRepo) List(ctx context.Context, filters repository.ReportFilters) ([]models.Report, error) {
	return r.find(ctx, applyFilters(bson.M{}, filters), nil)
}

func (r *ReportRepo) ListByUser(ctx context.Context, userID string) ([]models.Report, error) {
	return r.find(ctx, bson.M{"userId": userID}, nil)
}

// ListNear relies on the 2dsphere index; $near sorts results nearest first.
func (r *ReportRepo) ListNear(ctx context.Context, longitude, latitude, maxDistance float64, filters repository.ReportFilters) ([]models.Report, error) {
	filter := bson.M{
		"location": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{longitude, latitude},
				},
				"$maxDistance": maxDistance,
			},
		},
	}
	return r.find(ctx, applyFilters(filter, filters), nil)
}

func (r *ReportRepo) ListByDateRange(ctx context.Context, start, end time.Time, filters repository.ReportFilters) ([]models.Report, error) {
	filter := bson.M{
		"createDate": bson.M{
			"$gte": start,
			"$lte": end,
		},
	}
	return r.find(ctx, applyFilters(filter, filters), nil)
}

// UpdateStatus is a single atomic document update; concurrent updates to the
// same report are last-write-wins by design.
func (r *ReportRepo) UpdateStatus(ctx context.Context, id string, status models.ReportStatus, solutionDate *time.Time) (*models.Report, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"status": status}
	if solutionDate != nil {
		set["solutionDate"] = *solutionDate
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Report
	err = r.collection(database.CollectionReports).
		FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).
		Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

func (r *ReportRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Report, error) {
	cursor, err := r.collection(database.CollectionReports).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reports := []models.Report{}
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func applyFilters(filter bson.M, filters repository.ReportFilters) bson.M {
	if filters.Status != "" {
		filter["status"] = filters.Status
	}
	if filters.ReportType != "" {
		filter["reportType"] = filters.ReportType
	}
	return filter
}
