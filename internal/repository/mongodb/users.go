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

// excludePassword keeps the hash out of every read that does not need it.
var excludePassword = bson.D{{Key: "password", Value: 0}}

type UserRepo struct {
	MongoBaseRepo
}

// NewUserRepository creates a MongoDB-backed user repository
func NewUserRepository(db database.DB) repository.UserRepository {
	return &UserRepo{MongoBaseRepo{db: db}}
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	res, err := r.collection(database.CollectionUsers).InsertOne(ctx, user)
	if err != nil {
		return wrapWriteErr(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

func (r *UserRepo) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetProjection(excludePassword)
	cursor, err := r.collection(database.CollectionUsers).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepo) Get(ctx context.Context, id string) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid}, true)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username}, true)
}

// GetByEmail includes the password hash; it exists solely to feed the
// credential check during login.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, false)
}

func (r *UserRepo) Update(ctx context.Context, id string, update repository.UserUpdate) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Username != nil {
		set["username"] = *update.Username
	}
	if update.PasswordHash != nil {
		set["password"] = *update.PasswordHash
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.Phone != nil {
		set["phone"] = *update.Phone
	}
	if update.Role != nil {
		set["role"] = *update.Role
	}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	if len(set) == 0 {
		return r.Get(ctx, id)
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(excludePassword)
	var updated models.User
	err = r.collection(database.CollectionUsers).
		FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).
		Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, wrapWriteErr(err)
	}
	return &updated, nil
}

func (r *UserRepo) SoftDelete(ctx context.Context, id string, when time.Time) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(excludePassword)
	var updated models.User
	err = r.collection(database.CollectionUsers).
		FindOneAndUpdate(ctx, bson.M{"_id": oid},
			bson.M{"$set": bson.M{"status": false, "deleteDate": when}}, opts).
		Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M, hidePassword bool) (*models.User, error) {
	opts := options.FindOne()
	if hidePassword {
		opts = opts.SetProjection(excludePassword)
	}

	var user models.User
	err := r.collection(database.CollectionUsers).FindOne(ctx, filter, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
