package repository

import (
	"context"
	"time"

	"forever-ecommerce/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type adminRepoImpl struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewAdminRepository(db *mongo.Database) AdminRepository {
	return &adminRepoImpl{
		coll: db.Collection(AdminsCollection),
		now:  time.Now,
	}
}

func (r *adminRepoImpl) Create(ctx context.Context, admin *models.Admin) error {
	now := r.now().UTC()
	admin.CreatedAt, admin.UpdatedAt = now, now
	if admin.Role == "" {
		admin.Role = models.RoleAdmin
	}
	res, err := r.coll.InsertOne(ctx, admin)
	if err != nil {
		return mapError(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		admin.ID = oid
	}
	return nil
}

func (r *adminRepoImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *adminRepoImpl) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *adminRepoImpl) findOne(ctx context.Context, filter bson.M) (*models.Admin, error) {
	var admin models.Admin
	if err := r.coll.FindOne(ctx, filter).Decode(&admin); err != nil {
		return nil, mapError(err)
	}
	return &admin, nil
}

func (r *adminRepoImpl) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

func (r *adminRepoImpl) RecordLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"lastLogin":           at,
		"failedLoginAttempts": 0,
	}})
	return err
}

func (r *adminRepoImpl) RecordFailedLogin(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"failedLoginAttempts": 1}})
	return err
}

func (r *adminRepoImpl) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, phone string) (*models.Admin, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"password": 0})
	update := bson.M{"$set": bson.M{"name": name, "phone": phone, "updatedAt": r.now().UTC()}}
	var admin models.Admin
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&admin); err != nil {
		return nil, mapError(err)
	}
	return &admin, nil
}
