package repository

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"time"

	"forever-ecommerce/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userRepoImpl struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepoImpl{
		coll: db.Collection(UsersCollection),
		now:  time.Now,
	}
}

func (r *userRepoImpl) Create(ctx context.Context, user *models.User) error {
	now := r.now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	if user.CartData == nil {
		user.CartData = models.CartData{}
	}
	if user.Address == nil {
		user.Address = []models.Address{}
	}
	res, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		return mapError(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

func (r *userRepoImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userRepoImpl) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepoImpl) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

func (r *userRepoImpl) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	out := make(map[primitive.ObjectID]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	opts := options.Find().SetProjection(bson.M{"password": 0, "cartData": 0})
	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

func (r *userRepoImpl) SetVerified(ctx context.Context, id primitive.ObjectID) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"isVerified": true, "updatedAt": r.now().UTC()}})
}

func (r *userRepoImpl) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"password": hash, "updatedAt": r.now().UTC()}})
}

func (r *userRepoImpl) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, phone string, addresses []models.Address) (*models.User, error) {
	if addresses == nil {
		addresses = []models.Address{}
	}
	return r.findOneAndSet(ctx, id, bson.M{"name": name, "phone": phone, "address": addresses})
}

func (r *userRepoImpl) UpdateContact(ctx context.Context, id primitive.ObjectID, name, email, phone string) (*models.User, error) {
	return r.findOneAndSet(ctx, id, bson.M{"name": name, "email": email, "phone": phone})
}

func (r *userRepoImpl) findOneAndSet(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error) {
	fields["updatedAt"] = r.now().UTC()
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"password": 0})
	var user models.User
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&user)
	if err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

func (r *userRepoImpl) AddAddress(ctx context.Context, id primitive.ObjectID, addr models.Address) error {
	return r.updateByID(ctx, id, bson.M{"$push": bson.M{"address": addr}})
}

func cartField(itemID, size string) string {
	return fmt.Sprintf("cartData.%s.%s", itemID, size)
}

func (r *userRepoImpl) IncrementCartItem(ctx context.Context, id primitive.ObjectID, itemID, size string) error {
	return r.updateByID(ctx, id, bson.M{"$inc": bson.M{cartField(itemID, size): 1}})
}

// SetCartItem writes an absolute quantity. Zero removes the size entry.
func (r *userRepoImpl) SetCartItem(ctx context.Context, id primitive.ObjectID, itemID, size string, quantity int) error {
	if quantity <= 0 {
		return r.updateByID(ctx, id, bson.M{"$unset": bson.M{cartField(itemID, size): ""}})
	}
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{cartField(itemID, size): quantity}})
}

func (r *userRepoImpl) ClearCart(ctx context.Context, id primitive.ObjectID) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"cartData": bson.M{}}})
}

func (r *userRepoImpl) updateByID(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepoImpl) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	query := bson.M{}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"email": pattern},
			bson.M{"phone": pattern},
		}
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetProjection(bson.M{"password": 0, "cartData": 0}).
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepoImpl) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": from, "$lt": to}})
}

func (r *userRepoImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// TotalPages is ceil(total/limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}
