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

type orderRepoImpl struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewOrderRepository(db *mongo.Database) OrderRepository {
	return &orderRepoImpl{
		coll: db.Collection(OrdersCollection),
		now:  time.Now,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, order *models.Order) error {
	now := r.now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	if order.Status == "" {
		order.Status = models.StatusPending
	}
	res, err := r.coll.InsertOne(ctx, order)
	if err != nil {
		return mapError(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = oid
	}
	return nil
}

func (r *orderRepoImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return nil, mapError(err)
	}
	return &order, nil
}

func (r *orderRepoImpl) SetGatewayRef(ctx context.Context, id primitive.ObjectID, ref string) error {
	return r.set(ctx, id, bson.M{"gatewayRef": ref})
}

func (r *orderRepoImpl) MarkPaid(ctx context.Context, id primitive.ObjectID) error {
	return r.set(ctx, id, bson.M{"payment": true})
}

func (r *orderRepoImpl) set(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = r.now().UTC()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUnpaid removes a pending gateway order. Paid orders are never deleted.
func (r *orderRepoImpl) DeleteUnpaid(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "payment": false})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepoImpl) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": r.now().UTC()}}
	var order models.Order
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&order); err != nil {
		return nil, mapError(err)
	}
	return &order, nil
}

func (r *orderRepoImpl) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return r.find(ctx, bson.M{"userId": userID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *orderRepoImpl) FindCreatedBetween(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	filter := bson.M{"createdAt": bson.M{"$gte": from, "$lt": to}}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *orderRepoImpl) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Order, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListWithCustomers returns every order newest first, joined with the owner's name and email.
func (r *orderRepoImpl) ListWithCustomers(ctx context.Context) ([]models.OrderWithCustomer, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         UsersCollection,
			"localField":   "userId",
			"foreignField": "_id",
			"as":           "user",
			"pipeline":     bson.A{bson.M{"$project": bson.M{"_id": 0, "name": 1, "email": 1}}},
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$user", "preserveNullAndEmptyArrays": true}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	orders := []models.OrderWithCustomer{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepoImpl) CountByStatus(ctx context.Context, from, to time.Time) (map[models.OrderStatus]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": from, "$lt": to}}}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Status models.OrderStatus `bson:"_id"`
		Count  int64              `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	counts := make(map[models.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
