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

type productRepoImpl struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewProductRepository(db *mongo.Database) ProductRepository {
	return &productRepoImpl{
		coll: db.Collection(ProductsCollection),
		now:  time.Now,
	}
}

func (r *productRepoImpl) Create(ctx context.Context, product *models.Product) error {
	now := r.now().UTC()
	product.CreatedAt, product.UpdatedAt = now, now
	if product.Date == 0 {
		product.Date = now.UnixMilli()
	}
	res, err := r.coll.InsertOne(ctx, product)
	if err != nil {
		return mapError(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		product.ID = oid
	}
	return nil
}

func (r *productRepoImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return nil, mapError(err)
	}
	return &product, nil
}

func (r *productRepoImpl) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Product, error) {
	out := make(map[primitive.ObjectID]*models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	for i := range products {
		out[products[i].ID] = &products[i]
	}
	return out, nil
}

func (r *productRepoImpl) List(ctx context.Context) ([]models.Product, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepoImpl) Update(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = r.now().UTC()
	update := bson.M{"$set": bson.M{
		"name":        product.Name,
		"description": product.Description,
		"price":       product.Price,
		"image":       product.Images,
		"category":    product.Category,
		"subCategory": product.SubCategory,
		"sizes":       product.Sizes,
		"bestseller":  product.Bestseller,
		"updatedAt":   product.UpdatedAt,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": product.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepoImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepoImpl) Count(ctx context.Context) (int64, int64, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, 0, err
	}
	bestsellers, err := r.coll.CountDocuments(ctx, bson.M{"bestseller": true})
	if err != nil {
		return 0, 0, err
	}
	return total, bestsellers, nil
}

// Upsert replaces the product with the same id, inserting it if absent.
func (r *productRepoImpl) Upsert(ctx context.Context, product *models.Product) error {
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": product.ID}, product, options.Replace().SetUpsert(true))
	return mapError(err)
}
