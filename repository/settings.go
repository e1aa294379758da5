package repository

import (
	"context"

	"forever-ecommerce/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type settingsRepoImpl struct {
	coll *mongo.Collection
}

func NewSettingsRepository(db *mongo.Database) SettingsRepository {
	return &settingsRepoImpl{coll: db.Collection(SettingsCollection)}
}

func (r *settingsRepoImpl) Get(ctx context.Context) (*models.Settings, error) {
	var s models.Settings
	if err := r.coll.FindOne(ctx, bson.M{"_id": models.SettingsID}).Decode(&s); err != nil {
		return nil, mapError(err)
	}
	return &s, nil
}

// Save replaces the singleton document wholesale.
func (r *settingsRepoImpl) Save(ctx context.Context, settings *models.Settings) error {
	settings.ID = models.SettingsID
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": models.SettingsID}, settings, options.Replace().SetUpsert(true))
	return err
}
