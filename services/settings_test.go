package services

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"testing"

	"forever-ecommerce/models"
	"forever-ecommerce/repository/repotest"
	"forever-ecommerce/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSettingsService_GetCreatesDefaults(t *testing.T) {
	repo := repotest.NewSettings()
	svc := NewSettingsService(repo, repotest.NewProducts(), utils.NewValidator())

	got, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), *got)

	stored, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SettingsID, stored.ID)
}

func TestSettingsService_Update(t *testing.T) {
	repo := repotest.NewSettings()
	svc := NewSettingsService(repo, repotest.NewProducts(), utils.NewValidator())
	ctx := context.Background()

	in := models.DefaultSettings()
	in.ID = ""
	in.General.SiteTitle = "Forever Store"
	in.General.SupportEmail = " Help@Forever.com "
	in.Notifications.EmailUsers = true

	got, err := svc.Update(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "help@forever.com", got.General.SupportEmail)

	stored, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Forever Store", stored.General.SiteTitle)
	assert.True(t, stored.Notifications.EmailUsers)

	bad := models.DefaultSettings()
	bad.Security.FailedAttempts = 0
	bad.General.DateFormat = "DD.MM.YY"
	_, err = svc.Update(ctx, bad)
	apiErr := requireStatus(t, err, http.StatusBadRequest, "Validation failed")
	assert.Contains(t, apiErr.Errors, "security.failedAttempts")
	assert.Contains(t, apiErr.Errors, "general.dateFormat")
}

func TestSettingsService_BackupRestore(t *testing.T) {
	ctx := context.Background()
	product := models.Product{ID: primitive.NewObjectID(), Name: "Shirt", Description: "Cotton", Price: 499, Category: "Men", Sizes: []string{"M"}}
	source := NewSettingsService(repotest.NewSettings(), repotest.NewProducts(product), utils.NewValidator())

	custom := models.DefaultSettings()
	custom.Maintenance.Enabled = true
	_, err := source.Update(ctx, custom)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, source.Backup(ctx, &buf))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"settings.json", "products.json"}, names)

	settingsRepo := repotest.NewSettings()
	products := repotest.NewProducts()
	target := NewSettingsService(settingsRepo, products, utils.NewValidator())

	result, err := target.Restore(ctx, bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, &RestoreResult{Settings: true, Products: 1}, result)

	restored, err := settingsRepo.Get(ctx)
	require.NoError(t, err)
	assert.True(t, restored.Maintenance.Enabled)

	p, err := products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shirt", p.Name)
	assert.Equal(t, []string{"M"}, p.Sizes)
}

func TestSettingsService_RestoreRejects(t *testing.T) {
	svc := NewSettingsService(repotest.NewSettings(), repotest.NewProducts(), utils.NewValidator())
	ctx := context.Background()

	garbage := []byte("not a zip")
	_, err := svc.Restore(ctx, bytes.NewReader(garbage), int64(len(garbage)))
	requireStatus(t, err, http.StatusBadRequest, "Backup file is not a valid zip archive")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("settings.json")
	require.NoError(t, err)
	_, err = w.Write([]byte("{broken"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = svc.Restore(ctx, bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	requireStatus(t, err, http.StatusBadRequest, "Invalid settings.json in backup")

	buf.Reset()
	zw = zip.NewWriter(&buf)
	_, err = zw.Create("readme.txt")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = svc.Restore(ctx, bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	requireStatus(t, err, http.StatusBadRequest, "Backup file contains no settings or products")
}
