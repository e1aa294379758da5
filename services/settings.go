package services

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"forever-ecommerce/models"
	"forever-ecommerce/repository"
	"forever-ecommerce/utils"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	backupSettingsFile = "settings.json"
	backupProductsFile = "products.json"
	maxBackupEntrySize = 32 << 20
)

type productBackup struct {
	Products []models.Product `bson:"products"`
}

// RestoreResult reports what a restore wrote.
type RestoreResult struct {
	Settings bool `json:"settings"`
	Products int  `json:"products"`
}

// SettingsService reads and writes the site settings singleton and its backups.
type SettingsService struct {
	settings  repository.SettingsRepository
	products  repository.ProductRepository
	validator *utils.Validator
	now       func() time.Time
}

func NewSettingsService(settings repository.SettingsRepository, products repository.ProductRepository, v *utils.Validator) *SettingsService {
	return &SettingsService{settings: settings, products: products, validator: v, now: time.Now}
}

// Get returns the stored settings, creating the defaults on first access.
func (s *SettingsService) Get(ctx context.Context) (*models.Settings, error) {
	settings, err := s.settings.Get(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	defaults := models.DefaultSettings()
	if err := s.settings.Save(ctx, &defaults); err != nil {
		return nil, err
	}
	return &defaults, nil
}

// Update validates and replaces the settings wholesale.
func (s *SettingsService) Update(ctx context.Context, in models.Settings) (*models.Settings, error) {
	in.General.SupportEmail = utils.NormalizeEmail(in.General.SupportEmail)
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	if err := s.settings.Save(ctx, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

// Backup writes a zip archive holding the settings and the product catalog as extended JSON.
func (s *SettingsService) Backup(ctx context.Context, w io.Writer) error {
	settings, err := s.Get(ctx)
	if err != nil {
		return err
	}
	products, err := s.products.List(ctx)
	if err != nil {
		return err
	}

	settingsJSON, err := bson.MarshalExtJSONIndent(settings, false, false, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	productsJSON, err := bson.MarshalExtJSONIndent(productBackup{Products: products}, false, false, "", "  ")
	if err != nil {
		return fmt.Errorf("encode products: %w", err)
	}

	zw := zip.NewWriter(w)
	modified := s.now().UTC()
	for name, body := range map[string][]byte{
		backupSettingsFile: settingsJSON,
		backupProductsFile: productsJSON,
	} {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modified})
		if err != nil {
			return fmt.Errorf("create %s: %w", name, err)
		}
		if _, err := fw.Write(body); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return zw.Close()
}

// Restore reads an archive produced by Backup and upserts its settings and products.
func (s *SettingsService) Restore(ctx context.Context, r io.ReaderAt, size int64) (*RestoreResult, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, utils.BadRequest("Backup file is not a valid zip archive")
	}

	var settings *models.Settings
	var products []models.Product
	for _, f := range zr.File {
		switch f.Name {
		case backupSettingsFile:
			var decoded models.Settings
			if err := readExtJSON(f, &decoded); err != nil {
				return nil, err
			}
			settings = &decoded
		case backupProductsFile:
			var decoded productBackup
			if err := readExtJSON(f, &decoded); err != nil {
				return nil, err
			}
			products = decoded.Products
		}
	}
	if settings == nil && products == nil {
		return nil, utils.BadRequest("Backup file contains no settings or products")
	}

	result := &RestoreResult{}
	if settings != nil {
		if err := s.validator.Struct(*settings); err != nil {
			return nil, err
		}
		if err := s.settings.Save(ctx, settings); err != nil {
			return nil, err
		}
		result.Settings = true
	}
	for i := range products {
		if products[i].ID.IsZero() {
			continue
		}
		if err := s.products.Upsert(ctx, &products[i]); err != nil {
			return nil, fmt.Errorf("restore product %s: %w", products[i].ID.Hex(), err)
		}
		result.Products++
	}
	return result, nil
}

func readExtJSON(f *zip.File, out any) error {
	rc, err := f.Open()
	if err != nil {
		return utils.BadRequest("Cannot read " + f.Name + " from backup")
	}
	defer rc.Close()

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(rc, maxBackupEntrySize+1))
	if err != nil {
		return utils.BadRequest("Cannot read " + f.Name + " from backup")
	}
	if n > maxBackupEntrySize {
		return utils.BadRequest(f.Name + " is too large")
	}
	if err := bson.UnmarshalExtJSON(buf.Bytes(), false, out); err != nil {
		return utils.BadRequest("Invalid " + f.Name + " in backup")
	}
	return nil
}
