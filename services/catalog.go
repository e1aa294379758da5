package services

import (
	"context"
	"strings"

	"forever-ecommerce/models"
	"forever-ecommerce/repository"
	"forever-ecommerce/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogService is plain CRUD over the product collection.
type CatalogService struct {
	products  repository.ProductRepository
	validator *utils.Validator
}

func NewCatalogService(products repository.ProductRepository, v *utils.Validator) *CatalogService {
	return &CatalogService{products: products, validator: v}
}

func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	return s.products.List(ctx)
}

func (s *CatalogService) Get(ctx context.Context, idHex string) (*models.Product, error) {
	id, err := parseID(idHex, "product id")
	if err != nil {
		return nil, err
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Product not found")
	}
	return p, nil
}

func (s *CatalogService) Add(ctx context.Context, p models.Product) (*models.Product, error) {
	normalizeProduct(&p)
	if err := s.validator.Struct(p); err != nil {
		return nil, err
	}
	p.ID = primitive.NilObjectID
	if err := s.products.Create(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *CatalogService) Update(ctx context.Context, idHex string, p models.Product) (*models.Product, error) {
	id, err := parseID(idHex, "product id")
	if err != nil {
		return nil, err
	}
	normalizeProduct(&p)
	if err := s.validator.Struct(p); err != nil {
		return nil, err
	}
	p.ID = id
	if err := s.products.Update(ctx, &p); err != nil {
		return nil, notFound(err, "Product not found")
	}
	return &p, nil
}

func (s *CatalogService) Remove(ctx context.Context, idHex string) error {
	id, err := parseID(idHex, "product id")
	if err != nil {
		return err
	}
	return notFound(s.products.Delete(ctx, id), "Product not found")
}

func normalizeProduct(p *models.Product) {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.Category = strings.TrimSpace(p.Category)
	p.SubCategory = strings.TrimSpace(p.SubCategory)
	sizes := p.Sizes[:0]
	for _, size := range p.Sizes {
		if size = strings.TrimSpace(size); models.ValidSize(size) {
			sizes = append(sizes, size)
		}
	}
	p.Sizes = sizes
}
