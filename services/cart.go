package services

import (
	"context"
	"errors"

	"forever-ecommerce/models"
	"forever-ecommerce/repository"
	"forever-ecommerce/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartItemRequest struct {
	ItemID   string `json:"itemId"`
	Size     string `json:"size"`
	Quantity *int   `json:"quantity,omitempty"`
}

// CartService edits the cart map embedded in the user document.
type CartService struct {
	users    repository.UserRepository
	products repository.ProductRepository
}

func NewCartService(users repository.UserRepository, products repository.ProductRepository) *CartService {
	return &CartService{users: users, products: products}
}

func (s *CartService) validate(ctx context.Context, req CartItemRequest) error {
	productID, err := parseID(req.ItemID, "item id")
	if err != nil {
		return err
	}
	if !models.ValidSize(req.Size) {
		return utils.BadRequest("Invalid size")
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return notFound(err, "Product not found")
	}
	return nil
}

// Add increments the quantity of one product size by one.
func (s *CartService) Add(ctx context.Context, userID primitive.ObjectID, req CartItemRequest) error {
	if err := s.validate(ctx, req); err != nil {
		return err
	}
	return notFound(s.users.IncrementCartItem(ctx, userID, req.ItemID, req.Size), "User not found")
}

// Update sets an absolute quantity. Zero removes the size; negatives are rejected.
func (s *CartService) Update(ctx context.Context, userID primitive.ObjectID, req CartItemRequest) error {
	if req.Quantity == nil {
		return utils.BadRequest("Quantity is required")
	}
	if *req.Quantity < 0 {
		return utils.BadRequest(models.ErrInvalidQuantity.Error())
	}
	if _, err := parseID(req.ItemID, "item id"); err != nil {
		return err
	}
	if !models.ValidSize(req.Size) {
		return utils.BadRequest("Invalid size")
	}
	if *req.Quantity > 0 {
		if err := s.validate(ctx, req); err != nil {
			return err
		}
	}
	return notFound(s.users.SetCartItem(ctx, userID, req.ItemID, req.Size, *req.Quantity), "User not found")
}

func (s *CartService) Get(ctx context.Context, userID primitive.ObjectID) (models.CartData, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NotFound("User not found")
		}
		return nil, err
	}
	return user.CartData.Clean(), nil
}
