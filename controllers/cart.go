package controllers

import (
	"net/http"

	"forever-ecommerce/services"
	"forever-ecommerce/utils"
)

// CartController handles cart-related requests
type CartController struct {
	Carts  *services.CartService
	Errors utils.ErrorResponder
}

// NewCartController creates a new CartController
func NewCartController(carts *services.CartService, errs utils.ErrorResponder) *CartController {
	return &CartController{Carts: carts, Errors: errs}
}

// AddToCart adds one unit of a product size to the user's cart
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		cc.Errors.Respond(w, r, err)
		return
	}
	var item services.CartItemRequest
	if err := decodeJSON(w, r, &item); err != nil {
		cc.Errors.Respond(w, r, err)
		return
	}

	if err := cc.Carts.Add(r.Context(), userID, item); err != nil {
		cc.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"message": "Added To Cart"})
}

// UpdateCart sets the quantity of a product size; zero removes it
func (cc *CartController) UpdateCart(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		cc.Errors.Respond(w, r, err)
		return
	}
	var item services.CartItemRequest
	if err := decodeJSON(w, r, &item); err != nil {
		cc.Errors.Respond(w, r, err)
		return
	}

	if err := cc.Carts.Update(r.Context(), userID, item); err != nil {
		cc.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"message": "Cart Updated"})
}

// GetCart retrieves the user's cart
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		cc.Errors.Respond(w, r, err)
		return
	}
	cart, err := cc.Carts.Get(r.Context(), userID)
	if err != nil {
		cc.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"cartData": cart})
}
