package controllers

import (
	"net/http"

	"forever-ecommerce/models"
	"forever-ecommerce/services"
	"forever-ecommerce/utils"

	"github.com/gorilla/mux"
)

// ProductController handles product-related requests
type ProductController struct {
	Catalog *services.CatalogService
	Errors  utils.ErrorResponder
}

// NewProductController creates a new ProductController
func NewProductController(catalog *services.CatalogService, errs utils.ErrorResponder) *ProductController {
	return &ProductController{Catalog: catalog, Errors: errs}
}

// GetProducts retrieves all products
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := pc.Catalog.List(r.Context())
	if err != nil {
		pc.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"products": products})
}

// GetProductByID retrieves a product by ID
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	product, err := pc.Catalog.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		pc.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"product": product})
}

// CreateProduct creates a new product (admin only)
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := decodeJSON(w, r, &product); err != nil {
		pc.Errors.Respond(w, r, err)
		return
	}
	created, err := pc.Catalog.Add(r.Context(), product)
	if err != nil {
		pc.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusCreated, map[string]any{"message": "Product Added", "product": created})
}

// UpdateProduct updates an existing product (admin only)
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := decodeJSON(w, r, &product); err != nil {
		pc.Errors.Respond(w, r, err)
		return
	}
	updated, err := pc.Catalog.Update(r.Context(), mux.Vars(r)["id"], product)
	if err != nil {
		pc.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"product": updated})
}

// DeleteProduct deletes a product (admin only)
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := pc.Catalog.Remove(r.Context(), mux.Vars(r)["id"]); err != nil {
		pc.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"message": "Product Removed"})
}
