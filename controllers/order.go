package controllers

import (
	"net/http"

	"forever-ecommerce/services"
	"forever-ecommerce/utils"

	"github.com/gorilla/mux"
)

// OrderController handles checkout, payment verification and order management
type OrderController struct {
	Checkout *services.CheckoutService
	Errors   utils.ErrorResponder
	// DefaultOrigin builds gateway return URLs when the request carries no Origin header.
	DefaultOrigin string
}

// NewOrderController creates a new OrderController
func NewOrderController(checkout *services.CheckoutService, errs utils.ErrorResponder, defaultOrigin string) *OrderController {
	return &OrderController{Checkout: checkout, Errors: errs, DefaultOrigin: defaultOrigin}
}

func (oc *OrderController) checkoutRequest(w http.ResponseWriter, r *http.Request) (services.CheckoutRequest, bool) {
	var req services.CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		oc.Errors.Respond(w, r, err)
		return req, false
	}
	return req, true
}

// PlaceOrder places a cash-on-delivery order
func (oc *OrderController) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		oc.Errors.Respond(w, r, err)
		return
	}
	req, ok := oc.checkoutRequest(w, r)
	if !ok {
		return
	}

	order, err := oc.Checkout.PlaceCOD(r.Context(), userID, req)
	if err != nil {
		oc.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{
		"message": "Order Placed Successfully",
		"orderId": order.ID.Hex(),
	})
}

// PlaceOrderStripe creates a pending order and returns the hosted checkout URL
func (oc *OrderController) PlaceOrderStripe(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		oc.Errors.Respond(w, r, err)
		return
	}
	req, ok := oc.checkoutRequest(w, r)
	if !ok {
		return
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = oc.DefaultOrigin
	}
	sessionURL, err := oc.Checkout.PlaceStripe(r.Context(), userID, req, origin)
	if err != nil {
		oc.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"session_url": sessionURL})
}

func (oc *OrderController) VerifyStripe(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		oc.Errors.Respond(w, r, err)
		return
	}
	var req struct {
		OrderID string   `json:"orderId"`
		Success flexBool `json:"success"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		oc.Errors.Respond(w, r, err)
		return
	}

	paid, err := oc.Checkout.VerifyStripe(r.Context(), userID, req.OrderID, bool(req.Success))
	if err != nil {
		oc.Errors.Respond(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"success": paid})
}

// PlaceOrderRazorpay creates a pending order and the matching gateway order
func (oc *OrderController) PlaceOrderRazorpay(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		oc.Errors.Respond(w, r, err)
		return
	}
	req, ok := oc.checkoutRequest(w, r)
	if !ok {
		return
	}

	remote, err := oc.Checkout.PlaceRazorpay(r.Context(), userID, req)
	if err != nil {
		oc.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"order": remote})
}

func (oc *OrderController) VerifyRazorpay(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		oc.Errors.Respond(w, r, err)
		return
	}
	var req struct {
		RazorpayOrderID string `json:"razorpay_order_id"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		oc.Errors.Respond(w, r, err)
		return
	}

	paid, err := oc.Checkout.VerifyRazorpay(r.Context(), userID, req.RazorpayOrderID)
	if err != nil {
		oc.Errors.Respond(w, r, err)
		return
	}
	if !paid {
		utils.WriteJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Payment Failed"})
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"message": "Payment Successful"})
}

// UserOrders lists the authenticated user's orders
func (oc *OrderController) UserOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		oc.Errors.Respond(w, r, err)
		return
	}
	orders, err := oc.Checkout.UserOrders(r.Context(), userID)
	if err != nil {
		oc.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"orders": orders})
}

// AllOrders lists every order with its customer (admin)
func (oc *OrderController) AllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := oc.Checkout.ListOrders(r.Context())
	if err != nil {
		oc.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"orders": orders})
}

// UpdateStatus sets the lifecycle status of an order (admin)
func (oc *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		oc.Errors.Respond(w, r, err)
		return
	}

	if _, err := oc.Checkout.UpdateStatus(r.Context(), mux.Vars(r)["orderId"], req.Status); err != nil {
		oc.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"message": "Status Updated"})
}
