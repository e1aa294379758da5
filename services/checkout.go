package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"forever-ecommerce/events"
	"forever-ecommerce/models"
	"forever-ecommerce/payments"
	"forever-ecommerce/repository"
	"forever-ecommerce/utils"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const deliveryLineName = "Delivery Charges"

type CheckoutItem struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type CheckoutRequest struct {
	Items   []CheckoutItem `json:"items"`
	Address models.Address `json:"address"`
}

type CheckoutConfig struct {
	Currency       string
	DeliveryCharge float64
}

// CheckoutService turns a cart snapshot into an order and drives the payment branch.
type CheckoutService struct {
	users     repository.UserRepository
	products  repository.ProductRepository
	orders    repository.OrderRepository
	stripe    payments.CheckoutGateway
	razorpay  payments.OrderGateway
	publisher events.Publisher
	currency  string
	delivery  decimal.Decimal
}

// NewCheckoutService wires the order flow. Either gateway may be nil, which disables its branch.
func NewCheckoutService(
	users repository.UserRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	stripe payments.CheckoutGateway,
	razorpay payments.OrderGateway,
	publisher events.Publisher,
	cfg CheckoutConfig,
) *CheckoutService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	currency := strings.ToLower(cfg.Currency)
	if currency == "" {
		currency = "inr"
	}
	return &CheckoutService{
		users:     users,
		products:  products,
		orders:    orders,
		stripe:    stripe,
		razorpay:  razorpay,
		publisher: publisher,
		currency:  currency,
		delivery:  decimal.NewFromFloat(cfg.DeliveryCharge),
	}
}

// buildOrder prices every line from the catalog so client-supplied prices are never trusted.
func (s *CheckoutService) buildOrder(ctx context.Context, userID primitive.ObjectID, req CheckoutRequest, method models.PaymentMethod) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, utils.BadRequest("Order must contain at least one item")
	}

	ids := make([]primitive.ObjectID, 0, len(req.Items))
	for _, item := range req.Items {
		id, err := parseID(item.ProductID, "product id")
		if err != nil {
			return nil, err
		}
		if item.Quantity < 1 {
			return nil, utils.BadRequest("Quantity must be at least 1")
		}
		if !models.ValidSize(item.Size) {
			return nil, utils.BadRequest("Invalid size")
		}
		ids = append(ids, id)
	}

	catalog, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	items := make([]models.OrderItem, 0, len(req.Items))
	for i, item := range req.Items {
		product, ok := catalog[ids[i]]
		if !ok {
			return nil, utils.BadRequest("Product not found: " + item.ProductID)
		}
		if !product.HasSize(item.Size) {
			return nil, utils.BadRequest(fmt.Sprintf("Size %s is not available for %s", item.Size, product.Name))
		}
		price := decimal.NewFromFloat(product.Price)
		line := price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Image:     product.Thumbnail(),
			Subtotal:  line.InexactFloat64(),
		})
	}

	return &models.Order{
		UserID:        userID,
		Items:         items,
		Subtotal:      subtotal.InexactFloat64(),
		Shipping:      s.delivery.InexactFloat64(),
		Amount:        subtotal.Add(s.delivery).InexactFloat64(),
		Address:       utils.NormalizeAddress(req.Address),
		Status:        models.StatusPending,
		PaymentMethod: method,
		Payment:       false,
	}, nil
}

// PlaceCOD persists a cash-on-delivery order, empties the cart and remembers a new complete address.
func (s *CheckoutService) PlaceCOD(ctx context.Context, userID primitive.ObjectID, req CheckoutRequest) (*models.Order, error) {
	order, err := s.buildOrder(ctx, userID, req, models.PaymentCOD)
	if err != nil {
		return nil, err
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	if err := s.users.ClearCart(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.rememberAddress(ctx, userID, order.Address); err != nil {
		return nil, err
	}
	s.publish(ctx, events.OrderPlaced, order)
	return order, nil
}

func (s *CheckoutService) rememberAddress(ctx context.Context, userID primitive.ObjectID, addr models.Address) error {
	if !addr.Complete() {
		return nil
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return notFound(err, "User not found")
	}
	if user.HasAddress(addr) {
		return nil
	}
	saved := addr
	saved.FirstName, saved.LastName = "", ""
	return s.users.AddAddress(ctx, userID, saved)
}

// PlaceStripe persists a pending order and opens a hosted checkout session for it.
func (s *CheckoutService) PlaceStripe(ctx context.Context, userID primitive.ObjectID, req CheckoutRequest, origin string) (string, error) {
	if s.stripe == nil {
		return "", utils.NewAPIError(http.StatusServiceUnavailable, "Stripe payments are not available")
	}
	order, err := s.buildOrder(ctx, userID, req, models.PaymentStripe)
	if err != nil {
		return "", err
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return "", err
	}

	lines := make([]payments.LineItem, 0, len(order.Items)+1)
	for _, item := range order.Items {
		lines = append(lines, payments.LineItem{
			Name:      item.Name,
			UnitPrice: decimal.NewFromFloat(item.Price),
			Quantity:  int64(item.Quantity),
		})
	}
	lines = append(lines, payments.LineItem{Name: deliveryLineName, UnitPrice: s.delivery, Quantity: 1})

	orderID := order.ID.Hex()
	session, err := s.stripe.CreateCheckoutSession(ctx, payments.CheckoutRequest{
		Currency:   s.currency,
		Items:      lines,
		SuccessURL: verifyURL(origin, true, orderID),
		CancelURL:  verifyURL(origin, false, orderID),
		Reference:  orderID,
	})
	if err != nil {
		if delErr := s.orders.DeleteUnpaid(ctx, order.ID); delErr != nil {
			slog.ErrorContext(ctx, "failed to drop pending order", "orderId", orderID, "error", delErr)
		}
		return "", err
	}
	if err := s.orders.SetGatewayRef(ctx, order.ID, session.ID); err != nil {
		return "", err
	}
	s.publish(ctx, events.OrderPlaced, order)
	return session.URL, nil
}

func verifyURL(origin string, success bool, orderID string) string {
	q := url.Values{}
	q.Set("success", fmt.Sprintf("%t", success))
	q.Set("orderId", orderID)
	return strings.TrimRight(origin, "/") + "/verify?" + q.Encode()
}

// VerifyStripe settles a hosted checkout. A success claim from the client is
// only honoured once the gateway reports the session as paid; a failure claim
// drops the pending order.
func (s *CheckoutService) VerifyStripe(ctx context.Context, userID primitive.ObjectID, orderIDHex string, success bool) (bool, error) {
	orderID, err := parseID(orderIDHex, "order id")
	if err != nil {
		return false, err
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return false, notFound(err, "Order not found")
	}
	if order.UserID != userID || order.PaymentMethod != models.PaymentStripe {
		return false, utils.NotFound("Order not found")
	}
	if order.Payment {
		return true, nil
	}

	if !success {
		if err := s.orders.DeleteUnpaid(ctx, orderID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return false, err
		}
		return false, nil
	}

	if s.stripe == nil {
		return false, utils.NewAPIError(http.StatusServiceUnavailable, "Stripe payments are not available")
	}
	if order.GatewayRef == "" {
		return false, utils.BadRequest("Order has no checkout session")
	}
	session, err := s.stripe.GetCheckoutSession(ctx, order.GatewayRef)
	if err != nil {
		return false, err
	}
	if !session.Paid {
		return false, nil
	}
	if err := s.settle(ctx, order); err != nil {
		return false, err
	}
	return true, nil
}

func (s *CheckoutService) settle(ctx context.Context, order *models.Order) error {
	if err := s.orders.MarkPaid(ctx, order.ID); err != nil {
		return err
	}
	if err := s.users.ClearCart(ctx, order.UserID); err != nil {
		return err
	}
	order.Payment = true
	s.publish(ctx, events.OrderPaid, order)
	return nil
}

// PlaceRazorpay persists a pending order and creates the matching remote order.
func (s *CheckoutService) PlaceRazorpay(ctx context.Context, userID primitive.ObjectID, req CheckoutRequest) (*payments.RemoteOrder, error) {
	if s.razorpay == nil {
		return nil, utils.NewAPIError(http.StatusServiceUnavailable, "Razorpay payments are not available")
	}
	order, err := s.buildOrder(ctx, userID, req, models.PaymentRazorpay)
	if err != nil {
		return nil, err
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	remote, err := s.razorpay.CreateOrder(ctx, decimal.NewFromFloat(order.Amount), s.currency, order.ID.Hex())
	if err != nil {
		if delErr := s.orders.DeleteUnpaid(ctx, order.ID); delErr != nil {
			slog.ErrorContext(ctx, "failed to drop pending order", "orderId", order.ID.Hex(), "error", delErr)
		}
		return nil, err
	}
	if err := s.orders.SetGatewayRef(ctx, order.ID, remote.ID); err != nil {
		return nil, err
	}
	s.publish(ctx, events.OrderPlaced, order)
	return remote, nil
}

// VerifyRazorpay re-fetches the remote order and settles its receipt order when paid.
func (s *CheckoutService) VerifyRazorpay(ctx context.Context, userID primitive.ObjectID, remoteID string) (bool, error) {
	if s.razorpay == nil {
		return false, utils.NewAPIError(http.StatusServiceUnavailable, "Razorpay payments are not available")
	}
	if strings.TrimSpace(remoteID) == "" {
		return false, utils.BadRequest("razorpay_order_id is required")
	}
	remote, err := s.razorpay.FetchOrder(ctx, remoteID)
	if err != nil {
		return false, err
	}
	if !remote.Paid() {
		return false, nil
	}

	orderID, err := parseID(remote.Receipt, "order receipt")
	if err != nil {
		return false, err
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return false, notFound(err, "Order not found")
	}
	if order.UserID != userID {
		return false, utils.NotFound("Order not found")
	}
	if order.Payment {
		return true, nil
	}
	if err := s.settle(ctx, order); err != nil {
		return false, err
	}
	return true, nil
}

func (s *CheckoutService) UserOrders(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *CheckoutService) ListOrders(ctx context.Context) ([]models.OrderWithCustomer, error) {
	return s.orders.ListWithCustomers(ctx)
}

// UpdateStatus moves an order to any status; there is no transition graph.
func (s *CheckoutService) UpdateStatus(ctx context.Context, orderIDHex, status string) (*models.Order, error) {
	if orderIDHex == "" || status == "" {
		return nil, utils.BadRequest("Order ID and status are required.")
	}
	orderID, err := parseID(orderIDHex, "order id")
	if err != nil {
		return nil, err
	}
	st := models.OrderStatus(status)
	if !st.Valid() {
		return nil, utils.BadRequest("Invalid order status")
	}
	order, err := s.orders.UpdateStatus(ctx, orderID, st)
	if err != nil {
		return nil, notFound(err, "Order not found")
	}
	s.publish(ctx, events.OrderStatusUpdated, order)
	return order, nil
}

func (s *CheckoutService) publish(ctx context.Context, typ events.EventType, order *models.Order) {
	event := events.OrderEvent{
		Type:          typ,
		OrderID:       order.ID.Hex(),
		UserID:        order.UserID.Hex(),
		Amount:        order.Amount,
		Status:        string(order.Status),
		PaymentMethod: string(order.PaymentMethod),
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish order event", "type", typ, "orderId", event.OrderID, "error", err)
	}
}
