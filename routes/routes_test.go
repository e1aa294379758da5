package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"forever-ecommerce/cache"
	"forever-ecommerce/controllers"
	"forever-ecommerce/events"
	"forever-ecommerce/middleware"
	"forever-ecommerce/models"
	"forever-ecommerce/repository"
	"forever-ecommerce/repository/repotest"
	"forever-ecommerce/services"
	"forever-ecommerce/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type nopEmail struct{}

func (nopEmail) SendVerificationOTP(context.Context, string, string, string) error  { return nil }
func (nopEmail) SendPasswordResetOTP(context.Context, string, string, string) error { return nil }
func (nopEmail) SendOrderNotification(context.Context, string, string, string, string) error {
	return nil
}

type testApp struct {
	handler http.Handler
	users   *repotest.Users
	orders  *repotest.Orders
	admins  *services.AdminService
	shirt   models.Product
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := cache.NewStore(rdb)

	app := &testApp{
		users: repotest.NewUsers(),
		shirt: models.Product{ID: primitive.NewObjectID(), Name: "Cotton Shirt", Price: 100, Sizes: []string{"S", "M"}},
	}
	app.orders = repotest.NewOrders(app.users)
	products := repotest.NewProducts(app.shirt)
	adminRepo := repotest.NewAdmins()

	tokens := utils.NewJWTManager("test-secret")
	v := utils.NewValidator()
	errs := utils.ErrorResponder{}

	accounts := services.NewAccountService(app.users, store, nopEmail{}, tokens, v).
		WithOTPGenerator(func() (string, error) { return "123456", nil })
	app.admins = services.NewAdminService(adminRepo, tokens, v, "setup")
	checkout := services.NewCheckoutService(app.users, products, app.orders, nil, nil, events.NopPublisher{},
		services.CheckoutConfig{Currency: "INR", DeliveryCharge: 10})

	router := mux.NewRouter()
	RegisterRoutes(router, Controllers{
		User:     controllers.NewUserController(accounts, errs),
		Product:  controllers.NewProductController(services.NewCatalogService(products, v), errs),
		Cart:     controllers.NewCartController(services.NewCartService(app.users, products), errs),
		Order:    controllers.NewOrderController(checkout, errs, "http://localhost:5173"),
		Admin:    controllers.NewAdminController(app.admins, services.NewAnalyticsService(app.orders, app.users, products), errs),
		Settings: controllers.NewSettingsController(services.NewSettingsService(repotest.NewSettings(), products, v), errs),
		Health: controllers.NewHealthController(map[string]controllers.HealthCheck{
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}),
	}, middleware.NewAuth(tokens, app.admins, app.users, errs), nil)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app.handler = NewHandler(router, logger, []string{"http://localhost:5173"})
	return app
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func TestCustomerCheckoutFlow(t *testing.T) {
	app := newTestApp(t)
	const email = "asha@example.com"

	code, body := app.do(t, "POST", "/api/user/register", "", map[string]any{
		"name":     "Asha Rao",
		"email":    email,
		"password": "secret123",
		"phone":    "9876543210",
		"address": map[string]any{
			"street": "4 Park Street", "city": "Kolkata", "state": "West Bengal", "zip": "700016", "country": "India",
		},
	})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["userId"])

	code, body = app.do(t, "POST", "/api/user/login", "", map[string]any{"email": email, "password": "secret123"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Please verify your email before logging in.", body["message"])

	code, body = app.do(t, "POST", "/api/user/verify-otp", "", map[string]any{"email": email, "otp": "123456"})
	require.Equal(t, http.StatusOK, code, body)

	code, body = app.do(t, "POST", "/api/user/login", "", map[string]any{"email": email, "password": "secret123"})
	require.Equal(t, http.StatusOK, code, body)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	code, body = app.do(t, "POST", "/api/cart/add", token, map[string]any{"itemId": app.shirt.ID.Hex(), "size": "M"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Added To Cart", body["message"])

	code, body = app.do(t, "GET", "/api/cart/get", token, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, map[string]any{app.shirt.ID.Hex(): map[string]any{"M": float64(1)}}, body["cartData"])

	code, body = app.do(t, "POST", "/api/order/place", token, map[string]any{
		"items": []map[string]any{{"productId": app.shirt.ID.Hex(), "size": "M", "quantity": 2}},
		"address": map[string]any{
			"firstName": "Asha", "lastName": "Rao", "street": "4 Park Street",
			"city": "Kolkata", "state": "West Bengal", "zip": "700016", "country": "India",
		},
	})
	require.Equal(t, http.StatusOK, code, body)
	orderID, _ := body["orderId"].(string)
	require.NotEmpty(t, orderID)

	id, err := primitive.ObjectIDFromHex(orderID)
	require.NoError(t, err)
	order, err := app.orders.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 210.0, order.Amount)
	assert.Equal(t, models.PaymentCOD, order.PaymentMethod)

	code, body = app.do(t, "GET", "/api/cart/get", token, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, map[string]any{}, body["cartData"])

	code, body = app.do(t, "GET", "/api/order/userorders", token, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Len(t, body["orders"], 1)
}

func TestAdminUpdatesOrderStatus(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	user := &models.User{Name: "Ravi", Email: "ravi@example.com", Phone: "9876500000", IsVerified: true}
	require.NoError(t, app.users.Create(ctx, user))
	order := &models.Order{UserID: user.ID, Amount: 110, Status: models.StatusPending, PaymentMethod: models.PaymentCOD}
	require.NoError(t, app.orders.Create(ctx, order))

	created, err := app.admins.Seed(ctx, "root@example.com", "rootpass1")
	require.NoError(t, err)
	require.True(t, created)

	code, body := app.do(t, "POST", "/api/admin/login", "", map[string]any{"email": "root@example.com", "password": "rootpass1"})
	require.Equal(t, http.StatusOK, code, body)
	adminToken, _ := body["token"].(string)
	require.NotEmpty(t, adminToken)

	code, body = app.do(t, "PATCH", "/api/order/status/"+order.ID.Hex(), adminToken, map[string]any{"status": "Shipped"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Status Updated", body["message"])

	stored, err := app.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, stored.Status)

	code, body = app.do(t, "GET", "/api/order/admin/list", adminToken, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Len(t, body["orders"], 1)

	code, body = app.do(t, "DELETE", "/api/user/"+user.ID.Hex(), adminToken, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "User deleted successfully", body["message"])
	_, err = app.users.FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRouteErrors(t *testing.T) {
	app := newTestApp(t)

	userToken, err := utils.NewJWTManager("test-secret").GenerateJWT(primitive.NewObjectID().Hex(), "user", utils.UserTokenTTL)
	require.NoError(t, err)

	tests := []struct {
		name    string
		method  string
		path    string
		token   string
		body    any
		status  int
		message string
	}{
		{"unknown route", "GET", "/api/nope", "", nil, http.StatusNotFound, "Route not found"},
		{"wrong method", "DELETE", "/api/cart/add", "", nil, http.StatusMethodNotAllowed, "Method not allowed"},
		{"missing token", "GET", "/api/cart/get", "", nil, http.StatusUnauthorized, "not authorized"},
		{"bad token", "GET", "/api/user/profile", "garbage", nil, http.StatusUnauthorized, "invalid or expired token"},
		{"user token on admin route", "GET", "/api/admin/summary", userToken, nil, http.StatusForbidden, "forbidden"},
		{"setup without secret", "POST", "/api/admin/setup", "", map[string]any{"name": "A", "email": "a@example.com", "password": "password1"}, http.StatusUnauthorized, "Unauthorized admin setup attempt"},
		{"unknown product", "GET", "/api/product/" + primitive.NewObjectID().Hex(), "", nil, http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := app.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.status, code)
			assert.Equal(t, false, body["success"])
			if tt.message != "" {
				assert.Equal(t, tt.message, body["message"])
			}
		})
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "API Working", rec.Body.String())

	code, body := app.do(t, "GET", "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
}
