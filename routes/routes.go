package routes

import (
	"log/slog"
	"net/http"

	"forever-ecommerce/controllers"
	"forever-ecommerce/middleware"
	"forever-ecommerce/utils"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// Controllers groups every HTTP controller the router dispatches to.
type Controllers struct {
	User     *controllers.UserController
	Product  *controllers.ProductController
	Cart     *controllers.CartController
	Order    *controllers.OrderController
	Admin    *controllers.AdminController
	Settings *controllers.SettingsController
	Health   *controllers.HealthController
}

// RegisterRoutes sets up all the routes for the application. adminLimit guards
// the admin endpoints and may be nil.
func RegisterRoutes(router *mux.Router, c Controllers, auth *middleware.Auth, adminLimit mux.MiddlewareFunc) {
	if adminLimit == nil {
		adminLimit = func(h http.Handler) http.Handler { return h }
	}
	authed := func(h http.HandlerFunc) http.Handler {
		return auth.AuthMiddleware(h)
	}
	verified := func(h http.HandlerFunc) http.Handler {
		return auth.AuthMiddleware(auth.EnsureVerified(h))
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return adminLimit(auth.AuthMiddleware(auth.AdminMiddleware(h)))
	}

	router.HandleFunc("/", c.Health.Root).Methods("GET")
	router.HandleFunc("/healthz", c.Health.Healthz).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	// User routes
	user := api.PathPrefix("/user").Subrouter()
	user.HandleFunc("/register", c.User.Register).Methods("POST")
	user.HandleFunc("/verify-otp", c.User.VerifyOTP).Methods("POST")
	user.HandleFunc("/resend-otp", c.User.ResendOTP).Methods("POST")
	user.HandleFunc("/login", c.User.Login).Methods("POST")
	user.HandleFunc("/forgot-password", c.User.ForgotPassword).Methods("POST")
	user.HandleFunc("/reset-password", c.User.ResetPassword).Methods("POST")
	user.Handle("/profile", authed(c.User.GetProfile)).Methods("GET")
	user.Handle("/profile", authed(c.User.UpdateProfile)).Methods("PUT")
	user.Handle("/list", admin(c.User.ListUsers)).Methods("GET")
	user.Handle("/{userId}", admin(c.User.UpdateUser)).Methods("PUT")
	user.Handle("/{userId}", admin(c.User.DeleteUser)).Methods("DELETE")

	// Product routes
	product := api.PathPrefix("/product").Subrouter()
	product.HandleFunc("/list", c.Product.GetProducts).Methods("GET")
	product.Handle("/add", admin(c.Product.CreateProduct)).Methods("POST")
	product.HandleFunc("/{id}", c.Product.GetProductByID).Methods("GET")
	product.Handle("/{id}", admin(c.Product.UpdateProduct)).Methods("PUT")
	product.Handle("/{id}", admin(c.Product.DeleteProduct)).Methods("DELETE")

	// Cart routes
	cart := api.PathPrefix("/cart").Subrouter()
	cart.Handle("/add", authed(c.Cart.AddToCart)).Methods("POST")
	cart.Handle("/update", authed(c.Cart.UpdateCart)).Methods("POST")
	cart.Handle("/get", authed(c.Cart.GetCart)).Methods("GET", "POST")

	// Order routes
	order := api.PathPrefix("/order").Subrouter()
	order.Handle("/place", verified(c.Order.PlaceOrder)).Methods("POST")
	order.Handle("/stripe", verified(c.Order.PlaceOrderStripe)).Methods("POST")
	order.Handle("/razorpay", verified(c.Order.PlaceOrderRazorpay)).Methods("POST")
	order.Handle("/verifyStripe", authed(c.Order.VerifyStripe)).Methods("POST")
	order.Handle("/verifyRazorpay", authed(c.Order.VerifyRazorpay)).Methods("POST")
	order.Handle("/userorders", authed(c.Order.UserOrders)).Methods("GET", "POST")
	order.Handle("/admin/list", admin(c.Order.AllOrders)).Methods("GET")
	order.Handle("/status/{orderId}", admin(c.Order.UpdateStatus)).Methods("PATCH")

	// Admin routes
	adm := api.PathPrefix("/admin").Subrouter()
	adm.Handle("/login", adminLimit(http.HandlerFunc(c.Admin.Login))).Methods("POST")
	adm.Handle("/setup", adminLimit(http.HandlerFunc(c.Admin.Setup))).Methods("POST")
	adm.Handle("/profile", admin(c.Admin.GetProfile)).Methods("GET")
	adm.Handle("/profile", admin(c.Admin.UpdateProfile)).Methods("PUT")
	adm.Handle("/summary", admin(c.Admin.Summary)).Methods("GET")
	adm.Handle("/settings", admin(c.Settings.GetSettings)).Methods("GET")
	adm.Handle("/settings", admin(c.Settings.UpdateSettings)).Methods("PUT")
	adm.Handle("/backup", admin(c.Settings.Backup)).Methods("GET")
	adm.Handle("/restore", admin(c.Settings.Restore)).Methods("POST")

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.Fail(w, http.StatusNotFound, "Route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.Fail(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
}

// NewHandler wraps the router with request logging, proxy header handling,
// CORS and panic recovery.
func NewHandler(router *mux.Router, logger *slog.Logger, allowedOrigins []string) http.Handler {
	router.Use(middleware.RequestLogger(logger))

	cors := handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "setup-secret", middleware.RequestIDHeader}),
		handlers.ExposedHeaders([]string{middleware.RequestIDHeader, "Retry-After"}),
		handlers.AllowCredentials(),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger}),
		handlers.PrintRecoveryStack(false),
	)
	return handlers.ProxyHeaders(recovery(cors(router)))
}

type recoveryLogger struct {
	logger *slog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error("panic recovered", "panic", v)
}

var _ handlers.RecoveryHandlerLogger = recoveryLogger{}
