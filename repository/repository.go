package repository

import (
	"context"
	"time"

	"forever-ecommerce/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	UsersCollection    = "users"
	AdminsCollection   = "admins"
	ProductsCollection = "products"
	OrdersCollection   = "orders"
	SettingsCollection = "settings"
)

// UserFilter selects a page of users for the admin list.
type UserFilter struct {
	Page   int
	Limit  int
	Search string
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	SetVerified(ctx context.Context, id primitive.ObjectID) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, name, phone string, addresses []models.Address) (*models.User, error)
	UpdateContact(ctx context.Context, id primitive.ObjectID, name, email, phone string) (*models.User, error)
	AddAddress(ctx context.Context, id primitive.ObjectID, addr models.Address) error
	IncrementCartItem(ctx context.Context, id primitive.ObjectID, itemID, size string) error
	SetCartItem(ctx context.Context, id primitive.ObjectID, itemID, size string, quantity int) error
	ClearCart(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	Count(ctx context.Context) (int64, error)
	RecordLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
	RecordFailedLogin(ctx context.Context, id primitive.ObjectID) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, name, phone string) (*models.Admin, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (total int64, bestsellers int64, err error)
	Upsert(ctx context.Context, product *models.Product) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	SetGatewayRef(ctx context.Context, id primitive.ObjectID, ref string) error
	MarkPaid(ctx context.Context, id primitive.ObjectID) error
	DeleteUnpaid(ctx context.Context, id primitive.ObjectID) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	ListWithCustomers(ctx context.Context) ([]models.OrderWithCustomer, error)
	FindCreatedBetween(ctx context.Context, from, to time.Time) ([]models.Order, error)
	CountByStatus(ctx context.Context, from, to time.Time) (map[models.OrderStatus]int64, error)
}

type SettingsRepository interface {
	Get(ctx context.Context) (*models.Settings, error)
	Save(ctx context.Context, settings *models.Settings) error
}
