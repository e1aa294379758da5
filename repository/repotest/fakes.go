package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"forever-ecommerce/models"
	"forever-ecommerce/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Admins struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.Admin
}

func NewAdmins() *Admins {
	return &Admins{byID: map[primitive.ObjectID]*models.Admin{}}
}

func (r *Admins) Create(_ context.Context, admin *models.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Email == admin.Email {
			return repository.ErrDuplicate
		}
	}
	if admin.ID.IsZero() {
		admin.ID = primitive.NewObjectID()
	}
	if admin.Role == "" {
		admin.Role = models.RoleAdmin
	}
	c := *admin
	r.byID[admin.ID] = &c
	return nil
}

func (r *Admins) FindByID(_ context.Context, id primitive.ObjectID) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (r *Admins) FindByEmail(_ context.Context, email string) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Email == email {
			c := *a
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Admins) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

func (r *Admins) RecordLogin(_ context.Context, id primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byID[id]; ok {
		a.LastLogin = &at
		a.FailedLoginAttempts = 0
	}
	return nil
}

func (r *Admins) RecordFailedLogin(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byID[id]; ok {
		a.FailedLoginAttempts++
	}
	return nil
}

func (r *Admins) UpdateProfile(_ context.Context, id primitive.ObjectID, name, phone string) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	a.Name, a.Phone = name, phone
	c := *a
	c.Password = ""
	return &c, nil
}

type Products struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.Product
}

func NewProducts(seed ...models.Product) *Products {
	r := &Products{byID: map[primitive.ObjectID]*models.Product{}}
	for i := range seed {
		p := seed[i]
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		r.byID[p.ID] = &p
	}
	return r
}

func (r *Products) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	c := *product
	r.byID[product.ID] = &c
	return nil
}

func (r *Products) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r *Products) FindByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[primitive.ObjectID]*models.Product{}
	for _, id := range ids {
		if p, ok := r.byID[id]; ok {
			c := *p
			out[id] = &c
		}
	}
	return out, nil
}

func (r *Products) List(_ context.Context) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Product{}
	for _, p := range r.byID {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (r *Products) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[product.ID]; !ok {
		return repository.ErrNotFound
	}
	c := *product
	r.byID[product.ID] = &c
	return nil
}

func (r *Products) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *Products) Count(_ context.Context) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best int64
	for _, p := range r.byID {
		if p.Bestseller {
			best++
		}
	}
	return int64(len(r.byID)), best, nil
}

func (r *Products) Upsert(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *product
	r.byID[product.ID] = &c
	return nil
}

type Orders struct {
	mu    sync.Mutex
	byID  map[primitive.ObjectID]*models.Order
	users *Users
	Clock func() time.Time
}

// NewOrders returns an order store that joins customers from users, which may be nil.
func NewOrders(users *Users) *Orders {
	return &Orders{byID: map[primitive.ObjectID]*models.Order{}, users: users, Clock: time.Now}
}

func copyOrder(o *models.Order) *models.Order {
	c := *o
	c.Items = append([]models.OrderItem{}, o.Items...)
	return &c
}

func (r *Orders) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = r.Clock().UTC()
	}
	order.UpdatedAt = order.CreatedAt
	if order.Status == "" {
		order.Status = models.StatusPending
	}
	r.byID[order.ID] = copyOrder(order)
	return nil
}

func (r *Orders) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyOrder(o), nil
}

func (r *Orders) SetGatewayRef(_ context.Context, id primitive.ObjectID, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.GatewayRef = ref
	return nil
}

func (r *Orders) MarkPaid(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Payment = true
	return nil
}

func (r *Orders) DeleteUnpaid(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok || o.Payment {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *Orders) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	o.Status = status
	return copyOrder(o), nil
}

func (r *Orders) sorted(keep func(o *models.Order) bool) []models.Order {
	out := []models.Order{}
	for _, o := range r.byID {
		if keep(o) {
			out = append(out, *copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *Orders) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(o *models.Order) bool { return o.UserID == userID }), nil
}

func (r *Orders) ListWithCustomers(ctx context.Context) ([]models.OrderWithCustomer, error) {
	r.mu.Lock()
	orders := r.sorted(func(*models.Order) bool { return true })
	r.mu.Unlock()

	out := make([]models.OrderWithCustomer, 0, len(orders))
	for _, o := range orders {
		row := models.OrderWithCustomer{Order: o}
		if r.users != nil {
			if u, err := r.users.FindByID(ctx, o.UserID); err == nil {
				row.User = &models.Customer{Name: u.Name, Email: u.Email}
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func (r *Orders) FindCreatedBetween(_ context.Context, from, to time.Time) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(o *models.Order) bool {
		return !o.CreatedAt.Before(from) && o.CreatedAt.Before(to)
	}), nil
}

func (r *Orders) CountByStatus(_ context.Context, from, to time.Time) (map[models.OrderStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[models.OrderStatus]int64{}
	for _, o := range r.byID {
		if !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
			counts[o.Status]++
		}
	}
	return counts, nil
}

// All returns every stored order, newest first.
func (r *Orders) All() []models.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(*models.Order) bool { return true })
}

type Settings struct {
	mu sync.Mutex
	s  *models.Settings
}

func NewSettings() *Settings {
	return &Settings{}
}

func (r *Settings) Get(_ context.Context) (*models.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.s == nil {
		return nil, repository.ErrNotFound
	}
	c := *r.s
	return &c, nil
}

func (r *Settings) Save(_ context.Context, settings *models.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	settings.ID = models.SettingsID
	c := *settings
	r.s = &c
	return nil
}

var (
	_ repository.UserRepository     = (*Users)(nil)
	_ repository.AdminRepository    = (*Admins)(nil)
	_ repository.ProductRepository  = (*Products)(nil)
	_ repository.OrderRepository    = (*Orders)(nil)
	_ repository.SettingsRepository = (*Settings)(nil)
)
