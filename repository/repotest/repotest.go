// Package repotest provides in-memory repositories for service and handler tests.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"forever-ecommerce/models"
	"forever-ecommerce/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Users struct {
	mu    sync.Mutex
	byID  map[primitive.ObjectID]*models.User
	Clock func() time.Time
}

func NewUsers() *Users {
	return &Users{byID: map[primitive.ObjectID]*models.User{}, Clock: time.Now}
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.Address = append([]models.Address{}, u.Address...)
	c.CartData = models.CartData{}
	for id, sizes := range u.CartData {
		c.CartData[id] = map[string]int{}
		for s, q := range sizes {
			c.CartData[id][s] = q
		}
	}
	return &c
}

func (r *Users) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == user.Email || (user.Phone != "" && u.Phone == user.Phone) {
			return repository.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.Clock().UTC()
	}
	user.UpdatedAt = user.CreatedAt
	if user.CartData == nil {
		user.CartData = models.CartData{}
	}
	r.byID[user.ID] = copyUser(user)
	return nil
}

func (r *Users) get(id primitive.ObjectID) (*models.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *Users) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return copyUser(u), nil
}

func (r *Users) FindByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[primitive.ObjectID]*models.User{}
	for _, id := range ids {
		if u, ok := r.byID[id]; ok {
			out[id] = copyUser(u)
		}
	}
	return out, nil
}

func (r *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Users) mutate(id primitive.ObjectID, fn func(u *models.User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(id)
	if err != nil {
		return err
	}
	return fn(u)
}

func (r *Users) SetVerified(_ context.Context, id primitive.ObjectID) error {
	return r.mutate(id, func(u *models.User) error { u.IsVerified = true; return nil })
}

func (r *Users) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	return r.mutate(id, func(u *models.User) error { u.Password = hash; return nil })
}

func (r *Users) UpdateProfile(_ context.Context, id primitive.ObjectID, name, phone string, addresses []models.Address) (*models.User, error) {
	var out *models.User
	err := r.mutate(id, func(u *models.User) error {
		u.Name, u.Phone, u.Address = name, phone, append([]models.Address{}, addresses...)
		out = copyUser(u)
		return nil
	})
	if out != nil {
		out.Password = ""
	}
	return out, err
}

func (r *Users) UpdateContact(_ context.Context, id primitive.ObjectID, name, email, phone string) (*models.User, error) {
	var out *models.User
	err := r.mutate(id, func(u *models.User) error {
		u.Name, u.Email, u.Phone = name, email, phone
		out = copyUser(u)
		return nil
	})
	if out != nil {
		out.Password = ""
	}
	return out, err
}

func (r *Users) AddAddress(_ context.Context, id primitive.ObjectID, addr models.Address) error {
	return r.mutate(id, func(u *models.User) error { u.Address = append(u.Address, addr); return nil })
}

func (r *Users) IncrementCartItem(_ context.Context, id primitive.ObjectID, itemID, size string) error {
	return r.mutate(id, func(u *models.User) error {
		if u.CartData == nil {
			u.CartData = models.CartData{}
		}
		if u.CartData[itemID] == nil {
			u.CartData[itemID] = map[string]int{}
		}
		u.CartData[itemID][size]++
		return nil
	})
}

func (r *Users) SetCartItem(_ context.Context, id primitive.ObjectID, itemID, size string, quantity int) error {
	return r.mutate(id, func(u *models.User) error {
		if quantity < 0 {
			return models.ErrInvalidQuantity
		}
		if quantity == 0 {
			delete(u.CartData[itemID], size)
			if len(u.CartData[itemID]) == 0 {
				delete(u.CartData, itemID)
			}
			return nil
		}
		if u.CartData == nil {
			u.CartData = models.CartData{}
		}
		if u.CartData[itemID] == nil {
			u.CartData[itemID] = map[string]int{}
		}
		u.CartData[itemID][size] = quantity
		return nil
	})
}

func (r *Users) ClearCart(_ context.Context, id primitive.ObjectID) error {
	return r.mutate(id, func(u *models.User) error { u.CartData = models.CartData{}; return nil })
}

func (r *Users) List(_ context.Context, filter repository.UserFilter) ([]models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	search := strings.ToLower(filter.Search)
	var matched []models.User
	for _, u := range r.byID {
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) &&
			!strings.Contains(strings.ToLower(u.Phone), search) {
			continue
		}
		c := copyUser(u)
		c.Password = ""
		c.CartData = nil
		matched = append(matched, *c)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return append([]models.User{}, matched[start:end]...), total, nil
}

func (r *Users) CountCreatedBetween(_ context.Context, from, to time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.byID {
		if !u.CreatedAt.Before(from) && u.CreatedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func (r *Users) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
