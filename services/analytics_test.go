package services

import (
	"context"
	"testing"
	"time"

	"forever-ecommerce/models"
	"forever-ecommerce/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name              string
		current, previous float64
		want              float64
	}{
		{"growth from zero", 5, 0, 100},
		{"nothing either side", 0, 0, 0},
		{"doubled", 20, 10, 100},
		{"halved", 5, 10, -50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PercentChange(tt.current, tt.previous), 1e-9)
		})
	}
}

func TestWindowFor(t *testing.T) {
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

	w := WindowFor("month", now)
	assert.Equal(t, now.AddDate(0, 0, -30), w.From)
	assert.Equal(t, now.AddDate(0, 0, -60), w.PrevFrom)

	assert.Equal(t, now.AddDate(0, 0, -7), WindowFor("", now).From)
	assert.Equal(t, now.AddDate(0, 0, -7), WindowFor("decade", now).From)
	assert.Equal(t, now.AddDate(0, 0, -90), WindowFor("QUARTER", now).From)
}

func TestBuildSummary(t *testing.T) {
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	w := WindowFor("week", now)
	customer := &models.User{ID: primitive.NewObjectID(), Name: "Asha"}

	order := func(amount float64, status models.OrderStatus, at time.Time, userID primitive.ObjectID) models.Order {
		return models.Order{ID: primitive.NewObjectID(), UserID: userID, Amount: amount, Status: status, CreatedAt: at}
	}
	guest := order(40, models.StatusShipped, now.Add(-2*time.Hour), primitive.NewObjectID())
	guest.Address = models.Address{FirstName: "Ravi", LastName: "Kumar"}

	in := SummaryInput{
		Window: w,
		Orders: []models.Order{
			order(100, models.StatusPending, now.AddDate(0, 0, -1), customer.ID),
			order(60, models.StatusDelivered, now.AddDate(0, 0, -3), customer.ID),
			order(999, models.StatusCancelled, now.Add(-time.Hour), customer.ID),
			guest,
		},
		PrevOrders: []models.Order{
			order(100, models.StatusDelivered, now.AddDate(0, 0, -10), customer.ID),
		},
		Customers:     map[primitive.ObjectID]*models.User{customer.ID: customer},
		TotalProducts: 12,
		Bestsellers:   3,
		NewCustomers:  4,
		PrevCustomers: 0,
		StatusCounts:  map[models.OrderStatus]int64{models.StatusPending: 1, models.StatusCancelled: 1},
	}

	got := BuildSummary(in)

	assert.Equal(t, 3, got.TotalOrders)
	assert.Equal(t, 200.0, got.TotalRevenue)
	assert.Equal(t, int64(12), got.TotalProducts)
	assert.Equal(t, int64(3), got.BestsellerCount)
	assert.InDelta(t, 100.0, got.TotalRevenueChange, 1e-9)
	assert.InDelta(t, 200.0, got.TotalOrdersChange, 1e-9)
	assert.InDelta(t, 100.0, got.NewCustomersChange, 1e-9)
	assert.Equal(t, StatusCounts{Pending: 1, Cancelled: 1}, got.StatusCounts)

	require.Len(t, got.SalesData, 8)
	assert.Equal(t, "2024-06-23", got.SalesData[0].Date)
	assert.Equal(t, "2024-06-30", got.SalesData[7].Date)
	assert.Equal(t, 40.0, got.SalesData[7].Amount)
	assert.Equal(t, 100.0, got.SalesData[6].Amount)
	assert.Equal(t, 60.0, got.SalesData[4].Amount)

	require.Len(t, got.RecentOrders, 3)
	assert.Equal(t, "Ravi Kumar", got.RecentOrders[0].Customer)
	assert.Equal(t, "Asha", got.RecentOrders[1].Customer)
	assert.Equal(t, "29 Jun 2024", got.RecentOrders[1].Date)
	assert.Len(t, got.RecentOrders[0].ID, 6)
}

func TestAnalyticsService_Summary(t *testing.T) {
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	users := repotest.NewUsers()
	users.Clock = func() time.Time { return now.AddDate(0, 0, -2) }
	customer := &models.User{Name: "Asha", Email: "asha@example.com"}
	require.NoError(t, users.Create(ctx, customer))

	orders := repotest.NewOrders(users)
	for _, o := range []models.Order{
		{UserID: customer.ID, Amount: 110, Status: models.StatusPending, CreatedAt: now.AddDate(0, 0, -1)},
		{UserID: customer.ID, Amount: 50, Status: models.StatusCancelled, CreatedAt: now.AddDate(0, 0, -1)},
		{UserID: customer.ID, Amount: 55, Status: models.StatusDelivered, CreatedAt: now.AddDate(0, 0, -9)},
	} {
		o := o
		require.NoError(t, orders.Create(ctx, &o))
	}
	products := repotest.NewProducts(
		models.Product{Name: "A", Bestseller: true},
		models.Product{Name: "B"},
	)

	svc := NewAnalyticsService(orders, users, products)
	svc.now = func() time.Time { return now }

	got, err := svc.Summary(ctx, "week")
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalOrders)
	assert.Equal(t, 110.0, got.TotalRevenue)
	assert.InDelta(t, 100.0, got.TotalRevenueChange, 1e-9)
	assert.InDelta(t, 0.0, got.TotalOrdersChange, 1e-9)
	assert.Equal(t, int64(2), got.TotalProducts)
	assert.Equal(t, int64(1), got.BestsellerCount)
	assert.Equal(t, int64(1), got.NewCustomers)
	assert.Equal(t, int64(1), got.StatusCounts.Cancelled)
	require.Len(t, got.RecentOrders, 1)
	assert.Equal(t, "Asha", got.RecentOrders[0].Customer)
}
