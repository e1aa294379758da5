package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"forever-ecommerce/models"
	"forever-ecommerce/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const (
	dayLayout        = "2006-01-02"
	recentDateLayout = "02 Jan 2006"
	recentOrderLimit = 5
	guestCustomer    = "Guest Customer"
)

// rangeDays maps a range token to the window length in days.
var rangeDays = map[string]int{
	"week":    7,
	"month":   30,
	"quarter": 90,
}

type SalesPoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

type RecentOrder struct {
	ID       string  `json:"id"`
	Customer string  `json:"customer"`
	Date     string  `json:"date"`
	Amount   float64 `json:"amount"`
	Status   string  `json:"status"`
}

type StatusCounts struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Shipped    int64 `json:"shipped"`
	Delivered  int64 `json:"delivered"`
	Cancelled  int64 `json:"cancelled"`
}

type Summary struct {
	TotalOrders        int           `json:"totalOrders"`
	TotalRevenue       float64       `json:"totalRevenue"`
	TotalProducts      int64         `json:"totalProducts"`
	BestsellerCount    int64         `json:"bestsellerCount"`
	NewCustomers       int64         `json:"newCustomers"`
	TotalRevenueChange float64       `json:"totalRevenueChange"`
	TotalOrdersChange  float64       `json:"totalOrdersChange"`
	NewCustomersChange float64       `json:"newCustomersChange"`
	SalesData          []SalesPoint  `json:"salesData"`
	RecentOrders       []RecentOrder `json:"recentOrders"`
	StatusCounts       StatusCounts  `json:"statusCounts"`
}

// Window is the current reporting period and the equally long period before it.
type Window struct {
	Now      time.Time
	From     time.Time
	PrevFrom time.Time
}

// WindowFor resolves a range token; unknown or empty tokens mean "week".
func WindowFor(rangeToken string, now time.Time) Window {
	days, ok := rangeDays[strings.ToLower(rangeToken)]
	if !ok {
		days = rangeDays["week"]
	}
	return Window{
		Now:      now,
		From:     now.AddDate(0, 0, -days),
		PrevFrom: now.AddDate(0, 0, -2*days),
	}
}

// SummaryInput is everything BuildSummary needs, already fetched.
type SummaryInput struct {
	Window        Window
	Orders        []models.Order
	PrevOrders    []models.Order
	Customers     map[primitive.ObjectID]*models.User
	TotalProducts int64
	Bestsellers   int64
	NewCustomers  int64
	PrevCustomers int64
	StatusCounts  map[models.OrderStatus]int64
}

// BuildSummary computes the dashboard figures. Cancelled orders never count
// towards revenue, order totals, the sales series or the recent list.
func BuildSummary(in SummaryInput) Summary {
	valid := withoutCancelled(in.Orders)
	sort.SliceStable(valid, func(i, j int) bool { return valid[i].CreatedAt.After(valid[j].CreatedAt) })
	prevValid := withoutCancelled(in.PrevOrders)

	revenue := sumAmounts(valid)
	prevRevenue := sumAmounts(prevValid)

	return Summary{
		TotalOrders:        len(valid),
		TotalRevenue:       revenue,
		TotalProducts:      in.TotalProducts,
		BestsellerCount:    in.Bestsellers,
		NewCustomers:       in.NewCustomers,
		TotalRevenueChange: PercentChange(revenue, prevRevenue),
		TotalOrdersChange:  PercentChange(float64(len(valid)), float64(len(prevValid))),
		NewCustomersChange: PercentChange(float64(in.NewCustomers), float64(in.PrevCustomers)),
		SalesData:          salesSeries(in.Window, valid),
		RecentOrders:       recentOrders(valid, in.Customers),
		StatusCounts: StatusCounts{
			Pending:    in.StatusCounts[models.StatusPending],
			Processing: in.StatusCounts[models.StatusProcessing],
			Shipped:    in.StatusCounts[models.StatusShipped],
			Delivered:  in.StatusCounts[models.StatusDelivered],
			Cancelled:  in.StatusCounts[models.StatusCancelled],
		},
	}
}

// PercentChange is 100 when the previous value was zero and the current one is positive.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}

func withoutCancelled(orders []models.Order) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status != models.StatusCancelled {
			out = append(out, o)
		}
	}
	return out
}

func sumAmounts(orders []models.Order) float64 {
	total := 0.0
	for _, o := range orders {
		total += o.Amount
	}
	return total
}

// salesSeries pre-seeds one zero entry per UTC day from the window start to now.
func salesSeries(w Window, orders []models.Order) []SalesPoint {
	from := w.From.UTC()
	days := int(w.Now.Sub(w.From).Hours() / 24)
	series := make([]SalesPoint, 0, days+1)
	index := make(map[string]int, days+1)
	for i := 0; i <= days; i++ {
		day := from.AddDate(0, 0, i).Format(dayLayout)
		index[day] = len(series)
		series = append(series, SalesPoint{Date: day})
	}
	for _, o := range orders {
		if i, ok := index[o.CreatedAt.UTC().Format(dayLayout)]; ok {
			series[i].Amount += o.Amount
		}
	}
	return series
}

func recentOrders(orders []models.Order, customers map[primitive.ObjectID]*models.User) []RecentOrder {
	n := len(orders)
	if n > recentOrderLimit {
		n = recentOrderLimit
	}
	out := make([]RecentOrder, 0, n)
	for _, o := range orders[:n] {
		status := string(o.Status)
		if status == "" {
			status = string(models.StatusPending)
		}
		out = append(out, RecentOrder{
			ID:       ShortOrderID(o.ID),
			Customer: customerName(o, customers[o.UserID]),
			Date:     o.CreatedAt.UTC().Format(recentDateLayout),
			Amount:   o.Amount,
			Status:   status,
		})
	}
	return out
}

// ShortOrderID is the last six hex characters of the id, upper-cased.
func ShortOrderID(id primitive.ObjectID) string {
	hex := id.Hex()
	return strings.ToUpper(hex[len(hex)-6:])
}

func customerName(o models.Order, user *models.User) string {
	if user != nil && user.Name != "" {
		return user.Name
	}
	if name := strings.TrimSpace(o.Address.FirstName + " " + o.Address.LastName); name != "" {
		return name
	}
	if user != nil && user.Email != "" {
		return user.Email
	}
	if user != nil && user.Phone != "" {
		return user.Phone
	}
	return guestCustomer
}

// AnalyticsService gathers the dashboard inputs concurrently.
type AnalyticsService struct {
	orders   repository.OrderRepository
	users    repository.UserRepository
	products repository.ProductRepository
	now      func() time.Time
}

func NewAnalyticsService(orders repository.OrderRepository, users repository.UserRepository, products repository.ProductRepository) *AnalyticsService {
	return &AnalyticsService{orders: orders, users: users, products: products, now: time.Now}
}

func (s *AnalyticsService) Summary(ctx context.Context, rangeToken string) (*Summary, error) {
	in := SummaryInput{Window: WindowFor(rangeToken, s.now().UTC())}
	w := in.Window
	// Upper bound is slightly in the future so orders stamped during this request are included.
	until := w.Now.Add(time.Second)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		in.Orders, err = s.orders.FindCreatedBetween(gctx, w.From, until)
		return wrap("fetch orders", err)
	})
	g.Go(func() (err error) {
		in.PrevOrders, err = s.orders.FindCreatedBetween(gctx, w.PrevFrom, w.From)
		return wrap("fetch previous orders", err)
	})
	g.Go(func() (err error) {
		in.TotalProducts, in.Bestsellers, err = s.products.Count(gctx)
		return wrap("count products", err)
	})
	g.Go(func() (err error) {
		in.NewCustomers, err = s.users.CountCreatedBetween(gctx, w.From, until)
		return wrap("count customers", err)
	})
	g.Go(func() (err error) {
		in.PrevCustomers, err = s.users.CountCreatedBetween(gctx, w.PrevFrom, w.From)
		return wrap("count previous customers", err)
	})
	g.Go(func() (err error) {
		in.StatusCounts, err = s.orders.CountByStatus(gctx, w.From, until)
		return wrap("count statuses", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, recentOrderLimit)
	for _, o := range withoutCancelled(in.Orders) {
		if len(ids) == recentOrderLimit {
			break
		}
		ids = append(ids, o.UserID)
	}
	customers, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch customers: %w", err)
	}
	in.Customers = customers

	summary := BuildSummary(in)
	return &summary, nil
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", what, err)
}
