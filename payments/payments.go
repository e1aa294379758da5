// Package payments wraps the hosted-checkout and remote-order payment gateways.
package payments

import (
	"context"

	"github.com/shopspring/decimal"
)

// LineItem is one row on a hosted checkout page.
type LineItem struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int64
}

type CheckoutRequest struct {
	Currency   string
	Items      []LineItem
	SuccessURL string
	CancelURL  string
	Reference  string
}

type CheckoutSession struct {
	ID   string
	URL  string
	Paid bool
}

// CheckoutGateway creates hosted checkout sessions and reports their payment state.
type CheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error)
}

// RemoteOrder mirrors a gateway-side order captured in the browser.
type RemoteOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

func (o *RemoteOrder) Paid() bool {
	return o.Status == "paid"
}

// OrderGateway creates remote orders sized in minor units and fetches their status.
type OrderGateway interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*RemoteOrder, error)
	FetchOrder(ctx context.Context, id string) (*RemoteOrder, error)
}

var hundred = decimal.NewFromInt(100)

// ToMinorUnits converts a major-unit amount to the smallest currency unit, rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}
