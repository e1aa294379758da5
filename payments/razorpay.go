package payments

import (
	"context"
	"fmt"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"
)

type RazorpayGateway struct {
	client *razorpay.Client
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

// CreateOrder registers a remote order. The SDK does not take a context.
func (g *RazorpayGateway) CreateOrder(_ context.Context, amount decimal.Decimal, currency, receipt string) (*RemoteOrder, error) {
	data := map[string]interface{}{
		"amount":   ToMinorUnits(amount),
		"currency": strings.ToUpper(currency),
		"receipt":  receipt,
	}
	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay: create order: %w", err)
	}
	return toRemoteOrder(body), nil
}

func (g *RazorpayGateway) FetchOrder(_ context.Context, id string) (*RemoteOrder, error) {
	body, err := g.client.Order.Fetch(id, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay: fetch order %s: %w", id, err)
	}
	return toRemoteOrder(body), nil
}

func toRemoteOrder(body map[string]interface{}) *RemoteOrder {
	o := &RemoteOrder{}
	o.ID, _ = body["id"].(string)
	o.Currency, _ = body["currency"].(string)
	o.Receipt, _ = body["receipt"].(string)
	o.Status, _ = body["status"].(string)
	switch v := body["amount"].(type) {
	case float64:
		o.Amount = int64(v)
	case int64:
		o.Amount = v
	case int:
		o.Amount = int64(v)
	}
	return o
}
