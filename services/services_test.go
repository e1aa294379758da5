package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"forever-ecommerce/cache"
	"forever-ecommerce/events"
	"forever-ecommerce/payments"
	"forever-ecommerce/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentEmail struct {
	kind, to, name, subject, body string
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (f *fakeEmail) record(e sentEmail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, e)
	return nil
}

func (f *fakeEmail) SendVerificationOTP(_ context.Context, to, name, otp string) error {
	return f.record(sentEmail{kind: "verify", to: to, name: name, body: otp})
}

func (f *fakeEmail) SendPasswordResetOTP(_ context.Context, to, name, otp string) error {
	return f.record(sentEmail{kind: "reset", to: to, name: name, body: otp})
}

func (f *fakeEmail) SendOrderNotification(_ context.Context, to, name, subject, body string) error {
	return f.record(sentEmail{kind: "order", to: to, name: name, subject: subject, body: body})
}

func (f *fakeEmail) last() sentEmail {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentEmail{}
	}
	return f.sent[len(f.sent)-1]
}

type fakeStripe struct {
	created   []payments.CheckoutRequest
	session   payments.CheckoutSession
	paid      bool
	createErr error
}

func (f *fakeStripe) CreateCheckoutSession(_ context.Context, req payments.CheckoutRequest) (*payments.CheckoutSession, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	s := f.session
	return &s, nil
}

func (f *fakeStripe) GetCheckoutSession(_ context.Context, id string) (*payments.CheckoutSession, error) {
	if id != f.session.ID {
		return nil, errors.New("no such session")
	}
	return &payments.CheckoutSession{ID: id, URL: f.session.URL, Paid: f.paid}, nil
}

type fakeRazorpay struct {
	orders map[string]*payments.RemoteOrder
	next   int
}

func newFakeRazorpay() *fakeRazorpay {
	return &fakeRazorpay{orders: map[string]*payments.RemoteOrder{}}
}

func (f *fakeRazorpay) CreateOrder(_ context.Context, amount decimal.Decimal, currency, receipt string) (*payments.RemoteOrder, error) {
	f.next++
	o := &payments.RemoteOrder{
		ID:       "order_" + string(rune('A'+f.next-1)),
		Amount:   payments.ToMinorUnits(amount),
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}
	f.orders[o.ID] = o
	c := *o
	return &c, nil
}

func (f *fakeRazorpay) FetchOrder(_ context.Context, id string) (*payments.RemoteOrder, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, errors.New("no such order")
	}
	c := *o
	return &c, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e events.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestStore(t *testing.T) (*cache.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return cache.NewStore(rdb), mr
}

func fixedOTP(code string) func() (string, error) {
	return func() (string, error) { return code, nil }
}

// requireStatus asserts err is an APIError with the given status and message.
func requireStatus(t *testing.T, err error, status int, message string) *utils.APIError {
	t.Helper()
	require.Error(t, err)
	apiErr, ok := utils.AsAPIError(err)
	require.True(t, ok, "expected APIError, got %v", err)
	assert.Equal(t, status, apiErr.Status)
	if message != "" {
		assert.Equal(t, message, apiErr.Message)
	}
	return apiErr
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, 404, StatusOf(utils.NotFound("x")))
	assert.Equal(t, 500, StatusOf(errors.New("boom")))
}
