package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tbourn/go-warehouse-backend/internal/domain"
	"github.com/tbourn/go-warehouse-backend/internal/repo"
)

// ----- Fake notifier -----

type notifyCall struct {
	ChatID string
	Text   string
}

type fakeNotifier struct {
	failFor map[string]error // per-chat delivery failures
	calls   []notifyCall
}

func (n *fakeNotifier) Notify(_ context.Context, chatID, text string) error {
	n.calls = append(n.calls, notifyCall{ChatID: chatID, Text: text})
	if err, ok := n.failFor[chatID]; ok {
		return err
	}
	return nil
}

func validOrder() *domain.Order {
	return &domain.Order{
		OrderNumber:     "N-100",
		WarehouseID:     "W1",
		CustomerName:    "Acme Traders",
		CustomerPhone:   "+35799123456",
		DeliveryAddress: "1 Harbour Rd",
		Items: []domain.OrderItem{
			{Name: "Pallet jack", Quantity: 2, Price: 249.9},
		},
		TotalAmount: 499.8,
	}
}

// ----- Tests -----

func TestNewOrderService(t *testing.T) {
	n := &fakeNotifier{}
	s := NewOrderService(nil, n)
	if s.Notifier != n {
		t.Errorf("notifier not retained")
	}
}

func TestDispatchNewOrder_FansOutToActiveBindings(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()
	t0 := time.Now().UTC().Add(-time.Hour)

	// chatA and chatB are live for W1, chatC deactivated, chatD elsewhere.
	if _, err := repo.UpsertActive(ctx, db, "chatA", "W1", t0); err != nil {
		t.Fatalf("seed chatA: %v", err)
	}
	if _, err := repo.UpsertActive(ctx, db, "chatB", "W1", t0.Add(time.Minute)); err != nil {
		t.Fatalf("seed chatB: %v", err)
	}
	if _, err := repo.UpsertActive(ctx, db, "chatC", "W1", t0); err != nil {
		t.Fatalf("seed chatC: %v", err)
	}
	if _, err := repo.MarkInactive(ctx, db, "chatC", t0.Add(2*time.Minute)); err != nil {
		t.Fatalf("deactivate chatC: %v", err)
	}
	if _, err := repo.UpsertActive(ctx, db, "chatD", "W2", t0); err != nil {
		t.Fatalf("seed chatD: %v", err)
	}

	n := &fakeNotifier{}
	s := NewOrderService(db, n)

	delivered, err := s.DispatchNewOrder(ctx, validOrder())
	if err != nil {
		t.Fatalf("DispatchNewOrder: %v", err)
	}
	if delivered != 2 {
		t.Fatalf("delivered = %d; want 2", delivered)
	}
	if len(n.calls) != 2 || n.calls[0].ChatID != "chatA" || n.calls[1].ChatID != "chatB" {
		t.Fatalf("unexpected fan-out order: %+v", n.calls)
	}
	// One rendering shared by every recipient.
	if n.calls[0].Text != n.calls[1].Text {
		t.Fatalf("recipients got different texts")
	}
	text := n.calls[0].Text
	for _, want := range []string{"New order #N-100", "Pallet jack x2", "Total: 499.80"} {
		if !strings.Contains(text, want) {
			t.Errorf("notification missing %q:\n%s", want, text)
		}
	}
}

func TestDispatchNewOrder_NoActiveBinding(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()

	n := &fakeNotifier{}
	s := NewOrderService(db, n)

	// Nobody ever bound.
	if _, err := s.DispatchNewOrder(ctx, validOrder()); !errors.Is(err, ErrNoActiveBinding) {
		t.Fatalf("expected ErrNoActiveBinding, got %v", err)
	}

	// A deactivated chat does not count either.
	if _, err := repo.UpsertActive(ctx, db, "chatA", "W1", time.Now().UTC()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := repo.MarkInactive(ctx, db, "chatA", time.Now().UTC()); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := s.DispatchNewOrder(ctx, validOrder()); !errors.Is(err, ErrNoActiveBinding) {
		t.Fatalf("expected ErrNoActiveBinding for inactive-only, got %v", err)
	}
	if len(n.calls) != 0 {
		t.Fatalf("notifier must not be called, got %+v", n.calls)
	}
}

func TestDispatchNewOrder_InvalidPayloads(t *testing.T) {
	db := newServiceDB(t)
	if _, err := repo.UpsertActive(context.Background(), db, "chatA", "W1", time.Now().UTC()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	n := &fakeNotifier{}
	s := NewOrderService(db, n)

	mutate := func(f func(*domain.Order)) *domain.Order {
		o := validOrder()
		f(o)
		return o
	}

	cases := map[string]*domain.Order{
		"nil order":       nil,
		"blank number":    mutate(func(o *domain.Order) { o.OrderNumber = "  " }),
		"blank warehouse": mutate(func(o *domain.Order) { o.WarehouseID = "" }),
		"negative total":  mutate(func(o *domain.Order) { o.TotalAmount = -1 }),
		"blank item name": mutate(func(o *domain.Order) { o.Items[0].Name = " " }),
		"zero quantity":   mutate(func(o *domain.Order) { o.Items[0].Quantity = 0 }),
		"negative price":  mutate(func(o *domain.Order) { o.Items[0].Price = -0.01 }),
	}
	for name, o := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := s.DispatchNewOrder(context.Background(), o); !errors.Is(err, ErrInvalidOrder) {
				t.Fatalf("expected ErrInvalidOrder, got %v", err)
			}
		})
	}
	if len(n.calls) != 0 {
		t.Fatalf("invalid orders must not reach the notifier")
	}
}

func TestDispatchNewOrder_DefaultsPaymentType(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()
	if _, err := repo.UpsertActive(ctx, db, "chatA", "W1", time.Now().UTC()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	n := &fakeNotifier{}
	s := NewOrderService(db, n)

	o := validOrder()
	o.PaymentType = ""
	if _, err := s.DispatchNewOrder(ctx, o); err != nil {
		t.Fatalf("DispatchNewOrder: %v", err)
	}
	if o.PaymentType != "cash" {
		t.Errorf("PaymentType = %q; want cash", o.PaymentType)
	}
	if !strings.Contains(n.calls[0].Text, "Payment: cash") {
		t.Errorf("notification missing default payment type:\n%s", n.calls[0].Text)
	}
}

func TestDispatchNewOrder_PartialDeliveryFailure(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()
	t0 := time.Now().UTC().Add(-time.Hour)
	if _, err := repo.UpsertActive(ctx, db, "chatA", "W1", t0); err != nil {
		t.Fatalf("seed chatA: %v", err)
	}
	if _, err := repo.UpsertActive(ctx, db, "chatB", "W1", t0.Add(time.Minute)); err != nil {
		t.Fatalf("seed chatB: %v", err)
	}

	n := &fakeNotifier{failFor: map[string]error{"chatA": errors.New("blocked by user")}}
	s := NewOrderService(db, n)

	delivered, err := s.DispatchNewOrder(ctx, validOrder())
	if err != nil {
		t.Fatalf("a partial failure must not fail the dispatch: %v", err)
	}
	if delivered != 1 {
		t.Fatalf("delivered = %d; want 1", delivered)
	}
	if len(n.calls) != 2 {
		t.Fatalf("fan-out must continue past failures, got %+v", n.calls)
	}
}

func TestDispatchNewOrder_AllDeliveriesFail(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()
	if _, err := repo.UpsertActive(ctx, db, "chatA", "W1", time.Now().UTC()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	sendErr := errors.New("transport down")
	n := &fakeNotifier{failFor: map[string]error{"chatA": sendErr}}
	s := NewOrderService(db, n)

	delivered, err := s.DispatchNewOrder(ctx, validOrder())
	if delivered != 0 || !errors.Is(err, sendErr) {
		t.Fatalf("expected (0, %v), got (%d, %v)", sendErr, delivered, err)
	}
}

func TestDispatchNewOrder_StorageFault(t *testing.T) {
	db := newServiceDB(t)
	db.Exec("DROP TABLE warehouse_bindings")

	s := NewOrderService(db, &fakeNotifier{})
	if _, err := s.DispatchNewOrder(context.Background(), validOrder()); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}
