// Package services – OrderService
//
// This file implements OrderService, which fans incoming CRM orders out to
// the chats actively bound to the target warehouse. Orders are not persisted
// here; the CRM remains their system of record and this service only decides
// who gets told, renders the notification, and hands it to the Notifier
// seam. Signature verification of the webhook happens at the HTTP layer
// before the payload ever reaches this service.

package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-warehouse-backend/internal/domain"
	"github.com/tbourn/go-warehouse-backend/internal/notify"
	"github.com/tbourn/go-warehouse-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// defaultPaymentType mirrors the CRM's default when the field is omitted.
const defaultPaymentType = "cash"

// OrderService dispatches incoming orders to bound chats.
type OrderService struct {
	// DB is the GORM handle used to resolve active bindings.
	DB *gorm.DB
	// Notifier delivers rendered notifications; LogNotifier by default.
	Notifier notify.Notifier
}

// NewOrderService constructs an OrderService.
func NewOrderService(db *gorm.DB, n notify.Notifier) *OrderService {
	return &OrderService{DB: db, Notifier: n}
}

// DispatchNewOrder validates the order, resolves every chat actively bound
// to its warehouse, and notifies each one. It returns the number of chats
// that were notified.
//
// Errors: ErrInvalidOrder for a payload that fails validation,
// ErrNoActiveBinding when nobody is bound to the warehouse (the CRM may
// retry once someone activates), ErrStorageUnavailable for binding-store
// faults. Per-chat delivery failures do not abort the fan-out; the order
// fails only if no chat could be reached at all.
func (s *OrderService) DispatchNewOrder(ctx context.Context, o *domain.Order) (int, error) {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "DispatchNewOrder")
	defer span.End()

	if o == nil {
		return 0, ErrInvalidOrder
	}
	o.OrderNumber = strings.TrimSpace(o.OrderNumber)
	o.WarehouseID = strings.TrimSpace(o.WarehouseID)
	if o.OrderNumber == "" || o.WarehouseID == "" {
		return 0, ErrInvalidOrder
	}
	if o.TotalAmount < 0 {
		return 0, ErrInvalidOrder
	}
	for _, it := range o.Items {
		if strings.TrimSpace(it.Name) == "" || it.Quantity <= 0 || it.Price < 0 {
			return 0, ErrInvalidOrder
		}
	}
	if o.PaymentType == "" {
		o.PaymentType = defaultPaymentType
	}

	span.SetAttributes(
		attribute.String("order.number", o.OrderNumber),
		attribute.String("warehouse.id", o.WarehouseID),
	)

	bindings, err := repo.FindActiveByWarehouse(ctx, s.DB, o.WarehouseID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if len(bindings) == 0 {
		return 0, ErrNoActiveBinding
	}

	text := notify.FormatNewOrder(o)

	delivered := 0
	var lastErr error
	for _, b := range bindings {
		if err := s.Notifier.Notify(ctx, b.ChatID, text); err != nil {
			lastErr = err
			continue
		}
		delivered++
	}
	span.SetAttributes(attribute.Int("order.delivered", delivered))

	if delivered == 0 && lastErr != nil {
		return 0, fmt.Errorf("order dispatch: %w", lastErr)
	}
	return delivered, nil
}
