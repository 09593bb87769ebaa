// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// WarehouseBinding model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a binding is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Functions:
//
//   - GetBinding(ctx, db, chatID) -> *domain.WarehouseBinding, error
//     Fetches the binding row for a chat, or ErrNotFound if missing.
//
//   - UpsertActive(ctx, db, chatID, warehouseID, now) -> *domain.WarehouseBinding, error
//     Commits an active binding in a single INSERT ... ON CONFLICT statement.
//     The upsert keeps the original activated_at when the chat is already
//     active for the same warehouse, so re-activation never bumps the
//     timestamp and concurrent submits net exactly one activation.
//
//   - MarkInactive(ctx, db, chatID, now) -> *domain.WarehouseBinding, error
//     Flips an active binding to inactive with a single guarded UPDATE.
//     Returns ErrNotFound when the chat has no binding or is already
//     inactive. The row itself is never deleted.
//
//   - FindActiveByWarehouse(ctx, db, warehouseID) -> []domain.WarehouseBinding, error
//     Lists the chats currently active for a warehouse (order-webhook fanout).
//
//   - CountBindings / ListBindingsPage
//     Admin listing support with offset pagination.
//
// This repository is designed to be wrapped by a higher-level service
// (see services.ActivationService) which enforces CRM validation, conflict
// policy, and state-machine rules.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-warehouse-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// GetBinding fetches the binding row for chatID. If the record does not
// exist, it returns ErrNotFound. On other DB errors, the raw error is
// returned.
func GetBinding(ctx context.Context, db *gorm.DB, chatID string) (*domain.WarehouseBinding, error) {
	var b domain.WarehouseBinding
	err := db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// UpsertActive commits an active binding for chatID in one atomic statement.
// A missing row is inserted; an existing row is updated in place. The
// activated_at column is stamped with now unless the row is already active
// for the same warehouse, in which case the original activation timestamp is
// preserved (idempotent re-activation). deactivated_at keeps the most recent
// deactivation for audit.
//
// The single-statement upsert is what makes concurrent submits for the same
// chat safe: SQLite serializes the writes and both end up observing one row
// with one activated_at value.
func UpsertActive(ctx context.Context, db *gorm.DB, chatID, warehouseID string, now time.Time) (*domain.WarehouseBinding, error) {
	now = now.UTC()
	b := &domain.WarehouseBinding{
		ChatID:      chatID,
		WarehouseID: warehouseID,
		Status:      domain.BindingStatusActive,
		ActivatedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "chat_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"warehouse_id": warehouseID,
			"status":       domain.BindingStatusActive,
			"activated_at": gorm.Expr(
				"CASE WHEN warehouse_bindings.status = ? AND warehouse_bindings.warehouse_id = ? THEN warehouse_bindings.activated_at ELSE ? END",
				domain.BindingStatusActive, warehouseID, now,
			),
			"updated_at": now,
		}),
	}).Create(b).Error
	if err != nil {
		return nil, err
	}
	// Re-read so the caller sees the row as committed (preserved timestamps
	// are decided inside the statement, not in b).
	return GetBinding(ctx, db, chatID)
}

// MarkInactive transitions the binding for chatID from active to inactive,
// stamping deactivated_at with now. The WHERE clause carries the status
// guard, so a chat that is unbound or already inactive affects zero rows
// and yields ErrNotFound. On DB error, the raw error is returned.
func MarkInactive(ctx context.Context, db *gorm.DB, chatID string, now time.Time) (*domain.WarehouseBinding, error) {
	now = now.UTC()
	res := db.WithContext(ctx).
		Model(&domain.WarehouseBinding{}).
		Where("chat_id = ? AND status = ?", chatID, domain.BindingStatusActive).
		Updates(map[string]any{
			"status":         domain.BindingStatusInactive,
			"deactivated_at": now,
			"updated_at":     now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return GetBinding(ctx, db, chatID)
}

// FindActiveByWarehouse returns all bindings currently active for
// warehouseID, ordered by activation time ascending. An empty slice means no
// chat is bound to that warehouse right now.
func FindActiveByWarehouse(ctx context.Context, db *gorm.DB, warehouseID string) ([]domain.WarehouseBinding, error) {
	var out []domain.WarehouseBinding
	err := db.WithContext(ctx).
		Where("warehouse_id = ? AND status = ?", warehouseID, domain.BindingStatusActive).
		Order("activated_at asc").
		Find(&out).Error
	return out, err
}

// CountBindings returns the total number of binding rows.
// On DB error, it returns the error.
func CountBindings(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.WarehouseBinding{}).
		Count(&total).Error
	return total, err
}

// ListBindingsPage returns a paginated slice of bindings ordered by creation
// time descending. Use CountBindings to obtain the total for pagination
// metadata. On DB error, it returns the error.
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListBindingsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.WarehouseBinding, error) {
	var out []domain.WarehouseBinding
	err := db.WithContext(ctx).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
