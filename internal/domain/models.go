// Package domain defines the persistence models for warehouse bindings.
// These types are mapped with GORM and form the core data layer of the
// warehouse activation backend.
package domain

import "time"

// Binding status values persisted in WarehouseBinding.Status.
const (
	BindingStatusActive   = "active"
	BindingStatusInactive = "inactive"
)

// WarehouseBinding associates a messaging chat identity with a warehouse.
// It is the single source of truth for "is this chat currently bound, and
// to what". There is at most one row per chat identity: activation upserts
// the row, deactivation flips its status and never deletes it, so the last
// bound warehouse stays available for audit.
//
// Fields:
//   - ChatID: opaque unique key of the messaging session (primary key).
//   - WarehouseID: identifier of the bound warehouse; validated to exist
//     in CRM at bind time, preserved across deactivation.
//   - Status: "active" or "inactive" (enforced by DB constraint).
//   - ActivatedAt: set on every transition to active; kept unchanged when an
//     already-active chat re-activates the same warehouse.
//   - DeactivatedAt: set on the most recent transition to inactive.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type WarehouseBinding struct {
	ChatID        string     `json:"chat_id"        gorm:"type:varchar(64);primaryKey"`
	WarehouseID   string     `json:"warehouse_id"   gorm:"type:varchar(64);not null;index:idx_binding_warehouse"`
	Status        string     `json:"status"         gorm:"type:varchar(16);not null;check:status IN ('active','inactive')"`
	ActivatedAt   time.Time  `json:"activated_at"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName returns the database table name for WarehouseBinding.
func (WarehouseBinding) TableName() string { return "warehouse_bindings" }
