package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-warehouse-backend/internal/domain"
)

// BindingsStats returns aggregate metadata for the warehouse bindings table:
// the total number of rows and the maximum UpdatedAt timestamp among them.
//
// It executes two lightweight queries. The HTTP layer combines the results
// into a weak ETag for the admin listing, so a change to any binding
// invalidates cached pages. When no bindings exist, the returned count is 0
// and maxUpdatedAt is nil.
//
// Return values:
//   - count:        total bindings
//   - maxUpdatedAt: pointer to the greatest UpdatedAt, or nil if no rows
//   - err:          database error, if any
func BindingsStats(ctx context.Context, db *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.WarehouseBinding{})

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
