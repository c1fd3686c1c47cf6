package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// HealthChecker probes the database with a trivial query.
type HealthChecker struct {
	db *gorm.DB
}

// NewHealthChecker creates a HealthChecker.
func NewHealthChecker(db *gorm.DB) *HealthChecker {
	return &HealthChecker{db: db}
}

// Check runs SELECT 1 and returns how long it took.
func (h *HealthChecker) Check(ctx context.Context) (time.Duration, error) {
	start := time.Now()

	var result int
	if err := h.db.WithContext(ctx).Raw("SELECT 1").Scan(&result).Error; err != nil {
		return 0, fmt.Errorf("database health check failed: %w", err)
	}
	if result != 1 {
		return 0, fmt.Errorf("database health check returned %d", result)
	}

	return time.Since(start), nil
}
