package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlatformSettings is a single-row table holding marketplace-wide knobs.
// CommissionRate is a percentage (10 means 10%).
type PlatformSettings struct {
	ID             int             `gorm:"column:id;primaryKey"`
	CommissionRate decimal.Decimal `gorm:"column:commission_rate;type:numeric(5,2);not null;default:10"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
