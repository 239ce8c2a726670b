package sequence

import (
	"errors"

	"gorm.io/gorm"
)

// Repository hands out per-scope, per-period sequence values. The increment is
// a single upsert statement, so two concurrent callers can never observe the
// same value.
type Repository interface {
	NextTx(tx *gorm.DB, scope, period string) (int64, error)
}

type repositoryImpl struct{}

// NewRepository returns a document counter repository.
func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) NextTx(tx *gorm.DB, scope, period string) (int64, error) {
	if tx == nil {
		return 0, errors.New("transaction required")
	}
	if scope == "" || period == "" {
		return 0, errors.New("scope and period are required")
	}

	var value int64
	err := tx.Raw(`
		INSERT INTO document_counters (scope, period, value, updated_at)
		VALUES (?, ?, 1, NOW())
		ON CONFLICT (scope, period)
		DO UPDATE SET value = document_counters.value + 1, updated_at = NOW()
		RETURNING value
	`, scope, period).Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}
