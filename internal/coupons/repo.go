package coupons

import (
	"context"
	"errors"
	"strings"

	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for coupons and redemptions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, coupon *models.Coupon) error
	Update(ctx context.Context, coupon *models.Coupon) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	FindByCode(ctx context.Context, code string, sellerID *uuid.UUID) (*models.Coupon, error)
	CodeExists(ctx context.Context, code string, sellerID *uuid.UUID, excludeID *uuid.UUID) (bool, error)
	ListBySeller(ctx context.Context, sellerID *uuid.UUID) ([]models.Coupon, error)
	CountUserRedemptions(ctx context.Context, couponID, userID uuid.UUID) (int64, error)
	IncrementUsage(ctx context.Context, couponID uuid.UUID, usageLimit *int) (bool, error)
	InsertRedemption(ctx context.Context, redemption *models.CouponRedemption) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a coupon repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, coupon *models.Coupon) error {
	coupon.Code = strings.ToUpper(strings.TrimSpace(coupon.Code))
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *repositoryImpl) Update(ctx context.Context, coupon *models.Coupon) error {
	coupon.Code = strings.ToUpper(strings.TrimSpace(coupon.Code))
	return r.db.WithContext(ctx).Save(coupon).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).First(&coupon, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// FindByCode resolves a code for the given seller scope. A seller-scoped
// coupon shadows a platform-wide one with the same code.
func (r *repositoryImpl) FindByCode(ctx context.Context, code string, sellerID *uuid.UUID) (*models.Coupon, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	if sellerID != nil {
		var scoped models.Coupon
		err := r.db.WithContext(ctx).
			First(&scoped, "code = ? AND seller_id = ?", normalized, *sellerID).Error
		if err == nil {
			return &scoped, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	var platform models.Coupon
	err := r.db.WithContext(ctx).
		First(&platform, "code = ? AND seller_id IS NULL", normalized).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &platform, nil
}

func (r *repositoryImpl) CodeExists(ctx context.Context, code string, sellerID *uuid.UUID, excludeID *uuid.UUID) (bool, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	query := r.db.WithContext(ctx).Model(&models.Coupon{}).Where("code = ?", normalized)
	if sellerID == nil {
		query = query.Where("seller_id IS NULL")
	} else {
		query = query.Where("seller_id = ?", *sellerID)
	}
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repositoryImpl) ListBySeller(ctx context.Context, sellerID *uuid.UUID) ([]models.Coupon, error) {
	query := r.db.WithContext(ctx).Model(&models.Coupon{})
	if sellerID == nil {
		query = query.Where("seller_id IS NULL")
	} else {
		query = query.Where("seller_id = ?", *sellerID)
	}
	var coupons []models.Coupon
	err := query.Order("created_at DESC").Find(&coupons).Error
	return coupons, err
}

func (r *repositoryImpl) CountUserRedemptions(ctx context.Context, couponID, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CouponRedemption{}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Count(&count).Error
	return count, err
}

// IncrementUsage bumps usage_count atomically. With a cap, the conditional
// UPDATE loses the race cleanly: zero rows affected means the cap was hit by
// a concurrent redemption.
func (r *repositoryImpl) IncrementUsage(ctx context.Context, couponID uuid.UUID, usageLimit *int) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Coupon{}).Where("id = ?", couponID)
	if usageLimit != nil {
		query = query.Where("usage_count < ?", *usageLimit)
	}
	result := query.UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) InsertRedemption(ctx context.Context, redemption *models.CouponRedemption) error {
	return r.db.WithContext(ctx).Create(redemption).Error
}
