package reviews

import (
	"context"
	"errors"

	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db/models"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists reviews and their maintained rollups.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	InsertReview(ctx context.Context, review *models.OrderReview) error
	GetReviewByOrder(ctx context.Context, orderID uuid.UUID) (*models.OrderReview, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]models.OrderReview, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]models.OrderReview, error)
	ApplyToRollup(ctx context.Context, subjectType enums.ReviewSubjectType, subjectID uuid.UUID, review *models.OrderReview) error
	GetRollup(ctx context.Context, subjectType enums.ReviewSubjectType, subjectID uuid.UUID) (*models.ReviewRollup, error)
	LoadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a gorm-backed review repository.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) InsertReview(ctx context.Context, review *models.OrderReview) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *repositoryImpl) GetReviewByOrder(ctx context.Context, orderID uuid.UUID) (*models.OrderReview, error) {
	var review models.OrderReview
	err := r.db.WithContext(ctx).First(&review, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *repositoryImpl) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]models.OrderReview, error) {
	if limit <= 0 {
		limit = 20
	}
	var reviews []models.OrderReview
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *repositoryImpl) ListByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]models.OrderReview, error) {
	if limit <= 0 {
		limit = 20
	}
	var reviews []models.OrderReview
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// ApplyToRollup folds one review into the subject's aggregate in a single
// upsert. Star deltas are passed as values so the conflict branch mirrors
// the insert branch exactly.
func (r *repositoryImpl) ApplyToRollup(ctx context.Context, subjectType enums.ReviewSubjectType, subjectID uuid.UUID, review *models.OrderReview) error {
	deliverySum, deliveryCount := optionalRating(review.DeliveryRating)
	qualitySum, qualityCount := optionalRating(review.QualityRating)
	serviceSum, serviceCount := optionalRating(review.ServiceRating)
	recommend := int64(0)
	if review.Recommend {
		recommend = 1
	}

	var stars [5]int64
	if review.Rating >= 1 && review.Rating <= 5 {
		stars[review.Rating-1] = 1
	}

	return r.db.WithContext(ctx).Exec(`
		INSERT INTO review_rollups (
			subject_type, subject_id, review_count, rating_sum,
			delivery_sum, delivery_count, quality_sum, quality_count,
			service_sum, service_count, recommend_count,
			stars_1, stars_2, stars_3, stars_4, stars_5, updated_at
		) VALUES (?, ?, 1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW())
		ON CONFLICT (subject_type, subject_id) DO UPDATE SET
			review_count = review_rollups.review_count + 1,
			rating_sum = review_rollups.rating_sum + EXCLUDED.rating_sum,
			delivery_sum = review_rollups.delivery_sum + EXCLUDED.delivery_sum,
			delivery_count = review_rollups.delivery_count + EXCLUDED.delivery_count,
			quality_sum = review_rollups.quality_sum + EXCLUDED.quality_sum,
			quality_count = review_rollups.quality_count + EXCLUDED.quality_count,
			service_sum = review_rollups.service_sum + EXCLUDED.service_sum,
			service_count = review_rollups.service_count + EXCLUDED.service_count,
			recommend_count = review_rollups.recommend_count + EXCLUDED.recommend_count,
			stars_1 = review_rollups.stars_1 + EXCLUDED.stars_1,
			stars_2 = review_rollups.stars_2 + EXCLUDED.stars_2,
			stars_3 = review_rollups.stars_3 + EXCLUDED.stars_3,
			stars_4 = review_rollups.stars_4 + EXCLUDED.stars_4,
			stars_5 = review_rollups.stars_5 + EXCLUDED.stars_5,
			updated_at = NOW()`,
		subjectType, subjectID, int64(review.Rating),
		deliverySum, deliveryCount, qualitySum, qualityCount,
		serviceSum, serviceCount, recommend,
		stars[0], stars[1], stars[2], stars[3], stars[4]).Error
}

func optionalRating(value *int) (int64, int64) {
	if value == nil {
		return 0, 0
	}
	return int64(*value), 1
}

func (r *repositoryImpl) GetRollup(ctx context.Context, subjectType enums.ReviewSubjectType, subjectID uuid.UUID) (*models.ReviewRollup, error) {
	var rollup models.ReviewRollup
	err := r.db.WithContext(ctx).
		First(&rollup, "subject_type = ? AND subject_id = ?", subjectType, subjectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rollup, nil
}

func (r *repositoryImpl) LoadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}
