package models

import (
	"time"

	"github.com/ayoubterari/entrecoiffeur-backend/pkg/enums"
	"github.com/google/uuid"
)

// OrderReview is the single review a buyer can leave on a delivered order.
type OrderReview struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID  `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	BuyerID        uuid.UUID  `gorm:"column:buyer_id;type:uuid;not null;index"`
	SellerID       uuid.UUID  `gorm:"column:seller_id;type:uuid;not null;index"`
	ProductID      *uuid.UUID `gorm:"column:product_id;type:uuid;index"`
	Rating         int        `gorm:"column:rating;not null"`
	DeliveryRating *int       `gorm:"column:delivery_rating"`
	QualityRating  *int       `gorm:"column:quality_rating"`
	ServiceRating  *int       `gorm:"column:service_rating"`
	Recommend      bool       `gorm:"column:recommend;not null;default:false"`
	Comment        string     `gorm:"column:comment"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// ReviewRollup is the maintained rating aggregate per subject. It is updated
// in the same transaction as the review insert, never recomputed by scans.
type ReviewRollup struct {
	SubjectType    enums.ReviewSubjectType `gorm:"column:subject_type;type:text;primaryKey"`
	SubjectID      uuid.UUID               `gorm:"column:subject_id;type:uuid;primaryKey"`
	ReviewCount    int64                   `gorm:"column:review_count;not null;default:0"`
	RatingSum      int64                   `gorm:"column:rating_sum;not null;default:0"`
	DeliverySum    int64                   `gorm:"column:delivery_sum;not null;default:0"`
	DeliveryCount  int64                   `gorm:"column:delivery_count;not null;default:0"`
	QualitySum     int64                   `gorm:"column:quality_sum;not null;default:0"`
	QualityCount   int64                   `gorm:"column:quality_count;not null;default:0"`
	ServiceSum     int64                   `gorm:"column:service_sum;not null;default:0"`
	ServiceCount   int64                   `gorm:"column:service_count;not null;default:0"`
	RecommendCount int64                   `gorm:"column:recommend_count;not null;default:0"`
	Stars1         int64                   `gorm:"column:stars_1;not null;default:0"`
	Stars2         int64                   `gorm:"column:stars_2;not null;default:0"`
	Stars3         int64                   `gorm:"column:stars_3;not null;default:0"`
	Stars4         int64                   `gorm:"column:stars_4;not null;default:0"`
	Stars5         int64                   `gorm:"column:stars_5;not null;default:0"`
	UpdatedAt      time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
