package reviews

import (
	"context"
	"time"

	dbpkg "github.com/ayoubterari/entrecoiffeur-backend/pkg/db"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db/models"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/enums"
	pkgerrors "github.com/ayoubterari/entrecoiffeur-backend/pkg/errors"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/outbox"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type dbClient interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CreateInput carries a buyer's review of a delivered order.
type CreateInput struct {
	OrderID        uuid.UUID
	BuyerID        uuid.UUID
	ProductID      *uuid.UUID
	Rating         int
	DeliveryRating *int
	QualityRating  *int
	ServiceRating  *int
	Recommend      bool
	Comment        string
}

// Stats is the derived view over a subject's rollup.
type Stats struct {
	SubjectType     enums.ReviewSubjectType `json:"subject_type"`
	SubjectID       uuid.UUID               `json:"subject_id"`
	ReviewCount     int64                   `json:"review_count"`
	AverageRating   decimal.Decimal         `json:"average_rating"`
	AverageDelivery *decimal.Decimal        `json:"average_delivery,omitempty"`
	AverageQuality  *decimal.Decimal        `json:"average_quality,omitempty"`
	AverageService  *decimal.Decimal        `json:"average_service,omitempty"`
	RecommendRate   decimal.Decimal         `json:"recommend_rate"`
	Histogram       [5]int64                `json:"histogram"`
}

// Service records order reviews and serves rating aggregates.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.OrderReview, error)
	SellerStats(ctx context.Context, sellerID uuid.UUID) (*Stats, error)
	ProductStats(ctx context.Context, productID uuid.UUID) (*Stats, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]models.OrderReview, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]models.OrderReview, error)
}

// ServiceParams carries review service dependencies.
type ServiceParams struct {
	DB     dbClient
	Repo   Repository
	Outbox eventEmitter
}

type service struct {
	db     dbClient
	repo   Repository
	events eventEmitter
	now    func() time.Time
}

// NewService wires review dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db client required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "review repository required")
	}
	return &service{
		db:     params.DB,
		repo:   params.Repo,
		events: params.Outbox,
		now:    time.Now,
	}, nil
}

// Create validates the review against its order and, in the same transaction,
// folds it into the seller rollup and (when a product is named) the product
// rollup.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.OrderReview, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var review *models.OrderReview
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.LoadOrder(ctx, input.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if order.BuyerID != input.BuyerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another buyer")
		}
		if order.Status != enums.OrderStatusDelivered {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only delivered orders can be reviewed")
		}

		existing, err := repo.GetReviewByOrder(ctx, input.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing review")
		}
		if existing != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "order already reviewed")
		}

		if input.ProductID != nil && !orderContainsProduct(order, *input.ProductID) {
			return pkgerrors.New(pkgerrors.CodeValidation, "product is not part of the order")
		}

		review = &models.OrderReview{
			ID:             uuid.New(),
			OrderID:        order.ID,
			BuyerID:        order.BuyerID,
			SellerID:       order.SellerID,
			ProductID:      input.ProductID,
			Rating:         input.Rating,
			DeliveryRating: input.DeliveryRating,
			QualityRating:  input.QualityRating,
			ServiceRating:  input.ServiceRating,
			Recommend:      input.Recommend,
			Comment:        input.Comment,
		}
		if err := repo.InsertReview(ctx, review); err != nil {
			if dbpkg.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "order already reviewed")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert review")
		}

		if err := repo.ApplyToRollup(ctx, enums.ReviewSubjectSeller, order.SellerID, review); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update seller rollup")
		}
		if input.ProductID != nil {
			if err := repo.ApplyToRollup(ctx, enums.ReviewSubjectProduct, *input.ProductID, review); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product rollup")
			}
		}

		if s.events != nil {
			return s.events.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventReviewCreated,
				AggregateType: enums.AggregateReview,
				AggregateID:   review.ID,
				Data: map[string]any{
					"order_id":  order.ID.String(),
					"seller_id": order.SellerID.String(),
					"rating":    review.Rating,
				},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

func validateInput(input CreateInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.BuyerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	for _, sub := range []*int{input.DeliveryRating, input.QualityRating, input.ServiceRating} {
		if sub != nil && (*sub < 1 || *sub > 5) {
			return pkgerrors.New(pkgerrors.CodeValidation, "sub-ratings must be between 1 and 5")
		}
	}
	return nil
}

func orderContainsProduct(order *models.Order, productID uuid.UUID) bool {
	for _, item := range order.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

func (s *service) SellerStats(ctx context.Context, sellerID uuid.UUID) (*Stats, error) {
	return s.stats(ctx, enums.ReviewSubjectSeller, sellerID)
}

func (s *service) ProductStats(ctx context.Context, productID uuid.UUID) (*Stats, error) {
	return s.stats(ctx, enums.ReviewSubjectProduct, productID)
}

func (s *service) stats(ctx context.Context, subjectType enums.ReviewSubjectType, subjectID uuid.UUID) (*Stats, error) {
	if subjectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject id required")
	}
	rollup, err := s.repo.GetRollup(ctx, subjectType, subjectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rollup")
	}

	stats := &Stats{
		SubjectType:   subjectType,
		SubjectID:     subjectID,
		AverageRating: decimal.Zero,
		RecommendRate: decimal.Zero,
	}
	if rollup == nil || rollup.ReviewCount == 0 {
		return stats, nil
	}

	count := decimal.NewFromInt(rollup.ReviewCount)
	stats.ReviewCount = rollup.ReviewCount
	stats.AverageRating = decimal.NewFromInt(rollup.RatingSum).Div(count).Round(2)
	stats.AverageDelivery = averageOf(rollup.DeliverySum, rollup.DeliveryCount)
	stats.AverageQuality = averageOf(rollup.QualitySum, rollup.QualityCount)
	stats.AverageService = averageOf(rollup.ServiceSum, rollup.ServiceCount)
	stats.RecommendRate = decimal.NewFromInt(rollup.RecommendCount).
		Mul(decimal.NewFromInt(100)).Div(count).Round(1)
	stats.Histogram = [5]int64{rollup.Stars1, rollup.Stars2, rollup.Stars3, rollup.Stars4, rollup.Stars5}
	return stats, nil
}

func averageOf(sum, count int64) *decimal.Decimal {
	if count == 0 {
		return nil
	}
	avg := decimal.NewFromInt(sum).Div(decimal.NewFromInt(count)).Round(2)
	return &avg
}

func (s *service) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]models.OrderReview, error) {
	reviews, err := s.repo.ListBySeller(ctx, sellerID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	return reviews, nil
}

func (s *service) ListByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]models.OrderReview, error) {
	reviews, err := s.repo.ListByProduct(ctx, productID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	return reviews, nil
}
