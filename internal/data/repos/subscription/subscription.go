package subscription

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/storefront-backend/internal/domain"
	sub "github.com/yungbote/storefront-backend/internal/domain/subscription"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type SubscriptionRepo interface {
	Create(dbc dbctx.Context, subscription *types.Subscription) (*types.Subscription, error)
	GetByID(dbc dbctx.Context, subscriptionID uuid.UUID) (*types.Subscription, error)
	// LockByID loads the row FOR UPDATE so lifecycle transitions and renewal
	// processing serialize on the same subscription.
	LockByID(dbc dbctx.Context, subscriptionID uuid.UUID) (*types.Subscription, error)
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) ([]types.Subscription, error)
	GetDueForRenewal(dbc dbctx.Context, now time.Time, limit int) ([]types.Subscription, error)
	UpdateFields(dbc dbctx.Context, subscriptionID uuid.UUID, updates map[string]any) error
}

type subscriptionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubscriptionRepo(db *gorm.DB, baseLog *logger.Logger) SubscriptionRepo {
	repoLog := baseLog.With("repo", "SubscriptionRepo")
	return &subscriptionRepo{db: db, log: repoLog}
}

func (r *subscriptionRepo) Create(dbc dbctx.Context, subscription *types.Subscription) (*types.Subscription, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(subscription).Error; err != nil {
		return nil, err
	}
	return subscription, nil
}

func (r *subscriptionRepo) GetByID(dbc dbctx.Context, subscriptionID uuid.UUID) (*types.Subscription, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Subscription
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Items").
		Where("id = ?", subscriptionID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *subscriptionRepo) LockByID(dbc dbctx.Context, subscriptionID uuid.UUID) (*types.Subscription, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Subscription
	if err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", subscriptionID).
		First(&result).Error; err != nil {
		return nil, err
	}

	var items []types.SubscriptionItem
	if err := transaction.WithContext(dbc.Ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	result.Items = items
	return &result, nil
}

func (r *subscriptionRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) ([]types.Subscription, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []types.Subscription
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *subscriptionRepo) GetDueForRenewal(dbc dbctx.Context, now time.Time, limit int) ([]types.Subscription, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(dbc.Ctx).
		Preload("Items").
		Where("status = ? AND auto_renew AND next_order_date <= ?", sub.StatusActive, now).
		Order("next_order_date ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var results []types.Subscription
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *subscriptionRepo) UpdateFields(dbc dbctx.Context, subscriptionID uuid.UUID, updates map[string]any) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Subscription{}).
		Where("id = ?", subscriptionID).
		Updates(updates).Error
}
