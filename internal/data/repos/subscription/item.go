package subscription

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type SubscriptionItemRepo interface {
	Create(dbc dbctx.Context, items []*types.SubscriptionItem) ([]*types.SubscriptionItem, error)
	GetByID(dbc dbctx.Context, itemID uuid.UUID) (*types.SubscriptionItem, error)
	GetBySubscriptionID(dbc dbctx.Context, subscriptionID uuid.UUID) ([]types.SubscriptionItem, error)
	CountBySubscriptionID(dbc dbctx.Context, subscriptionID uuid.UUID) (int64, error)
	UpdateFields(dbc dbctx.Context, itemID uuid.UUID, updates map[string]any) error
	DeleteByID(dbc dbctx.Context, itemID uuid.UUID) error
}

type subscriptionItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubscriptionItemRepo(db *gorm.DB, baseLog *logger.Logger) SubscriptionItemRepo {
	repoLog := baseLog.With("repo", "SubscriptionItemRepo")
	return &subscriptionItemRepo{db: db, log: repoLog}
}

func (r *subscriptionItemRepo) Create(dbc dbctx.Context, items []*types.SubscriptionItem) ([]*types.SubscriptionItem, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(items) == 0 {
		return []*types.SubscriptionItem{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *subscriptionItemRepo) GetByID(dbc dbctx.Context, itemID uuid.UUID) (*types.SubscriptionItem, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.SubscriptionItem
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", itemID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *subscriptionItemRepo) GetBySubscriptionID(dbc dbctx.Context, subscriptionID uuid.UUID) ([]types.SubscriptionItem, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []types.SubscriptionItem
	if err := transaction.WithContext(dbc.Ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *subscriptionItemRepo) CountBySubscriptionID(dbc dbctx.Context, subscriptionID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.SubscriptionItem{}).
		Where("subscription_id = ?", subscriptionID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *subscriptionItemRepo) UpdateFields(dbc dbctx.Context, itemID uuid.UUID, updates map[string]any) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.SubscriptionItem{}).
		Where("id = ?", itemID).
		Updates(updates).Error
}

func (r *subscriptionItemRepo) DeleteByID(dbc dbctx.Context, itemID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", itemID).
		Delete(&types.SubscriptionItem{}).Error
}
