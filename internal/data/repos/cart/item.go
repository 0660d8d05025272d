package cart

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type CartItemRepo interface {
	Create(dbc dbctx.Context, items []*types.CartItem) ([]*types.CartItem, error)
	GetByID(dbc dbctx.Context, itemID uuid.UUID) (*types.CartItem, error)
	GetByCartID(dbc dbctx.Context, cartID uuid.UUID) ([]types.CartItem, error)
	UpdateFields(dbc dbctx.Context, itemID uuid.UUID, updates map[string]any) error
	DeleteByID(dbc dbctx.Context, itemID uuid.UUID) error
	DeleteByCartID(dbc dbctx.Context, cartID uuid.UUID) error
}

type cartItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCartItemRepo(db *gorm.DB, baseLog *logger.Logger) CartItemRepo {
	repoLog := baseLog.With("repo", "CartItemRepo")
	return &cartItemRepo{db: db, log: repoLog}
}

func (r *cartItemRepo) Create(dbc dbctx.Context, items []*types.CartItem) ([]*types.CartItem, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(items) == 0 {
		return []*types.CartItem{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *cartItemRepo) GetByID(dbc dbctx.Context, itemID uuid.UUID) (*types.CartItem, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.CartItem
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", itemID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *cartItemRepo) GetByCartID(dbc dbctx.Context, cartID uuid.UUID) ([]types.CartItem, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []types.CartItem
	if err := transaction.WithContext(dbc.Ctx).
		Where("cart_id = ?", cartID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *cartItemRepo) UpdateFields(dbc dbctx.Context, itemID uuid.UUID, updates map[string]any) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.CartItem{}).
		Where("id = ?", itemID).
		Updates(updates).Error
}

func (r *cartItemRepo) DeleteByID(dbc dbctx.Context, itemID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", itemID).
		Delete(&types.CartItem{}).Error
}

func (r *cartItemRepo) DeleteByCartID(dbc dbctx.Context, cartID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Where("cart_id = ?", cartID).
		Delete(&types.CartItem{}).Error
}
