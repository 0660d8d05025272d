package cart

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type CartRepo interface {
	Create(dbc dbctx.Context, carts []*types.Cart) ([]*types.Cart, error)
	GetByID(dbc dbctx.Context, cartID uuid.UUID) (*types.Cart, error)
	// LockByID reads the cart row under FOR UPDATE; concurrent mutations of
	// the same cart serialize here so total recomputation always runs against
	// a transaction-consistent item set.
	LockByID(dbc dbctx.Context, cartID uuid.UUID) (*types.Cart, error)
	GetActiveByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Cart, error)
	GetActiveBySessionID(dbc dbctx.Context, sessionID string) (*types.Cart, error)
	UpdateFields(dbc dbctx.Context, cartID uuid.UUID, updates map[string]any) error
	Deactivate(dbc dbctx.Context, cartID uuid.UUID) error
}

type cartRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCartRepo(db *gorm.DB, baseLog *logger.Logger) CartRepo {
	repoLog := baseLog.With("repo", "CartRepo")
	return &cartRepo{db: db, log: repoLog}
}

func (r *cartRepo) Create(dbc dbctx.Context, carts []*types.Cart) ([]*types.Cart, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(carts) == 0 {
		return []*types.Cart{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&carts).Error; err != nil {
		return nil, err
	}
	return carts, nil
}

func (r *cartRepo) GetByID(dbc dbctx.Context, cartID uuid.UUID) (*types.Cart, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Cart
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Items").
		Where("id = ?", cartID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *cartRepo) LockByID(dbc dbctx.Context, cartID uuid.UUID) (*types.Cart, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Cart
	if err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", cartID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *cartRepo) GetActiveByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Cart, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Cart
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Items").
		Where("user_id = ? AND is_active", userID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *cartRepo) GetActiveBySessionID(dbc dbctx.Context, sessionID string) (*types.Cart, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Cart
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Items").
		Where("session_id = ? AND is_active", sessionID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *cartRepo) UpdateFields(dbc dbctx.Context, cartID uuid.UUID, updates map[string]any) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Cart{}).
		Where("id = ?", cartID).
		Updates(updates).Error
}

func (r *cartRepo) Deactivate(dbc dbctx.Context, cartID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Cart{}).
		Where("id = ?", cartID).
		Update("is_active", false).Error
}
