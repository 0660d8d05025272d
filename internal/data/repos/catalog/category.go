package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type CategoryRepo interface {
	Create(dbc dbctx.Context, categories []*types.Category) ([]*types.Category, error)
	GetByID(dbc dbctx.Context, categoryID uuid.UUID) (*types.Category, error)
	GetAll(dbc dbctx.Context) ([]types.Category, error)
	CountByParentID(dbc dbctx.Context, parentID uuid.UUID) (int64, error)
	UpdateParent(dbc dbctx.Context, categoryID uuid.UUID, parentID *uuid.UUID) error
	DeleteByID(dbc dbctx.Context, categoryID uuid.UUID) error
}

type categoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	repoLog := baseLog.With("repo", "CategoryRepo")
	return &categoryRepo{db: db, log: repoLog}
}

func (r *categoryRepo) Create(dbc dbctx.Context, categories []*types.Category) ([]*types.Category, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(categories) == 0 {
		return []*types.Category{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepo) GetByID(dbc dbctx.Context, categoryID uuid.UUID) (*types.Category, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Category
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", categoryID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *categoryRepo) GetAll(dbc dbctx.Context) ([]types.Category, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []types.Category
	if err := transaction.WithContext(dbc.Ctx).
		Order("sort_order ASC, name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *categoryRepo) CountByParentID(dbc dbctx.Context, parentID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Category{}).
		Where("parent_id = ?", parentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *categoryRepo) UpdateParent(dbc dbctx.Context, categoryID uuid.UUID, parentID *uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Category{}).
		Where("id = ?", categoryID).
		Update("parent_id", parentID).Error
}

func (r *categoryRepo) DeleteByID(dbc dbctx.Context, categoryID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", categoryID).
		Delete(&types.Category{}).Error
}
