package aggregates

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/storefront-backend/internal/data/repos"
	domainagg "github.com/yungbote/storefront-backend/internal/domain/aggregates"
	"github.com/yungbote/storefront-backend/internal/domain/catalog"
	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
)

type CategoryAggregateDeps struct {
	Base BaseDeps

	Categories repos.CategoryRepo
	Products   repos.ProductRepo
}

type categoryAggregate struct {
	deps CategoryAggregateDeps
}

func NewCategoryAggregate(deps CategoryAggregateDeps) domainagg.CategoryAggregate {
	deps.Base = deps.Base.withDefaults()
	return &categoryAggregate{deps: deps}
}

func (a *categoryAggregate) Contract() domainagg.Contract {
	return domainagg.CategoryAggregateContract
}

func (a *categoryAggregate) Create(ctx context.Context, in domainagg.CreateCategoryInput) (*catalog.Category, error) {
	const op = "Commerce.Category.Create"
	name := strings.TrimSpace(in.Name)
	slug := strings.TrimSpace(in.Slug)
	if name == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing name", nil)
	}
	if slug == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing slug", nil)
	}

	var out *catalog.Category
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		if in.ParentID != nil {
			if *in.ParentID == uuid.Nil {
				return ValidationError("parent_id must be a category id or absent")
			}
			if _, err := a.deps.Categories.GetByID(dbc, *in.ParentID); err != nil {
				return err
			}
		}

		created, err := a.deps.Categories.Create(dbc, []*types.Category{{
			ID:        uuid.New(),
			ParentID:  in.ParentID,
			Name:      name,
			Slug:      slug,
			SortOrder: in.SortOrder,
			IsActive:  in.IsActive,
		}})
		if err != nil {
			return err
		}
		out = created[0]
		return nil
	})
	return out, err
}

func (a *categoryAggregate) Reparent(ctx context.Context, categoryID uuid.UUID, newParentID *uuid.UUID) (*catalog.Category, error) {
	const op = "Commerce.Category.Reparent"
	if categoryID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing category_id", nil)
	}

	var out *catalog.Category
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		if _, err := a.deps.Categories.GetByID(dbc, categoryID); err != nil {
			return err
		}

		if newParentID != nil {
			if *newParentID == categoryID {
				return catalog.ErrCycleDetected
			}
			if _, err := a.deps.Categories.GetByID(dbc, *newParentID); err != nil {
				return err
			}

			all, err := a.deps.Categories.GetAll(dbc)
			if err != nil {
				return err
			}
			descendants := catalog.DescendantsOf(all, categoryID)
			if _, ok := descendants[*newParentID]; ok {
				return catalog.ErrCycleDetected
			}
		}

		if err := a.deps.Categories.UpdateParent(dbc, categoryID, newParentID); err != nil {
			return err
		}
		updated, err := a.deps.Categories.GetByID(dbc, categoryID)
		if err != nil {
			return err
		}
		out = updated
		return nil
	})
	return out, err
}

func (a *categoryAggregate) Delete(ctx context.Context, categoryID uuid.UUID) error {
	const op = "Commerce.Category.Delete"
	if categoryID == uuid.Nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing category_id", nil)
	}

	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		if _, err := a.deps.Categories.GetByID(dbc, categoryID); err != nil {
			return err
		}

		children, err := a.deps.Categories.CountByParentID(dbc, categoryID)
		if err != nil {
			return err
		}
		if children > 0 {
			return PreconditionError(fmt.Sprintf("category has %d child categories", children))
		}

		products, err := a.deps.Products.CountByCategoryID(dbc, categoryID)
		if err != nil {
			return err
		}
		if products > 0 {
			return PreconditionError(fmt.Sprintf("category has %d products", products))
		}

		return a.deps.Categories.DeleteByID(dbc, categoryID)
	})
}

func (a *categoryAggregate) Tree(ctx context.Context) ([]*catalog.CategoryNode, error) {
	const op = "Commerce.Category.Tree"
	dbc := dbctx.Context{Ctx: ctx, Tx: dbctx.TxFrom(ctx)}
	all, err := a.deps.Categories.GetAll(dbc)
	if err != nil {
		return nil, MapError(op, err)
	}
	return catalog.BuildTree(all), nil
}

func (a *categoryAggregate) Path(ctx context.Context, categoryID uuid.UUID) ([]catalog.Category, error) {
	const op = "Commerce.Category.Path"
	if categoryID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing category_id", nil)
	}
	dbc := dbctx.Context{Ctx: ctx, Tx: dbctx.TxFrom(ctx)}
	all, err := a.deps.Categories.GetAll(dbc)
	if err != nil {
		return nil, MapError(op, err)
	}
	path, err := catalog.PathOf(all, categoryID)
	if err != nil {
		return nil, MapError(op, err)
	}
	return path, nil
}

func (a *categoryAggregate) Descendants(ctx context.Context, categoryID uuid.UUID) ([]uuid.UUID, error) {
	const op = "Commerce.Category.Descendants"
	if categoryID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing category_id", nil)
	}
	dbc := dbctx.Context{Ctx: ctx, Tx: dbctx.TxFrom(ctx)}
	if _, err := a.deps.Categories.GetByID(dbc, categoryID); err != nil {
		return nil, MapError(op, err)
	}
	all, err := a.deps.Categories.GetAll(dbc)
	if err != nil {
		return nil, MapError(op, err)
	}

	set := catalog.DescendantsOf(all, categoryID)
	out := make([]uuid.UUID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out, nil
}
