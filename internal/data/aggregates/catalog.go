package aggregates

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/yungbote/storefront-backend/internal/data/repos"
	domainagg "github.com/yungbote/storefront-backend/internal/domain/aggregates"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
)

type productCatalog struct {
	products repos.ProductRepo
}

// NewProductCatalog adapts the product repo to the read-only catalog port.
// Reads honor any transaction carried by ctx so price/stock checks inside a
// write scope see transaction-consistent state.
func NewProductCatalog(products repos.ProductRepo) domainagg.ProductCatalog {
	return &productCatalog{products: products}
}

func (c *productCatalog) GetByID(ctx context.Context, productID uuid.UUID) (domainagg.ProductView, error) {
	const op = "Commerce.Catalog.GetByID"
	var out domainagg.ProductView
	if productID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing product_id", nil)
	}
	if c.products == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "product catalog repo not configured", nil)
	}

	dbc := dbctx.Context{Ctx: ctx, Tx: dbctx.TxFrom(ctx)}
	p, err := c.products.GetByID(dbc, productID)
	if err != nil {
		return out, MapError(op, err)
	}
	if !p.IsActive {
		return out, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("product not available: %s", productID.String()), nil)
	}
	out = domainagg.ProductView{ID: p.ID, Price: p.Price, Stock: p.Stock}
	return out, nil
}
