package aggregates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/data/repos"
	domainagg "github.com/yungbote/storefront-backend/internal/domain/aggregates"
	dcart "github.com/yungbote/storefront-backend/internal/domain/cart"
	"github.com/yungbote/storefront-backend/internal/domain/catalog"
	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
)

type CartAggregateDeps struct {
	Base BaseDeps

	Carts    repos.CartRepo
	Items    repos.CartItemRepo
	Products repos.ProductRepo

	Rates     domainagg.RateCalculator
	Discounts domainagg.DiscountRule
}

type cartAggregate struct {
	deps CartAggregateDeps
}

func NewCartAggregate(deps CartAggregateDeps) domainagg.CartAggregate {
	deps.Base = deps.Base.withDefaults()
	return &cartAggregate{deps: deps}
}

func (a *cartAggregate) Contract() domainagg.Contract {
	return domainagg.CartAggregateContract
}

func (a *cartAggregate) GetOrCreate(ctx context.Context, owner dcart.Owner) (*dcart.Cart, error) {
	const op = "Commerce.Cart.GetOrCreate"
	if err := owner.Validate(); err != nil {
		return nil, MapError(op, err)
	}

	var out *dcart.Cart
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		existing, err := a.activeCartForOwner(dbc, owner)
		if err == nil {
			out = existing
			return nil
		}
		if !isNotFound(err) {
			return err
		}

		fresh := &types.Cart{ID: uuid.New(), IsActive: true}
		if id, ok := owner.UserID(); ok {
			fresh.UserID = &id
		}
		if sid, ok := owner.SessionID(); ok {
			fresh.SessionID = &sid
		}
		// A concurrent request may win the partial unique index race. On
		// Postgres the violation aborts the transaction, so the insert runs
		// under a savepoint and the loser reads back the winner's cart.
		if dbc.Tx != nil {
			if spErr := dbc.Tx.SavePoint("cart_create").Error; spErr != nil {
				return spErr
			}
		}
		created, err := a.deps.Carts.Create(dbc, []*types.Cart{fresh})
		if err != nil {
			if dbc.Tx != nil {
				if rbErr := dbc.Tx.RollbackTo("cart_create").Error; rbErr != nil {
					return err
				}
			}
			if existing, fetchErr := a.activeCartForOwner(dbc, owner); fetchErr == nil {
				out = existing
				return nil
			}
			return err
		}
		out, err = a.deps.Carts.GetByID(dbc, created[0].ID)
		return err
	})
	return out, err
}

func (a *cartAggregate) GetCart(ctx context.Context, cartID uuid.UUID) (*dcart.Cart, error) {
	const op = "Commerce.Cart.GetCart"
	if cartID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing cart_id", nil)
	}
	dbc := dbctx.Context{Ctx: ctx, Tx: dbctx.TxFrom(ctx)}
	out, err := a.deps.Carts.GetByID(dbc, cartID)
	if err != nil {
		return nil, MapError(op, err)
	}
	return out, nil
}

func (a *cartAggregate) AddItem(ctx context.Context, in domainagg.AddCartItemInput) (*dcart.Cart, error) {
	const op = "Commerce.Cart.AddItem"
	if in.CartID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing cart_id", nil)
	}
	if in.ProductID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing product_id", nil)
	}
	if err := RequireQuantity(in.Quantity); err != nil {
		return nil, MapError(op, err)
	}

	var out *dcart.Cart
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		cart, err := a.lockActiveCart(dbc, op, in.CartID)
		if err != nil {
			return err
		}

		product, err := a.lockSellableProduct(dbc, op, in.ProductID)
		if err != nil {
			return err
		}

		optionsKey := dcart.OptionsKey(in.SelectedOptions)
		items, err := a.deps.Items.GetByCartID(dbc, cart.ID)
		if err != nil {
			return err
		}

		var existing *types.CartItem
		for i := range items {
			if items[i].ProductID == product.ID && items[i].OptionsKey == optionsKey {
				existing = &items[i]
				break
			}
		}

		requested := in.Quantity
		if existing != nil {
			requested += existing.Quantity
		}
		if err := RequireStock(product.Stock, requested); err != nil {
			return err
		}

		if existing != nil {
			if err := a.deps.Items.UpdateFields(dbc, existing.ID, map[string]any{
				"quantity": requested,
				"subtotal": dcart.LineSubtotal(existing.Price, requested),
			}); err != nil {
				return err
			}
		} else {
			optionsJSON, err := marshalOptions(in.SelectedOptions)
			if err != nil {
				return err
			}
			line := &types.CartItem{
				ID:              uuid.New(),
				CartID:          cart.ID,
				ProductID:       product.ID,
				Quantity:        in.Quantity,
				Price:           product.Price,
				Subtotal:        dcart.LineSubtotal(product.Price, in.Quantity),
				SelectedOptions: optionsJSON,
				OptionsKey:      optionsKey,
			}
			if _, err := a.deps.Items.Create(dbc, []*types.CartItem{line}); err != nil {
				return err
			}
		}

		out, err = a.recomputeTotals(dbc, cart, nil)
		return err
	})
	return out, err
}

func (a *cartAggregate) UpdateItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) (*dcart.Cart, error) {
	const op = "Commerce.Cart.UpdateItemQuantity"
	if cartID == uuid.Nil || itemID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing cart_id or item_id", nil)
	}

	var out *dcart.Cart
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		cart, err := a.lockActiveCart(dbc, op, cartID)
		if err != nil {
			return err
		}
		item, err := a.cartLine(dbc, op, cart.ID, itemID)
		if err != nil {
			return err
		}

		if quantity <= 0 {
			if err := a.deps.Items.DeleteByID(dbc, item.ID); err != nil {
				return err
			}
		} else {
			product, err := a.lockSellableProduct(dbc, op, item.ProductID)
			if err != nil {
				return err
			}
			if err := RequireStock(product.Stock, quantity); err != nil {
				return err
			}
			if err := a.deps.Items.UpdateFields(dbc, item.ID, map[string]any{
				"quantity": quantity,
				"subtotal": dcart.LineSubtotal(item.Price, quantity),
			}); err != nil {
				return err
			}
		}

		out, err = a.recomputeTotals(dbc, cart, nil)
		return err
	})
	return out, err
}

func (a *cartAggregate) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) (*dcart.Cart, error) {
	const op = "Commerce.Cart.RemoveItem"
	if cartID == uuid.Nil || itemID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing cart_id or item_id", nil)
	}

	var out *dcart.Cart
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		cart, err := a.lockActiveCart(dbc, op, cartID)
		if err != nil {
			return err
		}
		item, err := a.cartLine(dbc, op, cart.ID, itemID)
		if err != nil {
			return err
		}
		if err := a.deps.Items.DeleteByID(dbc, item.ID); err != nil {
			return err
		}
		out, err = a.recomputeTotals(dbc, cart, nil)
		return err
	})
	return out, err
}

func (a *cartAggregate) Clear(ctx context.Context, cartID uuid.UUID) (*dcart.Cart, error) {
	const op = "Commerce.Cart.Clear"
	if cartID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing cart_id", nil)
	}

	var out *dcart.Cart
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		cart, err := a.lockActiveCart(dbc, op, cartID)
		if err != nil {
			return err
		}
		if err := a.deps.Items.DeleteByCartID(dbc, cart.ID); err != nil {
			return err
		}

		zero := dcart.ZeroTotals()
		if err := a.deps.Carts.UpdateFields(dbc, cart.ID, map[string]any{
			"subtotal":    zero.Subtotal,
			"tax":         zero.Tax,
			"shipping":    zero.Shipping,
			"discount":    zero.Discount,
			"total":       zero.Total,
			"coupon_code": gorm.Expr("NULL"),
		}); err != nil {
			return err
		}
		out, err = a.deps.Carts.GetByID(dbc, cart.ID)
		return err
	})
	return out, err
}

func (a *cartAggregate) ApplyCoupon(ctx context.Context, cartID uuid.UUID, code string) (*dcart.Cart, error) {
	const op = "Commerce.Cart.ApplyCoupon"
	code = strings.TrimSpace(code)
	if cartID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing cart_id", nil)
	}
	if code == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing coupon code", nil)
	}
	if a.deps.Discounts == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "discount rule not configured", nil)
	}

	var out *dcart.Cart
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		cart, err := a.lockActiveCart(dbc, op, cartID)
		if err != nil {
			return err
		}
		items, err := a.deps.Items.GetByCartID(dbc, cart.ID)
		if err != nil {
			return err
		}

		view := pricingView(cart.ID, items)
		discount, err := a.deps.Discounts.Evaluate(dbc.Ctx, code, view)
		if err != nil {
			return err
		}
		if discount.IsNegative() {
			discount = decimal.Zero
		}

		out, err = a.recomputeTotals(dbc, cart, map[string]any{
			"coupon_code": code,
			"discount":    discount,
		})
		return err
	})
	return out, err
}

func (a *cartAggregate) RemoveCoupon(ctx context.Context, cartID uuid.UUID) (*dcart.Cart, error) {
	const op = "Commerce.Cart.RemoveCoupon"
	if cartID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing cart_id", nil)
	}

	var out *dcart.Cart
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		cart, err := a.lockActiveCart(dbc, op, cartID)
		if err != nil {
			return err
		}
		out, err = a.recomputeTotals(dbc, cart, map[string]any{
			"coupon_code": gorm.Expr("NULL"),
			"discount":    decimal.Zero,
		})
		return err
	})
	return out, err
}

func (a *cartAggregate) UpdateGiftSettings(ctx context.Context, cartID uuid.UUID, isGift bool, message string) (*dcart.Cart, error) {
	const op = "Commerce.Cart.UpdateGiftSettings"
	if cartID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing cart_id", nil)
	}

	var out *dcart.Cart
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		cart, err := a.lockActiveCart(dbc, op, cartID)
		if err != nil {
			return err
		}

		updates := map[string]any{"is_gift": isGift}
		if isGift && strings.TrimSpace(message) != "" {
			updates["gift_message"] = strings.TrimSpace(message)
		} else {
			updates["gift_message"] = gorm.Expr("NULL")
		}
		if err := a.deps.Carts.UpdateFields(dbc, cart.ID, updates); err != nil {
			return err
		}
		out, err = a.deps.Carts.GetByID(dbc, cart.ID)
		return err
	})
	return out, err
}

func (a *cartAggregate) SetShippingRate(ctx context.Context, cartID uuid.UUID, country, postalCode string) (*dcart.Cart, error) {
	const op = "Commerce.Cart.SetShippingRate"
	return a.setRate(ctx, op, cartID, country, postalCode, "shipping")
}

func (a *cartAggregate) SetTaxRate(ctx context.Context, cartID uuid.UUID, country, postalCode string) (*dcart.Cart, error) {
	const op = "Commerce.Cart.SetTaxRate"
	return a.setRate(ctx, op, cartID, country, postalCode, "tax")
}

func (a *cartAggregate) setRate(ctx context.Context, op string, cartID uuid.UUID, country, postalCode, column string) (*dcart.Cart, error) {
	if cartID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing cart_id", nil)
	}
	if strings.TrimSpace(country) == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing country", nil)
	}
	if a.deps.Rates == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "rate calculator not configured", nil)
	}

	var out *dcart.Cart
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		cart, err := a.lockActiveCart(dbc, op, cartID)
		if err != nil {
			return err
		}
		items, err := a.deps.Items.GetByCartID(dbc, cart.ID)
		if err != nil {
			return err
		}

		view := pricingView(cart.ID, items)
		var amount decimal.Decimal
		if column == "shipping" {
			amount, err = a.deps.Rates.Shipping(dbc.Ctx, view, country, postalCode)
		} else {
			amount, err = a.deps.Rates.Tax(dbc.Ctx, view, country, postalCode)
		}
		if err != nil {
			return err
		}
		if amount.IsNegative() {
			amount = decimal.Zero
		}

		out, err = a.recomputeTotals(dbc, cart, map[string]any{column: amount})
		return err
	})
	return out, err
}

func (a *cartAggregate) MergeGuestCart(ctx context.Context, sessionID string, userID uuid.UUID) (*dcart.Cart, error) {
	const op = "Commerce.Cart.MergeGuestCart"
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing session_id", nil)
	}
	if userID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}

	var out *dcart.Cart
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		userCart, err := a.deps.Carts.GetActiveByUserID(dbc, userID)
		if isNotFound(err) {
			fresh := &types.Cart{ID: uuid.New(), UserID: &userID, IsActive: true}
			if _, createErr := a.deps.Carts.Create(dbc, []*types.Cart{fresh}); createErr != nil {
				return createErr
			}
			userCart, err = a.deps.Carts.GetByID(dbc, fresh.ID)
		}
		if err != nil {
			return err
		}

		guest, err := a.deps.Carts.GetActiveBySessionID(dbc, sessionID)
		if isNotFound(err) || (err == nil && len(guest.Items) == 0) {
			out = userCart
			return nil
		}
		if err != nil {
			return err
		}

		userCart, err = a.lockActiveCart(dbc, op, userCart.ID)
		if err != nil {
			return err
		}
		userItems, err := a.deps.Items.GetByCartID(dbc, userCart.ID)
		if err != nil {
			return err
		}

		byLine := make(map[string]*types.CartItem, len(userItems))
		for i := range userItems {
			byLine[lineKey(userItems[i].ProductID, userItems[i].OptionsKey)] = &userItems[i]
		}

		for i := range guest.Items {
			gi := guest.Items[i]
			product, err := a.lockSellableProduct(dbc, op, gi.ProductID)
			if err != nil {
				if isNotFound(MapError(op, err)) {
					continue // product retired since the guest added it
				}
				return err
			}

			if existing, ok := byLine[lineKey(gi.ProductID, gi.OptionsKey)]; ok {
				merged := catalog.ClampToStock(product.Stock, existing.Quantity+gi.Quantity)
				if merged == existing.Quantity {
					continue
				}
				if merged <= 0 {
					// Stock dried up since the user line was added; a line
					// never survives with quantity zero.
					if err := a.deps.Items.DeleteByID(dbc, existing.ID); err != nil {
						return err
					}
					continue
				}
				if err := a.deps.Items.UpdateFields(dbc, existing.ID, map[string]any{
					"quantity": merged,
					"subtotal": dcart.LineSubtotal(existing.Price, merged),
				}); err != nil {
					return err
				}
				continue
			}

			qty := catalog.ClampToStock(product.Stock, gi.Quantity)
			if qty <= 0 {
				continue
			}
			line := &types.CartItem{
				ID:              uuid.New(),
				CartID:          userCart.ID,
				ProductID:       gi.ProductID,
				Quantity:        qty,
				Price:           gi.Price,
				Subtotal:        dcart.LineSubtotal(gi.Price, qty),
				SelectedOptions: gi.SelectedOptions,
				OptionsKey:      gi.OptionsKey,
			}
			if _, err := a.deps.Items.Create(dbc, []*types.CartItem{line}); err != nil {
				return err
			}
		}

		// Guest settings fill gaps only; they never overwrite the user cart.
		extra := map[string]any{}
		if userCart.CouponCode == nil && guest.CouponCode != nil {
			extra["coupon_code"] = *guest.CouponCode
			extra["discount"] = guest.Discount
		}
		if !userCart.IsGift && guest.IsGift {
			extra["is_gift"] = true
			if guest.GiftMessage != nil {
				extra["gift_message"] = *guest.GiftMessage
			}
		}

		if err := a.deps.Carts.Deactivate(dbc, guest.ID); err != nil {
			return err
		}
		out, err = a.recomputeTotals(dbc, userCart, extra)
		return err
	})
	return out, err
}

func (a *cartAggregate) activeCartForOwner(dbc dbctx.Context, owner dcart.Owner) (*dcart.Cart, error) {
	if id, ok := owner.UserID(); ok {
		return a.deps.Carts.GetActiveByUserID(dbc, id)
	}
	sid, _ := owner.SessionID()
	return a.deps.Carts.GetActiveBySessionID(dbc, sid)
}

func (a *cartAggregate) lockActiveCart(dbc dbctx.Context, op string, cartID uuid.UUID) (*dcart.Cart, error) {
	cart, err := a.deps.Carts.LockByID(dbc, cartID)
	if err != nil {
		return nil, err
	}
	if !cart.IsActive {
		return nil, InvalidStateError(fmt.Sprintf("cart %s is no longer active", cartID.String()))
	}
	return cart, nil
}

func (a *cartAggregate) lockSellableProduct(dbc dbctx.Context, op string, productID uuid.UUID) (*types.Product, error) {
	product, err := a.deps.Products.LockByID(dbc, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("product not available: %s", productID.String()), nil)
	}
	return product, nil
}

func (a *cartAggregate) cartLine(dbc dbctx.Context, op string, cartID, itemID uuid.UUID) (*types.CartItem, error) {
	item, err := a.deps.Items.GetByID(dbc, itemID)
	if err != nil {
		return nil, err
	}
	if item.CartID != cartID {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("item %s not in cart %s", itemID.String(), cartID.String()), nil)
	}
	return item, nil
}

// recomputeTotals reloads the item set, derives totals and persists them in
// the same transaction, optionally alongside extra column updates. Extra
// shipping/tax/discount values participate in the recomputation.
func (a *cartAggregate) recomputeTotals(dbc dbctx.Context, cart *dcart.Cart, extra map[string]any) (*dcart.Cart, error) {
	items, err := a.deps.Items.GetByCartID(dbc, cart.ID)
	if err != nil {
		return nil, err
	}

	shipping := cart.Shipping
	tax := cart.Tax
	discount := cart.Discount
	if extra != nil {
		if v, ok := extra["shipping"].(decimal.Decimal); ok {
			shipping = v
		}
		if v, ok := extra["tax"].(decimal.Decimal); ok {
			tax = v
		}
		if v, ok := extra["discount"].(decimal.Decimal); ok {
			discount = v
		}
	}

	totals := dcart.ComputeTotals(items, shipping, tax, discount)
	updates := map[string]any{
		"subtotal": totals.Subtotal,
		"tax":      totals.Tax,
		"shipping": totals.Shipping,
		"discount": totals.Discount,
		"total":    totals.Total,
	}
	for k, v := range extra {
		if k == "shipping" || k == "tax" || k == "discount" {
			continue
		}
		updates[k] = v
	}
	if err := a.deps.Carts.UpdateFields(dbc, cart.ID, updates); err != nil {
		return nil, err
	}
	return a.deps.Carts.GetByID(dbc, cart.ID)
}

func pricingView(cartID uuid.UUID, items []types.CartItem) domainagg.CartPricingView {
	subtotal := decimal.Zero
	count := 0
	for _, it := range items {
		subtotal = subtotal.Add(it.Subtotal)
		count += it.Quantity
	}
	return domainagg.CartPricingView{
		CartID:    cartID,
		Subtotal:  subtotal.Round(2),
		ItemCount: count,
	}
}

func lineKey(productID uuid.UUID, optionsKey string) string {
	return productID.String() + "|" + optionsKey
}

func marshalOptions(options map[string]string) (datatypes.JSON, error) {
	if len(options) == 0 {
		return datatypes.JSON([]byte("{}")), nil
	}
	raw, err := json.Marshal(options)
	if err != nil {
		return nil, ValidationError("selected options are not serializable")
	}
	return datatypes.JSON(raw), nil
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	if domainagg.IsCode(err, domainagg.CodeNotFound) {
		return true
	}
	return errors.Is(err, gorm.ErrRecordNotFound)
}
