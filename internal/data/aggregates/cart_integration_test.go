package aggregates

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	cartrepos "github.com/yungbote/storefront-backend/internal/data/repos/cart"
	catalogrepos "github.com/yungbote/storefront-backend/internal/data/repos/catalog"
	repotest "github.com/yungbote/storefront-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/storefront-backend/internal/domain/aggregates"
	dcart "github.com/yungbote/storefront-backend/internal/domain/cart"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
)

func newCartAggregateForTest(t *testing.T, tx *gorm.DB) domainagg.CartAggregate {
	t.Helper()
	log := repotest.Logger(t)
	return NewCartAggregate(CartAggregateDeps{
		Base: BaseDeps{
			DB:       tx,
			Runner:   NewGormTxRunner(tx),
			CASGuard: NewCASGuard(tx),
		},
		Carts:     cartrepos.NewCartRepo(tx, log),
		Items:     cartrepos.NewCartItemRepo(tx, log),
		Products:  catalogrepos.NewProductRepo(tx, log),
		Rates:     fixedRates{shipping: "5.00", tax: "2.50"},
		Discounts: fixedDiscount{amount: "3.00"},
	})
}

func TestCartAggregateGetOrCreateIsIdempotent(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	agg := newCartAggregateForTest(t, tx)
	ctx := context.Background()

	owner := dcart.UserOwner(uuid.New())
	first, err := agg.GetOrCreate(ctx, owner)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	second, err := agg.GetOrCreate(ctx, owner)
	if err != nil {
		t.Fatalf("GetOrCreate again: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same cart, got %s and %s", first.ID, second.ID)
	}
}

// staleActiveLookupCartRepo reports no active cart on the first owner lookup,
// reproducing the window where a concurrent request inserts the owner's cart
// between the read and the insert.
type staleActiveLookupCartRepo struct {
	cartrepos.CartRepo
	stale bool
}

func (r *staleActiveLookupCartRepo) GetActiveByUserID(dbc dbctx.Context, userID uuid.UUID) (*dcart.Cart, error) {
	if !r.stale {
		r.stale = true
		return nil, gorm.ErrRecordNotFound
	}
	return r.CartRepo.GetActiveByUserID(dbc, userID)
}

func TestCartAggregateGetOrCreateFallsBackToRaceWinner(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	log := repotest.Logger(t)
	ctx := context.Background()

	agg := NewCartAggregate(CartAggregateDeps{
		Base: BaseDeps{
			DB:       tx,
			Runner:   NewGormTxRunner(tx),
			CASGuard: NewCASGuard(tx),
		},
		Carts:     &staleActiveLookupCartRepo{CartRepo: cartrepos.NewCartRepo(tx, log)},
		Items:     cartrepos.NewCartItemRepo(tx, log),
		Products:  catalogrepos.NewProductRepo(tx, log),
		Rates:     fixedRates{shipping: "5.00", tax: "2.50"},
		Discounts: fixedDiscount{amount: "3.00"},
	})

	userID := uuid.New()
	winner := &dcart.Cart{ID: uuid.New(), UserID: &userID, IsActive: true}
	if err := tx.WithContext(ctx).Create(winner).Error; err != nil {
		t.Fatalf("seed winner cart: %v", err)
	}

	got, err := agg.GetOrCreate(ctx, dcart.UserOwner(userID))
	if err != nil {
		t.Fatalf("GetOrCreate after losing the insert race: %v", err)
	}
	if got.ID != winner.ID {
		t.Fatalf("expected the winner's cart %s, got %s", winner.ID, got.ID)
	}

	// The unique violation must not leave the transaction aborted.
	var n int64
	if err := tx.WithContext(ctx).Table("cart").
		Where("user_id = ?", userID).Count(&n).Error; err != nil {
		t.Fatalf("count carts: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected a single cart for the user, got %d", n)
	}
}

func TestCartAggregateAddItemMergesSameOptionsLine(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	agg := newCartAggregateForTest(t, tx)
	ctx := context.Background()

	product := repotest.SeedProduct(t, ctx, tx, "9.99", 10)
	cart, err := agg.GetOrCreate(ctx, dcart.UserOwner(uuid.New()))
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	options := map[string]string{"size": "M", "color": "red"}
	if _, err := agg.AddItem(ctx, domainagg.AddCartItemInput{
		CartID: cart.ID, ProductID: product.ID, Quantity: 2, SelectedOptions: options,
	}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	// Same pairs, different insertion order: must hit the same line.
	reordered := map[string]string{"color": "red", "size": "M"}
	updated, err := agg.AddItem(ctx, domainagg.AddCartItemInput{
		CartID: cart.ID, ProductID: product.ID, Quantity: 3, SelectedOptions: reordered,
	})
	if err != nil {
		t.Fatalf("AddItem merge: %v", err)
	}

	if len(updated.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(updated.Items))
	}
	if updated.Items[0].Quantity != 5 {
		t.Fatalf("merged quantity: want=5 got=%d", updated.Items[0].Quantity)
	}
	wantSubtotal := decimal.RequireFromString("49.95")
	if !updated.Subtotal.Equal(wantSubtotal) {
		t.Fatalf("subtotal: want=%s got=%s", wantSubtotal, updated.Subtotal)
	}
}

func TestCartAggregateAddItemDistinctOptionsMakeDistinctLines(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	agg := newCartAggregateForTest(t, tx)
	ctx := context.Background()

	product := repotest.SeedProduct(t, ctx, tx, "4.00", 10)
	cart, err := agg.GetOrCreate(ctx, dcart.UserOwner(uuid.New()))
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	if _, err := agg.AddItem(ctx, domainagg.AddCartItemInput{
		CartID: cart.ID, ProductID: product.ID, Quantity: 1,
		SelectedOptions: map[string]string{"size": "S"},
	}); err != nil {
		t.Fatalf("AddItem S: %v", err)
	}
	updated, err := agg.AddItem(ctx, domainagg.AddCartItemInput{
		CartID: cart.ID, ProductID: product.ID, Quantity: 1,
		SelectedOptions: map[string]string{"size": "L"},
	})
	if err != nil {
		t.Fatalf("AddItem L: %v", err)
	}
	if len(updated.Items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(updated.Items))
	}
}

func TestCartAggregateAddItemRejectsInsufficientStock(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	agg := newCartAggregateForTest(t, tx)
	ctx := context.Background()

	product := repotest.SeedProduct(t, ctx, tx, "9.99", 2)
	cart, err := agg.GetOrCreate(ctx, dcart.UserOwner(uuid.New()))
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	_, err = agg.AddItem(ctx, domainagg.AddCartItemInput{
		CartID: cart.ID, ProductID: product.ID, Quantity: 3,
	})
	if !domainagg.IsCode(err, domainagg.CodeInsufficientStock) {
		t.Fatalf("expected insufficient_stock, got %v", err)
	}

	after, err := agg.GetCart(ctx, cart.ID)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(after.Items) != 0 {
		t.Fatalf("rejected add must leave cart unchanged, got %d lines", len(after.Items))
	}
	if !after.Total.IsZero() {
		t.Fatalf("rejected add must leave total zero, got %s", after.Total)
	}
}

func TestCartAggregateUpdateQuantityZeroRemovesLine(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	agg := newCartAggregateForTest(t, tx)
	ctx := context.Background()

	product := repotest.SeedProduct(t, ctx, tx, "7.50", 10)
	cart, err := agg.GetOrCreate(ctx, dcart.UserOwner(uuid.New()))
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	withItem, err := agg.AddItem(ctx, domainagg.AddCartItemInput{
		CartID: cart.ID, ProductID: product.ID, Quantity: 2,
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	updated, err := agg.UpdateItemQuantity(ctx, cart.ID, withItem.Items[0].ID, 0)
	if err != nil {
		t.Fatalf("UpdateItemQuantity: %v", err)
	}
	if len(updated.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(updated.Items))
	}
	if !updated.Subtotal.IsZero() || !updated.Total.IsZero() {
		t.Fatalf("totals not zeroed: subtotal=%s total=%s", updated.Subtotal, updated.Total)
	}
}

func TestCartAggregateClearResetsTotalsAndCoupon(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	agg := newCartAggregateForTest(t, tx)
	ctx := context.Background()

	product := repotest.SeedProduct(t, ctx, tx, "10.00", 10)
	cart, err := agg.GetOrCreate(ctx, dcart.UserOwner(uuid.New()))
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if _, err := agg.AddItem(ctx, domainagg.AddCartItemInput{
		CartID: cart.ID, ProductID: product.ID, Quantity: 2,
	}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := agg.ApplyCoupon(ctx, cart.ID, "WELCOME"); err != nil {
		t.Fatalf("ApplyCoupon: %v", err)
	}

	cleared, err := agg.Clear(ctx, cart.ID)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(cleared.Items) != 0 {
		t.Fatalf("expected no lines after clear")
	}
	if cleared.CouponCode != nil {
		t.Fatalf("coupon should be cleared, got %q", *cleared.CouponCode)
	}
	for name, v := range map[string]decimal.Decimal{
		"subtotal": cleared.Subtotal,
		"tax":      cleared.Tax,
		"shipping": cleared.Shipping,
		"discount": cleared.Discount,
		"total":    cleared.Total,
	} {
		if !v.IsZero() {
			t.Fatalf("%s not zeroed: %s", name, v)
		}
	}
}

func TestCartAggregateTotalsIncludeRatesAndDiscount(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	agg := newCartAggregateForTest(t, tx)
	ctx := context.Background()

	product := repotest.SeedProduct(t, ctx, tx, "10.00", 10)
	cart, err := agg.GetOrCreate(ctx, dcart.UserOwner(uuid.New()))
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if _, err := agg.AddItem(ctx, domainagg.AddCartItemInput{
		CartID: cart.ID, ProductID: product.ID, Quantity: 2,
	}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := agg.SetShippingRate(ctx, cart.ID, "US", "62701"); err != nil {
		t.Fatalf("SetShippingRate: %v", err)
	}
	if _, err := agg.SetTaxRate(ctx, cart.ID, "US", "62701"); err != nil {
		t.Fatalf("SetTaxRate: %v", err)
	}
	final, err := agg.ApplyCoupon(ctx, cart.ID, "WELCOME")
	if err != nil {
		t.Fatalf("ApplyCoupon: %v", err)
	}

	// 20.00 + 5.00 shipping + 2.50 tax - 3.00 discount
	want := decimal.RequireFromString("24.50")
	if !final.Total.Equal(want) {
		t.Fatalf("total: want=%s got=%s", want, final.Total)
	}
}

func TestCartAggregateMergeGuestCartSumsAndClamps(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	agg := newCartAggregateForTest(t, tx)
	ctx := context.Background()

	plenty := repotest.SeedProduct(t, ctx, tx, "5.00", 100)
	scarce := repotest.SeedProduct(t, ctx, tx, "8.00", 2)
	userID := uuid.New()
	sessionID := "sess-" + uuid.NewString()

	userCart, err := agg.GetOrCreate(ctx, dcart.UserOwner(userID))
	if err != nil {
		t.Fatalf("GetOrCreate user: %v", err)
	}
	if _, err := agg.AddItem(ctx, domainagg.AddCartItemInput{
		CartID: userCart.ID, ProductID: plenty.ID, Quantity: 2,
	}); err != nil {
		t.Fatalf("AddItem user plenty: %v", err)
	}
	if _, err := agg.AddItem(ctx, domainagg.AddCartItemInput{
		CartID: userCart.ID, ProductID: scarce.ID, Quantity: 2,
	}); err != nil {
		t.Fatalf("AddItem user scarce: %v", err)
	}

	guestCart, err := agg.GetOrCreate(ctx, dcart.SessionOwner(sessionID))
	if err != nil {
		t.Fatalf("GetOrCreate guest: %v", err)
	}
	if _, err := agg.AddItem(ctx, domainagg.AddCartItemInput{
		CartID: guestCart.ID, ProductID: plenty.ID, Quantity: 3,
	}); err != nil {
		t.Fatalf("AddItem guest plenty: %v", err)
	}
	if _, err := agg.AddItem(ctx, domainagg.AddCartItemInput{
		CartID: guestCart.ID, ProductID: scarce.ID, Quantity: 2,
	}); err != nil {
		t.Fatalf("AddItem guest scarce: %v", err)
	}

	merged, err := agg.MergeGuestCart(ctx, sessionID, userID)
	if err != nil {
		t.Fatalf("MergeGuestCart: %v", err)
	}
	if merged.ID != userCart.ID {
		t.Fatalf("merge must land on the user cart")
	}

	byProduct := map[uuid.UUID]int{}
	for _, it := range merged.Items {
		byProduct[it.ProductID] += it.Quantity
	}
	if byProduct[plenty.ID] != 5 {
		t.Fatalf("plenty quantity: want=5 got=%d", byProduct[plenty.ID])
	}
	// 2 + 2 clamped to the 2 in stock.
	if byProduct[scarce.ID] != 2 {
		t.Fatalf("scarce quantity: want=2 got=%d", byProduct[scarce.ID])
	}

	guestAfter, err := agg.GetCart(ctx, guestCart.ID)
	if err != nil {
		t.Fatalf("GetCart guest: %v", err)
	}
	if guestAfter.IsActive {
		t.Fatalf("guest cart must be deactivated after merge")
	}
}

func TestCartAggregateMergeGuestCartDropsSoldOutLine(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	agg := newCartAggregateForTest(t, tx)
	ctx := context.Background()

	keep := repotest.SeedProduct(t, ctx, tx, "5.00", 100)
	gone := repotest.SeedProduct(t, ctx, tx, "9.00", 5)
	userID := uuid.New()
	sessionID := "sess-" + uuid.NewString()

	userCart, err := agg.GetOrCreate(ctx, dcart.UserOwner(userID))
	if err != nil {
		t.Fatalf("GetOrCreate user: %v", err)
	}
	if _, err := agg.AddItem(ctx, domainagg.AddCartItemInput{
		CartID: userCart.ID, ProductID: keep.ID, Quantity: 2,
	}); err != nil {
		t.Fatalf("AddItem user keep: %v", err)
	}
	if _, err := agg.AddItem(ctx, domainagg.AddCartItemInput{
		CartID: userCart.ID, ProductID: gone.ID, Quantity: 1,
	}); err != nil {
		t.Fatalf("AddItem user gone: %v", err)
	}

	guestCart, err := agg.GetOrCreate(ctx, dcart.SessionOwner(sessionID))
	if err != nil {
		t.Fatalf("GetOrCreate guest: %v", err)
	}
	if _, err := agg.AddItem(ctx, domainagg.AddCartItemInput{
		CartID: guestCart.ID, ProductID: gone.ID, Quantity: 2,
	}); err != nil {
		t.Fatalf("AddItem guest gone: %v", err)
	}

	// The product sells out between the user adding it and the merge.
	if err := tx.WithContext(ctx).Table("product").
		Where("id = ?", gone.ID).Update("stock", 0).Error; err != nil {
		t.Fatalf("deplete stock: %v", err)
	}

	merged, err := agg.MergeGuestCart(ctx, sessionID, userID)
	if err != nil {
		t.Fatalf("MergeGuestCart: %v", err)
	}
	for _, it := range merged.Items {
		if it.ProductID == gone.ID {
			t.Fatalf("sold-out line must be removed, got quantity %d", it.Quantity)
		}
		if it.Quantity < 1 {
			t.Fatalf("merge left a line with quantity %d", it.Quantity)
		}
	}
	// Totals recompute from the surviving line only.
	if !merged.Subtotal.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("subtotal: want=10.00 got=%s", merged.Subtotal)
	}
}

func TestCartAggregateMergeGuestCartIsNoOpWithoutGuestItems(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	agg := newCartAggregateForTest(t, tx)
	ctx := context.Background()

	userID := uuid.New()
	merged, err := agg.MergeGuestCart(ctx, "sess-"+uuid.NewString(), userID)
	if err != nil {
		t.Fatalf("MergeGuestCart: %v", err)
	}
	if merged.UserID == nil || *merged.UserID != userID {
		t.Fatalf("no-op merge must still return the user cart")
	}
	if len(merged.Items) != 0 {
		t.Fatalf("expected empty user cart")
	}
}

func TestCartAggregateMergeGuestSettingsNeverOverwriteUser(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	agg := newCartAggregateForTest(t, tx)
	ctx := context.Background()

	product := repotest.SeedProduct(t, ctx, tx, "5.00", 100)
	userID := uuid.New()
	sessionID := "sess-" + uuid.NewString()

	userCart, err := agg.GetOrCreate(ctx, dcart.UserOwner(userID))
	if err != nil {
		t.Fatalf("GetOrCreate user: %v", err)
	}
	if _, err := agg.AddItem(ctx, domainagg.AddCartItemInput{
		CartID: userCart.ID, ProductID: product.ID, Quantity: 1,
	}); err != nil {
		t.Fatalf("AddItem user: %v", err)
	}
	if _, err := agg.ApplyCoupon(ctx, userCart.ID, "USERCODE"); err != nil {
		t.Fatalf("ApplyCoupon user: %v", err)
	}

	guestCart, err := agg.GetOrCreate(ctx, dcart.SessionOwner(sessionID))
	if err != nil {
		t.Fatalf("GetOrCreate guest: %v", err)
	}
	if _, err := agg.AddItem(ctx, domainagg.AddCartItemInput{
		CartID: guestCart.ID, ProductID: product.ID, Quantity: 1,
	}); err != nil {
		t.Fatalf("AddItem guest: %v", err)
	}
	if _, err := agg.ApplyCoupon(ctx, guestCart.ID, "GUESTCODE"); err != nil {
		t.Fatalf("ApplyCoupon guest: %v", err)
	}
	if _, err := agg.UpdateGiftSettings(ctx, guestCart.ID, true, "happy birthday"); err != nil {
		t.Fatalf("UpdateGiftSettings guest: %v", err)
	}

	merged, err := agg.MergeGuestCart(ctx, sessionID, userID)
	if err != nil {
		t.Fatalf("MergeGuestCart: %v", err)
	}
	if merged.CouponCode == nil || *merged.CouponCode != "USERCODE" {
		t.Fatalf("user coupon must win, got %v", merged.CouponCode)
	}
	// The user cart had no gift settings, so the guest's fill the gap.
	if !merged.IsGift || merged.GiftMessage == nil || *merged.GiftMessage != "happy birthday" {
		t.Fatalf("guest gift settings should fill the gap: %+v", merged)
	}
}

type fixedRates struct {
	shipping string
	tax      string
}

func (r fixedRates) Shipping(context.Context, domainagg.CartPricingView, string, string) (decimal.Decimal, error) {
	return decimal.RequireFromString(r.shipping), nil
}

func (r fixedRates) Tax(context.Context, domainagg.CartPricingView, string, string) (decimal.Decimal, error) {
	return decimal.RequireFromString(r.tax), nil
}

type fixedDiscount struct {
	amount string
}

func (d fixedDiscount) Evaluate(context.Context, string, domainagg.CartPricingView) (decimal.Decimal, error) {
	return decimal.RequireFromString(d.amount), nil
}
