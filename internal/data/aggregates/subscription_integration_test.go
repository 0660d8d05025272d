package aggregates

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	catalogrepos "github.com/yungbote/storefront-backend/internal/data/repos/catalog"
	subrepos "github.com/yungbote/storefront-backend/internal/data/repos/subscription"
	repotest "github.com/yungbote/storefront-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/storefront-backend/internal/domain/aggregates"
	sub "github.com/yungbote/storefront-backend/internal/domain/subscription"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
)

func newSubscriptionAggregateForTest(t *testing.T, tx *gorm.DB, payments *scriptedProcessor) domainagg.SubscriptionAggregate {
	t.Helper()
	log := repotest.Logger(t)
	if payments == nil {
		payments = &scriptedProcessor{}
	}
	return NewSubscriptionAggregate(SubscriptionAggregateDeps{
		Base: BaseDeps{
			DB:       tx,
			Runner:   NewGormTxRunner(tx),
			CASGuard: NewCASGuard(tx),
		},
		Subscriptions: subrepos.NewSubscriptionRepo(tx, log),
		Items:         subrepos.NewSubscriptionItemRepo(tx, log),
		Catalog:       NewProductCatalog(catalogrepos.NewProductRepo(tx, log)),
		Payments:      payments,
		Orders:        &recordingOrderPlacer{},
	})
}

func testAddress() sub.Address {
	return sub.Address{
		Line1:      "1 Main St",
		City:       "Springfield",
		State:      "IL",
		PostalCode: "62701",
		Country:    "US",
	}
}

func TestSubscriptionAggregateCreateSnapshotsPricesAndSchedules(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	agg := newSubscriptionAggregateForTest(t, tx, nil)
	ctx := context.Background()

	product := repotest.SeedProduct(t, ctx, tx, "12.50", 10)
	created, err := agg.Create(ctx, domainagg.CreateSubscriptionInput{
		UserID:    uuid.New(),
		Frequency: "monthly",
		Items: []domainagg.SubscriptionItemInput{
			{ProductID: product.ID, Quantity: 2},
		},
		AutoRenew:       true,
		ShippingAddress: testAddress(),
		BillingAddress:  testAddress(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if created.Status != sub.StatusActive {
		t.Fatalf("status: want=active got=%s", created.Status)
	}
	if len(created.Items) != 1 || !created.Items[0].Price.Equal(decimal.RequireFromString("12.50")) {
		t.Fatalf("price snapshot missing: %+v", created.Items)
	}
	if !created.Amount.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("amount: want=25.00 got=%s", created.Amount)
	}
	wantNext := created.LastOrderDate.AddDate(0, 1, 0)
	if !created.NextOrderDate.Equal(wantNext) {
		t.Fatalf("next order date: want=%s got=%s", wantNext, created.NextOrderDate)
	}
}

func TestSubscriptionAggregateCreateRequiresItemsAndAddresses(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	agg := newSubscriptionAggregateForTest(t, tx, nil)
	ctx := context.Background()

	_, err := agg.Create(ctx, domainagg.CreateSubscriptionInput{
		UserID:          uuid.New(),
		Frequency:       "monthly",
		ShippingAddress: testAddress(),
		BillingAddress:  testAddress(),
	})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation for empty items, got %v", err)
	}

	product := repotest.SeedProduct(t, ctx, tx, "5.00", 10)
	incomplete := testAddress()
	incomplete.PostalCode = ""
	_, err = agg.Create(ctx, domainagg.CreateSubscriptionInput{
		UserID:    uuid.New(),
		Frequency: "monthly",
		Items: []domainagg.SubscriptionItemInput{
			{ProductID: product.ID, Quantity: 1},
		},
		ShippingAddress: incomplete,
		BillingAddress:  testAddress(),
	})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation for incomplete address, got %v", err)
	}
}

func TestSubscriptionAggregateRemoveItemNeverLeavesZeroItems(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	agg := newSubscriptionAggregateForTest(t, tx, nil)
	ctx := context.Background()

	p1 := repotest.SeedProduct(t, ctx, tx, "5.00", 10)
	p2 := repotest.SeedProduct(t, ctx, tx, "7.00", 10)
	created, err := agg.Create(ctx, domainagg.CreateSubscriptionInput{
		UserID:    uuid.New(),
		Frequency: "weekly",
		Items: []domainagg.SubscriptionItemInput{
			{ProductID: p1.ID, Quantity: 1},
			{ProductID: p2.ID, Quantity: 1},
		},
		ShippingAddress: testAddress(),
		BillingAddress:  testAddress(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	afterFirst, err := agg.RemoveItem(ctx, created.ID, created.Items[0].ID)
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(afterFirst.Items) != 1 {
		t.Fatalf("expected 1 item left, got %d", len(afterFirst.Items))
	}

	_, err = agg.RemoveItem(ctx, created.ID, afterFirst.Items[0].ID)
	if !domainagg.IsCode(err, domainagg.CodeInvariantViolation) {
		t.Fatalf("expected invariant_violation for last item, got %v", err)
	}
}

func TestSubscriptionAggregateLifecycleTransitions(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	agg := newSubscriptionAggregateForTest(t, tx, nil)
	ctx := context.Background()

	product := repotest.SeedProduct(t, ctx, tx, "5.00", 10)
	created, err := agg.Create(ctx, domainagg.CreateSubscriptionInput{
		UserID:    uuid.New(),
		Frequency: "monthly",
		Items: []domainagg.SubscriptionItemInput{
			{ProductID: product.ID, Quantity: 1},
		},
		ShippingAddress: testAddress(),
		BillingAddress:  testAddress(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	paused, err := agg.Pause(ctx, created.ID)
	if err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if paused.Status != sub.StatusPaused {
		t.Fatalf("status after pause: %s", paused.Status)
	}

	// Item mutations are rejected while paused.
	_, err = agg.AddItem(ctx, created.ID, product.ID, 1)
	if !domainagg.IsCode(err, domainagg.CodeInvalidState) {
		t.Fatalf("expected invalid_state while paused, got %v", err)
	}

	resumed, err := agg.Resume(ctx, created.ID)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if resumed.Status != sub.StatusActive {
		t.Fatalf("status after resume: %s", resumed.Status)
	}
	if !resumed.NextOrderDate.After(time.Now().UTC().AddDate(0, 0, 20)) {
		t.Fatalf("resume should re-anchor next order date, got %s", resumed.NextOrderDate)
	}

	cancelled, err := agg.Cancel(ctx, created.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != sub.StatusCancelled || cancelled.CancelledAt == nil {
		t.Fatalf("cancel state: %+v", cancelled)
	}

	_, err = agg.Cancel(ctx, created.ID)
	if !domainagg.IsCode(err, domainagg.CodeInvalidState) {
		t.Fatalf("expected invalid_state for double cancel, got %v", err)
	}
}

func TestSubscriptionAggregateProcessDueRenewalsIsolatesFailures(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	ctx := context.Background()

	product := repotest.SeedProduct(t, ctx, tx, "10.00", 100)
	payments := &scriptedProcessor{}
	agg := newSubscriptionAggregateForTest(t, tx, payments)

	userID := uuid.New()
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		created, err := agg.Create(ctx, domainagg.CreateSubscriptionInput{
			UserID:    userID,
			Frequency: "monthly",
			Items: []domainagg.SubscriptionItemInput{
				{ProductID: product.ID, Quantity: 1},
			},
			AutoRenew:       true,
			ShippingAddress: testAddress(),
			BillingAddress:  testAddress(),
		})
		if err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
		ids = append(ids, created.ID)
	}

	// Make all three due and decline the middle one.
	due := time.Now().UTC().AddDate(0, 0, -1).Truncate(time.Microsecond)
	if err := tx.WithContext(ctx).Table("subscription").
		Where("id IN ?", ids).
		Update("next_order_date", due).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}
	payments.Decline(ids[1], errors.New("card declined"))

	res, err := agg.ProcessDueRenewals(ctx, domainagg.ProcessRenewalsInput{})
	if err != nil {
		t.Fatalf("ProcessDueRenewals: %v", err)
	}
	if res.Processed != 3 || res.Renewed != 2 || res.Failed != 1 {
		t.Fatalf("summary: processed=%d renewed=%d failed=%d", res.Processed, res.Renewed, res.Failed)
	}

	repo := subrepos.NewSubscriptionRepo(tx, repotest.Logger(t))
	for i, id := range ids {
		s, err := repo.GetByID(dbctx.Context{Ctx: ctx}, id)
		if err != nil {
			t.Fatalf("reload %d: %v", i, err)
		}
		if i == 1 {
			if s.Status != sub.StatusPaymentFailed {
				t.Fatalf("declined subscription status: %s", s.Status)
			}
			if !s.NextOrderDate.Equal(due) {
				t.Fatalf("declined subscription next date must not advance: %s", s.NextOrderDate)
			}
			continue
		}
		if s.Status != sub.StatusActive {
			t.Fatalf("renewed subscription %d status: %s", i, s.Status)
		}
		if !s.NextOrderDate.After(time.Now().UTC()) {
			t.Fatalf("renewed subscription %d next date not advanced: %s", i, s.NextOrderDate)
		}
	}
}

func TestSubscriptionAggregateRenewalSkipsRacedLifecycleChange(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	ctx := context.Background()

	product := repotest.SeedProduct(t, ctx, tx, "10.00", 100)
	payments := &scriptedProcessor{}
	agg := newSubscriptionAggregateForTest(t, tx, payments)

	userID := uuid.New()
	var ids []uuid.UUID
	for i := 0; i < 2; i++ {
		created, err := agg.Create(ctx, domainagg.CreateSubscriptionInput{
			UserID:    userID,
			Frequency: "monthly",
			Items: []domainagg.SubscriptionItemInput{
				{ProductID: product.ID, Quantity: 1},
			},
			AutoRenew:       true,
			ShippingAddress: testAddress(),
			BillingAddress:  testAddress(),
		})
		if err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
		ids = append(ids, created.ID)
	}

	due := time.Now().UTC().AddDate(0, 0, -1).Truncate(time.Microsecond)
	if err := tx.WithContext(ctx).Table("subscription").
		Where("id IN ?", ids).
		Update("next_order_date", due).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	// While the first subscription is mid-charge, the other's lifecycle
	// moves on before the batch reaches it.
	payments.onCharge = func(_ context.Context, s *sub.Subscription) {
		other := ids[0]
		if s.ID == other {
			other = ids[1]
		}
		if err := tx.WithContext(ctx).Table("subscription").
			Where("id = ?", other).
			Update("status", sub.StatusPaymentFailed).Error; err != nil {
			t.Errorf("flip status: %v", err)
		}
	}

	res, err := agg.ProcessDueRenewals(ctx, domainagg.ProcessRenewalsInput{})
	if err != nil {
		t.Fatalf("ProcessDueRenewals: %v", err)
	}
	if res.Processed != 2 || res.Renewed != 1 || res.Failed != 0 {
		t.Fatalf("summary: processed=%d renewed=%d failed=%d", res.Processed, res.Renewed, res.Failed)
	}

	var skipped *domainagg.RenewalOutcome
	for i := range res.Outcomes {
		if res.Outcomes[i].Skipped {
			skipped = &res.Outcomes[i]
		}
	}
	if skipped == nil {
		t.Fatalf("expected one outcome flagged as skipped")
	}
	if skipped.Err != "" || skipped.OrderID != nil {
		t.Fatalf("skipped outcome must carry no error or order: %+v", *skipped)
	}
	if skipped.Status != sub.StatusPaymentFailed {
		t.Fatalf("skipped outcome status: %s", skipped.Status)
	}
	// Only the subscription that was still active got charged.
	if payments.Charges() != 1 {
		t.Fatalf("charges: want=1 got=%d", payments.Charges())
	}
}

func TestSubscriptionAggregateProcessDueRenewalsDryRun(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	ctx := context.Background()

	product := repotest.SeedProduct(t, ctx, tx, "10.00", 100)
	payments := &scriptedProcessor{}
	agg := newSubscriptionAggregateForTest(t, tx, payments)

	created, err := agg.Create(ctx, domainagg.CreateSubscriptionInput{
		UserID:    uuid.New(),
		Frequency: "monthly",
		Items: []domainagg.SubscriptionItemInput{
			{ProductID: product.ID, Quantity: 1},
		},
		AutoRenew:       true,
		ShippingAddress: testAddress(),
		BillingAddress:  testAddress(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	due := time.Now().UTC().AddDate(0, 0, -1).Truncate(time.Microsecond)
	if err := tx.WithContext(ctx).Table("subscription").
		Where("id = ?", created.ID).
		Update("next_order_date", due).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	res, err := agg.ProcessDueRenewals(ctx, domainagg.ProcessRenewalsInput{DryRun: true})
	if err != nil {
		t.Fatalf("ProcessDueRenewals dry run: %v", err)
	}
	if res.Processed != 1 || res.Renewed != 0 || res.Failed != 0 {
		t.Fatalf("dry run summary: %+v", res)
	}
	if payments.Charges() != 0 {
		t.Fatalf("dry run must not charge, got %d charges", payments.Charges())
	}
}

type scriptedProcessor struct {
	mu       sync.Mutex
	declines map[uuid.UUID]error
	charges  int
	onCharge func(context.Context, *sub.Subscription)
}

func (p *scriptedProcessor) Decline(id uuid.UUID, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.declines == nil {
		p.declines = map[uuid.UUID]error{}
	}
	p.declines[id] = err
}

func (p *scriptedProcessor) Charges() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.charges
}

func (p *scriptedProcessor) Charge(ctx context.Context, s *sub.Subscription) error {
	p.mu.Lock()
	p.charges++
	declineErr, declined := p.declines[s.ID]
	hook := p.onCharge
	p.mu.Unlock()
	if hook != nil {
		hook(ctx, s)
	}
	if declined {
		return declineErr
	}
	return nil
}

type recordingOrderPlacer struct {
	mu     sync.Mutex
	placed []uuid.UUID
}

func (o *recordingOrderPlacer) PlaceRenewalOrder(_ context.Context, s *sub.Subscription) (uuid.UUID, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := uuid.New()
	o.placed = append(o.placed, id)
	return id, nil
}
