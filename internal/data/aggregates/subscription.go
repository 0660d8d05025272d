package aggregates

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/storefront-backend/internal/data/repos"
	domainagg "github.com/yungbote/storefront-backend/internal/domain/aggregates"
	sub "github.com/yungbote/storefront-backend/internal/domain/subscription"
	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
)

type SubscriptionAggregateDeps struct {
	Base BaseDeps

	Subscriptions repos.SubscriptionRepo
	Items         repos.SubscriptionItemRepo

	Catalog  domainagg.ProductCatalog
	Payments domainagg.PaymentProcessor
	Orders   domainagg.OrderPlacer
}

type subscriptionAggregate struct {
	deps SubscriptionAggregateDeps
}

func NewSubscriptionAggregate(deps SubscriptionAggregateDeps) domainagg.SubscriptionAggregate {
	deps.Base = deps.Base.withDefaults()
	return &subscriptionAggregate{deps: deps}
}

func (a *subscriptionAggregate) Contract() domainagg.Contract {
	return domainagg.SubscriptionAggregateContract
}

func (a *subscriptionAggregate) Create(ctx context.Context, in domainagg.CreateSubscriptionInput) (*sub.Subscription, error) {
	const op = "Commerce.Subscription.Create"
	if in.UserID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if len(in.Items) == 0 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "subscription requires at least one item", nil)
	}
	frequency, _ := sub.ParseFrequency(string(in.Frequency))
	if frequency == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing frequency", nil)
	}
	if err := RequireAddress("shipping", in.ShippingAddress); err != nil {
		return nil, MapError(op, err)
	}
	if err := RequireAddress("billing", in.BillingAddress); err != nil {
		return nil, MapError(op, err)
	}
	if a.deps.Catalog == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "product catalog not configured", nil)
	}

	discount := in.Discount
	if discount.IsNegative() {
		discount = decimal.Zero
	}

	var out *sub.Subscription
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		now := time.Now().UTC()

		items := make([]*types.SubscriptionItem, 0, len(in.Items))
		seen := make(map[uuid.UUID]struct{}, len(in.Items))
		for _, it := range in.Items {
			if it.ProductID == uuid.Nil {
				return ValidationError("missing product_id on subscription item")
			}
			if _, dup := seen[it.ProductID]; dup {
				return ValidationError(fmt.Sprintf("duplicate product on subscription: %s", it.ProductID.String()))
			}
			seen[it.ProductID] = struct{}{}
			if err := RequireQuantity(it.Quantity); err != nil {
				return err
			}

			view, err := a.deps.Catalog.GetByID(dbc.Ctx, it.ProductID)
			if err != nil {
				return err
			}
			if err := RequireStock(view.Stock, it.Quantity); err != nil {
				return err
			}
			items = append(items, &types.SubscriptionItem{
				ID:        uuid.New(),
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Price:     view.Price,
			})
		}

		snapshot := make([]types.SubscriptionItem, len(items))
		for i, it := range items {
			snapshot[i] = *it
		}

		created, err := a.deps.Subscriptions.Create(dbc, &types.Subscription{
			ID:              uuid.New(),
			UserID:          in.UserID,
			Frequency:       frequency,
			Status:          sub.StatusActive,
			Amount:          sub.ComputeAmount(snapshot, discount),
			Discount:        discount,
			LastOrderDate:   now,
			NextOrderDate:   sub.NextOrderDate(now, frequency),
			AutoRenew:       in.AutoRenew,
			ShippingAddress: in.ShippingAddress,
			BillingAddress:  in.BillingAddress,
		})
		if err != nil {
			return err
		}

		for _, it := range items {
			it.SubscriptionID = created.ID
		}
		if _, err := a.deps.Items.Create(dbc, items); err != nil {
			return err
		}

		out, err = a.deps.Subscriptions.GetByID(dbc, created.ID)
		return err
	})
	return out, err
}

func (a *subscriptionAggregate) Get(ctx context.Context, subscriptionID uuid.UUID) (*sub.Subscription, error) {
	const op = "Commerce.Subscription.Get"
	if subscriptionID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing subscription_id", nil)
	}
	dbc := dbctx.Context{Ctx: ctx, Tx: dbctx.TxFrom(ctx)}
	out, err := a.deps.Subscriptions.GetByID(dbc, subscriptionID)
	if err != nil {
		return nil, MapError(op, err)
	}
	return out, nil
}

func (a *subscriptionAggregate) AddItem(ctx context.Context, subscriptionID, productID uuid.UUID, quantity int) (*sub.Subscription, error) {
	const op = "Commerce.Subscription.AddItem"
	if subscriptionID == uuid.Nil || productID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing subscription_id or product_id", nil)
	}
	if err := RequireQuantity(quantity); err != nil {
		return nil, MapError(op, err)
	}
	if a.deps.Catalog == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "product catalog not configured", nil)
	}

	var out *sub.Subscription
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		s, err := a.lockActive(dbc, subscriptionID)
		if err != nil {
			return err
		}

		var existing *types.SubscriptionItem
		for i := range s.Items {
			if s.Items[i].ProductID == productID {
				existing = &s.Items[i]
				break
			}
		}

		requested := quantity
		if existing != nil {
			requested += existing.Quantity
		}
		view, err := a.deps.Catalog.GetByID(dbc.Ctx, productID)
		if err != nil {
			return err
		}
		if err := RequireStock(view.Stock, requested); err != nil {
			return err
		}

		if existing != nil {
			if err := a.deps.Items.UpdateFields(dbc, existing.ID, map[string]any{
				"quantity": requested,
			}); err != nil {
				return err
			}
		} else {
			if _, err := a.deps.Items.Create(dbc, []*types.SubscriptionItem{{
				ID:             uuid.New(),
				SubscriptionID: s.ID,
				ProductID:      productID,
				Quantity:       quantity,
				Price:          view.Price,
			}}); err != nil {
				return err
			}
		}

		out, err = a.recomputeAmount(dbc, s)
		return err
	})
	return out, err
}

func (a *subscriptionAggregate) UpdateItemQuantity(ctx context.Context, subscriptionID, itemID uuid.UUID, quantity int) (*sub.Subscription, error) {
	const op = "Commerce.Subscription.UpdateItemQuantity"
	if subscriptionID == uuid.Nil || itemID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing subscription_id or item_id", nil)
	}
	if err := RequireQuantity(quantity); err != nil {
		return nil, MapError(op, err)
	}

	var out *sub.Subscription
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		s, err := a.lockActive(dbc, subscriptionID)
		if err != nil {
			return err
		}
		item, err := a.subscriptionLine(dbc, op, s.ID, itemID)
		if err != nil {
			return err
		}

		if a.deps.Catalog != nil {
			view, err := a.deps.Catalog.GetByID(dbc.Ctx, item.ProductID)
			if err != nil {
				return err
			}
			if err := RequireStock(view.Stock, quantity); err != nil {
				return err
			}
		}

		if err := a.deps.Items.UpdateFields(dbc, item.ID, map[string]any{
			"quantity": quantity,
		}); err != nil {
			return err
		}
		out, err = a.recomputeAmount(dbc, s)
		return err
	})
	return out, err
}

func (a *subscriptionAggregate) RemoveItem(ctx context.Context, subscriptionID, itemID uuid.UUID) (*sub.Subscription, error) {
	const op = "Commerce.Subscription.RemoveItem"
	if subscriptionID == uuid.Nil || itemID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing subscription_id or item_id", nil)
	}

	var out *sub.Subscription
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		s, err := a.lockActive(dbc, subscriptionID)
		if err != nil {
			return err
		}
		item, err := a.subscriptionLine(dbc, op, s.ID, itemID)
		if err != nil {
			return err
		}

		count, err := a.deps.Items.CountBySubscriptionID(dbc, s.ID)
		if err != nil {
			return err
		}
		if count <= 1 {
			return InvariantError("subscription must retain at least one item")
		}

		if err := a.deps.Items.DeleteByID(dbc, item.ID); err != nil {
			return err
		}
		out, err = a.recomputeAmount(dbc, s)
		return err
	})
	return out, err
}

func (a *subscriptionAggregate) UpdateFrequency(ctx context.Context, subscriptionID uuid.UUID, frequency string) (*sub.Subscription, error) {
	const op = "Commerce.Subscription.UpdateFrequency"
	if subscriptionID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing subscription_id", nil)
	}
	parsed, _ := sub.ParseFrequency(frequency)
	if parsed == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing frequency", nil)
	}

	var out *sub.Subscription
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		s, err := a.lockActive(dbc, subscriptionID)
		if err != nil {
			return err
		}
		if err := a.deps.Subscriptions.UpdateFields(dbc, s.ID, map[string]any{
			"frequency":       parsed,
			"next_order_date": sub.NextOrderDate(s.LastOrderDate, parsed),
		}); err != nil {
			return err
		}
		out, err = a.deps.Subscriptions.GetByID(dbc, s.ID)
		return err
	})
	return out, err
}

func (a *subscriptionAggregate) UpdateAddresses(ctx context.Context, subscriptionID uuid.UUID, shipping, billing sub.Address) (*sub.Subscription, error) {
	const op = "Commerce.Subscription.UpdateAddresses"
	if subscriptionID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing subscription_id", nil)
	}
	if err := RequireAddress("shipping", shipping); err != nil {
		return nil, MapError(op, err)
	}
	if err := RequireAddress("billing", billing); err != nil {
		return nil, MapError(op, err)
	}

	var out *sub.Subscription
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		s, err := a.lockActive(dbc, subscriptionID)
		if err != nil {
			return err
		}
		if err := a.deps.Subscriptions.UpdateFields(dbc, s.ID, map[string]any{
			"shipping_line1":       shipping.Line1,
			"shipping_line2":       shipping.Line2,
			"shipping_city":        shipping.City,
			"shipping_state":       shipping.State,
			"shipping_postal_code": shipping.PostalCode,
			"shipping_country":     shipping.Country,
			"billing_line1":        billing.Line1,
			"billing_line2":        billing.Line2,
			"billing_city":         billing.City,
			"billing_state":        billing.State,
			"billing_postal_code":  billing.PostalCode,
			"billing_country":      billing.Country,
		}); err != nil {
			return err
		}
		out, err = a.deps.Subscriptions.GetByID(dbc, s.ID)
		return err
	})
	return out, err
}

func (a *subscriptionAggregate) SetAutoRenew(ctx context.Context, subscriptionID uuid.UUID, autoRenew bool) (*sub.Subscription, error) {
	const op = "Commerce.Subscription.SetAutoRenew"
	if subscriptionID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing subscription_id", nil)
	}

	var out *sub.Subscription
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		s, err := a.lockActive(dbc, subscriptionID)
		if err != nil {
			return err
		}
		if err := a.deps.Subscriptions.UpdateFields(dbc, s.ID, map[string]any{
			"auto_renew": autoRenew,
		}); err != nil {
			return err
		}
		out, err = a.deps.Subscriptions.GetByID(dbc, s.ID)
		return err
	})
	return out, err
}

func (a *subscriptionAggregate) Pause(ctx context.Context, subscriptionID uuid.UUID) (*sub.Subscription, error) {
	const op = "Commerce.Subscription.Pause"
	return a.transition(ctx, op, subscriptionID, sub.StatusPaused, nil)
}

func (a *subscriptionAggregate) Resume(ctx context.Context, subscriptionID uuid.UUID) (*sub.Subscription, error) {
	const op = "Commerce.Subscription.Resume"
	return a.transition(ctx, op, subscriptionID, sub.StatusActive, func(s *sub.Subscription) map[string]any {
		now := time.Now().UTC()
		return map[string]any{
			"next_order_date": sub.NextOrderDate(now, s.Frequency),
		}
	})
}

func (a *subscriptionAggregate) Cancel(ctx context.Context, subscriptionID uuid.UUID) (*sub.Subscription, error) {
	const op = "Commerce.Subscription.Cancel"
	return a.transition(ctx, op, subscriptionID, sub.StatusCancelled, func(s *sub.Subscription) map[string]any {
		now := time.Now().UTC()
		return map[string]any{
			"cancelled_at": now,
			"auto_renew":   false,
		}
	})
}

func (a *subscriptionAggregate) transition(ctx context.Context, op string, subscriptionID uuid.UUID, target sub.Status, extra func(*sub.Subscription) map[string]any) (*sub.Subscription, error) {
	if subscriptionID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing subscription_id", nil)
	}

	var out *sub.Subscription
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		s, err := a.deps.Subscriptions.LockByID(dbc, subscriptionID)
		if err != nil {
			return err
		}
		if err := RequireTransition(s.Status, target); err != nil {
			return err
		}

		updates := map[string]any{"status": target}
		if extra != nil {
			for k, v := range extra(s) {
				updates[k] = v
			}
		}
		ok, err := a.deps.Base.CASGuard.UpdateByStatus(dbc, "subscription", s.ID, []string{string(s.Status)}, updates)
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "subscription changed during transition"); err != nil {
			return err
		}
		out, err = a.deps.Subscriptions.GetByID(dbc, s.ID)
		return err
	})
	return out, err
}

func (a *subscriptionAggregate) ProcessDueRenewals(ctx context.Context, in domainagg.ProcessRenewalsInput) (domainagg.ProcessRenewalsResult, error) {
	const op = "Commerce.Subscription.ProcessDueRenewals"
	var out domainagg.ProcessRenewalsResult
	if a.deps.Payments == nil || a.deps.Orders == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "payment processor and order placer not configured", nil)
	}

	now := in.Now.UTC()
	if now.IsZero() {
		now = time.Now().UTC()
	}

	dbc := dbctx.Context{Ctx: ctx, Tx: dbctx.TxFrom(ctx)}
	due, err := a.deps.Subscriptions.GetDueForRenewal(dbc, now, in.Limit)
	if err != nil {
		return out, MapError(op, err)
	}

	for i := range due {
		id := due[i].ID
		out.Processed++

		if in.DryRun {
			out.Outcomes = append(out.Outcomes, domainagg.RenewalOutcome{
				SubscriptionID: id,
				Status:         due[i].Status,
				NextOrderDate:  sub.NextOrderDate(now, due[i].Frequency),
			})
			continue
		}

		outcome := a.renewOne(ctx, id, now)
		switch {
		case outcome.OrderID != nil:
			out.Renewed++
		case outcome.Skipped:
			// Lifecycle moved on before the lock; leave the counters alone.
		case outcome.Err != "":
			out.Failed++
		}
		out.Outcomes = append(out.Outcomes, outcome)
	}
	return out, nil
}

// renewOne processes a single due subscription in its own transaction so one
// failure never aborts the rest of the batch. A declined charge commits the
// payment_failed status; only infrastructure errors roll the write back.
func (a *subscriptionAggregate) renewOne(ctx context.Context, subscriptionID uuid.UUID, now time.Time) domainagg.RenewalOutcome {
	const op = "Commerce.Subscription.RenewOne"
	outcome := domainagg.RenewalOutcome{SubscriptionID: subscriptionID}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		s, err := a.deps.Subscriptions.LockByID(dbc, subscriptionID)
		if err != nil {
			return err
		}
		if s.Status != sub.StatusActive || !s.AutoRenew || s.NextOrderDate.After(now) {
			// Raced with a lifecycle change since the due query.
			outcome.Status = s.Status
			outcome.NextOrderDate = s.NextOrderDate
			outcome.Skipped = true
			return nil
		}

		if chargeErr := a.deps.Payments.Charge(dbc.Ctx, s); chargeErr != nil {
			if err := a.deps.Subscriptions.UpdateFields(dbc, s.ID, map[string]any{
				"status": sub.StatusPaymentFailed,
			}); err != nil {
				return err
			}
			outcome.Status = sub.StatusPaymentFailed
			outcome.NextOrderDate = s.NextOrderDate
			outcome.Err = chargeErr.Error()
			if a.deps.Base.Log != nil {
				a.deps.Base.Log.Warn("subscription renewal charge declined",
					"subscription_id", s.ID.String(), "error", chargeErr.Error())
			}
			return nil
		}

		// Refresh price snapshots from the catalog before recomputing the
		// recurring amount for the next cycle.
		if a.deps.Catalog != nil {
			for i := range s.Items {
				view, err := a.deps.Catalog.GetByID(dbc.Ctx, s.Items[i].ProductID)
				if err != nil {
					if domainagg.IsCode(err, domainagg.CodeNotFound) {
						continue // retired product keeps its last snapshot
					}
					return err
				}
				if !view.Price.Equal(s.Items[i].Price) {
					if err := a.deps.Items.UpdateFields(dbc, s.Items[i].ID, map[string]any{
						"price": view.Price,
					}); err != nil {
						return err
					}
					s.Items[i].Price = view.Price
				}
			}
		}

		orderID, err := a.deps.Orders.PlaceRenewalOrder(dbc.Ctx, s)
		if err != nil {
			return err
		}

		next := sub.NextOrderDate(now, s.Frequency)
		if err := a.deps.Subscriptions.UpdateFields(dbc, s.ID, map[string]any{
			"amount":          sub.ComputeAmount(s.Items, s.Discount),
			"last_order_date": now,
			"next_order_date": next,
		}); err != nil {
			return err
		}

		outcome.Status = sub.StatusActive
		outcome.OrderID = &orderID
		outcome.NextOrderDate = next
		return nil
	})
	if err != nil {
		outcome.Err = err.Error()
	}
	return outcome
}

func (a *subscriptionAggregate) lockActive(dbc dbctx.Context, subscriptionID uuid.UUID) (*sub.Subscription, error) {
	s, err := a.deps.Subscriptions.LockByID(dbc, subscriptionID)
	if err != nil {
		return nil, err
	}
	if err := RequireSubscriptionActive(s.Status); err != nil {
		return nil, err
	}
	return s, nil
}

func (a *subscriptionAggregate) subscriptionLine(dbc dbctx.Context, op string, subscriptionID, itemID uuid.UUID) (*types.SubscriptionItem, error) {
	item, err := a.deps.Items.GetByID(dbc, itemID)
	if err != nil {
		return nil, err
	}
	if item.SubscriptionID != subscriptionID {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("item %s not on subscription %s", itemID.String(), subscriptionID.String()), nil)
	}
	return item, nil
}

func (a *subscriptionAggregate) recomputeAmount(dbc dbctx.Context, s *sub.Subscription) (*sub.Subscription, error) {
	items, err := a.deps.Items.GetBySubscriptionID(dbc, s.ID)
	if err != nil {
		return nil, err
	}
	if err := a.deps.Subscriptions.UpdateFields(dbc, s.ID, map[string]any{
		"amount": sub.ComputeAmount(items, s.Discount),
	}); err != nil {
		return nil, err
	}
	return a.deps.Subscriptions.GetByID(dbc, s.ID)
}
