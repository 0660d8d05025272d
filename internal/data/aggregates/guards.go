package aggregates

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/yungbote/storefront-backend/internal/domain/catalog"
	sub "github.com/yungbote/storefront-backend/internal/domain/subscription"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
	"gorm.io/gorm"
)

// CASGuard provides compare-and-set helpers for aggregate writes.
type CASGuard struct {
	db *gorm.DB
}

func NewCASGuard(db *gorm.DB) CASGuard {
	return CASGuard{db: db}
}

func (g CASGuard) baseDB(dbc dbctx.Context) (*gorm.DB, error) {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx), nil
	}
	if g.db != nil {
		return g.db.WithContext(dbc.Ctx), nil
	}
	return nil, ValidationError("missing db transaction context")
}

// UpdateByStatus updates a row only when id+status guard matches.
func (g CASGuard) UpdateByStatus(dbc dbctx.Context, table string, id uuid.UUID, allowedStatuses []string, updates map[string]any) (bool, error) {
	db, err := g.baseDB(dbc)
	if err != nil {
		return false, err
	}
	table = strings.TrimSpace(table)
	if table == "" || id == uuid.Nil {
		return false, ValidationError("table and id are required for UpdateByStatus")
	}
	if len(allowedStatuses) == 0 {
		return false, ValidationError("allowedStatuses must not be empty")
	}
	res := db.Table(table).
		Where("id = ? AND status IN ?", id, allowedStatuses).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RequireCASSuccess converts a failed compare-and-set into a typed conflict error.
func RequireCASSuccess(ok bool, message string) error {
	if ok {
		return nil
	}
	return ConflictError(strings.TrimSpace(message))
}

// RequireQuantity validates a line quantity for add/create flows.
func RequireQuantity(qty int) error {
	if qty <= 0 {
		return ValidationError(fmt.Sprintf("quantity must be positive, got %d", qty))
	}
	return nil
}

// RequireStock runs the stock guard for a requested total quantity.
func RequireStock(stock, requested int) error {
	return catalog.ReserveStock(stock, requested)
}

// RequireSubscriptionActive rejects mutations on non-active subscriptions.
func RequireSubscriptionActive(status sub.Status) error {
	if status != sub.StatusActive {
		return InvalidStateError(fmt.Sprintf("subscription is %s, not active", status))
	}
	return nil
}

// RequireTransition validates a lifecycle move against the transition table.
func RequireTransition(from, to sub.Status) error {
	if sub.CanTransition(from, to) {
		return nil
	}
	if from == sub.StatusCancelled && to == sub.StatusCancelled {
		return InvalidStateError("subscription already cancelled")
	}
	return InvalidStateError(fmt.Sprintf("cannot transition subscription from %s to %s", from, to))
}

// RequireAddress validates that all required address fields are present.
func RequireAddress(kind string, a sub.Address) error {
	if !a.Complete() {
		return ValidationError(fmt.Sprintf("%s address is incomplete", kind))
	}
	return nil
}
