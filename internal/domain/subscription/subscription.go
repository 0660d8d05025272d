package subscription

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Address is the structured shipping/billing destination embedded on a
// subscription. Line2 is the only optional field.
type Address struct {
	Line1      string `gorm:"type:text" json:"line1"`
	Line2      string `gorm:"type:text" json:"line2,omitempty"`
	City       string `gorm:"type:text" json:"city"`
	State      string `gorm:"type:text" json:"state"`
	PostalCode string `gorm:"type:varchar(32)" json:"postal_code"`
	Country    string `gorm:"type:varchar(2)" json:"country"`
}

// Complete reports whether all required address fields are set.
func (a Address) Complete() bool {
	return strings.TrimSpace(a.Line1) != "" &&
		strings.TrimSpace(a.City) != "" &&
		strings.TrimSpace(a.State) != "" &&
		strings.TrimSpace(a.PostalCode) != "" &&
		strings.TrimSpace(a.Country) != ""
}

// Subscription is the aggregate root for recurring orders. Amount is derived
// from items minus discount. An active subscription always holds at least one
// item.
type Subscription struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Frequency Frequency `gorm:"type:varchar(16);not null" json:"frequency"`
	Status    Status    `gorm:"type:varchar(16);not null;default:'active';index" json:"status"`

	Items []SubscriptionItem `gorm:"constraint:OnDelete:CASCADE;foreignKey:SubscriptionID;references:ID" json:"items,omitempty"`

	Amount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"amount"`
	Discount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`

	LastOrderDate time.Time  `gorm:"not null" json:"last_order_date"`
	NextOrderDate time.Time  `gorm:"not null;index" json:"next_order_date"`
	AutoRenew     bool       `gorm:"not null;default:true;index" json:"auto_renew"`
	CancelledAt   *time.Time `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`

	ShippingAddress Address `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	BillingAddress  Address `gorm:"embedded;embeddedPrefix:billing_" json:"billing_address"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Subscription) TableName() string { return "subscription" }

// SubscriptionItem is a recurring line. Price is a snapshot taken at add time
// and refreshed from the catalog on each successful renewal.
type SubscriptionItem struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SubscriptionID uuid.UUID `gorm:"type:uuid;not null;index:idx_subscription_item_line,unique,priority:1" json:"subscription_id"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null;index:idx_subscription_item_line,unique,priority:2" json:"product_id"`

	Quantity int             `gorm:"not null" json:"quantity"`
	Price    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (SubscriptionItem) TableName() string { return "subscription_item" }

// ComputeAmount derives the recurring charge: max(0, Σ price*qty - discount),
// rounded to 2 decimal places.
func ComputeAmount(items []SubscriptionItem, discount decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	amount := sum.Sub(discount).Round(2)
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}
