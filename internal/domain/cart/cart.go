package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Cart is the aggregate root for line items and derived totals. Exactly one
// of UserID/SessionID is set (see Owner); at most one active cart exists per
// owner. Merged guest carts are deactivated, never deleted.
//
// Subtotal/Tax/Shipping/Discount/Total are derived by ComputeTotals and are
// never accepted from callers.
type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index:idx_cart_active_user,unique,where:is_active AND user_id IS NOT NULL" json:"user_id,omitempty"`
	SessionID *string    `gorm:"type:varchar(128);index:idx_cart_active_session,unique,where:is_active AND session_id IS NOT NULL" json:"session_id,omitempty"`

	Items []CartItem `gorm:"constraint:OnDelete:CASCADE;foreignKey:CartID;references:ID" json:"items,omitempty"`

	Subtotal decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"subtotal"`
	Tax      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"tax"`
	Shipping decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"shipping"`
	Discount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`
	Total    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total"`

	CouponCode  *string `gorm:"type:varchar(64)" json:"coupon_code,omitempty"`
	IsGift      bool    `gorm:"not null;default:false" json:"is_gift"`
	GiftMessage *string `gorm:"type:text" json:"gift_message,omitempty"`

	IsActive bool `gorm:"not null;default:true;index" json:"is_active"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Cart) TableName() string { return "cart" }

// CartItem is a single line. Price is the product price snapshot taken when
// the line was created. Line identity is (cart, product, options key): adding
// the same product with the same options bumps Quantity instead of inserting
// a second row.
type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CartID    uuid.UUID `gorm:"type:uuid;not null;index:idx_cart_item_line,unique,priority:1" json:"cart_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index:idx_cart_item_line,unique,priority:2" json:"product_id"`

	Quantity int             `gorm:"not null" json:"quantity"`
	Price    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Subtotal decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`

	// SelectedOptions carries free-form variant choices (size, color, ...).
	// OptionsKey is its canonical sorted form and participates in line identity.
	SelectedOptions datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'" json:"selected_options,omitempty"`
	OptionsKey      string         `gorm:"type:varchar(512);not null;default:'';index:idx_cart_item_line,unique,priority:3" json:"-"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (CartItem) TableName() string { return "cart_item" }
