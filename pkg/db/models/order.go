package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/souqly/souqly-backend/pkg/enums"
)

// Order is the persisted result of a successful checkout attempt. It is
// created exactly once per attempt, always in pending status, and afterwards
// only its status moves (seller/admin action) and its items' review flags.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BuyerID         uuid.UUID           `gorm:"column:buyer_id;type:uuid;not null;index" json:"buyer_id"`
	SellerID        uuid.UUID           `gorm:"column:seller_id;type:uuid;not null;index" json:"seller_id"`
	Status          enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:text;not null" json:"payment_method"`
	TotalCents      int64               `gorm:"column:total_cents;not null" json:"total_cents"`
	ShippingAddress string              `gorm:"column:shipping_address;not null" json:"shipping_address"`
	PhoneNumber     string              `gorm:"column:phone_number;not null" json:"phone_number"`
	// GatewayOrderID links a marketplace payment for reconciliation; empty for COD.
	GatewayOrderID string      `gorm:"column:gateway_order_id" json:"gateway_order_id,omitempty"`
	Items          []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt      time.Time   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// HasUnreviewedItems reports whether any line item still awaits a review.
func (o Order) HasUnreviewedItems() bool {
	for _, item := range o.Items {
		if !item.IsReviewed {
			return true
		}
	}
	return false
}
