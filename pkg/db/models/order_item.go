package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem snapshots a cart line at submission time so later catalog edits
// do not rewrite order history. IsReviewed moves one way, false to true.
type OrderItem struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID          uuid.UUID `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	ProductID        uuid.UUID `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	ProductVariantID string    `gorm:"column:product_variant_id" json:"product_variant_id"`
	ProductName      string    `gorm:"column:product_name;not null" json:"product_name"`
	ProductImageURL  string    `gorm:"column:product_image_url" json:"product_image_url"`
	Qty              int       `gorm:"column:qty;not null" json:"qty"`
	UnitPriceCents   int64     `gorm:"column:unit_price_cents;not null" json:"unit_price_cents"`
	IsReviewed       bool      `gorm:"column:is_reviewed;not null;default:false" json:"is_reviewed"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
