package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the catalog row checkout validates cart lines against. The
// checkout core only reads price and stock; catalog management lives outside
// this service.
type Product struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SellerID       uuid.UUID `gorm:"column:seller_id;type:uuid;not null;index" json:"seller_id"`
	Name           string    `gorm:"column:name;not null" json:"name"`
	ImageURL       string    `gorm:"column:image_url" json:"image_url"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null" json:"unit_price_cents"`
	StockQty       int       `gorm:"column:stock_qty;not null;default:0" json:"stock_qty"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
