package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/souqly/souqly-backend/pkg/enums"
)

// Voucher is an admin-managed discount. Fixed vouchers carry ValueCents;
// percentage vouchers carry ValuePercent in (0, 100].
type Voucher struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code          string            `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Kind          enums.VoucherKind `gorm:"column:kind;type:text;not null" json:"kind"`
	ValueCents    int64             `gorm:"column:value_cents;not null;default:0" json:"value_cents"`
	ValuePercent  int               `gorm:"column:value_percent;not null;default:0" json:"value_percent"`
	MinOrderCents int64             `gorm:"column:min_order_cents;not null;default:0" json:"min_order_cents"`
	ExpiresAt     time.Time         `gorm:"column:expires_at;not null" json:"expires_at"`
	Disabled      bool              `gorm:"column:disabled;not null;default:false" json:"disabled"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// ApplicableAt reports whether the voucher may discount an order with the
// given subtotal at the given instant. Expiry is inclusive: a voucher is
// usable through its expiry timestamp.
func (v Voucher) ApplicableAt(now time.Time, subtotalCents int64) bool {
	if v.Disabled {
		return false
	}
	if now.After(v.ExpiresAt) {
		return false
	}
	return subtotalCents >= v.MinOrderCents
}
