package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/souqly/souqly-backend/pkg/db/models"
	"github.com/souqly/souqly-backend/pkg/enums"
)

// CartLine is a checkout-session line item. Lines live client-side until
// submission; only selected lines participate in totals.
type CartLine struct {
	ProductID       uuid.UUID
	VariantID       string
	SellerID        uuid.UUID
	ProductName     string
	ProductImageURL string
	UnitPriceCents  int64
	Qty             int
	Selected        bool
}

// Totals is the derived money breakdown for one checkout attempt. It is
// computed, never persisted.
type Totals struct {
	SubtotalCents   int64
	ShippingCents   int64
	DiscountCents   int64
	GrandTotalCents int64
}

// Options carries the calculator's environment: the flat shipping fee and
// the clock used for voucher expiry.
type Options struct {
	ShippingFeeCents int64
	Now              time.Time
}

// ComputeTotals derives subtotal, shipping, voucher discount, and grand total
// from the selected cart lines. Pure and deterministic: no selected lines
// yields all-zero totals, and a voucher that is not applicable is ignored
// rather than treated as an error (callers surface non-applicability to the
// buyer before submission).
func ComputeTotals(lines []CartLine, voucher *models.Voucher, opts Options) Totals {
	var subtotal int64
	selected := 0
	for _, line := range lines {
		if !line.Selected {
			continue
		}
		selected++
		subtotal += line.UnitPriceCents * int64(line.Qty)
	}
	if selected == 0 {
		return Totals{}
	}

	shipping := opts.ShippingFeeCents
	discount := discountFor(voucher, subtotal, opts.Now)
	if max := subtotal + shipping; discount > max {
		discount = max
	}
	if discount < 0 {
		discount = 0
	}

	total := subtotal + shipping - discount
	if total < 0 {
		total = 0
	}

	return Totals{
		SubtotalCents:   subtotal,
		ShippingCents:   shipping,
		DiscountCents:   discount,
		GrandTotalCents: total,
	}
}

func discountFor(voucher *models.Voucher, subtotalCents int64, now time.Time) int64 {
	if voucher == nil {
		return 0
	}
	if now.IsZero() {
		now = time.Now()
	}
	if !voucher.ApplicableAt(now, subtotalCents) {
		return 0
	}
	switch voucher.Kind {
	case enums.VoucherKindPercentage:
		percent := voucher.ValuePercent
		if percent <= 0 || percent > 100 {
			return 0
		}
		return decimal.NewFromInt(subtotalCents).
			Mul(decimal.NewFromInt(int64(percent))).
			Div(decimal.NewFromInt(100)).
			Round(0).
			IntPart()
	case enums.VoucherKindFixed:
		if voucher.ValueCents <= 0 {
			return 0
		}
		return voucher.ValueCents
	default:
		return 0
	}
}
