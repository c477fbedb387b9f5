package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SellerPaymentProfile records a seller's marketplace onboarding state.
// An empty merchant id means the seller has not connected a gateway account
// and can only settle orders cash-on-delivery.
type SellerPaymentProfile struct {
	SellerID uuid.UUID `gorm:"column:seller_id;type:uuid;primaryKey" json:"seller_id"`
	// MarketplaceMerchantID is assigned by the payment processor once the
	// seller completes the partner-referral flow.
	MarketplaceMerchantID string     `gorm:"column:marketplace_merchant_id" json:"marketplace_merchant_id"`
	OnboardingReferralURL string     `gorm:"column:onboarding_referral_url" json:"onboarding_referral_url,omitempty"`
	OnboardedAt           *time.Time `gorm:"column:onboarded_at" json:"onboarded_at,omitempty"`
	CreatedAt             time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// Onboarded reports whether split payments can be offered for this seller.
func (p SellerPaymentProfile) Onboarded() bool {
	return strings.TrimSpace(p.MarketplaceMerchantID) != ""
}
