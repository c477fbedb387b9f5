package gateway

import (
	"github.com/shopspring/decimal"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// MarketplaceOrder is the gateway-side order created for a split payment.
// PlatformFeeCents + SellerNetCents always equals GrossCents.
type MarketplaceOrder struct {
	GatewayOrderID   string
	GrossCents       int64
	PlatformFeeCents int64
	SellerNetCents   int64
}

// SplitAmounts divides a gross amount between the platform and the seller at
// the given fee rate, rounding the fee to minor-unit precision. The seller
// net absorbs the rounding remainder so the two parts always sum to gross.
func SplitAmounts(grossCents int64, feeRate decimal.Decimal) (platformFeeCents, sellerNetCents int64) {
	fee := decimal.NewFromInt(grossCents).Mul(feeRate).Round(0)
	platformFeeCents = fee.IntPart()
	if platformFeeCents < 0 {
		platformFeeCents = 0
	}
	if platformFeeCents > grossCents {
		platformFeeCents = grossCents
	}
	sellerNetCents = grossCents - platformFeeCents
	return platformFeeCents, sellerNetCents
}

// centsToAmount renders integer minor units as the gateway's decimal string.
func centsToAmount(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

type amountPayload struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type platformFeePayload struct {
	Amount amountPayload `json:"amount"`
}

type paymentInstructionPayload struct {
	DisbursementMode string               `json:"disbursement_mode"`
	PlatformFees     []platformFeePayload `json:"platform_fees"`
}

type payeePayload struct {
	MerchantID string `json:"merchant_id"`
}

type purchaseUnitPayload struct {
	ReferenceID        string                     `json:"reference_id"`
	Amount             amountPayload              `json:"amount"`
	Payee              *payeePayload              `json:"payee,omitempty"`
	PaymentInstruction *paymentInstructionPayload `json:"payment_instruction,omitempty"`
}

type createOrderPayload struct {
	Intent        string                `json:"intent"`
	PurchaseUnits []purchaseUnitPayload `json:"purchase_units"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type linkPayload struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type partnerReferralPayload struct {
	TrackingID     string                  `json:"tracking_id"`
	Email          string                  `json:"email"`
	Operations     []referralOperation     `json:"operations"`
	Products       []string                `json:"products"`
	LegalConsents  []referralLegalConsent  `json:"legal_consents"`
	BusinessEntity *referralBusinessEntity `json:"business_entity,omitempty"`
}

type referralOperation struct {
	Operation string `json:"operation"`
}

type referralLegalConsent struct {
	Type    string `json:"type"`
	Granted bool   `json:"granted"`
}

type referralBusinessEntity struct {
	BusinessName string `json:"business_name,omitempty"`
}

type partnerReferralResponse struct {
	Links []linkPayload `json:"links"`
}

func (r partnerReferralResponse) actionURL() string {
	for _, link := range r.Links {
		if link.Rel == "action_url" {
			return link.Href
		}
	}
	return ""
}
