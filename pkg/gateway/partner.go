package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/souqly/souqly-backend/pkg/errors"
)

const partnerReferralsPath = "/v2/customer/partner-referrals"

// OnboardSeller creates a partner referral for a seller without a connected
// merchant account and returns the hosted action URL the seller must visit
// to finish onboarding.
func (c *Client) OnboardSeller(ctx context.Context, sellerID uuid.UUID, email, businessName string) (string, error) {
	if sellerID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	if strings.TrimSpace(email) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "seller email required")
	}

	payload := partnerReferralPayload{
		TrackingID: sellerID.String(),
		Email:      email,
		Operations: []referralOperation{{Operation: "API_INTEGRATION"}},
		Products:   []string{"EXPRESS_CHECKOUT"},
		LegalConsents: []referralLegalConsent{{
			Type:    "SHARE_DATA_CONSENT",
			Granted: true,
		}},
	}
	if name := strings.TrimSpace(businessName); name != "" {
		payload.BusinessEntity = &referralBusinessEntity{BusinessName: name}
	}

	c.log(ctx, "request", "onboard_seller", map[string]any{
		"seller_id": sellerID,
		"email":     email,
	})

	var referral partnerReferralResponse
	resp, err := c.doJSON(ctx, http.MethodPost, partnerReferralsPath, payload, &referral)
	if err != nil {
		c.log(ctx, "error", "onboard_seller", map[string]any{"error": err.Error()})
		return "", err
	}
	if resp.StatusCode != http.StatusCreated {
		err := pkgerrors.New(pkgerrors.CodeOnboarding, fmt.Sprintf("partner referral endpoint returned %d", resp.StatusCode))
		c.log(ctx, "error", "onboard_seller", map[string]any{"error": err.Error()})
		return "", err
	}

	actionURL := referral.actionURL()
	if actionURL == "" {
		err := pkgerrors.New(pkgerrors.CodeOnboarding, "partner referral response missing action_url link")
		c.log(ctx, "error", "onboard_seller", map[string]any{"error": err.Error()})
		return "", err
	}

	c.log(ctx, "response", "onboard_seller", map[string]any{"seller_id": sellerID})
	return actionURL, nil
}
