package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/souqly/souqly-backend/api/responses"
	"github.com/souqly/souqly-backend/api/validators"
	"github.com/souqly/souqly-backend/internal/payments"
	"github.com/souqly/souqly-backend/pkg/enums"
	"github.com/souqly/souqly-backend/pkg/logger"
)

type onboardingRequest struct {
	Email        string `json:"email" validate:"required,email"`
	BusinessName string `json:"business_name"`
}

// PaymentMethods resolves which payment methods a buyer can use against the
// given seller.
func PaymentMethods(profiles payments.ProfileRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		sellerID, err := validators.ParseQueryUUID(r, "seller_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		profile, err := profiles.FindBySellerID(ctx, sellerID)
		if err != nil {
			// Eligibility degrades to cash on delivery when the profile store
			// is unreachable; the buyer can still check out.
			if logg != nil {
				logg.Warn(logg.WithSellerID(ctx, sellerID.String()), "profile lookup failed, resolving cash-only eligibility")
			}
			profile = nil
		}

		methods := payments.ResolveEligibleMethods(profile, enums.AllPaymentMethods())
		responses.WriteSuccess(w, map[string]any{
			"seller_id": sellerID,
			"methods":   methods,
		})
	}
}

// StartSellerOnboarding creates a marketplace onboarding referral and returns
// the URL the seller completes it at.
func StartSellerOnboarding(svc payments.OnboardingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		sellerID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req onboardingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		referralURL, err := svc.StartOnboarding(ctx, sellerID, req.Email, req.BusinessName)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{
			"onboarding_url": referralURL,
		})
	}
}
