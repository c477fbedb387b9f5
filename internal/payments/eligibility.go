package payments

import (
	"github.com/souqly/souqly-backend/pkg/db/models"
	"github.com/souqly/souqly-backend/pkg/enums"
)

// ResolveEligibleMethods filters the configured payment methods for a seller.
// Sellers with a connected marketplace merchant account get the full list;
// everyone else gets cash on delivery only. A method list without COD is a
// configuration error and resolves to no methods at all, which the caller
// surfaces as "no payment method available" rather than crashing.
func ResolveEligibleMethods(profile *models.SellerPaymentProfile, all []enums.PaymentMethod) []enums.PaymentMethod {
	if profile != nil && profile.Onboarded() {
		out := make([]enums.PaymentMethod, len(all))
		copy(out, all)
		return out
	}

	out := make([]enums.PaymentMethod, 0, 1)
	for _, method := range all {
		if method == enums.PaymentMethodCOD {
			out = append(out, method)
		}
	}
	return out
}
