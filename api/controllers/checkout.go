package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/souqly/souqly-backend/api/responses"
	"github.com/souqly/souqly-backend/api/validators"
	"github.com/souqly/souqly-backend/internal/checkout"
	"github.com/souqly/souqly-backend/internal/pricing"
	"github.com/souqly/souqly-backend/pkg/enums"
	pkgerrors "github.com/souqly/souqly-backend/pkg/errors"
	"github.com/souqly/souqly-backend/pkg/logger"
)

type checkoutLineRequest struct {
	ProductID       string `json:"product_id" validate:"required,uuid"`
	VariantID       string `json:"variant_id"`
	SellerID        string `json:"seller_id" validate:"required,uuid"`
	ProductName     string `json:"product_name" validate:"required"`
	ProductImageURL string `json:"product_image_url"`
	UnitPriceCents  int64  `json:"unit_price_cents" validate:"min=0"`
	Qty             int    `json:"qty" validate:"required,min=1"`
	Selected        bool   `json:"selected"`
}

type checkoutRequest struct {
	BuyerID         string                `json:"buyer_id" validate:"required,uuid"`
	ShippingAddress string                `json:"shipping_address" validate:"required"`
	PhoneNumber     string                `json:"phone_number" validate:"required"`
	PaymentMethod   string                `json:"payment_method" validate:"required"`
	VoucherCode     string                `json:"voucher_code"`
	Lines           []checkoutLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type checkoutTotalsResponse struct {
	SubtotalCents   int64 `json:"subtotal_cents"`
	ShippingCents   int64 `json:"shipping_cents"`
	DiscountCents   int64 `json:"discount_cents"`
	GrandTotalCents int64 `json:"grand_total_cents"`
}

type checkoutResponse struct {
	OrderID          uuid.UUID              `json:"order_id"`
	Status           enums.OrderStatus      `json:"status"`
	PaymentMethod    enums.PaymentMethod    `json:"payment_method"`
	Totals           checkoutTotalsResponse `json:"totals"`
	GatewayOrderID   string                 `json:"gateway_order_id,omitempty"`
	PlatformFeeCents int64                  `json:"platform_fee_cents,omitempty"`
	SellerNetCents   int64                  `json:"seller_net_cents,omitempty"`
}

// SubmitCheckout drives one checkout attempt.
func SubmitCheckout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input, err := submitInputFromRequest(req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Submit(ctx, *input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			OrderID:       result.Order.ID,
			Status:        result.Order.Status,
			PaymentMethod: result.PaymentMethod,
			Totals: checkoutTotalsResponse{
				SubtotalCents:   result.Totals.SubtotalCents,
				ShippingCents:   result.Totals.ShippingCents,
				DiscountCents:   result.Totals.DiscountCents,
				GrandTotalCents: result.Totals.GrandTotalCents,
			},
			GatewayOrderID:   result.GatewayOrderID,
			PlatformFeeCents: result.PlatformFeeCents,
			SellerNetCents:   result.SellerNetCents,
		})
	}
}

func submitInputFromRequest(req checkoutRequest) (*checkout.SubmitInput, error) {
	buyerID, err := uuid.Parse(req.BuyerID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer_id must be a uuid")
	}
	method, err := enums.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	lines := make([]pricing.CartLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id must be a uuid")
		}
		sellerID, err := uuid.Parse(line.SellerID)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller_id must be a uuid")
		}
		lines = append(lines, pricing.CartLine{
			ProductID:       productID,
			VariantID:       line.VariantID,
			SellerID:        sellerID,
			ProductName:     line.ProductName,
			ProductImageURL: line.ProductImageURL,
			UnitPriceCents:  line.UnitPriceCents,
			Qty:             line.Qty,
			Selected:        line.Selected,
		})
	}

	return &checkout.SubmitInput{
		BuyerID:         buyerID,
		ShippingAddress: req.ShippingAddress,
		PhoneNumber:     req.PhoneNumber,
		PaymentMethod:   method,
		VoucherCode:     req.VoucherCode,
		Lines:           lines,
	}, nil
}
