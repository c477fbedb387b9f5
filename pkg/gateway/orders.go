package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/souqly/souqly-backend/pkg/errors"
)

const (
	ordersPath  = "/v2/checkout/orders"
	capturePath = "/v2/checkout/orders/%s/capture"
)

// SplitOrderParams describes a marketplace split-payment order.
type SplitOrderParams struct {
	GrossCents       int64
	CurrencyCode     string
	SellerID         uuid.UUID
	SellerMerchantID string
	FeeRate          decimal.Decimal
}

// CreateSplitOrder submits a purchase unit paying the seller's connected
// merchant account, with the platform fee withheld per the configured rate.
// It must not be retried blindly: a second submission creates a second
// authorization against the buyer.
func (c *Client) CreateSplitOrder(ctx context.Context, params SplitOrderParams) (*MarketplaceOrder, error) {
	if params.GrossCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gross amount must be positive")
	}
	if strings.TrimSpace(params.SellerMerchantID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller merchant id required for split payment")
	}
	currency := params.CurrencyCode
	if currency == "" {
		currency = "USD"
	}

	feeCents, netCents := SplitAmounts(params.GrossCents, params.FeeRate)

	payload := createOrderPayload{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnitPayload{{
			ReferenceID: params.SellerID.String(),
			Amount: amountPayload{
				CurrencyCode: currency,
				Value:        centsToAmount(params.GrossCents),
			},
			Payee: &payeePayload{MerchantID: params.SellerMerchantID},
			PaymentInstruction: &paymentInstructionPayload{
				DisbursementMode: "INSTANT",
				PlatformFees: []platformFeePayload{{
					Amount: amountPayload{
						CurrencyCode: currency,
						Value:        centsToAmount(feeCents),
					},
				}},
			},
		}},
	}

	c.log(ctx, "request", "create_split_order", map[string]any{
		"seller_id":   params.SellerID,
		"gross_cents": params.GrossCents,
		"fee_cents":   feeCents,
		"merchant_id": params.SellerMerchantID,
		"currency":    currency,
	})

	var created orderResponse
	resp, err := c.doJSON(ctx, http.MethodPost, ordersPath, payload, &created)
	if err != nil {
		c.log(ctx, "error", "create_split_order", map[string]any{"error": err.Error()})
		return nil, err
	}
	if resp.StatusCode != http.StatusCreated {
		err := pkgerrors.New(pkgerrors.CodeGatewayOrder, fmt.Sprintf("orders endpoint returned %d", resp.StatusCode))
		c.log(ctx, "error", "create_split_order", map[string]any{"error": err.Error()})
		return nil, err
	}
	if created.ID == "" {
		err := pkgerrors.New(pkgerrors.CodeGatewayOrder, "order response missing id")
		c.log(ctx, "error", "create_split_order", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "create_split_order", map[string]any{
		"gateway_order_id": created.ID,
		"status":           created.Status,
	})
	return &MarketplaceOrder{
		GatewayOrderID:   created.ID,
		GrossCents:       params.GrossCents,
		PlatformFeeCents: feeCents,
		SellerNetCents:   netCents,
	}, nil
}

// GetOrder reads the current gateway-side status of an order, for example
// CREATED, APPROVED, or VOIDED.
func (c *Client) GetOrder(ctx context.Context, gatewayOrderID string) (string, error) {
	if strings.TrimSpace(gatewayOrderID) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "gateway order id required")
	}

	var order orderResponse
	resp, err := c.doJSON(ctx, http.MethodGet, ordersPath+"/"+gatewayOrderID, nil, &order)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", pkgerrors.New(pkgerrors.CodeGatewayOrder, fmt.Sprintf("order status endpoint returned %d", resp.StatusCode)).
			WithDetails(map[string]any{"gateway_order_id": gatewayOrderID})
	}
	return order.Status, nil
}

// CaptureOrder finalizes an approved payment. There is no automatic retry:
// a failure here leaves an authorized-but-uncaptured payment that the
// caller must surface as its own terminal state.
func (c *Client) CaptureOrder(ctx context.Context, gatewayOrderID string) error {
	if strings.TrimSpace(gatewayOrderID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "gateway order id required")
	}

	c.log(ctx, "request", "capture_order", map[string]any{"gateway_order_id": gatewayOrderID})

	var captured orderResponse
	resp, err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf(capturePath, gatewayOrderID), nil, &captured)
	if err != nil {
		c.log(ctx, "error", "capture_order", map[string]any{"error": err.Error()})
		return err
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		err := pkgerrors.New(pkgerrors.CodeCapture, fmt.Sprintf("capture endpoint returned %d", resp.StatusCode)).
			WithDetails(map[string]any{"gateway_order_id": gatewayOrderID})
		c.log(ctx, "error", "capture_order", map[string]any{"error": err.Error()})
		return err
	}

	c.log(ctx, "response", "capture_order", map[string]any{
		"gateway_order_id": gatewayOrderID,
		"status":           captured.Status,
	})
	return nil
}
