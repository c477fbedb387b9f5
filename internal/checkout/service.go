package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/souqly/souqly-backend/internal/pricing"
	"github.com/souqly/souqly-backend/pkg/config"
	"github.com/souqly/souqly-backend/pkg/db/models"
	"github.com/souqly/souqly-backend/pkg/enums"
	pkgerrors "github.com/souqly/souqly-backend/pkg/errors"
	"github.com/souqly/souqly-backend/pkg/gateway"
	"github.com/souqly/souqly-backend/pkg/logger"
	"github.com/souqly/souqly-backend/pkg/metrics"
)

// ApprovalResult is the buyer's decision on a pending gateway payment.
type ApprovalResult string

const (
	ApprovalApproved  ApprovalResult = "approved"
	ApprovalCancelled ApprovalResult = "cancelled"
)

// PaymentApprover resolves the buyer's approval of a created gateway order.
type PaymentApprover interface {
	AwaitApproval(ctx context.Context, gatewayOrderID string) (ApprovalResult, error)
}

// ProductReader exposes the catalog reads checkout validates against.
type ProductReader interface {
	AvailableStock(ctx context.Context, productID uuid.UUID) (int, error)
}

type gatewayClient interface {
	CreateSplitOrder(ctx context.Context, params gateway.SplitOrderParams) (*gateway.MarketplaceOrder, error)
	CaptureOrder(ctx context.Context, gatewayOrderID string) error
}

type profileReader interface {
	FindBySellerID(ctx context.Context, sellerID uuid.UUID) (*models.SellerPaymentProfile, error)
}

type voucherFinder interface {
	FindByCode(ctx context.Context, code string) (*models.Voucher, error)
}

type orderCreator interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
}

type attemptLocker interface {
	AcquireCheckoutLock(ctx context.Context, buyerID string, ttl time.Duration) (bool, error)
	ReleaseCheckoutLock(ctx context.Context, buyerID string) error
}

// SubmitInput is one checkout attempt as the buyer submitted it.
type SubmitInput struct {
	BuyerID         uuid.UUID
	ShippingAddress string
	PhoneNumber     string
	PaymentMethod   enums.PaymentMethod
	VoucherCode     string
	Lines           []pricing.CartLine
}

// Result is a committed attempt: the persisted order plus the money breakdown
// the buyer saw. PaymentMethod is the effective method, which can differ from
// the requested one when the seller profile forces a cash fallback.
type Result struct {
	Order            *models.Order
	Totals           pricing.Totals
	PaymentMethod    enums.PaymentMethod
	GatewayOrderID   string
	PlatformFeeCents int64
	SellerNetCents   int64
}

// Service drives one checkout attempt end to end.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*Result, error)
}

type service struct {
	products ProductReader
	profiles profileReader
	vouchers voucherFinder
	orders   orderCreator
	gateway  gatewayClient
	approver PaymentApprover
	locks    attemptLocker
	metrics  *metrics.CheckoutMetrics
	logg     *logger.Logger

	shippingFeeCents int64
	feeRate          decimal.Decimal
	conversionRate   decimal.Decimal
	settlementCCY    string
	lockTTL          time.Duration
	now              func() time.Time
}

// NewService builds the checkout coordinator.
func NewService(
	products ProductReader,
	profiles profileReader,
	vouchers voucherFinder,
	orders orderCreator,
	gatewayClient gatewayClient,
	approver PaymentApprover,
	locks attemptLocker,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
	cfg config.CheckoutConfig,
) (Service, error) {
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if profiles == nil {
		return nil, fmt.Errorf("profile reader required")
	}
	if vouchers == nil {
		return nil, fmt.Errorf("voucher finder required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order creator required")
	}
	if gatewayClient == nil {
		return nil, fmt.Errorf("gateway client required")
	}
	if approver == nil {
		return nil, fmt.Errorf("payment approver required")
	}
	if locks == nil {
		return nil, fmt.Errorf("attempt locker required")
	}
	feeRate, err := cfg.FeeRate()
	if err != nil {
		return nil, err
	}
	conversionRate, err := cfg.ConversionRate()
	if err != nil {
		return nil, err
	}
	return &service{
		products:         products,
		profiles:         profiles,
		vouchers:         vouchers,
		orders:           orders,
		gateway:          gatewayClient,
		approver:         approver,
		locks:            locks,
		metrics:          checkoutMetrics,
		logg:             logg,
		shippingFeeCents: cfg.ShippingFeeCents,
		feeRate:          feeRate,
		conversionRate:   conversionRate,
		settlementCCY:    cfg.SettlementCCY,
		lockTTL:          cfg.AttemptLockTTL,
		now:              time.Now,
	}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*Result, error) {
	started := s.now()
	result, err := s.run(ctx, input)

	method := string(input.PaymentMethod)
	if result != nil {
		method = string(result.PaymentMethod)
	}
	s.metrics.ObserveDuration(method, s.now().Sub(started))
	if err != nil {
		kind := string(pkgerrors.CodeInternal)
		if typed := pkgerrors.As(err); typed != nil {
			kind = string(typed.Code())
		}
		s.metrics.IncFailed(method, strings.ToLower(kind))
		return nil, err
	}
	s.metrics.IncCommitted(method)
	return result, nil
}

func (s *service) run(ctx context.Context, input SubmitInput) (*Result, error) {
	selected, sellerID, err := s.validate(ctx, input)
	if err != nil {
		return nil, err
	}

	acquired, err := s.locks.AcquireCheckoutLock(ctx, input.BuyerID.String(), s.lockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire checkout lock")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "checkout attempt already in progress")
	}
	defer func() {
		if err := s.locks.ReleaseCheckoutLock(ctx, input.BuyerID.String()); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithBuyerID(ctx, input.BuyerID.String()), "release checkout lock failed")
		}
	}()

	voucher, err := s.loadVoucher(ctx, input.VoucherCode)
	if err != nil {
		return nil, err
	}
	totals := pricing.ComputeTotals(input.Lines, voucher, pricing.Options{
		ShippingFeeCents: s.shippingFeeCents,
		Now:              s.now(),
	})

	method := input.PaymentMethod
	if method == enums.PaymentMethodMarketplace {
		profile, err := s.profiles.FindBySellerID(ctx, sellerID)
		if err != nil || profile == nil || !profile.Onboarded() {
			// An unreachable or unconnected seller account downgrades the
			// attempt to cash on delivery instead of blocking it.
			if s.logg != nil {
				s.logg.Warn(s.logg.WithSellerID(ctx, sellerID.String()), "seller not onboarded, falling back to cash on delivery")
			}
			method = enums.PaymentMethodCOD
		} else {
			return s.submitMarketplace(ctx, input, selected, sellerID, totals, profile.MarketplaceMerchantID)
		}
	}

	order, err := s.persistOrder(ctx, input, selected, sellerID, totals, method, "")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeOrderPersist, err, "persist order")
	}
	return &Result{Order: order, Totals: totals, PaymentMethod: method}, nil
}

// submitMarketplace runs the gateway leg: create split order, wait for the
// buyer's approval, capture, then persist. Each step consumes the previous
// step's result, so the order cannot be persisted without a captured payment
// and a capture cannot happen without an approval.
func (s *service) submitMarketplace(
	ctx context.Context,
	input SubmitInput,
	selected []pricing.CartLine,
	sellerID uuid.UUID,
	totals pricing.Totals,
	merchantID string,
) (*Result, error) {
	grossCents := s.toSettlementCents(totals.GrandTotalCents)

	created, err := s.gateway.CreateSplitOrder(ctx, gateway.SplitOrderParams{
		GrossCents:       grossCents,
		CurrencyCode:     s.settlementCCY,
		SellerID:         sellerID,
		SellerMerchantID: merchantID,
		FeeRate:          s.feeRate,
	})
	if err != nil {
		return nil, err
	}

	approval, err := s.approver.AwaitApproval(ctx, created.GatewayOrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "await payment approval")
	}
	if approval != ApprovalApproved {
		return nil, pkgerrors.New(pkgerrors.CodeUserCancelled, "buyer cancelled payment approval").
			WithDetails(map[string]any{"gateway_order_id": created.GatewayOrderID})
	}

	if err := s.gateway.CaptureOrder(ctx, created.GatewayOrderID); err != nil {
		return nil, err
	}

	order, err := s.persistOrder(ctx, input, selected, sellerID, totals, enums.PaymentMethodMarketplace, created.GatewayOrderID)
	if err != nil {
		// Money has moved but no order row exists. This needs a human, not a
		// retry: a retry would double-charge the buyer.
		persistErr := pkgerrors.Wrap(pkgerrors.CodePersistAfterCapture, err, "order persistence failed after capture").
			WithDetails(map[string]any{
				"gateway_order_id": created.GatewayOrderID,
				"buyer_id":         input.BuyerID,
				"amount_cents":     grossCents,
			})
		if s.logg != nil {
			logCtx := s.logg.WithBuyerID(ctx, input.BuyerID.String())
			logCtx = s.logg.WithFields(logCtx, map[string]any{
				"gateway_order_id": created.GatewayOrderID,
				"amount_cents":     grossCents,
			})
			s.logg.Error(logCtx, "captured payment has no order, manual reconciliation required", persistErr)
		}
		return nil, persistErr
	}

	return &Result{
		Order:            order,
		Totals:           totals,
		PaymentMethod:    enums.PaymentMethodMarketplace,
		GatewayOrderID:   created.GatewayOrderID,
		PlatformFeeCents: created.PlatformFeeCents,
		SellerNetCents:   created.SellerNetCents,
	}, nil
}

// validate checks the attempt locally before any lock or gateway work.
func (s *service) validate(ctx context.Context, input SubmitInput) ([]pricing.CartLine, uuid.UUID, error) {
	if input.BuyerID == uuid.Nil {
		return nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	if strings.TrimSpace(input.ShippingAddress) == "" {
		return nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address required")
	}
	if strings.TrimSpace(input.PhoneNumber) == "" {
		return nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "phone number required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	var selected []pricing.CartLine
	for _, line := range input.Lines {
		if line.Selected {
			selected = append(selected, line)
		}
	}
	if len(selected) == 0 {
		return nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one cart line must be selected")
	}

	sellerID := selected[0].SellerID
	for _, line := range selected {
		if line.SellerID != sellerID {
			return nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "all selected lines must belong to one seller")
		}
		if line.Qty <= 0 {
			return nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
		stock, err := s.products.AvailableStock(ctx, line.ProductID)
		if err != nil {
			return nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read product stock")
		}
		if line.Qty > stock {
			return nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity %d exceeds available stock %d", line.Qty, stock)).
				WithDetails(map[string]any{"product_id": line.ProductID})
		}
	}
	return selected, sellerID, nil
}

// loadVoucher fetches the voucher by code. A missing voucher is not an error:
// a stale code on the client degrades to no discount.
func (s *service) loadVoucher(ctx context.Context, code string) (*models.Voucher, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}
	voucher, err := s.vouchers.FindByCode(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load voucher")
	}
	return voucher, nil
}

func (s *service) persistOrder(
	ctx context.Context,
	input SubmitInput,
	selected []pricing.CartLine,
	sellerID uuid.UUID,
	totals pricing.Totals,
	method enums.PaymentMethod,
	gatewayOrderID string,
) (*models.Order, error) {
	items := make([]models.OrderItem, 0, len(selected))
	for _, line := range selected {
		items = append(items, models.OrderItem{
			ProductID:        line.ProductID,
			ProductVariantID: line.VariantID,
			ProductName:      line.ProductName,
			ProductImageURL:  line.ProductImageURL,
			Qty:              line.Qty,
			UnitPriceCents:   line.UnitPriceCents,
		})
	}
	order := &models.Order{
		BuyerID:         input.BuyerID,
		SellerID:        sellerID,
		Status:          enums.OrderStatusPending,
		PaymentMethod:   method,
		TotalCents:      totals.GrandTotalCents,
		ShippingAddress: strings.TrimSpace(input.ShippingAddress),
		PhoneNumber:     strings.TrimSpace(input.PhoneNumber),
		GatewayOrderID:  gatewayOrderID,
		Items:           items,
	}
	created, err := s.orders.Create(ctx, order)
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		logCtx := s.logg.WithBuyerID(ctx, input.BuyerID.String())
		logCtx = s.logg.WithOrderID(logCtx, created.ID.String())
		s.logg.Info(logCtx, fmt.Sprintf("order committed via %s", method))
	}
	return created, nil
}

// toSettlementCents converts a cart-currency amount into the settlement
// currency at the configured fixed rate.
func (s *service) toSettlementCents(cents int64) int64 {
	return decimal.NewFromInt(cents).Mul(s.conversionRate).Round(0).IntPart()
}
