package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souqly/souqly-backend/internal/pricing"
	"github.com/souqly/souqly-backend/pkg/config"
	"github.com/souqly/souqly-backend/pkg/db/models"
	"github.com/souqly/souqly-backend/pkg/enums"
	pkgerrors "github.com/souqly/souqly-backend/pkg/errors"
	"github.com/souqly/souqly-backend/pkg/gateway"
)

type stubProducts struct {
	stock map[uuid.UUID]int
	err   error
}

func (s *stubProducts) AvailableStock(ctx context.Context, productID uuid.UUID) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.stock[productID], nil
}

type stubProfiles struct {
	profile *models.SellerPaymentProfile
	err     error
}

func (s *stubProfiles) FindBySellerID(ctx context.Context, sellerID uuid.UUID) (*models.SellerPaymentProfile, error) {
	return s.profile, s.err
}

type stubVouchers struct {
	voucher *models.Voucher
	err     error
}

func (s *stubVouchers) FindByCode(ctx context.Context, code string) (*models.Voucher, error) {
	return s.voucher, s.err
}

type stubOrders struct {
	created []*models.Order
	err     error
}

func (s *stubOrders) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	order.ID = uuid.New()
	s.created = append(s.created, order)
	return order, nil
}

type stubGateway struct {
	createCalls  int
	captureCalls int
	createErr    error
	captureErr   error
	lastParams   gateway.SplitOrderParams
}

func (s *stubGateway) CreateSplitOrder(ctx context.Context, params gateway.SplitOrderParams) (*gateway.MarketplaceOrder, error) {
	s.createCalls++
	s.lastParams = params
	if s.createErr != nil {
		return nil, s.createErr
	}
	fee, net := gateway.SplitAmounts(params.GrossCents, params.FeeRate)
	return &gateway.MarketplaceOrder{
		GatewayOrderID:   "GW-ORDER-1",
		GrossCents:       params.GrossCents,
		PlatformFeeCents: fee,
		SellerNetCents:   net,
	}, nil
}

func (s *stubGateway) CaptureOrder(ctx context.Context, gatewayOrderID string) error {
	s.captureCalls++
	return s.captureErr
}

type stubApprover struct {
	result ApprovalResult
	err    error
	calls  int
}

func (s *stubApprover) AwaitApproval(ctx context.Context, gatewayOrderID string) (ApprovalResult, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.result, nil
}

type stubLocker struct {
	denied   bool
	acquires int
	releases int
}

func (s *stubLocker) AcquireCheckoutLock(ctx context.Context, buyerID string, ttl time.Duration) (bool, error) {
	s.acquires++
	return !s.denied, nil
}

func (s *stubLocker) ReleaseCheckoutLock(ctx context.Context, buyerID string) error {
	s.releases++
	return nil
}

type fixture struct {
	products *stubProducts
	profiles *stubProfiles
	vouchers *stubVouchers
	orders   *stubOrders
	gateway  *stubGateway
	approver *stubApprover
	locker   *stubLocker
	svc      Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		products: &stubProducts{stock: map[uuid.UUID]int{}},
		profiles: &stubProfiles{},
		vouchers: &stubVouchers{},
		orders:   &stubOrders{},
		gateway:  &stubGateway{},
		approver: &stubApprover{result: ApprovalApproved},
		locker:   &stubLocker{},
	}
	cfg := config.CheckoutConfig{
		ShippingFeeCents: 600,
		PlatformFeeRate:  "0.10",
		CurrencyRate:     "1.0",
		SettlementCCY:    "USD",
		AttemptLockTTL:   2 * time.Minute,
	}
	svc, err := NewService(f.products, f.profiles, f.vouchers, f.orders, f.gateway, f.approver, f.locker, nil, nil, cfg)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) lineFor(sellerID uuid.UUID, qty int, unitCents int64) pricing.CartLine {
	productID := uuid.New()
	f.products.stock[productID] = 10
	return pricing.CartLine{
		ProductID:      productID,
		SellerID:       sellerID,
		ProductName:    "Ceramic Tagine",
		UnitPriceCents: unitCents,
		Qty:            qty,
		Selected:       true,
	}
}

func codInput(f *fixture) SubmitInput {
	sellerID := uuid.New()
	return SubmitInput{
		BuyerID:         uuid.New(),
		ShippingAddress: "12 Harbor Rd",
		PhoneNumber:     "+20100000000",
		PaymentMethod:   enums.PaymentMethodCOD,
		Lines:           []pricing.CartLine{f.lineFor(sellerID, 2, 2999)},
	}
}

func marketplaceInput(f *fixture) SubmitInput {
	input := codInput(f)
	input.PaymentMethod = enums.PaymentMethodMarketplace
	f.profiles.profile = &models.SellerPaymentProfile{
		SellerID:              input.Lines[0].SellerID,
		MarketplaceMerchantID: "MERCHANT-123",
	}
	return input
}

func TestSubmitCODPersistsPendingOrder(t *testing.T) {
	f := newFixture(t)
	input := codInput(f)

	result, err := f.svc.Submit(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, f.orders.created, 1)
	order := f.orders.created[0]
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, enums.PaymentMethodCOD, order.PaymentMethod)
	assert.Equal(t, int64(6598), order.TotalCents)
	assert.Empty(t, order.GatewayOrderID)
	assert.Zero(t, f.gateway.createCalls)
	assert.Equal(t, int64(6598), result.Totals.GrandTotalCents)
	assert.Equal(t, 1, f.locker.releases)
}

func TestSubmitMarketplaceHappyPath(t *testing.T) {
	f := newFixture(t)
	input := marketplaceInput(f)

	result, err := f.svc.Submit(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 1, f.gateway.createCalls)
	assert.Equal(t, 1, f.approver.calls)
	assert.Equal(t, 1, f.gateway.captureCalls)
	require.Len(t, f.orders.created, 1)
	assert.Equal(t, "GW-ORDER-1", f.orders.created[0].GatewayOrderID)
	assert.Equal(t, "MERCHANT-123", f.gateway.lastParams.SellerMerchantID)
	assert.Equal(t, result.PlatformFeeCents+result.SellerNetCents, int64(6598))
}

func TestSubmitCaptureFailureNeverCreatesOrder(t *testing.T) {
	f := newFixture(t)
	f.gateway.captureErr = pkgerrors.New(pkgerrors.CodeCapture, "capture endpoint returned 500")
	input := marketplaceInput(f)

	_, err := f.svc.Submit(context.Background(), input)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeCapture))
	assert.Empty(t, f.orders.created)
	assert.Equal(t, 1, f.locker.releases)
}

func TestSubmitCancelledApprovalSkipsCapture(t *testing.T) {
	f := newFixture(t)
	f.approver.result = ApprovalCancelled
	input := marketplaceInput(f)

	_, err := f.svc.Submit(context.Background(), input)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUserCancelled))
	assert.Zero(t, f.gateway.captureCalls)
	assert.Empty(t, f.orders.created)
}

func TestSubmitGatewayOrderFailureStopsAttempt(t *testing.T) {
	f := newFixture(t)
	f.gateway.createErr = pkgerrors.New(pkgerrors.CodeGatewayOrder, "orders endpoint returned 422")
	input := marketplaceInput(f)

	_, err := f.svc.Submit(context.Background(), input)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeGatewayOrder))
	assert.Zero(t, f.approver.calls)
	assert.Zero(t, f.gateway.captureCalls)
	assert.Empty(t, f.orders.created)
}

func TestSubmitPersistFailureAfterCapture(t *testing.T) {
	f := newFixture(t)
	f.orders.err = errors.New("db down")
	input := marketplaceInput(f)

	_, err := f.svc.Submit(context.Background(), input)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodePersistAfterCapture))
	assert.Equal(t, 1, f.gateway.captureCalls)
	assert.False(t, pkgerrors.MetadataFor(pkgerrors.CodePersistAfterCapture).Retryable)
}

func TestSubmitFallsBackToCODWhenSellerNotOnboarded(t *testing.T) {
	cases := []struct {
		name    string
		profile *models.SellerPaymentProfile
		err     error
	}{
		{"no profile", nil, nil},
		{"empty merchant id", &models.SellerPaymentProfile{MarketplaceMerchantID: "   "}, nil},
		{"profile fetch error", nil, errors.New("db down")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			input := marketplaceInput(f)
			f.profiles.profile = tc.profile
			f.profiles.err = tc.err

			result, err := f.svc.Submit(context.Background(), input)
			require.NoError(t, err)
			assert.Equal(t, enums.PaymentMethodCOD, result.PaymentMethod)
			assert.Zero(t, f.gateway.createCalls)
			require.Len(t, f.orders.created, 1)
			assert.Equal(t, enums.PaymentMethodCOD, f.orders.created[0].PaymentMethod)
		})
	}
}

func TestSubmitRejectsConcurrentAttempt(t *testing.T) {
	f := newFixture(t)
	f.locker.denied = true
	input := codInput(f)

	_, err := f.svc.Submit(context.Background(), input)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
	assert.Empty(t, f.orders.created)
	assert.Zero(t, f.locker.releases)
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t)
	valid := codInput(f)

	cases := []struct {
		name   string
		mutate func(*SubmitInput)
	}{
		{"missing address", func(in *SubmitInput) { in.ShippingAddress = " " }},
		{"missing phone", func(in *SubmitInput) { in.PhoneNumber = "" }},
		{"missing buyer", func(in *SubmitInput) { in.BuyerID = uuid.Nil }},
		{"nothing selected", func(in *SubmitInput) { in.Lines[0].Selected = false }},
		{"zero qty", func(in *SubmitInput) { in.Lines[0].Qty = 0 }},
		{"bad method", func(in *SubmitInput) { in.PaymentMethod = enums.PaymentMethod("wire") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := valid
			input.Lines = append([]pricing.CartLine(nil), valid.Lines...)
			tc.mutate(&input)

			_, err := f.svc.Submit(context.Background(), input)
			assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
		})
	}
	assert.Zero(t, f.locker.acquires)
}

func TestSubmitRejectsQtyOverStock(t *testing.T) {
	f := newFixture(t)
	input := codInput(f)
	f.products.stock[input.Lines[0].ProductID] = 1

	_, err := f.svc.Submit(context.Background(), input)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestSubmitRejectsMixedSellers(t *testing.T) {
	f := newFixture(t)
	input := codInput(f)
	input.Lines = append(input.Lines, f.lineFor(uuid.New(), 1, 500))

	_, err := f.svc.Submit(context.Background(), input)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestSubmitAppliesVoucher(t *testing.T) {
	f := newFixture(t)
	input := codInput(f)
	input.VoucherCode = "WELCOME10"
	f.vouchers.voucher = &models.Voucher{
		Code:       "WELCOME10",
		Kind:       enums.VoucherKindFixed,
		ValueCents: 1000,
		ExpiresAt:  time.Now().Add(24 * time.Hour),
	}

	result, err := f.svc.Submit(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), result.Totals.DiscountCents)
	assert.Equal(t, int64(5598), result.Totals.GrandTotalCents)
}

func TestSubmitIgnoresUnknownVoucherCode(t *testing.T) {
	f := newFixture(t)
	input := codInput(f)
	input.VoucherCode = "GONE"

	result, err := f.svc.Submit(context.Background(), input)
	require.NoError(t, err)
	assert.Zero(t, result.Totals.DiscountCents)
}

func TestSubmitAppliesCurrencyConversion(t *testing.T) {
	f := newFixture(t)
	cfg := config.CheckoutConfig{
		ShippingFeeCents: 600,
		PlatformFeeRate:  "0.10",
		CurrencyRate:     "0.5",
		SettlementCCY:    "USD",
		AttemptLockTTL:   time.Minute,
	}
	svc, err := NewService(f.products, f.profiles, f.vouchers, f.orders, f.gateway, f.approver, f.locker, nil, nil, cfg)
	require.NoError(t, err)
	input := marketplaceInput(f)

	_, err = svc.Submit(context.Background(), input)
	require.NoError(t, err)
	// 6598 cart cents at 0.5 settles as 3299.
	assert.Equal(t, int64(3299), f.gateway.lastParams.GrossCents)
}
