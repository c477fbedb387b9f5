package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	checkoutsvc "github.com/souqly/souqly-backend/internal/checkout"
	"github.com/souqly/souqly-backend/internal/orders"
	"github.com/souqly/souqly-backend/internal/reviews"
	"github.com/souqly/souqly-backend/internal/vouchers"
	"github.com/souqly/souqly-backend/pkg/config"
	"github.com/souqly/souqly-backend/pkg/db/models"
	"github.com/souqly/souqly-backend/pkg/logger"
	"github.com/souqly/souqly-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubCheckoutService struct{}

func (stubCheckoutService) Submit(ctx context.Context, input checkoutsvc.SubmitInput) (*checkoutsvc.Result, error) {
	panic("unimplemented")
}

type stubOrdersService struct{}

func (stubOrdersService) ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, params pagination.Params) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (stubOrdersService) ListSellerOrders(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (stubOrdersService) GetOrder(ctx context.Context, requesterID, orderID uuid.UUID) (*orders.OrderDetail, error) {
	panic("unimplemented")
}

func (stubOrdersService) UpdateStatus(ctx context.Context, input orders.StatusUpdateInput) (*orders.OrderDetail, error) {
	panic("unimplemented")
}

func (stubOrdersService) MarkItemReviewed(ctx context.Context, input orders.ReviewMarkInput) error {
	panic("unimplemented")
}

type stubVouchersService struct{}

func (stubVouchersService) ListActive(ctx context.Context) ([]models.Voucher, error) {
	return []models.Voucher{}, nil
}

func (stubVouchersService) FindByCode(ctx context.Context, code string) (*models.Voucher, error) {
	panic("unimplemented")
}

func (stubVouchersService) Create(ctx context.Context, input vouchers.UpsertInput) (*models.Voucher, error) {
	panic("unimplemented")
}

func (stubVouchersService) Update(ctx context.Context, id uuid.UUID, input vouchers.UpsertInput) (*models.Voucher, error) {
	panic("unimplemented")
}

func (stubVouchersService) Delete(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

type stubReviewsService struct{}

func (stubReviewsService) PendingItems(ctx context.Context, buyerID uuid.UUID) ([]reviews.PendingItem, error) {
	return []reviews.PendingItem{}, nil
}

type stubProfileRepo struct{}

func (stubProfileRepo) FindBySellerID(ctx context.Context, sellerID uuid.UUID) (*models.SellerPaymentProfile, error) {
	return nil, nil
}

func (stubProfileRepo) SaveReferral(ctx context.Context, sellerID uuid.UUID, referralURL string) error {
	return nil
}

func (stubProfileRepo) SetMerchantID(ctx context.Context, sellerID uuid.UUID, merchantID string) error {
	return nil
}

type stubOnboardingService struct{}

func (stubOnboardingService) StartOnboarding(ctx context.Context, sellerID uuid.UUID, email, businessName string) (string, error) {
	return "https://gateway.example/onboard", nil
}

func newTestRouter() http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Deps{
		Config:          &config.Config{App: config.AppConfig{Env: "test", Port: "0"}},
		Logger:          logg,
		DBPinger:        stubPinger{},
		RedisPinger:     stubPinger{},
		CheckoutService: stubCheckoutService{},
		OrdersService:   stubOrdersService{},
		VouchersService: stubVouchersService{},
		ReviewsService:  stubReviewsService{},
		ProfileRepo:     stubProfileRepo{},
		Onboarding:      stubOnboardingService{},
		Metrics:         prometheus.NewRegistry(),
	})
}

func TestHealthEndpointsRespond(t *testing.T) {
	router := newTestRouter()

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d: %s", path, resp.Code, resp.Body.String())
		}
	}
}

func TestMetricsEndpointMounted(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for /metrics got %d", resp.Code)
	}
}

func TestOrdersListRequiresAParty(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing party got %d", resp.Code)
	}
}

func TestOrdersListRoutesByBuyer(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?buyer_id="+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for buyer list got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestVouchersListMounted(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vouchers", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for vouchers list got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestPendingReviewsMounted(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reviews/pending?buyer_id="+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for pending reviews got %d: %s", resp.Code, resp.Body.String())
	}
}
