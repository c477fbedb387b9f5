package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	checkoutsvc "github.com/souqly/souqly-backend/internal/checkout"
	"github.com/souqly/souqly-backend/internal/pricing"
	"github.com/souqly/souqly-backend/pkg/db/models"
	"github.com/souqly/souqly-backend/pkg/enums"
	pkgerrors "github.com/souqly/souqly-backend/pkg/errors"
)

type stubCheckoutService struct {
	result *checkoutsvc.Result
	err    error
	input  checkoutsvc.SubmitInput
}

func (s *stubCheckoutService) Submit(ctx context.Context, input checkoutsvc.SubmitInput) (*checkoutsvc.Result, error) {
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func checkoutBody() string {
	return `{
		"buyer_id": "` + uuid.NewString() + `",
		"shipping_address": "12 Harbor Rd",
		"phone_number": "+20100000000",
		"payment_method": "cod",
		"lines": [{
			"product_id": "` + uuid.NewString() + `",
			"seller_id": "` + uuid.NewString() + `",
			"product_name": "Ceramic Tagine",
			"unit_price_cents": 2999,
			"qty": 2,
			"selected": true
		}]
	}`
}

func TestSubmitCheckoutSuccess(t *testing.T) {
	orderID := uuid.New()
	svc := &stubCheckoutService{result: &checkoutsvc.Result{
		Order:         &models.Order{ID: orderID, Status: enums.OrderStatusPending},
		Totals:        pricing.Totals{SubtotalCents: 5998, ShippingCents: 600, GrandTotalCents: 6598},
		PaymentMethod: enums.PaymentMethodCOD,
	}}
	handler := SubmitCheckout(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data checkoutResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderID != orderID {
		t.Fatalf("unexpected order id: %s", envelope.Data.OrderID)
	}
	if envelope.Data.Totals.GrandTotalCents != 6598 {
		t.Fatalf("unexpected total: %d", envelope.Data.Totals.GrandTotalCents)
	}
	if len(svc.input.Lines) != 1 || svc.input.Lines[0].Qty != 2 {
		t.Fatalf("submit input not forwarded: %+v", svc.input)
	}
}

func TestSubmitCheckoutRejectsMissingFields(t *testing.T) {
	handler := SubmitCheckout(&stubCheckoutService{}, nil)

	body := `{"buyer_id": "` + uuid.NewString() + `", "payment_method": "cod", "lines": []}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSubmitCheckoutMapsConflict(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeConflict, "checkout attempt already in progress")}
	handler := SubmitCheckout(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestSubmitCheckoutMapsUserCancelled(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeUserCancelled, "buyer cancelled payment approval")}
	handler := SubmitCheckout(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "USER_CANCELLED") {
		t.Fatalf("expected USER_CANCELLED code in body: %s", resp.Body.String())
	}
}
