package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/souqly/souqly-backend/api/responses"
	"github.com/souqly/souqly-backend/api/validators"
	"github.com/souqly/souqly-backend/internal/vouchers"
	"github.com/souqly/souqly-backend/pkg/enums"
	pkgerrors "github.com/souqly/souqly-backend/pkg/errors"
	"github.com/souqly/souqly-backend/pkg/logger"
)

type voucherRequest struct {
	Code          string `json:"code" validate:"required"`
	Kind          string `json:"kind" validate:"required"`
	ValueCents    int64  `json:"value_cents"`
	ValuePercent  int    `json:"value_percent"`
	MinOrderCents int64  `json:"min_order_cents"`
	ExpiresAt     string `json:"expires_at" validate:"required"`
	Disabled      bool   `json:"disabled"`
}

// ListVouchers returns vouchers buyers can currently apply.
func ListVouchers(svc vouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		active, err := svc.ListActive(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"vouchers": active})
	}
}

// CreateVoucher is the admin create endpoint.
func CreateVoucher(svc vouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		input, err := decodeVoucherInput(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		created, err := svc.Create(ctx, *input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// UpdateVoucher is the admin update endpoint.
func UpdateVoucher(svc vouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		input, err := decodeVoucherInput(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		updated, err := svc.Update(ctx, id, *input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// DeleteVoucher is the admin delete endpoint.
func DeleteVoucher(svc vouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.Delete(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func decodeVoucherInput(r *http.Request) (*vouchers.UpsertInput, error) {
	var req voucherRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		return nil, err
	}
	expiresAt, err := time.Parse(time.RFC3339, req.ExpiresAt)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expires_at must be RFC 3339")
	}
	return &vouchers.UpsertInput{
		Code:          req.Code,
		Kind:          enums.VoucherKind(req.Kind),
		ValueCents:    req.ValueCents,
		ValuePercent:  req.ValuePercent,
		MinOrderCents: req.MinOrderCents,
		ExpiresAt:     expiresAt,
		Disabled:      req.Disabled,
	}, nil
}
