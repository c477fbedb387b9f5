package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/souqly/souqly-backend/api/responses"
	"github.com/souqly/souqly-backend/api/validators"
	"github.com/souqly/souqly-backend/internal/orders"
	"github.com/souqly/souqly-backend/pkg/enums"
	pkgerrors "github.com/souqly/souqly-backend/pkg/errors"
	"github.com/souqly/souqly-backend/pkg/logger"
	"github.com/souqly/souqly-backend/pkg/pagination"
)

type statusUpdateRequest struct {
	ActorID string `json:"actor_id" validate:"required,uuid"`
	Status  string `json:"status" validate:"required"`
}

type reviewMarkRequest struct {
	OrderID string `json:"order_id" validate:"required,uuid"`
	BuyerID string `json:"buyer_id" validate:"required,uuid"`
}

// ListOrders lists orders for either a buyer or a seller, exactly one of
// which must be provided.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		buyerRaw := strings.TrimSpace(r.URL.Query().Get("buyer_id"))
		sellerRaw := strings.TrimSpace(r.URL.Query().Get("seller_id"))

		var list *orders.OrderList
		switch {
		case buyerRaw != "" && sellerRaw != "":
			err = pkgerrors.New(pkgerrors.CodeValidation, "provide buyer_id or seller_id, not both")
		case buyerRaw != "":
			var buyerID uuid.UUID
			if buyerID, err = uuid.Parse(buyerRaw); err != nil {
				err = pkgerrors.New(pkgerrors.CodeValidation, "buyer_id must be a uuid")
				break
			}
			list, err = svc.ListBuyerOrders(ctx, buyerID, params)
		case sellerRaw != "":
			var sellerID uuid.UUID
			if sellerID, err = uuid.Parse(sellerRaw); err != nil {
				err = pkgerrors.New(pkgerrors.CodeValidation, "seller_id must be a uuid")
				break
			}
			list, err = svc.ListSellerOrders(ctx, sellerID, params)
		default:
			err = pkgerrors.New(pkgerrors.CodeValidation, "buyer_id or seller_id required")
		}
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// GetOrder returns one order's detail for its buyer or seller.
func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		requesterID, err := validators.ParseQueryUUID(r, "requester_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		detail, err := svc.GetOrder(ctx, requesterID, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// UpdateOrderStatus moves an order along its fulfillment state machine.
func UpdateOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req statusUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		actorID, err := uuid.Parse(req.ActorID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "actor_id must be a uuid"))
			return
		}
		status, err := enums.ParseOrderStatus(req.Status)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status"))
			return
		}

		detail, err := svc.UpdateStatus(ctx, orders.StatusUpdateInput{
			OrderID:  orderID,
			ActorID:  actorID,
			ToStatus: status,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// MarkOrderItemReviewed flips the one-way review flag on a line item.
func MarkOrderItemReviewed(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		itemID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req reviewMarkRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		orderID, err := uuid.Parse(req.OrderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order_id must be a uuid"))
			return
		}
		buyerID, err := uuid.Parse(req.BuyerID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "buyer_id must be a uuid"))
			return
		}

		if err := svc.MarkItemReviewed(ctx, orders.ReviewMarkInput{
			OrderID: orderID,
			ItemID:  itemID,
			BuyerID: buyerID,
		}); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "reviewed"})
	}
}
