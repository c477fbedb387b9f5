package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/souqly/souqly-backend/pkg/db/models"
	"github.com/souqly/souqly-backend/pkg/enums"
	pkgerrors "github.com/souqly/souqly-backend/pkg/errors"
	"github.com/souqly/souqly-backend/pkg/logger"
	"github.com/souqly/souqly-backend/pkg/pagination"
)

// Service defines order reads and the two post-checkout mutations: status
// moves and the one-way review flag on line items.
type Service interface {
	ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListSellerOrders(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*OrderList, error)
	GetOrder(ctx context.Context, requesterID, orderID uuid.UUID) (*OrderDetail, error)
	UpdateStatus(ctx context.Context, input StatusUpdateInput) (*OrderDetail, error)
	MarkItemReviewed(ctx context.Context, input ReviewMarkInput) error
}

// StatusUpdateInput carries a seller-side status move request.
type StatusUpdateInput struct {
	OrderID  uuid.UUID
	ActorID  uuid.UUID
	ToStatus enums.OrderStatus
}

// ReviewMarkInput carries a buyer's review flag for one line item.
type ReviewMarkInput struct {
	OrderID uuid.UUID
	ItemID  uuid.UUID
	BuyerID uuid.UUID
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the orders service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, params pagination.Params) (*OrderList, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	rows, next, err := s.repo.ListByBuyer(ctx, buyerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list buyer orders")
	}
	return buildList(rows, next), nil
}

func (s *service) ListSellerOrders(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*OrderList, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	rows, next, err := s.repo.ListBySeller(ctx, sellerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller orders")
	}
	return buildList(rows, next), nil
}

func (s *service) GetOrder(ctx context.Context, requesterID, orderID uuid.UUID) (*OrderDetail, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.BuyerID != requesterID && order.SellerID != requesterID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to requester")
	}
	return detailFromModel(*order), nil
}

// UpdateStatus moves an order along the fulfillment state machine. Transitions
// outside the allowed graph are rejected without touching the row.
func (s *service) UpdateStatus(ctx context.Context, input StatusUpdateInput) (*OrderDetail, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.ToStatus.IsValid() || input.ToStatus == enums.OrderStatusUnknown {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown target status")
	}

	order, err := s.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.SellerID != input.ActorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to seller")
	}

	current := enums.NormalizeOrderStatus(string(order.Status))
	if !current.CanTransitionTo(input.ToStatus) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed").
			WithDetails(map[string]any{"from": current, "to": input.ToStatus})
	}

	if err := s.repo.UpdateStatus(ctx, input.OrderID, input.ToStatus); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, input.OrderID.String()), fmt.Sprintf("order status moved %s -> %s", current, input.ToStatus))
	}

	order.Status = input.ToStatus
	return detailFromModel(*order), nil
}

// MarkItemReviewed flips the review flag on a delivered order's line item.
// The flag never moves back, so a second mark is a conflict rather than a
// silent no-op.
func (s *service) MarkItemReviewed(ctx context.Context, input ReviewMarkInput) error {
	if input.OrderID == uuid.Nil || input.ItemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id and item id required")
	}

	order, err := s.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.BuyerID != input.BuyerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to buyer")
	}
	if enums.NormalizeOrderStatus(string(order.Status)) != enums.OrderStatusDelivered {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order not delivered yet")
	}

	found := false
	for _, item := range order.Items {
		if item.ID != input.ItemID {
			continue
		}
		if item.IsReviewed {
			return pkgerrors.New(pkgerrors.CodeConflict, "item already reviewed")
		}
		found = true
		break
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
	}

	if err := s.repo.MarkItemReviewed(ctx, input.ItemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark item reviewed")
	}
	return nil
}

func buildList(rows []models.Order, next string) *OrderList {
	summaries := make([]OrderSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, summaryFromModel(row))
	}
	return &OrderList{Orders: summaries, NextCursor: next}
}
