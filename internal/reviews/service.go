package reviews

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/souqly/souqly-backend/pkg/db/models"
	pkgerrors "github.com/souqly/souqly-backend/pkg/errors"
	"github.com/souqly/souqly-backend/pkg/logger"
)

// detailFetchConcurrency bounds the per-order fan-out when assembling the
// pending-review list.
const detailFetchConcurrency = 4

type orderSource interface {
	ListDeliveredWithUnreviewedItems(ctx context.Context, buyerID uuid.UUID) ([]models.Order, error)
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

// PendingItem is one line item the buyer can still review, annotated with the
// order it came from so the client can link back to the order detail.
type PendingItem struct {
	OrderID         uuid.UUID `json:"order_id"`
	OrderItemID     uuid.UUID `json:"order_item_id"`
	ProductID       uuid.UUID `json:"product_id"`
	ProductName     string    `json:"product_name"`
	ProductImageURL string    `json:"product_image_url"`
	Qty             int       `json:"qty"`
	UnitPriceCents  int64     `json:"unit_price_cents"`
	DeliveredAt     time.Time `json:"delivered_at"`
}

// Service aggregates the buyer's review-eligible items across orders.
type Service interface {
	PendingItems(ctx context.Context, buyerID uuid.UUID) ([]PendingItem, error)
}

type service struct {
	orders orderSource
	logg   *logger.Logger
}

// NewService builds the review aggregation service.
func NewService(orders orderSource, logg *logger.Logger) (Service, error) {
	if orders == nil {
		return nil, fmt.Errorf("order source required")
	}
	return &service{orders: orders, logg: logg}, nil
}

// PendingItems lists every unreviewed item on the buyer's delivered orders.
// Order details are fetched concurrently; the first fetch failure cancels the
// rest and fails the whole aggregation, so the client never sees a silently
// partial list.
func (s *service) PendingItems(ctx context.Context, buyerID uuid.UUID) ([]PendingItem, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}

	delivered, err := s.orders.ListDeliveredWithUnreviewedItems(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivered orders")
	}
	if len(delivered) == 0 {
		return []PendingItem{}, nil
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(detailFetchConcurrency)

	perOrder := make([][]PendingItem, len(delivered))
	for i, row := range delivered {
		i, row := i, row
		group.Go(func() error {
			order, err := s.orders.FindByID(groupCtx, row.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order detail")
			}
			perOrder[i] = collectUnreviewed(*order)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	out := make([]PendingItem, 0, len(delivered))
	for _, items := range perOrder {
		out = append(out, items...)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DeliveredAt.Equal(out[j].DeliveredAt) {
			return out[i].DeliveredAt.After(out[j].DeliveredAt)
		}
		return out[i].OrderItemID.String() < out[j].OrderItemID.String()
	})

	if s.logg != nil {
		s.logg.Debug(s.logg.WithBuyerID(ctx, buyerID.String()), fmt.Sprintf("pending review items: %d", len(out)))
	}
	return out, nil
}

func collectUnreviewed(order models.Order) []PendingItem {
	var items []PendingItem
	for _, item := range order.Items {
		if item.IsReviewed {
			continue
		}
		items = append(items, PendingItem{
			OrderID:         order.ID,
			OrderItemID:     item.ID,
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			ProductImageURL: item.ProductImageURL,
			Qty:             item.Qty,
			UnitPriceCents:  item.UnitPriceCents,
			DeliveredAt:     order.UpdatedAt,
		})
	}
	return items
}
