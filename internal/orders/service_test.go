package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/souqly/souqly-backend/pkg/db/models"
	"github.com/souqly/souqly-backend/pkg/enums"
	pkgerrors "github.com/souqly/souqly-backend/pkg/errors"
	"github.com/souqly/souqly-backend/pkg/pagination"
)

type stubOrderRepo struct {
	order         *models.Order
	findErr       error
	updatedStatus enums.OrderStatus
	updateCalls   int
	reviewedItem  uuid.UUID
}

func (s *stubOrderRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrderRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	return order, nil
}

func (s *stubOrderRepo) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.order, nil
}

func (s *stubOrderRepo) FindItem(ctx context.Context, itemID uuid.UUID) (*models.OrderItem, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderRepo) ListByBuyer(ctx context.Context, buyerID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	if s.order == nil {
		return nil, "", nil
	}
	return []models.Order{*s.order}, "", nil
}

func (s *stubOrderRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	return nil, "", nil
}

func (s *stubOrderRepo) ListDeliveredWithUnreviewedItems(ctx context.Context, buyerID uuid.UUID) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrderRepo) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error {
	s.updateCalls++
	s.updatedStatus = status
	return nil
}

func (s *stubOrderRepo) MarkItemReviewed(ctx context.Context, itemID uuid.UUID) error {
	s.reviewedItem = itemID
	return nil
}

func pendingOrder(buyerID, sellerID uuid.UUID) *models.Order {
	return &models.Order{
		ID:            uuid.New(),
		BuyerID:       buyerID,
		SellerID:      sellerID,
		Status:        enums.OrderStatusPending,
		PaymentMethod: enums.PaymentMethodCOD,
		TotalCents:    4600,
		Items: []models.OrderItem{
			{ID: uuid.New(), ProductID: uuid.New(), ProductName: "Olive Soap", Qty: 1, UnitPriceCents: 4000},
		},
	}
}

func TestGetOrderRejectsStrangers(t *testing.T) {
	order := pendingOrder(uuid.New(), uuid.New())
	svc, err := NewService(&stubOrderRepo{order: order}, nil)
	require.NoError(t, err)

	_, err = svc.GetOrder(context.Background(), uuid.New(), order.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))

	detail, err := svc.GetOrder(context.Background(), order.BuyerID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, detail.ID)
}

func TestGetOrderNotFound(t *testing.T) {
	svc, err := NewService(&stubOrderRepo{findErr: gorm.ErrRecordNotFound}, nil)
	require.NoError(t, err)

	_, err = svc.GetOrder(context.Background(), uuid.New(), uuid.New())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateStatusFollowsStateMachine(t *testing.T) {
	sellerID := uuid.New()
	order := pendingOrder(uuid.New(), sellerID)
	repo := &stubOrderRepo{order: order}
	svc, err := NewService(repo, nil)
	require.NoError(t, err)

	detail, err := svc.UpdateStatus(context.Background(), StatusUpdateInput{
		OrderID:  order.ID,
		ActorID:  sellerID,
		ToStatus: enums.OrderStatusInProgress,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusInProgress, detail.Status)
	assert.Equal(t, enums.OrderStatusInProgress, repo.updatedStatus)
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	sellerID := uuid.New()
	order := pendingOrder(uuid.New(), sellerID)
	repo := &stubOrderRepo{order: order}
	svc, err := NewService(repo, nil)
	require.NoError(t, err)

	// pending -> delivered skips in_progress and approved.
	_, err = svc.UpdateStatus(context.Background(), StatusUpdateInput{
		OrderID:  order.ID,
		ActorID:  sellerID,
		ToStatus: enums.OrderStatusDelivered,
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
	assert.Zero(t, repo.updateCalls)
}

func TestUpdateStatusRejectsWrongSeller(t *testing.T) {
	order := pendingOrder(uuid.New(), uuid.New())
	svc, err := NewService(&stubOrderRepo{order: order}, nil)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), StatusUpdateInput{
		OrderID:  order.ID,
		ActorID:  uuid.New(),
		ToStatus: enums.OrderStatusInProgress,
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))
}

func TestUpdateStatusRejectsUnknownTarget(t *testing.T) {
	svc, err := NewService(&stubOrderRepo{}, nil)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), StatusUpdateInput{
		OrderID:  uuid.New(),
		ActorID:  uuid.New(),
		ToStatus: enums.OrderStatus("shipped"),
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestMarkItemReviewedRequiresDelivery(t *testing.T) {
	buyerID := uuid.New()
	order := pendingOrder(buyerID, uuid.New())
	svc, err := NewService(&stubOrderRepo{order: order}, nil)
	require.NoError(t, err)

	err = svc.MarkItemReviewed(context.Background(), ReviewMarkInput{
		OrderID: order.ID,
		ItemID:  order.Items[0].ID,
		BuyerID: buyerID,
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
}

func TestMarkItemReviewedIsOneWay(t *testing.T) {
	buyerID := uuid.New()
	order := pendingOrder(buyerID, uuid.New())
	order.Status = enums.OrderStatusDelivered
	order.Items[0].IsReviewed = true
	svc, err := NewService(&stubOrderRepo{order: order}, nil)
	require.NoError(t, err)

	err = svc.MarkItemReviewed(context.Background(), ReviewMarkInput{
		OrderID: order.ID,
		ItemID:  order.Items[0].ID,
		BuyerID: buyerID,
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}

func TestMarkItemReviewedHappyPath(t *testing.T) {
	buyerID := uuid.New()
	order := pendingOrder(buyerID, uuid.New())
	order.Status = enums.OrderStatusDelivered
	repo := &stubOrderRepo{order: order}
	svc, err := NewService(repo, nil)
	require.NoError(t, err)

	err = svc.MarkItemReviewed(context.Background(), ReviewMarkInput{
		OrderID: order.ID,
		ItemID:  order.Items[0].ID,
		BuyerID: buyerID,
	})
	require.NoError(t, err)
	assert.Equal(t, order.Items[0].ID, repo.reviewedItem)
}

func TestListBuyerOrdersNormalizesStatus(t *testing.T) {
	order := pendingOrder(uuid.New(), uuid.New())
	order.Status = enums.OrderStatus("archived")
	svc, err := NewService(&stubOrderRepo{order: order}, nil)
	require.NoError(t, err)

	list, err := svc.ListBuyerOrders(context.Background(), order.BuyerID, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, enums.OrderStatusUnknown, list.Orders[0].Status)
}
