package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/souqly/souqly-backend/pkg/db/models"
	"github.com/souqly/souqly-backend/pkg/enums"
)

// OrderSummary is the list-row projection of an order. Status is normalized
// before rendering so a row with an unrecognized stored status still lists.
type OrderSummary struct {
	ID            uuid.UUID           `json:"id"`
	BuyerID       uuid.UUID           `json:"buyer_id"`
	SellerID      uuid.UUID           `json:"seller_id"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	TotalCents    int64               `json:"total_cents"`
	ItemCount     int                 `json:"item_count"`
	CreatedAt     time.Time           `json:"created_at"`
}

// OrderList is one page of summaries plus the cursor for the next page.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// OrderDetail is the full projection of one order with its line items.
type OrderDetail struct {
	ID              uuid.UUID           `json:"id"`
	BuyerID         uuid.UUID           `json:"buyer_id"`
	SellerID        uuid.UUID           `json:"seller_id"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	TotalCents      int64               `json:"total_cents"`
	ShippingAddress string              `json:"shipping_address"`
	PhoneNumber     string              `json:"phone_number"`
	GatewayOrderID  string              `json:"gateway_order_id,omitempty"`
	Items           []models.OrderItem  `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func summaryFromModel(order models.Order) OrderSummary {
	return OrderSummary{
		ID:            order.ID,
		BuyerID:       order.BuyerID,
		SellerID:      order.SellerID,
		Status:        enums.NormalizeOrderStatus(string(order.Status)),
		PaymentMethod: order.PaymentMethod,
		TotalCents:    order.TotalCents,
		ItemCount:     len(order.Items),
		CreatedAt:     order.CreatedAt,
	}
}

func detailFromModel(order models.Order) *OrderDetail {
	return &OrderDetail{
		ID:              order.ID,
		BuyerID:         order.BuyerID,
		SellerID:        order.SellerID,
		Status:          enums.NormalizeOrderStatus(string(order.Status)),
		PaymentMethod:   order.PaymentMethod,
		TotalCents:      order.TotalCents,
		ShippingAddress: order.ShippingAddress,
		PhoneNumber:     order.PhoneNumber,
		GatewayOrderID:  order.GatewayOrderID,
		Items:           order.Items,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}
