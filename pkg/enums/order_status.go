package enums

import "fmt"

// OrderStatus models the lifecycle an order moves through after submission.
// Statuses cross the wire as loosely-typed strings, so display paths decode
// through NormalizeOrderStatus which maps anything unrecognized to Unknown
// instead of failing.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusApproved   OrderStatus = "approved"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"

	// OrderStatusUnknown is the decode fallback for unmapped wire values.
	// It is a display state only and never a valid transition target.
	OrderStatusUnknown OrderStatus = "unknown"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusInProgress,
	OrderStatusApproved,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// allowedOrderTransitions encodes the seller/admin transition rules.
// Cancellation is reachable from pending and in_progress only.
var allowedOrderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusInProgress, OrderStatusCancelled},
	OrderStatusInProgress: {OrderStatusApproved, OrderStatusCancelled},
	OrderStatusApproved:   {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist from this status.
func (o OrderStatus) IsTerminal() bool {
	return len(allowedOrderTransitions[o]) == 0 && o.IsValid()
}

// CanTransitionTo reports whether a seller/admin may move an order from o to next.
func (o OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, candidate := range allowedOrderTransitions[o] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus, rejecting unknowns.
// Use it on write paths where an invalid status is a caller error.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// NormalizeOrderStatus decodes a wire value for display, mapping anything
// unrecognized to OrderStatusUnknown rather than erroring.
func NormalizeOrderStatus(value string) OrderStatus {
	if status, err := ParseOrderStatus(value); err == nil {
		return status
	}
	return OrderStatusUnknown
}
