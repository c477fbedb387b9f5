package checkout

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/souqly/souqly-backend/pkg/errors"
)

type orderStatusReader interface {
	GetOrder(ctx context.Context, gatewayOrderID string) (string, error)
}

// PollingApprover resolves buyer approval by polling the gateway's order
// status until it leaves CREATED. A window that elapses without approval is
// treated as a cancellation: an abandoned approval page and a pressed cancel
// button are the same outcome for the attempt.
type PollingApprover struct {
	gateway  orderStatusReader
	interval time.Duration
	window   time.Duration
}

// NewPollingApprover builds the status poller.
func NewPollingApprover(gateway orderStatusReader, interval, window time.Duration) (*PollingApprover, error) {
	if gateway == nil {
		return nil, fmt.Errorf("gateway client required")
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if window <= 0 {
		window = 3 * time.Minute
	}
	return &PollingApprover{gateway: gateway, interval: interval, window: window}, nil
}

func (p *PollingApprover) AwaitApproval(ctx context.Context, gatewayOrderID string) (ApprovalResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.window)
	defer cancel()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		status, err := p.gateway.GetOrder(ctx, gatewayOrderID)
		if err != nil {
			if pkgerrors.HasCode(err, pkgerrors.CodeGatewayTimeout) && ctx.Err() != nil {
				return ApprovalCancelled, nil
			}
			return "", err
		}
		switch status {
		case "APPROVED", "COMPLETED":
			return ApprovalApproved, nil
		case "VOIDED", "CANCELLED":
			return ApprovalCancelled, nil
		}

		select {
		case <-ctx.Done():
			return ApprovalCancelled, nil
		case <-ticker.C:
		}
	}
}
