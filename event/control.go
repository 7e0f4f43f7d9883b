package event

import (
	"context"

	"github.com/GoCodeAlone/simbus/simtime"
)

// BangEvent is the global reset pulse. Agents that hold per-run state clear
// it on receipt.
type BangEvent struct {
	Meta
}

func (e *BangEvent) Kind() Kind { return KindBang }
func (e *BangEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnBang(ctx, d, e)
}

// CheckLimitOrderExpirationEvent is the self-scheduled probe the cancellation
// supervisor sends itself at ack time + original timeout. It is always
// published on the supervisor's own unicast topic.
type CheckLimitOrderExpirationEvent struct {
	Meta
	TargetXID       uint64           `json:"targetXid"`
	OriginalTimeout simtime.Duration `json:"originalTimeout"`
}

func (e *CheckLimitOrderExpirationEvent) Kind() Kind { return KindCheckLimitOrderExpiration }
func (e *CheckLimitOrderExpirationEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnCheckLimitOrderExpiration(ctx, d, e)
}
