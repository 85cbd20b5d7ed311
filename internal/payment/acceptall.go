package payment

import "context"

// AcceptAllGateway approves every charge. Used when no real gateway is
// configured, e.g. local runs and demos.
type AcceptAllGateway struct{}

func NewAcceptAllGateway() *AcceptAllGateway { return &AcceptAllGateway{} }

func (g *AcceptAllGateway) Process(ctx context.Context, amountCents int64, method Method) (Result, error) {
	if amountCents <= 0 {
		return Result{Success: false, Message: "amount must be positive"}, nil
	}
	return Result{Success: true, Message: "approved"}, nil
}

var _ Gateway = (*AcceptAllGateway)(nil)
