// Package payment defines the gateway contract the reservation orchestrator
// charges through, plus the concrete gateways the application wires in.
package payment

import (
	"context"
	"fmt"

	"github.com/aturgenev/skyreserve/internal/domain"
)

// Method is how the customer pays.
type Method string

const (
	MethodCard   Method = "CARD"
	MethodUPI    Method = "UPI"
	MethodWallet Method = "WALLET"
)

// ParseMethod validates a raw payment method string.
func ParseMethod(raw string) (Method, error) {
	switch Method(raw) {
	case MethodCard, MethodUPI, MethodWallet:
		return Method(raw), nil
	default:
		return "", fmt.Errorf("%w: unknown payment method %q", domain.ErrInvalidRequest, raw)
	}
}

// Result is the gateway's verdict. Message carries the decline reason
// verbatim when Success is false.
type Result struct {
	Success bool
	Message string
}

// Gateway processes a charge. Implementations may block on the network; the
// orchestrator calls Process before any inventory mutation and never while
// holding entity locks. A returned error means the gateway itself failed;
// a declined charge is Success=false with a nil error.
type Gateway interface {
	Process(ctx context.Context, amountCents int64, method Method) (Result, error)
}
