package payment

import (
	"context"
	"fmt"

	"github.com/razorpay/razorpay-go"
)

// RazorpayGateway charges through Razorpay by creating an order per booking.
type RazorpayGateway struct {
	client *razorpay.Client
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

func (g *RazorpayGateway) Process(ctx context.Context, amountCents int64, method Method) (Result, error) {
	data := map[string]interface{}{
		"amount":   amountCents,
		"currency": "USD",
		"notes": map[string]interface{}{
			"method": string(method),
		},
	}
	order, err := g.client.Order.Create(data, nil)
	if err != nil {
		return Result{Success: false, Message: err.Error()}, nil
	}
	id, _ := order["id"].(string)
	return Result{Success: true, Message: fmt.Sprintf("order %s created", id)}, nil
}

var _ Gateway = (*RazorpayGateway)(nil)
