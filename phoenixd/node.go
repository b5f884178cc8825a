package phoenixd

import (
	"context"
	"net/url"

	"github.com/go-errors/errors"
)

func required(op Operation, name string, value string) error {
	if value == "" {
		return errors.Errorf("%v: %v is required", op, name)
	}

	return nil
}

// GetBalance returns the confirmed balance and fee credit.
func (c *Client) GetBalance(ctx context.Context) (*Balance, error) {
	res := balanceResponse{}
	if err := c.getJSON(ctx, OpGetBalance, "/getbalance", &res); err != nil {
		return nil, err
	}

	return &Balance{
		BalanceSat:   *res.BalanceSat,
		FeeCreditSat: *res.FeeCreditSat,
	}, nil
}

// GetBalanceSat returns the spendable balance, fee credit included.
func (c *Client) GetBalanceSat(ctx context.Context) (int64, error) {
	balance, err := c.GetBalance(ctx)
	if err != nil {
		return 0, err
	}

	return balance.Total(), nil
}

func (c *Client) GetInfo(ctx context.Context) (*NodeInfo, error) {
	info := &NodeInfo{}
	if err := c.getJSON(ctx, OpGetInfo, "/getinfo", info); err != nil {
		return nil, err
	}

	return info, nil
}

func (c *Client) ListIncomingPayments(ctx context.Context) ([]IncomingPayment, error) {
	payments := incomingPayments{}
	if err := c.getJSON(ctx, OpListIncoming, "/payments/incoming", &payments); err != nil {
		return nil, err
	}

	return payments, nil
}

func (c *Client) ListOutgoingPayments(ctx context.Context) ([]OutgoingPayment, error) {
	payments := outgoingPayments{}
	if err := c.getJSON(ctx, OpListOutgoing, "/payments/outgoing", &payments); err != nil {
		return nil, err
	}

	return payments, nil
}

// GetIncomingPayment looks up a single incoming payment, typically to check
// whether an invoice has been paid.
func (c *Client) GetIncomingPayment(ctx context.Context, paymentHash string) (*IncomingPayment, error) {
	if err := required(OpGetIncomingPayment, "paymentHash", paymentHash); err != nil {
		return nil, err
	}

	payment := &IncomingPayment{}
	err := c.getJSON(ctx, OpGetIncomingPayment, "/payments/incoming/"+url.PathEscape(paymentHash), payment)
	if err != nil {
		return nil, err
	}

	return payment, nil
}

func (c *Client) GetOutgoingPayment(ctx context.Context, paymentId string) (*OutgoingPayment, error) {
	if err := required(OpGetOutgoingPayment, "paymentId", paymentId); err != nil {
		return nil, err
	}

	payment := &OutgoingPayment{}
	err := c.getJSON(ctx, OpGetOutgoingPayment, "/payments/outgoing/"+url.PathEscape(paymentId), payment)
	if err != nil {
		return nil, err
	}

	return payment, nil
}
