package phoenixd

import (
	"bytes"
	"context"
	"net/http"
)

// PayInvoiceRequest pays a bolt11 invoice. AmountSat overrides the invoice
// amount and is required for amountless invoices.
type PayInvoiceRequest struct {
	Invoice   string
	AmountSat int64
}

type PayOfferRequest struct {
	Offer     string
	AmountSat int64
	Message   string
}

type PayLnAddressRequest struct {
	Address   string
	AmountSat int64
	Message   string
}

type SendToAddressRequest struct {
	Address        string
	AmountSat      int64
	FeerateSatByte int64
}

func (c *Client) PayInvoice(ctx context.Context, req *PayInvoiceRequest) (*PaymentResult, error) {
	if err := required(OpPayInvoice, "invoice", req.Invoice); err != nil {
		return nil, err
	}

	body := newForm().
		set("invoice", req.Invoice).
		setInt("amountSat", req.AmountSat)

	result := &PaymentResult{}
	if err := c.postJSON(ctx, OpPayInvoice, "/payinvoice", body, result); err != nil {
		return nil, err
	}

	return result, nil
}

func (c *Client) PayOffer(ctx context.Context, req *PayOfferRequest) (*PaymentResult, error) {
	if err := required(OpPayOffer, "offer", req.Offer); err != nil {
		return nil, err
	}

	body := newForm().
		set("offer", req.Offer).
		setInt("amountSat", req.AmountSat).
		set("message", req.Message)

	result := &PaymentResult{}
	if err := c.postJSON(ctx, OpPayOffer, "/payoffer", body, result); err != nil {
		return nil, err
	}

	return result, nil
}

// PayLnAddress pays a lightning address (user@domain).
func (c *Client) PayLnAddress(ctx context.Context, req *PayLnAddressRequest) (*PaymentResult, error) {
	if err := required(OpPayLnAddress, "address", req.Address); err != nil {
		return nil, err
	}

	body := newForm().
		set("address", req.Address).
		setInt("amountSat", req.AmountSat).
		set("message", req.Message)

	result := &PaymentResult{}
	if err := c.postJSON(ctx, OpPayLnAddress, "/paylnaddress", body, result); err != nil {
		return nil, err
	}

	return result, nil
}

// SendToAddress sends funds to a bitcoin address on-chain. Depending on its
// version phoenixd answers with the bare txid or with a JSON object.
func (c *Client) SendToAddress(ctx context.Context, req *SendToAddressRequest) (*OnchainResult, error) {
	if err := required(OpSendToAddress, "address", req.Address); err != nil {
		return nil, err
	}

	body := newForm().
		set("address", req.Address).
		setInt("amountSat", req.AmountSat).
		setInt("feerateSatByte", req.FeerateSatByte)

	payload, err := c.do(ctx, OpSendToAddress, http.MethodPost, "/sendtoaddress", &body)
	if err != nil {
		return nil, err
	}

	payload = bytes.TrimSpace(payload)
	result := &OnchainResult{}

	if len(payload) > 0 && payload[0] == '{' {
		if err := decode(OpSendToAddress, payload, result); err != nil {
			return nil, err
		}

		return result, nil
	}

	result.TxId = string(payload)
	if err := result.validate(); err != nil {
		return nil, &DecodeFailed{Operation: OpSendToAddress, Err: err}
	}

	return result, nil
}
