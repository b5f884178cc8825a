package phoenixd

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-errors/errors"
)

type CreateInvoiceRequest struct {
	Description   string
	AmountSat     int64
	ExternalId    string
	ExpirySeconds int64
}

func (r *CreateInvoiceRequest) form() form {
	f := newForm()

	// phoenixd needs the description field even when it is empty
	f.Set("description", r.Description)

	return f.
		setInt("amountSat", r.AmountSat).
		set("externalId", r.ExternalId).
		setInt("expirySeconds", r.ExpirySeconds)
}

// CreateInvoice creates a bolt11 invoice. A zero amount creates an invoice
// the payer chooses the amount for.
func (c *Client) CreateInvoice(ctx context.Context, req *CreateInvoiceRequest) (*Invoice, error) {
	invoice := &Invoice{}
	if err := c.postJSON(ctx, OpCreateInvoice, "/createinvoice", req.form(), invoice); err != nil {
		return nil, err
	}

	return invoice, nil
}

// GetOffer returns the node's reusable bolt12 offer. phoenixd answers with
// plain text instead of JSON.
func (c *Client) GetOffer(ctx context.Context) (string, error) {
	payload, err := c.do(ctx, OpGetOffer, http.MethodGet, "/getoffer", nil)
	if err != nil {
		return "", err
	}

	offer := strings.TrimSpace(string(payload))
	if offer == "" {
		return "", &DecodeFailed{Operation: OpGetOffer, Err: errors.New("empty offer")}
	}

	return offer, nil
}

func (c *Client) DecodeInvoice(ctx context.Context, invoice string) (*DecodedInvoice, error) {
	if err := required(OpDecodeInvoice, "invoice", invoice); err != nil {
		return nil, err
	}

	decoded := &DecodedInvoice{}
	err := c.postJSON(ctx, OpDecodeInvoice, "/decodeinvoice", newForm().set("invoice", invoice), decoded)
	if err != nil {
		return nil, err
	}

	return decoded, nil
}

func (c *Client) DecodeOffer(ctx context.Context, offer string) (*DecodedOffer, error) {
	if err := required(OpDecodeOffer, "offer", offer); err != nil {
		return nil, err
	}

	decoded := &DecodedOffer{}
	err := c.postJSON(ctx, OpDecodeOffer, "/decodeoffer", newForm().set("offer", offer), decoded)
	if err != nil {
		return nil, err
	}

	return decoded, nil
}
