package api

import (
	"net/http"

	"github.com/the-lightning-land/resurrection/phoenixd"
)

type postPaymentRequest struct {
	Invoice        string `json:"invoice"`
	Offer          string `json:"offer"`
	LnAddress      string `json:"lnAddress"`
	Address        string `json:"address"`
	AmountSat      int64  `json:"amountSat"`
	Message        string `json:"message"`
	FeerateSatByte int64  `json:"feerateSatByte"`
}

func (p *postPaymentRequest) destinations() int {
	count := 0

	for _, d := range []string{p.Invoice, p.Offer, p.LnAddress, p.Address} {
		if d != "" {
			count++
		}
	}

	return count
}

func (a *Api) handlePostPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := postPaymentRequest{}
		if !a.decodeRequest(w, r, &req) {
			return
		}

		if req.destinations() != 1 {
			a.jsonError(w, "Exactly one of invoice, offer, lnAddress or address is required", http.StatusBadRequest)
			return
		}

		if req.AmountSat < 0 || req.FeerateSatByte < 0 {
			a.jsonError(w, "Amounts must not be negative", http.StatusBadRequest)
			return
		}

		ctx := r.Context()

		var (
			result interface{}
			err    error
		)

		switch {
		case req.Invoice != "":
			a.log.Infof("Paying invoice")
			result, err = a.node.PayInvoice(ctx, &phoenixd.PayInvoiceRequest{
				Invoice:   req.Invoice,
				AmountSat: req.AmountSat,
			})
		case req.Offer != "":
			a.log.Infof("Paying offer")
			result, err = a.node.PayOffer(ctx, &phoenixd.PayOfferRequest{
				Offer:     req.Offer,
				AmountSat: req.AmountSat,
				Message:   req.Message,
			})
		case req.LnAddress != "":
			a.log.Infof("Paying lightning address %v", req.LnAddress)
			result, err = a.node.PayLnAddress(ctx, &phoenixd.PayLnAddressRequest{
				Address:   req.LnAddress,
				AmountSat: req.AmountSat,
				Message:   req.Message,
			})
		default:
			a.log.Infof("Sending %v sat on-chain to %v", req.AmountSat, req.Address)
			result, err = a.node.SendToAddress(ctx, &phoenixd.SendToAddressRequest{
				Address:        req.Address,
				AmountSat:      req.AmountSat,
				FeerateSatByte: req.FeerateSatByte,
			})
		}

		if err != nil {
			a.failure(w, err)
			return
		}

		a.jsonResponse(w, result, http.StatusOK)
	}
}
