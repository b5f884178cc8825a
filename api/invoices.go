package api

import (
	"net/http"

	"github.com/the-lightning-land/resurrection/phoenixd"
)

type postInvoiceRequest struct {
	Description   string `json:"description"`
	AmountSat     int64  `json:"amountSat"`
	ExternalId    string `json:"externalId"`
	ExpirySeconds int64  `json:"expirySeconds"`
}

type getOfferResponse struct {
	Offer string `json:"offer"`
}

type postDecodeRequest struct {
	Invoice string `json:"invoice"`
	Offer   string `json:"offer"`
}

func (a *Api) handlePostInvoice() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := postInvoiceRequest{}
		if !a.decodeRequest(w, r, &req) {
			return
		}

		if req.AmountSat < 0 {
			a.jsonError(w, "amountSat must not be negative", http.StatusBadRequest)
			return
		}

		invoice, err := a.node.CreateInvoice(r.Context(), &phoenixd.CreateInvoiceRequest{
			Description:   req.Description,
			AmountSat:     req.AmountSat,
			ExternalId:    req.ExternalId,
			ExpirySeconds: req.ExpirySeconds,
		})
		if err != nil {
			a.failure(w, err)
			return
		}

		a.jsonResponse(w, invoice, http.StatusCreated)
	}
}

func (a *Api) handleGetOffer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offer, err := a.node.GetOffer(r.Context())
		if err != nil {
			a.failure(w, err)
			return
		}

		a.jsonResponse(w, &getOfferResponse{Offer: offer}, http.StatusOK)
	}
}

func (a *Api) handlePostDecode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := postDecodeRequest{}
		if !a.decodeRequest(w, r, &req) {
			return
		}

		switch {
		case req.Invoice != "" && req.Offer == "":
			decoded, err := a.node.DecodeInvoice(r.Context(), req.Invoice)
			if err != nil {
				a.failure(w, err)
				return
			}

			a.jsonResponse(w, decoded, http.StatusOK)
		case req.Offer != "" && req.Invoice == "":
			decoded, err := a.node.DecodeOffer(r.Context(), req.Offer)
			if err != nil {
				a.failure(w, err)
				return
			}

			a.jsonResponse(w, decoded, http.StatusOK)
		default:
			a.jsonError(w, "Exactly one of invoice or offer is required", http.StatusBadRequest)
		}
	}
}
