package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

type balanceResponse struct {
	BalanceSat   int64 `json:"balanceSat"`
	FeeCreditSat int64 `json:"feeCreditSat"`
	TotalSat     int64 `json:"totalSat"`
}

func (a *Api) handleGetBalance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		balance, err := a.node.GetBalance(r.Context())
		if err != nil {
			a.failure(w, err)
			return
		}

		a.jsonResponse(w, &balanceResponse{
			BalanceSat:   balance.BalanceSat,
			FeeCreditSat: balance.FeeCreditSat,
			TotalSat:     balance.Total(),
		}, http.StatusOK)
	}
}

func (a *Api) handleGetInfo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := a.node.GetInfo(r.Context())
		if err != nil {
			a.failure(w, err)
			return
		}

		a.jsonResponse(w, info, http.StatusOK)
	}
}

func (a *Api) handleListIncoming() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payments, err := a.node.ListIncomingPayments(r.Context())
		if err != nil {
			a.failure(w, err)
			return
		}

		a.jsonResponse(w, payments, http.StatusOK)
	}
}

func (a *Api) handleGetIncoming() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payment, err := a.node.GetIncomingPayment(r.Context(), mux.Vars(r)["hash"])
		if err != nil {
			a.failure(w, err)
			return
		}

		a.jsonResponse(w, payment, http.StatusOK)
	}
}

func (a *Api) handleListOutgoing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payments, err := a.node.ListOutgoingPayments(r.Context())
		if err != nil {
			a.failure(w, err)
			return
		}

		a.jsonResponse(w, payments, http.StatusOK)
	}
}

func (a *Api) handleGetOutgoing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payment, err := a.node.GetOutgoingPayment(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			a.failure(w, err)
			return
		}

		a.jsonResponse(w, payment, http.StatusOK)
	}
}
