package api

import (
	"net/http"

	"github.com/the-lightning-land/resurrection/fiat"
	"github.com/the-lightning-land/resurrection/walletdb"
)

var networks = map[string]bool{
	"mainnet": true,
	"testnet": true,
}

type setupMessage struct {
	Network      string `json:"network"`
	FiatCurrency string `json:"fiatCurrency"`
	Completed    bool   `json:"completed"`
}

func (a *Api) handleGetSetup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setup, err := a.db.GetSetup()
		if err != nil {
			a.failure(w, err)
			return
		}

		a.jsonResponse(w, &setupMessage{
			Network:      setup.Network,
			FiatCurrency: setup.FiatCurrency,
			Completed:    setup.Completed,
		}, http.StatusOK)
	}
}

func (a *Api) handlePutSetup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := setupMessage{}
		if !a.decodeRequest(w, r, &req) {
			return
		}

		if !networks[req.Network] {
			a.jsonError(w, "Unknown network "+req.Network, http.StatusBadRequest)
			return
		}

		if req.FiatCurrency != "" && !fiat.Supported(req.FiatCurrency) {
			a.jsonError(w, "Unknown fiat currency "+req.FiatCurrency, http.StatusBadRequest)
			return
		}

		err := a.db.SetSetup(&walletdb.Setup{
			Network:      req.Network,
			FiatCurrency: req.FiatCurrency,
			Completed:    req.Completed,
		})
		if err != nil {
			a.failure(w, err)
			return
		}

		a.log.Infof("Saved setup for %v", req.Network)

		a.jsonResponse(w, &req, http.StatusOK)
	}
}
