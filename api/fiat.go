package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/the-lightning-land/resurrection/fiat"
)

type getFiatResponse struct {
	Code   string `json:"code"`
	Amount string `json:"amount"`
	Prefix string `json:"prefix"`
	Suffix string `json:"suffix"`
}

// handleGetFiat converts ?amount= (satoshis unless sats=false) into the
// currency named in the path.
func (a *Api) handleGetFiat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := strings.ToUpper(mux.Vars(r)["code"])
		query := r.URL.Query()

		amount, err := decimal.NewFromString(query.Get("amount"))
		if err != nil {
			a.jsonError(w, "Invalid amount", http.StatusBadRequest)
			return
		}

		sats := true
		if s := query.Get("sats"); s != "" {
			sats, err = strconv.ParseBool(s)
			if err != nil {
				a.jsonError(w, "Invalid sats flag", http.StatusBadRequest)
				return
			}
		}

		decimals := int64(2)
		if d := query.Get("decimals"); d != "" {
			decimals, err = strconv.ParseInt(d, 10, 32)
			if err != nil || decimals < 0 {
				a.jsonError(w, "Invalid decimals", http.StatusBadRequest)
				return
			}
		}

		converted, err := a.rates.Convert(r.Context(), amount, code, sats, int32(decimals))
		if err != nil {
			a.failure(w, err)
			return
		}

		a.jsonResponse(w, &getFiatResponse{
			Code:   code,
			Amount: converted,
			Prefix: fiat.Prefix(code),
			Suffix: fiat.Suffix(code),
		}, http.StatusOK)
	}
}

func (a *Api) handleDeleteFiat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.rates.ClearCache()
		w.WriteHeader(http.StatusNoContent)
	}
}
