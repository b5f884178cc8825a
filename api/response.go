package api

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"
	"github.com/the-lightning-land/resurrection/credential"
	"github.com/the-lightning-land/resurrection/fiat"
	"github.com/the-lightning-land/resurrection/phoenixd"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (a *Api) jsonResponse(w http.ResponseWriter, v interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		a.log.Errorf("Could not respond with JSON: %v", err)
	}
}

func (a *Api) jsonError(w http.ResponseWriter, message string, code int) {
	a.jsonResponse(w, &errorResponse{Error: message}, code)
}

func (a *Api) decodeRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil {
		a.jsonError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}

	return true
}

// failure answers with the status that matches the kind of error.
func (a *Api) failure(w http.ResponseWriter, err error) {
	var (
		requestFailed *phoenixd.RequestFailed
		decodeFailed  *phoenixd.DecodeFailed
		connFailed    *phoenixd.ConnectionFailed
		unreachable   *url.Error
		unavailable   *fiat.RateUnavailable
		unsupported   *fiat.UnsupportedCurrency
	)

	switch {
	case errors.As(err, &requestFailed), errors.As(err, &decodeFailed), errors.As(err, &connFailed),
		errors.As(err, &unreachable):
		a.jsonError(w, err.Error(), http.StatusBadGateway)
	case errors.As(err, &unavailable):
		a.jsonError(w, err.Error(), http.StatusServiceUnavailable)
	case errors.As(err, &unsupported):
		a.jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, credential.ErrConfigurationMissing), errors.Is(err, credential.ErrCredentialNotFound):
		a.log.Errorf("phoenixd credentials unavailable: %v", err)
		a.jsonError(w, err.Error(), http.StatusInternalServerError)
	default:
		a.log.Errorf("Request failed: %v", err)
		a.jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}
