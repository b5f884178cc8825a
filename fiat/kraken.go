package fiat

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-errors/errors"
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

const DefaultKrakenURL = "https://api.kraken.com"

type KrakenConfig struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     Logger
}

// KrakenSource reads the last trade price of XBT against a fiat currency from
// Kraken's public ticker.
type KrakenSource struct {
	baseURL string
	http    *http.Client
	log     Logger
}

// Compile time check for protocol compatibility
var _ RateSource = (*KrakenSource)(nil)

func NewKrakenSource(config *KrakenConfig) *KrakenSource {
	source := &KrakenSource{
		baseURL: strings.TrimSuffix(config.BaseURL, "/"),
		http:    config.HTTPClient,
	}

	if source.baseURL == "" {
		source.baseURL = DefaultKrakenURL
	}

	if source.http == nil {
		source.http = http.DefaultClient
	}

	if config.Logger != nil {
		source.log = config.Logger
	} else {
		source.log = noopLogger{}
	}

	return source
}

type tickerResponse struct {
	Error  []string `json:"error"`
	Result map[string]struct {
		LastTrade []string `json:"c"`
	} `json:"result"`
}

func (k *KrakenSource) FetchRatio(ctx context.Context, exchange string, fiatCode string) (decimal.Decimal, error) {
	if exchange != DefaultExchange {
		return decimal.Zero, errors.Errorf("unsupported exchange %v", exchange)
	}

	pair := "XBT" + strings.ToUpper(fiatCode)
	endpoint := fmt.Sprintf("%s/0/public/Ticker?pair=%s", k.baseURL, url.QueryEscape(pair))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, errors.Errorf("could not create ticker request: %v", err)
	}

	res, err := k.http.Do(req)
	if err != nil {
		return decimal.Zero, errors.Errorf("could not fetch %v ticker: %v", pair, err)
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return decimal.Zero, errors.Errorf("kraken ticker for %v returned %v", pair, res.Status)
	}

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return decimal.Zero, errors.Errorf("could not read %v ticker: %v", pair, err)
	}

	ticker := tickerResponse{}
	if err := json.Unmarshal(payload, &ticker); err != nil {
		return decimal.Zero, errors.Errorf("could not decode %v ticker: %v", pair, err)
	}

	if len(ticker.Error) > 0 {
		return decimal.Zero, errors.Errorf("kraken ticker for %v failed: %v", pair, strings.Join(ticker.Error, ", "))
	}

	// kraken keys the result by its own pair name, e.g. XXBTZUSD
	for name, t := range ticker.Result {
		if len(t.LastTrade) == 0 {
			return decimal.Zero, errors.Errorf("kraken ticker %v has no last trade", name)
		}

		price, err := decimal.NewFromString(t.LastTrade[0])
		if err != nil {
			return decimal.Zero, errors.Errorf("invalid %v price %q: %v", name, t.LastTrade[0], err)
		}

		if !price.IsPositive() {
			return decimal.Zero, errors.Errorf("invalid %v price %v", name, price)
		}

		k.log.Debugf("Kraken %v last trade at %v", name, price)

		return price, nil
	}

	return decimal.Zero, errors.Errorf("kraken returned no ticker for %v", pair)
}
