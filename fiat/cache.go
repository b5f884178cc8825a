package fiat

import (
	"context"
	"sync"
	"time"

	"github.com/go-errors/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTTL          = 60 * time.Second
	DefaultExchange     = "kraken"
	DefaultFetchTimeout = 10 * time.Second
)

// RateSource fetches the price of one bitcoin in a fiat currency.
type RateSource interface {
	FetchRatio(ctx context.Context, exchange string, fiatCode string) (decimal.Decimal, error)
}

type CacheConfig struct {
	Source       RateSource
	Currencies   []string
	TTL          time.Duration
	FetchTimeout time.Duration
	Exchange     string
	Logger       Logger
	Now          func() time.Time
}

type entry struct {
	ratio     *decimal.Decimal
	fetchedAt time.Time
}

// Cache memoizes one BTC ratio per currency. A ratio older than the TTL is
// refreshed on the next lookup; when the refresh fails the old ratio keeps
// being served, so an entry can be arbitrarily stale while the source is down.
type Cache struct {
	source       RateSource
	ttl          time.Duration
	fetchTimeout time.Duration
	exchange     string
	now          func() time.Time
	log          Logger
	mtx          sync.Mutex
	entries      map[string]*entry
	inflight     singleflight.Group
}

func NewCache(config *CacheConfig) *Cache {
	cache := &Cache{
		source:       config.Source,
		ttl:          config.TTL,
		fetchTimeout: config.FetchTimeout,
		exchange:     config.Exchange,
		now:          config.Now,
		entries:      make(map[string]*entry),
	}

	if cache.ttl == 0 {
		cache.ttl = DefaultTTL
	}

	if cache.fetchTimeout == 0 {
		cache.fetchTimeout = DefaultFetchTimeout
	}

	if cache.exchange == "" {
		cache.exchange = DefaultExchange
	}

	if cache.now == nil {
		cache.now = time.Now
	}

	if config.Logger != nil {
		cache.log = config.Logger
	} else {
		cache.log = noopLogger{}
	}

	codes := config.Currencies
	if len(codes) == 0 {
		codes = DefaultCodes()
	}

	for _, code := range codes {
		cache.entries[code] = &entry{}
	}

	return cache
}

// Convert turns a bitcoin amount into a fiat amount with the given number of
// decimals. With sats set the amount is taken as satoshis. A zero amount is
// "0" without consulting the cache, a conversion that comes out as zero is "".
func (c *Cache) Convert(ctx context.Context, amount decimal.Decimal, code string, sats bool, decimals int32) (string, error) {
	if amount.IsZero() {
		return "0", nil
	}

	if decimals < 0 {
		return "", errors.Errorf("invalid number of decimals %d", decimals)
	}

	if sats {
		amount = amount.Shift(-8)
	}

	ratio, err := c.Ratio(ctx, code)
	if err != nil {
		return "", err
	}

	fiatAmount := amount.Mul(ratio)
	if fiatAmount.IsZero() {
		return "", nil
	}

	return fiatAmount.StringFixed(decimals), nil
}

// Ratio returns the ratio for a currency, refreshing it once it is older
// than the TTL.
func (c *Cache) Ratio(ctx context.Context, code string) (decimal.Decimal, error) {
	c.mtx.Lock()
	e, ok := c.entries[code]
	if !ok {
		c.mtx.Unlock()
		return decimal.Zero, &UnsupportedCurrency{Code: code}
	}

	if e.ratio != nil && c.now().Sub(e.fetchedAt) <= c.ttl {
		ratio := *e.ratio
		c.mtx.Unlock()
		return ratio, nil
	}
	c.mtx.Unlock()

	// shared by every caller waiting on code, no single caller can cancel it
	result := c.inflight.DoChan(code, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		return c.refresh(fetchCtx, code)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		res = singleflight.Result{Err: ctx.Err()}
	case res = <-result:
	}

	if res.Err == nil {
		return res.Val.(decimal.Decimal), nil
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()

	if e := c.entries[code]; e.ratio != nil {
		c.log.Warnf("Could not refresh %v ratio, using the one from %v: %v",
			code, e.fetchedAt.Format(time.RFC3339), res.Err)
		return *e.ratio, nil
	}

	c.log.Errorf("Unable to get %v ratio, and there is no cached value: %v", code, res.Err)

	return decimal.Zero, &RateUnavailable{Code: code, Err: res.Err}
}

func (c *Cache) refresh(ctx context.Context, code string) (decimal.Decimal, error) {
	now := c.now()

	// another flight may have refreshed the entry since the caller looked
	c.mtx.Lock()
	if e := c.entries[code]; e.ratio != nil && now.Sub(e.fetchedAt) <= c.ttl {
		ratio := *e.ratio
		c.mtx.Unlock()
		return ratio, nil
	}
	c.mtx.Unlock()

	c.log.Debugf("Fetching %v ratio from %v", code, c.exchange)

	ratio, err := c.source.FetchRatio(ctx, c.exchange, code)
	if err != nil {
		return decimal.Zero, err
	}

	c.mtx.Lock()
	c.entries[code] = &entry{ratio: &ratio, fetchedAt: now}
	c.mtx.Unlock()

	return ratio, nil
}

// ClearCache forgets every ratio, so the next lookup of each currency has to
// fetch and has nothing stale to fall back to.
func (c *Cache) ClearCache() {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	for code := range c.entries {
		c.entries[code] = &entry{}
	}

	c.log.Infof("Cleared fiat rate cache")
}

// Codes returns the currencies the cache tracks.
func (c *Cache) Codes() []string {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	codes := make([]string, 0, len(c.entries))
	for code := range c.entries {
		codes = append(codes, code)
	}

	return codes
}
