package fiat

import "fmt"

// RateUnavailable is returned when no ratio, fresh or stale, is known for a
// currency. Callers should show a placeholder instead of a zero amount.
type RateUnavailable struct {
	Code string
	Err  error
}

func (e *RateUnavailable) Error() string {
	return fmt.Sprintf("unable to get %v ratio: %v", e.Code, e.Err)
}

func (e *RateUnavailable) Unwrap() error {
	return e.Err
}

// UnsupportedCurrency is returned for codes the cache was not configured with.
type UnsupportedCurrency struct {
	Code string
}

func (e *UnsupportedCurrency) Error() string {
	return fmt.Sprintf("unsupported fiat currency %v", e.Code)
}
