package models

import "errors"

// Sentinel errors shared across layers. Wrap with fmt.Errorf("%w: ...") and
// test with errors.Is.
var (
	// ErrInsufficientHistory means fewer aligned rows than the model window.
	ErrInsufficientHistory = errors.New("insufficient price history")
	// ErrMissingAssetData means a required ticker is absent or has unusable values.
	ErrMissingAssetData = errors.New("missing asset data")
	// ErrForecastUnavailable means the sequence model failed or returned malformed output.
	ErrForecastUnavailable = errors.New("forecast unavailable")
	// ErrUpstreamService covers LLM, document store and price feed failures.
	ErrUpstreamService = errors.New("upstream service error")
	// ErrUniverseMismatch means panel columns differ from the model's asset universe.
	ErrUniverseMismatch = errors.New("asset universe mismatch")
	// ErrTickerNotResolved means the user text did not name a recognisable company.
	ErrTickerNotResolved = errors.New("ticker not resolved")
)
