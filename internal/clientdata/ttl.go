package clientdata

import "time"

// TTL constants for cached upstream responses.
const (
	TTLFundamentals = 24 * time.Hour // float shares and market cap move slowly
	TTLPrices       = 6 * time.Hour  // daily bars; the latest bar may still be forming
)
