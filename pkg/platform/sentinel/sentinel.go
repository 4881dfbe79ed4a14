package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, key fetchers and other
// infrastructure layers return these (wrapped with the cause) so services can
// translate them into domain errors without inspecting backend error types.
//
// - ErrStoreWrite: a put against the backing table failed
// - ErrStoreQuery: a query against the backing table failed
// - ErrKeyFetch: the signing key set could not be fetched or parsed
// - ErrUnavailable: a dependency is not configured or temporarily unreachable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrStoreWrite  = errors.New("store write failed")
	ErrStoreQuery  = errors.New("store query failed")
	ErrKeyFetch    = errors.New("key fetch failed")
	ErrUnavailable = errors.New("unavailable")
)
