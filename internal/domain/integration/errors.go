package integration

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Error taxonomy
// ---------------------------------------------------------------------------

// The three root kinds below must stay distinguishable with errors.Is: remote
// failures are retried on the next scheduled pass, persistence failures are not,
// and not-found is reported to API callers as such.
var (
	// ErrRemoteFetch covers transport errors, non-success API responses and
	// payloads that cannot be mapped.
	ErrRemoteFetch = errors.New("integration: remote order fetch failed")

	// ErrPersistence covers every failure reported by the relational store.
	ErrPersistence = errors.New("integration: persistence failure")

	// ErrNotFound is returned by lookups that match no record.
	ErrNotFound = errors.New("integration: not found")
)

var (
	// ErrInvalidRemotePayload is returned by the mapper for amounts or timestamps it cannot parse
	ErrInvalidRemotePayload = fmt.Errorf("%w: invalid payload", ErrRemoteFetch)

	// ErrDuplicateRecord is returned when an insert violates a natural-key unique constraint
	ErrDuplicateRecord = fmt.Errorf("%w: duplicate natural key", ErrPersistence)

	ErrOrderNotFound      = fmt.Errorf("%w: order", ErrNotFound)
	ErrCredentialNotFound = fmt.Errorf("%w: credential", ErrNotFound)
	ErrMerchantNotFound   = fmt.Errorf("%w: merchant", ErrNotFound)
)

var (
	ErrInvalidCredential = errors.New("integration: invalid credential")
	ErrInvalidOrder      = errors.New("integration: invalid order")
	ErrInvalidOrderItem  = errors.New("integration: invalid order item")
	ErrInvalidWindow     = errors.New("integration: invalid sync window")

	// ErrCredentialInactive refuses explicit syncs of a disabled credential
	ErrCredentialInactive = fmt.Errorf("%w: inactive", ErrInvalidCredential)
)

// IsRetryable reports whether a failed pass is worth repeating on the next tick.
// Only remote failures qualify; a duplicate key means the record already exists.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRemoteFetch)
}
