package integration

import "context"

// PageHandler receives the mapped orders of one remote page, in arrival order.
// Returning an error stops the walk.
type PageHandler func(ctx context.Context, orders []*Order) error

// OrderSource is the port to the remote commerce platform
type OrderSource interface {
	// Walk fetches every page for the credential and window (nil window = all
	// orders), pacing requests, and hands each mapped page to fn. Remote
	// failures abort the walk with ErrRemoteFetch; pages already handled stay handled.
	Walk(ctx context.Context, cred *Credential, window *SyncWindow, fn PageHandler) error
}
