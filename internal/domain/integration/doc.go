// Package integration contains the order synchronization bounded context.
// It describes how orders placed on a merchant's Shopify store are pulled into
// the local relational store.
//
// Key concepts:
//   - Credential: per-merchant access to the Shopify Admin API, gated by Active
//   - Order / OrderItem: imported records keyed by Shopify's immutable identifiers
//   - SyncWindow: an optional creation-date range bounding one sync pass
//   - OrderSource / OrderGateway: ports for the remote fetch and the idempotent store
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
