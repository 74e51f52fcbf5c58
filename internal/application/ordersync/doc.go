// Package ordersync orchestrates one import pass per Shopify credential: walk the
// remote pages, upsert each order by its Shopify id, and insert the line items of
// newly created orders concurrently.
package ordersync
