// Package catalog loads the product list from the catalog endpoint.
//
// Load never fails. Transport errors, non-2xx statuses and undecodable
// bodies are logged and replaced by Fallback, a fixed list of five
// products of which ids 1 and 2 are featured. Fetch exposes the raw result
// for callers that want the error.
//
// Prices are shopspring decimals so that cart totals add up exactly; the
// endpoint may send them as JSON numbers or strings.
package catalog
