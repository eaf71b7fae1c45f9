// Package session holds the state of one storefront run: the catalog, the
// cart as last delivered by its store, and the resolved identity.
//
// The Store replaces what would otherwise be process-wide globals. The
// controller writes the catalog once, the subscription pump replaces the
// cart on every push, and the UI reads copies through Snapshot on each
// tick. All access goes through a sync.RWMutex and every read hands back
// defensive copies, so the UI can never observe a half-written cart.
//
// Store is usable as a zero value:
//
//	store := &session.Store{}
//	store.SetCatalog(products)
//	store.ReplaceCart(lines)
//	snap := store.Snapshot()
package session
