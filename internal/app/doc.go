// Package app provides the orchestration layer for the storefront.
//
// # Overview
//
// This package wires configuration, logging, durable storage, identity,
// the catalog, the cart store and the UI together. It is the composition
// root where every dependency is built and connected.
//
// # Page Load Sequence
//
//  1. Load config.toml (plus .env and environment overrides)
//  2. Open the log file and the storage slot file
//  3. Resolve the page from the -page location
//  4. Resolve the identity through auth.Manager when Redis is configured
//  5. Load the catalog, falling back to the built-in products
//  6. Pick the cart store: SyncStore plus subscription pump when the
//     identity is Ready, LocalStore otherwise
//  7. Start the TUI and block until the user exits or the context ends
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()
//	       ├─────> logging.New()
//	       ├─────> bootstrap()
//	       │        ├─> page.Resolve()
//	       │        ├─> auth.Manager.Resolve()
//	       │        ├─> catalog.Client.Load()
//	       │        └─> establishCart()
//	       └─────> ui.Run()           (blocks)
//
//	Subscription pump:
//	┌─────────────────────────────────────────┐
//	│ StartPump() goroutine                   │
//	│  ├─> receive []cart.Line from SyncStore │
//	│  └─> session.ReplaceCart()              │
//	│      └─> UI reads session.Snapshot()    │
//	└─────────────────────────────────────────┘
//
// # Cart Actions
//
// Controller implements ui.Actions. The local variant copies the stored
// cart into the session right after each write. The synchronized variant
// leaves that to the pump, so the screen only changes once the document
// store echoes the write back.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Configuration file invalid
//   - Log file cannot be opened
//   - Storage path empty
//
// Everything else degrades: the catalog falls back to built-in products,
// sign-in failures fall back to a local identity and a device-only cart,
// and failed cart writes become notifications.
package app
