// Package config loads the storefront configuration.
//
// # Resolution
//
// Load reads ~/.config/storefront/config.toml unless a path is given. A
// missing file is not an error: every field has a default, so the client
// starts against a local catalog with no remote cart. A .env file in the
// working directory is loaded first, and the STOREFRONT_* variables then
// override whatever the file said.
//
// # TOML Format
//
//	theme = "Nightfox"
//
//	[catalog]
//	url = "http://127.0.0.1:8080/api/products"
//	timeout_seconds = 5
//
//	[remote]
//	redis_addr = "127.0.0.1:6379"
//	app_id = "default-app-id"
//	auth_secret = "change-me"
//	auth_token = ""
//
//	[storage]
//	path = "~/.local/share/storefront/storage.toml"
//
//	[log]
//	path = "~/.local/share/storefront/storefront.log"
//	level = "info"
//
// Leaving remote.redis_addr empty means no identity provider is configured;
// the session then runs with a random local identity and the local cart.
//
// # Error Handling
//
// Load only fails on path expansion, unreadable files and TOML syntax
// errors.
package config
