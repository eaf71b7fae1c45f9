// Package ui provides the storefront's terminal user interface.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model holds the current page and the
// latest session.Snapshot; every View call renders the page through the
// render package, so the screen always reflects the newest cart the
// subscription delivered.
//
// # Package Structure
//
//   - app.go: Model, Update loop, key dispatch, tick and snapshot commands
//   - controls.go: registry that binds persistent controls such as checkout
//   - header.go: status bar, page body and notification footer
//   - help.go: help overlay built from the key map
//   - keys.go: bubbles/key bindings
//   - theme.go, style_helpers.go: lipgloss themes and background helpers
//
// # Pages
//
//   - Home (1): featured products
//   - Products (2): the whole catalog
//   - Product details (enter on a product): price, description, add row
//   - Cart (3): lines with remove rows, total and the checkout control
//   - Account (4): identity, session state and cart storage mode
//
// # Data Flow
//
// A tick every PollTick fetches session.Snapshot. Cart actions run as
// tea.Cmds against Options.Actions and trigger an immediate snapshot fetch
// when they finish. Notifications are read from Options.Notices on each
// render and disappear once they expire.
//
// # Controls
//
// Fragments list their persistent controls on every render. The registry
// keeps one handler per control, binding it the first time it appears and
// releasing it when a render no longer lists it.
package ui
