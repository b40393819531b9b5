// Package dev provides hot reload for the development server.
//
// This package implements:
//   - File watching for components, pages, styles and assets
//   - Recompiling the component registry when a component changes
//   - WebSocket-based browser refresh
//   - Error overlay in browser
//
// # Architecture
//
//   - Watcher: Monitors the project directories with fsnotify and reports
//     debounced batches of changes
//   - Reloader: Decides what a batch means and rebuilds the registry
//   - ReloadServer: Notifies browsers of changes via WebSocket
//
// # Usage
//
//	clients := dev.NewReloadServer()
//	reloader := &dev.Reloader{Rebuild: rebuild, Clients: clients}
//	err := dev.Watch(ctx, dev.WatcherConfig{Paths: paths}, reloader)
//
// # Hot Reload Protocol
//
// The browser connects to /_enhance/reload via WebSocket.
// Messages are JSON-encoded:
//
//	{"type": "reload"}                // Triggers full page reload
//	{"type": "css", "file": "..."}    // Triggers CSS-only reload
//	{"type": "error", "error": "..."} // Shows error overlay
//	{"type": "clear"}                 // Clears error overlay
package dev
