// Package logging provides a structured logging system for apsconnect with
// unified log handling and level filtering.
//
// This package implements a logging system built on Go's standard slog
// package, providing consistent logging behavior with structured output.
//
// # Usage
//
//	import "apsconnect/pkg/logging"
//
//	// Initialize with Info level logging to stderr
//	logging.Init(logging.LevelInfo, os.Stderr)
//
//	// Log messages
//	logging.Info("Bootstrap", "Application starting up")
//	logging.Debug("ConfigLoader", "Loaded configuration from %s", configPath)
//	logging.Warn("OAuthFlow", "Could not open browser, falling back to manual URL")
//	logging.Error("TokenStore", err, "Failed to persist token record")
//
// # Subsystem Organization
//
// Logs are organized by subsystem to enable filtering and categorization:
//
//   - **Bootstrap**: Application initialization and startup
//   - **ConfigLoader**: Configuration loading and validation
//   - **OAuthFlow**: Authorization flow orchestration
//   - **CallbackServer**: Loopback callback capture
//   - **TokenStore**: Token persistence
//   - **Mapping**: Origin/target element-ID mapping store
//   - **RevitClient**: Local Routes API proxy
//   - **MCPServer**: MCP stdio server lifecycle
//
// # Security
//
// Access and refresh token values must never be passed to log calls. Log
// token metadata (expiry, scope, validity) instead.
//
// # Thread Safety
//
// The logging system is fully thread-safe and supports concurrent logging
// from multiple goroutines.
package logging
