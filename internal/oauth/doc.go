// Package oauth implements the three-legged OAuth authorization-code flow
// for Autodesk Platform Services (APS).
//
// The flow is browser-mediated: a transient loopback HTTP listener captures
// the provider's redirect, the authorization code is exchanged for tokens,
// and the resulting record is cached through a TokenStore backed by a
// durable Storage collaborator.
//
// # Architecture
//
//   - CallbackServer: loopback listener that latches exactly one terminal
//     result per flow attempt and answers every inbound request with a
//     themed HTML page.
//   - Orchestrator: the authenticate/check/clear state machine. It always
//     consults the TokenStore before starting a listener or opening a
//     browser, and starts the listener strictly before the authorization
//     URL is handed to the browser.
//   - TokenStore: process-wide cache of the current TokenRecord with an
//     explicit load/set/clear lifecycle.
//
// # Concurrency
//
// Each attempt has two goroutines: the caller, suspended inside
// WaitForResult with a bounded timeout, and the listener's request worker.
// The only shared mutable state between them is the write-once result latch
// (a single-slot channel); duplicate browser requests never alter a latched
// result. The listener is torn down on every exit path, so the port is free
// again immediately after any terminal outcome.
package oauth
