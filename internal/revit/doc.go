// Package revit talks to the local modeling application's Routes API.
//
// The modeling side exposes a plain HTTP surface on a loopback port; this
// package wraps it in a typed client with bounded retries so tool handlers
// never deal with raw HTTP.
package revit
