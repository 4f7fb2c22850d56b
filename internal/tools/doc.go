// Package tools exposes apsconnect functionality as MCP tools over stdio.
//
// The server bridges three concerns for AI assistants: APS token lifecycle
// (obtain, inspect, clear), the origin/target element-ID mapping store,
// and the local modeling application's Routes API. All responses are JSON
// with a status field, matching the Routes API's envelope.
package tools
