// Package config loads and validates the apsconnect configuration.
//
// Configuration is layered: built-in defaults, then config.yaml from the
// user config directory, then APS_* / APS_STG_* environment variables,
// which always win. DX_ENVIRONMENT selects between the prod and staging
// APS application credentials.
package config
