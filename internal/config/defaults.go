package config

// APS v1 authentication endpoints, the connector's historical defaults.
const (
	defaultAuthURL  = "https://developer.api.autodesk.com/authentication/v1/authorize"
	defaultTokenURL = "https://developer.api.autodesk.com/authentication/v1/gettoken"

	defaultCallbackURL = "http://localhost:8082/callback/"

	defaultScopes = "viewables:read data:read data:write data:create data:search " +
		"bucket:create bucket:read bucket:update bucket:delete"
)

// GetDefaultConfig returns the configuration defaults applied before the
// config file and environment overrides.
func GetDefaultConfig() Config {
	base := OAuthSettings{
		CallbackURL: defaultCallbackURL,
		AuthURL:     defaultAuthURL,
		TokenURL:    defaultTokenURL,
		Scopes:      defaultScopes,
	}

	return Config{
		Environment: EnvStaging,
		Prod:        base,
		Staging:     base,
		Network: NetworkConfig{
			TimeoutSeconds:   30,
			MaxRetryAttempts: 3,
			RetryDelayMS:     1000,
		},
		Revit: RevitConfig{
			Host: "localhost",
			Port: 48884,
		},
	}
}
