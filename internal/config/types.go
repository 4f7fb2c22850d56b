package config

import (
	"time"

	"apsconnect/internal/oauth"
)

// Environment selects which APS application credentials are active.
const (
	EnvProd    = "prod"
	EnvStaging = "stg"
)

// OAuthSettings holds the per-environment APS OAuth application settings.
type OAuthSettings struct {
	// ClientID and ClientSecret identify the APS application.
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`

	// CallbackURL is the loopback redirect URI registered with APS. Its
	// port determines where the local callback listener binds.
	CallbackURL string `yaml:"callbackUrl"`

	// AuthURL and TokenURL are the APS authentication endpoints.
	AuthURL  string `yaml:"authUrl"`
	TokenURL string `yaml:"tokenUrl"`

	// Scopes is the space-separated OAuth scope string.
	Scopes string `yaml:"scopes"`
}

// NetworkConfig tunes outbound HTTP behavior.
type NetworkConfig struct {
	TimeoutSeconds   int `yaml:"timeoutSeconds"`
	MaxRetryAttempts int `yaml:"maxRetryAttempts"`
	RetryDelayMS     int `yaml:"retryDelayMs"`
}

// RevitConfig locates the local modeling Routes API.
type RevitConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Config is the full apsconnect configuration.
type Config struct {
	// Environment is "prod" or "stg" and selects the active OAuth settings.
	Environment string `yaml:"environment"`

	Prod    OAuthSettings `yaml:"prod"`
	Staging OAuthSettings `yaml:"staging"`

	Network NetworkConfig `yaml:"network"`
	Revit   RevitConfig   `yaml:"revit"`

	// TokenDir is where the cached token record lives.
	TokenDir string `yaml:"tokenDir"`

	// MappingFile is the origin/target element-ID mapping store.
	MappingFile string `yaml:"mappingFile"`
}

// Active returns the OAuth settings for the configured environment.
// Anything other than "prod" selects staging, matching the connector's
// historical default.
func (c *Config) Active() OAuthSettings {
	if c.Environment == EnvProd {
		return c.Prod
	}
	return c.Staging
}

// MissingKeys returns the required configuration keys that are absent for
// the active environment, in their environment-variable spelling so the
// message tells the user exactly what to set.
func (c *Config) MissingKeys() []string {
	s := c.Active()
	prefix := "APS_"
	if c.Environment != EnvProd {
		prefix = "APS_STG_"
	}

	var missing []string
	if s.ClientID == "" {
		missing = append(missing, prefix+"CLIENT_ID")
	}
	if s.ClientSecret == "" {
		missing = append(missing, prefix+"CLIENT_SECRET")
	}
	if s.CallbackURL == "" {
		missing = append(missing, prefix+"CALLBACK_URL_LOCAL")
	}
	return missing
}

// OAuthFlowConfig maps the active settings onto the flow orchestrator's
// configuration.
func (c *Config) OAuthFlowConfig() oauth.Config {
	s := c.Active()
	return oauth.Config{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		AuthURL:      s.AuthURL,
		TokenURL:     s.TokenURL,
		RedirectURI:  s.CallbackURL,
		Scope:        s.Scopes,
		HTTPTimeout:  time.Duration(c.Network.TimeoutSeconds) * time.Second,
		MaxRetries:   c.Network.MaxRetryAttempts,
		RetryWaitMin: time.Duration(c.Network.RetryDelayMS) * time.Millisecond,
	}
}
