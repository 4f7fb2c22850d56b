package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"apsconnect/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/apsconnect"
	configFileName = "config.yaml"
)

// GetDefaultConfigPathOrPanic returns the user configuration directory.
func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}

	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads configuration from the specified directory: defaults
// first, then config.yaml if present, then APS_* environment variables,
// which always win.
func LoadConfig(configPath string) (Config, error) {
	config := GetDefaultConfig()

	configFilePath := filepath.Join(configPath, configFileName)
	data, err := os.ReadFile(configFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
	case err != nil:
		return Config{}, err
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
		}
		logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	}

	applyEnvOverrides(&config)

	if config.TokenDir == "" {
		config.TokenDir = filepath.Join(configPath, "tokens")
	}
	if config.MappingFile == "" {
		config.MappingFile = filepath.Join(configPath, "origin_target_mapping.json")
	}

	return config, nil
}

// applyEnvOverrides layers environment variables over the loaded config.
// The key sets mirror the connector's .env contract: DX_ENVIRONMENT picks
// the environment, APS_* configures prod and APS_STG_* configures staging.
func applyEnvOverrides(c *Config) {
	setString(&c.Environment, "DX_ENVIRONMENT")

	applyOAuthEnv(&c.Prod, "APS_")
	applyOAuthEnv(&c.Staging, "APS_STG_")

	setInt(&c.Network.TimeoutSeconds, "HTTP_TIMEOUT_SECONDS")
	setInt(&c.Network.MaxRetryAttempts, "MAX_RETRY_ATTEMPTS")
	setInt(&c.Network.RetryDelayMS, "RETRY_DELAY_MS")

	setString(&c.Revit.Host, "REVIT_HOST")
	setInt(&c.Revit.Port, "REVIT_PORT")
}

func applyOAuthEnv(s *OAuthSettings, prefix string) {
	setString(&s.ClientID, prefix+"CLIENT_ID")
	setString(&s.ClientSecret, prefix+"CLIENT_SECRET")
	setString(&s.CallbackURL, prefix+"CALLBACK_URL_LOCAL")
	setString(&s.AuthURL, prefix+"AUTH_URL")
	setString(&s.TokenURL, prefix+"TOKEN_URL")
	setString(&s.Scopes, prefix+"SCOPES")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
