package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, EnvStaging, cfg.Environment)
	assert.Equal(t, defaultCallbackURL, cfg.Active().CallbackURL)
	assert.Equal(t, defaultAuthURL, cfg.Active().AuthURL)
	assert.Equal(t, 30, cfg.Network.TimeoutSeconds)
	assert.Equal(t, 48884, cfg.Revit.Port)
	assert.NotEmpty(t, cfg.TokenDir)
	assert.NotEmpty(t, cfg.MappingFile)
}

func TestLoadConfig_ReadsYAML(t *testing.T) {
	dir := t.TempDir()
	yamlData := `
environment: prod
prod:
  clientId: prod-client
  clientSecret: prod-secret
  callbackUrl: http://localhost:9090/callback/
network:
  timeoutSeconds: 10
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(yamlData), 0644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, EnvProd, cfg.Environment)
	assert.Equal(t, "prod-client", cfg.Active().ClientID)
	assert.Equal(t, "http://localhost:9090/callback/", cfg.Active().CallbackURL)
	assert.Equal(t, 10, cfg.Network.TimeoutSeconds)
	// Untouched fields keep their defaults.
	assert.Equal(t, defaultAuthURL, cfg.Active().AuthURL)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("{not yaml"), 0644))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestLoadConfig_EnvOverridesWin(t *testing.T) {
	dir := t.TempDir()
	yamlData := `
staging:
  clientId: from-file
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(yamlData), 0644))

	t.Setenv("APS_STG_CLIENT_ID", "from-env")
	t.Setenv("APS_STG_CLIENT_SECRET", "env-secret")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "7")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Active().ClientID)
	assert.Equal(t, "env-secret", cfg.Active().ClientSecret)
	assert.Equal(t, 7, cfg.Network.TimeoutSeconds)
}

func TestConfig_MissingKeys(t *testing.T) {
	cfg := GetDefaultConfig()

	missing := cfg.MissingKeys()
	assert.Contains(t, missing, "APS_STG_CLIENT_ID")
	assert.Contains(t, missing, "APS_STG_CLIENT_SECRET")
	assert.NotContains(t, missing, "APS_STG_CALLBACK_URL_LOCAL", "callback URL has a default")

	cfg.Environment = EnvProd
	cfg.Prod.ClientID = "id"
	cfg.Prod.ClientSecret = "secret"
	assert.Empty(t, cfg.MissingKeys())
}

func TestConfig_OAuthFlowConfig(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Environment = EnvProd
	cfg.Prod.ClientID = "id"
	cfg.Prod.ClientSecret = "secret"

	flowCfg := cfg.OAuthFlowConfig()
	assert.Equal(t, "id", flowCfg.ClientID)
	assert.Equal(t, defaultTokenURL, flowCfg.TokenURL)
	assert.Equal(t, defaultCallbackURL, flowCfg.RedirectURI)
	assert.Equal(t, 3, flowCfg.MaxRetries)
	assert.Nil(t, flowCfg.Validate())
}
