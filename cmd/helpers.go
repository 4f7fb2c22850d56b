package cmd

import (
	"fmt"
	"time"

	"apsconnect/internal/cli"
	"apsconnect/internal/config"
	"apsconnect/internal/mapping"
	"apsconnect/internal/oauth"
	"apsconnect/internal/revit"
)

// loadConfig loads the configuration from --config-path or the default
// user config directory.
func loadConfig() (config.Config, error) {
	path := rootConfigPath
	if path == "" {
		path = config.GetDefaultConfigPathOrPanic()
	}
	return config.LoadConfig(path)
}

// buildOrchestrator assembles the OAuth flow orchestrator from the loaded
// configuration. Missing credentials surface as an AuthRequiredError so
// the root command can map them to the right exit code. A zero
// callbackTimeout falls back to the flow default.
func buildOrchestrator(cfg config.Config, callbackTimeout time.Duration, opts ...oauth.Option) (*oauth.Orchestrator, error) {
	if missing := cfg.MissingKeys(); len(missing) > 0 {
		return nil, &cli.AuthRequiredError{MissingKeys: missing}
	}

	storage, err := oauth.NewFileStorage(cfg.TokenDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open token storage: %w", err)
	}

	flowCfg := cfg.OAuthFlowConfig()
	flowCfg.CallbackTimeout = callbackTimeout

	return oauth.NewOrchestrator(flowCfg, oauth.NewTokenStore(storage), opts...), nil
}

// openTokenStore opens the configured token store directly, for commands
// that inspect or clear the cache without needing APS credentials.
func openTokenStore(cfg config.Config) (*oauth.TokenStore, error) {
	storage, err := oauth.NewFileStorage(cfg.TokenDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open token storage: %w", err)
	}
	return oauth.NewTokenStore(storage), nil
}

// openMappingStore opens the configured origin/target mapping store.
func openMappingStore(cfg config.Config) (*mapping.Store, error) {
	return mapping.NewStore(cfg.MappingFile)
}

// newRevitClient builds the Routes API client from the loaded configuration.
func newRevitClient(cfg config.Config) *revit.Client {
	flowCfg := cfg.OAuthFlowConfig()
	return revit.NewClient(cfg.Revit.Host, cfg.Revit.Port,
		flowCfg.HTTPTimeout, flowCfg.MaxRetries, flowCfg.RetryWaitMin)
}
