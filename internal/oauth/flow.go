package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"apsconnect/pkg/logging"
)

// FlowState is the orchestrator's position in the authenticate state
// machine.
type FlowState int

const (
	// StateIdle is the initial state of every attempt.
	StateIdle FlowState = iota

	// StateConfigValidated means required configuration passed validation.
	StateConfigValidated

	// StateAwaitingUserAuthorization means the listener is up and the
	// authorization URL has been handed to the browser.
	StateAwaitingUserAuthorization

	// StateAwaitingCallback means the attempt is blocked in WaitForResult.
	StateAwaitingCallback

	// StateExchangingCode means a code arrived and is being redeemed.
	StateExchangingCode

	// StateComplete is terminal for both success and failure.
	StateComplete
)

// String returns the string representation of the flow state.
func (s FlowState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConfigValidated:
		return "config_validated"
	case StateAwaitingUserAuthorization:
		return "awaiting_user_authorization"
	case StateAwaitingCallback:
		return "awaiting_callback"
	case StateExchangingCode:
		return "exchanging_code"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Default network parameters, matching the connector's historical behavior.
const (
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultMaxRetries   = 3
	DefaultRetryWaitMin = 1 * time.Second
)

// Config holds everything one flow attempt needs.
type Config struct {
	// ClientID and ClientSecret identify the client to APS.
	ClientID     string
	ClientSecret string

	// AuthURL is the browser-directed authorization endpoint.
	AuthURL string

	// TokenURL is the code-exchange endpoint.
	TokenURL string

	// RedirectURI is the local callback URI registered with the provider.
	// Its port determines where the listener binds.
	RedirectURI string

	// Scope is the space-separated scope string.
	Scope string

	// CallbackTimeout bounds the wait for the browser callback.
	// Defaults to DefaultCallbackTimeout.
	CallbackTimeout time.Duration

	// HTTPTimeout, MaxRetries and RetryWaitMin configure the token-endpoint
	// HTTP client.
	HTTPTimeout  time.Duration
	MaxRetries   int
	RetryWaitMin time.Duration
}

// Validate checks that all required fields are present and that endpoint
// URLs parse. It performs no I/O.
func (c *Config) Validate() *FlowError {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "client id")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "client secret")
	}
	if c.RedirectURI == "" {
		missing = append(missing, "redirect URI")
	}
	if c.AuthURL == "" {
		missing = append(missing, "authorization URL")
	}
	if c.TokenURL == "" {
		missing = append(missing, "token URL")
	}
	if len(missing) > 0 {
		return newFlowError(ConfigurationError,
			"missing required configuration: %s", strings.Join(missing, ", "))
	}

	if _, err := url.Parse(c.AuthURL); err != nil {
		return wrapFlowError(ConfigurationError, err, "invalid authorization URL")
	}
	if _, err := url.Parse(c.TokenURL); err != nil {
		return wrapFlowError(ConfigurationError, err, "invalid token URL")
	}

	return nil
}

// Orchestrator runs the full authenticate/check/clear workflow. One
// instance serves the whole process; each Authenticate call is one flow
// attempt owning its own CallbackServer for the attempt's lifetime.
type Orchestrator struct {
	cfg        Config
	store      *TokenStore
	httpClient *http.Client

	openBrowser func(string) error
	onAuthURL   func(string)
	now         func() time.Time

	mu    sync.Mutex
	state FlowState
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithHTTPClient replaces the token-endpoint HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Orchestrator) { o.httpClient = client }
}

// WithBrowserLauncher replaces the browser-launch function. Tests use this
// to drive the flow without a real browser.
func WithBrowserLauncher(launch func(url string) error) Option {
	return func(o *Orchestrator) { o.openBrowser = launch }
}

// WithAuthURLNotifier sets a hook invoked with the authorization URL right
// before the browser is launched, so the CLI can show it for manual use.
func WithAuthURLNotifier(notify func(url string)) Option {
	return func(o *Orchestrator) { o.onAuthURL = notify }
}

// WithClock replaces the time source, for expiry tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator creates an orchestrator over the given configuration and
// token store.
func NewOrchestrator(cfg Config, store *TokenStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:         cfg,
		store:       store,
		openBrowser: OpenBrowser,
		now:         time.Now,
		state:       StateIdle,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.httpClient == nil {
		o.httpClient = newRetryingClient(cfg)
	}

	return o
}

// newRetryingClient builds the token-endpoint HTTP client with bounded
// retries for transient network failures.
func newRetryingClient(cfg Config) *http.Client {
	rc := retryablehttp.NewClient()
	rc.Logger = nil
	rc.RetryMax = cfg.MaxRetries
	if rc.RetryMax <= 0 {
		rc.RetryMax = DefaultMaxRetries
	}
	rc.RetryWaitMin = cfg.RetryWaitMin
	if rc.RetryWaitMin <= 0 {
		rc.RetryWaitMin = DefaultRetryWaitMin
	}
	rc.HTTPClient.Timeout = cfg.HTTPTimeout
	if rc.HTTPClient.Timeout <= 0 {
		rc.HTTPClient.Timeout = DefaultHTTPTimeout
	}
	return rc.StandardClient()
}

// State returns the current flow state.
func (o *Orchestrator) State() FlowState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(next FlowState) {
	o.mu.Lock()
	prev := o.state
	o.state = next
	o.mu.Unlock()

	logging.Debug("OAuthFlow", "state transition %s -> %s", prev, next)
}

// Authenticate runs one flow attempt and returns the resulting record.
//
// The store is always consulted first: a cached record with positive
// remaining validity short-circuits to success without starting a listener
// or opening a browser. An expired record with a refresh token is refreshed
// silently before falling back to the interactive browser flow. Every
// failure is a *FlowError with a distinct Category.
func (o *Orchestrator) Authenticate(ctx context.Context) (*TokenRecord, error) {
	o.setState(StateIdle)

	if ferr := o.cfg.Validate(); ferr != nil {
		o.setState(StateComplete)
		return nil, ferr
	}
	o.setState(StateConfigValidated)

	cached, err := o.store.Current()
	if err != nil {
		logging.Warn("OAuthFlow", "failed to load cached token, continuing with interactive flow: %v", err)
	}
	if cached != nil && cached.Valid(o.now()) {
		logging.Debug("OAuthFlow", "using cached token, %s remaining", RemainingValidity(cached, o.now()))
		o.setState(StateComplete)
		return cached, nil
	}

	if cached != nil && cached.RefreshToken != "" {
		rec, ferr := o.refreshGrant(ctx, cached.RefreshToken)
		if ferr == nil {
			if err := o.store.Set(rec); err != nil {
				logging.Warn("OAuthFlow", "failed to persist refreshed token: %v", err)
			}
			o.setState(StateComplete)
			return rec, nil
		}
		logging.Debug("OAuthFlow", "token refresh failed, falling back to interactive flow: %v", ferr)
	}

	rec, ferr := o.interactiveFlow(ctx)
	o.setState(StateComplete)
	if ferr != nil {
		return nil, ferr
	}
	return rec, nil
}

// interactiveFlow runs the browser-mediated leg: listener up, browser out,
// wait, exchange. The listener is started strictly before the authorization
// URL is exposed so the user cannot complete consent before the callback
// endpoint exists.
func (o *Orchestrator) interactiveFlow(ctx context.Context) (*TokenRecord, *FlowError) {
	state, err := GenerateState()
	if err != nil {
		return nil, wrapFlowError(ConfigurationError, err, "failed to generate state parameter")
	}

	port := ExtractPort(o.cfg.RedirectURI)
	server := NewCallbackServer(port)
	if err := server.Start(); err != nil {
		var ferr *FlowError
		if fe, ok := err.(*FlowError); ok {
			ferr = fe
		} else {
			ferr = wrapFlowError(BindFailure, err, "failed to start callback listener")
		}
		return nil, ferr
	}
	// The server is torn down by WaitForResult on every path below; this
	// covers early returns before the wait is reached.
	defer server.Stop()

	authURL := o.authorizationURL(state)
	o.setState(StateAwaitingUserAuthorization)

	if o.onAuthURL != nil {
		o.onAuthURL(authURL)
	}
	if err := o.openBrowser(authURL); err != nil {
		logging.Warn("OAuthFlow", "failed to open browser, open the authorization URL manually: %v", err)
	}

	o.setState(StateAwaitingCallback)
	result := server.WaitForResult(ctx, o.cfg.CallbackTimeout)

	switch result.Kind {
	case ResultTimeout:
		return nil, newFlowError(TimeoutError, "%s", result.Message)
	case ResultError:
		return nil, newFlowError(CallbackError, "%s", result.Message)
	}

	if result.State != state {
		logging.Warn("OAuthFlow", "state mismatch in callback, rejecting authorization code")
		return nil, newFlowError(CallbackError, "state parameter mismatch in callback")
	}

	// The code is single-use: it is redeemed immediately and never cached.
	o.setState(StateExchangingCode)
	rec, ferr := o.exchangeCode(ctx, result.Code)
	if ferr != nil {
		return nil, ferr
	}

	if err := o.store.Set(rec); err != nil {
		// The token is still valid for this session.
		logging.Warn("OAuthFlow", "failed to persist token: %v", err)
	}

	return rec, nil
}

// CurrentToken returns the cached record, or (nil, nil) when absent.
func (o *Orchestrator) CurrentToken() (*TokenRecord, error) {
	return o.store.Current()
}

// ClearToken removes the cached record; clearing nothing is a success.
func (o *Orchestrator) ClearToken() error {
	return o.store.Clear()
}

// authorizationURL builds the browser-directed authorization URL.
func (o *Orchestrator) authorizationURL(state string) string {
	params := url.Values{
		"response_type": {"code"},
		"client_id":     {o.cfg.ClientID},
		"redirect_uri":  {o.cfg.RedirectURI},
		"scope":         {o.cfg.Scope},
		"state":         {state},
	}
	return o.cfg.AuthURL + "?" + params.Encode()
}

// exchangeCode redeems an authorization code at the token endpoint.
func (o *Orchestrator) exchangeCode(ctx context.Context, code string) (*TokenRecord, *FlowError) {
	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {o.cfg.RedirectURI},
	}
	return o.requestToken(ctx, form)
}

// refreshGrant redeems a refresh token for a new record.
func (o *Orchestrator) refreshGrant(ctx context.Context, refreshToken string) (*TokenRecord, *FlowError) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	return o.requestToken(ctx, form)
}

// tokenResponse is the provider's token-endpoint payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

// tokenErrorResponse is the provider's error payload on non-2xx responses.
type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// requestToken posts a grant to the token endpoint with HTTP Basic client
// credentials and parses the result into a TokenRecord. ExpiresAt is
// computed from the request time plus the provider-reported expires_in;
// an absolute expiry from the provider is never trusted.
func (o *Orchestrator) requestToken(ctx context.Context, form url.Values) (*TokenRecord, *FlowError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, wrapFlowError(TransportError, err, "failed to build token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(o.cfg.ClientID, o.cfg.ClientSecret)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, wrapFlowError(TransportError, err, "token request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapFlowError(TransportError, err, "failed to read token response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp tokenErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			msg := errResp.Error
			if errResp.ErrorDescription != "" {
				msg = fmt.Sprintf("%s: %s", errResp.Error, errResp.ErrorDescription)
			}
			return nil, newFlowError(ExchangeError,
				"token endpoint returned %d (%s)", resp.StatusCode, msg)
		}
		return nil, newFlowError(ExchangeError,
			"token endpoint returned %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, wrapFlowError(ExchangeError, err, "malformed token response")
	}
	if tr.AccessToken == "" {
		return nil, newFlowError(ExchangeError, "token response missing access_token")
	}

	now := o.now()
	rec := &TokenRecord{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		TokenType:    tr.TokenType,
		Scope:        tr.Scope,
		IssuedAt:     now,
	}
	if rec.TokenType == "" {
		rec.TokenType = "Bearer"
	}
	if tr.ExpiresIn > 0 {
		rec.ExpiresAt = now.Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	return rec, nil
}
