package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(redirectURI, tokenURL string) Config {
	return Config{
		ClientID:        "client-id",
		ClientSecret:    "client-secret",
		AuthURL:         "https://provider.example/authorize",
		TokenURL:        tokenURL,
		RedirectURI:     redirectURI,
		Scope:           "data:read data:write",
		CallbackTimeout: 5 * time.Second,
	}
}

// plainClient avoids retry backoff in failure-path tests.
func plainClient() *http.Client {
	return &http.Client{Timeout: 5 * time.Second}
}

// tokenEndpoint serves a canned successful token response and records the
// exchange request.
func tokenEndpoint(t *testing.T, expiresIn int) (*httptest.Server, *url.Values, *http.Request) {
	t.Helper()
	var gotForm url.Values
	var gotReq http.Request

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		gotReq = *r

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "new-access-token",
			"token_type":    "Bearer",
			"expires_in":    expiresIn,
			"refresh_token": "new-refresh-token",
			"scope":         "data:read data:write",
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &gotForm, &gotReq
}

// driveCallback returns a browser launcher that, instead of opening a
// browser, immediately issues the provider redirect against the local
// listener using the redirect_uri and state from the authorization URL.
func driveCallback(t *testing.T, query func(state string) string) func(string) error {
	t.Helper()
	return func(authURL string) error {
		u, err := url.Parse(authURL)
		if err != nil {
			return err
		}
		redirect := u.Query().Get("redirect_uri")
		state := u.Query().Get("state")

		go func() {
			resp, err := http.Get(redirect + query(state))
			if err != nil {
				t.Logf("callback request failed: %v", err)
				return
			}
			resp.Body.Close()
		}()
		return nil
	}
}

func TestOrchestrator_ConfigValidation(t *testing.T) {
	store := NewTokenStore(NewMemoryStorage())
	cfg := Config{ClientID: "only-a-client-id"}

	browserLaunched := false
	o := NewOrchestrator(cfg, store, WithBrowserLauncher(func(string) error {
		browserLaunched = true
		return nil
	}))

	_, err := o.Authenticate(context.Background())
	require.Error(t, err)

	var ferr *FlowError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, ConfigurationError, ferr.Category)
	assert.False(t, browserLaunched, "validation failure must not launch a browser")
	assert.Equal(t, StateComplete, o.State())
}

func TestOrchestrator_CachedTokenShortCircuits(t *testing.T) {
	port := freePort(t)
	redirectURI := fmt.Sprintf("http://localhost:%d/callback/", port)

	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(&TokenRecord{
		AccessToken: "cached-token",
		TokenType:   "Bearer",
		IssuedAt:    time.Now(),
		ExpiresAt:   time.Now().Add(2 * time.Hour),
	}))
	store := NewTokenStore(storage)

	o := NewOrchestrator(testConfig(redirectURI, "https://provider.example/token"), store,
		WithBrowserLauncher(func(string) error {
			t.Fatal("browser must not be launched when a valid token is cached")
			return nil
		}),
	)

	rec, err := o.Authenticate(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "cached-token", rec.AccessToken)
	assert.True(t, IsPortAvailable(port), "no listener may be started for a cached token")
}

func TestOrchestrator_InteractiveFlow(t *testing.T) {
	port := freePort(t)
	redirectURI := fmt.Sprintf("http://localhost:%d/callback/", port)

	tokenSrv, gotForm, gotReq := tokenEndpoint(t, 3600)

	storage := NewMemoryStorage()
	store := NewTokenStore(storage)

	var notifiedURL string
	o := NewOrchestrator(testConfig(redirectURI, tokenSrv.URL), store,
		WithHTTPClient(plainClient()),
		WithAuthURLNotifier(func(u string) { notifiedURL = u }),
		WithBrowserLauncher(driveCallback(t, func(state string) string {
			return "?code=auth-code-123&state=" + url.QueryEscape(state)
		})),
	)

	rec, err := o.Authenticate(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, "new-access-token", rec.AccessToken)
	assert.Equal(t, "new-refresh-token", rec.RefreshToken)
	assert.Equal(t, "Bearer", rec.TokenType)
	assert.True(t, rec.ExpiresAt.After(rec.IssuedAt), "expiry must be computed after issuance")
	assert.InDelta(t, time.Hour.Seconds(), rec.ExpiresAt.Sub(rec.IssuedAt).Seconds(), 1)

	// The exchange must carry the single-use code and Basic client auth.
	assert.Equal(t, "authorization_code", gotForm.Get("grant_type"))
	assert.Equal(t, "auth-code-123", gotForm.Get("code"))
	assert.Equal(t, redirectURI, gotForm.Get("redirect_uri"))
	user, pass, ok := gotReq.BasicAuth()
	require.True(t, ok, "token request must use HTTP Basic client credentials")
	assert.Equal(t, "client-id", user)
	assert.Equal(t, "client-secret", pass)

	// Authorization URL carries the standard parameters.
	u, err := url.Parse(notifiedURL)
	require.NoError(t, err)
	assert.Equal(t, "code", u.Query().Get("response_type"))
	assert.Equal(t, "client-id", u.Query().Get("client_id"))
	assert.Equal(t, redirectURI, u.Query().Get("redirect_uri"))
	assert.NotEmpty(t, u.Query().Get("state"))

	// The record was stored and the listener is gone.
	stored, err := storage.Load()
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "new-access-token", stored.AccessToken)
	assert.True(t, IsPortAvailable(port))
	assert.Equal(t, StateComplete, o.State())
}

func TestOrchestrator_CallbackError(t *testing.T) {
	port := freePort(t)
	redirectURI := fmt.Sprintf("http://localhost:%d/callback/", port)

	o := NewOrchestrator(testConfig(redirectURI, "https://provider.example/token"),
		NewTokenStore(NewMemoryStorage()),
		WithHTTPClient(plainClient()),
		WithBrowserLauncher(driveCallback(t, func(string) string {
			return "?error=access_denied&error_description=user+cancelled"
		})),
	)

	_, err := o.Authenticate(context.Background())
	var ferr *FlowError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, CallbackError, ferr.Category)
	assert.Contains(t, ferr.Message, "access_denied: user cancelled")
	assert.True(t, IsPortAvailable(port))
}

func TestOrchestrator_StateMismatchRejected(t *testing.T) {
	port := freePort(t)
	redirectURI := fmt.Sprintf("http://localhost:%d/callback/", port)

	storage := NewMemoryStorage()
	o := NewOrchestrator(testConfig(redirectURI, "https://provider.example/token"),
		NewTokenStore(storage),
		WithHTTPClient(plainClient()),
		WithBrowserLauncher(driveCallback(t, func(string) string {
			return "?code=stolen-code&state=forged-state"
		})),
	)

	_, err := o.Authenticate(context.Background())
	var ferr *FlowError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, CallbackError, ferr.Category)
	assert.Contains(t, ferr.Message, "state")

	stored, _ := storage.Load()
	assert.Nil(t, stored, "nothing may be stored after a rejected callback")
}

func TestOrchestrator_Timeout(t *testing.T) {
	port := freePort(t)
	redirectURI := fmt.Sprintf("http://localhost:%d/callback/", port)

	cfg := testConfig(redirectURI, "https://provider.example/token")
	cfg.CallbackTimeout = 1 * time.Second

	o := NewOrchestrator(cfg, NewTokenStore(NewMemoryStorage()),
		WithHTTPClient(plainClient()),
		WithBrowserLauncher(func(string) error { return nil }),
	)

	start := time.Now()
	_, err := o.Authenticate(context.Background())
	elapsed := time.Since(start)

	var ferr *FlowError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, TimeoutError, ferr.Category)
	assert.Less(t, elapsed, 10*time.Second, "wait must be bounded by the configured timeout")
	assert.True(t, IsPortAvailable(port), "port must be released after timeout")
}

func TestOrchestrator_BindFailure(t *testing.T) {
	server := startServer(t) // occupies its port
	redirectURI := fmt.Sprintf("http://localhost:%d/callback/", server.Port())

	o := NewOrchestrator(testConfig(redirectURI, "https://provider.example/token"),
		NewTokenStore(NewMemoryStorage()),
		WithHTTPClient(plainClient()),
		WithBrowserLauncher(func(string) error {
			t.Fatal("browser must not be launched when the listener cannot bind")
			return nil
		}),
	)

	_, err := o.Authenticate(context.Background())
	var ferr *FlowError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, BindFailure, ferr.Category)
}

func TestOrchestrator_ExchangeError(t *testing.T) {
	port := freePort(t)
	redirectURI := fmt.Sprintf("http://localhost:%d/callback/", port)

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":             "invalid_grant",
			"error_description": "code expired",
		})
	}))
	defer tokenSrv.Close()

	storage := NewMemoryStorage()
	o := NewOrchestrator(testConfig(redirectURI, tokenSrv.URL), NewTokenStore(storage),
		WithHTTPClient(plainClient()),
		WithBrowserLauncher(driveCallback(t, func(state string) string {
			return "?code=expired-code&state=" + url.QueryEscape(state)
		})),
	)

	_, err := o.Authenticate(context.Background())
	var ferr *FlowError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, ExchangeError, ferr.Category)
	assert.Contains(t, ferr.Message, "invalid_grant: code expired")

	stored, _ := storage.Load()
	assert.Nil(t, stored, "nothing may be stored on exchange failure")
}

func TestOrchestrator_TransportError(t *testing.T) {
	port := freePort(t)
	redirectURI := fmt.Sprintf("http://localhost:%d/callback/", port)

	// A token endpoint that is not listening.
	deadPort := freePort(t)
	tokenURL := fmt.Sprintf("http://127.0.0.1:%d/token", deadPort)

	o := NewOrchestrator(testConfig(redirectURI, tokenURL), NewTokenStore(NewMemoryStorage()),
		WithHTTPClient(plainClient()),
		WithBrowserLauncher(driveCallback(t, func(state string) string {
			return "?code=some-code&state=" + url.QueryEscape(state)
		})),
	)

	_, err := o.Authenticate(context.Background())
	var ferr *FlowError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, TransportError, ferr.Category)
}

func TestOrchestrator_RefreshGrant(t *testing.T) {
	tokenSrv, gotForm, _ := tokenEndpoint(t, 3600)

	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(&TokenRecord{
		AccessToken:  "stale-token",
		RefreshToken: "refresh-me",
		TokenType:    "Bearer",
		IssuedAt:     time.Now().Add(-2 * time.Hour),
		ExpiresAt:    time.Now().Add(-1 * time.Hour),
	}))

	port := freePort(t)
	redirectURI := fmt.Sprintf("http://localhost:%d/callback/", port)

	o := NewOrchestrator(testConfig(redirectURI, tokenSrv.URL), NewTokenStore(storage),
		WithHTTPClient(plainClient()),
		WithBrowserLauncher(func(string) error {
			t.Fatal("refresh must not require a browser")
			return nil
		}),
	)

	rec, err := o.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new-access-token", rec.AccessToken)
	assert.Equal(t, "refresh_token", gotForm.Get("grant_type"))
	assert.Equal(t, "refresh-me", gotForm.Get("refresh_token"))
	assert.True(t, IsPortAvailable(port), "refresh path starts no listener")
}

func TestOrchestrator_ClearToken(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(&TokenRecord{AccessToken: "tok"}))

	o := NewOrchestrator(Config{}, NewTokenStore(storage))

	require.NoError(t, o.ClearToken())

	rec, err := o.CurrentToken()
	require.NoError(t, err)
	assert.Nil(t, rec, "token must be absent immediately after clear")

	require.NoError(t, o.ClearToken(), "clearing an empty store is a success")
}

func TestFlowError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	ferr := wrapFlowError(TransportError, cause, "token request failed")

	assert.ErrorIs(t, ferr, cause)
	assert.Contains(t, ferr.Error(), "transport error")
}
