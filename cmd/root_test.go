package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apsconnect/internal/cli"
	"apsconnect/internal/oauth"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "auth required",
			err:      &cli.AuthRequiredError{MissingKeys: []string{"APS_STG_CLIENT_ID"}},
			expected: ExitCodeAuthRequired,
		},
		{
			name:     "auth expired",
			err:      &cli.AuthExpiredError{},
			expected: ExitCodeAuthRequired,
		},
		{
			name:     "auth failed",
			err:      &cli.AuthFailedError{Reason: errors.New("callback timeout")},
			expected: ExitCodeAuthFailed,
		},
		{
			name:     "wrapped auth failed",
			err:      fmt.Errorf("login: %w", &cli.AuthFailedError{Reason: errors.New("boom")}),
			expected: ExitCodeAuthFailed,
		},
		{
			name:     "generic error",
			err:      errors.New("something else"),
			expected: ExitCodeError,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, getExitCode(test.err))
		})
	}
}

func TestVersionCmd(t *testing.T) {
	SetVersion("1.2.3")
	defer SetVersion("")

	var buf bytes.Buffer
	cmd := newVersionCmd()
	cmd.SetOut(&buf)
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "apsconnect version 1.2.3\n", buf.String())
}

func TestAuthStatus_NoToken(t *testing.T) {
	prev := rootConfigPath
	rootConfigPath = t.TempDir()
	defer func() { rootConfigPath = prev }()

	var buf bytes.Buffer
	cmd := authStatusCmd
	cmd.SetOut(&buf)
	require.NoError(t, runAuthStatus(cmd, nil))

	assert.Contains(t, buf.String(), "Not authenticated")
}

// seedToken writes a token record into the config path's token directory.
func seedToken(t *testing.T, configPath string, rec *oauth.TokenRecord) {
	t.Helper()
	storage, err := oauth.NewFileStorage(filepath.Join(configPath, "tokens"))
	require.NoError(t, err)
	require.NoError(t, storage.Save(rec))
}

func TestAuthStatus_ExpiredToken(t *testing.T) {
	prev := rootConfigPath
	rootConfigPath = t.TempDir()
	defer func() { rootConfigPath = prev }()

	seedToken(t, rootConfigPath, &oauth.TokenRecord{
		AccessToken: "stale",
		TokenType:   "Bearer",
		IssuedAt:    time.Now().Add(-2 * time.Hour),
		ExpiresAt:   time.Now().Add(-time.Hour),
	})

	var buf bytes.Buffer
	cmd := authStatusCmd
	cmd.SetOut(&buf)
	err := runAuthStatus(cmd, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, &cli.AuthExpiredError{}))
	assert.Equal(t, ExitCodeAuthRequired, getExitCode(err))
	assert.Contains(t, buf.String(), "Expired")
}

func TestAuthStatus_ExpiredButRefreshable(t *testing.T) {
	prev := rootConfigPath
	rootConfigPath = t.TempDir()
	defer func() { rootConfigPath = prev }()

	seedToken(t, rootConfigPath, &oauth.TokenRecord{
		AccessToken:  "stale",
		RefreshToken: "still-good",
		TokenType:    "Bearer",
		IssuedAt:     time.Now().Add(-2 * time.Hour),
		ExpiresAt:    time.Now().Add(-time.Hour),
	})

	var buf bytes.Buffer
	cmd := authStatusCmd
	cmd.SetOut(&buf)

	// A refresh token means the next login is silent; status stays a success.
	require.NoError(t, runAuthStatus(cmd, nil))
	assert.Contains(t, buf.String(), "Expired")
}

func TestAuthLogout_NoTokenIsSuccess(t *testing.T) {
	prev := rootConfigPath
	rootConfigPath = t.TempDir()
	defer func() { rootConfigPath = prev }()

	var buf bytes.Buffer
	cmd := authLogoutCmd
	cmd.SetOut(&buf)
	require.NoError(t, runAuthLogout(cmd, nil))

	assert.Contains(t, buf.String(), "Logged out")
}

func TestBuildOrchestrator_MissingCredentials(t *testing.T) {
	prev := rootConfigPath
	rootConfigPath = t.TempDir()
	defer func() { rootConfigPath = prev }()

	cfg, err := loadConfig()
	require.NoError(t, err)

	_, err = buildOrchestrator(cfg, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, &cli.AuthRequiredError{}))
	assert.Equal(t, ExitCodeAuthRequired, getExitCode(err))
}
