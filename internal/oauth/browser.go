package oauth

import (
	"fmt"
	"os/exec"
	"runtime"

	"apsconnect/pkg/logging"
)

// browserCommand returns the platform launcher invocation for url. Platforms
// without a known launcher get an error; the flow then relies on the
// authorization URL the CLI already printed.
func browserCommand(goos, url string) (*exec.Cmd, error) {
	switch goos {
	case "linux":
		return exec.Command("xdg-open", url), nil
	case "darwin":
		return exec.Command("open", url), nil
	case "windows":
		return exec.Command("cmd", "/c", "start", url), nil
	}
	return nil, fmt.Errorf("no known browser launcher for %s", goos)
}

// OpenBrowser hands url to the platform's default browser. The launcher
// process is started and left to run; the flow never waits on it.
func OpenBrowser(url string) error {
	cmd, err := browserCommand(runtime.GOOS, url)
	if err != nil {
		return err
	}

	logging.Debug("OAuthFlow", "launching browser via %s", cmd.Args[0])
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	return nil
}
