// Package xbrowser opens URLs in the user's browser.
package xbrowser

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/pkg/browser"

	"oss.terrastruct.com/xos"
)

// Open opens url with $BROWSER if set, or the platform default otherwise.
// BROWSER=0 or BROWSER=none disables opening altogether.
func Open(ctx context.Context, env *xos.Env, url string) error {
	switch browserEnv := env.Getenv("BROWSER"); browserEnv {
	case "":
		return browser.OpenURL(url)
	case "0", "none", "false":
		return nil
	default:
		cmd := exec.CommandContext(ctx, "sh", "-c", browserEnv+` "$1"`, "--", url)
		out, err := cmd.CombinedOutput()
		if err != nil {
			return fmt.Errorf("failed to run %v (out: %q): %w", cmd.Args, out, err)
		}
		return nil
	}
}
