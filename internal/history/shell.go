// Package history records the external commands tools runs: appended to the
// user's zsh history so they can be re-run by hand, and logged to a local
// sqlite database for the history command.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AppendShell appends line to the shell history file at path.
func AppendShell(path, line string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open shell history %s: %w", path, err)
	}
	line = strings.ReplaceAll(line, "\n", "\\n")
	if _, err := fmt.Fprintf(f, "%s\n", line); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write shell history %s: %w", path, err)
	}
	return f.Close()
}
