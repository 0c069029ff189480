package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/corey/glossa/internal/app"
)

// isDBLockError returns true if the error chain contains a bbolt lock timeout.
// bbolt returns the string "timeout" when it cannot acquire the file lock
// within the configured deadline.
func isDBLockError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "timeout")
}

// diagnoseDBLock checks the run files and returns actionable guidance when
// a bbolt open fails due to lock contention.
func diagnoseDBLock(root string) string {
	paths := app.NewPaths(root)

	if pid, err := os.ReadFile(paths.PIDFile); err == nil {
		return fmt.Sprintf("database is locked by glossa serve (pid %s)\n"+
			"  → stop it first:  kill %s\n"+
			"  → or point annotate at files:  --words words.json --phrases phrases.json",
			strings.TrimSpace(string(pid)), strings.TrimSpace(string(pid)))
	}

	return "database is locked by another process\n" +
		"  → find the process:  ps aux | grep 'glossa'\n" +
		"  → kill it:           kill <PID>\n" +
		"  → then retry your command"
}
