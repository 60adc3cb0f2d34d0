package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeFile writes content to name inside a fresh temp directory and returns the path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// writeTrace writes one record per line.
func writeTrace(t *testing.T, records ...string) string {
	t.Helper()
	return writeFile(t, "trace.txt", strings.Join(records, "\n")+"\n")
}
