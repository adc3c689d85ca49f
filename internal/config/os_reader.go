package config

import (
	"context"
	"os"
)

// OSFileReader reads files from the local filesystem. It is the
// default FileReader used by the CLI (cmd/compile.go, cmd/inspect.go).
type OSFileReader struct{}

// ReadFile reads the file at path, ignoring ctx (os.ReadFile has no
// cancellation support of its own).
func (OSFileReader) ReadFile(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}
