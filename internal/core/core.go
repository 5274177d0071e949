package core

import "os"

const (
	// PermOwnerRW is used for settings, state and config files.
	PermOwnerRW os.FileMode = 0o600

	// PermDir is used for directories created on demand (.vscode, .venvsync).
	PermDir os.FileMode = 0o755
)

// Marshaler encodes a value for writing to disk.
type Marshaler interface {
	Marshal(v any) ([]byte, error)
}
