package locator

import (
	"errors"
	"runtime"
)

var (
	// ErrNotFound is returned when no candidate folder with an interpreter
	// exists between the start directory and the boundary (or the root).
	ErrNotFound = errors.New("no virtual environment found")

	// ErrNoSitePackages is returned when a venv has no package directory.
	ErrNoSitePackages = errors.New("site-packages directory not found")
)

// DefaultCandidates is used when no folder names are configured.
var DefaultCandidates = []string{".venv"}

// SearchConfig describes one upward search.
type SearchConfig struct {
	// StartDir is the directory of the active file.
	StartDir string

	// Candidates are venv folder names tested in order at every level.
	Candidates []string

	// Boundary, when set, is the directory the walk must not leave.
	Boundary string
}

// Result is one resolved virtual environment.
type Result struct {
	// Interpreter is the absolute path of the python executable.
	Interpreter string `json:"interpreter"`

	// VenvDir is the virtual environment directory.
	VenvDir string `json:"venvDir"`

	// ProjectRoot is the directory the venv folder was found in.
	ProjectRoot string `json:"projectRoot"`
}

// Platform lists where interpreters and packages live inside a venv.
type Platform struct {
	// Interpreters are venv-relative executable paths, first match wins.
	Interpreters []string

	// SitePackages are venv-relative glob patterns for the package dir.
	SitePackages []string
}

// POSIX is the layout created by `python -m venv` on Linux and macOS.
var POSIX = Platform{
	Interpreters: []string{"bin/python", "bin/python3"},
	SitePackages: []string{"lib/python*/site-packages", "lib64/python*/site-packages"},
}

// Windows is the layout created by `python -m venv` on Windows.
var Windows = Platform{
	Interpreters: []string{"Scripts/python.exe", "Scripts/python3.exe", "python.exe"},
	SitePackages: []string{"Lib/site-packages"},
}

// CurrentPlatform returns the layout for the running OS.
func CurrentPlatform() Platform {
	if runtime.GOOS == "windows" {
		return Windows
	}
	return POSIX
}
