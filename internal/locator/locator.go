package locator

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/indaco/venvsync/internal/core"
)

// Locator resolves the nearest virtual environment for a directory.
type Locator struct {
	fs       core.FileSystem
	platform Platform
}

// New creates a Locator for the current platform.
func New(fs core.FileSystem) *Locator {
	return NewWithPlatform(fs, CurrentPlatform())
}

// NewWithPlatform creates a Locator with an explicit venv layout.
func NewWithPlatform(fs core.FileSystem, platform Platform) *Locator {
	return &Locator{fs: fs, platform: platform}
}

// Locate walks from cfg.StartDir towards the filesystem root. At each level
// the candidates are tried in order and the first one holding an interpreter
// wins; ancestors are only visited when nothing matched. The walk stops with
// ErrNotFound at the root, or when the next directory would leave
// cfg.Boundary.
func (l *Locator) Locate(ctx context.Context, cfg SearchConfig) (Result, error) {
	if strings.TrimSpace(cfg.StartDir) == "" {
		return Result{}, ErrNotFound
	}

	candidates := cfg.Candidates
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}

	dir := filepath.Clean(cfg.StartDir)
	boundary := ""
	if cfg.Boundary != "" {
		boundary = filepath.Clean(cfg.Boundary)
		if !Within(boundary, dir) {
			return Result{}, ErrNotFound
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		for _, name := range candidates {
			venv := filepath.Join(dir, name)
			if interpreter, ok := l.findInterpreter(ctx, venv); ok {
				return Result{
					Interpreter: interpreter,
					VenvDir:     venv,
					ProjectRoot: dir,
				}, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Result{}, ErrNotFound
		}
		if boundary != "" && !Within(boundary, parent) {
			return Result{}, ErrNotFound
		}
		dir = parent
	}
}

// findInterpreter returns the first interpreter path present in venv.
// Presence is enough: permissions and symlink targets are not checked.
func (l *Locator) findInterpreter(ctx context.Context, venv string) (string, bool) {
	for _, rel := range l.platform.Interpreters {
		path := filepath.Join(venv, filepath.FromSlash(rel))
		info, err := l.fs.Stat(ctx, path)
		if err != nil || info.IsDir() {
			continue
		}
		return path, true
	}
	return "", false
}

// SitePackages returns the package directory of venv. When several Python
// versions are present the lexically highest one is used.
func (l *Locator) SitePackages(ctx context.Context, venv string) (string, error) {
	for _, pattern := range l.platform.SitePackages {
		matches, err := l.fs.Glob(ctx, filepath.Join(venv, filepath.FromSlash(pattern)))
		if err != nil {
			return "", fmt.Errorf("failed to search %q: %w", venv, err)
		}
		slices.Sort(matches)
		for i := len(matches) - 1; i >= 0; i-- {
			info, err := l.fs.Stat(ctx, matches[i])
			if err == nil && info.IsDir() {
				return matches[i], nil
			}
		}
	}
	return "", fmt.Errorf("%w in %q", ErrNoSitePackages, venv)
}

// Within reports whether path is root or one of its descendants. Both paths
// are expected to be clean and of the same kind (absolute or relative).
func Within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// StartDir returns the directory a search for path should begin in: path
// itself when it is a directory, otherwise its parent. It returns "" when
// the path has no enclosing directory, which is the case for empty and
// relative (untitled) paths.
func StartDir(ctx context.Context, fs core.FileSystem, path string) string {
	path = strings.TrimSpace(path)
	if path == "" || !filepath.IsAbs(path) {
		return ""
	}
	path = filepath.Clean(path)
	if info, err := fs.Stat(ctx, path); err == nil && info.IsDir() {
		return path
	}
	return filepath.Dir(path)
}
