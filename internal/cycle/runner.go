package cycle

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/indaco/venvsync/internal/config"
	"github.com/indaco/venvsync/internal/core"
	"github.com/indaco/venvsync/internal/locator"
	"github.com/indaco/venvsync/internal/logging"
	"github.com/indaco/venvsync/internal/reconcile"
	"github.com/indaco/venvsync/internal/settings"
	"github.com/indaco/venvsync/internal/state"
)

// Keys written inside every analysis namespace.
const (
	KeyInclude          = "include"
	KeyExclude          = "exclude"
	KeyExtraPaths       = "extraPaths"
	KeyDiagnosticMode   = "diagnosticMode"
	KeyTypeCheckingMode = "typeCheckingMode"
)

// typeCheckingOff is the only existing typeCheckingMode value replaced.
const typeCheckingOff = "off"

// Runner performs cycles for one workspace. It is not safe for concurrent
// use; callers serialize Run and Release.
type Runner struct {
	fs        core.FileSystem
	cfg       *config.Config
	workspace string
	log       *logging.Channel
	locator   *locator.Locator
	settings  settings.Store
	state     *state.Store
}

// Option customises a Runner.
type Option func(*Runner)

// WithLocator replaces the platform default locator.
func WithLocator(l *locator.Locator) Option {
	return func(r *Runner) { r.locator = l }
}

// WithSettings replaces the file-backed settings store.
func WithSettings(s settings.Store) Option {
	return func(r *Runner) { r.settings = s }
}

// New creates a Runner for workspace using cfg.
func New(fs core.FileSystem, cfg *config.Config, workspace string, log *logging.Channel, opts ...Option) *Runner {
	if log == nil {
		log = logging.Discard()
	}
	r := &Runner{
		fs:        fs,
		cfg:       cfg,
		workspace: filepath.Clean(workspace),
		log:       log,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.locator == nil {
		r.locator = locator.New(fs)
	}
	if r.settings == nil {
		r.settings = settings.Open(fs, cfg.SettingsFile(r.workspace))
	}
	r.state = state.NewStore(fs, cfg.StatePath(r.workspace))
	return r
}

// Locate resolves the venv for activeFile without writing anything.
func (r *Runner) Locate(ctx context.Context, activeFile string) (locator.Result, error) {
	search := locator.SearchConfig{
		StartDir:   locator.StartDir(ctx, r.fs, activeFile),
		Candidates: r.cfg.VenvFolders,
	}
	if r.cfg.Restricted() {
		search.Boundary = r.workspace
	}
	return r.locator.Locate(ctx, search)
}

// Run performs one cycle for activeFile. A missing venv is reported in the
// Report, not as an error; per-step failures are logged and recorded in
// the Report. The returned error is only set when ctx is done.
func (r *Runner) Run(ctx context.Context, activeFile string) (*Report, error) {
	report := &Report{File: activeFile}

	venv, err := r.Locate(ctx, activeFile)
	if err != nil {
		if errors.Is(err, locator.ErrNotFound) {
			r.log.Info("no virtual environment found", "file", activeFile)
			return report, nil
		}
		return report, err
	}
	report.Found = true
	report.Venv = venv
	r.log.Info("virtual environment found",
		"interpreter", venv.Interpreter,
		"projectRoot", venv.ProjectRoot)

	if err := r.settings.Load(ctx); err != nil {
		r.log.Error("failed to load settings", "path", r.settings.Path(), "error", err)
		report.InterpreterErr = err
		if r.cfg.AnalysisEnabled() {
			for _, ns := range r.cfg.Analysis.Namespaces {
				report.Namespaces = append(report.Namespaces, NamespaceReport{Namespace: ns, Err: err})
			}
			r.logSummary(report)
		}
		return report, nil
	}

	report.InterpreterChanged, report.InterpreterErr = r.applyInterpreter(ctx, venv.Interpreter)

	if !r.cfg.AnalysisEnabled() {
		return report, nil
	}

	desired := state.Managed{
		Include: []string{r.relative(venv.ProjectRoot)},
		Exclude: slices.Clone(r.cfg.Analysis.Exclude),
	}
	site, err := r.locator.SitePackages(ctx, venv.VenvDir)
	if err != nil {
		report.SitePackagesMissing = true
		r.log.Warn("site-packages not found, extra paths left unchanged", "venv", venv.VenvDir, "error", err)
	} else {
		desired.ExtraPaths = []string{r.relative(site)}
	}

	stateErr := r.loadState(ctx)
	for _, ns := range r.cfg.Analysis.Namespaces {
		if stateErr != nil {
			report.Namespaces = append(report.Namespaces, NamespaceReport{Namespace: ns, Err: stateErr})
			continue
		}
		report.Namespaces = append(report.Namespaces, r.syncNamespace(ctx, venv.ProjectRoot, ns, desired, true))
	}
	r.logSummary(report)
	return report, ctx.Err()
}

// Release gives up every entry venvsync manages for projectRoot: each
// recorded or configured namespace is reconciled with nothing desired and
// the record is cleared. The interpreter setting is left as is.
func (r *Runner) Release(ctx context.Context, projectRoot string) (*Report, error) {
	projectRoot = filepath.Clean(projectRoot)
	report := &Report{File: projectRoot}

	if err := r.settings.Load(ctx); err != nil {
		r.log.Error("failed to load settings", "path", r.settings.Path(), "error", err)
		return report, fmt.Errorf("failed to load settings: %w", err)
	}
	if err := r.loadState(ctx); err != nil {
		return report, err
	}

	namespaces := slices.Clone(r.cfg.Analysis.Namespaces)
	for _, ns := range r.state.Record().Namespaces(projectRoot) {
		if !slices.Contains(namespaces, ns) {
			namespaces = append(namespaces, ns)
		}
	}

	for _, ns := range namespaces {
		if r.state.Get(projectRoot, ns).IsEmpty() {
			continue
		}
		report.Namespaces = append(report.Namespaces, r.syncNamespace(ctx, projectRoot, ns, state.Managed{}, false))
	}
	r.logSummary(report)
	return report, ctx.Err()
}

func (r *Runner) applyInterpreter(ctx context.Context, interpreter string) (bool, error) {
	key := r.cfg.InterpreterKey()
	if key == "" {
		return false, nil
	}
	if current, ok := r.settings.String(key); ok && current == interpreter {
		return false, nil
	}

	if err := r.settings.Set(key, interpreter); err != nil {
		r.log.Error("failed to set interpreter", "key", key, "error", err)
		return false, err
	}
	if err := r.save(ctx); err != nil {
		r.log.Error("failed to write interpreter", "key", key, "path", r.settings.Path(), "error", err)
		return false, err
	}
	r.log.Info("interpreter updated", "key", key, "value", interpreter)
	return true, nil
}

// syncNamespace reconciles the three list keys of one namespace against
// desired, writes the settings when something changed, and only then
// records the new managed values.
func (r *Runner) syncNamespace(ctx context.Context, root, ns string, desired state.Managed, setModes bool) NamespaceReport {
	rep := NamespaceReport{Namespace: ns}
	section := settings.NewSection(r.settings, ns)
	previous := r.state.Get(root, ns)
	next := previous

	lists := []struct {
		key      string
		previous []string
		desired  []string
		managed  *[]string
	}{
		{KeyInclude, previous.Include, desired.Include, &next.Include},
		{KeyExclude, previous.Exclude, desired.Exclude, &next.Exclude},
		{KeyExtraPaths, previous.ExtraPaths, desired.ExtraPaths, &next.ExtraPaths},
	}

	for _, l := range lists {
		live, _, err := section.Strings(l.key)
		if err != nil {
			r.log.Warn("setting is not a list, skipped", "key", section.Key(l.key), "error", err)
			rep.Skipped = append(rep.Skipped, l.key)
			continue
		}

		res := reconcile.Reconcile(live, l.previous, l.desired)
		*l.managed = res.Managed
		if !res.Changed {
			continue
		}
		if err := section.Set(l.key, res.Next); err != nil {
			rep.Err = fmt.Errorf("failed to set %s: %w", section.Key(l.key), err)
			r.log.Error("settings update failed", "namespace", ns, "error", rep.Err)
			r.discard(ctx)
			return rep
		}
		r.log.Info("settings list updated", "key", section.Key(l.key), "before", live, "after", res.Next)
		rep.Changed = true
	}

	if setModes {
		changed, err := r.applyModes(section)
		if err != nil {
			rep.Err = err
			r.log.Error("settings update failed", "namespace", ns, "error", err)
			r.discard(ctx)
			return rep
		}
		rep.Changed = rep.Changed || changed
	}

	if rep.Changed {
		if err := r.save(ctx); err != nil {
			rep.Err = fmt.Errorf("failed to write %s settings: %w", ns, err)
			rep.Changed = false
			r.log.Error("settings write failed", "namespace", ns, "path", r.settings.Path(), "error", err)
			return rep
		}
	}

	if !sameManaged(previous, next) {
		r.state.Put(root, ns, next)
		if err := r.state.Save(ctx); err != nil {
			rep.Err = fmt.Errorf("failed to record managed entries: %w", err)
			r.log.Error("state write failed", "namespace", ns, "path", r.state.Path(), "error", err)
		}
	}
	return rep
}

func (r *Runner) applyModes(section settings.Section) (bool, error) {
	changed := false
	a := r.cfg.Analysis

	if current, ok := section.String(KeyDiagnosticMode); !ok || current != a.DiagnosticMode {
		if err := section.Set(KeyDiagnosticMode, a.DiagnosticMode); err != nil {
			return false, fmt.Errorf("failed to set %s: %w", section.Key(KeyDiagnosticMode), err)
		}
		r.log.Info("setting updated", "key", section.Key(KeyDiagnosticMode), "value", a.DiagnosticMode)
		changed = true
	}

	current, ok := section.String(KeyTypeCheckingMode)
	if (!ok || current == typeCheckingOff) && current != a.TypeCheckingMode {
		if err := section.Set(KeyTypeCheckingMode, a.TypeCheckingMode); err != nil {
			return false, fmt.Errorf("failed to set %s: %w", section.Key(KeyTypeCheckingMode), err)
		}
		r.log.Info("setting updated", "key", section.Key(KeyTypeCheckingMode), "value", a.TypeCheckingMode)
		changed = true
	}
	return changed, nil
}

// save writes pending settings. After a failed write the store is reloaded
// so the rejected edits do not ride along with a later namespace.
func (r *Runner) save(ctx context.Context) error {
	if err := r.settings.Save(ctx); err != nil {
		r.discard(ctx)
		return err
	}
	return nil
}

func (r *Runner) discard(ctx context.Context) {
	if err := r.settings.Load(ctx); err != nil {
		r.log.Warn("failed to reload settings", "path", r.settings.Path(), "error", err)
	}
}

func (r *Runner) loadState(ctx context.Context) error {
	if err := r.state.Load(ctx); err != nil {
		r.log.Error("failed to load state", "path", r.state.Path(), "error", err)
		return err
	}
	if r.state.Migrated() {
		r.log.Info("state migrated from legacy layout", "path", r.state.Path())
	}
	return nil
}

func (r *Runner) logSummary(report *Report) {
	switch report.Outcome() {
	case OutcomeFailure:
		r.log.Error(report.Summary())
	case OutcomePartial:
		r.log.Warn(report.Summary())
	default:
		r.log.Info(report.Summary())
	}
}

// relative renders p the way it is written to settings: relative to the
// workspace with forward slashes when inside it, absolute otherwise.
func (r *Runner) relative(p string) string {
	p = filepath.Clean(p)
	if locator.Within(r.workspace, p) {
		if rel, err := filepath.Rel(r.workspace, p); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(p)
}

func sameManaged(a, b state.Managed) bool {
	return slices.Equal(a.Include, b.Include) &&
		slices.Equal(a.Exclude, b.Exclude) &&
		slices.Equal(a.ExtraPaths, b.ExtraPaths)
}
