package cycle

import (
	"fmt"

	"github.com/indaco/venvsync/internal/locator"
)

// Outcome summarises the analysis step of a cycle.
type Outcome string

const (
	// OutcomeSkipped means no namespace was processed: analysis is
	// disabled, or no venv was found.
	OutcomeSkipped Outcome = "skipped"
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial success"
	OutcomeFailure Outcome = "failure"
)

// NamespaceReport is the result for one analysis namespace.
type NamespaceReport struct {
	Namespace string

	// Changed reports whether the settings file was written.
	Changed bool

	// Skipped lists keys left alone because they hold a non-list value.
	Skipped []string

	// Err is the failure that stopped this namespace, if any.
	Err error
}

// Report describes what one Run or Release did.
type Report struct {
	// File is the active file the cycle ran for.
	File string

	// Found reports whether a venv was located.
	Found bool

	// Venv is the located environment when Found is set.
	Venv locator.Result

	// InterpreterChanged reports whether the interpreter setting was written.
	InterpreterChanged bool

	// InterpreterErr is the failure of the interpreter step, if any.
	InterpreterErr error

	// SitePackagesMissing is set when the venv has no package directory.
	SitePackagesMissing bool

	// Namespaces holds one entry per processed analysis namespace.
	Namespaces []NamespaceReport
}

// Outcome classifies the analysis step.
func (r *Report) Outcome() Outcome {
	if len(r.Namespaces) == 0 {
		return OutcomeSkipped
	}
	failed := 0
	for _, ns := range r.Namespaces {
		if ns.Err != nil {
			failed++
		}
	}
	switch failed {
	case 0:
		return OutcomeSuccess
	case len(r.Namespaces):
		return OutcomeFailure
	default:
		return OutcomePartial
	}
}

// Changed reports whether any setting was written.
func (r *Report) Changed() bool {
	if r.InterpreterChanged {
		return true
	}
	for _, ns := range r.Namespaces {
		if ns.Changed {
			return true
		}
	}
	return false
}

// Summary is the single line reported at the end of a cycle.
func (r *Report) Summary() string {
	ok := 0
	for _, ns := range r.Namespaces {
		if ns.Err == nil {
			ok++
		}
	}
	switch r.Outcome() {
	case OutcomeSkipped:
		return "analysis settings: nothing to update"
	case OutcomeSuccess:
		return fmt.Sprintf("analysis settings updated successfully (%d/%d namespaces)", ok, len(r.Namespaces))
	case OutcomePartial:
		return fmt.Sprintf("analysis settings partially updated (%d/%d namespaces)", ok, len(r.Namespaces))
	default:
		return fmt.Sprintf("analysis settings update failed (0/%d namespaces)", len(r.Namespaces))
	}
}
