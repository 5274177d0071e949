// Package reconcile merges the values venvsync wants into a list-valued
// setting without disturbing entries added by the user or other tools.
package reconcile

import (
	"path"
	"slices"
	"strings"
)

// Result is the outcome of one reconciliation.
type Result struct {
	// Next is the list to write back to the setting.
	Next []string

	// Managed is the new record of values venvsync owns in that list. It is
	// nil when nothing is desired, meaning ownership is relinquished.
	Managed []string

	// Changed reports whether Next differs from the live list as a set.
	Changed bool
}

// Reconcile computes the next value of a live list. Entries venvsync added
// previously (previous) that are no longer desired are removed, desired
// values missing from the list are appended, and everything else keeps its
// position. Values are compared after Normalize.
//
// Calling Reconcile again with Next and Managed and the same desired values
// always yields Changed == false.
func Reconcile(live, previous, desired []string) Result {
	want := dedupe(desired)

	wantSet := make(map[string]bool, len(want))
	for _, v := range want {
		wantSet[Normalize(v)] = true
	}
	stale := make(map[string]bool, len(previous))
	for _, v := range previous {
		if key := Normalize(v); !wantSet[key] {
			stale[key] = true
		}
	}

	next := make([]string, 0, len(live)+len(want))
	present := make(map[string]bool, len(live))
	for _, v := range live {
		key := Normalize(v)
		if stale[key] {
			continue
		}
		next = append(next, v)
		present[key] = true
	}
	for _, v := range want {
		key := Normalize(v)
		if present[key] {
			continue
		}
		next = append(next, v)
		present[key] = true
	}

	var managed []string
	if len(want) > 0 {
		managed = want
	}

	return Result{
		Next:    next,
		Managed: managed,
		Changed: !SameSet(live, next),
	}
}

// Normalize returns the comparison key for a path-like setting value:
// forward slashes, cleaned, without a trailing slash.
func Normalize(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	v = strings.ReplaceAll(v, `\`, "/")
	return path.Clean(v)
}

// SameSet reports whether a and b hold the same normalized values,
// ignoring order and duplicates.
func SameSet(a, b []string) bool {
	as := toSet(a)
	bs := toSet(b)
	if len(as) != len(bs) {
		return false
	}
	for k := range as {
		if !bs[k] {
			return false
		}
	}
	return true
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[Normalize(v)] = true
	}
	return set
}

// dedupe drops empty values and later duplicates, keeping first positions.
func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		key := Normalize(v)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return slices.Clip(out)
}
