// Package state persists which setting values venvsync itself added, per
// project root and analysis namespace. Reconciliation only ever removes
// values recorded here.
//
// The file is versioned. Older releases stored a flat object keyed by
// "<namespace>|<root>" whose values were a bare string, an array of extra
// paths, or an object; those shapes are migrated once, when the file is read.
package state
