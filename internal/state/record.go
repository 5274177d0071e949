package state

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tidwall/gjson"
)

// CurrentVersion is the record layout written by this release.
const CurrentVersion = 2

// legacyKeySep separates namespace and root in version 1 keys.
const legacyKeySep = "|"

// Managed lists the values venvsync owns in each list setting of one
// analysis namespace.
type Managed struct {
	Include    []string `json:"include,omitempty"`
	Exclude    []string `json:"exclude,omitempty"`
	ExtraPaths []string `json:"extraPaths,omitempty"`
}

// IsEmpty reports whether nothing is owned.
func (m Managed) IsEmpty() bool {
	return len(m.Include) == 0 && len(m.Exclude) == 0 && len(m.ExtraPaths) == 0
}

// Record is the whole state file: project root -> namespace -> Managed.
type Record struct {
	Version int                           `json:"version"`
	Roots   map[string]map[string]Managed `json:"roots"`
}

// NewRecord returns an empty current-version record.
func NewRecord() *Record {
	return &Record{Version: CurrentVersion, Roots: map[string]map[string]Managed{}}
}

// Get returns the managed values for (root, namespace).
func (r *Record) Get(root, namespace string) Managed {
	return r.Roots[rootKey(root)][namespace]
}

// Put stores m for (root, namespace). An empty m removes the entry, and a
// root left without namespaces is dropped.
func (r *Record) Put(root, namespace string, m Managed) {
	key := rootKey(root)
	if m.IsEmpty() {
		if nss, ok := r.Roots[key]; ok {
			delete(nss, namespace)
			if len(nss) == 0 {
				delete(r.Roots, key)
			}
		}
		return
	}
	if r.Roots[key] == nil {
		r.Roots[key] = map[string]Managed{}
	}
	r.Roots[key][namespace] = Managed{
		Include:    slices.Clone(m.Include),
		Exclude:    slices.Clone(m.Exclude),
		ExtraPaths: slices.Clone(m.ExtraPaths),
	}
}

// Namespaces returns the namespaces recorded for root, sorted.
func (r *Record) Namespaces(root string) []string {
	nss := r.Roots[rootKey(root)]
	out := make([]string, 0, len(nss))
	for ns := range nss {
		out = append(out, ns)
	}
	slices.Sort(out)
	return out
}

func rootKey(root string) string {
	return filepath.Clean(root)
}

// Parse decodes a state file of any known version. The bool reports
// whether a legacy layout was migrated.
func Parse(data []byte) (*Record, bool, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return NewRecord(), false, nil
	}
	if !gjson.ValidBytes(data) {
		return nil, false, fmt.Errorf("state is not valid JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, false, fmt.Errorf("state must be a JSON object, got %s", doc.Type)
	}

	version := doc.Get("version")
	if !version.Exists() {
		return migrateV1(doc), true, nil
	}

	switch v := version.Int(); {
	case v == CurrentVersion:
		rec := NewRecord()
		if err := json.Unmarshal(data, rec); err != nil {
			return nil, false, fmt.Errorf("failed to decode state: %w", err)
		}
		if rec.Roots == nil {
			rec.Roots = map[string]map[string]Managed{}
		}
		return rec, false, nil
	case v > CurrentVersion:
		return nil, false, fmt.Errorf("state version %d is newer than supported version %d", v, CurrentVersion)
	default:
		return nil, false, fmt.Errorf("unknown state version %d", v)
	}
}

// migrateV1 converts the flat "<namespace>|<root>" layout. Unparseable keys
// and values are dropped: losing ownership only means a stale entry stays
// in the settings, never that a user entry is removed.
func migrateV1(doc gjson.Result) *Record {
	rec := NewRecord()
	doc.ForEach(func(key, value gjson.Result) bool {
		ns, root, ok := strings.Cut(key.String(), legacyKeySep)
		if !ok || ns == "" || root == "" {
			return true
		}

		var m Managed
		switch {
		case value.Type == gjson.String:
			m.ExtraPaths = legacyStrings(value)
		case value.IsArray():
			m.ExtraPaths = legacyStrings(value)
		case value.IsObject():
			m.Include = legacyStrings(value.Get("include"))
			m.Exclude = legacyStrings(value.Get("exclude"))
			m.ExtraPaths = legacyStrings(value.Get("extraPaths"))
		}

		existing := rec.Get(root, ns)
		m.Include = append(existing.Include, m.Include...)
		m.Exclude = append(existing.Exclude, m.Exclude...)
		m.ExtraPaths = append(existing.ExtraPaths, m.ExtraPaths...)
		rec.Put(root, ns, m)
		return true
	})
	return rec
}

// legacyStrings reads a string or an array of strings, skipping other items.
func legacyStrings(v gjson.Result) []string {
	if v.Type == gjson.String {
		if v.Str == "" {
			return nil
		}
		return []string{v.Str}
	}
	if !v.IsArray() {
		return nil
	}
	var out []string
	for _, item := range v.Array() {
		if item.Type == gjson.String && item.Str != "" {
			out = append(out, item.Str)
		}
	}
	return out
}
