package facade

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"apiforge/internal/diag"
	"apiforge/internal/meta"
)

// Preference picks the seed module that wins when a type is defined in more
// than one seed.
type Preference struct {
	DocID  string
	Module string
}

// Preferences maps a type doc-id to the preferred seed module name.
type Preferences map[string]string

// ParsePreferences reads "FullTypeName=ModuleName" entries. An entry may hold
// several pairs separated by ';'. The "T:" prefix is added when missing; a
// later entry for the same type overrides an earlier one with a warning.
func ParsePreferences(entries []string, r diag.Reporter) (Preferences, error) {
	if r == nil {
		r = diag.NopReporter{}
	}
	prefs := make(Preferences)
	for _, entry := range entries {
		for _, raw := range strings.Split(entry, ";") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			key, value, ok := strings.Cut(raw, "=")
			key, value = strings.TrimSpace(key), strings.TrimSpace(value)
			if !ok || key == "" || key == "T:" || value == "" {
				return nil, fmt.Errorf("invalid seed type preference %q: want FullTypeName=ModuleName", raw)
			}
			key = meta.NormalizeTypeDocID(key)
			if old, dup := prefs[key]; dup {
				diag.ReportWarning(r, diag.FacPreferenceOverride, diag.Location{DocID: key},
					fmt.Sprintf("overriding preference %s=%s with %s=%s", key, old, key, value)).Emit()
			}
			prefs[key] = value
		}
	}
	return prefs, nil
}

// List returns the preferences sorted by doc-id.
func (p Preferences) List() []Preference {
	out := make([]Preference, 0, len(p))
	for k, v := range p {
		out = append(out, Preference{DocID: k, Module: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocID < out[j].DocID })
	return out
}

// sameModuleName compares module names with Unicode case folding.
func sameModuleName(a, b string) bool {
	fold := cases.Fold()
	return fold.String(a) == fold.String(b)
}
