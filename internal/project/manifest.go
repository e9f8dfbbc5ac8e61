package project

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest is a decoded apiforge.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
	// Unknown lists keys the decoder did not recognise.
	Unknown []string
}

type Config struct {
	Run    RunConfig    `toml:"run"`
	Diff   DiffConfig   `toml:"diff"`
	Facade FacadeConfig `toml:"facade"`
}

type RunConfig struct {
	Jobs           int `toml:"jobs"`
	MaxDiagnostics int `toml:"max_diagnostics"`
}

type DiffConfig struct {
	Left  []string `toml:"left"`
	Right []string `toml:"right"`
	// Rules restricts the run to the listed rule ids; empty means all.
	Rules   []string `toml:"rules"`
	Disable []string `toml:"disable"`
	// Include lists record kinds: added, removed, changed, unchanged.
	Include           []string          `toml:"include"`
	TypesOnly         bool              `toml:"types_only"`
	Presence          bool              `toml:"presence"`
	EnforceOptional   bool              `toml:"enforce_optional"`
	GroupByModule     *bool             `toml:"group_by_module"`
	IncludeInternals  bool              `toml:"include_internals"`
	IncludePrivates   bool              `toml:"include_privates"`
	IncludeGenerated  bool              `toml:"include_generated"`
	ExcludeAttributes []string          `toml:"exclude_attributes"`
	IgnoredAttributes []string          `toml:"ignored_attributes"`
	Exemptions        []ExemptionConfig `toml:"hierarchy_exemption"`
	FailOnIncompat    *bool             `toml:"fail_on_incompatible"`
}

// ExemptionConfig is one [[diff.hierarchy_exemption]] table.
type ExemptionConfig struct {
	From string `toml:"from"`
	To   string `toml:"to"`
}

type FacadeConfig struct {
	Contracts              []string `toml:"contracts"`
	Seeds                  []string `toml:"seeds"`
	Inclusion              []string `toml:"inclusion"`
	Output                 string   `toml:"output"`
	Partial                string   `toml:"partial"`
	Preferences            []string `toml:"preferences"`
	MissingTypes           string   `toml:"missing_types"`
	Version                string   `toml:"version"`
	IgnoreBuildAndRevision bool     `toml:"ignore_build_and_revision"`
	ForceZeroVersions      bool     `toml:"force_zero_versions"`
	OnMismatch             string   `toml:"on_version_mismatch"`
	ClearBuildAndRevision  bool     `toml:"clear_build_and_revision"`
	FileVersion            string   `toml:"file_version"`
	DesignTime             bool     `toml:"design_time"`
	DebugSymbols           bool     `toml:"debug_symbols"`
}

var includeKinds = map[string]struct{}{"added": {}, "removed": {}, "changed": {}, "unchanged": {}}

// LoadManifest discovers apiforge.toml from startDir upwards and decodes it.
// ok is false when no manifest exists.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := LoadManifestFile(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

func LoadManifestFile(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if err := cfg.validate(meta); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m := &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}
	for _, key := range meta.Undecoded() {
		m.Unknown = append(m.Unknown, key.String())
	}
	sort.Strings(m.Unknown)
	return m, nil
}

func (c *Config) validate(meta toml.MetaData) error {
	if meta.IsDefined("run", "jobs") && c.Run.Jobs < 0 {
		return fmt.Errorf("[run].jobs must not be negative")
	}
	for _, kind := range c.Diff.Include {
		if _, ok := includeKinds[strings.ToLower(strings.TrimSpace(kind))]; !ok {
			return fmt.Errorf("[diff].include: unknown record kind %q", kind)
		}
	}
	for i, ex := range c.Diff.Exemptions {
		if strings.TrimSpace(ex.From) == "" || strings.TrimSpace(ex.To) == "" {
			return fmt.Errorf("[[diff.hierarchy_exemption]] #%d: from and to are required", i+1)
		}
	}
	if meta.IsDefined("facade") && meta.IsDefined("facade", "output") && strings.TrimSpace(c.Facade.Output) == "" {
		return fmt.Errorf("[facade].output must not be empty")
	}
	return nil
}

// Resolve makes a manifest-relative path absolute.
func (m *Manifest) Resolve(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.Root, filepath.FromSlash(path))
}

func (m *Manifest) ResolveAll(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p = m.Resolve(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Display shortens paths inside the project root for messages.
func (m *Manifest) Display(path string) string {
	if m == nil || !pathWithin(m.Root, path) {
		return path
	}
	rel, err := filepath.Rel(m.Root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
