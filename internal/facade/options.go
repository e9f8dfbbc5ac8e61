package facade

import (
	"fmt"
	"strings"

	"apiforge/internal/diag"
	"apiforge/internal/meta"
)

// MissingTypePolicy decides what happens to contract types no seed defines.
type MissingTypePolicy uint8

const (
	MissingFail MissingTypePolicy = iota
	MissingIgnore
)

func (p MissingTypePolicy) String() string {
	if p == MissingIgnore {
		return "ignore"
	}
	return "fail"
}

func ParseMissingTypePolicy(s string) (MissingTypePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail":
		return MissingFail, nil
	case "ignore":
		return MissingIgnore, nil
	}
	return MissingFail, fmt.Errorf("unknown missing-type policy %q (want fail|ignore)", s)
}

// VersionMode selects how a seed version is compared with its contract.
type VersionMode uint8

const (
	// VersionRequireAtLeast accepts seeds at or above the contract version.
	VersionRequireAtLeast VersionMode = iota
	VersionExact
	VersionIgnore
)

func (m VersionMode) String() string {
	switch m {
	case VersionExact:
		return "exact"
	case VersionIgnore:
		return "ignore"
	}
	return "at-least"
}

func ParseVersionMode(s string) (VersionMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "at-least", "atleast":
		return VersionRequireAtLeast, nil
	case "exact":
		return VersionExact, nil
	case "ignore":
		return VersionIgnore, nil
	}
	return VersionRequireAtLeast, fmt.Errorf("unknown version mode %q (want at-least|exact|ignore)", s)
}

// MismatchAction is applied when a bound seed violates the version policy.
type MismatchAction uint8

const (
	MismatchFail MismatchAction = iota
	MismatchWarn
)

func (a MismatchAction) String() string {
	if a == MismatchWarn {
		return "warn"
	}
	return "fail"
}

func ParseMismatchAction(s string) (MismatchAction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail":
		return MismatchFail, nil
	case "warn":
		return MismatchWarn, nil
	}
	return MismatchFail, fmt.Errorf("unknown version mismatch action %q (want fail|warn)", s)
}

type VersionPolicy struct {
	Mode VersionMode
	// IgnoreBuildAndRevision compares major and minor only. It also relaxes
	// the partial facade identity check.
	IgnoreBuildAndRevision bool
	// ForceZero zeroes the version of every emitted module reference and
	// skips the comparison.
	ForceZero  bool
	OnMismatch MismatchAction
}

type Options struct {
	Preferences  Preferences
	MissingTypes MissingTypePolicy
	Version      VersionPolicy
	// ClearBuildAndRevision zeroes the facade's own build and revision.
	ClearBuildAndRevision bool
	// FileVersion replaces the file and informational version attributes.
	FileVersion *meta.Version
	// DesignTime marks the facade as a reference module.
	DesignTime   bool
	DebugSymbols bool
	// Partial is an existing module to patch instead of rewriting the
	// contract of the same name.
	Partial meta.ModuleID
	// Jobs > 1 synthesizes contracts concurrently.
	Jobs int

	// Reporter receives every diagnostic after the run; nil discards them.
	Reporter diag.Reporter
	Progress ProgressSink
}

func DefaultOptions() Options {
	return Options{Jobs: 1}
}

func (o Options) progress() ProgressSink {
	if o.Progress == nil {
		return nopSink{}
	}
	return o.Progress
}
