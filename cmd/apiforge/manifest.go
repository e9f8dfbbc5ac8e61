package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"apiforge/internal/project"
)

// loadManifest honours --manifest and --no-manifest. A nil manifest with a
// nil error means none applies; flags then carry the whole configuration.
func loadManifest(cmd *cobra.Command) (*project.Manifest, error) {
	noManifest, err := cmd.Root().PersistentFlags().GetBool("no-manifest")
	if err != nil {
		return nil, fmt.Errorf("failed to get no-manifest flag: %w", err)
	}
	if noManifest {
		return nil, nil
	}
	path, err := cmd.Root().PersistentFlags().GetString("manifest")
	if err != nil {
		return nil, fmt.Errorf("failed to get manifest flag: %w", err)
	}

	var m *project.Manifest
	if path != "" {
		m, err = project.LoadManifestFile(path)
		if err != nil {
			return nil, err
		}
	} else {
		var ok bool
		m, ok, err = project.LoadManifest(".")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
	}

	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if !quiet {
		for _, key := range m.Unknown {
			fmt.Fprintf(os.Stderr, "warning: %s: unknown key %q\n", m.Display(m.Path), key)
		}
	}
	return m, nil
}

// pick returns the flag value when the user set it, the manifest value
// otherwise.
func pick[T any](cmd *cobra.Command, name string, flagValue, manifestValue T, haveManifest bool) T {
	if cmd.Flags().Changed(name) || !haveManifest {
		return flagValue
	}
	return manifestValue
}

// pickPaths is pick for path lists; manifest paths are project-relative.
func pickPaths(cmd *cobra.Command, name string, flagValue []string, m *project.Manifest, manifestValue []string) []string {
	if cmd.Flags().Changed(name) || m == nil || len(manifestValue) == 0 {
		return flagValue
	}
	return m.ResolveAll(manifestValue)
}

func maxDiagnostics(cmd *cobra.Command, m *project.Manifest) (int, error) {
	n, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return 0, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if !cmd.Root().PersistentFlags().Changed("max-diagnostics") && m != nil && m.Config.Run.MaxDiagnostics > 0 {
		n = m.Config.Run.MaxDiagnostics
	}
	return n, nil
}
