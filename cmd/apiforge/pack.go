package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"apiforge/internal/meta"
)

var packCmd = &cobra.Command{
	Use:   "pack [flags] <module.json>...",
	Short: "Encode JSON module descriptions into module files",
	Long: `Encode JSON module descriptions (the shape pack --unpack prints) into
msgpack module files. Output files are written next to the inputs unless
--output is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPack,
}

func init() {
	packCmd.Flags().StringP("output", "o", "", "directory for the module files")
	packCmd.Flags().Bool("unpack", false, "decode module files back into JSON on stdout")
}

func runPack(cmd *cobra.Command, args []string) error {
	outDir, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	unpack, err := cmd.Flags().GetBool("unpack")
	if err != nil {
		return fmt.Errorf("failed to get unpack flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	if unpack {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		for _, path := range args {
			m, err := meta.ReadFile(path)
			if err != nil {
				return err
			}
			if err := enc.Encode(m); err != nil {
				return fmt.Errorf("failed to encode %s: %w", path, err)
			}
		}
		return nil
	}

	for _, path := range args {
		target, err := packFile(path, outDir)
		if err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "packed %s -> %s\n", path, target)
		}
	}
	return nil
}

func packFile(path, outDir string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	var m meta.Module
	if err := json.Unmarshal(data, &m); err != nil {
		return "", fmt.Errorf("%s: invalid module JSON: %w", path, err)
	}
	if strings.TrimSpace(m.Name) == "" {
		return "", fmt.Errorf("%s: module name is required", path)
	}

	dir := filepath.Dir(path)
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
		dir = outDir
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	target := filepath.Join(dir, base+meta.FileExt)
	if err := meta.WriteFile(target, &m); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", target, err)
	}
	return target, nil
}
