package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"apiforge/internal/mapping"
	"apiforge/internal/meta"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] <left> [<right>]",
	Short: "Print the mapping tree of one or two module sets",
	Long: `Print the aligned mapping tree. With a single path the tree shows one
side only, which is a quick way to inspect a module file.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().Bool("flat", false, "merge namespaces of all modules on a side")
	dumpCmd.Flags().Bool("include-internals", false, "show internal members too")
	dumpCmd.Flags().Int("depth", 0, "stop below this depth (0=unlimited)")
}

func runDump(cmd *cobra.Command, args []string) error {
	flat, err := cmd.Flags().GetBool("flat")
	if err != nil {
		return fmt.Errorf("failed to get flat flag: %w", err)
	}
	internals, err := cmd.Flags().GetBool("include-internals")
	if err != nil {
		return fmt.Errorf("failed to get include-internals flag: %w", err)
	}
	depth, err := cmd.Flags().GetInt("depth")
	if err != nil {
		return fmt.Errorf("failed to get depth flag: %w", err)
	}

	ctx := cmd.Context()
	h := meta.NewHost()
	left, err := meta.LoadFiles(ctx, h, "left", args[:1], 0)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}
	var right []meta.ModuleID
	if len(args) == 2 {
		if right, err = meta.LoadFiles(ctx, h, "right", args[1:], 0); err != nil {
			return fmt.Errorf("failed to load %s: %w", args[1], err)
		}
	}

	settings := mapping.DefaultSettings()
	settings.GroupByModule = !flat
	root, err := mapping.Build(h, left, right, meta.NewFilter(meta.FilterOptions{IncludeInternals: internals}), settings)
	if err != nil {
		return err
	}
	dumpTree(cmd.OutOrStdout(), root, depth)
	return nil
}

// dumpTree prints one node per line, indented by depth, with the slots the
// node fills:
//
//	type      both  T:Garden.Apple
func dumpTree(w io.Writer, root *mapping.Node, maxDepth int) {
	mapping.Walk(root, func(n *mapping.Node) bool {
		d := nodeDepth(n)
		if n.Kind() == mapping.KindModuleSet {
			fmt.Fprintln(w, "<modules>")
			return true
		}
		fmt.Fprintf(w, "%s%-9s %-5s %s\n", strings.Repeat("  ", d-1), n.Kind(), n.Presence(), n.DocID())
		return maxDepth <= 0 || d < maxDepth
	})
}

func nodeDepth(n *mapping.Node) int {
	d := 0
	for p := n.Parent(); p != nil; p = p.Parent() {
		d++
	}
	return d
}
