package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"apiforge/internal/diag"
	"apiforge/internal/differ"
	"apiforge/internal/mapping"
	"apiforge/internal/meta"
	"apiforge/internal/observ"
	"apiforge/internal/project"
	"apiforge/internal/report"
)

var diffCmd = &cobra.Command{
	Use:   "diff [flags] [<left> <right>]",
	Short: "Compare two sets of modules and report API differences",
	Long: `Compare the API surface of the left (implementation) and right (contract)
module sets. Paths may be module files or directories of *.apimod files.`,
	Args: cobra.MatchAll(cobra.MaximumNArgs(2), func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return fmt.Errorf("expected both <left> and <right>, or neither")
		}
		return nil
	}),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().StringSlice("left", nil, "left (implementation) module files or directories")
	diffCmd.Flags().StringSlice("right", nil, "right (contract) module files or directories")
	diffCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	diffCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	diffCmd.Flags().StringSlice("rules", nil, "run only these rule ids")
	diffCmd.Flags().StringSlice("disable", nil, "skip these rule ids")
	diffCmd.Flags().StringSlice("include", nil, "record kinds to report (added|removed|changed|unchanged)")
	diffCmd.Flags().Bool("types-only", false, "stop at type nodes")
	diffCmd.Flags().Bool("presence", false, "report contract elements missing from the implementation")
	diffCmd.Flags().Bool("enforce-optional", false, "run optional rules")
	diffCmd.Flags().Bool("flat", false, "merge namespaces of all modules on a side")
	diffCmd.Flags().Bool("include-internals", false, "compare internal members too")
	diffCmd.Flags().Bool("include-privates", false, "compare private members too")
	diffCmd.Flags().Bool("include-generated", false, "compare compiler-generated members too")
	diffCmd.Flags().StringSlice("exclude-attribute", nil, "skip symbols carrying these attribute types")
	diffCmd.Flags().StringSlice("ignore-attribute", nil, "attribute types the attribute rules ignore")
	diffCmd.Flags().StringArray("exempt", nil, "hierarchy exemption From=To (repeatable)")
	diffCmd.Flags().Bool("fail-on-incompatible", true, "exit non-zero when incompatible differences exist")
	diffCmd.Flags().Bool("with-notes", false, "show exemptions and diagnostic notes")
	diffCmd.Flags().Int("width", 0, "truncate doc-ids to this many columns (0=off)")
}

type diffConfig struct {
	left, right    []string
	format         string
	jobs           int
	filter         meta.FilterOptions
	mapping        mapping.Settings
	rules          differ.RuleOptions
	selectIDs      []string
	disableIDs     []string
	settings       differ.Settings
	failOnIncompat bool
}

func runDiff(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	m, err := loadManifest(cmd)
	if err != nil {
		return err
	}
	cfg, err := resolveDiffConfig(cmd, args, m)
	if err != nil {
		return err
	}
	maxDiags, err := maxDiagnostics(cmd, m)
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	width, err := cmd.Flags().GetInt("width")
	if err != nil {
		return fmt.Errorf("failed to get width flag: %w", err)
	}
	colored, err := useColor(cmd)
	if err != nil {
		return err
	}

	bag := diag.NewBag(maxDiags)
	reporter := diag.NewLockedReporter(diag.NewDedupReporter(diag.BagReporter{Bag: bag}))
	cfg.mapping.Reporter = reporter

	registry, err := selectRules(differ.DefaultRegistry(cfg.rules), cfg.selectIDs, cfg.disableIDs, reporter)
	if err != nil {
		report.PrettyDiagnostics(os.Stderr, bag.Items(), report.PrettyOpts{Color: colored})
		return err
	}

	ctx := cmd.Context()
	timer := observ.NewTimer()
	h := meta.NewHost()
	var left, right []meta.ModuleID
	err = timer.Measure("load", func() error {
		var err error
		if left, err = meta.LoadFiles(ctx, h, "left", cfg.left, cfg.jobs); err != nil {
			return fmt.Errorf("failed to load left modules: %w", err)
		}
		if right, err = meta.LoadFiles(ctx, h, "right", cfg.right, cfg.jobs); err != nil {
			return fmt.Errorf("failed to load right modules: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	var root *mapping.Node
	err = timer.Measure("map", func() error {
		var err error
		root, err = mapping.Build(h, left, right, meta.NewFilter(cfg.filter), cfg.mapping)
		return err
	})
	if err != nil {
		return fmt.Errorf("mapping failed: %w", err)
	}

	var rep *differ.Report
	err = timer.Measure("diff", func() error {
		var err error
		rep, err = differ.NewEngine(registry, cfg.settings).Run(ctx, root)
		return err
	})
	if err != nil {
		return fmt.Errorf("diff failed: %w", err)
	}
	bag.Sort()

	out := cmd.OutOrStdout()
	switch cfg.format {
	case "pretty":
		if bag.Len() > 0 && !quiet {
			report.PrettyDiagnostics(os.Stderr, bag.Items(), report.PrettyOpts{Color: colored, ShowNotes: withNotes})
		}
		report.PrettyDiff(out, rep, report.PrettyOpts{Color: colored, Width: width, ShowNotes: withNotes, Quiet: quiet})
	case "short":
		report.ShortDiff(out, rep)
		if err := diag.FormatShort(os.Stderr, bag.Items()); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	case "json":
		payload := report.BuildDiffOutput(rep, bag.Items(), report.JSONOpts{Max: maxDiags, IncludeNotes: withNotes})
		if err := report.JSON(out, payload); err != nil {
			return fmt.Errorf("failed to encode diff output: %w", err)
		}
	}
	printTimings(os.Stderr, timer, showTimings)

	if cfg.failOnIncompat && rep.Incompatible() > 0 {
		return silentFailure(cmd)
	}
	return nil
}

func resolveDiffConfig(cmd *cobra.Command, args []string, m *project.Manifest) (diffConfig, error) {
	var mc project.DiffConfig
	var run project.RunConfig
	if m != nil {
		mc, run = m.Config.Diff, m.Config.Run
	}
	have := m != nil
	flags := cmd.Flags()

	var cfg diffConfig
	var err error
	get := func(name string) []string {
		if err != nil {
			return nil
		}
		var v []string
		if v, err = flags.GetStringSlice(name); err != nil {
			err = fmt.Errorf("failed to get %s flag: %w", name, err)
		}
		return v
	}
	getBool := func(name string) bool {
		if err != nil {
			return false
		}
		var v bool
		if v, err = flags.GetBool(name); err != nil {
			err = fmt.Errorf("failed to get %s flag: %w", name, err)
		}
		return v
	}

	cfg.left = pickPaths(cmd, "left", get("left"), m, mc.Left)
	cfg.right = pickPaths(cmd, "right", get("right"), m, mc.Right)
	if len(args) == 2 {
		cfg.left, cfg.right = []string{args[0]}, []string{args[1]}
	}
	cfg.selectIDs = pick(cmd, "rules", get("rules"), mc.Rules, have)
	cfg.disableIDs = pick(cmd, "disable", get("disable"), mc.Disable, have)
	include := pick(cmd, "include", get("include"), mc.Include, have)

	cfg.filter = meta.FilterOptions{
		IncludeInternals:  pick(cmd, "include-internals", getBool("include-internals"), mc.IncludeInternals, have),
		IncludePrivates:   pick(cmd, "include-privates", getBool("include-privates"), mc.IncludePrivates, have),
		IncludeGenerated:  pick(cmd, "include-generated", getBool("include-generated"), mc.IncludeGenerated, have),
		ExcludeAttributes: pick(cmd, "exclude-attribute", get("exclude-attribute"), mc.ExcludeAttributes, have),
	}
	cfg.mapping = mapping.DefaultSettings()
	if cmd.Flags().Changed("flat") {
		cfg.mapping.GroupByModule = !getBool("flat")
	} else if mc.GroupByModule != nil {
		cfg.mapping.GroupByModule = *mc.GroupByModule
	}

	cfg.settings = differ.DefaultSettings()
	cfg.settings.TypesOnly = pick(cmd, "types-only", getBool("types-only"), mc.TypesOnly, have)
	cfg.settings.Presence = pick(cmd, "presence", getBool("presence"), mc.Presence, have)
	cfg.settings.EnforceOptional = pick(cmd, "enforce-optional", getBool("enforce-optional"), mc.EnforceOptional, have)

	cfg.failOnIncompat = getBool("fail-on-incompatible")
	if !cmd.Flags().Changed("fail-on-incompatible") && mc.FailOnIncompat != nil {
		cfg.failOnIncompat = *mc.FailOnIncompat
	}
	if err != nil {
		return diffConfig{}, err
	}

	if cfg.format, err = flags.GetString("format"); err != nil {
		return diffConfig{}, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch cfg.format {
	case "pretty", "json", "short":
	default:
		return diffConfig{}, fmt.Errorf("unknown format: %s", cfg.format)
	}
	if cfg.jobs, err = flags.GetInt("jobs"); err != nil {
		return diffConfig{}, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if !flags.Changed("jobs") && run.Jobs > 0 {
		cfg.jobs = run.Jobs
	}
	cfg.settings.Jobs = cfg.jobs

	if len(include) > 0 {
		if cfg.settings.Include, err = parseInclude(include); err != nil {
			return diffConfig{}, err
		}
	}

	exempt, err := flags.GetStringArray("exempt")
	if err != nil {
		return diffConfig{}, fmt.Errorf("failed to get exempt flag: %w", err)
	}
	if flags.Changed("exempt") {
		for _, e := range exempt {
			from, to, ok := strings.Cut(e, "=")
			if !ok || strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
				return diffConfig{}, fmt.Errorf("invalid --exempt value %q (expected From=To)", e)
			}
			cfg.rules.Exemptions = append(cfg.rules.Exemptions, differ.Exemption{From: strings.TrimSpace(from), To: strings.TrimSpace(to)})
		}
	} else {
		for _, e := range mc.Exemptions {
			cfg.rules.Exemptions = append(cfg.rules.Exemptions, differ.Exemption{From: e.From, To: e.To})
		}
	}
	ignored, err := flags.GetStringSlice("ignore-attribute")
	if err != nil {
		return diffConfig{}, fmt.Errorf("failed to get ignore-attribute flag: %w", err)
	}
	if ignored = pick(cmd, "ignore-attribute", ignored, mc.IgnoredAttributes, have); len(ignored) > 0 {
		cfg.rules.IgnoredAttributes = ignored
	}

	if len(cfg.left) == 0 && len(cfg.right) == 0 {
		return diffConfig{}, fmt.Errorf("no modules to compare: pass <left> <right>, --left/--right, or set [diff] in %s", project.ManifestName)
	}
	return cfg, nil
}

func parseInclude(kinds []string) (differ.Include, error) {
	var in differ.Include
	for _, k := range kinds {
		switch strings.ToLower(strings.TrimSpace(k)) {
		case "added":
			in.Added = true
		case "removed":
			in.Removed = true
		case "changed":
			in.Changed = true
		case "unchanged":
			in.Unchanged = true
		case "all":
			in = differ.IncludeAll()
		default:
			return differ.Include{}, fmt.Errorf("unknown record kind %q (expected added|removed|changed|unchanged|all)", k)
		}
	}
	return in, nil
}

// selectRules narrows reg to keep (when non-empty) minus disable. Unknown
// ids are reported as CfgUnknownRule and fail the run.
func selectRules(reg *differ.Registry, keep, disable []string, r diag.Reporter) (*differ.Registry, error) {
	known := make(map[string]struct{})
	for _, info := range reg.Describe() {
		known[strings.ToLower(info.ID)] = struct{}{}
	}
	normalize := func(ids []string) (map[string]struct{}, int) {
		set := make(map[string]struct{}, len(ids))
		bad := 0
		for _, id := range ids {
			key := strings.ToLower(strings.TrimSpace(id))
			if key == "" {
				continue
			}
			if _, ok := known[key]; !ok {
				diag.ReportError(r, diag.CfgUnknownRule, diag.Location{}, fmt.Sprintf("unknown rule %q; see `apiforge rules`", id)).Emit()
				bad++
				continue
			}
			set[key] = struct{}{}
		}
		return set, bad
	}
	keepSet, badKeep := normalize(keep)
	dropSet, badDrop := normalize(disable)
	if n := badKeep + badDrop; n > 0 {
		return nil, fmt.Errorf("%d unknown rule id(s)", n)
	}
	if len(keepSet) == 0 && len(dropSet) == 0 {
		return reg, nil
	}
	return reg.Select(func(rule differ.Rule) bool {
		id := strings.ToLower(rule.ID())
		if _, ok := dropSet[id]; ok {
			return false
		}
		if len(keepSet) == 0 {
			return true
		}
		_, ok := keepSet[id]
		return ok
	}), nil
}
