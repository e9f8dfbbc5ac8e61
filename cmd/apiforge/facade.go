package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"apiforge/internal/diag"
	"apiforge/internal/facade"
	"apiforge/internal/meta"
	"apiforge/internal/observ"
	"apiforge/internal/project"
	"apiforge/internal/report"
)

var facadeCmd = &cobra.Command{
	Use:   "facade [flags]",
	Short: "Synthesize forwarding facades for contract modules",
	Long: `Build one facade per contract module. Every public contract type is
forwarded to the seed module that defines it; the contract's own references
are redirected to those seeds.`,
	Args: cobra.NoArgs,
	RunE: runFacade,
}

func init() {
	facadeCmd.Flags().StringSlice("contracts", nil, "contract module files or directories")
	facadeCmd.Flags().StringSlice("seeds", nil, "seed module files or directories")
	facadeCmd.Flags().StringSlice("inclusion", nil, "inclusion contracts whose types join the contract of the same name")
	facadeCmd.Flags().StringP("output", "o", "", "directory the facades are written to")
	facadeCmd.Flags().String("partial", "", "existing facade module to complete instead of rewriting its contract")
	facadeCmd.Flags().StringArray("prefer", nil, "seed type preference FullTypeName=ModuleName (repeatable, ';' separated)")
	facadeCmd.Flags().String("missing-types", "fail", "contract types with no seed (fail|ignore)")
	facadeCmd.Flags().String("version-policy", "at-least", "seed version policy (at-least|exact|ignore)")
	facadeCmd.Flags().Bool("ignore-build-revision", false, "compare major and minor versions only")
	facadeCmd.Flags().Bool("force-zero-versions", false, "emit all module references with version 0.0.0.0")
	facadeCmd.Flags().String("on-version-mismatch", "fail", "version policy violations (fail|warn)")
	facadeCmd.Flags().Bool("clear-build-revision", false, "zero the facade's own build and revision numbers")
	facadeCmd.Flags().String("file-version", "", "override the facade file version (a.b.c.d)")
	facadeCmd.Flags().Bool("design-time", false, "mark facades as reference modules")
	facadeCmd.Flags().Bool("debug-symbols", false, "write a forward map next to each facade")
	facadeCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	facadeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	facadeCmd.Flags().Bool("show-forwards", false, "list every forward of each facade")
	facadeCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

type facadeConfig struct {
	contracts, seeds, inclusion []string
	output                      string
	partial                     string
	prefer                      []string
	opts                        facade.Options
	format                      string
	ui                          uiMode
}

func runFacade(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	m, err := loadManifest(cmd)
	if err != nil {
		return err
	}
	cfg, err := resolveFacadeConfig(cmd, m)
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
	showForwards, err := cmd.Flags().GetBool("show-forwards")
	if err != nil {
		return fmt.Errorf("failed to get show-forwards flag: %w", err)
	}
	colored, err := useColor(cmd)
	if err != nil {
		return err
	}

	bag := diag.NewBag(maxDiags)
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	if cfg.opts.Preferences, err = facade.ParsePreferences(cfg.prefer, reporter); err != nil {
		return err
	}
	cfg.opts.Reporter = reporter

	ctx := cmd.Context()
	timer := observ.NewTimer()
	h := meta.NewHost()
	var req facade.Request
	err = timer.Measure("load", func() error {
		var err error
		if req.Contracts, err = meta.LoadFiles(ctx, h, "contracts", cfg.contracts, cfg.opts.Jobs); err != nil {
			return fmt.Errorf("failed to load contracts: %w", err)
		}
		if req.Seeds, err = meta.LoadFiles(ctx, h, "seeds", cfg.seeds, cfg.opts.Jobs); err != nil {
			return fmt.Errorf("failed to load seeds: %w", err)
		}
		if req.Inclusion, err = meta.LoadFiles(ctx, h, "inclusion", cfg.inclusion, cfg.opts.Jobs); err != nil {
			return fmt.Errorf("failed to load inclusion contracts: %w", err)
		}
		if cfg.partial != "" {
			ids, err := meta.LoadFiles(ctx, h, "partial", []string{cfg.partial}, 1)
			if err != nil {
				return fmt.Errorf("failed to load partial facade: %w", err)
			}
			if len(ids) != 1 {
				return fmt.Errorf("--partial %s: expected exactly one module", cfg.partial)
			}
			cfg.opts.Partial = ids[0]
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(req.Contracts) == 0 {
		return fmt.Errorf("no contract modules given")
	}
	req.Options = cfg.opts

	var res *facade.Result
	var synthErr error
	err = timer.Measure("synthesize", func() error {
		if cfg.format == "pretty" && !quiet && shouldUseTUI(cfg.ui) {
			names := make([]string, 0, len(req.Contracts))
			for _, id := range req.Contracts {
				names = append(names, h.ModuleName(id))
			}
			res, synthErr = runFacadeWithUI(ctx, "synthesizing facades", names, h, req)
		} else {
			res, synthErr = facade.Synthesize(ctx, h, req)
		}
		var se *facade.SynthesisError
		if synthErr != nil && !errors.As(synthErr, &se) {
			return synthErr
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("facade synthesis failed: %w", err)
	}

	outputs := make(map[string]string, len(res.Facades))
	err = timer.Measure("write", func() error {
		if len(res.Facades) == 0 {
			return nil
		}
		if err := os.MkdirAll(cfg.output, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		for _, fc := range res.Facades {
			path := filepath.Join(cfg.output, fc.Contract+meta.FileExt)
			if err := meta.WriteAtomic(path, fc.Bytes); err != nil {
				diag.ReportError(reporter, diag.IOWriteFailed, diag.Location{Module: fc.Contract}, err.Error()).Emit()
				continue
			}
			outputs[fc.Contract] = path
			if fc.Debug == nil {
				continue
			}
			dbgPath := filepath.Join(cfg.output, fc.Contract+facade.DebugExt)
			if err := meta.WriteAtomic(dbgPath, fc.Debug); err != nil {
				diag.ReportError(reporter, diag.IOWriteFailed, diag.Location{Module: fc.Contract}, err.Error()).Emit()
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	bag.Sort()

	out := cmd.OutOrStdout()
	switch cfg.format {
	case "pretty":
		if bag.Len() > 0 {
			report.PrettyDiagnostics(os.Stderr, bag.Items(), report.PrettyOpts{Color: colored, ShowNotes: true})
		}
		if !quiet {
			report.PrettyFacades(out, res, report.PrettyOpts{Color: colored, ShowForwards: showForwards})
		}
	case "json":
		payload := report.BuildFacadeOutput(res, outputs, bag.Items(), report.JSONOpts{Max: maxDiags, IncludeNotes: true})
		if err := report.JSON(out, payload); err != nil {
			return fmt.Errorf("failed to encode facade output: %w", err)
		}
	}
	printTimings(os.Stderr, timer, showTimings)

	if synthErr != nil || bag.HasErrors() {
		return silentFailure(cmd)
	}
	return nil
}

func resolveFacadeConfig(cmd *cobra.Command, m *project.Manifest) (facadeConfig, error) {
	var mc project.FacadeConfig
	var run project.RunConfig
	if m != nil {
		mc, run = m.Config.Facade, m.Config.Run
	}
	have := m != nil
	flags := cmd.Flags()

	var cfg facadeConfig
	var err error
	getSlice := func(name string) []string {
		if err != nil {
			return nil
		}
		var v []string
		if v, err = flags.GetStringSlice(name); err != nil {
			err = fmt.Errorf("failed to get %s flag: %w", name, err)
		}
		return v
	}
	getString := func(name string) string {
		if err != nil {
			return ""
		}
		var v string
		if v, err = flags.GetString(name); err != nil {
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

	cfg.contracts = pickPaths(cmd, "contracts", getSlice("contracts"), m, mc.Contracts)
	cfg.seeds = pickPaths(cmd, "seeds", getSlice("seeds"), m, mc.Seeds)
	cfg.inclusion = pickPaths(cmd, "inclusion", getSlice("inclusion"), m, mc.Inclusion)
	cfg.output = getString("output")
	if !flags.Changed("output") && have && mc.Output != "" {
		cfg.output = m.Resolve(mc.Output)
	}
	cfg.partial = getString("partial")
	if !flags.Changed("partial") && have && mc.Partial != "" {
		cfg.partial = m.Resolve(mc.Partial)
	}
	prefer, perr := flags.GetStringArray("prefer")
	if perr != nil && err == nil {
		err = fmt.Errorf("failed to get prefer flag: %w", perr)
	}
	cfg.prefer = pick(cmd, "prefer", prefer, mc.Preferences, have)

	missing := pickString(cmd, "missing-types", getString("missing-types"), mc.MissingTypes)
	versionMode := pickString(cmd, "version-policy", getString("version-policy"), mc.Version)
	onMismatch := pickString(cmd, "on-version-mismatch", getString("on-version-mismatch"), mc.OnMismatch)
	fileVersion := pickString(cmd, "file-version", getString("file-version"), mc.FileVersion)

	cfg.opts = facade.DefaultOptions()
	cfg.opts.Version.IgnoreBuildAndRevision = pick(cmd, "ignore-build-revision", getBool("ignore-build-revision"), mc.IgnoreBuildAndRevision, have)
	cfg.opts.Version.ForceZero = pick(cmd, "force-zero-versions", getBool("force-zero-versions"), mc.ForceZeroVersions, have)
	cfg.opts.ClearBuildAndRevision = pick(cmd, "clear-build-revision", getBool("clear-build-revision"), mc.ClearBuildAndRevision, have)
	cfg.opts.DesignTime = pick(cmd, "design-time", getBool("design-time"), mc.DesignTime, have)
	cfg.opts.DebugSymbols = pick(cmd, "debug-symbols", getBool("debug-symbols"), mc.DebugSymbols, have)
	cfg.format = getString("format")
	uiValue := getString("ui")
	if err != nil {
		return facadeConfig{}, err
	}

	if cfg.opts.MissingTypes, err = facade.ParseMissingTypePolicy(missing); err != nil {
		return facadeConfig{}, err
	}
	if cfg.opts.Version.Mode, err = facade.ParseVersionMode(versionMode); err != nil {
		return facadeConfig{}, err
	}
	if cfg.opts.Version.OnMismatch, err = facade.ParseMismatchAction(onMismatch); err != nil {
		return facadeConfig{}, err
	}
	if fileVersion != "" {
		v, err := meta.ParseVersion(fileVersion)
		if err != nil {
			return facadeConfig{}, fmt.Errorf("invalid file version %q: %w", fileVersion, err)
		}
		cfg.opts.FileVersion = &v
	}

	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return facadeConfig{}, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if !flags.Changed("jobs") && run.Jobs > 0 {
		jobs = run.Jobs
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	cfg.opts.Jobs = jobs

	switch cfg.format {
	case "pretty", "json":
	default:
		return facadeConfig{}, fmt.Errorf("unknown format: %s", cfg.format)
	}
	if cfg.ui, err = readUIMode(uiValue); err != nil {
		return facadeConfig{}, err
	}
	if cfg.output == "" {
		return facadeConfig{}, fmt.Errorf("no output directory: pass --output or set [facade].output in %s", project.ManifestName)
	}
	return cfg, nil
}

// pickString prefers an explicitly set flag, then a non-empty manifest value.
func pickString(cmd *cobra.Command, name, flagValue, manifestValue string) string {
	if cmd.Flags().Changed(name) || manifestValue == "" {
		return flagValue
	}
	return manifestValue
}
