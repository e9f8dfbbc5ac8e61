package facade

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"apiforge/internal/diag"
	"apiforge/internal/meta"
	"apiforge/internal/trace"
)

type Request struct {
	Contracts []meta.ModuleID
	Seeds     []meta.ModuleID
	// Inclusion modules add their doc-ids to the contract of the same name.
	Inclusion []meta.ModuleID
	Options   Options
}

// Facade is the synthesized module of one contract.
type Facade struct {
	Contract string
	Module   *meta.Module
	Bytes    []byte
	Debug    []byte
	Forwards []Forward
	Partial  bool
}

type Result struct {
	Facades    []Facade
	Unresolved []Missing
	Ambiguous  []Ambiguity
	Warnings   []diag.Diagnostic
}

// outcome is the private buffer of one contract.
type outcome struct {
	facade  *Facade
	binding binding
	bag     *diag.Bag
}

// Synthesize builds one facade per contract. Cancellation is the only error
// that is not a *SynthesisError; on a SynthesisError the returned Result
// still lists the unresolved and ambiguous types, but only contracts without
// errors get a facade.
func Synthesize(ctx context.Context, h *meta.Host, req Request) (*Result, error) {
	opts := req.Options
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}
	ctx, span := trace.Start(ctx, trace.ScopePhase, "facade")

	runBag := diag.NewBag(0)
	tables := buildContractTables(h, req.Contracts, req.Inclusion, diag.BagReporter{Bag: runBag})
	partialFor := -1
	if opts.Partial.IsValid() {
		name := h.ModuleName(opts.Partial)
		for i := range tables {
			if tables[i].name == name {
				partialFor = i
				break
			}
		}
		if partialFor < 0 {
			diag.ReportError(diag.BagReporter{Bag: runBag}, diag.FacPartialMismatch, diag.Location{Module: name},
				fmt.Sprintf("partial facade %s matches no contract", name)).Emit()
		}
	}

	seeds, err := buildSeedTable(ctx, h, req.Seeds, opts.Jobs)
	if err != nil {
		span.End("cancelled")
		return nil, err
	}
	span.WithExtra("contracts", fmt.Sprint(len(tables))).WithExtra("seed_types", fmt.Sprint(len(seeds)))

	sink := opts.progress()
	for _, t := range tables {
		sink.OnEvent(Event{Contract: t.name, Stage: StageTables, Status: StatusQueued})
	}

	outcomes := make([]outcome, len(tables))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(opts.Jobs, len(tables))))
	for i := range tables {
		g.Go(func() error {
			return synthesizeOne(gctx, h, &tables[i], i == partialFor, seeds, opts, &outcomes[i])
		})
	}
	if err := g.Wait(); err != nil {
		span.End("cancelled")
		return nil, err
	}

	res := &Result{}
	all := diag.NewBag(0)
	all.Merge(runBag)
	for i := range outcomes {
		o := &outcomes[i]
		all.Merge(o.bag)
		res.Unresolved = append(res.Unresolved, o.binding.missing...)
		res.Ambiguous = append(res.Ambiguous, o.binding.ambiguous...)
		if o.facade != nil && !o.bag.HasErrors() {
			res.Facades = append(res.Facades, *o.facade)
		}
	}
	var problems []diag.Diagnostic
	for _, d := range all.Items() {
		switch d.Severity {
		case diag.SevError:
			problems = append(problems, d)
		case diag.SevWarning:
			res.Warnings = append(res.Warnings, d)
		}
		if opts.Reporter != nil {
			opts.Reporter.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
		}
	}
	span.WithExtra("facades", fmt.Sprint(len(res.Facades))).End("")
	if len(problems) > 0 {
		return res, &SynthesisError{Problems: problems}
	}
	return res, nil
}

func synthesizeOne(ctx context.Context, h *meta.Host, t *contractTable, partial bool, seeds seedTable, opts Options, out *outcome) error {
	ctx, span := trace.Start(ctx, trace.ScopeModule, t.name)
	defer span.End("")
	sink := opts.progress()
	start := time.Now()
	out.bag = diag.NewBag(0)
	r := diag.BagReporter{Bag: out.bag}

	fail := func(stage Stage, err error) error {
		sink.OnEvent(Event{Contract: t.name, Stage: stage, Status: StatusError, Err: err, Elapsed: time.Since(start)})
		return err
	}
	if err := ctx.Err(); err != nil {
		return fail(StageResolve, err)
	}

	sink.OnEvent(Event{Contract: t.name, Stage: StageResolve, Status: StatusWorking})
	docIDs := t.docIDs
	if partial {
		if !checkPartialIdentity(h.Module(t.module), h.Module(opts.Partial), opts.Version, r) {
			return fail(StageResolve, nil)
		}
		docIDs = undefinedIn(h, opts.Partial, docIDs)
	}
	out.binding = bind(h, t.name, docIDs, seeds, opts, r)
	checkVersions(h, t.module, out.binding.forwards, opts.Version, r)

	sink.OnEvent(Event{Contract: t.name, Stage: StageRewrite, Status: StatusWorking})
	var mod *meta.Module
	var base []byte
	if partial {
		mod = rewritePartial(h, opts.Partial, out.binding.forwards, opts, r)
		base = h.Module(opts.Partial).DebugSymbols
	} else {
		mod = rewriteContract(h, t.module, out.binding.forwards, opts, r)
	}
	if len(mod.Forwards) == 0 {
		diag.ReportWarning(r, diag.FacNoForwards, diag.Location{Module: t.name}, "facade contains no type forwards").Emit()
	}
	if out.bag.HasErrors() {
		return fail(StageRewrite, nil)
	}

	sink.OnEvent(Event{Contract: t.name, Stage: StageEmit, Status: StatusWorking})
	data, dbg, err := encodeFacade(mod, out.binding.forwards, opts.DebugSymbols, base)
	if err != nil {
		diag.ReportError(r, diag.IOWriteFailed, diag.Location{Module: t.name}, err.Error()).Emit()
		return fail(StageEmit, nil)
	}
	out.facade = &Facade{
		Contract: t.name,
		Module:   mod,
		Bytes:    data,
		Debug:    dbg,
		Forwards: out.binding.forwards,
		Partial:  partial,
	}
	span.WithExtra("forwards", fmt.Sprint(len(out.binding.forwards)))
	sink.OnEvent(Event{Contract: t.name, Stage: StageEmit, Status: StatusDone, Elapsed: time.Since(start)})
	return nil
}
