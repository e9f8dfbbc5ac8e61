package differ

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"apiforge/internal/mapping"
	"apiforge/internal/meta"
	"apiforge/internal/trace"
)

type Engine struct {
	registry *Registry
	settings Settings
}

func NewEngine(reg *Registry, s Settings) *Engine {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Engine{registry: reg, settings: s}
}

func (e *Engine) Settings() Settings { return e.settings }

// Diff classifies a single node. Differences go to sink.
func (e *Engine) Diff(sink Sink, n *mapping.Node) DifferenceKind {
	switch n.Presence() {
	case mapping.OnlyLeft:
		return Removed
	case mapping.OnlyRight:
		if e.settings.Presence {
			e.checkPresence(sink, n)
		}
		return Added
	case mapping.Both:
	default:
		return Unknown
	}

	ran := false
	result := Unchanged
	for _, rule := range e.registry.For(n.Kind()) {
		if isOptional(rule) && !e.settings.EnforceOptional {
			continue
		}
		ran = true
		if rule.Evaluate(sink, n.Left(), n.Right()) == Changed {
			result = Changed
		}
	}
	if !ran {
		return Unknown
	}
	return result
}

// subtree is the output of walking one top-level subtree.
type subtree struct {
	records    []Record
	suppressed []Suppression
}

type runSink struct {
	host   *meta.Host
	diffs  Differences
	out    *subtree
	tracer trace.Tracer
	span   uint64
}

func (s *runSink) Host() *meta.Host { return s.host }

func (s *runSink) Add(d Difference) { s.diffs.Add(d) }

func (s *runSink) Suppressed(ruleID, docID, reason string) {
	s.out.suppressed = append(s.out.suppressed, Suppression{RuleID: ruleID, DocID: docID, Reason: reason})
	trace.Point(s.tracer, trace.ScopeModule, "exempt", ruleID+" "+docID+": "+reason, s.span)
}

// Run walks the tree and returns ordered records. With Jobs > 1 each child of
// root is walked by its own goroutine into its own buffer; buffers are merged
// in tree order, so the result equals a serial run.
func (e *Engine) Run(ctx context.Context, root *mapping.Node) (*Report, error) {
	if root == nil {
		return nil, fmt.Errorf("diff: nil tree")
	}
	tracer := trace.FromContext(ctx)
	ctx, span := trace.Start(ctx, trace.ScopePhase, "diff")

	// single writer: enumerate the top level before fanning out
	top := root.Children()
	parts := make([]subtree, len(top))

	if e.settings.Jobs > 1 && len(top) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(min(e.settings.Jobs, len(top)))
		for i, child := range top {
			g.Go(func() error {
				return e.walk(gctx, tracer, child, &parts[i])
			})
		}
		if err := g.Wait(); err != nil {
			span.End("cancelled")
			return nil, err
		}
	} else {
		for i, child := range top {
			if err := e.walk(ctx, tracer, child, &parts[i]); err != nil {
				span.End("cancelled")
				return nil, err
			}
		}
	}

	rep := merge(parts)
	span.WithExtra("records", fmt.Sprint(len(rep.Records))).End("")
	return rep, nil
}

func (e *Engine) walk(ctx context.Context, tracer trace.Tracer, start *mapping.Node, out *subtree) error {
	ctx, span := trace.Start(ctx, trace.ScopeModule, start.Kind().String()+":"+start.Key())
	defer span.End("")

	sink := &runSink{host: start.Host(), out: out, tracer: tracer, span: span.ID()}
	var err error
	mapping.Walk(start, func(n *mapping.Node) bool {
		if err != nil {
			return false
		}
		if err = ctx.Err(); err != nil {
			return false
		}
		if e.settings.TypesOnly && n.Kind() == mapping.KindMember {
			return false
		}
		sink.diffs.Reset()
		kind := e.Diff(sink, n)
		e.record(out, n, kind, sink.diffs.Items())
		return true
	})
	return err
}

func (e *Engine) record(out *subtree, n *mapping.Node, kind DifferenceKind, found []Difference) {
	if !e.settings.Include.Allows(kind) && len(found) == 0 {
		return
	}
	base := Record{
		DocID:    n.DocID(),
		Module:   enclosingModule(n),
		NodeKind: n.Kind(),
		Kind:     kind,
	}
	if len(found) == 0 {
		out.records = append(out.records, base)
		return
	}
	for _, d := range found {
		rec := base
		rec.RuleID = d.RuleID
		rec.Severity = d.Severity
		rec.Message = d.Message
		out.records = append(out.records, rec)
	}
}

// enclosingModule names the module node n sits under. A forwarded type is
// reported against the forwarding module, not the one defining it. Flat trees
// have no module nodes and fall back to the symbol's module.
func enclosingModule(n *mapping.Node) string {
	for p := n; p != nil; p = p.Parent() {
		if p.Kind() == mapping.KindModule {
			return p.ModuleName()
		}
	}
	return n.ModuleName()
}

func merge(parts []subtree) *Report {
	rep := &Report{}
	for _, p := range parts {
		rep.Records = append(rep.Records, p.records...)
		rep.Suppressed = append(rep.Suppressed, p.suppressed...)
	}
	return rep
}
