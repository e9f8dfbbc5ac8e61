package facade

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"apiforge/internal/diag"
	"apiforge/internal/meta"
)

// contractTable is the set of doc-ids one contract must forward.
type contractTable struct {
	module meta.ModuleID
	name   string
	docIDs []string
}

type candidate struct {
	module meta.ModuleID
	typ    meta.TypeID
}

// seedTable maps a type doc-id to every seed defining it, in seed order.
type seedTable map[string][]candidate

// buildContractTables collects the doc-ids of each contract and unions the
// inclusion contracts into the contract of the same name.
func buildContractTables(h *meta.Host, contracts, inclusion []meta.ModuleID, r diag.Reporter) []contractTable {
	sets := make([]map[string]struct{}, 0, len(contracts))
	tables := make([]contractTable, 0, len(contracts))
	byName := make(map[string]int, len(contracts))
	for _, mod := range contracts {
		name := h.ModuleName(mod)
		if first, dup := byName[name]; dup {
			diag.ReportError(r, diag.FacDuplicateContract, diag.Location{Module: name},
				fmt.Sprintf("multiple contracts named %q", name)).
				WithNote(diag.Location{Module: h.ModuleOrigin(tables[first].module)}, "first contract").
				WithNote(diag.Location{Module: h.ModuleOrigin(mod)}, "duplicate contract").
				Emit()
			continue
		}
		byName[name] = len(tables)
		tables = append(tables, contractTable{module: mod, name: name})
		sets = append(sets, docIDsToForward(h, mod))
	}
	for _, mod := range inclusion {
		name := h.ModuleName(mod)
		i, ok := byName[name]
		if !ok {
			diag.ReportWarning(r, diag.FacInclusionIgnored, diag.Location{Module: name},
				fmt.Sprintf("inclusion contract %q has no contract of the same name; ignoring", name)).Emit()
			continue
		}
		for id := range docIDsToForward(h, mod) {
			sets[i][id] = struct{}{}
		}
	}
	for i := range tables {
		tables[i].docIDs = sortedDocIDs(sets[i])
	}
	return tables
}

// docIDsToForward lists the public top-level types of mod and the targets of
// its own forwards.
func docIDsToForward(h *meta.Host, mod meta.ModuleID) map[string]struct{} {
	out := make(map[string]struct{})
	for _, id := range h.TopLevelTypes(mod) {
		if h.Type(id).Visibility != meta.VisPublic {
			continue
		}
		out[h.DocID(h.TypeSymbol(id))] = struct{}{}
	}
	if def := h.Module(mod); def != nil {
		for _, fw := range def.Forwards {
			out[meta.RefDocID(fw.Target)] = struct{}{}
		}
	}
	return out
}

// sortedDocIDs orders doc-ids ignoring case, ordinal on ties.
func sortedDocIDs(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToUpper(out[i]), strings.ToUpper(out[j])
		if a != b {
			return a < b
		}
		return out[i] < out[j]
	})
	return out
}

// buildSeedTable indexes the public top-level types of every seed. Seeds are
// scanned concurrently; the merge keeps seed order.
func buildSeedTable(ctx context.Context, h *meta.Host, seeds []meta.ModuleID, jobs int) (seedTable, error) {
	parts := make([]map[string]meta.TypeID, len(seeds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(seeds))))
	for i, seed := range seeds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			parts[i] = seedTypes(h, seed)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	table := make(seedTable)
	for i, seed := range seeds {
		for docID, id := range parts[i] {
			table[docID] = append(table[docID], candidate{module: seed, typ: id})
		}
	}
	return table, nil
}

func seedTypes(h *meta.Host, seed meta.ModuleID) map[string]meta.TypeID {
	ids := h.TopLevelTypes(seed)
	out := make(map[string]meta.TypeID, len(ids))
	for _, id := range ids {
		if h.Type(id).Visibility != meta.VisPublic {
			continue
		}
		out[h.DocID(h.TypeSymbol(id))] = id
	}
	return out
}
