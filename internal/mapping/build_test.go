package mapping_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"apiforge/internal/diag"
	"apiforge/internal/mapping"
	"apiforge/internal/meta"
	"apiforge/internal/testkit"
)

// render lists every node as "<indent><kind> <key> <presence>".
func render(root *mapping.Node) []string {
	var out []string
	depth := map[*mapping.Node]int{root: 0}
	mapping.Walk(root, func(n *mapping.Node) bool {
		d := 0
		if p := n.Parent(); p != nil {
			d = depth[p] + 1
		}
		depth[n] = d
		if n != root {
			out = append(out, strings.Repeat("  ", d-1)+n.Kind().String()+" "+n.Key()+" "+n.Presence().String())
		}
		return true
	})
	return out
}

func TestBuildAlignsModules(t *testing.T) {
	h := meta.NewHost()
	int32Ref := testkit.Ref("Core", "System", "Int32")
	left := testkit.Load(t, h, "left",
		testkit.Module("Fruits").
			Type("Garden", "Apple", testkit.Members(
				testkit.Method("Peel", nil),
				testkit.Field("Weight", int32Ref),
			)).
			Type("Garden", "Pear").
			Type("Garden.Internal", "Helper", testkit.Visibility(meta.VisInternal)).
			Build(),
		testkit.Module("Legacy").Type("Old", "Thing").Build(),
	)
	right := testkit.Load(t, h, "right",
		testkit.Module("Fruits").
			Type("Garden", "Apple", testkit.Members(
				testkit.Method("Peel", nil),
				testkit.Method("Peel", nil, int32Ref),
				testkit.Property("Weight", int32Ref),
			), testkit.Nested("Core")).
			Type("Garden.Exotic", "Mango", testkit.Arity(1)).
			Build(),
	)

	root, err := mapping.Build(h, left, right, nil, mapping.DefaultSettings())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := []string{
		"module Fruits both",
		"  namespace Garden both",
		"    type Apple both",
		"      type Core right",
		"      member M:Peel both",
		"      member M:Peel(System.Int32) right",
		"      member Weight both",
		"    type Pear left",
		"  namespace Garden.Exotic right",
		"    type Mango`1 right",
		"module Legacy left",
		"  namespace Old left",
		"    type Thing left",
	}
	if diff := cmp.Diff(want, render(root)); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
	if err := testkit.CheckTreeInvariants(root); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

func TestBuildEmptyInput(t *testing.T) {
	if _, err := mapping.Build(meta.NewHost(), nil, nil, nil, mapping.DefaultSettings()); !errors.Is(err, mapping.ErrEmptyInput) {
		t.Fatalf("want ErrEmptyInput, got %v", err)
	}
}

func TestBuildOneSidedSet(t *testing.T) {
	h := meta.NewHost()
	right := testkit.Load(t, h, "right", testkit.Module("New").Type("N", "T").Build())
	root, err := mapping.Build(h, nil, right, nil, mapping.DefaultSettings())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	mapping.Walk(root, func(n *mapping.Node) bool {
		if n != root && n.Presence() != mapping.OnlyRight {
			t.Fatalf("%s %q: want right only, got %s", n.Kind(), n.Key(), n.Presence())
		}
		return true
	})
}

func TestForwardedTypesAppearInForwardingModule(t *testing.T) {
	h := meta.NewHost()
	left := testkit.Load(t, h, "left",
		testkit.Module("Contracts").Type("System", "Apple").Type("System", "Pear").Build())
	right := testkit.Load(t, h, "right",
		testkit.Module("Contracts").
			Forward("Impl", "System", "Apple").
			Forward("Impl", "System", "Pear").
			Forward("Gone", "System", "Plum").
			Build(),
		testkit.Module("Impl").Type("System", "Apple").Build(),
	)

	bag := diag.NewBag(0)
	opts := mapping.DefaultSettings()
	opts.Reporter = diag.BagReporter{Bag: bag}
	root, err := mapping.Build(h, left, right[:1], nil, opts)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := []string{
		"module Contracts both",
		"  namespace System both",
		"    type Apple both",
		"    type Pear left",
	}
	if diff := cmp.Diff(want, render(root)); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
	unresolved := bag.ByCode(diag.MapUnresolvedForward)
	if len(unresolved) != 2 {
		t.Fatalf("want 2 unresolved-forward warnings, got %d", len(unresolved))
	}
	for _, d := range unresolved {
		if d.Severity != diag.SevWarning {
			t.Fatalf("unresolved forward must be a warning, got %s", d.Severity)
		}
	}
}

func TestNamespaceWithoutIncludedTypesIsSkipped(t *testing.T) {
	h := meta.NewHost()
	left := testkit.Load(t, h, "left",
		testkit.Module("M").
			Type("Hidden", "Impl", testkit.Visibility(meta.VisInternal)).
			Type("Shown.Deep.Deeper", "T").
			Build())
	root, err := mapping.Build(h, left, nil, nil, mapping.DefaultSettings())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := []string{
		"module M left",
		"  namespace Shown.Deep.Deeper left",
		"    type T left",
	}
	if diff := cmp.Diff(want, render(root)); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenModules(t *testing.T) {
	h := meta.NewHost()
	left := testkit.Load(t, h, "left",
		testkit.Module("A").Type("System", "One").Build(),
		testkit.Module("B").Type("System", "Two").Build(),
	)
	right := testkit.Load(t, h, "right",
		testkit.Module("AB").Type("System", "One").Type("System", "Two").Build(),
	)
	root, err := mapping.Build(h, left, right, nil, mapping.Settings{GroupByModule: false})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := []string{
		"namespace System both",
		"  type One both",
		"  type Two both",
	}
	if diff := cmp.Diff(want, render(root)); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
	ns := root.Children()[0]
	if len(ns.Parts(0)) != 2 || len(ns.Parts(1)) != 1 {
		t.Fatalf("merged namespace parts: left=%d right=%d", len(ns.Parts(0)), len(ns.Parts(1)))
	}
}

func TestDuplicateTypeAcrossMergedModules(t *testing.T) {
	h := meta.NewHost()
	left := testkit.Load(t, h, "left",
		testkit.Module("A").Type("System", "One").Build(),
		testkit.Module("B").Type("System", "One").Build(),
	)
	bag := diag.NewBag(0)
	root, err := mapping.Build(h, left, nil, nil, mapping.Settings{Reporter: diag.BagReporter{Bag: bag}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	mapping.Count(root)
	if n := len(bag.ByCode(diag.MapDuplicateType)); n != 1 {
		t.Fatalf("want 1 duplicate warning, got %d", n)
	}
	one := root.Children()[0].Children()[0]
	if got := h.ModuleName(one.Left().Module); got != "A" {
		t.Fatalf("first definition must win, got %s", got)
	}
}

func TestChildrenComputedOnceUnderConcurrency(t *testing.T) {
	h := meta.NewHost()
	left := testkit.Load(t, h, "left", testkit.Module("M").
		Type("N", "T", testkit.Members(testkit.Method("A", nil), testkit.Method("B", nil))).Build())
	root, err := mapping.Build(h, left, left, nil, mapping.DefaultSettings())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	typ := root.Children()[0].Children()[0].Children()[0]

	var wg sync.WaitGroup
	results := make([][]*mapping.Node, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = typ.Children()
		}()
	}
	wg.Wait()
	for i := 1; i < len(results); i++ {
		if &results[i][0] != &results[0][0] {
			t.Fatalf("goroutine %d saw a different children slice", i)
		}
	}
}

func TestFilterAppliesToMembersAndNestedTypes(t *testing.T) {
	h := meta.NewHost()
	hidden := testkit.Method("Secret", nil)
	hidden.Visibility = meta.VisPrivate
	left := testkit.Load(t, h, "left", testkit.Module("M").
		Type("N", "T",
			testkit.Members(testkit.Method("Open", nil), hidden),
			testkit.Nested("Inner", testkit.Visibility(meta.VisPrivate)),
		).Build())

	root, err := mapping.Build(h, left, nil, meta.NewFilter(meta.FilterOptions{}), mapping.DefaultSettings())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	typ := root.Children()[0].Children()[0].Children()[0]
	if got := len(typ.Children()); got != 1 {
		t.Fatalf("want only the public member, got %d children", got)
	}

	root, err = mapping.Build(h, left, nil, meta.NewFilter(meta.FilterOptions{IncludePrivates: true}), mapping.DefaultSettings())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	typ = root.Children()[0].Children()[0].Children()[0]
	if got := len(typ.Children()); got != 3 {
		t.Fatalf("want 3 children with privates, got %d", got)
	}
}
