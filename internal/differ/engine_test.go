package differ_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"apiforge/internal/differ"
	"apiforge/internal/mapping"
	"apiforge/internal/meta"
	"apiforge/internal/testkit"
)

func build(t *testing.T, left, right []*meta.Module) (*meta.Host, *mapping.Node) {
	t.Helper()
	h := meta.NewHost()
	l := testkit.Load(t, h, "left", left...)
	r := testkit.Load(t, h, "right", right...)
	root, err := mapping.Build(h, l, r, nil, mapping.DefaultSettings())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return h, root
}

func rows(rep *differ.Report) []string {
	out := make([]string, 0, len(rep.Records))
	for _, r := range rep.Records {
		row := r.DocID + " " + r.Kind.String()
		if r.RuleID != "" {
			row += " " + r.RuleID
		}
		out = append(out, row)
	}
	return out
}

func fruitsV1() *meta.Module {
	i32 := testkit.Ref("Core", "System", "Int32")
	return testkit.Module("Fruits").
		Hierarchy("Garden", "Object", "Fruit", "Apple").
		Type("Garden", "Basket", testkit.Members(
			testkit.Method("Add", nil, i32),
			testkit.Field("Count", i32),
			testkit.Method("Clear", nil),
		)).
		Type("Garden", "Pear").
		Build()
}

func fruitsV2() *meta.Module {
	i32 := testkit.Ref("Core", "System", "Int32")
	i64 := testkit.Ref("Core", "System", "Int64")
	return testkit.Module("Fruits").
		Type("Garden", "Object").
		Type("Garden", "Shape", testkit.Base("", "Garden", "Object")).
		Type("Garden", "Apple", testkit.Base("", "Garden", "Shape"), testkit.Sealed()).
		Type("Garden", "Basket", testkit.Members(
			testkit.Method("Add", nil, i32),
			testkit.Property("Count", i64),
			testkit.Method("Empty", nil),
		)).
		Build()
}

func TestRunClassifiesEveryNode(t *testing.T) {
	_, root := build(t, []*meta.Module{fruitsV1()}, []*meta.Module{fruitsV2()})
	settings := differ.DefaultSettings()
	settings.Include = differ.IncludeAll()
	rep, err := differ.NewEngine(differ.DefaultRegistry(differ.RuleOptions{}), settings).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{
		"Fruits unchanged",
		"N:Garden unknown",
		"T:Garden.Apple changed CannotChangeInheritance",
		"T:Garden.Apple changed CannotSealType",
		"T:Garden.Basket unchanged",
		"P:Garden.Basket.Count changed MemberKindMustMatch",
		"P:Garden.Basket.Count changed ReturnTypeMustMatch",
		"M:Garden.Basket.Add(System.Int32) unchanged",
		"M:Garden.Basket.Clear removed",
		"M:Garden.Basket.Empty added",
		"T:Garden.Fruit removed",
		"T:Garden.Object unchanged",
		"T:Garden.Pear removed",
		"T:Garden.Shape added",
	}
	if diff := cmp.Diff(want, rows(rep)); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
	if got := rep.Incompatible(); got != 4 {
		t.Fatalf("want 4 incompatible records, got %d", got)
	}
	if got := rep.Count(differ.Changed); got != 2 {
		t.Fatalf("want 2 changed nodes, got %d", got)
	}
}

func TestSameDocIDInTwoModulesKeepsBothRecords(t *testing.T) {
	left := []*meta.Module{
		testkit.Module("Alpha").Type("N", "Foo").Build(),
		testkit.Module("Beta").Type("N", "Foo").Build(),
	}
	right := []*meta.Module{
		testkit.Module("Alpha").Type("N", "Foo", testkit.Sealed()).Build(),
		testkit.Module("Beta").Type("N", "Foo", testkit.Sealed()).Build(),
	}
	for _, jobs := range []int{1, 2} {
		_, root := build(t, left, right)
		s := differ.DefaultSettings()
		s.Jobs = jobs
		rep, err := differ.NewEngine(differ.DefaultRegistry(differ.RuleOptions{}), s).Run(context.Background(), root)
		if err != nil {
			t.Fatalf("run jobs=%d: %v", jobs, err)
		}
		var got []string
		for _, r := range rep.Differences() {
			got = append(got, r.Module+" "+r.DocID+" "+r.RuleID)
		}
		want := []string{
			"Alpha T:N.Foo CannotSealType",
			"Beta T:N.Foo CannotSealType",
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("jobs=%d findings mismatch (-want +got):\n%s", jobs, diff)
		}
		if n := rep.Count(differ.Changed); n != 2 {
			t.Fatalf("jobs=%d: want 2 changed nodes, got %d", jobs, n)
		}
	}
}

func TestRunIsIdempotent(t *testing.T) {
	_, root := build(t, []*meta.Module{fruitsV1()}, []*meta.Module{fruitsV2()})
	engine := differ.NewEngine(differ.DefaultRegistry(differ.RuleOptions{}), differ.DefaultSettings())
	first, err := engine.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	second, err := engine.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("second run differs (-first +second):\n%s", diff)
	}
}

func TestParallelRunMatchesSerial(t *testing.T) {
	defer goleak.VerifyNone(t)

	left := []*meta.Module{fruitsV1(), testkit.Module("Tools").Type("T", "Hammer").Build(), testkit.Module("Old").Type("O", "Gone").Build()}
	right := []*meta.Module{fruitsV2(), testkit.Module("Tools").Type("T", "Hammer", testkit.Abstract()).Build()}

	run := func(jobs int) *differ.Report {
		_, root := build(t, left, right)
		s := differ.DefaultSettings()
		s.Include = differ.IncludeAll()
		s.Jobs = jobs
		rep, err := differ.NewEngine(differ.DefaultRegistry(differ.RuleOptions{}), s).Run(context.Background(), root)
		if err != nil {
			t.Fatalf("run jobs=%d: %v", jobs, err)
		}
		return rep
	}
	serial, parallel := run(1), run(4)
	if diff := cmp.Diff(serial, parallel); diff != "" {
		t.Fatalf("parallel output differs (-serial +parallel):\n%s", diff)
	}
}

func TestRunCancelled(t *testing.T) {
	_, root := build(t, []*meta.Module{fruitsV1()}, []*meta.Module{fruitsV2()})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := differ.NewEngine(differ.DefaultRegistry(differ.RuleOptions{}), differ.DefaultSettings()).Run(ctx, root)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestIdenticalSurfacesHaveNoFindings(t *testing.T) {
	_, root := build(t, []*meta.Module{fruitsV1()}, []*meta.Module{fruitsV1()})
	s := differ.DefaultSettings()
	s.Presence = true
	s.EnforceOptional = true
	rep, err := differ.NewEngine(differ.DefaultRegistry(differ.RuleOptions{}), s).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(rep.Records) != 0 {
		t.Fatalf("want no records, got %v", rows(rep))
	}
}

func TestNoRulesLeavesBothSidedNodesUnknown(t *testing.T) {
	_, root := build(t, []*meta.Module{fruitsV1()}, []*meta.Module{fruitsV1()})
	s := differ.DefaultSettings()
	s.Include = differ.IncludeAll()
	rep, err := differ.NewEngine(differ.NewRegistry(), s).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, r := range rep.Records {
		if r.Kind != differ.Unknown {
			t.Fatalf("%s: want unknown without rules, got %s", r.DocID, r.Kind)
		}
	}
}

func TestTypesOnlySkipsMembers(t *testing.T) {
	_, root := build(t, []*meta.Module{fruitsV1()}, []*meta.Module{fruitsV2()})
	s := differ.DefaultSettings()
	s.TypesOnly = true
	rep, err := differ.NewEngine(differ.DefaultRegistry(differ.RuleOptions{}), s).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, r := range rep.Records {
		if r.NodeKind == mapping.KindMember {
			t.Fatalf("member record %s with TypesOnly", r.DocID)
		}
	}
}

func TestPresenceHonoursBaseTypes(t *testing.T) {
	contract := testkit.Module("Api").
		Type("N", "Widget", testkit.Members(testkit.Method("Draw", nil), testkit.Method("Resize", nil))).
		Type("N", "Gadget", testkit.Members(testkit.Method("Spin", nil))).
		Build()
	impl := testkit.Module("Api").
		Type("N", "Control", testkit.Members(testkit.Method("Draw", nil))).
		Type("N", "Widget", testkit.Base("", "N", "Control")).
		Build()

	_, root := build(t, []*meta.Module{impl}, []*meta.Module{contract})
	s := differ.DefaultSettings()
	s.Presence = true
	rep, err := differ.NewEngine(differ.DefaultRegistry(differ.RuleOptions{}), s).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var missing []string
	for _, r := range rep.Differences() {
		if r.RuleID == differ.MustExistID {
			missing = append(missing, r.DocID)
		}
	}
	want := []string{"T:N.Gadget", "M:N.Widget.Resize"}
	if diff := cmp.Diff(want, missing); diff != "" {
		t.Fatalf("missing mismatch (-want +got):\n%s", diff)
	}
}

func TestOptionalRulesNeedEnforcement(t *testing.T) {
	left := testkit.Module("M").Type("N", "T").Build()
	right := testkit.Module("M").Type("N", "T", testkit.TypeAttribute("N", "MarkerAttribute")).Build()
	for _, enforce := range []bool{false, true} {
		_, root := build(t, []*meta.Module{left}, []*meta.Module{right})
		s := differ.DefaultSettings()
		s.EnforceOptional = enforce
		rep, err := differ.NewEngine(differ.DefaultRegistry(differ.RuleOptions{}), s).Run(context.Background(), root)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if got := rep.Incompatible() == 1; got != enforce {
			t.Fatalf("enforce=%v: records %v", enforce, rows(rep))
		}
	}
}

func TestDescribeSortsCaseInsensitively(t *testing.T) {
	infos := differ.DefaultRegistry(differ.RuleOptions{}).Describe()
	var ids []string
	for _, in := range infos {
		ids = append(ids, in.ID)
		if in.ID == "CannotAddAttributes" && !in.Optional {
			t.Fatalf("CannotAddAttributes must be optional")
		}
	}
	for i := 1; i < len(ids); i++ {
		if strings.ToLower(ids[i-1]) > strings.ToLower(ids[i]) {
			t.Fatalf("rules out of order: %v", ids)
		}
	}
	if len(ids) != 11 {
		t.Fatalf("want 11 distinct rules, got %d: %v", len(ids), ids)
	}
}
