package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"apiforge/internal/diag"
	"apiforge/internal/differ"
	"apiforge/internal/mapping"
	"apiforge/internal/meta"
	"apiforge/internal/testkit"
)

func writeModule(t *testing.T, path string, m *meta.Module) {
	t.Helper()
	if err := meta.WriteFile(path, m); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDiffCommandFailsOnHierarchyChange(t *testing.T) {
	dir := t.TempDir()
	left := filepath.Join(dir, "left", "Fruits"+meta.FileExt)
	right := filepath.Join(dir, "right", "Fruits"+meta.FileExt)
	writeModule(t, left, testkit.Module("Fruits").Hierarchy("Garden", "Object", "Fruit", "Apple").Build())
	writeModule(t, right, testkit.Module("Fruits").Hierarchy("Garden", "Object", "Shape", "Apple").Build())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"diff", "--no-manifest", "--color", "off", "--format", "short", left, right})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	if !errors.Is(err, errSilent) {
		t.Fatalf("expected a silent failure, got %v", err)
	}
	want := "changed T:Garden.Apple CannotChangeInheritance incompatible:"
	if !strings.Contains(out.String(), want) {
		t.Fatalf("output lacks %q:\n%s", want, out.String())
	}
}

func TestSelectRules(t *testing.T) {
	reg := differ.DefaultRegistry(differ.RuleOptions{})

	bag := diag.NewBag(0)
	sel, err := selectRules(reg, []string{"cannotchangeinheritance", "TypeKindMustMatch"}, nil, diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, r := range sel.Rules() {
		ids = append(ids, r.ID())
	}
	if diff := cmp.Diff([]string{"CannotChangeInheritance", "TypeKindMustMatch"}, ids); diff != "" {
		t.Fatalf("selected rules mismatch (-want +got):\n%s", diff)
	}

	sel, err = selectRules(reg, nil, []string{"CannotAddAttributes"}, diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range sel.Rules() {
		if r.ID() == "CannotAddAttributes" {
			t.Fatal("disabled rule still registered")
		}
	}

	if _, err := selectRules(reg, []string{"NoSuchRule"}, nil, diag.BagReporter{Bag: bag}); err == nil {
		t.Fatal("expected an error for an unknown rule")
	}
	if got := len(bag.ByCode(diag.CfgUnknownRule)); got != 1 {
		t.Fatalf("got %d unknown-rule diagnostics, want 1", got)
	}
}

func TestParseInclude(t *testing.T) {
	in, err := parseInclude([]string{"Added", " removed "})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(differ.Include{Added: true, Removed: true}, in); diff != "" {
		t.Fatalf("include mismatch (-want +got):\n%s", diff)
	}
	if _, err := parseInclude([]string{"moved"}); err == nil {
		t.Fatal("expected an error for an unknown kind")
	}
}

func TestPackRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := testkit.Module("Widgets").Version(2, 1, 0, 0).Type("Acme", "Foo").Build()
	data, err := json.Marshal(src)
	if err != nil {
		t.Fatal(err)
	}
	jsonPath := filepath.Join(dir, "widgets.json")
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		t.Fatal(err)
	}

	target, err := packFile(jsonPath, filepath.Join(dir, "out"))
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "out", "widgets"+meta.FileExt); target != want {
		t.Fatalf("target = %s, want %s", target, want)
	}
	got, err := meta.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Widgets" || got.Version != src.Version || len(got.Types) != 1 {
		t.Fatalf("unexpected module %+v", got)
	}
}

func TestPackRejectsNamelessModule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"types": []}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := packFile(path, ""); err == nil {
		t.Fatal("expected an error")
	}
}

func TestDumpTree(t *testing.T) {
	h := meta.NewHost()
	left := testkit.Load(t, h, "left", testkit.Module("Fruits").Type("Garden", "Apple").Build())
	right := testkit.Load(t, h, "right", testkit.Module("Fruits").Type("Garden", "Apple").Type("Garden", "Pear").Build())
	root, err := mapping.Build(h, left, right, nil, mapping.DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	dumpTree(&buf, root, 0)
	out := buf.String()
	for _, want := range []string{"<modules>", "both  T:Garden.Apple", "right T:Garden.Pear"} {
		if !strings.Contains(out, want) {
			t.Fatalf("dump lacks %q:\n%s", want, out)
		}
	}
}
