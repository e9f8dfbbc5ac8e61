package meta

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/goleak"
)

func TestEncodeStampsSchema(t *testing.T) {
	m := fruitModule()
	data, err := Encode(m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Schema != SchemaVersion {
		t.Fatalf("want schema %d, got %d", SchemaVersion, got.Schema)
	}
	want := *m
	want.Schema = SchemaVersion
	if diff := cmp.Diff(&want, got); diff != "" {
		t.Fatalf("decoded module mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsOtherSchema(t *testing.T) {
	m := coreModule()
	m.Schema = SchemaVersion + 1
	data, err := msgpack.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := Decode(data); !errors.Is(err, ErrSchemaVersion) {
		t.Fatalf("want ErrSchemaVersion, got %v", err)
	}
	if _, err := Decode([]byte{0xc1}); !errors.Is(err, ErrMalformed) {
		t.Fatalf("want ErrMalformed, got %v", err)
	}
}

func TestLoadFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	if err := WriteFile(filepath.Join(dir, "b.apimod"), fruitModule()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := WriteFile(filepath.Join(dir, "a.apimod"), coreModule()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	h := NewHost()
	ids, err := LoadFiles(context.Background(), h, "left", []string{dir}, 4)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("want 2 modules, got %d", len(ids))
	}
	if h.ModuleName(ids[0]) != "Core" || h.ModuleName(ids[1]) != "Fruits" {
		t.Fatalf("modules must load in file name order: %s, %s", h.ModuleName(ids[0]), h.ModuleName(ids[1]))
	}
}

func TestLoadFilesReportsBrokenFile(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.apimod")
	if err := os.WriteFile(bad, []byte{0xc1, 0x00}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := LoadFiles(context.Background(), NewHost(), "left", []string{bad}, 0)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("want ErrMalformed, got %v", err)
	}
}

func TestLoadFilesCancelled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.apimod")
	if err := WriteFile(path, coreModule()); err != nil {
		t.Fatalf("write: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := LoadFiles(ctx, NewHost(), "left", []string{path}, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in   string
		want Version
		ok   bool
	}{
		{"1.2", Version{Major: 1, Minor: 2}, true},
		{"4.0.10.3", Version{Major: 4, Build: 10, Revision: 3}, true},
		{"1", Version{}, false},
		{"1.x", Version{}, false},
		{"1.2.3.4.5", Version{}, false},
	}
	for _, tt := range tests {
		got, err := ParseVersion(tt.in)
		if (err == nil) != tt.ok {
			t.Fatalf("%q: ok=%v, err=%v", tt.in, tt.ok, err)
		}
		if got != tt.want {
			t.Fatalf("%q: want %v, got %v", tt.in, tt.want, got)
		}
	}
}
