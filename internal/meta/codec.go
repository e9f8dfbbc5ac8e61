package meta

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// FileExt is the extension of persisted module files.
const FileExt = ".apimod"

var (
	ErrSchemaVersion = errors.New("unsupported module schema version")
	ErrMalformed     = errors.New("malformed module")
)

// Encode serializes m, stamping the current schema version.
func Encode(m *Module) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("encode: %w", ErrMalformed)
	}
	out := *m
	out.Schema = SchemaVersion
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(&out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses a module document and validates its schema version.
func Decode(data []byte) (*Module, error) {
	var m Module
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if m.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchemaVersion, m.Schema, SchemaVersion)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, errMissingName)
	}
	return &m, nil
}

func ReadFile(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// WriteFile encodes m next to path and renames it into place.
func WriteFile(path string, m *Module) error {
	data, err := Encode(m)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return WriteAtomic(path, data)
}

// WriteAtomic writes data through a temp file in the target directory.
func WriteAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
