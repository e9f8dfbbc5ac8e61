package facade

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"apiforge/internal/meta"
)

// DebugMap is the debug-symbol stream paired with a facade. It records where
// each forward points; Base carries the stream of a patched partial module.
type DebugMap struct {
	Schema   uint16       `msgpack:"schema"`
	Module   string       `msgpack:"module"`
	Version  meta.Version `msgpack:"version"`
	Forwards []DebugEntry `msgpack:"forwards"`
	Base     []byte       `msgpack:"base,omitempty"`
}

type DebugEntry struct {
	DocID string        `msgpack:"doc_id"`
	Seed  meta.Identity `msgpack:"seed"`
}

// DebugExt is the extension of debug-symbol streams written next to facades.
const DebugExt = ".apidbg"

func encodeFacade(out *meta.Module, forwards []Forward, withDebug bool, base []byte) (mod, dbg []byte, err error) {
	mod, err = meta.Encode(out)
	if err != nil {
		return nil, nil, fmt.Errorf("encode facade %s: %w", out.Name, err)
	}
	if !withDebug {
		return mod, nil, nil
	}
	dm := DebugMap{
		Schema:   meta.SchemaVersion,
		Module:   out.Name,
		Version:  out.Version,
		Forwards: make([]DebugEntry, 0, len(forwards)),
		Base:     base,
	}
	for _, fw := range forwards {
		dm.Forwards = append(dm.Forwards, DebugEntry{DocID: fw.DocID, Seed: fw.Seed})
	}
	dbg, err = msgpack.Marshal(&dm)
	if err != nil {
		return nil, nil, fmt.Errorf("encode debug map %s: %w", out.Name, err)
	}
	return mod, dbg, nil
}

// DecodeDebugMap parses a debug-symbol stream.
func DecodeDebugMap(data []byte) (*DebugMap, error) {
	var dm DebugMap
	if err := msgpack.Unmarshal(data, &dm); err != nil {
		return nil, fmt.Errorf("%w: %w", meta.ErrMalformed, err)
	}
	if dm.Schema != meta.SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", meta.ErrSchemaVersion, dm.Schema, meta.SchemaVersion)
	}
	return &dm, nil
}
