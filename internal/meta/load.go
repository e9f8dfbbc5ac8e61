package meta

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ExpandPaths replaces directories with the module files they contain,
// sorted by name. Plain files are kept in the given order.
func ExpandPaths(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !st.IsDir() {
			out = append(out, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		var files []string
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), FileExt) {
				files = append(files, filepath.Join(p, e.Name()))
			}
		}
		sort.Strings(files)
		out = append(out, files...)
	}
	return out, nil
}

// LoadFiles decodes module files concurrently and registers them with the
// host in the order given. jobs <= 0 uses GOMAXPROCS.
func LoadFiles(ctx context.Context, h *Host, group string, paths []string, jobs int) ([]ModuleID, error) {
	files, err := ExpandPaths(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	decoded := make([]*Module, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := ReadFile(path)
			if err != nil {
				return err
			}
			decoded[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := make([]ModuleID, 0, len(decoded))
	for i, m := range decoded {
		id, err := h.Add(m, files[i], group)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", group, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
