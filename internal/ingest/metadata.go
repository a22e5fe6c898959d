package ingest

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"

	"github.com/livingdw67/ira-analysis/internal/data"
	"github.com/livingdw67/ira-analysis/internal/model"
	"github.com/livingdw67/ira-analysis/internal/resolve"
)

// MetadataOptions locates the metadata table of one dataset release.
type MetadataOptions struct {
	// Root is the release directory, e.g.
	// oedi-data-lake/nrel-pds-building-stock/end-use-load-profiles-for-us-building-stock/2021/resstock_amy2018_release_1
	Root   string
	Table  string
	State  string
	Output string
}

// MetadataResult summarizes a pull.
type MetadataResult struct {
	Files   []string
	Rows    int
	Columns []string
	Output  string
}

// PullMetadata reads every Parquet file of the metadata table, keeps the rows
// for one state and writes the metadata columns to a CSV. An existing output
// file is replaced only once the new one is complete.
func PullMetadata(ctx context.Context, store data.Store, opt MetadataOptions) (*MetadataResult, error) {
	if opt.State == "" {
		return nil, model.Invalid("state", nil, "is required")
	}
	if opt.Output == "" {
		return nil, model.Invalid("output", nil, "is required")
	}
	table := opt.Table
	if table == "" {
		table = "metadata"
	}
	dir := path.Join(strings.TrimSuffix(data.TrimScheme(opt.Root), "/"), table)

	files, err := store.Glob(ctx, dir, "*.parquet")
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	if len(files) == 0 {
		listing, _ := store.List(ctx, dir)
		if len(listing) > 5 {
			listing = listing[:5]
		}
		return nil, &resolve.ResolutionError{Root: dir, Attempted: []string{path.Join(dir, "*.parquet")}, Listing: listing}
	}

	log.Printf("[Ingest] Streaming housing profiles for %s from %s (%d files)", opt.State, dir, len(files))
	merged := &data.Frame{}
	for _, f := range files {
		part, err := readStateRows(ctx, store, f, opt.State)
		if err != nil {
			return nil, err
		}
		log.Printf("[Ingest] %s: %d rows for %s", path.Base(f), part.Len(), opt.State)
		merged.Append(part)
	}

	cm, err := resolve.MetadataSchema.Resolve(merged.Columns)
	if err != nil {
		return nil, fmt.Errorf("metadata schema: %w", err)
	}
	out, err := data.ProjectMetadata(merged, cm)
	if err != nil {
		return nil, err
	}
	if err := data.WriteCSVFile(opt.Output, out); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", opt.Output, err)
	}
	log.Printf("[Ingest] Saved %d rows to %s, columns %v", out.Len(), opt.Output, out.Columns)
	return &MetadataResult{Files: files, Rows: out.Len(), Columns: out.Columns, Output: opt.Output}, nil
}

func readStateRows(ctx context.Context, store data.Store, p, state string) (*data.Frame, error) {
	raw, err := store.ReadFile(ctx, p)
	if err != nil {
		return nil, err
	}
	pf, err := data.OpenParquet(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	defer pf.Close()

	cm, err := resolve.MetadataSchema.Resolve(pf.Columns())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	if !cm.Has(string(model.FieldState)) {
		return nil, fmt.Errorf("%s: no state column, cannot filter for %s", p, state)
	}
	f, err := pf.Read(ctx, cm.Columns(resolve.MetadataSchema))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	stateName, _ := cm.Name(string(model.FieldState))
	col := -1
	for i, c := range f.Columns {
		if c == stateName {
			col = i
			break
		}
	}
	return f.Filter(col, func(v string) bool { return strings.EqualFold(strings.TrimSpace(v), state) }), nil
}
