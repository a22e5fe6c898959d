package data

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/file"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"
)

// ParquetFile is an in-memory Parquet file opened for column reads.
type ParquetFile struct {
	rdr *file.Reader
	mem memory.Allocator
}

func OpenParquet(raw []byte) (*ParquetFile, error) {
	mem := memory.NewGoAllocator()
	rdr, err := file.NewParquetReader(bytes.NewReader(raw), file.WithReadProps(parquet.NewReaderProperties(mem)))
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}
	return &ParquetFile{rdr: rdr, mem: mem}, nil
}

func (p *ParquetFile) Close() error { return p.rdr.Close() }

func (p *ParquetFile) NumRows() int64 { return p.rdr.NumRows() }

// Columns returns the leaf column names in file order.
func (p *ParquetFile) Columns() []string {
	sc := p.rdr.MetaData().Schema
	out := make([]string, sc.NumColumns())
	for i := range out {
		out[i] = sc.Column(i).Name()
	}
	return out
}

// Read loads the named columns (all columns when names is empty) into a Frame.
// Names are matched against leaf names, so dotted names such as
// "out.electricity.total.energy_consumption" are taken literally.
func (p *ParquetFile) Read(ctx context.Context, names []string) (*Frame, error) {
	all := p.Columns()
	var indices []int
	if len(names) == 0 {
		indices = make([]int, len(all))
		for i := range all {
			indices[i] = i
		}
	} else {
		pos := make(map[string]int, len(all))
		for i, n := range all {
			pos[n] = i
		}
		for _, n := range names {
			i, ok := pos[n]
			if !ok {
				return nil, fmt.Errorf("parquet column %q not found", n)
			}
			indices = append(indices, i)
		}
	}
	rowGroups := make([]int, p.rdr.NumRowGroups())
	for i := range rowGroups {
		rowGroups[i] = i
	}

	fr, err := pqarrow.NewFileReader(p.rdr, pqarrow.ArrowReadProperties{Parallel: true, BatchSize: 64 * 1024}, p.mem)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}
	tbl, err := fr.ReadRowGroups(ctx, indices, rowGroups)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet columns: %w", err)
	}
	defer tbl.Release()
	return tableToFrame(tbl)
}

func tableToFrame(tbl arrow.Table) (*Frame, error) {
	ncols := int(tbl.NumCols())
	nrows := int(tbl.NumRows())
	f := &Frame{Columns: make([]string, ncols), Rows: make([][]string, nrows)}
	for r := range f.Rows {
		f.Rows[r] = make([]string, ncols)
	}
	for c := 0; c < ncols; c++ {
		f.Columns[c] = tbl.Schema().Field(c).Name
		row := 0
		for _, chunk := range tbl.Column(c).Data().Chunks() {
			for i := 0; i < chunk.Len(); i++ {
				if row >= nrows {
					return nil, fmt.Errorf("column %s has more values than the table has rows", f.Columns[c])
				}
				v, err := cell(chunk, i)
				if err != nil {
					return nil, fmt.Errorf("column %s row %d: %w", f.Columns[c], row, err)
				}
				f.Rows[row][c] = v
				row++
			}
		}
	}
	return f, nil
}

// cell renders one value as text. Nulls are blank.
func cell(arr arrow.Array, i int) (string, error) {
	if arr.IsNull(i) {
		return "", nil
	}
	switch a := arr.(type) {
	case *array.String:
		return a.Value(i), nil
	case *array.LargeString:
		return a.Value(i), nil
	case *array.Float64:
		return strconv.FormatFloat(a.Value(i), 'g', -1, 64), nil
	case *array.Float32:
		return strconv.FormatFloat(float64(a.Value(i)), 'g', -1, 32), nil
	case *array.Int64:
		return strconv.FormatInt(a.Value(i), 10), nil
	case *array.Int32:
		return strconv.FormatInt(int64(a.Value(i)), 10), nil
	case *array.Int16:
		return strconv.FormatInt(int64(a.Value(i)), 10), nil
	case *array.Int8:
		return strconv.FormatInt(int64(a.Value(i)), 10), nil
	case *array.Uint64:
		return strconv.FormatUint(a.Value(i), 10), nil
	case *array.Uint32:
		return strconv.FormatUint(uint64(a.Value(i)), 10), nil
	case *array.Boolean:
		return strconv.FormatBool(a.Value(i)), nil
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(i).ToTime(unit).UTC().Format(time.RFC3339), nil
	case *array.Date32:
		return a.Value(i).ToTime().Format(time.DateOnly), nil
	case *array.Dictionary:
		// pandas categoricals come back dictionary encoded
		return cell(a.Dictionary(), a.GetValueIndex(i))
	default:
		return arr.ValueStr(i), nil
	}
}
