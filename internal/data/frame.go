package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Frame is a string table: a header and rows of cells in header order.
// Readers of every on-disk format produce a Frame so that column resolution
// happens in one place.
type Frame struct {
	Columns []string
	Rows    [][]string
}

func (f *Frame) Len() int { return len(f.Rows) }

// Filter keeps the rows whose cell at col satisfies keep.
func (f *Frame) Filter(col int, keep func(string) bool) *Frame {
	out := &Frame{Columns: f.Columns}
	for _, r := range f.Rows {
		v := ""
		if col >= 0 && col < len(r) {
			v = r[col]
		}
		if keep(v) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Project returns a frame with the given source columns renamed to header.
func (f *Frame) Project(cols []int, header []string) (*Frame, error) {
	if len(cols) != len(header) {
		return nil, fmt.Errorf("project: %d columns for %d names", len(cols), len(header))
	}
	out := &Frame{Columns: header, Rows: make([][]string, len(f.Rows))}
	for i, r := range f.Rows {
		row := make([]string, len(cols))
		for j, c := range cols {
			if c >= 0 && c < len(r) {
				row[j] = r[c]
			}
		}
		out.Rows[i] = row
	}
	return out, nil
}

// Append adds o's rows, aligning columns by name. Columns only o has are
// added to the header; cells a side lacks are left blank.
func (f *Frame) Append(o *Frame) {
	if len(f.Columns) == 0 && len(f.Rows) == 0 {
		f.Columns = append([]string(nil), o.Columns...)
		f.Rows = append(f.Rows, o.Rows...)
		return
	}
	pos := make(map[string]int, len(f.Columns))
	for i, c := range f.Columns {
		pos[c] = i
	}
	mapping := make([]int, len(o.Columns))
	for i, c := range o.Columns {
		j, ok := pos[c]
		if !ok {
			j = len(f.Columns)
			f.Columns = append(f.Columns, c)
			pos[c] = j
		}
		mapping[i] = j
	}
	for _, r := range o.Rows {
		row := make([]string, len(f.Columns))
		for i, v := range r {
			if i < len(mapping) {
				row[mapping[i]] = v
			}
		}
		f.Rows = append(f.Rows, row)
	}
}

func ReadCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv has no header")
	}
	if err != nil {
		return nil, err
	}
	f := &Frame{Columns: header}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		f.Rows = append(f.Rows, rec)
	}
	return f, nil
}

func ReadCSVFile(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	f, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return f, nil
}

// WriteCSVFile writes f to path through a temp file in the same directory,
// so readers never see a partial file.
func WriteCSVFile(path string, f *Frame) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(f.Columns); err != nil {
		tmp.Close()
		return err
	}
	if err := w.WriteAll(f.Rows); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
