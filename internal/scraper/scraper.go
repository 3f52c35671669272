// Package scraper runs the form export pipeline over one directory: list the
// PDF files, take the field schema from a seed document, coerce every
// document's values into a row and export the table.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/a3tai/pdf-form-export/internal/form"
	"github.com/a3tai/pdf-form-export/internal/log"
	"github.com/a3tai/pdf-form-export/internal/pdf/wrapper"
	"github.com/a3tai/pdf-form-export/internal/table"
)

const (
	// DefaultSeedIndex selects the second listed file as the schema source.
	DefaultSeedIndex = 1
	// DefaultExportName is the CSV file written into the scanned directory.
	DefaultExportName = "export.csv"

	pdfSuffix = ".pdf"
)

// ErrSeedOutOfRange is matched by SeedError.
var ErrSeedOutOfRange = errors.New("seed index out of range")

// SeedError reports a seed index that does not name a listed file.
type SeedError struct {
	Index int
	Count int
}

func (e *SeedError) Error() string {
	return fmt.Sprintf("%s: index %d, %d pdf files found", ErrSeedOutOfRange, e.Index, e.Count)
}

func (e *SeedError) Is(target error) bool {
	return target == ErrSeedOutOfRange
}

// Options tune a run. Unset fields other than SeedIndex take their defaults
// in New.
type Options struct {
	SeedIndex  int
	Alignment  form.Alignment
	ExportName string
	Exporter   table.Exporter
	Literals   form.Literals
}

// DefaultOptions returns the options of a plain CSV run.
func DefaultOptions() Options {
	return Options{
		SeedIndex:  DefaultSeedIndex,
		Alignment:  form.AlignPosition,
		ExportName: DefaultExportName,
		Exporter:   &table.CSVExporter{},
		Literals:   form.DefaultLiterals(),
	}
}

// Result summarizes a completed run.
type Result struct {
	ExportPath string   `json:"export_path"`
	Files      []string `json:"files"`
	Columns    []string `json:"columns"`
	Rows       int      `json:"rows"`
}

// Scraper exports the form fields of every PDF in a directory.
type Scraper struct {
	dir  string
	lib  wrapper.PDFLibrary
	opts Options
}

// New returns a Scraper over dir. A negative seed index is kept as-is and
// rejected by Run.
func New(dir string, lib wrapper.PDFLibrary, opts Options) *Scraper {
	def := DefaultOptions()
	if opts.Alignment == "" {
		opts.Alignment = def.Alignment
	}
	if opts.Exporter == nil {
		opts.Exporter = def.Exporter
	}
	if opts.ExportName == "" {
		opts.ExportName = "export." + opts.Exporter.Extension()
	}
	if opts.Literals == nil {
		opts.Literals = def.Literals
	}

	return &Scraper{dir: dir, lib: lib, opts: opts}
}

// ExportPath returns where Run writes the table.
func (s *Scraper) ExportPath() string {
	return filepath.Join(s.dir, s.opts.ExportName)
}

// ListPDFs returns the names of the regular entries of dir whose name ends in
// ".pdf", sorted by name. Subdirectories are not searched.
func ListPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), pdfSuffix) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Schema reads the field names of the seed document among files.
func (s *Scraper) Schema(files []string) (form.Schema, error) {
	idx := s.opts.SeedIndex
	if idx < 0 || idx >= len(files) {
		return nil, &SeedError{Index: idx, Count: len(files)}
	}

	fields, err := s.lib.ReadFields(filepath.Join(s.dir, files[idx]))
	if err != nil {
		return nil, fmt.Errorf("seed %s: %w", files[idx], err)
	}

	schema, err := form.SchemaFromFields(fields)
	if err != nil {
		return nil, fmt.Errorf("seed %s: %w", files[idx], err)
	}
	return schema, nil
}

// Row reads one document and aligns its values with schema.
func (s *Scraper) Row(name string, schema form.Schema) ([]form.Value, error) {
	fields, err := s.lib.ReadFields(filepath.Join(s.dir, name))
	if err != nil {
		return nil, err
	}

	if s.opts.Alignment == form.AlignName {
		return form.Project(schema, fields, s.opts.Literals)
	}
	return form.Values(fields, s.opts.Literals), nil
}

// Build lists the directory and returns the filled table without exporting
// it.
func (s *Scraper) Build(ctx context.Context) (table.Table, []string, error) {
	files, err := ListPDFs(s.dir)
	if err != nil {
		return table.Table{}, nil, err
	}
	log.Debugf("found %d pdf files in %s", len(files), s.dir)

	schema, err := s.Schema(files)
	if err != nil {
		return table.Table{}, files, err
	}
	log.Debugf("schema from %s: %v", files[s.opts.SeedIndex], []string(schema))

	t := table.New(schema)
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return table.Table{}, files, err
		}

		row, err := s.Row(name, schema)
		if err != nil {
			return table.Table{}, files, fmt.Errorf("%s: %w", name, err)
		}

		t, err = t.Append(row)
		if err != nil {
			return table.Table{}, files, fmt.Errorf("%s: %w", name, err)
		}
		log.Debugf("row %d from %s", t.Len()-1, name)
	}

	return t, files, nil
}

// Run executes the whole pipeline and writes the export file. Any error
// aborts the run before the export is written.
func (s *Scraper) Run(ctx context.Context) (*Result, error) {
	t, files, err := s.Build(ctx)
	if err != nil {
		return nil, err
	}

	path := s.ExportPath()
	if err := table.WriteFile(path, t, s.opts.Exporter); err != nil {
		return nil, err
	}
	log.Infof("exported %d rows with %d columns to %s", t.Len(), len(t.Columns()), path)

	return &Result{
		ExportPath: path,
		Files:      files,
		Columns:    t.Columns(),
		Rows:       t.Len(),
	}, nil
}
