package batch

import (
	"context"
	"fmt"
	"strings"

	"github.com/groundwater-portal/reportload/internal/checksum"
	"github.com/groundwater-portal/reportload/internal/dataset"
	"github.com/groundwater-portal/reportload/internal/header"
	"github.com/groundwater-portal/reportload/internal/source"
	"github.com/groundwater-portal/reportload/pkg/reportload"
)

// FileSpec is one input file and the layout of its header block and data.
type FileSpec = reportload.InputFile

// FileSchema describes the table derived from one file.
type FileSchema struct {
	Path     string
	Tag      string
	Columns  []string
	Rows     int
	Checksum string
}

// Result is the outcome of assembling a batch.
type Result struct {
	Table *reportload.Table
	Files []FileSchema
}

// Assembler reads report files in order and concatenates them into one table.
type Assembler struct {
	reader     *source.Reader
	reconciler *header.Reconciler
	prefix     string
	suffix     string
	logger     reportload.Logger
}

// NewAssembler creates an Assembler. prefix and suffix are stripped from
// file names to build provenance tags.
func NewAssembler(reader *source.Reader, reconciler *header.Reconciler, prefix, suffix string, logger reportload.Logger) *Assembler {
	if reader == nil {
		panic("reader cannot be nil")
	}
	if reconciler == nil {
		panic("reconciler cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Assembler{
		reader:     reader,
		reconciler: reconciler,
		prefix:     prefix,
		suffix:     suffix,
		logger:     logger,
	}
}

// Assemble processes files sequentially and concatenates their tables into
// one table called name. The first failing file aborts the batch.
func (a *Assembler) Assemble(ctx context.Context, name string, files []FileSpec) (*Result, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files: %w", reportload.ErrInvalidConfig)
	}

	tables := make([]*reportload.Table, 0, len(files))
	schemas := make([]FileSchema, 0, len(files))
	seen := checksum.NewRegistry()
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		a.logger.Info("Processing %s ...", f.Path)
		tbl, schema, err := a.AssembleFile(f)
		if err != nil {
			return nil, err
		}
		a.logger.Verbose("%s: %d rows, columns %s", f.Path, schema.Rows, strings.Join(schema.Columns, ", "))
		if prev := seen.Add(f.Path, schema.Checksum); prev != "" {
			a.logger.Error("%s has the same content as %s; its rows will be loaded twice", f.Path, prev)
		}
		tables = append(tables, tbl)
		schemas = append(schemas, schema)
	}

	unified := dataset.Concat(name, tables...)
	a.logger.Info("Combined table shape: (%d, %d)", unified.NumRows(), unified.NumColumns())
	a.logger.Info("Columns: [%s]", strings.Join(unified.Columns, ", "))

	return &Result{Table: unified, Files: schemas}, nil
}

// AssembleFile reads one file and returns its labelled table.
func (a *Assembler) AssembleFile(f FileSpec) (*reportload.Table, FileSchema, error) {
	raw, err := a.reader.Read(f.Path)
	if err != nil {
		return nil, FileSchema{}, err
	}

	regions, err := source.Split(raw, f.Layout)
	if err != nil {
		return nil, FileSchema{}, err
	}

	columns, err := a.reconciler.Reconcile(f.Path, regions.Header, regions.DataWidth())
	if err != nil {
		return nil, FileSchema{}, err
	}

	tbl, err := dataset.New(f.Path, columns, regions.Data)
	if err != nil {
		return nil, FileSchema{}, &reportload.FileReadError{Path: f.Path, Err: err}
	}

	schema := FileSchema{Path: f.Path, Columns: tbl.Columns, Rows: tbl.NumRows(), Checksum: raw.Checksum}
	if a.reconciler.ProvenanceColumn() != "" {
		schema.Tag = Tag(f.Path, a.prefix, a.suffix)
		if err := dataset.FillColumn(tbl, len(columns)-1, reportload.Text(schema.Tag)); err != nil {
			return nil, FileSchema{}, err
		}
	}
	return tbl, schema, nil
}
