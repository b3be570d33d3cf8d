package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/transform"

	"github.com/groundwater-portal/reportload/internal/checksum"
	"github.com/groundwater-portal/reportload/internal/files/filesystem"
	"github.com/groundwater-portal/reportload/pkg/reportload"
)

const utf8BOM = "\ufeff"

// Reader parses report files from a filesystem provider.
type Reader struct {
	fs   filesystem.FileSystemProvider
	opts Options
	na   map[string]struct{}
}

// NewReader creates a Reader. A zero delimiter defaults to ','.
func NewReader(fs filesystem.FileSystemProvider, opts Options) *Reader {
	if fs == nil {
		panic("filesystem provider cannot be nil")
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	return &Reader{fs: fs, opts: opts, na: naSet(opts.NAValues)}
}

// Read parses the file at path. Failures are returned as *reportload.FileReadError.
func (r *Reader) Read(path string) (*reportload.RawTable, error) {
	data, err := r.fs.ReadFile(path)
	if err != nil {
		return nil, &reportload.FileReadError{Path: path, Err: err}
	}

	var records []reportload.RawRecord
	if IsWorkbook(path) {
		records, err = r.parseWorkbook(data)
	} else {
		records, err = r.parseCSV(data)
	}
	if err != nil {
		return nil, &reportload.FileReadError{Path: path, Err: err}
	}

	return &reportload.RawTable{Path: path, Records: records, Checksum: checksum.Sum(data)}, nil
}

// IsWorkbook reports whether path names a spreadsheet workbook.
func IsWorkbook(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

func (r *Reader) parseCSV(data []byte) ([]reportload.RawRecord, error) {
	enc, err := lookupEncoding(r.opts.Encoding)
	if err != nil {
		return nil, err
	}

	var in io.Reader = bytes.NewReader(data)
	if enc != nil {
		in = transform.NewReader(in, enc.NewDecoder())
	}
	decoded, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.opts.Encoding, err)
	}
	text := strings.TrimPrefix(string(decoded), utf8BOM)

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = r.opts.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var records []reportload.RawRecord
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		records = append(records, reportload.RawRecord{
			Line:  line - 1,
			Cells: r.cells(fields),
		})
	}
	return records, nil
}

func (r *Reader) parseWorkbook(data []byte) ([]reportload.RawRecord, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := r.opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}

	// GetRows drops trailing empty cells, so a column that is blank in every
	// data row would vanish. Pad every row to the widest one in the sheet.
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	var records []reportload.RawRecord
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cells := r.cells(row)
		for len(cells) < width {
			cells = append(cells, reportload.Missing)
		}
		records = append(records, reportload.RawRecord{Line: i, Cells: cells})
	}
	return records, nil
}

func (r *Reader) cells(fields []string) []reportload.Cell {
	cells := make([]reportload.Cell, len(fields))
	for i, f := range fields {
		if _, na := r.na[f]; na {
			cells[i] = reportload.Missing
			continue
		}
		cells[i] = reportload.Text(f)
	}
	return cells
}
