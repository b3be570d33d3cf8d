package source

import (
	"fmt"

	"github.com/groundwater-portal/reportload/pkg/reportload"
)

// Regions holds the header block and data region of one file.
type Regions struct {
	Header [][]reportload.Cell
	Data   [][]reportload.Cell
}

// DataWidth is the widest data row, or 0 when there is no data.
func (r Regions) DataWidth() int {
	return maxWidth(r.Data)
}

// HeaderWidth is the widest header row.
func (r Regions) HeaderWidth() int {
	return maxWidth(r.Header)
}

// Split locates the header block and the data region of raw using layout.
// The header block is the first layout.HeaderRows records starting on or
// after layout.HeaderLine and before layout.DataLine; the data region is
// every record starting on or after layout.DataLine.
func Split(raw *reportload.RawTable, layout reportload.Layout) (Regions, error) {
	var regions Regions
	for _, rec := range raw.Records {
		switch {
		case rec.Line >= layout.DataLine:
			regions.Data = append(regions.Data, rec.Cells)
		case rec.Line >= layout.HeaderLine && len(regions.Header) < layout.HeaderRows:
			regions.Header = append(regions.Header, rec.Cells)
		}
	}

	if len(regions.Header) == 0 {
		return Regions{}, &reportload.FileReadError{
			Path: raw.Path,
			Err:  fmt.Errorf("no header rows between line %d and line %d", layout.HeaderLine, layout.DataLine),
		}
	}
	return regions, nil
}

func maxWidth(rows [][]reportload.Cell) int {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}
