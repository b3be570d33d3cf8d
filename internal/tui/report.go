package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/groundwater-portal/reportload/internal/batch"
)

// RenderSchemaReport writes the per-file schemas and the unified column list
// of an assembled batch. Columns of the unified table that some files lack
// are flagged, since those files contribute NULLs to them.
func RenderSchemaReport(w io.Writer, res *batch.Result, styled bool) error {
	if res == nil || res.Table == nil {
		return fmt.Errorf("no assembled batch to report")
	}
	p := painter{styled: styled}
	var b strings.Builder

	presence := make(map[string]int, len(res.Table.Columns))
	for _, f := range res.Files {
		seen := make(map[string]bool, len(f.Columns))
		for _, c := range f.Columns {
			if !seen[c] {
				seen[c] = true
				presence[c]++
			}
		}
	}

	for _, f := range res.Files {
		fmt.Fprintf(&b, "%s %s\n", p.paint(TitleStyle, f.Path), p.paint(SubtitleStyle, describeFile(f)))
		for i, c := range f.Columns {
			fmt.Fprintf(&b, "  %3d  %s\n", i, c)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%s %s\n", p.paint(TitleStyle, "Unified table "+res.Table.Name),
		p.paint(SubtitleStyle, fmt.Sprintf("shape (%d, %d)", res.Table.NumRows(), res.Table.NumColumns())))
	for i, c := range res.Table.Columns {
		line := fmt.Sprintf("  %3d  %s", i, c)
		if missing := len(res.Files) - presence[c]; missing > 0 {
			line += " " + p.paint(WarningStyle, fmt.Sprintf("(absent in %d of %d files)", missing, len(res.Files)))
		}
		b.WriteString(line + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func describeFile(f batch.FileSchema) string {
	parts := []string{fmt.Sprintf("%d rows", f.Rows), fmt.Sprintf("%d columns", len(f.Columns))}
	if f.Tag != "" {
		parts = append(parts, "tag "+f.Tag)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
