package cmd

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Width at which paths and error messages wrap.
const (
	pathWidth    = 60
	messageWidth = 48
)

// column describes one table column. A zero width never wraps.
type column struct {
	title string
	align text.Align
	width int
}

func col(title string) column {
	return column{title: title, align: text.AlignLeft}
}

func (c column) right() column {
	c.align = text.AlignRight
	return c
}

func (c column) wrap(width int) column {
	c.width = width
	return c
}

// renderTable renders rows below a header in the casing of the titles.
// Missing cells are left empty.
func renderTable(columns []column, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, c := range columns {
		header[i] = c.title
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       c.align,
			AlignHeader: text.AlignLeft,
		}
		if c.width > 0 {
			configs[i].WidthMax = c.width
			configs[i].WidthMaxEnforcer = text.WrapSoft
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range r {
			r[i] = ""
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}
