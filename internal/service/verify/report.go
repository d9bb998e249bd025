package verify

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// RenderTable renders the per-file report. Interactive terminals get the
// rounded style; plain output keeps the default ASCII frame so CI logs stay
// grep-friendly.
func RenderTable(report *Report) string {
	tw := table.NewWriter()

	if isatty.IsTerminal(os.Stdout.Fd()) {
		tw.SetStyle(table.StyleRounded)
	}

	// Keep footer text as-is; the summary line is lowercase on purpose.
	tw.Style().Format.Footer = text.FormatDefault

	tw.AppendHeader(table.Row{"File", "Status"})

	for _, entry := range report.Entries {
		tw.AppendRow(table.Row{entry.Path, string(entry.Status)})
	}

	tw.AppendFooter(table.Row{"total", report.Summary()})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})

	return tw.Render()
}
