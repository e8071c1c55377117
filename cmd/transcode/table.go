package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"transcode/internal/encoding"
	"transcode/internal/services"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// useColor reports whether w is a terminal.
func useColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

var outcomeColors = map[encoding.Outcome]text.Colors{
	encoding.OutcomeEncoded: {text.FgGreen},
	encoding.OutcomeSkipped: {text.FgHiBlack},
	encoding.OutcomeFailed:  {text.FgRed, text.Bold},
}

// renderSummary formats the per-outcome counts and any failures of a run.
func renderSummary(report encoding.Report, color bool) string {
	title := cases.Title(language.Und).String(string(report.Kind))

	var b strings.Builder
	fmt.Fprintf(&b, "%s run finished in %s (%d engine invocations)\n",
		title, report.Elapsed.Round(time.Millisecond), report.Invocations())

	rows := make([][]string, 0, 3)
	for _, outcome := range []encoding.Outcome{encoding.OutcomeEncoded, encoding.OutcomeSkipped, encoding.OutcomeFailed} {
		label := cases.Title(language.Und).String(string(outcome))
		if color {
			label = outcomeColors[outcome].Sprint(label)
		}
		rows = append(rows, []string{label, strconv.Itoa(report.Count(outcome))})
	}
	b.WriteString(renderTable([]string{"Outcome", "Files"}, rows, []columnAlignment{alignLeft, alignRight}))
	b.WriteString("\n")

	failures := report.Failures()
	if len(failures) == 0 {
		return b.String()
	}
	rows = rows[:0]
	for _, f := range failures {
		rows = append(rows, []string{f.Source, services.Category(f.Err), firstLine(f.Err)})
	}
	b.WriteString(renderTable([]string{"File", "Category", "Error"}, rows, nil))
	b.WriteString("\n")
	return b.String()
}

func firstLine(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return msg[:i]
	}
	return msg
}
