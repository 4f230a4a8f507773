package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/olekukonko/tablewriter"

	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/model"
	"github.com/Chative-core-poc-v1/sheetsql/internal/ingest"
)

const maxCellWidth = 60

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetHeader(header)
	return table
}

// printRunDetails prints the run summary and one row per generation attempt.
func printRunDetails(w io.Writer, run *model.RunState) {
	summary := newTable(w, []string{"Run", "Intent", "Retries", "Cost (USD)"})
	summary.Append([]string{
		run.RunID,
		run.Intent.String(),
		strconv.Itoa(run.Retries),
		strconv.FormatFloat(run.TotalCostUSD, 'f', 6, 64),
	})
	summary.Render()

	if len(run.Attempts) == 0 {
		return
	}

	attempts := newTable(w, []string{"#", "Query", "Outcome"})
	attempts.SetRowLine(true)
	for i, a := range run.Attempts {
		outcome := "ok"
		if a.Result.IsFailure() {
			outcome = a.Result.String()
		}
		attempts.Append([]string{strconv.Itoa(i + 1), truncate(a.Query), truncate(outcome)})
	}
	attempts.Render()
}

// printSyncReport prints one row per written table.
func printSyncReport(w io.Writer, report ingest.Report) {
	table := newTable(w, []string{"Sheet", "Table", "Columns", "Rows"})
	for _, t := range report.Tables {
		cols := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			cols[i] = fmt.Sprintf("%s %s", c, t.Types[i])
		}
		table.Append([]string{t.Sheet, t.Table, truncate(strings.Join(cols, ", ")), strconv.Itoa(t.Rows)})
	}
	table.SetFooter([]string{"", "", "Total", strconv.Itoa(report.TotalRows())})
	table.Render()

	if len(report.Skipped) > 0 {
		fmt.Fprintf(w, "Skipped empty sheets: %s\n", strings.Join(report.Skipped, ", "))
	}
}

func truncate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxCellWidth {
		return string(r[:maxCellWidth-3]) + "..."
	}
	return s
}

// markdownRenderer renders answers for the terminal and falls back to the
// raw text when styling fails.
type markdownRenderer struct {
	r *glamour.TermRenderer
}

func newMarkdownRenderer() *markdownRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return &markdownRenderer{}
	}
	return &markdownRenderer{r: r}
}

func (m *markdownRenderer) Render(text string) string {
	if m.r == nil {
		return text + "\n"
	}
	out, err := m.r.Render(text)
	if err != nil {
		return text + "\n"
	}
	return out
}
