package runner

import (
	"fmt"
	"io"
	"strings"
)

// WriteReport renders last as a short header followed by a Markdown table
// of its artifacts.
func WriteReport(w io.Writer, last *LastRun) error {
	if last == nil {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Run %s: %s %s (%s)\n", last.RunID, last.Command, last.Name, last.Status)
	fmt.Fprintf(&b, "Started: %s\n\n", last.StartedAt.Format("2006-01-02 15:04:05 MST"))

	rows := make([][]string, 0, len(last.Artifacts))
	for _, a := range last.Artifacts {
		note := a.Error
		if note == "" {
			note = "-"
		}
		rows = append(rows, []string{a.Label, string(a.Status), a.Path, escapeCell(note)})
	}
	b.WriteString(renderTable([]string{"Artifact", "Status", "Path", "Error"}, rows))

	_, err := io.WriteString(w, b.String())
	return err
}

// renderTable renders a Markdown table. Rows are printed in the given order.
func renderTable(headers []string, rows [][]string) string {
	var b strings.Builder

	b.WriteString("| " + strings.Join(headers, " | ") + " |\n")

	b.WriteString("|")
	for range headers {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")

	for _, row := range rows {
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}

	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
