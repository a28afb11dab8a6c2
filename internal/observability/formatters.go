// Package observability provides Prometheus metrics for the service and
// formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/ratuser/inter-prep-GenAi/internal/dashboard"
	"github.com/ratuser/inter-prep-GenAi/internal/interview"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted CLI output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintScript outputs the phase table of one interview script.
func (p *Printer) PrintScript(sc interview.Script) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Mode:     %s\n", sc.Mode))
	sb.WriteString(fmt.Sprintf("Stages:   %d (+1 summary)\n\n", sc.Total))

	for _, ph := range sc.Phases {
		stages := fmt.Sprintf("%d", ph.From)
		if ph.To != ph.From {
			stages = fmt.Sprintf("%d-%d", ph.From, ph.To)
		}
		sb.WriteString(fmt.Sprintf("  %-6s %s\n", stages, ph.Name))
	}
	sb.WriteString(fmt.Sprintf("  %-6d %s", sc.Total+1, interview.PhaseSummary))

	p.printBox(strings.ToUpper(string(sc.Mode))+" SCRIPT", sb.String())
}

// PrintScore outputs the result of extracting a score from feedback text.
func (p *Printer) PrintScore(score int, found bool) {
	source := "parsed from feedback"
	if !found {
		source = "no rating found, default applied"
	}
	p.printBox("INTERVIEW SCORE", fmt.Sprintf("Score:    %d%%\nSource:   %s", score, source))
}

// PrintCompletion outputs a recorded interview.
func (p *Printer) PrintCompletion(iv *interview.CompletedInterview) {
	if iv == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:     %s\n", iv.Title))
	sb.WriteString(fmt.Sprintf("Category:  %s\n", iv.Category))
	sb.WriteString(fmt.Sprintf("Score:     %d%%\n", iv.Score))
	sb.WriteString(fmt.Sprintf("Questions: %d", iv.QuestionCount))

	p.printBox("INTERVIEW RECORDED", sb.String())
}

// PrintDashboard outputs the headline stats and recent activity.
func (p *Printer) PrintDashboard(s dashboard.Summary) {
	var sb strings.Builder
	for _, st := range s.Stats {
		sb.WriteString(fmt.Sprintf("%-20s %6s  %s\n", st.Label, st.Value, st.Change))
	}

	sb.WriteString("\nProgress:\n")
	for _, pr := range s.Progress {
		sb.WriteString(fmt.Sprintf("  • %-16s %3d%%\n", pr.Name, pr.Value))
	}

	if len(s.RecentActivity) > 0 {
		sb.WriteString("\nRecent:\n")
		count := min(len(s.RecentActivity), maxItemsToShow)
		for i := 0; i < count; i++ {
			a := s.RecentActivity[i]
			sb.WriteString(fmt.Sprintf("  • %s (%s, %s)\n", a.Title, a.Score, a.Time))
		}
	}

	p.printBox("DASHBOARD", strings.TrimSuffix(sb.String(), "\n"))
}
