package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgallion1/pdfassembly/internal/assembly"
	"github.com/dgallion1/pdfassembly/internal/outline"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("33")).
			Padding(0, 1)
)

func label(s string) string {
	return dimStyle.Render(s + ":")
}

func printExtract(w io.Writer, res *assembly.ExtractResult) {
	content := fmt.Sprintf("%s\n%s %s\n%s %d-%d (%d pages)",
		titleStyle.Render("Extracted"),
		label("Output"), successStyle.Render(res.Output),
		label("Pages"), res.Start, res.End, res.PageCount,
	)
	fmt.Fprintln(w, boxStyle.Render(content))
}

func printMerge(w io.Writer, res *assembly.MergeResult) {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Merged"))
	fmt.Fprintf(&b, "\n%s %s", label("Output"), successStyle.Render(res.Output))
	fmt.Fprintf(&b, "\n%s %d", label("Pages"), res.PageCount)
	fmt.Fprintf(&b, "\n%s %d", label("Bookmarks"), res.Bookmarks)
	for _, d := range res.Documents {
		fmt.Fprintf(&b, "\n  %s %s", successStyle.Render("+"), filepath.Base(d))
	}
	for _, d := range res.Excluded {
		fmt.Fprintf(&b, "\n  %s %s", dimStyle.Render("-"), dimStyle.Render(filepath.Base(d)+" (excluded)"))
	}
	for _, d := range res.Skipped {
		fmt.Fprintf(&b, "\n  %s %s", warnStyle.Render("!"), warnStyle.Render(filepath.Base(d)+" (missing)"))
	}
	fmt.Fprintln(w, boxStyle.Render(b.String()))
}

func printOutline(w io.Writer, path string, pages int, forest outline.Forest) {
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render(filepath.Base(path)), dimStyle.Render(fmt.Sprintf("(%d pages)", pages)))
	if len(forest) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no bookmarks"))
		return
	}
	fmt.Fprint(w, forest.Format())
}
