package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	Brand  = color.New(color.FgHiCyan, color.Bold)
	Subtle = color.New(color.FgHiBlack)
	Warn   = color.New(color.FgYellow)
	Good   = color.New(color.FgGreen)
	Bad    = color.New(color.FgRed)
	Accent = color.New(color.FgHiMagenta)
)

// Banner prints the command title line.
func Banner(w io.Writer, subtitle string) {
	fmt.Fprintf(w, "%s %s\n\n", Brand.Sprint("pathlight"), Subtle.Sprint(subtitle))
}

// Table prints an aligned table. Nothing is printed for zero rows.
func Table(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	headerLine := "  "
	sepLine := "  "
	for i, h := range headers {
		headerLine += fmt.Sprintf("%-*s  ", widths[i], h)
		sepLine += strings.Repeat("─", widths[i]) + "  "
	}
	Subtle.Fprintln(w, strings.TrimRight(headerLine, " "))
	Subtle.Fprintln(w, strings.TrimRight(sepLine, " "))

	for _, row := range rows {
		line := "  "
		for i, cell := range row {
			if i < len(widths) {
				line += fmt.Sprintf("%-*s  ", widths[i], cell)
			}
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

// Route prints a node sequence joined by arrows, endpoints accented.
func Route(w io.Writer, nodes []string) {
	if len(nodes) == 0 {
		return
	}
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		if i == 0 || i == len(nodes)-1 {
			parts[i] = Accent.Sprint(n)
			continue
		}
		parts[i] = n
	}
	fmt.Fprintf(w, "  %s\n", strings.Join(parts, Subtle.Sprint(" → ")))
}

// StatusIcon returns a check or a cross.
func StatusIcon(ok bool) string {
	if ok {
		return Good.Sprint("✓")
	}
	return Bad.Sprint("✗")
}

// Status prints a status line prefixed by its icon.
func Status(w io.Writer, ok bool, msg string) {
	fmt.Fprintf(w, "%s %s\n", StatusIcon(ok), msg)
}

// WarnIcon returns a warning icon.
func WarnIcon() string {
	return Warn.Sprint("⚠")
}
