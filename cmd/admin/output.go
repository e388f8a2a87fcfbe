package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	headerStyle  = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
)

// Success prints a success message
func Success(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, successStyle.Render("✓ ")+fmt.Sprintf(format, args...))
}

// Warning prints a warning message
func Warning(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, warningStyle.Render("⚠ ")+fmt.Sprintf(format, args...))
}

// Error prints an error message
func Error(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, errorStyle.Render("✗ ")+fmt.Sprintf(format, args...))
}

// Info prints an info message
func Info(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, infoStyle.Render("ℹ ")+fmt.Sprintf(format, args...))
}

// USD formats a dollar amount with currency symbol and grouping
func USD(amount decimal.Decimal) string {
	cur := money.GetCurrency(money.USD)
	factor := decimal.New(1, int32(cur.Fraction))
	cents := amount.Mul(factor).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}

// table renders rows under a header. Columns are padded to their widest cell;
// width is measured on the unstyled text.
type table struct {
	header []string
	rows   [][]string
	// right-aligned column indexes
	numeric map[int]bool
}

func newTable(header ...string) *table {
	return &table{header: header, numeric: map[int]bool{}}
}

func (t *table) alignRight(cols ...int) *table {
	for _, c := range cols {
		t.numeric[c] = true
	}
	return t
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) render(w io.Writer) {
	widths := make([]int, len(t.header))
	for i, h := range t.header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	line := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			align := lipgloss.Left
			if t.numeric[i] {
				align = lipgloss.Right
			}
			parts[i] = style.Width(widths[i]).Align(align).Render(cell)
		}
		return strings.Join(parts, "  ")
	}

	fmt.Fprintln(w, line(t.header, headerStyle))
	total := 2 * (len(widths) - 1)
	for _, wd := range widths {
		total += wd
	}
	fmt.Fprintln(w, mutedStyle.Render(strings.Repeat("─", total)))
	for _, row := range t.rows {
		fmt.Fprintln(w, line(row, lipgloss.NewStyle()))
	}
}
