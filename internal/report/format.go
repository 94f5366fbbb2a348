// Package report holds the console formatting shared by the analyses.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/tyler180/nfl-pbp-reports/internal/stats"
)

const Width = 80

var Rule = strings.Repeat("=", Width)

// Signed formats a difference with an explicit sign: "+2.3".
func Signed(v float64, prec int) string { return fmt.Sprintf("%+.*f", prec, v) }

// Pct formats a percentage with one decimal: "41.2%".
func Pct(v float64) string { return fmt.Sprintf("%.1f%%", v) }

// RateLine renders "conv/att (pct%)".
func RateLine(r stats.Rate) string { return fmt.Sprintf("%d/%d (%.1f%%)", r.Num, r.Den, r.Pct()) }

// Record renders W-L, or W-L-T when there were ties.
func Record(w, l, t int) string {
	if t > 0 {
		return fmt.Sprintf("%d-%d-%d", w, l, t)
	}
	return fmt.Sprintf("%d-%d", w, l)
}

// Ordinal renders a rank as "1st", "2nd", "23rd".
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// RankOf renders "3rd of 32", or "unranked" when the subject did not qualify.
func RankOf(rank, size int) string {
	if rank <= 0 {
		return "unranked"
	}
	return fmt.Sprintf("%s of %d", Ordinal(rank), size)
}

// Printer writes report text and keeps the first write error, so report
// bodies can print freely and check once at the end.
type Printer struct {
	w   io.Writer
	err error
}

func NewPrinter(w io.Writer) *Printer { return &Printer{w: w} }

func (p *Printer) Printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) Println(args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, args...)
}

// Banner prints a title between two rules.
func (p *Printer) Banner(title string) {
	p.Printf("\n%s\n%s\n%s\n", Rule, title, Rule)
}

// Section prints a title over a dashed underline.
func (p *Printer) Section(title string) {
	p.Printf("\n%s\n%s\n", title, strings.Repeat("-", len(title)))
}

// Table prints tab-separated rows aligned in columns.
func (p *Printer) Table(header []string, rows [][]string) {
	if p.err != nil {
		return
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	seps := make([]string, len(header))
	for i, h := range header {
		seps[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(seps, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	p.err = tw.Flush()
}

func (p *Printer) Err() error { return p.err }
