package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"gocausal/app"
	"gocausal/domain/inference"
)

// Builder renders experiment reports as markdown and HTML for the
// presentation layer. The full result sequences stay in the report structs;
// this package only formats.
type Builder struct{}

// NewBuilder creates a report builder
func NewBuilder() *Builder {
	return &Builder{}
}

// SimulationMarkdown renders a simulation report as a markdown document
func (b *Builder) SimulationMarkdown(r *app.SimulationReport) string {
	var sb strings.Builder

	sb.WriteString("# Randomization Distribution\n\n")
	fmt.Fprintf(&sb, "Run `%s` — %d trials, %d of %d units treated (assignment space C(N,m) = %.0f).\n\n",
		r.RunID, r.Trials, r.TreatedCount, r.RosterSize, r.AssignmentSpace)

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Statistic | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Mean of estimates | %.4f |\n", r.Mean)
	fmt.Fprintf(&sb, "| True ATE (oracle) | %.4f |\n", r.TrueATE)
	fmt.Fprintf(&sb, "| Simulated SE | %.4f |\n", r.StdDev)
	fmt.Fprintf(&sb, "| Analytic SE | %.4f |\n", r.AnalyticSE)
	fmt.Fprintf(&sb, "| Conservative SE | %.4f |\n", r.ConservativeSE)
	fmt.Fprintf(&sb, "| Inside 95%% normal band | %.1f%% |\n", r.NormalCoverage*100)
	fmt.Fprintf(&sb, "| Result fingerprint | `%s` |\n\n", shortHash(r.Fingerprint.String()))

	sb.WriteString("## Distribution\n\n")
	sb.WriteString(asciiHistogram(r.Histogram))
	return sb.String()
}

// PermutationMarkdown renders a permutation-test report as a markdown document
func (b *Builder) PermutationMarkdown(r *app.PermutationReport) string {
	var sb strings.Builder

	sb.WriteString("# Permutation Test\n\n")
	fmt.Fprintf(&sb, "Run `%s` — %d label permutations.\n\n", r.RunID, r.Trials)

	sb.WriteString("## Result\n\n")
	sb.WriteString("| Statistic | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Observed effect | %.4f |\n", r.ObservedEffect)
	fmt.Fprintf(&sb, "| One-sided p | %.4f |\n", r.OneSidedP)
	fmt.Fprintf(&sb, "| Two-sided p | %.4f |\n", r.TwoSidedP)
	fmt.Fprintf(&sb, "| Null mean | %.4f |\n", r.NullMean)
	fmt.Fprintf(&sb, "| Null SE | %.4f |\n", r.NullStdDev)
	fmt.Fprintf(&sb, "| Result fingerprint | `%s` |\n\n", shortHash(r.Fingerprint.String()))

	sb.WriteString("## Null distribution\n\n")
	sb.WriteString(asciiHistogram(r.Histogram))
	return sb.String()
}

// ToHTML converts a markdown report to an HTML fragment
func (b *Builder) ToHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, renderer)
}

// asciiHistogram formats histogram bins as a fenced text chart
func asciiHistogram(bins []inference.HistogramBin) string {
	if len(bins) == 0 {
		return "_no data_\n"
	}

	maxCount := 0
	for _, bin := range bins {
		if bin.Count > maxCount {
			maxCount = bin.Count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	const barWidth = 50
	var sb strings.Builder
	sb.WriteString("```\n")
	for _, bin := range bins {
		bar := strings.Repeat("#", bin.Count*barWidth/maxCount)
		fmt.Fprintf(&sb, "[%8.3f, %8.3f) %-*s %d\n", bin.Lower, bin.Upper, barWidth, bar, bin.Count)
	}
	sb.WriteString("```\n")
	return sb.String()
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
