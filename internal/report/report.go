// Package report renders predictions as Markdown and HTML.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"gobrix/internal/calibration"
	"gobrix/internal/quality"
	"gobrix/internal/uncertainty"
)

// Input is everything a report shows. Distribution and Calibration are optional.
type Input struct {
	Title        string
	Result       quality.Result
	RawScore     float64
	Calibration  *calibration.Application
	Distribution *uncertainty.BrixDistribution
}

// Markdown renders the report body.
func Markdown(in Input) string {
	var b strings.Builder
	r := in.Result

	title := in.Title
	if title == "" {
		title = fmt.Sprintf("%s from %s", r.CultivarID, r.RegionID)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "**Predicted Brix:** %.2f (%s)  \n", r.Score, r.Tier)
	fmt.Fprintf(&b, "**Confidence:** %.0f%%  \n", r.Confidence*100)
	fmt.Fprintf(&b, "**Harvest status:** %s\n\n", strings.ReplaceAll(string(r.Timing.Status), "_", " "))

	if r.Timing.Window.Known {
		w := r.Timing.Window
		label := "Harvest window"
		if w.NextSeason {
			label = "This season has closed. Next harvest window"
		}
		fmt.Fprintf(&b, "%s %s to %s, peak %s.\n\n", label,
			w.HarvestStart.Format("Jan 2 2006"), w.HarvestEnd.Format("Jan 2 2006"), w.PeakDate.Format("Jan 2 2006"))
	}

	b.WriteString("## Quality pillars\n\n")
	b.WriteString("| Pillar | Modifier | Confidence |\n|---|---:|---|\n")
	for _, p := range r.Pillars {
		fmt.Fprintf(&b, "| %s | %+.2f | %s |\n", p.Name, p.Modifier, p.Confidence)
	}
	b.WriteString("\n")

	var insights []string
	for _, p := range r.Pillars {
		insights = append(insights, p.Insights...)
	}
	if len(insights) > 0 {
		b.WriteString("## Insights\n\n")
		for _, s := range insights {
			fmt.Fprintf(&b, "- %s\n", s)
		}
		b.WriteString("\n")
	}

	if c := in.Calibration; c != nil {
		b.WriteString("## Regional calibration\n\n")
		if c.HasCalibration {
			fmt.Fprintf(&b, "Adjusted from %.2f by %+.2f using %d measurements.\n\n", in.RawScore, c.Offset, c.SampleCount)
		} else {
			fmt.Fprintf(&b, "Not applied (%d measurements so far).\n\n", c.SampleCount)
		}
	}

	if d := in.Distribution; d != nil {
		b.WriteString("## Uncertainty\n\n")
		fmt.Fprintf(&b, "90%% interval %.1f to %.1f Brix (median %.1f, %s).\n",
			d.Interval90.Lower, d.Interval90.Upper, d.Median, strings.ReplaceAll(string(d.Method), "_", " "))
	}
	return b.String()
}

// HTML renders the report as an HTML fragment.
func HTML(in Input) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(Markdown(in)))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return markdown.Render(doc, renderer)
}
