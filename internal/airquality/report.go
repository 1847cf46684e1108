package airquality

import (
	"fmt"
	"strings"
	"time"

	"airsense/domain/telemetry"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// ReportInput is what a report is rendered from
type ReportInput struct {
	Source      string
	Detection   telemetry.DetectionResult
	Diagnostics telemetry.Diagnostics
	Warnings    []telemetry.Warning
	Analysis    *Analysis
}

// Report holds both renditions of the same document
type Report struct {
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
}

// maxHourlyRows keeps only the most recent buckets in the table
const maxHourlyRows = 48

// RenderReport writes the Markdown report and converts it to HTML
func RenderReport(in ReportInput) Report {
	md := RenderMarkdown(in)
	return Report{Markdown: md, HTML: string(ToHTML(md))}
}

// ToHTML converts Markdown with tables enabled
func ToHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.CompletePage, Title: "Air quality report"})
	return markdown.ToHTML([]byte(md), p, renderer)
}

// RenderMarkdown lays out the report sections
func RenderMarkdown(in ReportInput) string {
	var b strings.Builder

	title := "Air quality report"
	if in.Source != "" {
		title += ": " + in.Source
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	b.WriteString("## Input\n\n")
	fmt.Fprintf(&b, "- Time column: `%s` (%s)\n", in.Detection.TimeColumn, in.Detection.TimeTier)
	fmt.Fprintf(&b, "- Value column: `%s` (%s)\n", in.Detection.ValueColumn, in.Detection.ValueTier)
	fmt.Fprintf(&b, "- Time encoding: %s\n", in.Diagnostics.Encoding)
	fmt.Fprintf(&b, "- Rows kept: %d of %d\n", in.Diagnostics.RowsKept, in.Diagnostics.RowsTotal)
	if in.Diagnostics.LowConfidence {
		b.WriteString("- Epoch unit guessed with low confidence\n")
	}
	for _, w := range in.Warnings {
		fmt.Fprintf(&b, "- **Warning:** %s\n", w.Message)
	}
	b.WriteString("\n")

	a := in.Analysis
	if a == nil {
		b.WriteString("_No readings to analyze._\n")
		return b.String()
	}

	b.WriteString("## Current reading\n\n")
	fmt.Fprintf(&b, "**%.1f ppm** at %s: %s\n\n", a.Latest.Value, formatTime(a.Latest.Timestamp), a.Latest.Band.Label())
	fmt.Fprintf(&b, "Period: %s to %s\n\n", formatTime(a.Start), formatTime(a.End))

	b.WriteString("## Statistics\n\n")
	b.WriteString("| statistic | value |\n|---|---:|\n")
	fmt.Fprintf(&b, "| count | %d |\n", a.Summary.Count)
	for _, row := range []struct {
		name string
		v    float64
	}{
		{"mean", a.Summary.Mean},
		{"std", a.Summary.Std},
		{"min", a.Summary.Min},
		{"25%", a.Summary.Q25},
		{"50%", a.Summary.Median},
		{"75%", a.Summary.Q75},
		{"max", a.Summary.Max},
	} {
		fmt.Fprintf(&b, "| %s | %.1f |\n", row.name, row.v)
	}
	b.WriteString("\n")

	b.WriteString("## Comfort bands\n\n")
	b.WriteString("| band | range | readings | share |\n|---|---|---:|---:|\n")
	for _, bc := range a.Bands {
		fmt.Fprintf(&b, "| %s | %s | %d | %.1f%% |\n", bc.Band.Label(), bandRange(bc.Band, a.Thresholds), bc.Count, bc.Percent)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Alerts\n\nReadings above %.0f ppm: **%d**\n\n", a.AlertThreshold, a.Alerts)

	if a.Hourly != nil && len(a.Hourly.Buckets) > 0 {
		fmt.Fprintf(&b, "## Mean per %s\n\n", a.Hourly.Interval)
		b.WriteString("| start | mean ppm | readings |\n|---|---:|---:|\n")
		buckets := a.Hourly.Buckets
		if len(buckets) > maxHourlyRows {
			buckets = buckets[len(buckets)-maxHourlyRows:]
			fmt.Fprintf(&b, "| _last %d of %d_ | | |\n", maxHourlyRows, len(a.Hourly.Buckets))
		}
		for _, bk := range buckets {
			fill := ""
			if !bk.Observed {
				fill = " (carried)"
			}
			fmt.Fprintf(&b, "| %s | %.1f%s | %d |\n", formatTime(bk.Start), bk.Value, fill, bk.Count)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func bandRange(band Band, t Thresholds) string {
	switch band {
	case BandHealthy:
		return fmt.Sprintf("<= %.0f ppm", t.Good)
	case BandWarning:
		return fmt.Sprintf("%.0f to %.0f ppm", t.Good, t.Warn)
	default:
		return fmt.Sprintf("> %.0f ppm", t.Warn)
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05Z")
}
