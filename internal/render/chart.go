// Package render draws core scenes as dual-axis charts with go-chart.
//
// Position is plotted against the left axis, force against the right axis.
// Active regions are shaded over the full plot height and every transition
// gets a dashed vertical marker labeled with its time.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JonMunkholm/weldview/internal/core"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrEmptyScene is returned when there is nothing to draw.
var ErrEmptyScene = errors.New("no visible datasets to render")

// Format is an output image format.
type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
)

// ParseFormat accepts "svg" or "png" in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(s, "."))) {
	case SVG:
		return SVG, nil
	case PNG:
		return PNG, nil
	}
	return "", fmt.Errorf("unsupported chart format %q (want svg or png)", s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == PNG {
		return "image/png"
	}
	return "image/svg+xml"
}

func (f Format) provider() chart.RendererProvider {
	if f == PNG {
		return chart.PNG
	}
	return chart.SVG
}

var (
	regionFill   = drawing.ColorFromHex("90ee90").WithAlpha(77) // lightgreen, 30%
	regionStroke = drawing.ColorFromHex("008000")
	markerStroke = drawing.ColorFromHex("006400").WithAlpha(128)
	markerText   = drawing.ColorFromHex("006400")
	labelBack    = drawing.ColorWhite.WithAlpha(204)
)

// ChartRenderer lays out a scene at a fixed pixel size.
type ChartRenderer struct {
	Width  int
	Height int
}

// Draw renders scene in format f to w.
func (cr ChartRenderer) Draw(scene core.Scene, f Format, w io.Writer) error {
	ch, err := cr.Chart(scene)
	if err != nil {
		return err
	}
	if err := ch.Render(f.provider(), w); err != nil {
		return fmt.Errorf("render %s: %w", f, err)
	}
	return nil
}

// Chart builds the go-chart definition for scene.
func (cr ChartRenderer) Chart(scene core.Scene) (chart.Chart, error) {
	if scene.Empty() {
		return chart.Chart{}, ErrEmptyScene
	}

	var xs, ps, fs []float64
	for _, s := range scene.Series {
		xs = append(xs, s.X...)
		ps = append(ps, s.Position...)
		fs = append(fs, s.Force...)
	}
	xr := paddedRange(xs, 0)
	pr := paddedRange(ps, 0.05)
	fr := paddedRange(fs, 0.05)

	series := make([]chart.Series, 0, 2*len(scene.Series))
	for _, s := range scene.Series {
		color := seriesColor(s.Color)
		series = append(series,
			chart.ContinuousSeries{
				Name:    fmt.Sprintf("%s (%s)", scene.YAxisTitle, s.Label),
				XValues: s.X,
				YValues: s.Position,
				Style: chart.Style{
					StrokeColor: color,
					StrokeWidth: 1.5,
					DotColor:    color,
					DotWidth:    2,
				},
			},
			chart.ContinuousSeries{
				Name:    fmt.Sprintf("%s (%s)", scene.Y2AxisTitle, s.Label),
				YAxis:   chart.YAxisSecondary,
				XValues: s.X,
				YValues: s.Force,
				Style: chart.Style{
					StrokeColor:     color,
					StrokeWidth:     1.5,
					StrokeDashArray: []float64{6, 3},
					DotColor:        color,
					DotWidth:        2,
				},
			},
		)
	}

	ch := chart.Chart{
		Title:  scene.Title,
		Width:  cr.Width,
		Height: cr.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 60, Left: 20, Right: 20, Bottom: 40},
		},
		XAxis: chart.XAxis{
			Name:           scene.XAxisTitle,
			Range:          xr,
			ValueFormatter: tickLabel,
		},
		YAxis: chart.YAxis{
			Name:           scene.YAxisTitle,
			Range:          pr,
			ValueFormatter: tickLabel,
		},
		YAxisSecondary: chart.YAxis{
			Name:           scene.Y2AxisTitle,
			Range:          fr,
			ValueFormatter: tickLabel,
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{
		annotations(scene, xr),
		chart.Legend(&ch),
	}
	return ch, nil
}

// annotations draws region shading and transition markers. Pixel positions
// are derived from xr, which is also the chart's fixed X range.
func annotations(scene core.Scene, xr *chart.ContinuousRange) chart.Renderable {
	return func(r chart.Renderer, box chart.Box, defaults chart.Style) {
		toX := func(v float64) int {
			return box.Left + int(math.Round((v-xr.Min)/(xr.Max-xr.Min)*float64(box.Width())))
		}

		r.ResetStyle()
		for _, reg := range scene.Regions {
			x0, x1 := toX(reg.Start), toX(reg.End)
			if x1 <= x0 {
				x1 = x0 + 1
			}
			r.SetFillColor(regionFill)
			r.SetStrokeColor(regionStroke)
			r.SetStrokeWidth(1)
			r.MoveTo(x0, box.Top)
			r.LineTo(x1, box.Top)
			r.LineTo(x1, box.Bottom)
			r.LineTo(x0, box.Bottom)
			r.Close()
			r.FillStroke()
		}

		if defaults.Font != nil {
			r.SetFont(defaults.Font)
		}
		r.SetFontSize(9)
		for _, m := range scene.Markers {
			x := toX(m.Time)
			r.SetStrokeColor(markerStroke)
			r.SetStrokeWidth(1)
			r.SetStrokeDashArray([]float64{4, 4})
			r.MoveTo(x, box.Top)
			r.LineTo(x, box.Bottom)
			r.Stroke()
			r.SetStrokeDashArray(nil)

			tb := r.MeasureText(m.Label)
			tx := x - tb.Width()/2
			ty := box.Bottom - 10
			r.SetFillColor(labelBack)
			r.SetStrokeColor(markerText)
			r.MoveTo(tx-3, ty-tb.Height()-3)
			r.LineTo(tx+tb.Width()+3, ty-tb.Height()-3)
			r.LineTo(tx+tb.Width()+3, ty+3)
			r.LineTo(tx-3, ty+3)
			r.Close()
			r.FillStroke()
			r.SetFontColor(markerText)
			r.Text(m.Label, tx, ty)
		}

		if len(scene.Regions) > 0 {
			r.SetFontColor(regionStroke)
			r.SetFontSize(10)
			r.Text(scene.Regions[0].Label, box.Left+8, box.Top+14)
		}
		r.ResetStyle()
	}
}

// maxRangeBound keeps Max-Min finite for values near the float64 limits.
const maxRangeBound = math.MaxFloat64 / 2

// paddedRange spans values, widened by frac of the span on both sides.
// A zero span is widened by one unit so go-chart never gets an empty range,
// and a span that overflows is clamped to ±maxRangeBound.
func paddedRange(values []float64, frac float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 0) {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	if hi == lo {
		return &chart.ContinuousRange{Min: lo - 0.5, Max: hi + 0.5}
	}
	pad := hi*frac - lo*frac
	lower, upper := lo-pad, hi+pad
	if math.IsInf(upper-lower, 0) {
		lower, upper = math.Max(lower, -maxRangeBound), math.Min(upper, maxRangeBound)
	}
	return &chart.ContinuousRange{Min: lower, Max: upper}
}

// tickLabel keeps axis labels short at any magnitude.
func tickLabel(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'g', 4, 64)
	}
	return fmt.Sprint(v)
}

// seriesColor parses a "#rrggbb" dataset color, falling back to the first
// palette entry.
func seriesColor(hex string) drawing.Color {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		hex = strings.TrimPrefix(core.Palette[0], "#")
	}
	return drawing.ColorFromHex(hex)
}
