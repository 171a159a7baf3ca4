package core

import (
	"fmt"
	"iter"
)

// DefaultFlagLabel names the active state when the flag column has no header.
const DefaultFlagLabel = "Weld in Progress"

// Scene is everything a renderer needs to draw one chart. It carries no
// styling beyond per-dataset colors.
type Scene struct {
	Title       string `json:"title"`
	XAxisTitle  string `json:"x_axis_title"`
	YAxisTitle  string `json:"y_axis_title"`  // position, left axis
	Y2AxisTitle string `json:"y2_axis_title"` // force, right axis

	Series  []SeriesScene `json:"series"`
	Regions []RegionScene `json:"regions"`
	Markers []Marker      `json:"markers"`
}

// SeriesScene is the plotted data of one dataset.
type SeriesScene struct {
	DatasetID int       `json:"dataset_id"`
	Label     string    `json:"label"`
	Color     string    `json:"color"`
	X         []float64 `json:"x"`
	Position  []float64 `json:"position"`
	Force     []float64 `json:"force"`
}

// RegionScene is a shaded interval spanning the whole plot height.
type RegionScene struct {
	DatasetID int    `json:"dataset_id"`
	Label     string `json:"label"`
	ActiveRegion
}

// Marker is a vertical line at a transition, labeled with its time.
type Marker struct {
	DatasetID int `json:"dataset_id"`
	TransitionPoint
	Label string `json:"label"`
}

// Empty reports whether there is nothing to draw.
func (sc Scene) Empty() bool {
	return len(sc.Series) == 0
}

// MarkerLabel formats a transition time the way markers show it.
func MarkerLabel(t float64) string {
	return fmt.Sprintf("%.3fs", t)
}

// BuildScene lays out the given datasets. Axis titles come from the first
// dataset's header. Regions are recomputed on every call.
func BuildScene(datasets iter.Seq[Dataset], policy RegionPolicy) Scene {
	var sc Scene

	for d := range datasets {
		if sc.Empty() {
			sc.XAxisTitle = d.Header[ColTime]
			sc.YAxisTitle = d.Header[ColPosition]
			sc.Y2AxisTitle = d.Header[ColForce]
			sc.Title = fmt.Sprintf("%s, %s vs. %s", sc.YAxisTitle, sc.Y2AxisTitle, sc.XAxisTitle)
		}

		series := SeriesScene{
			DatasetID: d.ID,
			Label:     d.Filename,
			Color:     d.Color,
			X:         make([]float64, len(d.Rows)),
			Position:  make([]float64, len(d.Rows)),
			Force:     make([]float64, len(d.Rows)),
		}
		for i, r := range d.Rows {
			series.X[i] = r.Time
			series.Position[i] = r.Position
			series.Force[i] = r.Force
		}
		sc.Series = append(sc.Series, series)

		if !d.HasFlagColumn {
			continue
		}

		regions, transitions := policy.Detect(&d.ParsedFile)
		label := fmt.Sprintf("%s Active", flagLabel(d.Header))
		for _, r := range regions {
			sc.Regions = append(sc.Regions, RegionScene{DatasetID: d.ID, Label: label, ActiveRegion: r})
		}
		for _, tp := range transitions {
			sc.Markers = append(sc.Markers, Marker{DatasetID: d.ID, TransitionPoint: tp, Label: MarkerLabel(tp.Time)})
		}
	}

	return sc
}

func flagLabel(header []string) string {
	if len(header) > ColFlag && header[ColFlag] != "" {
		return header[ColFlag]
	}
	return DefaultFlagLabel
}
