package core

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func TestBuildScene(t *testing.T) {
	s := NewSession()
	s.Add(mustParse(t, "a.csv", "t (s),pos (mm),force (N),Clamp\n0,1,10,0\n1,2,20,1\n2,3,30,1\n3,4,40,0\n"))
	s.Add(mustParse(t, "b.csv", "Time,Position,Force\n0,5,50\n1,6,60\n"))
	s.Add(mustParse(t, "c.csv", "Time,Position,Force,\n0,1,1,1\n"))

	sc := BuildScene(s.VisibleDatasets(), RegionPolicy{})

	if sc.Title != "pos (mm), force (N) vs. t (s)" {
		t.Errorf("Title = %q", sc.Title)
	}
	if sc.XAxisTitle != "t (s)" || sc.YAxisTitle != "pos (mm)" || sc.Y2AxisTitle != "force (N)" {
		t.Errorf("axes = %q / %q / %q", sc.XAxisTitle, sc.YAxisTitle, sc.Y2AxisTitle)
	}
	if len(sc.Series) != 3 {
		t.Fatalf("len(Series) = %d, want 3", len(sc.Series))
	}

	a := sc.Series[0]
	if a.Label != "a.csv" || a.Color != Palette[0] || !slices.Equal(a.Force, []float64{10, 20, 30, 40}) {
		t.Errorf("series a = %+v", a)
	}

	wantRegions := []RegionScene{
		{DatasetID: 1, Label: "Clamp Active", ActiveRegion: ActiveRegion{1, 2}},
		{DatasetID: 3, Label: DefaultFlagLabel + " Active", ActiveRegion: ActiveRegion{0, 0}},
	}
	if !slices.Equal(sc.Regions, wantRegions) {
		t.Errorf("Regions = %+v, want %+v", sc.Regions, wantRegions)
	}

	var labels []string
	for _, m := range sc.Markers {
		labels = append(labels, m.Label)
	}
	if !slices.Equal(labels, []string{"1.000s", "2.000s", "0.000s", "0.000s"}) {
		t.Errorf("marker labels = %v", labels)
	}
}

func TestBuildScene_HiddenAndEmpty(t *testing.T) {
	s := NewSession()
	if sc := BuildScene(s.VisibleDatasets(), RegionPolicy{}); !sc.Empty() || sc.Title != "" {
		t.Errorf("empty session scene = %+v", sc)
	}

	s.Add(mustParse(t, "a.csv", "A,B,C,D\n0,1,1,1\n"))
	s.Add(mustParse(t, "b.csv", "Time,Position,Force\n0,1,1\n"))
	s.SetVisible(1, false)

	sc := BuildScene(s.VisibleDatasets(), RegionPolicy{})
	if len(sc.Series) != 1 || sc.Series[0].DatasetID != 2 {
		t.Fatalf("series = %+v, want only dataset 2", sc.Series)
	}
	if sc.XAxisTitle != "Time" {
		t.Errorf("axis titles must come from the first visible dataset, got %q", sc.XAxisTitle)
	}
	if len(sc.Regions) != 0 || len(sc.Markers) != 0 {
		t.Errorf("hidden dataset contributed regions %v markers %v", sc.Regions, sc.Markers)
	}
}

func TestMarkerLabel(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.000s"},
		{1.23456, "1.235s"},
		{-0.5, "-0.500s"},
		{120, "120.000s"},
	}
	for _, tt := range tests {
		if got := MarkerLabel(tt.in); got != tt.want {
			t.Errorf("MarkerLabel(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// recordingRenderer counts renders and keeps the last scene.
type recordingRenderer struct {
	calls int
	last  Scene
	err   error
}

func (r *recordingRenderer) Render(_ context.Context, sc Scene) error {
	r.calls++
	r.last = sc
	return r.err
}

func TestController_RendersOncePerCommand(t *testing.T) {
	rec := &recordingRenderer{}
	c := NewController(NewSession(), rec, RegionPolicy{}, BatchOptions{})
	ctx := context.Background()

	result, err := c.OnFilesSelected(ctx, []FileSource{
		memFile{name: "a.csv", content: simpleCSV},
		memFile{name: "b.csv", content: simpleCSV},
		memFile{name: "c.csv", content: "bad"},
	})
	if err != nil {
		t.Fatalf("OnFilesSelected() error = %v", err)
	}
	if len(result.Loaded) != 2 || rec.calls != 1 || len(rec.last.Series) != 2 {
		t.Fatalf("after batch: loaded %d, renders %d, series %d", len(result.Loaded), rec.calls, len(rec.last.Series))
	}

	steps := []struct {
		name       string
		run        func() error
		wantSeries int
	}{
		{"hide", func() error { _, err := c.OnToggleVisible(ctx, 1); return err }, 1},
		{"color", func() error { _, err := c.OnSetColor(ctx, 2, "#123456"); return err }, 1},
		{"show", func() error { _, err := c.OnToggleVisible(ctx, 1); return err }, 2},
		{"remove", func() error { return c.OnRemove(ctx, 1) }, 1},
		{"clear", func() error { return c.OnClearAll(ctx) }, 0},
	}
	for i, st := range steps {
		if err := st.run(); err != nil {
			t.Fatalf("%s: error = %v", st.name, err)
		}
		if rec.calls != i+2 {
			t.Errorf("%s: renders = %d, want %d", st.name, rec.calls, i+2)
		}
		if len(rec.last.Series) != st.wantSeries {
			t.Errorf("%s: series = %d, want %d", st.name, len(rec.last.Series), st.wantSeries)
		}
	}
}

func TestController_FailedCommandDoesNotRender(t *testing.T) {
	rec := &recordingRenderer{}
	c := NewController(NewSession(), rec, RegionPolicy{}, BatchOptions{})
	ctx := context.Background()

	if err := c.OnRemove(ctx, 5); !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("OnRemove() error = %v", err)
	}
	if _, err := c.OnSetColor(ctx, 5, "nope"); !errors.Is(err, ErrInvalidColor) {
		t.Errorf("OnSetColor() error = %v", err)
	}
	if rec.calls != 0 {
		t.Errorf("renders = %d, want 0", rec.calls)
	}
}

func TestController_CommandsReturnDataset(t *testing.T) {
	c := NewController(NewSession(), &recordingRenderer{}, RegionPolicy{}, BatchOptions{})
	ctx := context.Background()
	if _, err := c.OnFilesSelected(ctx, []FileSource{memFile{name: "a.csv", content: simpleCSV}}); err != nil {
		t.Fatalf("OnFilesSelected() error = %v", err)
	}

	ds, err := c.OnToggleVisible(ctx, 1)
	if err != nil || ds.ID != 1 || ds.Visible || ds.Filename != "a.csv" {
		t.Errorf("OnToggleVisible() = {ID:%d Visible:%v Filename:%q}, %v", ds.ID, ds.Visible, ds.Filename, err)
	}

	ds, err = c.OnSetColor(ctx, 1, "#ABCDEF")
	if err != nil || ds.ID != 1 || ds.Color != "#abcdef" || !ds.CustomColor {
		t.Errorf("OnSetColor() = {ID:%d Color:%q Custom:%v}, %v", ds.ID, ds.Color, ds.CustomColor, err)
	}

	if err := c.OnRemove(ctx, 1); err != nil {
		t.Fatalf("OnRemove() error = %v", err)
	}
	if ds, err := c.OnToggleVisible(ctx, 1); !errors.Is(err, ErrDatasetNotFound) || ds.ID != 0 {
		t.Errorf("OnToggleVisible(removed) = ID %d, %v; want ErrDatasetNotFound", ds.ID, err)
	}
	if ds, err := c.OnSetColor(ctx, 1, "#000000"); !errors.Is(err, ErrDatasetNotFound) || ds.ID != 0 {
		t.Errorf("OnSetColor(removed) = ID %d, %v; want ErrDatasetNotFound", ds.ID, err)
	}
}

func TestController_RenderError(t *testing.T) {
	renderErr := errors.New("disk full")
	c := NewController(NewSession(), &recordingRenderer{err: renderErr}, RegionPolicy{}, BatchOptions{})

	result, err := c.OnFilesSelected(context.Background(), []FileSource{memFile{name: "a.csv", content: simpleCSV}})
	if !errors.Is(err, renderErr) {
		t.Errorf("error = %v, want render error", err)
	}
	if len(result.Loaded) != 1 || c.Session().Len() != 1 {
		t.Error("batch must be applied even when rendering fails")
	}
}

func TestController_NilRenderer(t *testing.T) {
	c := NewController(NewSession(), nil, RegionPolicy{}, BatchOptions{})
	if _, err := c.OnFilesSelected(context.Background(), []FileSource{memFile{name: "a.csv", content: simpleCSV}}); err != nil {
		t.Fatalf("error = %v", err)
	}
	if c.Scene().Empty() {
		t.Error("Scene() empty after loading a file")
	}
}
