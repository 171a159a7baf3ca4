package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/weldview/internal/config"
	"github.com/JonMunkholm/weldview/internal/core"
	"github.com/JonMunkholm/weldview/internal/render"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	reportStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(0, 1)
)

// runRender loads the given files as one batch and writes the chart.
func runRender(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	output := fs.String("o", "chart.svg", "output file (.svg or .png)")
	width := fs.Int("width", cfg.Chart.Width, "chart width in pixels")
	height := fs.Int("height", cfg.Chart.Height, "chart height in pixels")
	mergeGap := fs.Int("merge-gap", cfg.Chart.MergeGap, "join active regions separated by at most this many samples")
	if err := fs.Parse(args); err != nil {
		return err
	}

	format, err := render.FormatFromPath(*output)
	if err != nil {
		return err
	}
	sources, err := collectSources(fs.Args())
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return core.ErrNoFiles
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	renderer := render.FileOutput{
		Renderer: render.ChartRenderer{Width: *width, Height: *height},
		Path:     *output,
		Format:   format,
	}
	session := core.NewSession()
	controller := core.NewController(session, renderer, core.RegionPolicy{MergeGap: *mergeGap}, batchOptions(cfg))

	result, renderErr := controller.OnFilesSelected(ctx, sources)
	fmt.Fprintln(out, formatReport(result, session, *output, renderErr == nil))
	return renderErr
}

// collectSources expands directories to the CSV files directly inside them.
// Other paths are passed through so unsupported names are reported per file.
func collectSources(paths []string) ([]core.FileSource, error) {
	var sources []core.FileSource
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			sources = append(sources, core.OSFile(p))
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", p, err)
		}
		for _, e := range entries {
			if !e.IsDir() && core.IsCSVName(e.Name()) {
				sources = append(sources, core.OSFile(filepath.Join(p, e.Name())))
			}
		}
	}
	return sources, nil
}

// formatReport renders the batch outcome for the terminal.
func formatReport(result core.BatchResult, session *core.Session, output string, written bool) string {
	var lines []string
	lines = append(lines, titleStyle.Render(result.Summary()))

	for _, lf := range result.Loaded {
		ds, _ := session.Get(lf.DatasetID)
		line := okStyle.Render("✓ "+lf.Filename) + dimStyle.Render(fmt.Sprintf("  #%d  %d rows  %s", lf.DatasetID, lf.Rows, ds.Color))
		for _, e := range core.MetadataEntries(ds.Header, ds.Metadata) {
			line += dimStyle.Render(fmt.Sprintf("  %s=%s", e.Key, e.Value))
		}
		lines = append(lines, line)
	}
	for _, fe := range result.Failed {
		lines = append(lines, failStyle.Render("✗ "+fe.Filename)+"  "+core.FormatUserError(fe.Err))
	}
	if written {
		lines = append(lines, "", "wrote "+output)
	}
	return reportStyle.Render(strings.Join(lines, "\n"))
}
