// Package templates holds the HTML components of the web UI.
//
// Components live in .templ files; run `templ generate` after editing them.
package templates

import (
	"fmt"

	"github.com/a-h/templ"
)

// DatasetCard is one loaded file as shown on the page.
type DatasetCard struct {
	ID       int
	Filename string
	Color    string
	Visible  bool
	Rows     int
	HasFlag  bool
	Metadata [][2]string
}

func (d DatasetCard) state() string {
	if d.Visible {
		return "visible"
	}
	return "hidden"
}

func (d DatasetCard) toggleLabel() string {
	if d.Visible {
		return "Hide"
	}
	return "Show"
}

// FileFailure is one rejected file of the last batch.
type FileFailure struct {
	Filename string
	Message  string
}

// BatchNotice summarizes the last upload.
type BatchNotice struct {
	Summary  string
	Failures []FileFailure
}

// IndexParams is everything the index page shows.
type IndexParams struct {
	Title        string
	Datasets     []DatasetCard
	Batch        *BatchNotice
	ChartVersion uint64
	HasChart     bool
}

func datasetURL(id int, action string) templ.SafeURL {
	return templ.URL(fmt.Sprintf("/api/files/%d/%s", id, action))
}

func chartURL(version uint64) string {
	return fmt.Sprintf("/chart.svg?v=%d", version)
}
