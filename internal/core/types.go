package core

import (
	"fmt"
	"time"
)

// Fixed column positions in every recording.
const (
	ColTime     = 0
	ColPosition = 1
	ColForce    = 2
	ColFlag     = 3

	// MetadataStart is the first header index treated as a metadata key.
	MetadataStart = 4

	// MinColumns is the smallest header arity a recording may have.
	MinColumns = 3
)

// RawRow is one tokenized data line. Its arity may differ from the header's
// in malformed input.
type RawRow []string

// Row is a validated, fully numeric sample.
type Row struct {
	Time     float64 `json:"time"`
	Position float64 `json:"position"`
	Force    float64 `json:"force"`
	Flag     uint8   `json:"flag"` // always 0 or 1
}

// ParsedFile is the validated content of one file before it joins a Session.
type ParsedFile struct {
	Filename      string            `json:"filename"`
	Header        []string          `json:"header"`
	Rows          []Row             `json:"rows"`
	Metadata      map[string]string `json:"metadata"`
	HasFlagColumn bool              `json:"has_flag_column"`
}

// Times returns the time column.
func (p *ParsedFile) Times() []float64 {
	out := make([]float64, len(p.Rows))
	for i, r := range p.Rows {
		out[i] = r.Time
	}
	return out
}

// Flags returns the flag column.
func (p *ParsedFile) Flags() []uint8 {
	out := make([]uint8, len(p.Rows))
	for i, r := range p.Rows {
		out[i] = r.Flag
	}
	return out
}

// Dataset is a ParsedFile with identity and display state.
//
// Header, Rows and Metadata are never modified after the dataset is created;
// a re-upload with the same filename swaps in new slices instead.
type Dataset struct {
	ParsedFile

	ID          int       `json:"id"`
	Color       string    `json:"color"`
	CustomColor bool      `json:"custom_color"`
	Visible     bool      `json:"visible"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// TransitionKind tells whether a transition opens or closes a region.
type TransitionKind int

const (
	TransitionStart TransitionKind = iota
	TransitionEnd
)

func (k TransitionKind) String() string {
	if k == TransitionStart {
		return "Start"
	}
	return "End"
}

// MarshalText renders the kind as "Start" or "End".
func (k TransitionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts the names written by MarshalText.
func (k *TransitionKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "Start":
		*k = TransitionStart
	case "End":
		*k = TransitionEnd
	default:
		return fmt.Errorf("unknown transition kind %q", b)
	}
	return nil
}

// ActiveRegion is a closed interval of time during which the flag was 1.
type ActiveRegion struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// TransitionPoint marks where a region opens or closes.
type TransitionPoint struct {
	Time float64        `json:"time"`
	Kind TransitionKind `json:"kind"`
}
