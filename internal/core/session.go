package core

// session.go holds the datasets loaded during one application run.
//
// A Session is created once and shared by reference. Every method is atomic
// with respect to the others; callers that need several operations to appear
// as one (apply a batch, then render) serialize through the Controller.

import (
	"iter"
	"slices"
	"sync"
	"time"
)

// Session is the ordered collection of loaded datasets.
type Session struct {
	mu       sync.RWMutex
	datasets []*Dataset
	lastID   int
	now      func() time.Time
}

// NewSession returns an empty session. The first dataset gets ID 1.
func NewSession() *Session {
	return &Session{now: time.Now}
}

// Add inserts parsed as a new dataset, or replaces the content of the
// dataset with the same filename.
//
// A replaced dataset keeps its ID, position and visibility. Its color is
// kept when the user picked it, otherwise it is recomputed from the palette
// for its position. The returned flag reports whether a dataset was replaced.
func (s *Session) Add(parsed *ParsedFile) (Dataset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, d := range s.datasets {
		if d.Filename != parsed.Filename {
			continue
		}
		next := *d
		next.ParsedFile = *parsed
		next.LoadedAt = s.now()
		if !next.CustomColor {
			next.Color = PaletteColor(i)
		}
		s.datasets[i] = &next
		return next, true
	}

	s.lastID++
	d := &Dataset{
		ParsedFile: *parsed,
		ID:         s.lastID,
		Color:      PaletteColor(len(s.datasets)),
		Visible:    true,
		LoadedAt:   s.now(),
	}
	s.datasets = append(s.datasets, d)
	return *d, false
}

// Remove deletes the dataset with the given ID. Other datasets keep their
// IDs and colors.
func (s *Session) Remove(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrDatasetNotFound
	}
	s.datasets = slices.Delete(s.datasets, i, i+1)
	return nil
}

// Clear removes every dataset and restarts ID assignment.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.datasets = nil
	s.lastID = 0
}

// SetVisible shows or hides a dataset.
func (s *Session) SetVisible(id int, visible bool) error {
	_, err := s.update(id, func(d *Dataset) error {
		d.Visible = visible
		return nil
	})
	return err
}

// ToggleVisible flips a dataset's visibility and returns the new value.
func (s *Session) ToggleVisible(id int) (bool, error) {
	ds, err := s.toggleVisible(id)
	return ds.Visible, err
}

func (s *Session) toggleVisible(id int) (Dataset, error) {
	return s.update(id, func(d *Dataset) error {
		d.Visible = !d.Visible
		return nil
	})
}

// SetColor assigns a user-chosen color. The color is normalized to
// "#rrggbb"; an unparseable color leaves the dataset unchanged.
func (s *Session) SetColor(id int, color string) error {
	_, err := s.setColor(id, color)
	return err
}

func (s *Session) setColor(id int, color string) (Dataset, error) {
	normalized, err := NormalizeColor(color)
	if err != nil {
		return Dataset{}, err
	}
	return s.update(id, func(d *Dataset) error {
		d.Color = normalized
		d.CustomColor = true
		return nil
	})
}

// Get returns a copy of the dataset with the given ID.
func (s *Session) Get(id int) (Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return Dataset{}, false
	}
	return *s.datasets[i], true
}

// Len returns the number of loaded datasets.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.datasets)
}

// Datasets returns every dataset in insertion order.
func (s *Session) Datasets() []Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Dataset, len(s.datasets))
	for i, d := range s.datasets {
		out[i] = *d
	}
	return out
}

// VisibleDatasets yields the visible datasets in insertion order. The
// sequence reads a snapshot taken when it is called, so later mutations do
// not affect an iteration in progress.
func (s *Session) VisibleDatasets() iter.Seq[Dataset] {
	snapshot := s.Datasets()
	return func(yield func(Dataset) bool) {
		for _, d := range snapshot {
			if !d.Visible {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}
}

// update applies fn to the dataset with the given ID under the write lock
// and returns the result. Datasets are replaced, not mutated, so copies
// handed out earlier stay consistent.
func (s *Session) update(id int, fn func(*Dataset) error) (Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Dataset{}, ErrDatasetNotFound
	}
	next := *s.datasets[i]
	if err := fn(&next); err != nil {
		return Dataset{}, err
	}
	s.datasets[i] = &next
	return next, nil
}

func (s *Session) indexOf(id int) int {
	return slices.IndexFunc(s.datasets, func(d *Dataset) bool { return d.ID == id })
}
