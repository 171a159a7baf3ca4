package core

// DetectRegions scans flags once and returns the active regions together with
// their Start/End transitions.
//
// A region opens at the first 1 after a 0 (or at index 0) and closes at the
// last 1 before the next 0. A region still open when the data ends is closed
// at the last sample. A lone 1 yields a region whose start equals its end.
// times and flags must have the same length; extra elements of the longer
// slice are ignored.
func DetectRegions(times []float64, flags []uint8) ([]ActiveRegion, []TransitionPoint) {
	n := min(len(times), len(flags))

	var (
		regions     []ActiveRegion
		transitions []TransitionPoint
		open        bool
		start       float64
	)

	for i := 0; i < n; i++ {
		switch {
		case flags[i] == 1 && (i == 0 || flags[i-1] == 0):
			open = true
			start = times[i]
			transitions = append(transitions, TransitionPoint{Time: times[i], Kind: TransitionStart})
		case flags[i] == 0 && i > 0 && flags[i-1] == 1 && open:
			regions = append(regions, ActiveRegion{Start: start, End: times[i-1]})
			transitions = append(transitions, TransitionPoint{Time: times[i-1], Kind: TransitionEnd})
			open = false
		}
	}

	if open {
		last := times[n-1]
		regions = append(regions, ActiveRegion{Start: start, End: last})
		transitions = append(transitions, TransitionPoint{Time: last, Kind: TransitionEnd})
	}

	return regions, transitions
}

// RegionPolicy tunes how raw regions are reported.
type RegionPolicy struct {
	// MergeGap joins two consecutive regions when at most this many
	// zero samples separate them. Zero reports every region as detected.
	MergeGap int
}

// Detect runs DetectRegions on p's rows and applies the policy.
func (rp RegionPolicy) Detect(p *ParsedFile) ([]ActiveRegion, []TransitionPoint) {
	times, flags := p.Times(), p.Flags()
	regions, transitions := DetectRegions(times, flags)
	if rp.MergeGap <= 0 || len(regions) < 2 {
		return regions, transitions
	}

	// Index of each region's first and last sample, rebuilt from flags so the
	// gap is counted in samples rather than time units.
	type span struct{ first, last int }
	spans := make([]span, 0, len(regions))
	for i := 0; i < len(flags); i++ {
		if flags[i] != 1 {
			continue
		}
		j := i
		for j+1 < len(flags) && flags[j+1] == 1 {
			j++
		}
		spans = append(spans, span{i, j})
		i = j
	}

	merged := []span{spans[0]}
	for _, s := range spans[1:] {
		prev := &merged[len(merged)-1]
		if s.first-prev.last-1 <= rp.MergeGap {
			prev.last = s.last
			continue
		}
		merged = append(merged, s)
	}

	regions = make([]ActiveRegion, len(merged))
	transitions = make([]TransitionPoint, 0, 2*len(merged))
	for i, s := range merged {
		regions[i] = ActiveRegion{Start: times[s.first], End: times[s.last]}
		transitions = append(transitions,
			TransitionPoint{Time: times[s.first], Kind: TransitionStart},
			TransitionPoint{Time: times[s.last], Kind: TransitionEnd},
		)
	}
	return regions, transitions
}
