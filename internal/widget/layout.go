package widget

// Track selects which edge strip a window stacks on. Minimized and maximized
// windows stack independently; a session's own Minimized flag picks its track.
type Track int

const (
	TrackMaximized Track = iota
	TrackMinimized
)

type LayoutConfig struct {
	// distance of the first slot from the anchored screen edge, per track
	MaximizedBase int
	MinimizedBase int

	MaximizedSlotWidth int
	MinimizedSlotWidth int
	Gap                int
}

func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		MaximizedBase:      24,
		MinimizedBase:      16,
		MaximizedSlotWidth: 328,
		MinimizedSlotWidth: 248,
		Gap:                12,
	}
}

type Placement struct {
	Key    Key
	Track  Track
	Offset int
}

// Layout maps the ordered visible sessions to non-overlapping edge offsets.
// It is a pure function: call it again whenever the visible set changes.
// Within a track, offsets grow by slot width plus gap in visibility order.
func Layout(cfg LayoutConfig, sessions []SessionView) []Placement {
	placements := make([]Placement, 0, len(sessions))
	maxIdx, minIdx := 0, 0
	for _, s := range sessions {
		if s.Minimized {
			placements = append(placements, Placement{
				Key:    s.Key,
				Track:  TrackMinimized,
				Offset: TrackOffset(cfg, TrackMinimized, minIdx),
			})
			minIdx++
			continue
		}
		placements = append(placements, Placement{
			Key:    s.Key,
			Track:  TrackMaximized,
			Offset: TrackOffset(cfg, TrackMaximized, maxIdx),
		})
		maxIdx++
	}
	return placements
}

// TrackOffset returns the edge offset of the index-th visible window on a
// track.
func TrackOffset(cfg LayoutConfig, t Track, index int) int {
	if t == TrackMinimized {
		return cfg.MinimizedBase + index*(cfg.MinimizedSlotWidth+cfg.Gap)
	}
	return cfg.MaximizedBase + index*(cfg.MaximizedSlotWidth+cfg.Gap)
}
