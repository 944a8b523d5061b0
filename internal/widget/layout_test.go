package widget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viewAt(product uint64, minimized bool) SessionView {
	return SessionView{
		Key:       Key{SellerID: 7, ProductID: product},
		Minimized: minimized,
	}
}

func TestLayoutSpacesWindowsEvenly(t *testing.T) {
	cfg := DefaultLayoutConfig()
	sessions := []SessionView{
		viewAt(101, false),
		viewAt(202, false),
		viewAt(303, false),
	}

	placements := Layout(cfg, sessions)
	require.Len(t, placements, 3)

	step := cfg.MaximizedSlotWidth + cfg.Gap
	for i, p := range placements {
		assert.Equal(t, TrackMaximized, p.Track)
		assert.Equal(t, cfg.MaximizedBase+i*step, p.Offset)
	}
	for i := 1; i < len(placements); i++ {
		assert.Greater(t, placements[i].Offset, placements[i-1].Offset)
	}
}

func TestLayoutTracksAreIndependent(t *testing.T) {
	cfg := DefaultLayoutConfig()
	sessions := []SessionView{
		viewAt(101, false),
		viewAt(202, true),
		viewAt(303, false),
		viewAt(404, true),
	}

	placements := Layout(cfg, sessions)
	require.Len(t, placements, 4)

	// maximized windows take slots 0 and 1 on their own track
	assert.Equal(t, cfg.MaximizedBase, placements[0].Offset)
	assert.Equal(t, cfg.MaximizedBase+cfg.MaximizedSlotWidth+cfg.Gap, placements[2].Offset)

	// minimized windows do the same on theirs, undisturbed by the others
	assert.Equal(t, TrackMinimized, placements[1].Track)
	assert.Equal(t, cfg.MinimizedBase, placements[1].Offset)
	assert.Equal(t, cfg.MinimizedBase+cfg.MinimizedSlotWidth+cfg.Gap, placements[3].Offset)
}

func TestLayoutRecomputesAfterClose(t *testing.T) {
	cfg := DefaultLayoutConfig()
	reg := NewRegistry()
	for _, id := range []uint64{101, 202, 303} {
		p := sampleProduct()
		p.ID = id
		reg.Open(sampleSeller(), p)
	}

	before := Layout(cfg, reg.Visible())
	require.Len(t, before, 3)

	reg.Close(Key{SellerID: 7, ProductID: 101})

	after := Layout(cfg, reg.Visible())
	require.Len(t, after, 2)
	assert.Equal(t, uint64(202), after[0].Key.ProductID)
	assert.Equal(t, cfg.MaximizedBase, after[0].Offset, "survivors slide toward the edge")
	assert.Equal(t, uint64(303), after[1].Key.ProductID)
	assert.Equal(t, cfg.MaximizedBase+cfg.MaximizedSlotWidth+cfg.Gap, after[1].Offset)
}

func TestLayoutEmptyInput(t *testing.T) {
	placements := Layout(DefaultLayoutConfig(), nil)
	assert.Empty(t, placements)
}

func TestTrackOffsetGrowsLinearly(t *testing.T) {
	cfg := DefaultLayoutConfig()
	assert.Equal(t, cfg.MinimizedBase, TrackOffset(cfg, TrackMinimized, 0))
	assert.Equal(t, cfg.MinimizedBase+2*(cfg.MinimizedSlotWidth+cfg.Gap), TrackOffset(cfg, TrackMinimized, 2))
	assert.Equal(t, cfg.MaximizedBase+5*(cfg.MaximizedSlotWidth+cfg.Gap), TrackOffset(cfg, TrackMaximized, 5))
}
