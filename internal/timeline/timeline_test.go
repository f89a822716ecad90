package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilgisen/picreel/internal/models"
)

func images(n int) []*models.ImageRecord {
	out := make([]*models.ImageRecord, n)
	for i := range out {
		out[i] = &models.ImageRecord{ID: string(rune('a' + i))}
	}
	return out
}

var defaults = Options{GapMs: 500, TransitionMs: 1000, MinHoldMs: 1000}

func TestBuildSymmetricGap(t *testing.T) {
	tl, err := Build(images(2), []int{4000, 6000}, defaults)
	require.NoError(t, err)

	// 500 + 4000 + 500 + 500 + 6000 + 500
	assert.Equal(t, 12000, tl.TotalMs)

	first, second := tl.Entries[0], tl.Entries[1]
	assert.Equal(t, 0, first.Offset)
	assert.Equal(t, 5000, first.Slot)
	assert.Equal(t, 500, first.NarrationOffset)
	assert.Equal(t, 500, first.FadeIn)
	assert.Equal(t, 500, first.FadeOut)
	assert.Equal(t, 4000, first.Hold)

	assert.Equal(t, 5000, second.Offset)
	assert.Equal(t, 5500, second.NarrationOffset)
	assert.Equal(t, 500, second.FadeIn)
	assert.Equal(t, 500, second.FadeOut)
	assert.Equal(t, 6000, second.Hold)
	assert.Equal(t, tl.TotalMs, second.End())
}

func TestBuildKeepsOrder(t *testing.T) {
	imgs := images(3)
	tl, err := Build(imgs, []int{3000, 3000, 3000}, defaults)
	require.NoError(t, err)
	require.Len(t, tl.Entries, 3)
	for i, e := range tl.Entries {
		assert.Equal(t, i, e.Index)
		assert.Same(t, imgs[i], e.Image)
	}
}

func TestHoldFloorRaisesSlot(t *testing.T) {
	tl, err := Build(images(3), []int{0, 0, 0}, Options{GapMs: 0, TransitionMs: 1000, MinHoldMs: 1000})
	require.NoError(t, err)

	middle := tl.Entries[1]
	assert.Equal(t, 1000, middle.Hold)
	assert.Equal(t, 2000, middle.Slot)
	for _, e := range tl.Entries {
		assert.GreaterOrEqual(t, e.Hold, 1000)
		assert.Equal(t, e.Slot, e.FadeIn+e.Hold+e.FadeOut)
	}
}

func TestFixedClipGivesUniformHold(t *testing.T) {
	// narration disabled: every clip is the same fixed silence
	tl, err := Build(images(4), []int{5000, 5000, 5000, 5000}, Options{MinHoldMs: 1000})
	require.NoError(t, err)
	for _, e := range tl.Entries {
		assert.Equal(t, 5000, e.Hold)
	}

	tl, err = Build(images(4), []int{5000, 5000, 5000, 5000}, defaults)
	require.NoError(t, err)
	for i, e := range tl.Entries {
		assert.Equal(t, 5000, e.Hold, "entry %d", i)
		assert.Equal(t, 6000, e.Slot, "entry %d", i)
	}
	assert.Equal(t, 24000, tl.TotalMs)
}

func TestSingleEntryHoldsFixedClip(t *testing.T) {
	tl, err := Build(images(1), []int{5000}, defaults)
	require.NoError(t, err)

	only := tl.Entries[0]
	assert.Equal(t, 5000, only.Hold)
	assert.Equal(t, 500, only.FadeIn)
	assert.Equal(t, 500, only.FadeOut)
	assert.Equal(t, 6000, tl.TotalMs)
}

func TestEmptyCaptionKeepsSilenceHold(t *testing.T) {
	// no gap to absorb the transition: the hold still covers the whole clip
	tl, err := Build(images(3), []int{5000, 3000, 5000}, Options{GapMs: 0, TransitionMs: 1000, MinHoldMs: 1000})
	require.NoError(t, err)

	for i, e := range tl.Entries {
		assert.GreaterOrEqual(t, e.Hold, e.ClipMs, "entry %d", i)
	}
	assert.Equal(t, 3000, tl.Entries[1].Hold)
	assert.Equal(t, 4000, tl.Entries[1].Slot)
}

func TestNarrationStaysInsideHold(t *testing.T) {
	opts := []Options{
		defaults,
		{GapMs: 0, TransitionMs: 1000, MinHoldMs: 1000},
		{GapMs: 200, TransitionMs: 2000, MinHoldMs: 4000},
		{GapMs: 1500, TransitionMs: 300, MinHoldMs: 0},
	}
	for _, o := range opts {
		tl, err := Build(images(4), []int{3000, 0, 7250, 3001}, o)
		require.NoError(t, err)
		for i, e := range tl.Entries {
			holdStart := e.Offset + e.FadeIn
			assert.GreaterOrEqual(t, e.NarrationOffset, holdStart, "%+v entry %d", o, i)
			assert.LessOrEqual(t, e.NarrationOffset+e.ClipMs, holdStart+e.Hold, "%+v entry %d", o, i)
		}
		assert.Equal(t, tl.TotalMs, tl.Entries[3].End())
	}
}

func TestBuildMismatch(t *testing.T) {
	_, err := Build(images(2), []int{1000}, defaults)
	assert.Error(t, err)
}

func TestFrameSpansDoNotDrift(t *testing.T) {
	tl, err := Build(images(5), []int{3333, 4777, 3001, 5999, 3500}, defaults)
	require.NoError(t, err)

	sum := 0
	for _, e := range tl.Entries {
		sum += FrameSpan(e.Offset, e.End(), 30)
	}
	assert.Equal(t, tl.TotalFrames(30), sum)
	assert.Equal(t, 30, FramesFor(1000, 30))
	assert.Equal(t, 15, FramesFor(500, 30))
	assert.Equal(t, 0, FramesFor(-5, 30))
}
