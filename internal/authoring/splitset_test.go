package authoring

import (
	"testing"

	"github.com/mmynk/royaltysplit/internal/royalty"
	"github.com/stretchr/testify/require"
)

func TestSplitSetFlowFromEmpty(t *testing.T) {
	var song royalty.SplitSet
	f := NewSplitSetFlow(song)
	require.Equal(t, StepDefineMusic, f.Step())
	require.Equal(t, royalty.Music, f.Category())
	require.Equal(t, 100, f.Remaining())

	_, err := f.AddContributor(royalty.Contributor{Name: "A", Role: "composer"}, 40)
	require.NoError(t, err)
	_, err = f.AddContributor(royalty.Contributor{Name: "B", Role: "producer"}, 40)
	require.NoError(t, err)
	_, err = f.AddContributor(royalty.Contributor{Name: "C", Role: "engineer"}, 20)
	require.NoError(t, err)
	require.Equal(t, 0, f.Remaining())
	require.NoError(t, f.Next())

	require.Equal(t, StepDefineLyrics, f.Step())
	_, err = f.AddContributor(royalty.Contributor{Name: "A"}, 100)
	require.NoError(t, err)
	require.NoError(t, f.Next())

	// Instrumental stays empty.
	require.Equal(t, StepDefineInstrumental, f.Step())
	require.NoError(t, f.Next())
	require.Equal(t, StepReview, f.Step())
	require.Empty(t, f.Category())

	require.NoError(t, f.Confirm(&song))
	require.Equal(t, StepDone, f.Step())
	require.Equal(t, 4, song.NumberOfSplits())
	require.InDelta(t, 66.7, song.SummaryPercentage(), 0.05)
}

func TestSplitSetFlowPartialCategoryBlocksNext(t *testing.T) {
	f := NewSplitSetFlow(royalty.SplitSet{})
	_, err := f.AddContributor(royalty.Contributor{Name: "A"}, 50)
	require.NoError(t, err)
	_, err = f.AddContributor(royalty.Contributor{Name: "B"}, 40)
	require.NoError(t, err)

	err = f.Next()
	var sm *royalty.SumMismatchError
	require.ErrorAs(t, err, &sm)
	require.Equal(t, 90, sm.Actual)
	require.Equal(t, StepDefineMusic, f.Step())
}

func TestSplitSetFlowSeededFromExisting(t *testing.T) {
	music := royalty.NewLedger(royalty.Music)
	_, err := music.Add(royalty.Contributor{Name: "Band"}, 100)
	require.NoError(t, err)
	base, err := royalty.NewSplitSet(music, nil, nil)
	require.NoError(t, err)

	f := NewSplitSetFlow(base)
	shares := f.State().Categories[royalty.Music]
	require.Len(t, shares, 1)
	require.Equal(t, 0, f.Remaining())

	require.NoError(t, f.SetPercentage(shares[0].Ref, 50))
	_, err = f.AddContributor(royalty.Contributor{Name: "Guest"}, 50)
	require.NoError(t, err)
	require.NoError(t, f.Next())
	require.NoError(t, f.Next())
	require.NoError(t, f.Next())

	target := base
	require.NoError(t, f.Confirm(&target))
	require.Equal(t, 2, target.Category(royalty.Music).Len())
	require.Equal(t, 1, base.Category(royalty.Music).Len(), "seed must not be edited in place")
}

func TestSplitSetFlowSelectCategoryAndBack(t *testing.T) {
	f := NewSplitSetFlow(royalty.SplitSet{})
	require.ErrorIs(t, f.Back(), ErrWrongStep)

	require.NoError(t, f.SelectCategory(royalty.Instrumental))
	require.Equal(t, StepDefineInstrumental, f.Step())
	require.NoError(t, f.Next())
	require.Equal(t, StepReview, f.Step())

	_, err := f.AddContributor(royalty.Contributor{Name: "A"}, 1)
	require.ErrorIs(t, err, ErrWrongStep)

	require.NoError(t, f.Back())
	require.Equal(t, StepDefineInstrumental, f.Step())
	require.NoError(t, f.Back())
	require.Equal(t, StepDefineLyrics, f.Step())

	require.ErrorIs(t, f.SelectCategory("drums"), royalty.ErrCategoryInvalid)
}

func TestSplitSetFlowConfirmFailureReturnsToCategory(t *testing.T) {
	f := NewSplitSetFlow(royalty.SplitSet{})
	require.NoError(t, f.Next())
	_, err := f.AddContributor(royalty.Contributor{Name: "A"}, 70)
	require.NoError(t, err)
	require.NoError(t, f.SelectCategory(royalty.Instrumental))
	require.NoError(t, f.Next())

	var target royalty.SplitSet
	err = f.Confirm(&target)
	require.ErrorIs(t, err, royalty.ErrSumMismatch)
	require.Equal(t, StepDefineLyrics, f.Step())
	require.Equal(t, royalty.SplitSet{}, target)
}

func TestSplitSetFlowCancel(t *testing.T) {
	f := NewSplitSetFlow(royalty.SplitSet{})
	_, err := f.AddContributor(royalty.Contributor{Name: "A"}, 100)
	require.NoError(t, err)
	f.Cancel()
	require.Equal(t, StepCancelled, f.Step())
	require.Empty(t, f.State().Categories[royalty.Music])
	require.ErrorIs(t, f.Next(), ErrFlowClosed)
	require.ErrorIs(t, f.SelectCategory(royalty.Music), ErrFlowClosed)
}
