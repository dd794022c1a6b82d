package authoring

import (
	"errors"
	"testing"
	"time"

	"github.com/mmynk/royaltysplit/internal/royalty"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// toReview drives a fresh flow to Review with a $750 recoupment and 20/80 ->
// 60/40 artist/label splits.
func toReview(t *testing.T) *ConditionalFlow {
	t.Helper()
	f := NewConditionalFlow(royalty.Music, clock)
	require.NoError(t, f.ChooseConditionType(royalty.ConditionRecoupment))
	require.NoError(t, f.Next())
	require.NoError(t, f.DefineThreshold("$750"))
	require.NoError(t, f.Next())

	_, err := f.AddContributor(royalty.Contributor{Name: "Artist"}, 20)
	require.NoError(t, err)
	_, err = f.AddContributor(royalty.Contributor{Name: "Label"}, 80)
	require.NoError(t, err)
	require.NoError(t, f.Next())

	_, err = f.AddContributor(royalty.Contributor{Name: "Artist"}, 60)
	require.NoError(t, err)
	_, err = f.AddContributor(royalty.Contributor{Name: "Label"}, 40)
	require.NoError(t, err)
	require.NoError(t, f.Next())
	require.Equal(t, StepReview, f.Step())
	return f
}

func TestConditionalFlowHappyPath(t *testing.T) {
	f := toReview(t)

	cs, err := f.Confirm()
	require.NoError(t, err)
	require.Equal(t, StepDone, f.Step())
	require.Equal(t, royalty.PhasePre, cs.Phase())
	require.Equal(t, royalty.Music, cs.Category())
	require.Equal(t, royalty.Recoupment{Threshold: 75000}, cs.Condition())
	require.Same(t, cs, f.State().Result)

	_, err = f.Confirm()
	require.ErrorIs(t, err, ErrFlowClosed)
}

func TestConditionalFlowRequiresConditionType(t *testing.T) {
	f := NewConditionalFlow(royalty.Lyrics, clock)
	require.ErrorIs(t, f.Next(), ErrNoConditionType)
	require.Equal(t, StepChooseConditionType, f.Step())

	err := f.ChooseConditionType("weather")
	require.Equal(t, royalty.KindInvalidThreshold, royalty.KindOf(err))
}

func TestConditionalFlowThresholdStep(t *testing.T) {
	f := NewConditionalFlow(royalty.Music, clock)
	require.NoError(t, f.ChooseConditionType(royalty.ConditionTime))
	require.NoError(t, f.Next())

	require.ErrorIs(t, f.Next(), royalty.ErrInvalidThreshold, "threshold is required")
	require.ErrorIs(t, f.DefineThreshold("whenever"), royalty.ErrInvalidThreshold)
	require.ErrorIs(t, f.DefineThreshold("-3d"), royalty.ErrInvalidThreshold)
	require.NoError(t, f.DefineThreshold("90d"))
	require.NoError(t, f.Next())
	require.Equal(t, StepDefinePreSplit, f.Step())
}

func TestConditionalFlowRemainingCapsInput(t *testing.T) {
	f := NewConditionalFlow(royalty.Music, clock)
	require.NoError(t, f.ChooseConditionType(royalty.ConditionRecoupment))
	require.NoError(t, f.Next())
	require.NoError(t, f.DefineThreshold("100"))
	require.NoError(t, f.Next())

	require.Equal(t, 100, f.Remaining())
	a, err := f.AddContributor(royalty.Contributor{Name: "A"}, 60)
	require.NoError(t, err)
	require.Equal(t, 40, f.Remaining())

	_, err = f.AddContributor(royalty.Contributor{Name: "B"}, 41)
	var re *royalty.RangeError
	require.ErrorAs(t, err, &re)
	require.Equal(t, 40, re.Max)
	require.Equal(t, 40, f.Remaining(), "rejected input must not change the ledger")

	require.ErrorIs(t, f.Next(), royalty.ErrSumMismatch)

	require.ErrorIs(t, f.SetPercentage(a, 101), royalty.ErrInvalidRange)
	require.NoError(t, f.SetPercentage(a, 100))
	require.Equal(t, 0, f.Remaining())
	require.NoError(t, f.SetPercentage(a, 30))
	require.Equal(t, 70, f.Remaining())

	require.ErrorIs(t, f.RemoveContributor("nope"), royalty.ErrNotFound)
	require.NoError(t, f.RemoveContributor(a))
	require.Equal(t, 100, f.Remaining())
}

func TestConditionalFlowBackKeepsData(t *testing.T) {
	f := toReview(t)

	require.NoError(t, f.Back())
	require.Equal(t, StepDefinePostSplit, f.Step())
	require.NoError(t, f.Back())
	require.NoError(t, f.Back())
	require.Equal(t, StepDefineThreshold, f.Step())
	require.NoError(t, f.Back())
	require.Equal(t, StepChooseConditionType, f.Step())
	require.ErrorIs(t, f.Back(), ErrWrongStep)

	state := f.State()
	require.Equal(t, "$750", state.Threshold)
	require.Len(t, state.Pre, 2)
	require.Len(t, state.Post, 2)

	// Switching type drops a threshold that no longer applies.
	require.NoError(t, f.ChooseConditionType(royalty.ConditionTime))
	require.Empty(t, f.State().Threshold)
}

func TestConditionalFlowWrongStep(t *testing.T) {
	f := NewConditionalFlow(royalty.Music, clock)

	_, err := f.AddContributor(royalty.Contributor{Name: "A"}, 10)
	require.ErrorIs(t, err, ErrWrongStep)
	require.ErrorIs(t, f.DefineThreshold("100"), ErrWrongStep)
	_, err = f.Confirm()
	require.ErrorIs(t, err, ErrWrongStep)

	var se *StepError
	require.True(t, errors.As(f.SetPercentage("x", 1), &se))
	require.Equal(t, StepChooseConditionType, se.Step)
}

func TestConditionalFlowSelectCategory(t *testing.T) {
	f := NewConditionalFlow(royalty.Music, clock)
	require.NoError(t, f.SelectCategory(royalty.Instrumental))
	require.Equal(t, royalty.Instrumental, f.Category())

	f = toReview(t)
	require.ErrorIs(t, f.SelectCategory(royalty.Lyrics), ErrWrongStep)
	require.NoError(t, f.Back())
	require.ErrorIs(t, f.SelectCategory(royalty.Lyrics), ErrWrongStep, "contributors already added")
}

func TestConditionalFlowConfirmResolvesRelativeThreshold(t *testing.T) {
	now := fixedNow
	f := NewConditionalFlow(royalty.Lyrics, func() time.Time { return now })
	require.NoError(t, f.ChooseConditionType(royalty.ConditionTime))
	require.NoError(t, f.Next())
	require.NoError(t, f.DefineThreshold("30d"))
	require.NoError(t, f.Next())
	_, err := f.AddContributor(royalty.Contributor{Name: "Writer"}, 100)
	require.NoError(t, err)
	require.NoError(t, f.Next())
	_, err = f.AddContributor(royalty.Contributor{Name: "Estate"}, 100)
	require.NoError(t, err)
	require.NoError(t, f.Next())

	now = fixedNow.Add(48 * time.Hour)
	cs, err := f.Confirm()
	require.NoError(t, err)
	d, ok := cs.Condition().(royalty.Deadline)
	require.True(t, ok)
	require.True(t, d.At.Equal(now.AddDate(0, 0, 30)))
}

func TestConditionalFlowCancel(t *testing.T) {
	f := toReview(t)
	f.Cancel()
	require.Equal(t, StepCancelled, f.Step())

	state := f.State()
	require.Empty(t, state.Pre)
	require.Empty(t, state.Post)
	require.Empty(t, state.ConditionType)

	require.ErrorIs(t, f.Next(), ErrFlowClosed)
	require.ErrorIs(t, f.Back(), ErrFlowClosed)
	_, err := f.AddContributor(royalty.Contributor{Name: "A"}, 1)
	require.ErrorIs(t, err, ErrFlowClosed)
}
