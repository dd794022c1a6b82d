package authoring

import (
	"errors"

	"github.com/mmynk/royaltysplit/internal/royalty"
)

var categorySteps = [...]Step{StepDefineMusic, StepDefineLyrics, StepDefineInstrumental}

// SplitSetFlow edits the three categories of a song one after another and
// commits them together from Review. A category may be left empty.
type SplitSetFlow struct {
	step    Step
	ledgers [len(royalty.Categories)]*royalty.Ledger
}

// NewSplitSetFlow starts a flow seeded with the song's current split set.
func NewSplitSetFlow(base royalty.SplitSet) *SplitSetFlow {
	f := &SplitSetFlow{step: StepDefineMusic}
	for i, c := range royalty.Categories {
		f.ledgers[i] = base.Category(c).Edit()
		if f.ledgers[i].Category() == "" {
			f.ledgers[i] = royalty.NewLedger(c)
		}
	}
	return f
}

func (f *SplitSetFlow) Kind() Kind { return KindSplitSet }

func (f *SplitSetFlow) Step() Step { return f.step }

func categoryIndex(step Step) int {
	for i, s := range categorySteps {
		if s == step {
			return i
		}
	}
	return -1
}

// Category is the category being edited, or "" outside the category steps.
func (f *SplitSetFlow) Category() royalty.Category {
	if i := categoryIndex(f.step); i >= 0 {
		return royalty.Categories[i]
	}
	return ""
}

// SelectCategory jumps to the step of category c.
func (f *SplitSetFlow) SelectCategory(c royalty.Category) error {
	if f.step.Closed() {
		return ErrFlowClosed
	}
	for i, cat := range royalty.Categories {
		if cat == c {
			f.step = categorySteps[i]
			return nil
		}
	}
	return &royalty.CategoryError{Category: c, Err: royalty.ErrCategoryInvalid}
}

func (f *SplitSetFlow) ledger(action string) (editor, error) {
	i := categoryIndex(f.step)
	if i < 0 {
		return editor{}, wrongStep(action, f.step)
	}
	return editor{f.ledgers[i]}, nil
}

// AddContributor adds c to the category being edited.
func (f *SplitSetFlow) AddContributor(c royalty.Contributor, pct int) (royalty.ContributorRef, error) {
	e, err := f.ledger("add_contributor")
	if err != nil {
		return "", err
	}
	return e.add(c, pct)
}

// SetPercentage changes the share of ref in the category being edited.
func (f *SplitSetFlow) SetPercentage(ref royalty.ContributorRef, pct int) error {
	e, err := f.ledger("set_percentage")
	if err != nil {
		return err
	}
	return e.set(ref, pct)
}

// RemoveContributor drops ref from the category being edited.
func (f *SplitSetFlow) RemoveContributor(ref royalty.ContributorRef) error {
	e, err := f.ledger("remove_contributor")
	if err != nil {
		return err
	}
	return e.remove(ref)
}

// Remaining is the unallocated percentage of the category being edited.
func (f *SplitSetFlow) Remaining() int {
	e, err := f.ledger("")
	if err != nil {
		return 0
	}
	return e.ledger.RemainingPercentage()
}

// Next leaves a category step once its ledger is empty or fully allocated.
func (f *SplitSetFlow) Next() error {
	i := categoryIndex(f.step)
	if i < 0 {
		return wrongStep("next", f.step)
	}
	if err := f.ledgers[i].Validate(); err != nil {
		return err
	}
	if i+1 < len(categorySteps) {
		f.step = categorySteps[i+1]
	} else {
		f.step = StepReview
	}
	return nil
}

// Back returns to the previous step.
func (f *SplitSetFlow) Back() error {
	switch i := categoryIndex(f.step); {
	case f.step == StepReview:
		f.step = StepDefineInstrumental
	case i > 0:
		f.step = categorySteps[i-1]
	default:
		return wrongStep("back", f.step)
	}
	return nil
}

// Confirm commits the three ledgers to target as a unit. On failure target is
// unchanged and the flow returns to the failing category's step.
func (f *SplitSetFlow) Confirm(target *royalty.SplitSet) error {
	if f.step != StepReview {
		return wrongStep("confirm", f.step)
	}
	err := target.Commit(f.ledgers[0], f.ledgers[1], f.ledgers[2])
	if err != nil {
		var ce *royalty.CategoryError
		if errors.As(err, &ce) {
			for i, c := range royalty.Categories {
				if c == ce.Category {
					f.step = categorySteps[i]
				}
			}
		}
		return err
	}
	f.step = StepDone
	return nil
}

// Cancel discards every edit.
func (f *SplitSetFlow) Cancel() {
	if f.step.Closed() {
		return
	}
	for i, c := range royalty.Categories {
		f.ledgers[i] = royalty.NewLedger(c)
	}
	f.step = StepCancelled
}

// SplitSetState is a read-only view of a split-set flow.
type SplitSetState struct {
	Step       Step
	Category   royalty.Category
	Remaining  int
	Categories map[royalty.Category][]royalty.Share
}

func (f *SplitSetFlow) State() SplitSetState {
	cats := make(map[royalty.Category][]royalty.Share, len(royalty.Categories))
	for i, c := range royalty.Categories {
		cats[c] = f.ledgers[i].Shares()
	}
	return SplitSetState{
		Step:       f.step,
		Category:   f.Category(),
		Remaining:  f.Remaining(),
		Categories: cats,
	}
}
