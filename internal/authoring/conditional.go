package authoring

import (
	"errors"
	"time"

	"github.com/mmynk/royaltysplit/internal/royalty"
)

// ConditionalFlow builds a ConditionalSplit in five steps:
// ChooseConditionType, DefineThreshold, DefinePreSplit, DefinePostSplit and
// Review. Back moves one step back and keeps everything entered so far.
type ConditionalFlow struct {
	step      Step
	now       func() time.Time
	condType  royalty.ConditionType
	threshold string
	pre       *royalty.Ledger
	post      *royalty.Ledger
	result    *royalty.ConditionalSplit
}

// NewConditionalFlow starts a flow for category. now anchors relative time
// thresholds; nil means time.Now.
func NewConditionalFlow(category royalty.Category, now func() time.Time) *ConditionalFlow {
	if now == nil {
		now = time.Now
	}
	return &ConditionalFlow{
		step: StepChooseConditionType,
		now:  now,
		pre:  royalty.NewLedger(category),
		post: royalty.NewLedger(category),
	}
}

func (f *ConditionalFlow) Kind() Kind { return KindConditional }

func (f *ConditionalFlow) Step() Step { return f.step }

// Category is the category under condition.
func (f *ConditionalFlow) Category() royalty.Category { return f.pre.Category() }

// SelectCategory changes the category under condition. It is only accepted
// before any contributor has been added.
func (f *ConditionalFlow) SelectCategory(c royalty.Category) error {
	if f.step.Closed() || f.step == StepReview {
		return wrongStep("select_category", f.step)
	}
	if f.pre.Len() > 0 || f.post.Len() > 0 {
		return &StepError{Action: "select_category", Step: f.step}
	}
	f.pre = royalty.NewLedger(c)
	f.post = royalty.NewLedger(c)
	return nil
}

// ChooseConditionType records the condition type. Choosing a different type
// after going back clears the threshold.
func (f *ConditionalFlow) ChooseConditionType(t royalty.ConditionType) error {
	if f.step != StepChooseConditionType {
		return wrongStep("choose_condition_type", f.step)
	}
	parsed, err := royalty.ParseConditionType(string(t))
	if err != nil {
		return &royalty.ThresholdError{Input: string(t), Reason: "unknown condition type"}
	}
	t = parsed
	if t != f.condType {
		f.threshold = ""
	}
	f.condType = t
	return nil
}

// DefineThreshold records the threshold in its text form after checking that
// it parses for the chosen condition type.
func (f *ConditionalFlow) DefineThreshold(raw string) error {
	if f.step != StepDefineThreshold {
		return wrongStep("define_threshold", f.step)
	}
	if _, err := royalty.ParseCondition(f.condType, raw, f.now()); err != nil {
		return err
	}
	f.threshold = raw
	return nil
}

func (f *ConditionalFlow) ledger(action string) (editor, error) {
	switch f.step {
	case StepDefinePreSplit:
		return editor{f.pre}, nil
	case StepDefinePostSplit:
		return editor{f.post}, nil
	}
	return editor{}, wrongStep(action, f.step)
}

// AddContributor adds c to the ledger of the current step. pct may not exceed
// the remaining percentage.
func (f *ConditionalFlow) AddContributor(c royalty.Contributor, pct int) (royalty.ContributorRef, error) {
	e, err := f.ledger("add_contributor")
	if err != nil {
		return "", err
	}
	return e.add(c, pct)
}

// SetPercentage changes the share of ref in the ledger of the current step.
func (f *ConditionalFlow) SetPercentage(ref royalty.ContributorRef, pct int) error {
	e, err := f.ledger("set_percentage")
	if err != nil {
		return err
	}
	return e.set(ref, pct)
}

// RemoveContributor drops ref from the ledger of the current step.
func (f *ConditionalFlow) RemoveContributor(ref royalty.ContributorRef) error {
	e, err := f.ledger("remove_contributor")
	if err != nil {
		return err
	}
	return e.remove(ref)
}

// Remaining is the unallocated percentage of the ledger being edited, or 0
// outside the split steps.
func (f *ConditionalFlow) Remaining() int {
	e, err := f.ledger("")
	if err != nil {
		return 0
	}
	return e.ledger.RemainingPercentage()
}

// Next advances one step once the current step is complete.
func (f *ConditionalFlow) Next() error {
	switch f.step {
	case StepChooseConditionType:
		if f.condType == "" {
			return ErrNoConditionType
		}
		f.step = StepDefineThreshold
	case StepDefineThreshold:
		if f.threshold == "" {
			return &royalty.ThresholdError{Reason: "threshold is not set"}
		}
		f.step = StepDefinePreSplit
	case StepDefinePreSplit:
		if err := requireFull(f.pre); err != nil {
			return err
		}
		f.step = StepDefinePostSplit
	case StepDefinePostSplit:
		if err := requireFull(f.post); err != nil {
			return err
		}
		f.step = StepReview
	default:
		return wrongStep("next", f.step)
	}
	return nil
}

// Back returns to the previous step.
func (f *ConditionalFlow) Back() error {
	switch f.step {
	case StepDefineThreshold:
		f.step = StepChooseConditionType
	case StepDefinePreSplit:
		f.step = StepDefineThreshold
	case StepDefinePostSplit:
		f.step = StepDefinePreSplit
	case StepReview:
		f.step = StepDefinePostSplit
	default:
		return wrongStep("back", f.step)
	}
	return nil
}

// Confirm creates the conditional split. Relative thresholds are resolved
// against the moment of confirmation. On a validation failure the flow moves
// to the step that owns the failing input and the error is returned.
func (f *ConditionalFlow) Confirm() (*royalty.ConditionalSplit, error) {
	if f.step != StepReview {
		return nil, wrongStep("confirm", f.step)
	}

	cond, err := royalty.ParseCondition(f.condType, f.threshold, f.now())
	if err != nil {
		f.step = StepDefineThreshold
		return nil, err
	}
	cs, err := royalty.NewConditionalSplit(cond, f.pre, f.post)
	if err != nil {
		var ce *royalty.CategoryError
		switch {
		case errors.As(err, &ce) && ce.Side == royalty.SidePost:
			f.step = StepDefinePostSplit
		case errors.As(err, &ce):
			f.step = StepDefinePreSplit
		default:
			f.step = StepDefineThreshold
		}
		return nil, err
	}

	f.result = cs
	f.step = StepDone
	return cs, nil
}

// Cancel discards everything entered so far.
func (f *ConditionalFlow) Cancel() {
	if f.step.Closed() {
		return
	}
	category := f.pre.Category()
	f.pre = royalty.NewLedger(category)
	f.post = royalty.NewLedger(category)
	f.condType = ""
	f.threshold = ""
	f.step = StepCancelled
}

// ConditionalState is a read-only view of a conditional flow.
type ConditionalState struct {
	Step          Step
	Category      royalty.Category
	ConditionType royalty.ConditionType
	Threshold     string
	Pre           []royalty.Share
	Post          []royalty.Share
	Remaining     int
	Result        *royalty.ConditionalSplit
}

func (f *ConditionalFlow) State() ConditionalState {
	return ConditionalState{
		Step:          f.step,
		Category:      f.pre.Category(),
		ConditionType: f.condType,
		Threshold:     f.threshold,
		Pre:           f.pre.Shares(),
		Post:          f.post.Shares(),
		Remaining:     f.Remaining(),
		Result:        f.result,
	}
}
