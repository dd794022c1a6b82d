// Package authoring holds the guided flows that build split sets and
// conditional splits step by step, and the registry that keeps in-progress
// flows between requests.
//
// A flow is a plain value: its current step plus the partial data entered so
// far. Nothing a flow holds is persisted until Confirm succeeds, so dropping a
// flow at any step is a complete cancellation.
package authoring

import (
	"errors"
	"fmt"

	"github.com/mmynk/royaltysplit/internal/royalty"
)

// Step names a position in an authoring flow.
type Step string

const (
	StepChooseConditionType Step = "choose_condition_type"
	StepDefineThreshold     Step = "define_threshold"
	StepDefinePreSplit      Step = "define_pre_split"
	StepDefinePostSplit     Step = "define_post_split"

	StepDefineMusic        Step = "define_music"
	StepDefineLyrics       Step = "define_lyrics"
	StepDefineInstrumental Step = "define_instrumental"

	StepReview    Step = "review"
	StepDone      Step = "done"
	StepCancelled Step = "cancelled"
)

// Closed reports whether s is terminal.
func (s Step) Closed() bool {
	return s == StepDone || s == StepCancelled
}

// Kind selects which flow a session runs.
type Kind string

const (
	KindSplitSet    Kind = "split_set"
	KindConditional Kind = "conditional"
)

// ParseKind accepts "split_set" or "conditional".
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindSplitSet, KindConditional:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown flow kind %q", s)
}

var (
	// ErrWrongStep is returned for an action the current step does not accept.
	ErrWrongStep = errors.New("action not allowed in current step")
	// ErrNoConditionType is returned when leaving the first conditional step
	// before a condition type was chosen.
	ErrNoConditionType = errors.New("condition type not chosen")
	// ErrFlowClosed is returned for any action on a finished or cancelled flow.
	ErrFlowClosed = errors.New("flow is closed")
	// ErrSessionNotFound is returned for unknown, expired, or foreign sessions.
	ErrSessionNotFound = errors.New("authoring session not found")
)

// StepError reports an action attempted in the wrong step.
type StepError struct {
	Action string
	Step   Step
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s not allowed in step %s", e.Action, e.Step)
}

func (e *StepError) Is(target error) bool { return target == ErrWrongStep }

func wrongStep(action string, step Step) error {
	if step.Closed() {
		return ErrFlowClosed
	}
	return &StepError{Action: action, Step: step}
}

// editor applies contributor edits to one ledger, refusing any input that
// would push the category past 100%.
type editor struct {
	ledger *royalty.Ledger
}

func (e editor) add(c royalty.Contributor, pct int) (royalty.ContributorRef, error) {
	if remaining := e.ledger.RemainingPercentage(); pct < 0 || pct > remaining {
		return "", &royalty.RangeError{Value: pct, Max: remaining}
	}
	return e.ledger.Add(c, pct)
}

func (e editor) set(ref royalty.ContributorRef, pct int) error {
	current, err := e.ledger.Percentage(ref)
	if err != nil {
		return err
	}
	if limit := e.ledger.RemainingPercentage() + current; pct < 0 || pct > limit {
		return &royalty.RangeError{Value: pct, Max: limit}
	}
	return e.ledger.SetPercentage(ref, pct)
}

func (e editor) remove(ref royalty.ContributorRef) error {
	return e.ledger.RemoveContributor(ref)
}

// requireFull is the exit check of a step that must end fully allocated.
func requireFull(l *royalty.Ledger) error {
	if total := l.Total(); total != royalty.FullAllocation {
		return &royalty.SumMismatchError{Actual: total}
	}
	return nil
}
