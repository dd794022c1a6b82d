package royalty

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Phase is the state of a conditional split.
type Phase string

const (
	// PhasePre is the initial, pending state: the pre-threshold split applies.
	PhasePre Phase = "pre"
	// PhasePost is terminal: the condition was met and the post-threshold split applies.
	PhasePost Phase = "post"
)

// ParsePhase accepts "pre" or "post".
func ParsePhase(s string) (Phase, error) {
	switch Phase(s) {
	case PhasePre, PhasePost:
		return Phase(s), nil
	}
	return "", fmt.Errorf("unknown phase %q", s)
}

// ConditionalSplit pairs two allocations of one category with the condition
// that switches between them. Phase moves from PhasePre to PhasePost at most
// once and never back.
type ConditionalSplit struct {
	id        string
	category  Category
	condition Condition
	pre       Allocation
	post      Allocation
	createdAt time.Time

	mu         sync.Mutex
	phase      Phase
	resolvedAt time.Time
}

// NewConditionalSplit validates the condition and both ledgers and returns a
// pending conditional split. The condition is checked first, then pre, then
// post; the first failure is returned. Both ledgers must be non-empty and
// cover the same category.
func NewConditionalSplit(cond Condition, pre, post *Ledger) (*ConditionalSplit, error) {
	if cond == nil {
		return nil, &ThresholdError{Reason: "condition is not set"}
	}
	if err := cond.validate(); err != nil {
		return nil, err
	}
	if pre == nil || post == nil {
		return nil, &CategoryError{Side: SidePre, Err: &SumMismatchError{Actual: 0}}
	}

	category := pre.Category()
	preAlloc, err := finalizeSide(pre, SidePre)
	if err != nil {
		return nil, err
	}
	if post.Category() != category {
		return nil, &CategoryError{Category: post.Category(), Side: SidePost, Err: ErrCategoryMismatch}
	}
	postAlloc, err := finalizeSide(post, SidePost)
	if err != nil {
		return nil, err
	}

	return &ConditionalSplit{
		id:        uuid.NewString(),
		category:  category,
		condition: cond,
		pre:       preAlloc,
		post:      postAlloc,
		createdAt: time.Now().UTC(),
		phase:     PhasePre,
	}, nil
}

func finalizeSide(l *Ledger, side Side) (Allocation, error) {
	if l.Len() == 0 {
		return Allocation{}, &CategoryError{Category: l.Category(), Side: side, Err: &SumMismatchError{Actual: 0}}
	}
	a, err := l.Finalize()
	if err != nil {
		return Allocation{}, &CategoryError{Category: l.Category(), Side: side, Err: err}
	}
	return a, nil
}

// Snapshot is the persisted form of a conditional split.
type Snapshot struct {
	ID         string
	Condition  Condition
	Pre        Allocation
	Post       Allocation
	Phase      Phase
	CreatedAt  time.Time
	ResolvedAt time.Time
}

// Restore rebuilds a conditional split from storage, keeping its id and phase.
func Restore(s Snapshot) (*ConditionalSplit, error) {
	if s.ID == "" {
		return nil, fmt.Errorf("restore conditional split: missing id")
	}
	cs, err := NewConditionalSplit(s.Condition, s.Pre.Edit(), s.Post.Edit())
	if err != nil {
		return nil, fmt.Errorf("restore conditional split %s: %w", s.ID, err)
	}
	if _, err := ParsePhase(string(s.Phase)); err != nil {
		return nil, fmt.Errorf("restore conditional split %s: %w", s.ID, err)
	}
	cs.id = s.ID
	cs.phase = s.Phase
	if !s.CreatedAt.IsZero() {
		cs.createdAt = s.CreatedAt.UTC()
	}
	cs.resolvedAt = s.ResolvedAt
	return cs, nil
}

// Snapshot returns the persisted form of c.
func (c *ConditionalSplit) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		ID:         c.id,
		Condition:  c.condition,
		Pre:        c.pre,
		Post:       c.post,
		Phase:      c.phase,
		CreatedAt:  c.createdAt,
		ResolvedAt: c.resolvedAt,
	}
}

func (c *ConditionalSplit) ID() string { return c.id }

func (c *ConditionalSplit) Category() Category { return c.category }

func (c *ConditionalSplit) Condition() Condition { return c.condition }

func (c *ConditionalSplit) Pre() Allocation { return c.pre }

func (c *ConditionalSplit) Post() Allocation { return c.post }

func (c *ConditionalSplit) CreatedAt() time.Time { return c.createdAt }

// ConditionType returns the type of the condition, or "" for a split that
// was never created.
func (c *ConditionalSplit) ConditionType() ConditionType {
	if !c.created() {
		return ""
	}
	return c.condition.Type()
}

func (c *ConditionalSplit) created() bool { return c != nil && c.condition != nil }

// Phase returns the current phase.
func (c *ConditionalSplit) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// ResolvedAt returns when the split moved to PhasePost, or the zero time.
func (c *ConditionalSplit) ResolvedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolvedAt
}

// Evaluate applies an observation. It reports true only for the call that
// moves the split from PhasePre to PhasePost; a resolved split ignores every
// further observation. The check and the transition happen under one lock, so
// concurrent callers cannot both see the transition.
//
// An observation of the wrong type for the condition returns
// ErrConditionMismatch and changes nothing.
func (c *ConditionalSplit) Evaluate(obs Observation) (bool, error) {
	if !c.created() {
		return false, ErrNotCreated
	}
	if obs == nil {
		return false, fmt.Errorf("%w: nil observation", ErrConditionMismatch)
	}
	met, err := c.condition.met(obs)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhasePost || !met {
		return false, nil
	}
	c.phase = PhasePost
	c.resolvedAt = resolutionTime(obs)
	return true, nil
}

func resolutionTime(obs Observation) time.Time {
	if clk, ok := obs.(Clock); ok && !clk.Now.IsZero() {
		return clk.Now.UTC()
	}
	return time.Now().UTC()
}

// ActiveSplit returns the pre allocation while pending and the post
// allocation once resolved.
func (c *ConditionalSplit) ActiveSplit() (Allocation, error) {
	if !c.created() {
		return Allocation{}, ErrNotCreated
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhasePost {
		return c.post, nil
	}
	return c.pre, nil
}

// Overlay returns base with this split's category replaced by the active
// allocation.
func (c *ConditionalSplit) Overlay(base SplitSet) (SplitSet, error) {
	active, err := c.ActiveSplit()
	if err != nil {
		return SplitSet{}, err
	}
	return base.With(active), nil
}
