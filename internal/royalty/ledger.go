package royalty

// FullAllocation is the total every finalized, non-empty category must reach.
const FullAllocation = 100

// Ledger is the editable allocation of one category. The sum rule is checked
// by Validate, not by individual edits, so a caller can build a split up over
// several steps.
type Ledger struct {
	category Category
	shares   []Share
}

// NewLedger returns an empty ledger for category c.
func NewLedger(c Category) *Ledger {
	return &Ledger{category: c}
}

// Category returns the category this ledger allocates.
func (l *Ledger) Category() Category { return l.category }

// Add registers c and sets its percentage in one step. Nothing is added when
// pct is out of range.
func (l *Ledger) Add(c Contributor, pct int) (ContributorRef, error) {
	if err := checkRange(pct, FullAllocation); err != nil {
		return "", err
	}
	ref := l.AddContributor(c)
	l.shares[len(l.shares)-1].Percentage = pct
	return ref, nil
}

// SetPercentage sets the share of ref. The running total is not checked here.
func (l *Ledger) SetPercentage(ref ContributorRef, value int) error {
	if err := checkRange(value, FullAllocation); err != nil {
		return err
	}
	i := l.indexOf(ref)
	if i < 0 {
		return &NotFoundError{Ref: ref}
	}
	l.shares[i].Percentage = value
	return nil
}

// Percentage returns the current share of ref.
func (l *Ledger) Percentage(ref ContributorRef) (int, error) {
	i := l.indexOf(ref)
	if i < 0 {
		return 0, &NotFoundError{Ref: ref}
	}
	return l.shares[i].Percentage, nil
}

// Total is the sum of all current percentages.
func (l *Ledger) Total() int {
	return sumShares(l.shares)
}

// Len is the number of contributors on the ledger.
func (l *Ledger) Len() int { return len(l.shares) }

// Shares returns a copy of the ledger entries in insertion order.
func (l *Ledger) Shares() []Share {
	return cloneShares(l.shares)
}

// Validate succeeds when the ledger is empty or sums to exactly 100.
func (l *Ledger) Validate() error {
	return validateShares(l.shares)
}

// RemainingPercentage is 100 minus the current total, clamped at 0.
func (l *Ledger) RemainingPercentage() int {
	remaining := FullAllocation - l.Total()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Finalize validates the ledger and returns an immutable snapshot of it.
func (l *Ledger) Finalize() (Allocation, error) {
	if err := l.Validate(); err != nil {
		return Allocation{}, err
	}
	return Allocation{category: l.category, shares: cloneShares(l.shares)}, nil
}

// Allocation is a validated, immutable category allocation.
type Allocation struct {
	category Category
	shares   []Share
}

// NewAllocation builds an allocation from stored shares. Shares without a
// reference are given one.
func NewAllocation(c Category, shares []Share) (Allocation, error) {
	l := NewLedger(c)
	for _, s := range shares {
		if err := checkRange(s.Percentage, FullAllocation); err != nil {
			return Allocation{}, err
		}
		if s.Ref == "" {
			s.Ref = newContributorRef()
		}
		l.shares = append(l.shares, s)
	}
	return l.Finalize()
}

// Category returns the allocated category.
func (a Allocation) Category() Category { return a.category }

// Shares returns a copy of the allocation entries.
func (a Allocation) Shares() []Share { return cloneShares(a.shares) }

// Total is 100 for an allocated category and 0 for an empty one.
func (a Allocation) Total() int { return sumShares(a.shares) }

// IsEmpty reports whether no contributor has been allocated.
func (a Allocation) IsEmpty() bool { return len(a.shares) == 0 }

// Len is the number of contributors in the allocation.
func (a Allocation) Len() int { return len(a.shares) }

// Edit returns a ledger seeded with this allocation, keeping references.
func (a Allocation) Edit() *Ledger {
	return &Ledger{category: a.category, shares: cloneShares(a.shares)}
}

func checkRange(value, max int) error {
	if value < 0 || value > max {
		return &RangeError{Value: value, Max: max}
	}
	return nil
}

func validateShares(shares []Share) error {
	if len(shares) == 0 {
		return nil
	}
	if total := sumShares(shares); total != FullAllocation {
		return &SumMismatchError{Actual: total}
	}
	return nil
}

func sumShares(shares []Share) int {
	total := 0
	for _, s := range shares {
		total += s.Percentage
	}
	return total
}

func cloneShares(shares []Share) []Share {
	if len(shares) == 0 {
		return nil
	}
	out := make([]Share, len(shares))
	copy(out, shares)
	return out
}
