package royalty

// SplitSet holds the three category allocations of one song. The zero value
// is a valid set with every category empty.
type SplitSet struct {
	music        Allocation
	lyrics       Allocation
	instrumental Allocation
}

// NewSplitSet validates the three ledgers and returns the resulting set. A nil
// ledger counts as an empty category.
func NewSplitSet(music, lyrics, instrumental *Ledger) (SplitSet, error) {
	var set SplitSet
	for _, in := range []struct {
		category Category
		ledger   *Ledger
	}{
		{Music, music},
		{Lyrics, lyrics},
		{Instrumental, instrumental},
	} {
		l := in.ledger
		if l == nil {
			l = NewLedger(in.category)
		}
		a, err := l.Finalize()
		if err != nil {
			return SplitSet{}, &CategoryError{Category: in.category, Err: err}
		}
		a.category = in.category
		set = set.With(a)
	}
	return set, nil
}

// Commit replaces the set with the three ledgers as a unit. When any category
// fails validation the set is left untouched and a *CategoryError naming the
// first failing category is returned.
func (s *SplitSet) Commit(music, lyrics, instrumental *Ledger) error {
	next, err := NewSplitSet(music, lyrics, instrumental)
	if err != nil {
		return err
	}
	*s = next
	return nil
}

// Category returns the allocation for c.
func (s SplitSet) Category(c Category) Allocation {
	switch c {
	case Music:
		return s.music
	case Lyrics:
		return s.lyrics
	case Instrumental:
		return s.instrumental
	}
	return Allocation{category: c}
}

// With returns a copy of s with a's category replaced by a.
func (s SplitSet) With(a Allocation) SplitSet {
	switch a.category {
	case Music:
		s.music = a
	case Lyrics:
		s.lyrics = a
	case Instrumental:
		s.instrumental = a
	}
	return s
}

// SummaryPercentage is the sum of the three category totals divided by three.
// Since each total is 0 or 100 this reports how many categories are fully
// allocated, not an ownership figure.
func (s SplitSet) SummaryPercentage() float64 {
	total := s.music.Total() + s.lyrics.Total() + s.instrumental.Total()
	return float64(total) / float64(len(Categories))
}

// AllocatedCategories counts the non-empty categories.
func (s SplitSet) AllocatedCategories() int {
	n := 0
	for _, c := range Categories {
		if !s.Category(c).IsEmpty() {
			n++
		}
	}
	return n
}

// NumberOfSplits counts contributor entries across all categories.
func (s SplitSet) NumberOfSplits() int {
	return s.music.Len() + s.lyrics.Len() + s.instrumental.Len()
}
