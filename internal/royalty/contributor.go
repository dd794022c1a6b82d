package royalty

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Category is one of the three allocation buckets of a song.
type Category string

const (
	Music        Category = "music"
	Lyrics       Category = "lyrics"
	Instrumental Category = "instrumental"
)

// Categories lists every category in display order.
var Categories = [...]Category{Music, Lyrics, Instrumental}

// ParseCategory accepts a category name, case-insensitively. "instruments" is
// accepted as an alias for Instrumental.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "music":
		return Music, nil
	case "lyrics":
		return Lyrics, nil
	case "instrumental", "instruments":
		return Instrumental, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Contributor is a credited party as it appears on one category of one song.
type Contributor struct {
	Name           string
	Role           string
	PROAffiliation string
	Publisher      string
}

// ContributorRef identifies a contributor entry inside a single ledger.
type ContributorRef string

func newContributorRef() ContributorRef {
	return ContributorRef(uuid.NewString())
}

// Share is one contributor's percentage of a category.
type Share struct {
	Ref         ContributorRef
	Contributor Contributor
	Percentage  int
}

// AddContributor registers c on the ledger with a zero percentage and returns
// its reference. It never fails; the same person may appear more than once.
func (l *Ledger) AddContributor(c Contributor) ContributorRef {
	ref := newContributorRef()
	l.shares = append(l.shares, Share{Ref: ref, Contributor: c})
	return ref
}

// RemoveContributor drops ref from the ledger. The ledger total is left as is;
// Validate catches the resulting mismatch at commit time.
func (l *Ledger) RemoveContributor(ref ContributorRef) error {
	i := l.indexOf(ref)
	if i < 0 {
		return &NotFoundError{Ref: ref}
	}
	l.shares = append(l.shares[:i], l.shares[i+1:]...)
	return nil
}

// Contributor returns the contributor registered under ref.
func (l *Ledger) Contributor(ref ContributorRef) (Contributor, error) {
	i := l.indexOf(ref)
	if i < 0 {
		return Contributor{}, &NotFoundError{Ref: ref}
	}
	return l.shares[i].Contributor, nil
}

func (l *Ledger) indexOf(ref ContributorRef) int {
	for i := range l.shares {
		if l.shares[i].Ref == ref {
			return i
		}
	}
	return -1
}
