package royalty

import (
	"errors"
	"testing"
)

func ledgerOf(t *testing.T, c Category, entries ...any) *Ledger {
	t.Helper()
	l := NewLedger(c)
	for i := 0; i < len(entries); i += 2 {
		if _, err := l.Add(Contributor{Name: entries[i].(string)}, entries[i+1].(int)); err != nil {
			t.Fatalf("Add(%v, %v) failed: %v", entries[i], entries[i+1], err)
		}
	}
	return l
}

func TestLedgerValidate(t *testing.T) {
	tests := []struct {
		name    string
		ledger  *Ledger
		wantSum int
		wantErr bool
	}{
		{
			name:   "three contributors summing to 100",
			ledger: ledgerOf(t, Music, "A", 40, "B", 40, "C", 20),
		},
		{
			name:    "two contributors summing to 90",
			ledger:  ledgerOf(t, Lyrics, "A", 50, "B", 40),
			wantSum: 90,
			wantErr: true,
		},
		{
			name:    "one short of 100",
			ledger:  ledgerOf(t, Music, "A", 99),
			wantSum: 99,
			wantErr: true,
		},
		{
			name:    "one over 100",
			ledger:  ledgerOf(t, Music, "A", 60, "B", 41),
			wantSum: 101,
			wantErr: true,
		},
		{
			name:   "empty category",
			ledger: NewLedger(Instrumental),
		},
		{
			name:   "single contributor at 100",
			ledger: ledgerOf(t, Instrumental, "A", 100),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ledger.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var sm *SumMismatchError
			if !errors.As(err, &sm) {
				t.Fatalf("Validate() = %v, want *SumMismatchError", err)
			}
			if sm.Actual != tt.wantSum {
				t.Errorf("Actual = %d, want %d", sm.Actual, tt.wantSum)
			}
			if !errors.Is(err, ErrSumMismatch) {
				t.Errorf("errors.Is(err, ErrSumMismatch) = false")
			}
			if KindOf(err) != KindSumMismatch {
				t.Errorf("KindOf = %q, want %q", KindOf(err), KindSumMismatch)
			}
		})
	}
}

func TestLedgerRemainingPercentage(t *testing.T) {
	l := NewLedger(Music)
	if got := l.RemainingPercentage(); got != 100 {
		t.Fatalf("empty ledger remaining = %d, want 100", got)
	}

	if _, err := l.Add(Contributor{Name: "A"}, 60); err != nil {
		t.Fatalf("Add A: %v", err)
	}
	if got := l.RemainingPercentage(); got != 40 {
		t.Errorf("remaining after A = %d, want 40", got)
	}

	if _, err := l.Add(Contributor{Name: "B"}, 40); err != nil {
		t.Fatalf("Add B: %v", err)
	}
	if got := l.RemainingPercentage(); got != 0 {
		t.Errorf("remaining after B = %d, want 0", got)
	}

	// Individual edits may overshoot; remaining clamps at zero.
	if _, err := l.Add(Contributor{Name: "C"}, 10); err != nil {
		t.Fatalf("Add C: %v", err)
	}
	if got := l.RemainingPercentage(); got != 0 {
		t.Errorf("remaining after overshoot = %d, want 0", got)
	}
	if got := l.Total(); got != 110 {
		t.Errorf("Total() = %d, want 110", got)
	}
}

func TestLedgerSetPercentage(t *testing.T) {
	l := NewLedger(Music)
	ref := l.AddContributor(Contributor{Name: "A", Role: "composer"})

	if got, _ := l.Percentage(ref); got != 0 {
		t.Errorf("new contributor percentage = %d, want 0", got)
	}

	for _, bad := range []int{-1, 101, 250} {
		err := l.SetPercentage(ref, bad)
		var re *RangeError
		if !errors.As(err, &re) {
			t.Fatalf("SetPercentage(%d) = %v, want *RangeError", bad, err)
		}
		if re.Value != bad || re.Max != 100 {
			t.Errorf("RangeError = %+v", re)
		}
	}
	if got, _ := l.Percentage(ref); got != 0 {
		t.Errorf("percentage changed after rejected edits: %d", got)
	}

	for _, ok := range []int{0, 1, 100} {
		if err := l.SetPercentage(ref, ok); err != nil {
			t.Errorf("SetPercentage(%d) = %v", ok, err)
		}
	}

	err := l.SetPercentage("missing", 10)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("SetPercentage(missing) = %v, want ErrNotFound", err)
	}
}

func TestLedgerAddRejectsOutOfRange(t *testing.T) {
	l := NewLedger(Lyrics)
	if _, err := l.Add(Contributor{Name: "A"}, 101); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("Add(101) = %v, want ErrInvalidRange", err)
	}
	if l.Len() != 0 {
		t.Errorf("Len() = %d after rejected add, want 0", l.Len())
	}
}

func TestLedgerRemoveContributor(t *testing.T) {
	l := NewLedger(Music)
	a, _ := l.Add(Contributor{Name: "A"}, 50)
	b, _ := l.Add(Contributor{Name: "B"}, 50)

	if err := l.RemoveContributor(a); err != nil {
		t.Fatalf("RemoveContributor: %v", err)
	}
	if l.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", l.Len())
	}
	if c, err := l.Contributor(b); err != nil || c.Name != "B" {
		t.Errorf("Contributor(b) = %+v, %v", c, err)
	}
	if err := l.Validate(); !errors.Is(err, ErrSumMismatch) {
		t.Errorf("Validate() after removal = %v, want ErrSumMismatch", err)
	}
	if err := l.RemoveContributor(a); !errors.Is(err, ErrNotFound) {
		t.Errorf("second RemoveContributor = %v, want ErrNotFound", err)
	}
}

func TestLedgerDuplicateNames(t *testing.T) {
	l := NewLedger(Music)
	a := l.AddContributor(Contributor{Name: "Same"})
	b := l.AddContributor(Contributor{Name: "Same"})
	if a == b {
		t.Fatal("duplicate contributors share a reference")
	}
	if err := l.SetPercentage(a, 30); err != nil {
		t.Fatal(err)
	}
	if err := l.SetPercentage(b, 70); err != nil {
		t.Fatal(err)
	}
	if err := l.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestFinalizeIsolatesAllocation(t *testing.T) {
	l := ledgerOf(t, Music, "A", 50, "B", 50)
	alloc, err := l.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	ref := l.Shares()[0].Ref
	if err := l.SetPercentage(ref, 10); err != nil {
		t.Fatal(err)
	}
	if got := alloc.Total(); got != 100 {
		t.Errorf("allocation total changed to %d after ledger edit", got)
	}

	edit := alloc.Edit()
	if err := edit.SetPercentage(ref, 90); err != nil {
		t.Fatalf("Edit() lost reference: %v", err)
	}
	if got := alloc.Shares()[0].Percentage; got != 50 {
		t.Errorf("allocation share changed to %d after Edit() change", got)
	}
}

func TestNewAllocation(t *testing.T) {
	alloc, err := NewAllocation(Lyrics, []Share{
		{Contributor: Contributor{Name: "A"}, Percentage: 70},
		{Ref: "keep", Contributor: Contributor{Name: "B"}, Percentage: 30},
	})
	if err != nil {
		t.Fatalf("NewAllocation: %v", err)
	}
	shares := alloc.Shares()
	if shares[0].Ref == "" {
		t.Error("missing reference was not assigned")
	}
	if shares[1].Ref != "keep" {
		t.Errorf("Ref = %q, want keep", shares[1].Ref)
	}

	if _, err := NewAllocation(Lyrics, []Share{{Percentage: 70}}); !errors.Is(err, ErrSumMismatch) {
		t.Errorf("NewAllocation(70) = %v, want ErrSumMismatch", err)
	}
	if _, err := NewAllocation(Lyrics, []Share{{Percentage: 120}}); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("NewAllocation(120) = %v, want ErrInvalidRange", err)
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{in: "music", want: Music},
		{in: "Lyrics", want: Lyrics},
		{in: "instrumental", want: Instrumental},
		{in: "instruments", want: Instrumental},
		{in: " MUSIC ", want: Music},
		{in: "drums", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseCategory(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCategory(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
