package royalty

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ConditionType selects what a conditional split waits for.
type ConditionType string

const (
	ConditionRecoupment ConditionType = "recoupment"
	ConditionTime       ConditionType = "time"
)

// ParseConditionType accepts "recoupment" or "time".
func ParseConditionType(s string) (ConditionType, error) {
	switch ConditionType(strings.ToLower(strings.TrimSpace(s))) {
	case ConditionRecoupment:
		return ConditionRecoupment, nil
	case ConditionTime:
		return ConditionTime, nil
	}
	return "", fmt.Errorf("unknown condition type %q", s)
}

// Cents is a currency amount in minor units.
type Cents int64

// String renders c as a plain decimal, e.g. "1250.50".
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// ParseAmount parses "750", "750.5", "750.00" or "$1,250.50" into cents.
// Negative amounts and more than two decimal places are rejected.
func ParseAmount(s string) (Cents, error) {
	raw := s
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, &ThresholdError{Input: raw, Reason: "amount is empty"}
	}
	if strings.HasPrefix(s, "-") {
		return 0, &ThresholdError{Input: raw, Reason: "amount is negative"}
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) {
		return 0, &ThresholdError{Input: raw, Reason: "amount is not a number"}
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units > maxAmountUnits {
		return 0, &ThresholdError{Input: raw, Reason: "amount is too large"}
	}
	var minor int64
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, &ThresholdError{Input: raw, Reason: "amount must have at most two decimal places"}
		}
		if !isDigits(frac) {
			return 0, &ThresholdError{Input: raw, Reason: "amount is not a number"}
		}
		if len(frac) == 1 {
			frac += "0"
		}
		minor, _ = strconv.ParseInt(frac, 10, 64)
	}
	return Cents(units*100 + minor), nil
}

// maxAmountUnits is the largest whole amount whose cents fit in an int64.
const maxAmountUnits = (math.MaxInt64 - 99) / 100

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// Condition is the trigger of a conditional split. The two implementations
// are Recoupment and Deadline.
type Condition interface {
	Type() ConditionType
	String() string
	validate() error
	met(Observation) (bool, error)
}

// Observation is an input from the revenue or clock collaborator. The two
// implementations are Revenue and Clock.
type Observation interface {
	ConditionType() ConditionType
	isObservation()
}

// Revenue is the cumulative revenue attributed to a song.
type Revenue struct {
	Total Cents
}

func (Revenue) ConditionType() ConditionType { return ConditionRecoupment }
func (Revenue) isObservation()               {}

// Clock is the current time as seen by the clock collaborator.
type Clock struct {
	Now time.Time
}

func (Clock) ConditionType() ConditionType { return ConditionTime }
func (Clock) isObservation()               {}

// Recoupment resolves once cumulative revenue reaches Threshold.
type Recoupment struct {
	Threshold Cents
}

// NewRecoupment returns a recoupment condition, rejecting negative amounts.
func NewRecoupment(threshold Cents) (Recoupment, error) {
	r := Recoupment{Threshold: threshold}
	return r, r.validate()
}

func (r Recoupment) Type() ConditionType { return ConditionRecoupment }

func (r Recoupment) String() string {
	return "revenue reaches $" + r.Threshold.String()
}

func (r Recoupment) validate() error {
	if r.Threshold < 0 {
		return &ThresholdError{Input: r.Threshold.String(), Reason: "amount is negative"}
	}
	return nil
}

func (r Recoupment) met(obs Observation) (bool, error) {
	rev, ok := obs.(Revenue)
	if !ok {
		return false, fmt.Errorf("%w: recoupment condition got %s observation", ErrConditionMismatch, obs.ConditionType())
	}
	return rev.Total >= r.Threshold, nil
}

// Deadline resolves once the clock reaches At.
type Deadline struct {
	At time.Time
}

// NewDeadline returns a time condition, rejecting the zero time. At is kept
// to whole seconds, the precision it is stored with.
func NewDeadline(at time.Time) (Deadline, error) {
	d := Deadline{At: at.UTC().Truncate(time.Second)}
	return d, d.validate()
}

func (d Deadline) Type() ConditionType { return ConditionTime }

func (d Deadline) String() string {
	return "time reaches " + d.At.UTC().Format(time.RFC3339)
}

func (d Deadline) validate() error {
	if d.At.IsZero() {
		return &ThresholdError{Reason: "date is not set"}
	}
	return nil
}

func (d Deadline) met(obs Observation) (bool, error) {
	clk, ok := obs.(Clock)
	if !ok {
		return false, fmt.Errorf("%w: time condition got %s observation", ErrConditionMismatch, obs.ConditionType())
	}
	return !clk.Now.Before(d.At), nil
}

const dateLayout = "2006-01-02"

// maxDeadlineDays is the longest day count a time.Duration can hold.
const maxDeadlineDays = math.MaxInt64 / int64(24*time.Hour)

// ParseDeadline accepts an RFC 3339 time, a YYYY-MM-DD date (midnight UTC), a
// Go duration such as "720h", or a day count such as "90d". Durations are
// added to start.
func ParseDeadline(s string, start time.Time) (Deadline, error) {
	raw := s
	s = strings.TrimSpace(s)
	if s == "" {
		return Deadline{}, &ThresholdError{Input: raw, Reason: "date is empty"}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return NewDeadline(t)
	}
	if t, err := time.ParseInLocation(dateLayout, s, time.UTC); err == nil {
		return NewDeadline(t)
	}

	var d time.Duration
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.ParseInt(days, 10, 64)
		if err != nil {
			return Deadline{}, &ThresholdError{Input: raw, Reason: "day count is not a number"}
		}
		if n <= 0 {
			return Deadline{}, &ThresholdError{Input: raw, Reason: "duration must be positive"}
		}
		if n > maxDeadlineDays {
			return Deadline{}, &ThresholdError{Input: raw, Reason: "day count is too large"}
		}
		d = time.Duration(n) * 24 * time.Hour
	} else {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return Deadline{}, &ThresholdError{Input: raw, Reason: "expected RFC 3339 time, YYYY-MM-DD date, or duration"}
		}
		d = parsed
	}
	if d <= 0 {
		return Deadline{}, &ThresholdError{Input: raw, Reason: "duration must be positive"}
	}
	if start.IsZero() {
		return Deadline{}, &ThresholdError{Input: raw, Reason: "duration needs a start time"}
	}
	return NewDeadline(start.Add(d))
}

// ParseCondition builds a condition of type t from its text form. start
// anchors relative time thresholds.
func ParseCondition(t ConditionType, raw string, start time.Time) (Condition, error) {
	switch t {
	case ConditionRecoupment:
		amount, err := ParseAmount(raw)
		if err != nil {
			return nil, err
		}
		return NewRecoupment(amount)
	case ConditionTime:
		return ParseDeadline(raw, start)
	}
	return nil, &ThresholdError{Input: raw, Reason: fmt.Sprintf("unknown condition type %q", t)}
}
