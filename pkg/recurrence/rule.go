package recurrence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Frequency string

const (
	Daily     Frequency = "DAILY"
	Weekly    Frequency = "WEEKLY"
	Monthly   Frequency = "MONTHLY"
	Quarterly Frequency = "QUARTERLY"
	Yearly    Frequency = "YEARLY"
)

// ErrInvalidRule is returned when a rule string is empty, has no FREQ segment,
// or names an unknown frequency.
var ErrInvalidRule = errors.New("invalid recurrence rule")

// Rule is a recurrence rule, serialized as "FREQ=<frequency>;INTERVAL=<n>".
type Rule struct {
	Freq     Frequency
	Interval int
}

// Anchors pin where in each cycle an occurrence falls. Only the anchors
// relevant to the rule's frequency are meaningful: DayOfMonth for monthly,
// quarterly and yearly rules, DayOfWeek for weekly rules, MonthOfYear for
// yearly rules.
type Anchors struct {
	DayOfMonth  int
	DayOfWeek   time.Weekday
	MonthOfYear time.Month
}

var validFrequencies = map[Frequency]bool{
	Daily:     true,
	Weekly:    true,
	Monthly:   true,
	Quarterly: true,
	Yearly:    true,
}

// Parse parses a rule string. FREQ is mandatory; INTERVAL is optional and
// defaults to 1. Non-numeric or sub-1 intervals are clamped to 1 rather than
// rejected - lenient on purpose, since stored rules may predate validation.
func Parse(s string) (Rule, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Rule{}, fmt.Errorf("%w: empty rule string", ErrInvalidRule)
	}

	var freq Frequency
	interval := 1
	for _, segment := range strings.Split(s, ";") {
		key, value, found := strings.Cut(segment, "=")
		if !found {
			continue
		}
		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "FREQ":
			freq = Frequency(strings.ToUpper(strings.TrimSpace(value)))
		case "INTERVAL":
			if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n >= 1 {
				interval = n
			}
		}
	}

	if freq == "" {
		return Rule{}, fmt.Errorf("%w: missing FREQ segment", ErrInvalidRule)
	}
	if !validFrequencies[freq] {
		return Rule{}, fmt.Errorf("%w: unknown frequency %q", ErrInvalidRule, freq)
	}

	return Rule{Freq: freq, Interval: interval}, nil
}

// String formats the rule so that Parse(r.String()) == r.
func (r Rule) String() string {
	return fmt.Sprintf("FREQ=%s;INTERVAL=%d", r.Freq, r.Interval)
}
