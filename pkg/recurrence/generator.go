package recurrence

import (
	"sync"
	"time"
)

// MaxOccurrences is the hard cap on generated dates per call. It is a safety
// valve against malformed rules producing unbounded output, not a normal
// termination path.
const MaxOccurrences = 500

// Generator expands a rule and its anchors into concrete occurrence dates.
// Results are memoized for the process lifetime: generation is a pure function
// of its inputs, so a cache entry never goes stale.
type Generator struct {
	mu    sync.RWMutex
	cache map[cacheKey]cacheEntry
}

type cacheKey struct {
	rule        string
	dayOfMonth  int
	dayOfWeek   time.Weekday
	monthOfYear time.Month
	createdAt   int64
	from        int64
	to          int64
}

type cacheEntry struct {
	dates  []time.Time
	capped bool
}

func NewGenerator() *Generator {
	return &Generator{cache: make(map[cacheKey]cacheEntry)}
}

// Occurrences returns every date in [from, to] on which the rule fires,
// anchored to createdAt (no occurrence is generated before it). The boolean
// is true when generation stopped early at MaxOccurrences. The returned slice
// is shared with the cache and must not be mutated by callers.
func (g *Generator) Occurrences(rule Rule, anchors Anchors, createdAt, from, to time.Time) ([]time.Time, bool) {
	key := cacheKey{
		rule:        rule.String(),
		dayOfMonth:  anchors.DayOfMonth,
		dayOfWeek:   anchors.DayOfWeek,
		monthOfYear: anchors.MonthOfYear,
		createdAt:   truncateToDay(createdAt).Unix(),
		from:        truncateToDay(from).Unix(),
		to:          truncateToDay(to).Unix(),
	}

	g.mu.RLock()
	entry, ok := g.cache[key]
	g.mu.RUnlock()
	if ok {
		return entry.dates, entry.capped
	}

	dates, capped := generate(rule, anchors, truncateToDay(createdAt), truncateToDay(from), truncateToDay(to))

	g.mu.Lock()
	g.cache[key] = cacheEntry{dates: dates, capped: capped}
	g.mu.Unlock()

	return dates, capped
}

func generate(rule Rule, anchors Anchors, createdAt, from, to time.Time) ([]time.Time, bool) {
	cursor := snapToAnchor(rule, anchors, createdAt)

	for cursor.Before(from) {
		cursor = advance(rule, anchors, cursor)
	}

	var dates []time.Time
	for !cursor.After(to) {
		dates = append(dates, cursor)
		if len(dates) >= MaxOccurrences {
			return dates, true
		}
		cursor = advance(rule, anchors, cursor)
	}
	return dates, false
}

// snapToAnchor moves the seed date onto the first valid anchor position for
// the rule's frequency.
func snapToAnchor(rule Rule, anchors Anchors, seed time.Time) time.Time {
	switch rule.Freq {
	case Yearly:
		month := anchors.MonthOfYear
		if month < time.January || month > time.December {
			month = seed.Month()
		}
		return dayInMonth(seed.Year(), month, anchorDay(anchors, seed))
	case Monthly, Quarterly:
		return dayInMonth(seed.Year(), seed.Month(), anchorDay(anchors, seed))
	case Weekly:
		cursor := seed
		for cursor.Weekday() != anchors.DayOfWeek {
			cursor = cursor.AddDate(0, 0, 1)
		}
		return cursor
	default:
		return seed
	}
}

// advance steps the cursor forward by one interval. Month-based frequencies
// re-derive the day from the anchor against the target month's length on
// every step, so a 31st anchor lands on the 30th of a 30-day month and the
// next step returns to the 31st - no drift accumulates.
func advance(rule Rule, anchors Anchors, cursor time.Time) time.Time {
	switch rule.Freq {
	case Daily:
		return cursor.AddDate(0, 0, rule.Interval)
	case Weekly:
		return cursor.AddDate(0, 0, 7*rule.Interval)
	case Monthly:
		return addMonths(cursor, rule.Interval, anchorDay(anchors, cursor))
	case Quarterly:
		return addMonths(cursor, 3*rule.Interval, anchorDay(anchors, cursor))
	case Yearly:
		year := cursor.Year() + rule.Interval
		return dayInMonth(year, cursor.Month(), anchorDay(anchors, cursor))
	default:
		return cursor.AddDate(0, 0, 1)
	}
}

func anchorDay(anchors Anchors, fallback time.Time) int {
	if anchors.DayOfMonth >= 1 {
		return anchors.DayOfMonth
	}
	return fallback.Day()
}

// addMonths adds months by year/month arithmetic rather than AddDate, which
// would normalize January 31st + 1 month into March.
func addMonths(cursor time.Time, months, day int) time.Time {
	total := int(cursor.Month()) - 1 + months
	year := cursor.Year() + total/12
	month := time.Month(total%12 + 1)
	return dayInMonth(year, month, day)
}

// dayInMonth clamps day against the month's actual length.
func dayInMonth(year int, month time.Month, day int) time.Time {
	if last := daysIn(year, month); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	// day 0 of the following month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
