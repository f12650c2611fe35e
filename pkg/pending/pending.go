package pending

import (
	"time"

	"github.com/shopspring/decimal"
)

// PendingOccurrence is a generated occurrence of a schedule awaiting human
// confirmation. Confirmation and rejection are both terminal: the row is
// deleted, never kept in a terminal state.
type PendingOccurrence struct {
	ID         int
	ScheduleId int
	// PlannedDate is the calendar day the occurrence fell on. At most one row
	// exists per (schedule, planned date) pair.
	PlannedDate time.Time
	// Amount defaults to the schedule's expected amount; null means the
	// amount is decided at confirmation time.
	Amount decimal.NullDecimal
}
