package schedule

import (
	"time"

	"github.com/haushalt/haushalt/pkg/recurrence"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Schedule is a recurring commitment: a rent payment, a salary, a shared
// subscription. Kind decides what CounterpartyId refers to - the income source
// for income schedules, the vendor/recipient for expense schedules.
type Schedule struct {
	ID             int
	Kind           Kind
	CounterpartyId int
	CategoryId     *int
	// EntityId optionally ties the commitment to a person, e.g. a shared
	// subscription the entity chips in on.
	EntityId        *int
	PaymentMethodId int
	// ExpectedAmount is null when the amount is confirmed manually each time.
	ExpectedAmount decimal.NullDecimal
	Rule           string
	Anchors        recurrence.Anchors
	// RequiresConfirmation queues occurrences as pending items instead of
	// posting transactions directly.
	RequiresConfirmation bool
	// LookaheadDays is how far into the future pending items are surfaced.
	LookaheadDays int
	IsActive      bool
	Note          string
	// CreatedAt is the floor before which no occurrence is generated.
	CreatedAt time.Time
}
