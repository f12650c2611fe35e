package income

import (
	"time"

	"github.com/shopspring/decimal"
)

// Income is a confirmed incoming transaction.
type Income struct {
	ID              int
	Date            time.Time
	Amount          decimal.Decimal
	SourceId        int
	CategoryId      *int
	PaymentMethodId int
	Note            string
}
