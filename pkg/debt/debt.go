// Package debt computes who owes whom, always from the underlying receipts.
// Balances are never cached.
package debt

import (
	"time"

	"github.com/shopspring/decimal"
)

type Direction string

const (
	// DirectionToEntity means the user owes the entity the receipt's total.
	DirectionToEntity Direction = "to_entity"
	// DirectionToMe means the entity owes the user a share of the receipt.
	DirectionToMe Direction = "to_me"
)

// ReceiptDebt is one receipt's contribution to an entity's balance.
type ReceiptDebt struct {
	ExpenseId int
	Date      time.Time
	Direction Direction
	Amount    decimal.Decimal
	Settled   bool
}

// Summary is the full picture between the user and one entity. NetBalance is
// positive when the entity owes the user overall.
type Summary struct {
	Receipts     []ReceiptDebt
	DebtToEntity decimal.Decimal
	DebtToMe     decimal.Decimal
	NetBalance   decimal.Decimal
}

// DebtorShare is one debtor's stake in a single receipt.
type DebtorShare struct {
	EntityId int
	Amount   decimal.Decimal
	Paid     bool
}
