package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	// StatusTentative marks a draft receipt; tentative receipts never count
	// towards debt balances.
	StatusTentative Status = "tentative"
	StatusUnpaid    Status = "unpaid"
	StatusPaid      Status = "paid"
)

type SplitType string

const (
	SplitNone SplitType = "none"
	// SplitTotal apportions the receipt's total across integer share weights.
	SplitTotal SplitType = "total_split"
	// SplitLineItem attributes each line item to the debtor tagged on it.
	SplitLineItem SplitType = "line_item"
)

// Expense is an outgoing transaction: either a flat (non-itemised) amount or
// an itemized receipt. A receipt can carry a split configuration that makes
// other entities debtors for part of its total, or an OwedToEntityId link that
// makes its whole total a debt the user owes that entity.
type Expense struct {
	ID              int
	Date            time.Time
	RecipientId     int
	CategoryId      *int
	PaymentMethodId int
	Status          Status
	IsNonItemised   bool
	// NonItemisedTotal is the flat total; only meaningful when IsNonItemised.
	NonItemisedTotal decimal.Decimal
	// DiscountPct is a whole-receipt percentage discount, 0-100.
	DiscountPct decimal.Decimal
	SplitType   SplitType
	// OwnShares is the user's own weight in a total split.
	OwnShares int
	// TotalShares caches the split denominator; values <= 0 are recomputed
	// from OwnShares and the split parts.
	TotalShares    int
	OwedToEntityId *int
	Note           string
	Items          []LineItem
	Splits         []Split
}

type LineItem struct {
	ID        int
	Name      string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	// ExcludeFromDiscount keeps the item's full price out of the receipt's
	// percentage discount.
	ExcludeFromDiscount bool
	// DebtorEntityId tags the item as owed by that entity; untagged items
	// belong to the payer.
	DebtorEntityId *int
}

type Split struct {
	ID        int
	EntityId  int
	SplitPart int
}

// DebtorPayment settles one entity's debt on one receipt.
type DebtorPayment struct {
	ID        int
	ExpenseId int
	EntityId  int
	PaidAt    time.Time
}
