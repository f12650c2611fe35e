package expense

import "github.com/shopspring/decimal"

var oneHundred = decimal.NewFromInt(100)

// Total is the line's quantity times its unit price.
func (li LineItem) Total() decimal.Decimal {
	return li.Quantity.Mul(li.UnitPrice)
}

// TotalWithDiscount applies the receipt-wide percentage discount to the line,
// unless the line is excluded from it.
func (li LineItem) TotalWithDiscount(discountPct decimal.Decimal) decimal.Decimal {
	if li.ExcludeFromDiscount || discountPct.IsZero() {
		return li.Total()
	}
	return li.Total().Mul(oneHundred.Sub(discountPct)).Div(oneHundred)
}

// Subtotal sums all line totals before any discount.
func Subtotal(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, li := range items {
		sum = sum.Add(li.Total())
	}
	return sum
}

// DiscountableAmount sums the line totals that participate in the discount.
func DiscountableAmount(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, li := range items {
		if !li.ExcludeFromDiscount {
			sum = sum.Add(li.Total())
		}
	}
	return sum
}

// DiscountAmount is the money removed by a percentage discount over the
// discountable lines. A zero percentage yields zero.
func DiscountAmount(items []LineItem, discountPct decimal.Decimal) decimal.Decimal {
	if discountPct.IsZero() {
		return decimal.Zero
	}
	return DiscountableAmount(items).Mul(discountPct).Div(oneHundred)
}

// TotalWithDiscount is the receipt total after the percentage discount.
func TotalWithDiscount(items []LineItem, discountPct decimal.Decimal) decimal.Decimal {
	return Subtotal(items).Sub(DiscountAmount(items, discountPct))
}

// TotalShares is the split denominator: the user's own weight plus every
// split part.
func TotalShares(ownShares int, splits []Split) int {
	total := ownShares
	for _, s := range splits {
		total += s.SplitPart
	}
	return total
}

// Apportionment is the outcome of dividing a receipt total across shares.
type Apportionment struct {
	Own       decimal.Decimal
	PerEntity map[int]decimal.Decimal
}

// Apportion divides total across the given share weights proportionally.
// When the denominator is not positive nothing is apportioned and every
// amount, the user's own included, is zero.
func Apportion(total decimal.Decimal, ownShares int, splits []Split) Apportionment {
	result := Apportionment{Own: decimal.Zero, PerEntity: map[int]decimal.Decimal{}}
	shares := TotalShares(ownShares, splits)
	if shares <= 0 {
		return result
	}
	denominator := decimal.NewFromInt(int64(shares))
	assigned := decimal.Zero
	for _, s := range splits {
		amount := total.Mul(decimal.NewFromInt(int64(s.SplitPart))).Div(denominator)
		result.PerEntity[s.EntityId] = result.PerEntity[s.EntityId].Add(amount)
		assigned = assigned.Add(amount)
	}
	result.Own = total.Sub(assigned)
	return result
}

// LineItemShares sums each debtor's tagged lines, discounted. Untagged lines
// belong to the payer and are not returned.
func LineItemShares(items []LineItem, discountPct decimal.Decimal) map[int]decimal.Decimal {
	shares := map[int]decimal.Decimal{}
	for _, li := range items {
		if li.DebtorEntityId == nil {
			continue
		}
		entityId := *li.DebtorEntityId
		shares[entityId] = shares[entityId].Add(li.TotalWithDiscount(discountPct))
	}
	return shares
}

// Total is the receipt's grand total: the flat amount for non-itemised
// receipts, the discounted item sum otherwise.
func (e Expense) Total() decimal.Decimal {
	if e.IsNonItemised {
		return e.NonItemisedTotal
	}
	return TotalWithDiscount(e.Items, e.DiscountPct)
}

// EffectiveTotalShares returns the cached denominator when present, else
// recomputes it.
func (e Expense) EffectiveTotalShares() int {
	if e.TotalShares > 0 {
		return e.TotalShares
	}
	return TotalShares(e.OwnShares, e.Splits)
}

// ShareForEntity is the amount the given entity owes on this receipt under
// its split configuration.
func (e Expense) ShareForEntity(entityId int) decimal.Decimal {
	switch e.SplitType {
	case SplitTotal:
		shares := e.EffectiveTotalShares()
		if shares <= 0 {
			return decimal.Zero
		}
		part := 0
		for _, s := range e.Splits {
			if s.EntityId == entityId {
				part += s.SplitPart
			}
		}
		if part == 0 {
			return decimal.Zero
		}
		return e.Total().Mul(decimal.NewFromInt(int64(part))).Div(decimal.NewFromInt(int64(shares)))
	case SplitLineItem:
		return LineItemShares(e.Items, e.DiscountPct)[entityId]
	default:
		return decimal.Zero
	}
}
