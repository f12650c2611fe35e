package expense

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func item(name, qty, price string) LineItem {
	return LineItem{Name: name, Quantity: dec(qty), UnitPrice: dec(price)}
}

func TestDiscountMath(t *testing.T) {
	t.Run("should apply a percentage discount to the subtotal", func(t *testing.T) {
		items := []LineItem{item("bread", "2", "1.50"), item("milk", "1", "1.00")}

		total := TotalWithDiscount(items, dec("10"))

		assert.True(t, dec("3.60").Equal(total), "got %s", total)
	})

	t.Run("should leave excluded items at full price", func(t *testing.T) {
		deposit := item("deposit", "1", "5.00")
		deposit.ExcludeFromDiscount = true
		items := []LineItem{item("bread", "1", "10.00"), deposit}

		assert.True(t, dec("10.00").Equal(DiscountableAmount(items)))
		assert.True(t, dec("1.00").Equal(DiscountAmount(items, dec("10"))))
		assert.True(t, dec("14.00").Equal(TotalWithDiscount(items, dec("10"))))
	})

	t.Run("should not discount anything at zero percent", func(t *testing.T) {
		items := []LineItem{item("bread", "1", "10.00")}

		assert.True(t, DiscountAmount(items, decimal.Zero).IsZero())
		assert.True(t, dec("10.00").Equal(TotalWithDiscount(items, decimal.Zero)))
	})

	t.Run("should discount a single line unless excluded", func(t *testing.T) {
		li := item("bread", "1", "10.00")

		assert.True(t, dec("9").Equal(li.TotalWithDiscount(dec("10"))))

		li.ExcludeFromDiscount = true
		assert.True(t, dec("10.00").Equal(li.TotalWithDiscount(dec("10"))))
	})
}

func TestApportion(t *testing.T) {
	t.Run("should conserve the total across uneven shares", func(t *testing.T) {
		splits := []Split{{EntityId: 1, SplitPart: 1}, {EntityId: 2, SplitPart: 1}}

		result := Apportion(dec("100"), 1, splits)

		sum := result.Own.Add(result.PerEntity[1]).Add(result.PerEntity[2])
		diff := sum.Sub(dec("100")).Abs()
		assert.True(t, diff.LessThan(dec("0.01")), "leaked %s", diff)
	})

	t.Run("should weight shares proportionally", func(t *testing.T) {
		splits := []Split{{EntityId: 7, SplitPart: 2}}

		result := Apportion(dec("60"), 1, splits)

		assert.True(t, dec("40").Equal(result.PerEntity[7]), "got %s", result.PerEntity[7])
		assert.True(t, dec("20").Equal(result.Own), "got %s", result.Own)
	})

	t.Run("should apportion nothing when shares are not positive", func(t *testing.T) {
		result := Apportion(dec("60"), 0, nil)

		assert.True(t, result.Own.IsZero(), "own amount should be zero, got %s", result.Own)
		assert.Empty(t, result.PerEntity)
	})

	t.Run("should apportion nothing when share parts cancel out", func(t *testing.T) {
		splits := []Split{{EntityId: 3, SplitPart: -2}}

		result := Apportion(dec("45"), 2, splits)

		assert.True(t, result.Own.IsZero())
		assert.Empty(t, result.PerEntity)
	})
}

func TestLineItemShares(t *testing.T) {
	t.Run("should sum tagged lines per debtor and ignore untagged ones", func(t *testing.T) {
		alice, bob := 1, 2
		tagged := func(li LineItem, entity *int) LineItem {
			li.DebtorEntityId = entity
			return li
		}
		items := []LineItem{
			tagged(item("wine", "1", "12.00"), &alice),
			tagged(item("cheese", "2", "4.00"), &alice),
			tagged(item("beer", "1", "3.00"), &bob),
			item("bread", "1", "2.00"),
		}

		shares := LineItemShares(items, decimal.Zero)

		assert.Len(t, shares, 2)
		assert.True(t, dec("20.00").Equal(shares[alice]))
		assert.True(t, dec("3.00").Equal(shares[bob]))
	})
}

func TestExpenseTotal(t *testing.T) {
	t.Run("should use the flat amount for non-itemised receipts", func(t *testing.T) {
		e := Expense{IsNonItemised: true, NonItemisedTotal: dec("42.50")}

		assert.True(t, dec("42.50").Equal(e.Total()))
	})

	t.Run("should use the discounted item sum otherwise", func(t *testing.T) {
		e := Expense{
			Items:       []LineItem{item("bread", "2", "1.50")},
			DiscountPct: dec("10"),
		}

		assert.True(t, dec("2.70").Equal(e.Total()))
	})
}

func TestShareForEntity(t *testing.T) {
	t.Run("should divide a total split by share weights", func(t *testing.T) {
		e := Expense{
			IsNonItemised:    true,
			NonItemisedTotal: dec("60"),
			SplitType:        SplitTotal,
			OwnShares:        1,
			Splits:           []Split{{EntityId: 3, SplitPart: 2}},
		}

		assert.True(t, dec("40").Equal(e.ShareForEntity(3)))
		assert.True(t, e.ShareForEntity(9).IsZero())
	})

	t.Run("should prefer the cached denominator when present", func(t *testing.T) {
		e := Expense{
			IsNonItemised:    true,
			NonItemisedTotal: dec("60"),
			SplitType:        SplitTotal,
			OwnShares:        1,
			TotalShares:      6,
			Splits:           []Split{{EntityId: 3, SplitPart: 2}},
		}

		assert.True(t, dec("20").Equal(e.ShareForEntity(3)))
	})

	t.Run("should read line item tags for line item splits", func(t *testing.T) {
		bob := 2
		wine := item("wine", "1", "12.00")
		wine.DebtorEntityId = &bob
		e := Expense{SplitType: SplitLineItem, Items: []LineItem{wine, item("bread", "1", "2.00")}}

		assert.True(t, dec("12.00").Equal(e.ShareForEntity(bob)))
	})

	t.Run("should owe nothing without a split", func(t *testing.T) {
		e := Expense{IsNonItemised: true, NonItemisedTotal: dec("60")}

		assert.True(t, e.ShareForEntity(1).IsZero())
	})
}
