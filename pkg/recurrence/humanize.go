package recurrence

import "fmt"

// invalidRuleDescription is what Describe returns when the rule cannot be
// parsed. Describe is display-only and must never fail loudly.
const invalidRuleDescription = "Invalid recurrence rule"

// Describe renders a rule and its anchors as a natural-language description,
// e.g. "Monthly on the 3rd", "Every 2 weeks on Tuesday", "Annually on March 1st".
func Describe(ruleString string, anchors Anchors) string {
	rule, err := Parse(ruleString)
	if err != nil {
		return invalidRuleDescription
	}

	switch rule.Freq {
	case Daily:
		if rule.Interval == 1 {
			return "Daily"
		}
		return fmt.Sprintf("Every %d days", rule.Interval)
	case Weekly:
		if rule.Interval == 1 {
			return fmt.Sprintf("Weekly on %s", anchors.DayOfWeek)
		}
		return fmt.Sprintf("Every %d weeks on %s", rule.Interval, anchors.DayOfWeek)
	case Monthly:
		if rule.Interval == 1 {
			return fmt.Sprintf("Monthly on the %s", ordinal(anchors.DayOfMonth))
		}
		return fmt.Sprintf("Every %d months on the %s", rule.Interval, ordinal(anchors.DayOfMonth))
	case Quarterly:
		if rule.Interval == 1 {
			return fmt.Sprintf("Quarterly on the %s", ordinal(anchors.DayOfMonth))
		}
		return fmt.Sprintf("Every %d quarters on the %s", rule.Interval, ordinal(anchors.DayOfMonth))
	case Yearly:
		day := fmt.Sprintf("%s %s", anchors.MonthOfYear, ordinal(anchors.DayOfMonth))
		if rule.Interval == 1 {
			return fmt.Sprintf("Annually on %s", day)
		}
		return fmt.Sprintf("Every %d years on %s", rule.Interval, day)
	}
	return invalidRuleDescription
}

// ordinal renders 1 as "1st", 2 as "2nd", 11 as "11th" and so on.
func ordinal(n int) string {
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
