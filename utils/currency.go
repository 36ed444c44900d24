package utils

import (
	"fmt"
	"strings"
)

// FormatRupees formats whole rupees with Indian digit grouping.
// Example: 1999 -> "₹1,999", 1234567 -> "₹12,34,567"
func FormatRupees(amount int) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := fmt.Sprintf("%d", amount)
	if len(digits) <= 3 {
		return sign + "₹" + digits
	}

	// last three digits, then groups of two
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	groups = append([]string{head}, groups...)

	return sign + "₹" + strings.Join(groups, ",") + "," + tail
}
