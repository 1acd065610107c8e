package chat

import "strings"

// IsMealPlan reports whether an agent reply is a meal plan. The agent links
// every recipe it recommends, so a reply carrying a web address is a plan.
func IsMealPlan(reply string) bool {
	return strings.Contains(reply, ".com")
}
