package sitemapper

import "strings"

// unsafeKeywords mark actions with side effects that cannot be undone
// by navigating away: payments, cancellations, account removal.
var unsafeKeywords = []string{
	"delete",
	"remove",
	"cancel order",
	"checkout",
	"payment",
	"pay now",
	"place order",
	"confirm purchase",
	"submit order",
	"buy now",
	"unsubscribe",
	"deactivate",
	"close account",
	"logout",
	"sign out",
}

// IsSafeAction reports whether text describes an action that is safe to
// perform during automated exploration.
func IsSafeAction(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range unsafeKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	return true
}
