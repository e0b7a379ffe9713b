package sqlgen

import "strings"

// keyword associations that signal a question spanning multiple tables.
// An empty secondary list means the primary keyword alone is enough.
var joinSignals = []struct {
	primary     string
	secondaries []string
}{
	{"customer", []string{"order", "product", "buy", "purchase", "history", "spent"}},
	{"product", []string{"customer", "who bought", "ordered by", "purchased by", "bought by"}},
	{"order", []string{"customer", "product", "item", "detail", "with"}},
	{"together", nil},
	{"along with", nil},
	{"including", nil},
	{"show", []string{"customer", "product", "order"}},
	{"list", []string{"customer", "product", "order"}},
}

// RequiresJoins reports whether the question likely needs more than one table
func RequiresJoins(question string) bool {
	lowered := strings.ToLower(question)

	for _, signal := range joinSignals {
		if !strings.Contains(lowered, signal.primary) {
			continue
		}

		if len(signal.secondaries) == 0 {
			return true
		}

		for _, secondary := range signal.secondaries {
			if strings.Contains(lowered, secondary) {
				return true
			}
		}
	}

	return false
}

// RepairJoins patches a statement that is missing an obvious join. Only two
// fixed textual rewrites are applied; anything else is left for execution to
// reject.
func RepairJoins(sql, question string) string {
	lowered := strings.ToLower(question)

	switch {
	case strings.Contains(lowered, "customer") && strings.Contains(lowered, "order"):
		if strings.Contains(sql, "FROM customers") && !strings.Contains(sql, "orders") {
			sql = strings.Replace(sql, "FROM customers",
				"FROM customers c\nJOIN orders o ON c.customer_id = o.customer_id", 1)
		}

	case strings.Contains(lowered, "product") && (strings.Contains(lowered, "customer") || strings.Contains(lowered, "who")):
		if strings.Contains(sql, "FROM products") && !strings.Contains(sql, "customers") {
			sql = strings.Replace(sql, "FROM products",
				"FROM products p\nJOIN order_items oi ON p.product_id = oi.product_id\n"+
					"JOIN orders o ON oi.order_id = o.order_id\n"+
					"JOIN customers c ON o.customer_id = c.customer_id", 1)
		}
	}

	return sql
}
