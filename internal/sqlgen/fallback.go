package sqlgen

import (
	"fmt"
	"strings"

	"github.com/rthomason/storelens/internal/schema"
)

// LocalSQL picks a complete, schema-correct statement from a fixed decision
// table using question keywords. First matching rule wins. Every template is
// bounded and safe to execute as-is; when the tables a matched rule needs are
// absent the question falls through to the default recent-orders listing, not
// to later rules.
func LocalSQL(question string, desc *schema.Description, maxRows int) string {
	lowered := strings.ToLower(question)

	containsAny := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(lowered, w) {
				return true
			}
		}

		return false
	}

	switch {
	case containsAny("customer", "client", "buyer"):
		if desc.HasTable("customers") && desc.HasTable("orders") {
			if containsAny("spent", "spending", "total", "top") {
				return fmt.Sprintf(`SELECT c.customer_id, c.name, c.country,
       SUM(o.total_amount) as total_spent,
       COUNT(o.order_id) as order_count
FROM customers c
JOIN orders o ON c.customer_id = o.customer_id
WHERE o.status = 'completed'
GROUP BY c.customer_id, c.name, c.country
ORDER BY total_spent DESC
LIMIT %d`, maxRows)
			}

			return fmt.Sprintf(`SELECT c.customer_id, c.name, c.email, c.country, c.registration_date
FROM customers c
ORDER BY c.registration_date DESC
LIMIT %d`, maxRows)
		}

	case containsAny("product", "item", "stock"):
		if desc.HasTable("products") {
			if containsAny("sold", "sales", "popular") {
				return fmt.Sprintf(`SELECT p.product_id, p.name, p.category,
       SUM(oi.quantity) as total_quantity,
       SUM(oi.quantity * oi.unit_price) as total_revenue
FROM products p
JOIN order_items oi ON p.product_id = oi.product_id
JOIN orders o ON oi.order_id = o.order_id
WHERE o.status = 'completed'
GROUP BY p.product_id, p.name, p.category
ORDER BY total_revenue DESC
LIMIT %d`, maxRows)
			}

			return fmt.Sprintf(`SELECT p.product_id, p.name, p.category, p.unit_price, p.supplier
FROM products p
ORDER BY p.name
LIMIT %d`, maxRows)
		}

	case containsAny("order", "purchase", "transaction"):
		if desc.HasTable("orders") && desc.HasTable("customers") {
			return fmt.Sprintf(`SELECT o.order_id, c.name as customer_name, c.country,
       o.order_date, o.total_amount, o.status,
       COUNT(oi.order_item_id) as item_count
FROM orders o
JOIN customers c ON o.customer_id = c.customer_id
LEFT JOIN order_items oi ON o.order_id = oi.order_id
GROUP BY o.order_id, c.name, c.country, o.order_date, o.total_amount, o.status
ORDER BY o.order_date DESC
LIMIT %d`, maxRows)
		}

	case containsAny("revenue", "sales", "income", "profit"):
		if desc.HasTable("orders") {
			if containsAny("month", "monthly") {
				return fmt.Sprintf(`SELECT DATE_TRUNC('month', o.order_date) as month,
       SUM(o.total_amount) as monthly_revenue,
       COUNT(DISTINCT o.customer_id) as unique_customers,
       COUNT(o.order_id) as order_count
FROM orders o
WHERE o.status = 'completed'
GROUP BY month
ORDER BY month DESC
LIMIT %d`, maxRows)
			}

			if containsAny("country") {
				return fmt.Sprintf(`SELECT c.country,
       SUM(o.total_amount) as total_revenue,
       COUNT(DISTINCT o.customer_id) as customer_count
FROM orders o
JOIN customers c ON o.customer_id = c.customer_id
WHERE o.status = 'completed'
GROUP BY c.country
ORDER BY total_revenue DESC
LIMIT %d`, maxRows)
			}

			return fmt.Sprintf(`SELECT SUM(o.total_amount) as total_revenue,
       COUNT(DISTINCT o.customer_id) as total_customers,
       AVG(o.total_amount) as avg_order_value
FROM orders o
WHERE o.status = 'completed'
LIMIT %d`, maxRows)
		}

	case containsAny("detail", "item", "line item", "what bought"):
		if desc.HasTable("order_items") && desc.HasTable("orders") && desc.HasTable("products") {
			return fmt.Sprintf(`SELECT oi.order_item_id, oi.order_id, p.name as product_name,
       oi.quantity, oi.unit_price,
       (oi.quantity * oi.unit_price) as item_total,
       c.name as customer_name
FROM order_items oi
JOIN orders o ON oi.order_id = o.order_id
JOIN products p ON oi.product_id = p.product_id
JOIN customers c ON o.customer_id = c.customer_id
ORDER BY oi.order_item_id DESC
LIMIT %d`, maxRows)
		}
	}

	if desc.HasTable("orders") && desc.HasTable("customers") {
		return fmt.Sprintf(`SELECT o.order_id, c.customer_id, c.name as customer_name,
       o.order_date, o.total_amount, o.status
FROM orders o
JOIN customers c ON o.customer_id = c.customer_id
ORDER BY o.order_date DESC
LIMIT %d`, maxRows)
	}

	return "SELECT * FROM information_schema.tables WHERE table_schema = 'public'"
}
