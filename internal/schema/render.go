package schema

import (
	"fmt"
	"strings"
)

var businessRules = []string{
	"Revenue is calculated as: order_items.quantity * order_items.unit_price",
	"Only orders with status 'completed' should be included in revenue calculations",
	"Returns are stored as negative quantities; use ABS(quantity) when counting returned units",
	"Customer country determines shipping region and may affect tax rates",
	"Products can appear in multiple order_items with the same product_id",
	"Each order can have multiple order_items (one per product)",
	"Each customer can have multiple orders over time",
}

var commonQueryPatterns = []string{
	"Customer order history: JOIN customers -> orders -> order_items -> products",
	"Monthly revenue analysis: GROUP BY DATE_TRUNC('month', order_date)",
	"Top-selling products: GROUP BY product_id ORDER BY SUM(quantity) DESC",
	"Customer lifetime value: SUM(order total_amount) grouped by customer",
	"Product performance by country: JOIN products -> order_items -> orders -> customers GROUP BY country",
}

type joinTemplate struct {
	name       string
	tables     []string
	conditions []string
}

var joinTemplates = []joinTemplate{
	{
		name:   "Full Customer Purchase History",
		tables: []string{"customers", "orders", "order_items", "products"},
		conditions: []string{
			"customers.customer_id = orders.customer_id",
			"orders.order_id = order_items.order_id",
			"order_items.product_id = products.product_id",
		},
	},
	{
		name:   "Product Sales Analysis",
		tables: []string{"products", "order_items", "orders"},
		conditions: []string{
			"products.product_id = order_items.product_id",
			"order_items.order_id = orders.order_id",
		},
	},
	{
		name:       "Customer Geography Analysis",
		tables:     []string{"customers", "orders"},
		conditions: []string{"customers.customer_id = orders.customer_id"},
	},
}

const exampleQueries = `1. Customer with their orders:
   SELECT c.customer_id, c.name, o.order_id, o.order_date, o.total_amount
   FROM customers c
   JOIN orders o ON c.customer_id = o.customer_id
   WHERE o.status = 'completed'
   ORDER BY o.order_date DESC
   LIMIT 10;

2. Order details with product information:
   SELECT o.order_id, p.product_id, p.name as product_name,
          oi.quantity, oi.unit_price, (oi.quantity * oi.unit_price) as line_total
   FROM orders o
   JOIN order_items oi ON o.order_id = oi.order_id
   JOIN products p ON oi.product_id = p.product_id
   WHERE o.order_id = '536365'
   ORDER BY oi.order_item_id;

3. Monthly revenue by country:
   SELECT c.country,
          DATE_TRUNC('month', o.order_date) as month,
          SUM(oi.quantity * oi.unit_price) as monthly_revenue,
          COUNT(DISTINCT o.customer_id) as customers
   FROM customers c
   JOIN orders o ON c.customer_id = o.customer_id
   JOIN order_items oi ON o.order_id = oi.order_id
   WHERE o.status = 'completed'
   GROUP BY c.country, DATE_TRUNC('month', o.order_date)
   ORDER BY month DESC, monthly_revenue DESC;`

// RenderForPrompt formats a schema snapshot into the text block embedded in
// generation prompts. Output is deterministic for a given Description.
func (d *Description) RenderForPrompt() string {
	var b strings.Builder

	b.WriteString("# E-COMMERCE DATABASE SCHEMA\n\n")
	b.WriteString("## DATABASE OVERVIEW\n")
	fmt.Fprintf(&b, "Total tables: %d\n", len(d.Tables))

	b.WriteString("\n## TABLES & COLUMNS\n")

	for _, table := range d.Tables {
		fmt.Fprintf(&b, "\n### %s (%d rows)\n", strings.ToUpper(table.Name), table.RowCount)
		b.WriteString("Columns:\n")

		for _, col := range table.Columns {
			var flags []string
			if col.IsPrimaryKey {
				flags = append(flags, "PK")
			}

			if !col.Nullable {
				flags = append(flags, "NOT NULL")
			}

			if col.Default != "" {
				flags = append(flags, "DEFAULT: "+col.Default)
			}

			flagStr := ""
			if len(flags) > 0 {
				flagStr = " (" + strings.Join(flags, ", ") + ")"
			}

			fmt.Fprintf(&b, "- %s: %s%s\n", col.Name, col.DataType, flagStr)
		}

		if len(table.SampleRows) > 0 {
			fmt.Fprintf(&b, "\nSample row: %s\n", renderSampleRow(table.Columns, table.SampleRows[0]))
		}
	}

	b.WriteString("\n## TABLE RELATIONSHIPS\n")

	if len(d.ForeignKeys) == 0 {
		b.WriteString("No foreign key relationships defined.\n")
	} else {
		for _, fk := range d.ForeignKeys {
			fmt.Fprintf(&b, "- %s.%s -> %s.%s\n", fk.SourceTable, fk.SourceColumn, fk.TargetTable, fk.TargetColumn)
			fmt.Fprintf(&b, "  (One %s has many %s)\n", singular(fk.TargetTable), fk.SourceTable)
		}
	}

	b.WriteString("\n## BUSINESS RULES\n")
	for _, rule := range businessRules {
		fmt.Fprintf(&b, "- %s\n", rule)
	}

	b.WriteString("\n## COMMON QUERY PATTERNS\n")
	for _, pattern := range commonQueryPatterns {
		fmt.Fprintf(&b, "- %s\n", pattern)
	}

	b.WriteString("\n## JOIN TEMPLATES\n")

	for _, tpl := range joinTemplates {
		if !d.hasAllTables(tpl.tables) {
			continue
		}

		fmt.Fprintf(&b, "\n### %s\n", tpl.name)
		fmt.Fprintf(&b, "Tables: %s\n", strings.Join(tpl.tables, ", "))
		b.WriteString("JOIN Conditions:\n")

		for _, cond := range tpl.conditions {
			fmt.Fprintf(&b, "- %s\n", cond)
		}
	}

	b.WriteString("\n## EXAMPLE QUERIES\n")
	b.WriteString(exampleQueries)

	return b.String()
}

func (d *Description) hasAllTables(names []string) bool {
	for _, name := range names {
		if !d.HasTable(name) {
			return false
		}
	}

	return true
}

func renderSampleRow(cols []Column, values []string) string {
	pairs := make([]string, 0, len(values))

	for i, v := range values {
		name := fmt.Sprintf("col%d", i)
		if i < len(cols) {
			name = cols[i].Name
		}

		pairs = append(pairs, name+"="+v)
	}

	return "{" + strings.Join(pairs, ", ") + "}"
}

func singular(name string) string {
	return strings.TrimSuffix(name, "s")
}
