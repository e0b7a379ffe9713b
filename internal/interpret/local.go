package interpret

import (
	"fmt"
	"strings"

	"github.com/rthomason/storelens/internal/database"
)

const noMatchesAnswer = "No matching records found for your query."

// LocalAnswer writes a deterministic template answer from the result alone.
// Used when the generative backend is unavailable or bypassed.
func LocalAnswer(question, sql string, rows *database.RowSet) string {
	if rows.Empty() {
		return noMatchesAnswer
	}

	rowCount := rows.Len()
	columns := rows.Columns
	upper := strings.ToUpper(sql)

	if strings.Contains(upper, "JOIN") {
		switch {
		case strings.Contains(upper, "CUSTOMER") && strings.Contains(upper, "PRODUCT"):
			custVal := firstValueMatching(rows, []string{"customer", "name"})
			prodVal := firstValueMatching(rows, []string{"product", "item"})

			return fmt.Sprintf("Found %d customer-product relationships. For example, %s purchased %s. "+
				"This shows direct purchasing patterns between customers and products.",
				rowCount, custVal, prodVal)

		case strings.Contains(upper, "CUSTOMER") && strings.Contains(upper, "ORDER"):
			if strings.Contains(upper, "SUM") || strings.Contains(upper, "TOTAL") {
				total := columnTotal(rows, []string{"total", "amount", "revenue"})

				return fmt.Sprintf("Customer order analysis shows %d customer records with total value of $%s. "+
					"The data reveals customer spending patterns across the business.",
					rowCount, formatAmount(total))
			}

			return fmt.Sprintf("Found %d customer orders in the system. Each order represents a purchase "+
				"transaction with associated customer details and order information.", rowCount)

		case strings.Contains(upper, "PRODUCT") && (strings.Contains(upper, "SUM") || strings.Contains(upper, "COUNT")):
			if idx := columnIndexMatching(rows, []string{"quantity", "count"}); idx >= 0 {
				total := totalAt(rows, idx)

				return fmt.Sprintf("Product sales analysis shows %d product records with total quantity sold of "+
					"%s units. This indicates product performance and demand trends.",
					rowCount, formatUnits(total))
			}
		}
	}

	switch {
	case strings.Contains(upper, "REVENUE") || strings.Contains(upper, "SUM") || strings.Contains(upper, "TOTAL"):
		for i := range rows.Columns {
			if i < len(rows.Records[0]) {
				if _, ok := toFloat(rows.Records[0][i]); ok {
					return fmt.Sprintf("Analysis shows total of %s across %d records. This provides a "+
						"high-level summary of business performance.", formatAmount(totalAt(rows, i)), rowCount)
				}
			}
		}

	case strings.Contains(upper, "CUSTOMER"):
		return fmt.Sprintf("Customer database contains %d customer records with details including contact "+
			"information and geographic data.", rowCount)

	case strings.Contains(upper, "PRODUCT"):
		return fmt.Sprintf("Product catalog includes %d products with pricing, category, and supplier "+
			"information for inventory management.", rowCount)

	case strings.Contains(upper, "ORDER"):
		if strings.Contains(upper, "ITEM") {
			return fmt.Sprintf("Order details show %d line items with product quantities, prices, and "+
				"extended totals for precise order tracking.", rowCount)
		}

		return fmt.Sprintf("Order system contains %d orders with customer references, dates, amounts, "+
			"and status information.", rowCount)
	}

	if rowCount == 1 && len(columns) == 1 {
		return fmt.Sprintf("The result is %v.", rows.Records[0][0])
	}

	return fmt.Sprintf("Query returned %d records with %d data points. This provides insights into the "+
		"requested business information.", rowCount, len(columns))
}

// firstValueMatching returns the first row's value in the first column whose
// name contains one of the keywords, falling back to the first column
func firstValueMatching(rows *database.RowSet, keywords []string) string {
	idx := columnIndexMatching(rows, keywords)
	if idx < 0 {
		idx = 0
	}

	if idx < len(rows.Records[0]) {
		return fmt.Sprint(rows.Records[0][idx])
	}

	return "N/A"
}

func columnIndexMatching(rows *database.RowSet, keywords []string) int {
	for i, col := range rows.Columns {
		if containsKeyword(col, keywords) {
			return i
		}
	}

	return -1
}

// columnTotal sums the first column matching the keywords, falling back to
// the last column
func columnTotal(rows *database.RowSet, keywords []string) float64 {
	idx := columnIndexMatching(rows, keywords)
	if idx < 0 {
		idx = len(rows.Columns) - 1
	}

	return totalAt(rows, idx)
}

func totalAt(rows *database.RowSet, idx int) float64 {
	total := 0.0

	for _, record := range rows.Records {
		if idx >= 0 && idx < len(record) {
			if v, ok := toFloat(record[idx]); ok {
				total += v
			}
		}
	}

	return total
}

// formatAmount renders a monetary value with thousands separators and two
// decimals
func formatAmount(v float64) string {
	return groupThousands(fmt.Sprintf("%.2f", v))
}

// formatUnits renders a unit count with thousands separators and no decimals
func formatUnits(v float64) string {
	return groupThousands(fmt.Sprintf("%.0f", v))
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, fracPart := s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, fracPart = s[:dot], s[dot:]
	}

	var b strings.Builder

	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}

		b.WriteRune(d)
	}

	out := b.String() + fracPart
	if neg {
		out = "-" + out
	}

	return out
}
