// Package interpret turns executed query results into a narrative business
// answer. Classification and context extraction are deterministic; the
// phrasing comes from a generative backend with a template fallback.
package interpret

import "strings"

// Classification buckets a result for persona selection and context
// extraction
type Classification string

const (
	ClassCustomerProductRelationship Classification = "customer_product_relationship"
	ClassCustomerRevenue             Classification = "customer_revenue"
	ClassCustomerOrders              Classification = "customer_orders"
	ClassProductSales                Classification = "product_sales"
	ClassTimeSeries                  Classification = "time_series"
	ClassMultiTableGeneral           Classification = "multi_table_general"
	ClassCustomerList                Classification = "customer_list"
	ClassProductList                 Classification = "product_list"
	ClassOrderDetails                Classification = "order_details"
	ClassOrderList                   Classification = "order_list"
	ClassAggregate                   Classification = "aggregate"
	ClassGeneral                     Classification = "general"
)

// Classify buckets a statement by uppercase substring inspection. Pure
// function of the statement text; first matching rule wins.
func Classify(sql string) Classification {
	upper := strings.ToUpper(sql)

	if strings.Contains(upper, "JOIN") {
		switch {
		case strings.Contains(upper, "CUSTOMER") && strings.Contains(upper, "PRODUCT"):
			return ClassCustomerProductRelationship
		case strings.Contains(upper, "CUSTOMER") && strings.Contains(upper, "ORDER"):
			if strings.Contains(upper, "REVENUE") || strings.Contains(upper, "SUM") {
				return ClassCustomerRevenue
			}

			return ClassCustomerOrders
		case strings.Contains(upper, "PRODUCT") && (strings.Contains(upper, "SUM") || strings.Contains(upper, "COUNT")):
			return ClassProductSales
		case strings.Contains(upper, "DATE_TRUNC") || strings.Contains(upper, "MONTH") || strings.Contains(upper, "YEAR"):
			return ClassTimeSeries
		default:
			return ClassMultiTableGeneral
		}
	}

	// aggregate markers outrank entity keywords so that a plain
	// SUM over one table reads as an aggregate, not a listing
	switch {
	case strings.Contains(upper, "REVENUE") || strings.Contains(upper, "SUM") || strings.Contains(upper, "TOTAL"):
		return ClassAggregate
	case strings.Contains(upper, "CUSTOMER"):
		return ClassCustomerList
	case strings.Contains(upper, "PRODUCT"):
		return ClassProductList
	case strings.Contains(upper, "ORDER"):
		if strings.Contains(upper, "ITEM") {
			return ClassOrderDetails
		}

		return ClassOrderList
	default:
		return ClassGeneral
	}
}
