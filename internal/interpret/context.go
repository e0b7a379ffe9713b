package interpret

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rthomason/storelens/internal/database"
)

// metricKeywords mark column names worth totalling for financial classes
var metricKeywords = []string{
	"total", "sum", "count", "revenue", "amount", "value", "quantity", "avg", "average",
}

var dateKeywords = []string{"date", "month", "year", "time", "period"}

// Metric is one totalled numeric column
type Metric struct {
	Column string
	Total  float64
}

// BusinessContext carries the deterministic observations extracted from a
// result before any narrative is written
type BusinessContext struct {
	HasData    bool
	RowCount   int
	Columns    []string
	KeyMetrics []Metric
	Trends     []string
	Insights   []string
}

// BuildContext extracts metrics, trends and insights appropriate to the
// classification. Best effort: anything it cannot compute is simply absent.
func BuildContext(class Classification, rows *database.RowSet) BusinessContext {
	ctx := BusinessContext{
		HasData:  rows.Len() > 0,
		RowCount: rows.Len(),
	}

	if rows.Empty() {
		return ctx
	}

	ctx.Columns = rows.Columns

	switch class {
	case ClassCustomerRevenue, ClassAggregate, ClassProductSales:
		ctx.KeyMetrics = extractMetrics(rows)
	case ClassTimeSeries:
		if trend, ok := extractTrend(rows); ok {
			ctx.Trends = append(ctx.Trends, trend)
		}
	case ClassCustomerProductRelationship, ClassMultiTableGeneral:
		if insight, ok := extractCommonValue(rows); ok {
			ctx.Insights = append(ctx.Insights, insight)
		}
	}

	return ctx
}

// extractMetrics totals up to two numeric columns whose names look like
// financial measures
func extractMetrics(rows *database.RowSet) []Metric {
	var metrics []Metric

	for i, col := range rows.Columns {
		if len(metrics) == 2 {
			break
		}

		if !containsKeyword(col, metricKeywords) {
			continue
		}

		if _, ok := toFloat(rows.Records[0][i]); !ok {
			continue
		}

		total := 0.0
		for _, record := range rows.Records {
			if i < len(record) {
				if v, ok := toFloat(record[i]); ok {
					total += v
				}
			}
		}

		metrics = append(metrics, Metric{Column: col, Total: total})
	}

	return metrics
}

// extractTrend computes the first-to-last percent change of the first
// numeric column ordered by the first date-like column
func extractTrend(rows *database.RowSet) (string, bool) {
	if rows.Len() < 2 {
		return "", false
	}

	dateIdx, valueIdx := -1, -1

	for i, col := range rows.Columns {
		if dateIdx < 0 && containsKeyword(col, dateKeywords) {
			dateIdx = i
			continue
		}

		if valueIdx < 0 && i < len(rows.Records[0]) {
			if _, ok := toFloat(rows.Records[0][i]); ok {
				valueIdx = i
			}
		}
	}

	if dateIdx < 0 || valueIdx < 0 {
		return "", false
	}

	type point struct {
		date  string
		value float64
	}

	points := make([]point, 0, rows.Len())

	for _, record := range rows.Records {
		if dateIdx >= len(record) || valueIdx >= len(record) {
			continue
		}

		v, ok := toFloat(record[valueIdx])
		if !ok {
			continue
		}

		points = append(points, point{date: fmt.Sprint(record[dateIdx]), value: v})
	}

	if len(points) < 2 {
		return "", false
	}

	sort.SliceStable(points, func(a, b int) bool { return points[a].date < points[b].date })

	first, last := points[0].value, points[len(points)-1].value
	if first == 0 || last == 0 || first == last {
		return "", false
	}

	pct := ((last - first) / first) * 100
	direction := "increased"
	if pct < 0 {
		direction = "decreased"
	}

	return fmt.Sprintf("Overall trend: %s by %.1f%%", direction, math.Abs(pct)), true
}

// extractCommonValue reports the most frequent short text value of the first
// categorical column, sampled over the first 20 rows
func extractCommonValue(rows *database.RowSet) (string, bool) {
	colIdx := -1
	colName := ""

	for i, col := range rows.Columns {
		if i >= len(rows.Records[0]) {
			break
		}

		if s, ok := rows.Records[0][i].(string); ok && len(s) < 50 {
			colIdx = i
			colName = col
			break
		}
	}

	if colIdx < 0 {
		return "", false
	}

	counts := make(map[string]int)

	limit := rows.Len()
	if limit > 20 {
		limit = 20
	}

	for _, record := range rows.Records[:limit] {
		if colIdx >= len(record) {
			continue
		}

		if s, ok := record[colIdx].(string); ok && s != "" {
			counts[s]++
		}
	}

	if len(counts) == 0 {
		return "", false
	}

	top, topCount := "", 0
	for value, count := range counts {
		if count > topCount || (count == topCount && value < top) {
			top, topCount = value, count
		}
	}

	return fmt.Sprintf("Most common %s: %s (%d occurrences)", colName, top, topCount), true
}

func containsKeyword(column string, keywords []string) bool {
	lowered := strings.ToLower(column)

	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}

	return false
}

// toFloat converts the numeric types pgx hands back into float64. DECIMAL
// columns arrive as pgtype.Numeric from rows.Values(), not as a Go float.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case pgtype.Numeric:
		f, err := n.Float64Value()
		if err != nil || !f.Valid || math.IsNaN(f.Float64) {
			return 0, false
		}

		return f.Float64, true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
