package sqlgen

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	sqlFencePattern  = regexp.MustCompile("(?i)```sql\\s*")
	bareFencePattern = regexp.MustCompile("```\\s*")
	selectPrefix     = regexp.MustCompile(`(?i)^\s*select\b`)
	selectWord       = regexp.MustCompile(`(?i)select\b`)
	limitWord        = regexp.MustCompile(`(?i)\blimit\b`)
	aggregateMarker  = regexp.MustCompile(`(?i)group\s+by|count\(|sum\(|avg\(`)
)

// Clean normalizes raw model output into an executable statement. Idempotent:
// cleaning an already clean statement returns it unchanged.
func Clean(sql string, maxRows int) string {
	if sql == "" {
		return ""
	}

	sql = sqlFencePattern.ReplaceAllString(sql, "")
	sql = bareFencePattern.ReplaceAllString(sql, "")

	sql = strings.TrimSpace(sql)
	sql = strings.TrimRight(sql, ";")
	sql = strings.TrimSpace(sql)

	if !selectPrefix.MatchString(sql) {
		sql = extractSelect(sql)
	}

	if sql == "" {
		return ""
	}

	if !limitWord.MatchString(sql) && !aggregateMarker.MatchString(sql) {
		sql = fmt.Sprintf("%s LIMIT %d", sql, maxRows)
	}

	return sql
}

// extractSelect pulls the first SELECT span out of surrounding prose,
// stopping before any LIMIT clause. Returns empty when no SELECT exists.
func extractSelect(sql string) string {
	loc := selectWord.FindStringIndex(sql)
	if loc == nil {
		return ""
	}

	span := sql[loc[0]:]
	if lim := limitWord.FindStringIndex(span); lim != nil {
		span = span[:lim[0]]
	}

	return strings.TrimSpace(span)
}
