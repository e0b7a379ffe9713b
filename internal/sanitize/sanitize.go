// Package sanitize gates generated SQL before execution. It is a denylist
// plus a SELECT-only check, not a sandbox; database permissions remain the
// real enforcement boundary.
package sanitize

import (
	"fmt"
	"regexp"
	"strings"
)

// substrings that disqualify a statement outright. The comment marker and
// statement separator are included so a single accepted string can never
// smuggle a second statement.
var forbidden = []string{
	"insert",
	"update",
	"delete",
	"drop",
	"alter",
	"create",
	"truncate",
	"grant",
	"revoke",
	"copy",
	";",
	"--",
}

var selectAnchor = regexp.MustCompile(`^\s*select\b`)

// IsSafeSelect reports whether the statement is a single bare SELECT with
// no denylisted substring anywhere in it
func IsSafeSelect(sql string) bool {
	if strings.TrimSpace(sql) == "" {
		return false
	}

	lowered := strings.ToLower(sql)

	for _, word := range forbidden {
		if strings.Contains(lowered, word) {
			return false
		}
	}

	fields := strings.Fields(lowered)
	if len(fields) == 0 || fields[0] != "select" {
		return false
	}

	return selectAnchor.MatchString(lowered)
}

// WrapWithLimit wraps an accepted statement in an outer row limiter. The
// bound is always passed as a bind parameter, never interpolated.
func WrapWithLimit(sql string, maxRows int) (string, []any) {
	trimmed := strings.TrimSpace(sql)
	trimmed = strings.TrimRight(trimmed, ";")
	trimmed = strings.TrimSpace(trimmed)

	wrapped := fmt.Sprintf("SELECT * FROM (%s) AS subquery LIMIT $1", trimmed)

	return wrapped, []any{maxRows}
}
