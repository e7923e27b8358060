// Package guard is the lexical safety layer for LLM-produced SQL. It rejects
// anything that is not a read-only SELECT/WITH statement and clamps the row
// limit before a query is allowed anywhere near an execution engine. The
// checks are purely textual: no parsing, no schema awareness.
package guard

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// MaxLimit is the ceiling enforced on any LIMIT clause.
	MaxLimit = 1000
	// DefaultLimit is appended when a query carries no LIMIT clause.
	DefaultLimit = 100

	// errorSentinel is the prefix the generation collaborator uses to signal
	// it cannot answer. Checked case-insensitively.
	errorSentinel = "ERROR:"
)

// blockedKeywords are statement keywords associated with mutation or
// administration. A whole-word match anywhere in the query is a rejection.
var blockedKeywords = []string{
	"DROP", "DELETE", "UPDATE", "INSERT", "ALTER",
	"TRUNCATE", "PRAGMA", "ATTACH", "DETACH", "VACUUM",
	"CREATE", "REPLACE", "MERGE", "EXEC", "EXECUTE",
}

var blockedPatterns = func() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(blockedKeywords))
	for i, kw := range blockedKeywords {
		patterns[i] = regexp.MustCompile(`(?i)\b` + kw + `\b`)
	}
	return patterns
}()

var (
	reLeadingFence  = regexp.MustCompile("(?i)^```(?:sql)?[ \t]*\n?")
	reTrailingFence = regexp.MustCompile("[ \t\n]*```$")
	reLimitClause   = regexp.MustCompile(`(?i)\bLIMIT\s+(\d+)\b`)
)

// Reason classifies why a candidate query was rejected.
type Reason string

const (
	NotASelect       Reason = "not_a_select"
	BlockedKeyword   Reason = "blocked_keyword"
	LlmSignaledError Reason = "llm_signaled_error"
)

// SafeQuery is SQL text that has passed every guardrail check. It always
// starts with SELECT or WITH and carries a LIMIT clause at or below MaxLimit.
type SafeQuery string

func (q SafeQuery) String() string { return string(q) }

// Rejection is the typed error returned for any guardrail failure.
type Rejection struct {
	Reason  Reason
	Keyword string // set for BlockedKeyword
	Detail  string
}

func (r *Rejection) Error() string {
	switch r.Reason {
	case BlockedKeyword:
		return fmt.Sprintf("blocked keyword detected: %s (only read-only SELECT queries are permitted)", r.Keyword)
	case LlmSignaledError:
		return "model could not answer: " + r.Detail
	default:
		return "only SELECT queries are allowed; the query does not start with SELECT or WITH"
	}
}

// Validate sanitizes a candidate SQL string and returns it as a SafeQuery.
// The function is pure and deterministic; failure is always a *Rejection.
// Validate is idempotent on its own accepted output.
func Validate(raw string) (SafeQuery, error) {
	sql := strings.TrimSpace(raw)
	sql = strings.TrimSuffix(sql, ";")
	sql = strings.TrimSpace(sql)

	// The generation collaborator refuses with an "ERROR: reason" line
	// instead of SQL. Surface that as its own rejection class so the caller
	// does not treat a refusal as malformed SQL.
	if len(sql) >= len(errorSentinel) && strings.EqualFold(sql[:len(errorSentinel)], errorSentinel) {
		return "", &Rejection{
			Reason: LlmSignaledError,
			Detail: strings.TrimSpace(sql[len(errorSentinel):]),
		}
	}

	// Models often wrap SQL in a markdown fence. Strip one layer.
	sql = reLeadingFence.ReplaceAllString(sql, "")
	sql = reTrailingFence.ReplaceAllString(sql, "")
	sql = strings.TrimSpace(sql)
	sql = strings.TrimSuffix(sql, ";")
	sql = strings.TrimSpace(sql)

	// The keyword scan runs before the SELECT/WITH gate so a mutating
	// statement smuggled in front of a SELECT is named for what it is.
	for i, pattern := range blockedPatterns {
		if pattern.MatchString(sql) {
			return "", &Rejection{Reason: BlockedKeyword, Keyword: blockedKeywords[i]}
		}
	}

	upper := strings.ToUpper(sql)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return "", &Rejection{Reason: NotASelect, Detail: sql}
	}

	return SafeQuery(enforceLimit(sql)), nil
}

// enforceLimit caps an existing LIMIT clause at MaxLimit and appends
// DefaultLimit when none is present. Limits already at or under the ceiling
// are left alone.
func enforceLimit(sql string) string {
	m := reLimitClause.FindStringSubmatch(sql)
	if m == nil {
		return sql + "\nLIMIT " + strconv.Itoa(DefaultLimit)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= MaxLimit {
		return sql
	}
	return reLimitClause.ReplaceAllString(sql, "LIMIT "+strconv.Itoa(MaxLimit))
}
