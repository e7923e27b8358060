// Package validate runs post-execution data-quality heuristics over a result
// table and the SQL that produced it. Checks warn, never block: a warning is
// advice to the analyst, not a failure.
package validate

import (
	"fmt"
	"strings"

	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/table"
)

// WarningKind classifies a data-quality diagnostic.
type WarningKind string

const (
	ZeroRows        WarningKind = "zero_rows"
	HighNullRate    WarningKind = "high_null_rate"
	JoinExplosion   WarningKind = "join_explosion"
	DuplicateKeys   WarningKind = "duplicate_keys"
	ExtremeOutliers WarningKind = "extreme_outliers"
	MixedGrain      WarningKind = "mixed_grain"
)

// Warning is a structured diagnostic attached to a query response.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

const (
	nullRateThreshold   = 0.3
	explosionJoinCount  = 2
	explosionRowCount   = 500
	outlierMinValues    = 5
	outlierMaxColumns   = 3
	outlierSkewFactor   = 50
)

// Check runs every heuristic and returns the collected warnings in a fixed
// order. An empty table short-circuits to a single zero-rows warning since
// none of the other checks can say anything useful about it. Check never
// fails.
func Check(t *table.Table, sql string) []Warning {
	if t == nil || t.Empty() {
		return []Warning{{
			Kind:    ZeroRows,
			Message: "Query returned 0 rows. Check your filters or date ranges.",
		}}
	}

	var warnings []Warning
	warnings = append(warnings, checkNulls(t)...)
	warnings = append(warnings, checkRowExplosion(t, sql)...)
	warnings = append(warnings, checkDuplicateKeys(t)...)
	warnings = append(warnings, checkOutliers(t)...)
	warnings = append(warnings, checkMixedGrain(t)...)
	return warnings
}

// checkNulls flags columns whose missing-value rate suggests a bad join or
// filter.
func checkNulls(t *table.Table) []Warning {
	var out []Warning
	for i, col := range t.Columns {
		pct := t.NullFraction(i)
		if pct > nullRateThreshold {
			out = append(out, Warning{
				Kind: HighNullRate,
				Message: fmt.Sprintf(
					"Column %q is %.0f%% null. Results may be incomplete — check your JOIN or filter logic.",
					col.Name, pct*100),
			})
		}
	}
	return out
}

// checkRowExplosion warns when multiple JOINs fan out into a suspiciously
// large result, the classic many-to-many signature.
func checkRowExplosion(t *table.Table, sql string) []Warning {
	joins := strings.Count(strings.ToUpper(sql), "JOIN")
	rows := t.RowCount()
	if joins >= explosionJoinCount && rows > explosionRowCount {
		return []Warning{{
			Kind: JoinExplosion,
			Message: fmt.Sprintf(
				"Query uses %d JOINs and returned %d rows. Possible many-to-many join explosion — verify row grain.",
				joins, rows),
		}}
	}
	return nil
}

// checkDuplicateKeys inspects the first ID-like column only; scanning every
// candidate would be noisy and the leading one is the most likely key.
func checkDuplicateKeys(t *table.Table) []Warning {
	for i, col := range t.Columns {
		lower := strings.ToLower(col.Name)
		if lower != "id" && !strings.HasSuffix(lower, "id") {
			continue
		}
		if dup, n := t.HasDuplicates(i); dup {
			return []Warning{{
				Kind: DuplicateKeys,
				Message: fmt.Sprintf(
					"Column %q has %d duplicate values. If this is a primary key, your query may be double-counting.",
					col.Name, n),
			}}
		}
		return nil
	}
	return nil
}

// checkOutliers compares the 99th percentile against the median for the
// first few numeric columns and flags extreme skew.
func checkOutliers(t *table.Table) []Warning {
	var out []Warning
	checked := 0
	for i, col := range t.Columns {
		if col.Kind != table.KindNumeric {
			continue
		}
		if checked >= outlierMaxColumns {
			break
		}
		checked++

		values := t.Floats(i)
		if len(values) < outlierMinValues {
			continue
		}
		p99 := table.Quantile(values, 0.99)
		median := table.Median(values)
		if median > 0 && p99 > median*outlierSkewFactor {
			out = append(out, Warning{
				Kind: ExtremeOutliers,
				Message: fmt.Sprintf(
					"Column %q has extreme outliers (p99 = %.0f vs median = %.0f). Consider filtering or investigating these records.",
					col.Name, p99, median),
			})
		}
	}
	return out
}

// checkMixedGrain warns when day-level and month/year-level time dimensions
// appear together, which usually corrupts aggregations.
func checkMixedGrain(t *table.Table) []Warning {
	hasDaily := false
	hasMonthly := false
	for _, col := range t.Columns {
		lower := strings.ToLower(col.Name)
		if strings.Contains(lower, "date") || strings.Contains(lower, "day") {
			hasDaily = true
		}
		if strings.Contains(lower, "month") || strings.Contains(lower, "year") {
			hasMonthly = true
		}
	}
	if hasDaily && hasMonthly {
		return []Warning{{
			Kind:    MixedGrain,
			Message: "Query result contains both daily and monthly time dimensions. Mixed grain may cause incorrect aggregations.",
		}}
	}
	return nil
}
