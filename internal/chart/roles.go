package chart

import (
	"strings"

	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/table"
)

// dateNameKeywords mark a column as date-like by name alone.
var dateNameKeywords = []string{"date", "month", "year", "week", "day", "period"}

// geoNameKeywords mark a column as geographic.
var geoNameKeywords = []string{
	"country", "state", "region", "city", "province", "county", "nation", "territory",
}

const dateSampleSize = 5

// roles holds the column indices detected for each chart role. Numeric and
// date-like detection may overlap: a numeric "year" column is both a measure
// and a time axis, exactly as a name-keyword match implies.
type roles struct {
	numeric     []int
	categorical []int
	dates       []int
	geo         []int
}

func detectRoles(t *table.Table) roles {
	var r roles
	for i, col := range t.Columns {
		if col.Kind == table.KindNumeric {
			r.numeric = append(r.numeric, i)
		}
		switch {
		case col.Kind == table.KindTime || isDateName(col.Name) || samplesParseAsDates(t, i):
			r.dates = append(r.dates, i)
		case col.Kind == table.KindText && isGeoName(col.Name):
			r.geo = append(r.geo, i)
		case col.Kind == table.KindText:
			r.categorical = append(r.categorical, i)
		}
	}
	return r
}

func isDateName(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range dateNameKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func isGeoName(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range geoNameKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// samplesParseAsDates reports whether a small sample of a text column parses
// cleanly as dates. One bad value disqualifies the column.
func samplesParseAsDates(t *table.Table, col int) bool {
	if t.Columns[col].Kind != table.KindText {
		return false
	}
	sample := t.Sample(col, dateSampleSize)
	if len(sample) == 0 {
		return false
	}
	for _, s := range sample {
		if _, ok := table.ParseDate(s); !ok {
			return false
		}
	}
	return true
}
