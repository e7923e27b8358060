// Package chart picks an appropriate visualization for a result table. The
// decision procedure is an ordered rule table: each rule is a (predicate,
// builder) pair, so precedence is explicit data rather than implied control
// flow, and every rule is unit-testable on its own.
package chart

import (
	"sort"
	"time"

	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/table"
)

// Kind is one of the closed set of supported chart types.
type Kind string

const (
	KPI           Kind = "kpi"
	MultiKPI      Kind = "multi_kpi"
	Line          Kind = "line"
	MultiLine     Kind = "multi_line"
	Area          Kind = "area"
	HorizontalBar Kind = "horizontal_bar"
	GroupedBar    Kind = "grouped_bar"
	Donut         Kind = "donut"
	Treemap       Kind = "treemap"
	Scatter       Kind = "scatter"
	Histogram     Kind = "histogram"
	Heatmap       Kind = "heatmap"
	Funnel        Kind = "funnel"
	Choropleth    Kind = "choropleth"
)

// Sort orders understood by the renderer.
const (
	SortValueDesc = "value_desc"
	SortValueAsc  = "value_asc"
	SortXAsc      = "x_asc"
)

// Location modes for choropleth rendering.
const (
	LocationUSStates  = "usa_states"
	LocationCountries = "country_names"
)

// Spec is an abstract rendering directive: a chart kind plus the column
// bindings needed to draw it. It carries no data; the renderer joins it back
// to the result table.
type Spec struct {
	Kind     Kind     `json:"kind"`
	Title    string   `json:"title,omitempty"`
	X        string   `json:"x,omitempty"`
	Y        string   `json:"y,omitempty"`
	Category string   `json:"category,omitempty"`
	Series   string   `json:"series,omitempty"`
	Values   []string `json:"values,omitempty"`
	Sort     string   `json:"sort,omitempty"`
	TopN     int      `json:"top_n,omitempty"`

	// LocationMode selects the choropleth keying scheme.
	LocationMode string `json:"location_mode,omitempty"`
	// Trendline asks the renderer for an OLS fit; if the fit fails the
	// renderer retries the scatter without it.
	Trendline bool `json:"trendline,omitempty"`
	// BoxplotMargin adds a boxplot margin to a histogram.
	BoxplotMargin bool `json:"boxplot_margin,omitempty"`
	// Fallback is rendered instead when the primary kind fails (used by
	// choropleth, whose rendering depends on recognizable location values).
	Fallback *Spec `json:"fallback,omitempty"`
}

const (
	maxKPIIndicators    = 4
	maxLineSeries       = 8
	maxDonutCategories  = 8
	maxBarCategories    = 25
	barTopN             = 20
	maxGroupedBarValues = 3
	minScatterRows      = 6
	minHeatmapNumerics  = 4
)

// ruleCtx carries everything a rule predicate or builder may inspect. The
// table is a private clone of the caller's, so rules may parse and sort rows
// without aliasing the orchestrator's copy.
type ruleCtx struct {
	t       *table.Table
	title   string
	lexicon Lexicon
	roles   roles
}

func (c *ruleCtx) intent(i Intent) bool { return c.lexicon.Matches(c.title, i) }

func (c *ruleCtx) name(col int) string { return c.t.Columns[col].Name }

// rule is one (predicate, outcome) entry of the dispatch table.
type rule struct {
	name  string
	when  func(*ruleCtx) bool
	build func(*ruleCtx) *Spec
}

// Classifier maps a result table's shape plus a free-text title to a chart
// spec. Classification is deterministic and total over the rule table; a nil
// spec means "no chart available".
type Classifier struct {
	lexicon Lexicon
	rules   []rule
}

// New returns a classifier with the default keyword lexicon.
func New() *Classifier { return NewWithLexicon(DefaultLexicon()) }

// NewWithLexicon returns a classifier driven by a custom intent lexicon.
func NewWithLexicon(lexicon Lexicon) *Classifier {
	return &Classifier{lexicon: lexicon, rules: dispatchRules()}
}

// Classify picks the first matching rule for the table and title. Specific
// intents (funnel, geo, correlation matrix) are checked before the generic
// shape rules so a title cue can override a shape default; the KPI rule runs
// first because a one-row table is a degenerate shape every later rule
// assumes away. Returns nil when no rule matches.
func (c *Classifier) Classify(t *table.Table, title string) *Spec {
	if t == nil || t.Empty() {
		return nil
	}
	ctx := &ruleCtx{
		t:       t.Clone(),
		title:   title,
		lexicon: c.lexicon,
	}
	ctx.roles = detectRoles(ctx.t)

	for _, r := range c.rules {
		if r.when(ctx) {
			return r.build(ctx)
		}
	}
	return nil
}

func dispatchRules() []rule {
	return []rule{
		{name: "kpi", when: whenKPI, build: buildKPI},
		{name: "funnel", when: whenFunnel, build: buildFunnel},
		{name: "choropleth", when: whenChoropleth, build: buildChoropleth},
		{name: "correlation_heatmap", when: whenHeatmap, build: buildHeatmap},
		{name: "scatter", when: whenScatter, build: buildScatter},
		{name: "time_series", when: whenTimeSeries, build: buildTimeSeries},
		{name: "histogram", when: whenHistogram, build: buildHistogram},
		{name: "categorical", when: whenCategorical, build: buildCategorical},
		{name: "fallback", when: whenFallback, build: buildFallback},
	}
}

// ─── Rule 1: KPI card ─────────────────────────────────────────────────────────

func whenKPI(c *ruleCtx) bool {
	return c.t.RowCount() == 1 && len(c.roles.numeric) >= 1
}

func buildKPI(c *ruleCtx) *Spec {
	values := columnNames(c, c.roles.numeric, maxKPIIndicators)
	kind := KPI
	if len(values) > 1 {
		kind = MultiKPI
	}
	return &Spec{Kind: kind, Title: c.title, Values: values}
}

// ─── Rule 2: funnel ───────────────────────────────────────────────────────────

func whenFunnel(c *ruleCtx) bool {
	return c.intent(IntentFunnel) &&
		len(c.roles.categorical) >= 1 && len(c.roles.numeric) >= 1
}

func buildFunnel(c *ruleCtx) *Spec {
	return &Spec{
		Kind:     Funnel,
		Title:    c.title,
		Category: c.name(c.roles.categorical[0]),
		Y:        c.name(c.roles.numeric[0]),
		Sort:     SortValueDesc,
	}
}

// ─── Rule 3: choropleth ───────────────────────────────────────────────────────

func whenChoropleth(c *ruleCtx) bool {
	return len(c.roles.geo) >= 1 && len(c.roles.numeric) >= 1
}

func buildChoropleth(c *ruleCtx) *Spec {
	geo := c.roles.geo[0]
	mode := LocationCountries
	for _, v := range c.t.Sample(geo, dateSampleSize) {
		// Two-letter values read as US state codes.
		if len(v) == 2 {
			mode = LocationUSStates
			break
		}
	}
	return &Spec{
		Kind:         Choropleth,
		Title:        c.title,
		Category:     c.name(geo),
		Y:            c.name(c.roles.numeric[0]),
		LocationMode: mode,
		Fallback:     barSpec(c, geo),
	}
}

// ─── Rule 4: correlation heatmap ──────────────────────────────────────────────

func whenHeatmap(c *ruleCtx) bool {
	return len(c.roles.numeric) >= minHeatmapNumerics &&
		len(c.roles.dates) == 0 && len(c.roles.categorical) == 0
}

func buildHeatmap(c *ruleCtx) *Spec {
	return &Spec{
		Kind:   Heatmap,
		Title:  c.title,
		Values: columnNames(c, c.roles.numeric, len(c.roles.numeric)),
	}
}

// ─── Rule 5: scatter with trendline ──────────────────────────────────────────

func whenScatter(c *ruleCtx) bool {
	if len(c.roles.numeric) < 2 || c.t.RowCount() < minScatterRows {
		return false
	}
	shapeSaysScatter := len(c.roles.dates) == 0 && len(c.roles.categorical) == 0
	return c.intent(IntentCorrelation) || shapeSaysScatter
}

func buildScatter(c *ruleCtx) *Spec {
	return &Spec{
		Kind:      Scatter,
		Title:     c.title,
		X:         c.name(c.roles.numeric[0]),
		Y:         c.name(c.roles.numeric[1]),
		Trendline: true,
	}
}

// ─── Rule 6: time series ──────────────────────────────────────────────────────

func whenTimeSeries(c *ruleCtx) bool {
	if len(c.roles.dates) == 0 {
		return false
	}
	// The time axis itself may be a numeric "year" column; a second measure
	// must exist for a series to plot.
	return len(timeSeriesMeasures(c)) >= 1
}

// timeSeriesMeasures returns numeric columns excluding the time axis.
func timeSeriesMeasures(c *ruleCtx) []int {
	axis := c.roles.dates[0]
	var out []int
	for _, n := range c.roles.numeric {
		if n != axis {
			out = append(out, n)
		}
	}
	return out
}

func buildTimeSeries(c *ruleCtx) *Spec {
	axis := c.roles.dates[0]
	sortByDate(c.t, axis)
	y := c.name(timeSeriesMeasures(c)[0])

	cumulative := c.intent(IntentCumulative)
	if len(c.roles.categorical) >= 1 && !cumulative {
		cat := c.roles.categorical[0]
		if c.t.DistinctCount(cat) <= maxLineSeries {
			return &Spec{
				Kind:   MultiLine,
				Title:  c.title,
				X:      c.name(axis),
				Y:      y,
				Series: c.name(cat),
				Sort:   SortXAsc,
			}
		}
	}
	kind := Line
	if cumulative {
		kind = Area
	}
	return &Spec{Kind: kind, Title: c.title, X: c.name(axis), Y: y, Sort: SortXAsc}
}

// sortByDate parses a column's values as dates and sorts rows ascending.
// Unparseable cells sort last; the table is the classifier's private clone.
func sortByDate(t *table.Table, col int) {
	type keyed struct {
		row  []any
		ok   bool
		when int64
	}
	keys := make([]keyed, len(t.Rows))
	for i, row := range t.Rows {
		k := keyed{row: row}
		if col < len(row) && row[col] != nil {
			switch v := row[col].(type) {
			case time.Time:
				k.ok, k.when = true, v.Unix()
			default:
				if ts, ok := table.ParseDate(stringify(v)); ok {
					k.ok, k.when = true, ts.Unix()
				} else if f, ok := floatVal(v); ok {
					// Numeric axis (e.g. a plain year column).
					k.ok, k.when = true, int64(f)
				}
			}
		}
		keys[i] = k
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].ok != keys[j].ok {
			return keys[i].ok
		}
		return keys[i].when < keys[j].when
	})
	for i := range keys {
		t.Rows[i] = keys[i].row
	}
}

// ─── Rule 7: distribution histogram ──────────────────────────────────────────

func whenHistogram(c *ruleCtx) bool {
	return c.intent(IntentDistribution) && len(c.roles.numeric) >= 1
}

func buildHistogram(c *ruleCtx) *Spec {
	return &Spec{
		Kind:          Histogram,
		Title:         c.title,
		X:             c.name(c.roles.numeric[0]),
		BoxplotMargin: true,
	}
}

// ─── Rule 8: categorical breakdowns ──────────────────────────────────────────

func whenCategorical(c *ruleCtx) bool {
	return len(c.roles.categorical) >= 1 && len(c.roles.numeric) >= 1
}

func buildCategorical(c *ruleCtx) *Spec {
	cat := c.roles.categorical[0]
	distinct := c.t.DistinctCount(cat)

	if c.intent(IntentPartOfWhole) {
		kind := Donut
		if distinct > maxDonutCategories {
			kind = Treemap
		}
		return &Spec{
			Kind:     kind,
			Title:    c.title,
			Category: c.name(cat),
			Y:        c.name(c.roles.numeric[0]),
		}
	}

	if len(c.roles.numeric) >= 2 {
		return &Spec{
			Kind:     GroupedBar,
			Title:    c.title,
			Category: c.name(cat),
			Values:   columnNames(c, c.roles.numeric, maxGroupedBarValues),
		}
	}

	if distinct <= maxBarCategories {
		return barSpec(c, cat)
	}
	return &Spec{
		Kind:     Treemap,
		Title:    c.title,
		Category: c.name(cat),
		Y:        c.name(c.roles.numeric[0]),
	}
}

// barSpec is the horizontal-bar outcome shared by rule 8 and the choropleth
// fallback: top categories by value, ascending for display.
func barSpec(c *ruleCtx, cat int) *Spec {
	return &Spec{
		Kind:     HorizontalBar,
		Title:    c.title,
		Category: c.name(cat),
		Y:        c.name(c.roles.numeric[0]),
		Sort:     SortValueAsc,
		TopN:     barTopN,
	}
}

// ─── Rule 9: last-resort shapes ──────────────────────────────────────────────

func whenFallback(c *ruleCtx) bool {
	return (len(c.roles.numeric) == 1 && c.t.RowCount() > 5) ||
		len(c.roles.numeric) >= 2
}

func buildFallback(c *ruleCtx) *Spec {
	if len(c.roles.numeric) >= 2 {
		return &Spec{
			Kind:  Scatter,
			Title: c.title,
			X:     c.name(c.roles.numeric[0]),
			Y:     c.name(c.roles.numeric[1]),
		}
	}
	return &Spec{Kind: Histogram, Title: c.title, X: c.name(c.roles.numeric[0])}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func columnNames(c *ruleCtx, cols []int, max int) []string {
	if len(cols) > max {
		cols = cols[:max]
	}
	out := make([]string, len(cols))
	for i, idx := range cols {
		out[i] = c.name(idx)
	}
	return out
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func floatVal(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
