package table_test

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/table"
)

func TestKindInference(t *testing.T) {
	tbl := table.New(
		[]string{"name", "amount", "created", "active", "notes"},
		[][]any{
			{"alpha", int64(3), time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), true, nil},
			{"beta", 1.5, nil, false, nil},
		},
	)

	want := []table.Kind{table.KindText, table.KindNumeric, table.KindTime, table.KindBool, table.KindText}
	for i, k := range want {
		if tbl.Columns[i].Kind != k {
			t.Errorf("column %q kind = %v, want %v", tbl.Columns[i].Name, tbl.Columns[i].Kind, k)
		}
	}
}

func TestKindInferenceSkipsLeadingNulls(t *testing.T) {
	tbl := table.New([]string{"v"}, [][]any{{nil}, {nil}, {int64(7)}})
	if tbl.Columns[0].Kind != table.KindNumeric {
		t.Errorf("kind = %v, want numeric from first non-nil value", tbl.Columns[0].Kind)
	}
}

func TestNullFraction(t *testing.T) {
	tbl := table.New([]string{"v"}, [][]any{{1.0}, {nil}, {nil}, {2.0}})
	if got := tbl.NullFraction(0); got != 0.5 {
		t.Errorf("NullFraction = %v, want 0.5", got)
	}
}

func TestFloatsSkipsNonNumeric(t *testing.T) {
	tbl := table.New([]string{"v"}, [][]any{{int64(1)}, {"oops"}, {2.5}, {nil}})
	got := tbl.Floats(0)
	if len(got) != 2 || got[0] != 1 || got[1] != 2.5 {
		t.Errorf("Floats = %v", got)
	}
}

func TestHasDuplicates(t *testing.T) {
	tbl := table.New([]string{"id"}, [][]any{{int64(1)}, {int64(2)}, {int64(1)}, {int64(1)}})
	dup, n := tbl.HasDuplicates(0)
	if !dup || n != 2 {
		t.Errorf("HasDuplicates = (%v, %d), want (true, 2)", dup, n)
	}

	unique := table.New([]string{"id"}, [][]any{{int64(1)}, {int64(2)}})
	if dup, _ := unique.HasDuplicates(0); dup {
		t.Error("unique column reported duplicates")
	}
}

func TestCloneIsDeep(t *testing.T) {
	tbl := table.New([]string{"v"}, [][]any{{"a"}, {"b"}})
	cp := tbl.Clone()
	cp.Rows[0][0] = "mutated"
	if tbl.Rows[0][0] != "a" {
		t.Error("Clone shares row storage with the original")
	}
}

func TestHeadRendersSample(t *testing.T) {
	tbl := table.New([]string{"genre", "revenue"}, [][]any{
		{"Rock", 120.5},
		{"Jazz", 88.0},
		{"Pop", 40.0},
	})
	head := tbl.Head(2)
	lines := strings.Split(head, "\n")
	if len(lines) != 3 {
		t.Fatalf("Head(2) lines = %d, want header + 2 rows:\n%s", len(lines), head)
	}
	if lines[0] != "genre\trevenue" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Rock\t") {
		t.Errorf("first row = %q", lines[1])
	}
}

func TestParseDateLayouts(t *testing.T) {
	cases := []struct {
		in   string
		ok   bool
		year int
	}{
		{"2024-03-15", true, 2024},
		{"2024-03", true, 2024},
		{"2024", true, 2024},
		{"03/15/2024", true, 2024},
		{"Jan 2023", true, 2023},
		{"not a date", false, 0},
		{"", false, 0},
	}
	for _, tc := range cases {
		ts, ok := table.ParseDate(tc.in)
		if ok != tc.ok {
			t.Errorf("ParseDate(%q) ok = %v, want %v", tc.in, ok, tc.ok)
			continue
		}
		if ok && ts.Year() != tc.year {
			t.Errorf("ParseDate(%q) year = %d, want %d", tc.in, ts.Year(), tc.year)
		}
	}
}

// ─── Stats ──────────────────────────────────────────────────────────────

func TestQuantileInterpolates(t *testing.T) {
	vals := []float64{1, 2, 3, 4}
	if got := table.Quantile(vals, 0.5); got != 2.5 {
		t.Errorf("Quantile(0.5) = %v, want 2.5", got)
	}
	if got := table.Quantile(vals, 0); got != 1 {
		t.Errorf("Quantile(0) = %v, want 1", got)
	}
	if got := table.Quantile(vals, 1); got != 4 {
		t.Errorf("Quantile(1) = %v, want 4", got)
	}
}

func TestQuantileUnsortedInput(t *testing.T) {
	vals := []float64{9, 1, 5, 3, 7}
	if got := table.Median(vals); got != 5 {
		t.Errorf("Median = %v, want 5", got)
	}
	// p99 of a small skewed set sits near the max
	skewed := []float64{1, 1, 1, 1, 100}
	if got := table.Quantile(skewed, 0.99); math.Abs(got-96.04) > 0.1 {
		t.Errorf("Quantile(0.99) = %v, want about 96.04", got)
	}
}

func TestQuantileEmpty(t *testing.T) {
	if got := table.Quantile(nil, 0.5); got != 0 {
		t.Errorf("Quantile(nil) = %v, want 0", got)
	}
}
