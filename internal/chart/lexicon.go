package chart

import "strings"

// Intent is a soft classification of what the user's question title asks for.
type Intent string

const (
	IntentFunnel       Intent = "funnel"
	IntentCumulative   Intent = "cumulative"
	IntentCorrelation  Intent = "correlation"
	IntentDistribution Intent = "distribution"
	IntentPartOfWhole  Intent = "part_of_whole"
)

// Lexicon maps keyword sets to intents. It is a pluggable policy: swap it
// out to drive the classifier from structured intent instead of title text
// without touching the dispatch rules.
type Lexicon map[Intent][]string

// DefaultLexicon returns the built-in keyword sets.
func DefaultLexicon() Lexicon {
	return Lexicon{
		IntentFunnel: {
			"funnel", "stage", "stages", "conversion", "pipeline", "drop-off", "dropoff",
		},
		IntentCumulative: {
			"cumulative", "running total", "running", "ytd", "year-to-date", "to date", "accumulated",
		},
		IntentCorrelation: {
			"correlation", "correlate", "vs", "versus", "relationship", "against",
		},
		IntentDistribution: {
			"distribution", "histogram", "spread", "frequency", "how many orders per", "distributed",
		},
		IntentPartOfWhole: {
			"share", "breakdown", "proportion", "percentage", "composition", "split", "mix", "part of",
		},
	}
}

// Matches reports whether the title carries any keyword for the intent.
// Single-word keywords match on whole words only so "vs" does not fire
// inside "investigations"; multi-word keywords match as substrings.
func (l Lexicon) Matches(title string, intent Intent) bool {
	lower := strings.ToLower(title)
	words := tokenize(lower)
	for _, kw := range l[intent] {
		if strings.ContainsRune(kw, ' ') {
			if strings.Contains(lower, kw) {
				return true
			}
			continue
		}
		if _, ok := words[kw]; ok {
			return true
		}
	}
	return false
}

func tokenize(s string) map[string]struct{} {
	out := make(map[string]struct{})
	start := -1
	for i, r := range s {
		alnum := r == '-' || r == '_' ||
			(r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out[s[start:i]] = struct{}{}
			start = -1
		}
	}
	if start >= 0 {
		out[s[start:]] = struct{}{}
	}
	return out
}
