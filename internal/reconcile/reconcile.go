package reconcile

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/domain"
)

// DefaultThreshold is the minimum similarity ratio for an approximate match
const DefaultThreshold = 0.6

// Method records how a name was mapped
type Method string

const (
	MethodOverride   Method = "override"
	MethodSimilarity Method = "similarity"
)

// Match is one mapped place name
type Match struct {
	Raw       string
	Canonical string
	Method    Method
	Score     float64
}

// Result is the reconciliation of one level
type Result struct {
	Level     domain.Level
	Canonical int
	Matches   []Match
	Unmatched []string
}

// Mapping returns raw name -> canonical name
func (r Result) Mapping() map[string]string {
	m := make(map[string]string, len(r.Matches))
	for _, match := range r.Matches {
		m[match.Raw] = match.Canonical
	}
	return m
}

// Counts returns the number of names per method, unmatched included
func (r Result) Counts() map[string]int {
	counts := map[string]int{
		string(MethodOverride):   0,
		string(MethodSimilarity): 0,
		"unmatched":              len(r.Unmatched),
	}
	for _, m := range r.Matches {
		counts[string(m.Method)]++
	}
	return counts
}

// Overrides holds the manual raw -> canonical table of each level
type Overrides map[domain.Level]map[string]string

// Reconciler maps dataset names onto canonical names
type Reconciler struct {
	overrides Overrides
	threshold float64
	logger    *slog.Logger
}

// New creates a Reconciler. A threshold outside (0, 1] falls back to DefaultThreshold.
func New(overrides Overrides, threshold float64, logger *slog.Logger) *Reconciler {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	copied := make(Overrides, len(overrides))
	for level, table := range overrides {
		copied[level] = make(map[string]string, len(table))
		for k, v := range table {
			copied[level][k] = v
		}
	}
	return &Reconciler{
		overrides: copied,
		threshold: threshold,
		logger:    logger.With(slog.String("component", "reconcile")),
	}
}

// Reconcile maps every name in names that is not in canonical. Names are
// processed in sorted order so the result does not depend on input order.
// Only the overrides of level are consulted, and an override whose target is
// not in canonical is ignored.
func (r *Reconciler) Reconcile(ctx context.Context, level domain.Level, names, canonical []string) Result {
	known := make(map[string]struct{}, len(canonical))
	for _, c := range canonical {
		known[c] = struct{}{}
	}

	mismatches := make([]string, 0)
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := known[n]; ok {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		mismatches = append(mismatches, n)
	}
	sort.Strings(mismatches)

	overrides := r.overrides[level]
	result := Result{Level: level, Canonical: len(known)}
	for _, raw := range mismatches {
		if target, ok := overrides[raw]; ok {
			if _, canon := known[target]; canon {
				result.Matches = append(result.Matches, Match{Raw: raw, Canonical: target, Method: MethodOverride, Score: 1})
				continue
			}
			r.logger.WarnContext(ctx, "override target is not a canonical name",
				slog.String("level", string(level)),
				slog.String("name", raw),
				slog.String("target", target))
		}

		best, score, ok := r.BestMatch(raw, canonical)
		if !ok {
			result.Unmatched = append(result.Unmatched, raw)
			r.logger.DebugContext(ctx, "place name not reconciled",
				slog.String("level", string(level)),
				slog.String("name", raw))
			continue
		}
		result.Matches = append(result.Matches, Match{Raw: raw, Canonical: best, Method: MethodSimilarity, Score: score})
	}

	r.logger.InfoContext(ctx, "place names reconciled",
		slog.String("level", string(level)),
		slog.Int("canonical", result.Canonical),
		slog.Int("mismatched", len(mismatches)),
		slog.Int("mapped", len(result.Matches)),
		slog.Int("unmatched", len(result.Unmatched)))

	return result
}

// BestMatch returns the candidate most similar to name. ok is false when no
// candidate reaches the threshold.
func (r *Reconciler) BestMatch(name string, candidates []string) (best string, score float64, ok bool) {
	m := difflib.NewMatcher(nil, r.chars(name))

	for _, cand := range candidates {
		m.SetSeq1(r.chars(cand))
		if m.RealQuickRatio() < r.threshold || m.QuickRatio() < r.threshold {
			continue
		}
		ratio := m.Ratio()
		if ratio < r.threshold {
			continue
		}
		if !ok || ratio > score {
			best, score, ok = cand, ratio, true
		}
	}
	return best, score, ok
}

// Similarity returns the sequence-matcher ratio of a and b after normalization
func (r *Reconciler) Similarity(a, b string) float64 {
	return difflib.NewMatcher(r.chars(a), r.chars(b)).Ratio()
}

// chars splits the normalized form of s into single-rune elements
func (r *Reconciler) chars(s string) []string {
	s = cases.Fold().String(norm.NFKC.String(strings.TrimSpace(s)))
	out := make([]string, 0, len(s))
	for _, c := range s {
		out = append(out, string(c))
	}
	return out
}
