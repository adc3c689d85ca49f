package codec

import (
	"time"

	"github.com/somc-project/somc/internal/stylesheet"
)

// Summary is the report emitted alongside the binary artifact (§6.4):
// generation metadata, size accounting, rule-class and dependency-kind
// breakdowns, boundary count, and the full warning set.
type Summary struct {
	GeneratedAt         time.Time          `json:"generated_at"`
	Sources             []string           `json:"sources"`
	BinarySize          int                `json:"binary_size"`
	FallbackSize        int                `json:"fallback_size"`
	RuleCounts          map[string]int     `json:"rule_counts"`
	Percentages         map[string]float64 `json:"percentages"`
	BoundaryCount       int                `json:"boundary_count"`
	DependencyHistogram map[string]int     `json:"dependency_histogram"`
	Warnings            []stylesheet.Warning `json:"warnings"`
}

// BuildSummary assembles the summary record for res, the set of source
// filenames that fed the analysis, and the already-serialized artifact
// sizes.
func BuildSummary(res *stylesheet.Result, sources []string, binarySize, fallbackSize int, generatedAt time.Time) Summary {
	counts := map[string]int{
		stylesheet.Static.String():           0,
		stylesheet.Deterministic.String():    0,
		stylesheet.Nondeterministic.String(): 0,
	}
	for _, id := range res.Order {
		counts[res.Rules[id].FinalClass.String()]++
	}

	total := len(res.Order)
	percentages := make(map[string]float64, len(counts))
	for class, n := range counts {
		if total == 0 {
			percentages[class] = 0
			continue
		}
		percentages[class] = round2(100 * float64(n) / float64(total))
	}

	histogram := make(map[string]int)
	for _, m := range res.Manifests {
		for _, d := range m.Entries {
			histogram[d.Kind.String()]++
		}
	}

	warnings := res.Warnings
	if warnings == nil {
		warnings = []stylesheet.Warning{}
	}

	srcs := sources
	if srcs == nil {
		srcs = []string{}
	}

	return Summary{
		GeneratedAt:         generatedAt,
		Sources:             srcs,
		BinarySize:          binarySize,
		FallbackSize:        fallbackSize,
		RuleCounts:          counts,
		Percentages:         percentages,
		BoundaryCount:       len(res.Manifests),
		DependencyHistogram: histogram,
		Warnings:            warnings,
	}
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
