package perf

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed columns.yaml
var columnsYAML []byte

// Vocabulary is the fixed header vocabulary for one upload kind.
type Vocabulary struct {
	TickerColumn string   `yaml:"ticker_column"`
	Metrics      []string `yaml:"metrics"`
}

type vocabularyFile struct {
	DateColumn string     `yaml:"date_column"`
	Fund       Vocabulary `yaml:"fund"`
	Benchmark  Vocabulary `yaml:"benchmark"`
}

var vocab vocabularyFile

func init() {
	if err := yaml.Unmarshal(columnsYAML, &vocab); err != nil {
		panic(fmt.Sprintf("perf: parse embedded columns.yaml: %v", err))
	}
}

// DateColumn is the header name of the optional per-row as-of date column.
func DateColumn() string { return vocab.DateColumn }

// TickerColumn returns the ticker header name for a kind ("fund_ticker" or
// "benchmark_ticker"). Empty for non-importable kinds.
func TickerColumn(kind Kind) string {
	switch kind {
	case KindFund:
		return vocab.Fund.TickerColumn
	case KindBenchmark:
		return vocab.Benchmark.TickerColumn
	default:
		return ""
	}
}

// MetricColumns returns the closed metric column set for a kind, in canonical
// order. The benchmark set is a strict subset of the fund set: benchmarks carry
// no tenure, expense, or asset figures.
func MetricColumns(kind Kind) []string {
	switch kind {
	case KindFund:
		return append([]string(nil), vocab.Fund.Metrics...)
	case KindBenchmark:
		return append([]string(nil), vocab.Benchmark.Metrics...)
	default:
		return nil
	}
}

// AllMetricColumns returns the union of fund and benchmark metric columns,
// fund order first. Used for the superset storage schema.
func AllMetricColumns() []string {
	seen := make(map[string]bool, len(vocab.Fund.Metrics))
	out := make([]string, 0, len(vocab.Fund.Metrics))
	for _, m := range vocab.Fund.Metrics {
		seen[m] = true
		out = append(out, m)
	}
	for _, m := range vocab.Benchmark.Metrics {
		if !seen[m] {
			out = append(out, m)
		}
	}
	return out
}

// TemplateHeader returns the full header row for a template file of the given
// kind: ticker column, date column, then the metric columns.
func TemplateHeader(kind Kind) []string {
	header := []string{TickerColumn(kind), DateColumn()}
	return append(header, MetricColumns(kind)...)
}
