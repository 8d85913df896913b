// Package perf defines the core domain types for monthly fund and benchmark
// performance snapshots: upload kinds, the fixed column vocabulary, and the
// normalized row shape shared by validation and import.
package perf

import "github.com/rotisserie/eris"

// Kind identifies which ticker namespace a row or upload belongs to.
type Kind string

const (
	KindFund      Kind = "fund"
	KindBenchmark Kind = "benchmark"
	KindMixed     Kind = "mixed"
	KindUnknown   Kind = "unknown"
)

// ParseKind converts a string like "fund" or "benchmark" into a Kind.
// Only the two importable kinds are accepted.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "fund":
		return KindFund, nil
	case "benchmark":
		return KindBenchmark, nil
	default:
		return KindUnknown, eris.Errorf("unknown kind: %q (valid: fund, benchmark)", s)
	}
}

// Importable reports whether rows of this kind can be written to the store.
func (k Kind) Importable() bool {
	return k == KindFund || k == KindBenchmark
}

func (k Kind) String() string { return string(k) }
