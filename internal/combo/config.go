package combo

// Config carries the tuning knobs spec.md calls out as legitimate policy
// choices rather than bugs (spec.md §3, §4.2, §7, §9).
type Config struct {
	// UnknownAsTop picks whether an Unknown IR node computes Top
	// (aggressive) or Bottom (conservative). Affects Cond/Switch folding
	// through an Unknown selector.
	UnknownAsTop bool

	// GCSEIgnoreControlEdge, when true, skips the control input (position
	// -1) during per-input partition splitting for unpinned nodes, trading
	// a coarser initial partition for fewer split rounds.
	GCSEIgnoreControlEdge bool

	// VerifyMonotone enables the debug hook that asserts every retype is ≤
	// the node's previous type in the lattice order (spec.md §4.1, §7).
	VerifyMonotone bool

	// CheckPartitions enables the debug hook that asserts partition
	// invariants after every split (spec.md §4.2, §7).
	CheckPartitions bool
}

// DefaultConfig matches the aggressive, verified debug-build posture: Unknown
// folds to Top, the control edge participates in splitting, and both
// verification hooks are on. Production callers that want libFirm's default
// (conservative, unverified) posture construct Config{} directly.
func DefaultConfig() Config {
	return Config{
		UnknownAsTop:    true,
		VerifyMonotone:  true,
		CheckPartitions: true,
	}
}
