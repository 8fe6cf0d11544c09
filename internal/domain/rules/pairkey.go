package rules

// PairKey builds the canonical order-independent key for a participant
// pair. The matches table carries a unique index on this key, which is
// what guarantees at most one match per pair.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}
