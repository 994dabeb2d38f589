package entity

// ClassificationTable is a whitelist of icon signatures and their downloadable verdict.
// It is never mutated after construction; a missing key means "not downloadable".
type ClassificationTable struct {
	verdicts map[IconSignature]bool
}

// NewClassificationTable copies verdicts into a new immutable table.
func NewClassificationTable(verdicts map[IconSignature]bool) ClassificationTable {
	m := make(map[IconSignature]bool, len(verdicts))
	for sig, ok := range verdicts {
		m[sig] = ok
	}
	return ClassificationTable{verdicts: m}
}

// Verdict returns the stored verdict for sig, false when sig is unknown.
func (t ClassificationTable) Verdict(sig IconSignature) bool {
	return t.verdicts[sig]
}

// Len returns the number of known signatures.
func (t ClassificationTable) Len() int {
	return len(t.verdicts)
}
