package lan

// KeyStatus classifies one translation key against a comparison table.
type KeyStatus int

const (
	// KeyMissing means the comparison table has no entry for the key.
	KeyMissing KeyStatus = iota
	// KeyIdentical means both tables carry the same display string.
	KeyIdentical
	// KeyDifferent means the comparison table translates the key
	// differently.
	KeyDifferent
)

func (s KeyStatus) String() string {
	switch s {
	case KeyIdentical:
		return "identical"
	case KeyDifferent:
		return "different"
	default:
		return "missing"
	}
}

// Comparison summarizes one table against another, key by key in the
// base table's file order. Keys present only in the other table are not
// reported; the viewer compares from the loaded file's perspective.
type Comparison struct {
	Missing   int
	Identical int
	Different int

	MissingKeys   []string
	DifferentKeys []string
}

// CompareKey classifies a single key of base against other.
func CompareKey(base, other *Table, key string) KeyStatus {
	v, ok := base.Get(key)
	if !ok {
		return KeyMissing
	}
	ov, ok := other.Get(key)
	switch {
	case !ok:
		return KeyMissing
	case ov == v:
		return KeyIdentical
	default:
		return KeyDifferent
	}
}

// Compare classifies every key of base against other.
func Compare(base, other *Table) Comparison {
	var c Comparison
	for _, e := range base.Entries() {
		switch CompareKey(base, other, e.Key) {
		case KeyMissing:
			c.Missing++
			c.MissingKeys = append(c.MissingKeys, e.Key)
		case KeyIdentical:
			c.Identical++
		case KeyDifferent:
			c.Different++
			c.DifferentKeys = append(c.DifferentKeys, e.Key)
		}
	}
	return c
}
