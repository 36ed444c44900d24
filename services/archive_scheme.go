package services

// Scheme is the physical layout an archived date lives in.
type Scheme string

const (
	SchemeLegacy  Scheme = "legacy"
	SchemeSharded Scheme = "sharded"
)

const DefaultCutoverMonth = "2026-01"

// SchemeSelector maps a calendar day to its storage scheme. Writers and
// readers share it so a date always resolves to the same scheme without
// probing storage.
type SchemeSelector struct {
	CutoverMonth string
}

func NewSchemeSelector(cutoverMonth string) SchemeSelector {
	if cutoverMonth == "" {
		cutoverMonth = DefaultCutoverMonth
	}
	return SchemeSelector{CutoverMonth: cutoverMonth}
}

// Select compares ISO strings directly: "2026-01-05" >= "2026-01" holds and
// "2025-12-31" >= "2026-01" does not, so no parsing is needed.
func (s SchemeSelector) Select(date string) Scheme {
	if date >= s.CutoverMonth {
		return SchemeSharded
	}
	return SchemeLegacy
}
