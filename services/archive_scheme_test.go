package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemeSelector_Select(t *testing.T) {
	s := NewSchemeSelector("2026-01")

	tests := []struct {
		date string
		want Scheme
	}{
		{"2025-12-31", SchemeLegacy},
		{"2025-01-15", SchemeLegacy},
		{"2026-01-01", SchemeSharded},
		{"2026-01-31", SchemeSharded},
		{"2027-06-10", SchemeSharded},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Select(tt.date))
		})
	}
}

func TestSchemeSelector_DefaultCutover(t *testing.T) {
	assert.Equal(t, DefaultCutoverMonth, NewSchemeSelector("").CutoverMonth)
}

func TestSchemeSelector_SameSideAgrees(t *testing.T) {
	s := NewSchemeSelector("2026-03")
	before := []string{"2025-11-02", "2026-01-20", "2026-02-28"}
	after := []string{"2026-03-01", "2026-07-14", "2030-12-31"}

	for _, d1 := range before {
		for _, d2 := range before {
			assert.Equal(t, s.Select(d1), s.Select(d2), "%s vs %s", d1, d2)
		}
		for _, d2 := range after {
			assert.NotEqual(t, s.Select(d1), s.Select(d2), "%s vs %s", d1, d2)
		}
	}
	for _, d1 := range after {
		for _, d2 := range after {
			assert.Equal(t, s.Select(d1), s.Select(d2), "%s vs %s", d1, d2)
		}
	}
}
