package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseISO8601Duration(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"PT4M13S", 253, true},
		{"PT1H", 3600, true},
		{"PT1H2M3S", 3723, true},
		{"P1DT1S", 86401, true},
		{"P1W", 604800, true},
		{"P0D", 0, true},
		{"PT", 0, false},
		{"", 0, false},
		{"4M13S", 0, false},
		{"P1M", 0, false},
		{"PT5", 0, false},
		{"PTXS", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseISO8601Duration(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
