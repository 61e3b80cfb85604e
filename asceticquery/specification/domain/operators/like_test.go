package operators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchLike(t *testing.T) {
	tests := []struct {
		value, pattern string
		expected       bool
	}{
		{"laptop pro", "%top%", true},
		{"desktop pc", "%top%", true},
		{"mouse", "%top%", false},
		{"laptop pro", "lap%", true},
		{"laptop pro", "%pro", true},
		{"laptop pro", "%lap", false},
		{"abc", "a_c", true},
		{"abbc", "a_c", false},
		{"", "%", true},
		{"", "", true},
		{"a", "", false},
		{"50%", `50\%`, true},
		{"500", `50\%`, false},
		{"a_b", `a\_b`, true},
		{"axb", `a\_b`, false},
		{",business,portable,", "%,business,%", true},
		{",businessman,", "%,business,%", false},
		{"héllo", "h_llo", true},
	}
	for _, tt := range tests {
		t.Run(tt.value+" LIKE "+tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.expected, MatchLike(tt.value, tt.pattern))
		})
	}
}
