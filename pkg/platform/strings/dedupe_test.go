package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "trims whitespace",
			input:    []string{"  Gardening  ", "Tutor  ", "  Driving"},
			expected: []string{"Gardening", "Tutor", "Driving"},
		},
		{
			name:     "removes duplicates preserving order",
			input:    []string{"Tutor", "Driving", "Tutor", "Cooking", "Driving"},
			expected: []string{"Tutor", "Driving", "Cooking"},
		},
		{
			name:     "removes empty strings",
			input:    []string{"Tutor", "", "  ", "Driving"},
			expected: []string{"Tutor", "Driving"},
		},
		{
			name:     "preserves case",
			input:    []string{"Tutor", "tutor", "TUTOR"},
			expected: []string{"Tutor", "tutor", "TUTOR"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}

func TestUpperKey(t *testing.T) {
	assert.Equal(t, "LONDON", UpperKey(" london "))
	assert.Equal(t, "ST. IVES", UpperKey("St. Ives"))
	assert.Equal(t, "", UpperKey("   "))
}

func TestLastField(t *testing.T) {
	tests := map[string]string{
		"Bearer abc.def.ghi": "abc.def.ghi",
		"abc.def.ghi":        "abc.def.ghi",
		"bearer   tok  ":     "tok",
		"":                   "",
		"   ":                "",
	}
	for in, want := range tests {
		assert.Equal(t, want, LastField(in), "input %q", in)
	}
}
