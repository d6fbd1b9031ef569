package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollapseWhitespace(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "trims leading and trailing whitespace",
			input:    "  Broken  Streetlight ",
			expected: "Broken Streetlight",
		},
		{
			name:     "collapses tabs and newlines to single spaces",
			input:    "Noise\t-\tResidential\n",
			expected: "Noise - Residential",
		},
		{
			name:     "collapses runs of spaces",
			input:    "HEAT        AND   HOT WATER",
			expected: "HEAT AND HOT WATER",
		},
		{
			name:     "whitespace only becomes empty",
			input:    "   \t \n ",
			expected: "",
		},
		{
			name:     "already collapsed is unchanged",
			input:    "Street Condition",
			expected: "Street Condition",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := CollapseWhitespace(test.input)
			assert.Equal(t, test.expected, result)

			// applying again must not change the value
			assert.Equal(t, result, CollapseWhitespace(result))
		})
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercase words",
			input:    "noise - residential",
			expected: "Noise - Residential",
		},
		{
			name:     "all caps words",
			input:    "HEAT AND HOT WATER",
			expected: "Heat And Hot Water",
		},
		{
			name:     "mixed case with extra spaces",
			input:    "  bLOCKED   dRIVEWAY ",
			expected: "Blocked Driveway",
		},
		{
			name:     "single word",
			input:    "BROOKLYN",
			expected: "Brooklyn",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := TitleCase(test.input)
			assert.Equal(t, test.expected, result)
			assert.Equal(t, result, TitleCase(result))
		})
	}
}

func TestDigitsOnly(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strips zip+4 hyphen",
			input:    "10001-1234",
			expected: "100011234",
		},
		{
			name:     "strips internal whitespace",
			input:    " 100 01 ",
			expected: "10001",
		},
		{
			name:     "no digits at all",
			input:    "N/A",
			expected: "",
		},
		{
			name:     "pure digits unchanged",
			input:    "11201",
			expected: "11201",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, DigitsOnly(test.input))
		})
	}
}

func TestApplyChain(t *testing.T) {
	result := ApplyChain("  nOISE -  rESIDENTIAL ", "collapse_whitespace", "titlecase")
	assert.Equal(t, "Noise - Residential", result)
}

func TestApply_UnknownNormalizerIsPassthrough(t *testing.T) {
	assert.Equal(t, "UNCHANGED", Apply("UNCHANGED", "does_not_exist"))
}

func TestRegister(t *testing.T) {
	Register("reverse_test", func(s string) string {
		runes := []rune(s)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return string(runes)
	})

	fn, ok := Get("reverse_test")
	assert.True(t, ok)
	assert.Equal(t, "cba", fn("abc"))
}
