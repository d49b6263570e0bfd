package funding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "simple commas",
			input: "Health, Displacement,Food Security",
			want:  []string{"Health", "Displacement", "Food Security"},
		},
		{
			name:  "comma inside parentheses does not split",
			input: "Humanitarian OpenStreetMap Team (HOT, US), Data Friendly Space",
			want:  []string{"Humanitarian OpenStreetMap Team (HOT, US)", "Data Friendly Space"},
		},
		{
			name:  "comma inside double quotes does not split",
			input: `"Save the Children, International", UNICEF`,
			want:  []string{"Save the Children, International", "UNICEF"},
		},
		{
			name:  "comma inside single quotes does not split",
			input: "'MapAction, UK', GeoPoll",
			want:  []string{"MapAction, UK", "GeoPoll"},
		},
		{
			name:  "empty segments dropped",
			input: "Health,, ,Displacement,",
			want:  []string{"Health", "Displacement"},
		},
		{
			name:  "single value",
			input: "  Infrastructure & Platforms  ",
			want:  []string{"Infrastructure & Platforms"},
		},
		{
			name:  "empty string",
			input: "",
			want:  nil,
		},
		{
			name:  "unbalanced closing paren tolerated",
			input: "Alpha), Beta",
			want:  []string{"Alpha)", "Beta"},
		},
		{
			name:  "nested parentheses",
			input: "Org (a (b, c), d), Other",
			want:  []string{"Org (a (b, c), d)", "Other"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitList(tt.input))
		})
	}
}

func TestStripQuotes(t *testing.T) {
	assert.Equal(t, "quoted", stripQuotes(`"quoted"`))
	assert.Equal(t, "quoted", stripQuotes("'quoted'"))
	// Only one layer comes off
	assert.Equal(t, `"twice"`, stripQuotes(`""twice""`))
	// Mismatched quotes stay
	assert.Equal(t, `"half`, stripQuotes(`"half`))
	assert.Equal(t, "plain", stripQuotes("plain"))
}
