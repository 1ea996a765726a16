package identity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarweave/researcher-service/internal/domain"
)

func TestParseDisplayName(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantGiven  string
		wantFamily string
		wantErr    error
	}{
		{
			name:       "simple two-part name",
			input:      "Marie Curie",
			wantGiven:  "Marie",
			wantFamily: "Curie",
		},
		{
			name:       "middle initial discarded",
			input:      "Brian C. Keegan, Ph.D.",
			wantGiven:  "Brian",
			wantFamily: "Keegan",
		},
		{
			name:       "multiple middle names discarded",
			input:      "Gabriel José García Márquez",
			wantGiven:  "Gabriel",
			wantFamily: "Márquez",
		},
		{
			name:       "title and suffix stripped",
			input:      "Dr. Jane Smith MD",
			wantGiven:  "Jane",
			wantFamily: "Smith",
		},
		{
			name:       "generational suffix stripped",
			input:      "Sammy Davis Jr.",
			wantGiven:  "Sammy",
			wantFamily: "Davis",
		},
		{
			name:       "roman numeral suffix stripped",
			input:      "Henry Ford III",
			wantGiven:  "Henry",
			wantFamily: "Ford",
		},
		{
			name:       "suffix without periods",
			input:      "Alice Wong PhD",
			wantGiven:  "Alice",
			wantFamily: "Wong",
		},
		{
			name:       "trailing comma on family name",
			input:      "Keegan, Brian",
			wantGiven:  "Keegan",
			wantFamily: "Brian",
		},
		{
			name:       "case-insensitive suffix match",
			input:      "prof. Ada Lovelace",
			wantGiven:  "Ada",
			wantFamily: "Lovelace",
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: domain.ErrInsufficientNameParts,
		},
		{
			name:    "whitespace only",
			input:   "   ",
			wantErr: domain.ErrInsufficientNameParts,
		},
		{
			name:    "single token",
			input:   "Cher",
			wantErr: domain.ErrInsufficientNameParts,
		},
		{
			name:    "only suffixes remain",
			input:   "Dr. Prof. Ph.D.",
			wantErr: domain.ErrInsufficientNameParts,
		},
		{
			name:    "one token after suffix removal",
			input:   "Smith, Ph.D.",
			wantErr: domain.ErrInsufficientNameParts,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseDisplayName(tt.input)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantGiven, parsed.Given)
			assert.Equal(t, tt.wantFamily, parsed.Family)
		})
	}
}

func TestParseDisplayName_CasePreserved(t *testing.T) {
	parsed, err := ParseDisplayName("ludwig van beethoven")
	require.NoError(t, err)
	assert.Equal(t, "ludwig", parsed.Given)
	assert.Equal(t, "beethoven", parsed.Family)
}
