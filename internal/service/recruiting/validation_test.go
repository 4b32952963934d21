package recruiting

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostingInput_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   PostingInput
		details []string
	}{
		{
			name:  "minimal valid",
			input: PostingInput{Title: "Backend Engineer"},
		},
		{
			name:    "missing title",
			input:   PostingInput{Team: "Platform"},
			details: []string{"Job title is required"},
		},
		{
			name:    "blank title",
			input:   PostingInput{Title: "   \t"},
			details: []string{"Job title is required"},
		},
		{
			name:    "title too long",
			input:   PostingInput{Title: strings.Repeat("a", 201)},
			details: []string{"Job title must be at most 200 characters"},
		},
		{
			name:  "title at limit counts runes",
			input: PostingInput{Title: strings.Repeat("é", 200)},
		},
		{
			name: "team and location too long",
			input: PostingInput{
				Title:    "Engineer",
				Team:     strings.Repeat("t", 101),
				Location: strings.Repeat("l", 101),
			},
			details: []string{
				"Team name must be at most 100 characters",
				"Location must be at most 100 characters",
			},
		},
		{
			name: "skill too long",
			input: PostingInput{
				Title:          "Engineer",
				MustHaveSkills: []string{"Go", strings.Repeat("s", 51), strings.Repeat("x", 60)},
			},
			details: []string{"Must-have skills entries must be at most 50 characters"},
		},
		{
			name: "too many benefits",
			input: PostingInput{
				Title:    "Engineer",
				Benefits: make([]string, 51),
			},
			details: []string{"Benefits must have at most 50 entries"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.input.Validate()
			if tt.details == nil {
				assert.NoError(t, err)
				return
			}
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.details, vErr.Details)
		})
	}
}

func TestKitInput_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, KitInput{RoleTitle: "SRE", Seniority: "Senior"}.Validate())

	var vErr *ValidationError
	require.ErrorAs(t, KitInput{}.Validate(), &vErr)
	assert.Equal(t, []string{"Role title is required"}, vErr.Details)

	require.ErrorAs(t, KitInput{RoleTitle: strings.Repeat("r", 201)}.Validate(), &vErr)
	assert.Equal(t, []string{"Role title must be at most 200 characters"}, vErr.Details)
}

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	err := NewValidationError("Job title is required", "Location must be at most 100 characters")
	assert.Equal(t,
		"validation failed: Job title is required; Location must be at most 100 characters",
		err.Error())
}
