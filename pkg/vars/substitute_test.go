package vars_test

import (
	"testing"

	"github.com/arthur-debert/guiderails/pkg/vars"
	"github.com/stretchr/testify/assert"
)

func TestSubstitute(t *testing.T) {
	store := vars.NewStore(map[string]string{
		"NAME":  "World",
		"COUNT": "42",
	})

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "single_reference",
			text: "Hello ${NAME}",
			want: "Hello World",
		},
		{
			name: "multiple_references",
			text: "Hello ${NAME}, count is ${COUNT}",
			want: "Hello World, count is 42",
		},
		{
			name: "unset_reference_becomes_empty",
			text: "value=[${MISSING}]",
			want: "value=[]",
		},
		{
			name: "no_references",
			text: "plain text",
			want: "plain text",
		},
		{
			name: "bare_dollar_untouched",
			text: "cost is $5 and $NAME",
			want: "cost is $5 and $NAME",
		},
		{
			name: "invalid_identifier_untouched",
			text: "${9LIVES} ${} ${a-b}",
			want: "${9LIVES} ${} ${a-b}",
		},
		{
			name: "adjacent_references",
			text: "${NAME}${COUNT}",
			want: "World42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, vars.Substitute(tt.text, store))
		})
	}
}

func TestSubstituteIsSinglePass(t *testing.T) {
	// A value containing a reference must not be expanded again,
	// otherwise tutorial output could inject further substitutions.
	store := vars.NewStore(map[string]string{
		"OUTER": "${INNER}",
		"INNER": "secret",
	})

	assert.Equal(t, "${INNER}", vars.Substitute("${OUTER}", store))
}

func TestSubstituteCaseSensitive(t *testing.T) {
	store := vars.NewStore(map[string]string{"Name": "mixed"})

	assert.Equal(t, "mixed  ", vars.Substitute("${Name} ${name} ${NAME}", store))
}
