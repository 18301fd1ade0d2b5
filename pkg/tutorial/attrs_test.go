package tutorial_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/guiderails/pkg/errors"
	"github.com/arthur-debert/guiderails/pkg/tutorial"
)

func TestParseAttrs(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantClasses []string
		wantID      string
		wantKeys    map[string]string
	}{
		{
			name:        "single_class",
			input:       "{.gr-run}",
			wantClasses: []string{"gr-run"},
		},
		{
			name:        "class_and_id",
			input:       "{.gr-step #install}",
			wantClasses: []string{"gr-step"},
			wantID:      "install",
		},
		{
			name:        "multiple_classes",
			input:       "{.gr-step .highlight}",
			wantClasses: []string{"gr-step", "highlight"},
		},
		{
			name:        "bare_values",
			input:       "{.gr-run mode=exit exp=0 timeout=5}",
			wantClasses: []string{"gr-run"},
			wantKeys:    map[string]string{"mode": "exit", "exp": "0", "timeout": "5"},
		},
		{
			name:        "quoted_value_with_spaces",
			input:       `{.gr-run mode=contains exp="Hello World"}`,
			wantClasses: []string{"gr-run"},
			wantKeys:    map[string]string{"mode": "contains", "exp": "Hello World"},
		},
		{
			name:        "quoted_value_with_equals",
			input:       `{.gr-run exp="a=b c=d"}`,
			wantClasses: []string{"gr-run"},
			wantKeys:    map[string]string{"exp": "a=b c=d"},
		},
		{
			name:        "escaped_quote_inside_value",
			input:       `{.gr-run exp="say \"hi\""}`,
			wantClasses: []string{"gr-run"},
			wantKeys:    map[string]string{"exp": `say "hi"`},
		},
		{
			name:        "escaped_backslash_inside_value",
			input:       `{.gr-run exp="a\\b"}`,
			wantClasses: []string{"gr-run"},
			wantKeys:    map[string]string{"exp": `a\b`},
		},
		{
			name:        "lone_backslash_kept_literal",
			input:       `{.gr-run exp="a\nb"}`,
			wantClasses: []string{"gr-run"},
			wantKeys:    map[string]string{"exp": `a\nb`},
		},
		{
			name:        "empty_quoted_value",
			input:       `{.gr-file path=x.txt template=""}`,
			wantClasses: []string{"gr-file"},
			wantKeys:    map[string]string{"path": "x.txt", "template": ""},
		},
		{
			name:        "unknown_keys_preserved",
			input:       "{.gr-run shell=zsh retries=3}",
			wantClasses: []string{"gr-run"},
			wantKeys:    map[string]string{"shell": "zsh", "retries": "3"},
		},
		{
			name:        "path_value_with_dots_and_slashes",
			input:       "{.gr-file path=docs/out.txt}",
			wantClasses: []string{"gr-file"},
			wantKeys:    map[string]string{"path": "docs/out.txt"},
		},
		{
			name:        "surrounding_whitespace",
			input:       "  {.gr-step #a}  ",
			wantClasses: []string{"gr-step"},
			wantID:      "a",
		},
		{
			name:        "duplicate_key_last_wins",
			input:       "{.gr-run timeout=5 timeout=10}",
			wantClasses: []string{"gr-run"},
			wantKeys:    map[string]string{"timeout": "10"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs, err := tutorial.ParseAttrs(tt.input)
			require.NoError(t, err)

			assert.Equal(t, tt.wantClasses, attrs.Classes)
			assert.Equal(t, tt.wantID, attrs.ID)
			for k, want := range tt.wantKeys {
				got, ok := attrs.Get(k)
				assert.True(t, ok, "missing key %s", k)
				assert.Equal(t, want, got, "key %s", k)
			}
			assert.Len(t, attrs.Keys, len(tt.wantKeys))
		})
	}
}

func TestParseAttrsErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "missing_opening_brace", input: ".gr-run}"},
		{name: "missing_closing_brace", input: "{.gr-run mode=exit"},
		{name: "unterminated_quote", input: `{.gr-run exp="Hello}`},
		{name: "bare_word", input: "{.gr-run verbose}"},
		{name: "empty_class_name", input: "{. gr-run}"},
		{name: "empty_id", input: "{.gr-step #}"},
		{name: "duplicate_id", input: "{.gr-step #a #b}"},
		{name: "class_with_value", input: "{.gr-run=yes}"},
		{name: "missing_value", input: "{.gr-run exp=}"},
		{name: "missing_value_at_end", input: "{.gr-run exp="},
		{name: "content_after_close", input: "{.gr-step} trailing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tutorial.ParseAttrs(tt.input)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrMalformedAttributes),
				"expected MALFORMED_ATTRIBUTES, got %v", err)
		})
	}
}

func TestAttrSetHasClass(t *testing.T) {
	attrs, err := tutorial.ParseAttrs("{.gr-step .extra #id1}")
	require.NoError(t, err)

	assert.True(t, attrs.HasClass("gr-step"))
	assert.True(t, attrs.HasClass("extra"))
	assert.False(t, attrs.HasClass("gr-run"))
}
