package linker_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guarzo/gazettefeed/modules/linker"
)

func TestExtractTerms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "stopwords and case",
			in:   "The Company and the Director",
			want: []string{"company", "director"},
		},
		{
			name: "markdown is flattened",
			in:   "## Heading\nSee [Distressed M&A](https://example.com/ma) and *bold* `code` cafe1 ok_x",
			want: []string{"heading", "distressed", "bold", "code", "okx"},
		},
		{
			name: "order and duplicates kept",
			in:   "buyers buy distressed buyers",
			want: []string{"buyers", "buy", "distressed", "buyers"},
		},
		{
			name: "short and numeric tokens dropped",
			in:   "A 2024 UK plc, x y zz",
			want: []string{"uk", "plc", "zz"},
		},
		{
			name: "seven hashes keep one",
			in:   "####### Title",
			want: []string{"title"},
		},
		{
			name: "non-ascii letters split words",
			in:   "café société",
			want: []string{"caf", "soci"},
		},
		{
			name: "empty",
			in:   "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := linker.ExtractTerms(tt.in)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExtractTerms() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractTerms_InvalidInput(t *testing.T) {
	_, err := linker.ExtractTerms("bad \xff bytes")
	require.Error(t, err)
	assert.True(t, errors.Is(err, linker.ErrInvalidInput))
}

func TestIsStopword(t *testing.T) {
	assert.True(t, linker.IsStopword("the"))
	assert.True(t, linker.IsStopword("more"))
	assert.False(t, linker.IsStopword("administration"))
}
