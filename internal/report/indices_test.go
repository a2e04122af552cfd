package report

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIndices(t *testing.T) {
	tests := []struct {
		in   string
		want []int
	}{
		{"1", []int{1}},
		{"1,3", []int{1, 3}},
		{" 3 , 1 ,2", []int{3, 1, 2}},
		{"2,2", []int{2, 2}},
	}
	for _, tc := range tests {
		got, err := ParseIndices(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseIndices_Errors(t *testing.T) {
	for _, in := range []string{"", "1, a, 3", "1,,2", "1.5", "one", "1;2"} {
		_, err := ParseIndices(in)
		var ipe *IndexParseError
		require.True(t, errors.As(err, &ipe), "input %q", in)
		assert.Equal(t, in, ipe.Input)
	}
}

func TestIndexParseError_NamesItem(t *testing.T) {
	_, err := ParseIndices("1, a, 3")
	assert.Contains(t, err.Error(), `"a"`)
}
