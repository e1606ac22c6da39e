package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer("tn")
	assert.Equal(t, "TN", n.Region())

	tests := []struct {
		in   string
		want string
	}{
		{"20 123 456", "+21620123456"},
		{"+216 20 123 456", "+21620123456"},
		{"+33 6 12 34 56 78", "+33612345678"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := n.Normalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeRejects(t *testing.T) {
	n := NewNormalizer("")
	for _, in := range []string{"", "   ", "12", "not a number", "+216 1"} {
		_, err := n.Normalize(in)
		assert.ErrorIs(t, err, ErrInvalid, in)
	}
}
