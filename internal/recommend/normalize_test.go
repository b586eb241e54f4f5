package recommend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edgard/intillasense/internal/recommend"
)

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{in: "", want: ""},
		{in: "   ", want: ""},
		{in: "Should I  chisel\tplow?", want: "Should I chisel plow?"},
		{in: "line one\r\nline two\rthree", want: "line one\nline two\nthree"},
		{in: "para one\n\n\n\n\npara two", want: "para one\n\npara two"},
		{in: "\uFEFFzero\u200Bwidth\u2060join", want: "zero widthjoin"},
		{in: "bell\x07char", want: "bell char"},
		{in: "  indented\n   lines  ", want: "indented\nlines"},
		{in: "wide\u3000space", want: "wide space"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, recommend.NormalizeText(tt.in), "%q", tt.in)
	}
}
