package briefing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{95, "$95.00"},
		{1234.56, "$1,234.56"},
		{1234.565, "$1,234.57"},
		{-1234.56, "-$1,234.56"},
		{1000000, "$1,000,000.00"},
		{-0.004, "$0.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCurrency(tt.in), "FormatCurrency(%v)", tt.in)
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1.234, "+1.23%"},
		{2.675, "+2.68%"},
		{-0.5, "-0.50%"},
		{0, "0.00%"},
		{0.004, "0.00%"},
		{-0.004, "0.00%"},
		{3.16, "+3.16%"},
		{25, "+25.00%"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPercent(tt.in), "FormatPercent(%v)", tt.in)
	}
}
