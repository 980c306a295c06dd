package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrencyIDR(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "Rp 0"},
		{999, "Rp 999"},
		{15000, "Rp 15.000"},
		{15000.5, "Rp 15.000,50"},
		{1234567.89, "Rp 1.234.567,89"},
		{-2500, "-Rp 2.500"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCurrencyIDR(tt.amount))
	}
}
