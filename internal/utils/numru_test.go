package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFloatRU(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"35.99", 35.99, true},
		{"1 234,50", 1234.50, true},
		{"197 ,00", 197, true},
		{"2 345,6", 2345.6, true},
		{"1,234.50", 1234.50, true},
		{"1.234,50", 1234.50, true},
		{"EUR 12,5", 12.5, true},
		{"", 0, false},
		{"-", 0, false},
		{"n/a", 0, false},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, ok := ParseFloatRU(c.in)
			assert.Equal(t, c.ok, ok)
			if c.ok {
				assert.InDelta(t, c.want, got, 1e-9)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	f, ok := ParsePrice(json.Number("99.5"))
	assert.True(t, ok)
	assert.InDelta(t, 99.5, f, 1e-9)

	f, ok = ParsePrice(12.0)
	assert.True(t, ok)
	assert.InDelta(t, 12.0, f, 1e-9)

	_, ok = ParsePrice(nil)
	assert.False(t, ok)
	_, ok = ParsePrice([]any{1})
	assert.False(t, ok)
}
