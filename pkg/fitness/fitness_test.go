package fitness

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderingString(t *testing.T) {
	tests := []struct {
		ordering Ordering
		expected string
	}{
		{Less, "Less"},
		{Equal, "Equal"},
		{Greater, "Greater"},
		{Incomparable, "Incomparable"},
		{Ordering(42), "Ordering(42)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.ordering.String())
		})
	}
}

func TestCompareFloats(t *testing.T) {
	tests := []struct {
		name     string
		a, b     float64
		expected Ordering
	}{
		{"less", 1.0, 2.0, Less},
		{"greater", 2.0, 1.0, Greater},
		{"equal", 1.5, 1.5, Equal},
		{"nan left", math.NaN(), 1.0, Incomparable},
		{"nan right", 1.0, math.NaN(), Incomparable},
		{"nan both", math.NaN(), math.NaN(), Incomparable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, compareFloats(tt.a, tt.b))
		})
	}
}
