package fitness

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLexicalCompare(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Lexical
		expected Ordering
	}{
		{"first difference decides", Lexical{1, 2, 3}, Lexical{1, 2, 4}, Less},
		{"later elements ignored", Lexical{1, 3, 0}, Lexical{1, 2, 9}, Greater},
		{"equal", Lexical{1, 2}, Lexical{1, 2}, Equal},
		{"strict prefix is less", Lexical{1, 2}, Lexical{1, 2, 0}, Less},
		{"longer is greater", Lexical{1, 2, 0}, Lexical{1, 2}, Greater},
		{"empty vs empty", Lexical{}, Lexical{}, Equal},
		{"nan is incomparable", Lexical{1, math.NaN()}, Lexical{1, 2}, Incomparable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.Compare(tt.b))
		})
	}
}

func TestLexicalScalar(t *testing.T) {
	assert.Equal(t, 6.0, Lexical{1, 2, 3}.Scalar())
	assert.Equal(t, 0.0, Lexical{}.Scalar())
}

func TestLexicalClone(t *testing.T) {
	l := Lexical{1, 2}
	c := l.Clone()
	c[0] = 9

	assert.Equal(t, 1.0, l[0])
}
