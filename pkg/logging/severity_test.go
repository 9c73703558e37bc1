package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityNamesRoundTrip(t *testing.T) {
	for _, s := range []Severity{DEBUG, INFO, WARN, ERROR, FATAL} {
		assert.Equal(t, s, ParseSeverity(s.String()))
	}
}

func TestParseSeverityIgnoresCase(t *testing.T) {
	assert.Equal(t, DEBUG, ParseSeverity("debug"))
	assert.Equal(t, WARN, ParseSeverity(" Warn "))
	assert.Equal(t, FATAL, ParseSeverity("fatal"))
}

func TestParseSeverityFallsBackToInfo(t *testing.T) {
	assert.Equal(t, INFO, ParseSeverity(""))
	assert.Equal(t, INFO, ParseSeverity("verbose"))
}

func TestSeverityStringOutOfRange(t *testing.T) {
	assert.Equal(t, "INFO", Severity(42).String())
}
