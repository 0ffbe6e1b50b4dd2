package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunIDStable(t *testing.T) {
	first := RunID()
	assert.NotEmpty(t, first)
	assert.Equal(t, first, RunID())
}

func TestFallbackLoggerWrites(t *testing.T) {
	l := fallback("test", assert.AnError)
	assert.Empty(t, l.Path())
	assert.NotNil(t, l.Writer())

	// Must not panic without a backing file.
	l.Debugf("debug %d", 1)
	l.Infof("info")
	l.Warnf("warn")
	l.Errorf("error")
	assert.NoError(t, l.Close())
	assert.NoError(t, l.Close())
}
