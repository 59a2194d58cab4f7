package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerStop(t *testing.T) {
	timer := NewTimer()
	time.Sleep(5 * time.Millisecond)
	elapsed := timer.Stop()

	assert.GreaterOrEqual(t, elapsed, 5*time.Millisecond)
	assert.Equal(t, elapsed, timer.Duration())
	assert.GreaterOrEqual(t, timer.Milliseconds(), int64(5))
}

func TestNamedTimerString(t *testing.T) {
	timer := NewNamedTimer("reinsert")
	timer.Stop()

	assert.Equal(t, "reinsert", timer.Name())
	assert.Contains(t, timer.String(), "reinsert:")
}

func TestUnnamedTimerString(t *testing.T) {
	timer := NewTimer()
	timer.Stop()

	assert.Empty(t, timer.Name())
	assert.NotEmpty(t, timer.String())
}
