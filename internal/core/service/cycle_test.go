package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestCycleSequenceWraps(t *testing.T) {

	assert := assert.New(t)

	cycle := NewCycleController(zap.NewNop())

	expected := []CycleCommand{
		CYCLE_COMMAND_OPEN,
		CYCLE_COMMAND_STOP_AFTER_OPEN,
		CYCLE_COMMAND_CLOSE,
		CYCLE_COMMAND_STOP_AFTER_CLOSE,
		// press five wraps around
		CYCLE_COMMAND_OPEN,
	}
	for i, want := range expected {
		assert.Equal(want, cycle.Press(), "press %d", i+1)
	}
}

func TestCyclePeekAndReset(t *testing.T) {

	assert := assert.New(t)

	cycle := NewCycleController(nil)

	assert.Equal(CYCLE_COMMAND_OPEN, cycle.Peek())
	cycle.Press()
	assert.Equal(CYCLE_COMMAND_STOP_AFTER_OPEN, cycle.Peek())
	cycle.Press()
	cycle.Reset()
	assert.Equal(CYCLE_COMMAND_OPEN, cycle.Peek())
}

func TestCycleCommandKind(t *testing.T) {

	assert := assert.New(t)

	assert.False(CYCLE_COMMAND_OPEN.IsStop())
	assert.False(CYCLE_COMMAND_CLOSE.IsStop())
	assert.True(CYCLE_COMMAND_STOP_AFTER_OPEN.IsStop())
	assert.True(CYCLE_COMMAND_STOP_AFTER_CLOSE.IsStop())

	assert.Equal("open", CYCLE_COMMAND_OPEN.String())
	assert.Equal("stop", CYCLE_COMMAND_STOP_AFTER_OPEN.String())
	assert.Equal("close", CYCLE_COMMAND_CLOSE.String())
	assert.Equal("stop", CYCLE_COMMAND_STOP_AFTER_CLOSE.String())
}
