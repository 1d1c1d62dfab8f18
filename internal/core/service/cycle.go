package service

import "go.uber.org/zap"

type CycleCommand int

const (
	CYCLE_COMMAND_OPEN CycleCommand = iota
	CYCLE_COMMAND_STOP_AFTER_OPEN
	CYCLE_COMMAND_CLOSE
	CYCLE_COMMAND_STOP_AFTER_CLOSE
)

func (c CycleCommand) String() string {
	switch c {
	case CYCLE_COMMAND_OPEN:
		return "open"
	case CYCLE_COMMAND_STOP_AFTER_OPEN, CYCLE_COMMAND_STOP_AFTER_CLOSE:
		return "stop"
	case CYCLE_COMMAND_CLOSE:
		return "close"
	}
	return "unknown"
}

// IsStop reports whether the command halts movement instead of starting it.
func (c CycleCommand) IsStop() bool {
	return c == CYCLE_COMMAND_STOP_AFTER_OPEN || c == CYCLE_COMMAND_STOP_AFTER_CLOSE
}

// CycleController turns repeated presses of a single button into the
// open, stop, close, stop sequence, wrapping after four presses.
type CycleController struct {
	next   CycleCommand
	Logger *zap.Logger
}

func NewCycleController(logger *zap.Logger) *CycleController {
	return &CycleController{
		next:   CYCLE_COMMAND_OPEN,
		Logger: logger,
	}
}

// Press returns the command for this press and advances the sequence.
func (c *CycleController) Press() CycleCommand {
	cmd := c.next
	c.next = (c.next + 1) % 4
	if c.Logger != nil {
		c.Logger.Debug("cycle: press", zap.String("command", cmd.String()))
	}
	return cmd
}

// Peek returns the command the next press would issue.
func (c *CycleController) Peek() CycleCommand {
	return c.next
}

// Reset rewinds the sequence to open.
func (c *CycleController) Reset() {
	c.next = CYCLE_COMMAND_OPEN
}
