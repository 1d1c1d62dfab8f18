package skyeapi

import "sync"

func CreateTestRoofClient() *TestRoofClient {
	return &TestRoofClient{
		status: RoofStatus{
			State:        ROOF_STATE_READY,
			Locked:       false,
			Positions:    RoofPositions{Stack: 40, Tilt: 25},
			WeatherState: "sunny",
		},
	}
}

// TestRoofClient is an in-memory client with canned state for actor tests.
type TestRoofClient struct {
	mu       sync.Mutex
	status   RoofStatus
	Commands []string
	OpenErr  error
}

func (c *TestRoofClient) Open() error {
	return c.OpenErr
}

func (c *TestRoofClient) Close() error {
	return nil
}

func (c *TestRoofClient) Token() string {
	return "test-token"
}

func (c *TestRoofClient) GetInfo() (*DeviceInfo, error) {
	return &DeviceInfo{
		Manufacturer: "Renson",
		Model:        "Skye Pergola",
		Version:      "embedded",
		Serial:       "skye-test",
	}, nil
}

func (c *TestRoofClient) GetStatus() (*RoofStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	status := c.status
	return &status, nil
}

func (c *TestRoofClient) GetWeatherState() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status.WeatherState, nil
}

func (c *TestRoofClient) SetStatus(status RoofStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
}

func (c *TestRoofClient) record(cmd string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Commands = append(c.Commands, cmd)
}

func (c *TestRoofClient) RecordedCommands() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.Commands))
	copy(out, c.Commands)
	return out
}

func (c *TestRoofClient) OpenRoof() error {
	c.record("open")
	c.mu.Lock()
	c.status.Positions.Stack = 100
	c.mu.Unlock()
	return nil
}

func (c *TestRoofClient) CloseRoof() error {
	c.record("close")
	c.mu.Lock()
	c.status.Positions.Stack = 0
	c.mu.Unlock()
	return nil
}

func (c *TestRoofClient) StopRoof() error {
	c.record("stop")
	return nil
}

func (c *TestRoofClient) SetPosition(percent int) error {
	c.record("set_position")
	c.mu.Lock()
	c.status.Positions.Stack = clamp(float64(percent), 0, MaxStackPct)
	c.mu.Unlock()
	return nil
}

func (c *TestRoofClient) SetTilt(degrees float64) error {
	c.record("set_tilt")
	c.mu.Lock()
	c.status.Positions.Tilt = clamp(degrees, 0, MaxTiltDegrees)
	c.mu.Unlock()
	return nil
}

func (c *TestRoofClient) SetLocked(locked bool) error {
	c.record("set_locked")
	c.mu.Lock()
	c.status.Locked = locked
	c.mu.Unlock()
	return nil
}

func (c *TestRoofClient) FullyOpenRoof() error {
	c.record("fully_open")
	c.mu.Lock()
	c.status.Positions = RoofPositions{Stack: 100, Tilt: FullyOpenTiltDegrees}
	c.mu.Unlock()
	return nil
}

func (c *TestRoofClient) FullyCloseRoof() error {
	c.record("fully_close")
	c.mu.Lock()
	c.status.Positions = RoofPositions{}
	c.mu.Unlock()
	return nil
}

var _ RoofClient = (*TestRoofClient)(nil)

// StatusEventWith builds a push event carrying only the given fields, the
// way the device sends partial deltas over the event channel. Nil means
// absent. For actor tests.
func StatusEventWith(eventType string, state *string, locked *bool, positions *RoofPositions, weather *string) StatusEvent {
	return StatusEvent{
		Type: eventType,
		delta: statusDelta{
			State:        state,
			Locked:       locked,
			Positions:    positions,
			WeatherState: weather,
		},
	}
}
