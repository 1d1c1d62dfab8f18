package skyeapi

import "encoding/json"

const (
	ROOF_STATE_READY   = "ready"
	ROOF_STATE_MOVING  = "moving"
	ROOF_STATE_HOMING  = "homing"
	ROOF_STATE_ERROR   = "error"
	ROOF_STATE_UNKNOWN = "unknown"
)

type RoofPositions struct {
	// Stack is the horizontal slide position in percent (0-100)
	Stack float64 `json:"stack"`
	// Tilt is the slat angle in device-native degrees (0-125)
	Tilt float64 `json:"tilt"`
}

type RoofStatus struct {
	State        string        `json:"state"`
	Locked       bool          `json:"locked"`
	Positions    RoofPositions `json:"current_roof_positions"`
	WeatherState string        `json:"weather_state,omitempty"`
}

func (s RoofStatus) Moving() bool {
	return s.State == ROOF_STATE_MOVING || s.State == ROOF_STATE_HOMING
}

type DeviceInfo struct {
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	Version      string `json:"sw_version"`
	Serial       string `json:"serial"`
}

type UserType string

const (
	USER_TYPE_USER         UserType = "user"
	USER_TYPE_PROFESSIONAL UserType = "professional"
	USER_TYPE_TECHNICIAN   UserType = "renson technician"
)

func (t UserType) Valid() bool {
	switch t {
	case USER_TYPE_USER, USER_TYPE_PROFESSIONAL, USER_TYPE_TECHNICIAN:
		return true
	}
	return false
}

// wire model

type authRequest struct {
	UserName string `json:"user_name"`
	UserPwd  string `json:"user_pwd"`
}

type authResponse struct {
	Token    string `json:"token"`
	UserRole string `json:"user_role"`
}

type moveRequest struct {
	Action string  `json:"action"`
	Value  float64 `json:"value"`
}

const (
	moveActionStack = "stack"
	moveActionTilt  = "tilt"
)

type wsFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type wsAuthenticateData struct {
	Bearer string `json:"bearer"`
}

type wsSubscribeData struct {
	Subscriptions []string `json:"subscriptions"`
}

// statusDelta is a partial RoofStatus carried by a *_STATUS_CHANGED event.
// Pointers distinguish "absent" from zero values so deltas can be merged
// over the last known status.
type statusDelta struct {
	State        *string        `json:"state"`
	Locked       *bool          `json:"locked"`
	Positions    *RoofPositions `json:"current_roof_positions"`
	WeatherState *string        `json:"weather_state"`
}

// StatusEvent is a decoded state-change push from the device.
type StatusEvent struct {
	Type  string
	delta statusDelta
}

// ApplyTo merges the event over prev and returns the merged status.
func (e StatusEvent) ApplyTo(prev RoofStatus) RoofStatus {
	next := prev
	if e.delta.State != nil {
		next.State = *e.delta.State
	}
	if e.delta.Locked != nil {
		next.Locked = *e.delta.Locked
	}
	if e.delta.Positions != nil {
		next.Positions = ClampPositions(*e.delta.Positions)
	}
	if e.delta.WeatherState != nil {
		next.WeatherState = *e.delta.WeatherState
	}
	return next
}
