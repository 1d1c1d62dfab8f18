package domain

import "fmt"

type SensorUpdateEventMixIn struct {
	Id string
}

type SensorUpdateEvent interface {
	SensorUpdateEvent() string
	SensorId() string
}

func (e SensorUpdateEventMixIn) SensorUpdateEvent() string {
	return fmt.Sprintf("%T", e)
}

func (e SensorUpdateEventMixIn) SensorId() string {
	return e.Id
}

type FloatSensorUpdateEvent struct {
	SensorUpdateEventMixIn
	Value    float64
	Decimals uint
}

type BinarySensorUpdateEvent struct {
	SensorUpdateEventMixIn
	Value bool
}

type SwitchSensorUpdateEvent struct {
	SensorUpdateEventMixIn
	Value bool
}

type TextSensorUpdateEvent struct {
	SensorUpdateEventMixIn
	Value string
}

type BridgeStateUpdateEvent struct {
	SensorUpdateEventMixIn
	Value bool
}

// CoverStateUpdateEvent publishes the cover movement state
// (open/opening/closing/closed/stopped).
type CoverStateUpdateEvent struct {
	SensorUpdateEventMixIn
	Value string
}

// CoverPositionUpdateEvent publishes the slide position in percent.
type CoverPositionUpdateEvent struct {
	SensorUpdateEventMixIn
	Value int
}

// CoverTiltUpdateEvent publishes the exposed tilt in percent.
type CoverTiltUpdateEvent struct {
	SensorUpdateEventMixIn
	Value int
}
