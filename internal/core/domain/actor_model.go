package domain

import "pergola2mqtt/pkg/skyeapi"

const (
	ACTOR_ID_MASTER       = "master"
	ACTOR_ID_ROOF         = "roof"
	ACTOR_ID_STREAM       = "stream"
	ACTOR_ID_MONITOR      = "monitor"
	ACTOR_ID_MQTT         = "mqtt"
	ACTOR_ID_HA_DISCOVERY = "hadiscovery"
)

type GetDeviceInfoRequest struct {
	ActorRequestMixIn
}

type GetDeviceInfoResponse struct {
	ActorResponseMixIn
	Info *skyeapi.DeviceInfo
}

type GetRoofStatusRequest struct {
	ActorRequestMixIn
}

type GetRoofStatusResponse struct {
	ActorResponseMixIn
	Status *skyeapi.RoofStatus
}

type GetWeatherStateRequest struct {
	ActorRequestMixIn
}

type GetWeatherStateResponse struct {
	ActorResponseMixIn
	WeatherState string
}

// RoofStatusPush carries a WebSocket delta from the stream actor to the
// monitor actor.
type RoofStatusPush struct {
	Event skyeapi.StatusEvent
}

type PublishMessageRequest struct {
	ActorRequestMixIn
	Topic   string
	Payload string
	Retain  bool
}

type PublishMessageResponse struct {
	ActorResponseMixIn
}

type PublishSensorUpdateRequest struct {
	ActorRequestMixIn
	Retain bool
	Event  SensorUpdateEvent
}

type PublishSensorUpdateResponse struct {
	ActorResponseMixIn
}

type PublishDiscoveryRequest struct {
	ActorRequestMixIn
	Sensors  []GenericSensor
	Switches []GenericSwitch
	Covers   []GenericCover
	Buttons  []GenericButton
}

type PublishDiscoveryResponse struct {
	ActorResponseMixIn
}

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}
