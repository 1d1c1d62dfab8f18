package events

import (
	"pergola2mqtt/internal/core/domain"
	"pergola2mqtt/pkg/skyeapi"
)

const (
	COVER_STATE_OPEN    = "open"
	COVER_STATE_CLOSED  = "closed"
	COVER_STATE_OPENING = "opening"
	COVER_STATE_CLOSING = "closing"
	COVER_STATE_STOPPED = "stopped"
)

// RoofStatusToUpdateEvents translates a decoded device status into the
// entity update events published over MQTT. prev is used to derive the
// cover movement direction; pass nil when no earlier status is known.
func RoofStatusToUpdateEvents(status *skyeapi.RoofStatus, prev *skyeapi.RoofStatus) []any {
	var events []any

	events = append(events, domain.CoverStateUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{
			Id: COVER_ID_ROOF,
		},
		Value: coverState(status, prev),
	})
	events = append(events, domain.CoverPositionUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{
			Id: COVER_ID_ROOF,
		},
		Value: int(status.Positions.Stack),
	})
	events = append(events, domain.CoverTiltUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{
			Id: COVER_ID_ROOF,
		},
		Value: skyeapi.TiltDegreesToPercent(status.Positions.Tilt),
	})

	events = append(events, domain.TextSensorUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{
			Id: SENSOR_ID_ROOF_STATE,
		},
		Value: status.State,
	})
	if status.WeatherState != "" {
		events = append(events, domain.TextSensorUpdateEvent{
			SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{
				Id: SENSOR_ID_WEATHER_STATE,
			},
			Value: status.WeatherState,
		})
	}

	events = append(events, domain.BinarySensorUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{
			Id: BINARY_SENSOR_ID_FULLY_CLOSED,
		},
		Value: skyeapi.IsFullyClosed(status.Positions),
	})
	events = append(events, domain.BinarySensorUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{
			Id: BINARY_SENSOR_ID_FULLY_OPENED,
		},
		Value: skyeapi.IsFullyOpen(status.Positions),
	})
	events = append(events, domain.BinarySensorUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{
			Id: BINARY_SENSOR_ID_MOVING,
		},
		Value: status.Moving(),
	})

	events = append(events, domain.SwitchSensorUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{
			Id: SWITCH_ID_ROOF_LOCK,
		},
		Value: status.Locked,
	})

	return events
}

func coverState(status *skyeapi.RoofStatus, prev *skyeapi.RoofStatus) string {
	if status.Moving() {
		if prev != nil && status.Positions.Stack < prev.Positions.Stack {
			return COVER_STATE_CLOSING
		}
		return COVER_STATE_OPENING
	}
	if skyeapi.IsFullyClosed(status.Positions) {
		return COVER_STATE_CLOSED
	}
	if status.State == skyeapi.ROOF_STATE_READY {
		return COVER_STATE_OPEN
	}
	return COVER_STATE_STOPPED
}

func BridgeStateUpdateEvent(online bool) any {
	return domain.BridgeStateUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{
			Id: SENSOR_ID_BRIDGE_STATE,
		},
		Value: online,
	}
}
