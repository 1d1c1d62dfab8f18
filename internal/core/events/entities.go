package events

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"pergola2mqtt/internal/core/domain"
	"pergola2mqtt/pkg/skyeapi"

	"github.com/carlmjohnson/versioninfo"
)

const (
	SENSOR_ID_BRIDGE_STATE  = "bridge"
	SENSOR_ID_ROOF_STATE    = "roof_state"
	SENSOR_ID_WEATHER_STATE = "weather_state"

	BINARY_SENSOR_ID_FULLY_CLOSED = "fully_closed"
	BINARY_SENSOR_ID_FULLY_OPENED = "fully_opened"
	BINARY_SENSOR_ID_MOVING       = "moving"

	COVER_ID_ROOF = "roof"

	SWITCH_ID_ROOF_LOCK = "roof_lock"

	BUTTON_ID_FULLY_OPEN  = "fully_open"
	BUTTON_ID_FULLY_CLOSE = "fully_close"
	BUTTON_ID_CYCLE       = "cycle"

	STATE_CLASS_MEASUREMENT   = "measurement"
	DEVICE_CLASS_CONNECTIVITY = "connectivity"
	DEVICE_CLASS_OPENING      = "opening"
	DEVICE_CLASS_MOVING       = "moving"
	DEVICE_CLASS_ENUM         = "enum"
	DEVICE_CLASS_AWNING       = "awning"
	DEVICE_CLASS_LOCK_SWITCH  = "switch"
	ENTITY_CLASS_DIAGNOSTIC   = "diagnostic"
	ENTITY_CLASS_CONFIG       = "config"
	SENSOR_TYPE_SENSOR        = "sensor"
	SENSOR_TYPE_BINARY        = "binary_sensor"
)

func BridgeDevice(baseTopic string) domain.Device {
	return domain.Device{
		Id:           fmt.Sprintf("pergola_bridge_%s", md5HashShort(baseTopic)),
		Manufacturer: "pergola2mqtt",
		Model:        "Pergola2MQTT",
		Version:      versioninfo.Short(),
		Name:         fmt.Sprintf("Pergola2MQTT %s", md5HashShort(baseTopic)),
	}
}

func RoofDevice(info *skyeapi.DeviceInfo) domain.Device {
	return domain.Device{
		Id:           fmt.Sprintf("per_roof_%s", md5HashShort(info.Serial)),
		Version:      info.Version,
		Manufacturer: info.Manufacturer,
		Model:        info.Model,
		Name:         fmt.Sprintf("%s %s %s", info.Manufacturer, info.Model, md5HashShort(info.Serial)),
	}
}

func IdDevice(device domain.Device) domain.Device {
	return domain.Device{
		Id:   device.Id,
		Name: device.Name,
	}
}

func BridgeSensors(bridgeDevice domain.Device) []domain.GenericSensor {
	return []domain.GenericSensor{
		{
			Device:         bridgeDevice,
			Id:             SENSOR_ID_BRIDGE_STATE,
			SensorType:     SENSOR_TYPE_BINARY,
			Name:           "Bridge state",
			DeviceClass:    DEVICE_CLASS_CONNECTIVITY,
			EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
			UniqueId:       uniqueId(bridgeDevice.Id, SENSOR_ID_BRIDGE_STATE),
		},
	}
}

func RoofCover(roofDevice domain.Device) domain.GenericCover {
	return domain.GenericCover{
		Device:       roofDevice,
		Id:           COVER_ID_ROOF,
		Name:         "Pergola roof",
		DeviceClass:  DEVICE_CLASS_AWNING,
		UniqueId:     uniqueId(roofDevice.Id, COVER_ID_ROOF),
		SupportsTilt: true,
	}
}

func RoofSensors(roofDevice domain.Device) []domain.GenericSensor {
	var sensors []domain.GenericSensor

	sensors = append(sensors, domain.GenericSensor{
		Device:         roofDevice,
		Id:             SENSOR_ID_ROOF_STATE,
		SensorType:     SENSOR_TYPE_SENSOR,
		Name:           "Roof state",
		DeviceClass:    DEVICE_CLASS_ENUM,
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(roofDevice.Id, SENSOR_ID_ROOF_STATE),
		Icon:           "mdi:state-machine",
	})
	sensors = append(sensors, domain.GenericSensor{
		Device:         roofDevice,
		Id:             SENSOR_ID_WEATHER_STATE,
		SensorType:     SENSOR_TYPE_SENSOR,
		Name:           "Weather state",
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(roofDevice.Id, SENSOR_ID_WEATHER_STATE),
		Icon:           "mdi:weather-partly-cloudy",
	})
	sensors = append(sensors, domain.GenericSensor{
		Device:      roofDevice,
		Id:          BINARY_SENSOR_ID_FULLY_CLOSED,
		SensorType:  SENSOR_TYPE_BINARY,
		Name:        "Fully closed",
		DeviceClass: DEVICE_CLASS_OPENING,
		UniqueId:    uniqueId(roofDevice.Id, BINARY_SENSOR_ID_FULLY_CLOSED),
	})
	sensors = append(sensors, domain.GenericSensor{
		Device:      roofDevice,
		Id:          BINARY_SENSOR_ID_FULLY_OPENED,
		SensorType:  SENSOR_TYPE_BINARY,
		Name:        "Fully opened",
		DeviceClass: DEVICE_CLASS_OPENING,
		UniqueId:    uniqueId(roofDevice.Id, BINARY_SENSOR_ID_FULLY_OPENED),
	})
	sensors = append(sensors, domain.GenericSensor{
		Device:      roofDevice,
		Id:          BINARY_SENSOR_ID_MOVING,
		SensorType:  SENSOR_TYPE_BINARY,
		Name:        "Moving",
		DeviceClass: DEVICE_CLASS_MOVING,
		UniqueId:    uniqueId(roofDevice.Id, BINARY_SENSOR_ID_MOVING),
	})

	return sensors
}

func RoofLockSwitch(roofDevice domain.Device) domain.GenericSwitch {
	return domain.GenericSwitch{
		Device:   roofDevice,
		Id:       SWITCH_ID_ROOF_LOCK,
		Name:     "Roof lock",
		UniqueId: uniqueId(roofDevice.Id, SWITCH_ID_ROOF_LOCK),
		Icon:     "mdi:lock",
	}
}

func RoofButtons(roofDevice domain.Device) []domain.GenericButton {
	return []domain.GenericButton{
		{
			Device:   roofDevice,
			Id:       BUTTON_ID_FULLY_OPEN,
			Name:     "Fully open",
			UniqueId: uniqueId(roofDevice.Id, BUTTON_ID_FULLY_OPEN),
			Icon:     "mdi:arrow-expand-horizontal",
		},
		{
			Device:   roofDevice,
			Id:       BUTTON_ID_FULLY_CLOSE,
			Name:     "Fully close",
			UniqueId: uniqueId(roofDevice.Id, BUTTON_ID_FULLY_CLOSE),
			Icon:     "mdi:arrow-collapse-horizontal",
		},
		{
			Device:   roofDevice,
			Id:       BUTTON_ID_CYCLE,
			Name:     "Cycle",
			UniqueId: uniqueId(roofDevice.Id, BUTTON_ID_CYCLE),
			Icon:     "mdi:rotate-right",
		},
	}
}

func uniqueId(deviceId, sensorId string) string {
	return fmt.Sprintf("%s_%s", deviceId, sensorId)
}

func md5HashShort(value string) string {
	hash := md5.Sum([]byte(value))
	return hex.EncodeToString(hash[:])[:8]
}
