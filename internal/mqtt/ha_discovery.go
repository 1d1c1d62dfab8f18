package mqtt

import (
	"fmt"

	"pergola2mqtt/internal/core/domain"
	"pergola2mqtt/internal/core/events"
)

type HADiscoveryConfig struct {
	Device            HADiscoveryDevice `json:"device"`
	StateTopic        string            `json:"state_topic,omitempty"`
	CommandTopic      string            `json:"command_topic,omitempty"`
	StateClass        string            `json:"state_class,omitempty"`
	DeviceClass       string            `json:"device_class,omitempty"`
	UnitOfMeasurement string            `json:"unit_of_measurement,omitempty"`
	AvTopic           string            `json:"availability_topic,omitempty"`
	EntityCategory    string            `json:"entity_category,omitempty"`
	Name              string            `json:"name"`
	UniqueId          string            `json:"unique_id"`
	Platform          string            `json:"platform"`
	EnabledByDefault  *bool             `json:"enabled_by_default,omitempty"`
	PayloadOn         string            `json:"payload_on,omitempty"`
	PayloadOff        string            `json:"payload_off,omitempty"`
	PayloadOpen       string            `json:"payload_open,omitempty"`
	PayloadClose      string            `json:"payload_close,omitempty"`
	PayloadStop       string            `json:"payload_stop,omitempty"`
	PayloadPress      string            `json:"payload_press,omitempty"`
	PositionTopic     string            `json:"position_topic,omitempty"`
	SetPositionTopic  string            `json:"set_position_topic,omitempty"`
	TiltStatusTopic   string            `json:"tilt_status_topic,omitempty"`
	TiltCommandTopic  string            `json:"tilt_command_topic,omitempty"`
	Icon              string            `json:"icon,omitempty"`
}

type HADiscoveryDevice struct {
	Id           []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Version      string   `json:"sw_version,omitempty"`
	Model        string   `json:"model,omitempty"`
	Name         string   `json:"name,omitempty"`
	ViaDevice    string   `json:"via_device,omitempty"`
}

func HADiscoverySensorTopic(client *MQTTClient, sensor domain.GenericSensor) string {
	return fmt.Sprintf("%s/%s/%s/%s/config", client.haDiscoveryTopic(), sensor.SensorType, sensor.Device.Id, sensor.Id)
}

func HADiscoverySwitchTopic(client *MQTTClient, sw domain.GenericSwitch) string {
	return fmt.Sprintf("%s/switch/%s/%s/config", client.haDiscoveryTopic(), sw.Device.Id, sw.Id)
}

func HADiscoveryCoverTopic(client *MQTTClient, cover domain.GenericCover) string {
	return fmt.Sprintf("%s/cover/%s/%s/config", client.haDiscoveryTopic(), cover.Device.Id, cover.Id)
}

func HADiscoveryButtonTopic(client *MQTTClient, button domain.GenericButton) string {
	return fmt.Sprintf("%s/button/%s/%s/config", client.haDiscoveryTopic(), button.Device.Id, button.Id)
}

func GenericSensorToHADiscoveryMessage(client *MQTTClient, sensor domain.GenericSensor) HADiscoveryConfig {
	dev := device(sensor.Device)
	var topic string
	switch {
	case sensor.Id == events.SENSOR_ID_BRIDGE_STATE:
		topic = client.BridgeStateTopic()
	case sensor.SensorType == events.SENSOR_TYPE_SENSOR:
		topic = client.SensorStateTopic(sensor.Id)
	case sensor.SensorType == events.SENSOR_TYPE_BINARY:
		topic = client.BinarySensorStateTopic(sensor.Id)
	}
	disConfig := HADiscoveryConfig{
		Device:            dev,
		StateTopic:        topic,
		StateClass:        sensor.StateClass,
		DeviceClass:       sensor.DeviceClass,
		UnitOfMeasurement: sensor.UnitOfMeasurement,
		AvTopic:           client.BridgeStateTopic(),
		EntityCategory:    sensor.EntityCategory,
		Name:              sensor.Name,
		UniqueId:          sensor.UniqueId,
		Icon:              sensor.Icon,
		EnabledByDefault:  sensor.EnabledByDefault,
		Platform:          "mqtt",
	}
	if sensor.Id == events.SENSOR_ID_BRIDGE_STATE {
		disConfig.PayloadOn = MQTT_PAYLOAD_ONLINE
		disConfig.PayloadOff = MQTT_PAYLOAD_OFFLINE
	} else if sensor.SensorType == events.SENSOR_TYPE_BINARY {
		disConfig.PayloadOn = MQTT_PAYLOAD_ON
		disConfig.PayloadOff = MQTT_PAYLOAD_OFF
	}
	return disConfig
}

func GenericSwitchToHADiscoveryMessage(client *MQTTClient, _switch domain.GenericSwitch) HADiscoveryConfig {
	dev := device(_switch.Device)
	topic := client.SwitchStateTopic(_switch.Id)
	cmdTopic := client.SwitchCommandTopic(_switch.Id)
	disConfig := HADiscoveryConfig{
		Device:       dev,
		StateTopic:   topic,
		CommandTopic: cmdTopic,
		AvTopic:      client.BridgeStateTopic(),
		Name:         _switch.Name,
		UniqueId:     _switch.UniqueId,
		Icon:         _switch.Icon,
		Platform:     "mqtt",
		PayloadOn:    MQTT_PAYLOAD_ON,
		PayloadOff:   MQTT_PAYLOAD_OFF,
	}
	return disConfig
}

func GenericCoverToHADiscoveryMessage(client *MQTTClient, cover domain.GenericCover) HADiscoveryConfig {
	dev := device(cover.Device)
	disConfig := HADiscoveryConfig{
		Device:           dev,
		StateTopic:       client.CoverStateTopic(cover.Id),
		CommandTopic:     client.CoverCommandTopic(cover.Id),
		PositionTopic:    client.CoverPositionTopic(cover.Id),
		SetPositionTopic: client.CoverSetPositionTopic(cover.Id),
		AvTopic:          client.BridgeStateTopic(),
		DeviceClass:      cover.DeviceClass,
		Name:             cover.Name,
		UniqueId:         cover.UniqueId,
		Icon:             cover.Icon,
		Platform:         "mqtt",
		PayloadOpen:      MQTT_PAYLOAD_OPEN,
		PayloadClose:     MQTT_PAYLOAD_CLOSE,
		PayloadStop:      MQTT_PAYLOAD_STOP,
	}
	if cover.SupportsTilt {
		disConfig.TiltStatusTopic = client.CoverTiltStateTopic(cover.Id)
		disConfig.TiltCommandTopic = client.CoverSetTiltTopic(cover.Id)
	}
	return disConfig
}

func GenericButtonToHADiscoveryMessage(client *MQTTClient, button domain.GenericButton) HADiscoveryConfig {
	dev := device(button.Device)
	disConfig := HADiscoveryConfig{
		Device:       dev,
		CommandTopic: client.ButtonPressTopic(button.Id),
		AvTopic:      client.BridgeStateTopic(),
		Name:         button.Name,
		UniqueId:     button.UniqueId,
		Icon:         button.Icon,
		Platform:     "mqtt",
		PayloadPress: MQTT_PAYLOAD_PRESS,
	}
	return disConfig
}

func device(d domain.Device) HADiscoveryDevice {
	return HADiscoveryDevice{
		Id:           []string{d.Id},
		Manufacturer: d.Manufacturer,
		Version:      d.Version,
		Model:        d.Model,
		Name:         d.Name,
		ViaDevice:    d.ViaDevice,
	}
}
