package mqtt

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"time"

	"pergola2mqtt/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	MQTT_PAYLOAD_ONLINE  = "online"
	MQTT_PAYLOAD_OFFLINE = "offline"
	MQTT_PAYLOAD_ON      = "on"
	MQTT_PAYLOAD_OFF     = "off"
	MQTT_PAYLOAD_OPEN    = "OPEN"
	MQTT_PAYLOAD_CLOSE   = "CLOSE"
	MQTT_PAYLOAD_STOP    = "STOP"
	MQTT_PAYLOAD_PRESS   = "PRESS"
)

const (
	COMMAND_SWITCH         = "switch"
	COMMAND_COVER          = "cover"
	COMMAND_COVER_POSITION = "cover_position"
	COMMAND_COVER_TILT     = "cover_tilt"
	COMMAND_BUTTON         = "button"
)

func OptsFromConfig(cfg *config.Config) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTT.Host, cfg.MQTT.Port))
	opts.SetClientID(fmt.Sprintf("pergola_%d", rand.IntN(1000)))
	if cfg.MQTT.Username != "" && cfg.MQTT.Password != "" {
		opts.SetUsername(cfg.MQTT.Username)
		opts.SetPassword(cfg.MQTT.Password)
	}
	opts.WillEnabled = true
	opts.WillPayload = []byte(MQTT_PAYLOAD_OFFLINE)
	opts.WillRetained = true
	opts.WillTopic = bridgeStateTopic(cfg.MQTT.BaseTopic)
	opts.WillQos = 0

	return opts
}

func CreateMQTTClient(cfg *config.Config, opts *mqtt.ClientOptions, onConnectHandler func(client mqtt.Client),
	onConnectionLostHandler func(mqtt.Client, error)) *MQTTClient {
	if onConnectHandler != nil {
		opts.OnConnect = onConnectHandler
	}
	if onConnectionLostHandler != nil {
		opts.OnConnectionLost = onConnectionLostHandler
	}
	return &MQTTClient{
		client:                 mqtt.NewClient(opts),
		cfg:                    cfg.MQTT,
		switchCommandRegexp:    commandExtractor(cfg.MQTT.BaseTopic, "switch", "command"),
		coverCommandRegexp:     commandExtractor(cfg.MQTT.BaseTopic, "cover", "command"),
		coverSetPositionRegexp: commandExtractor(cfg.MQTT.BaseTopic, "cover", "set_position"),
		coverSetTiltRegexp:     commandExtractor(cfg.MQTT.BaseTopic, "cover", "set_tilt"),
		buttonPressRegexp:      commandExtractor(cfg.MQTT.BaseTopic, "button", "press"),
	}
}

type MQTTClient struct {
	client                 mqtt.Client
	cfg                    config.MQTTConfig
	switchCommandRegexp    *regexp.Regexp
	coverCommandRegexp     *regexp.Regexp
	coverSetPositionRegexp *regexp.Regexp
	coverSetTiltRegexp     *regexp.Regexp
	buttonPressRegexp      *regexp.Regexp
}

type ParsedMQTTCommand struct {
	DeviceId string
	Command  string
	Payload  string
}

func (c *MQTTClient) baseTopic() string {
	return c.cfg.BaseTopic
}

func (c *MQTTClient) haDiscoveryTopic() string {
	if c.cfg.HADiscoveryTopic != "" {
		return c.cfg.HADiscoveryTopic
	}
	return "homeassistant"
}

func (c *MQTTClient) BridgeStateTopic() string {
	return bridgeStateTopic(c.baseTopic())
}

func (c *MQTTClient) SensorStateTopic(sensorId string) string {
	return fmt.Sprintf("%s/sensor/%s/state", c.baseTopic(), sensorId)
}

func (c *MQTTClient) BinarySensorStateTopic(sensorId string) string {
	return fmt.Sprintf("%s/binary_sensor/%s/state", c.baseTopic(), sensorId)
}

func (c *MQTTClient) SwitchStateTopic(switchId string) string {
	return fmt.Sprintf("%s/switch/%s/state", c.baseTopic(), switchId)
}

func (c *MQTTClient) SwitchCommandTopic(switchId string) string {
	return fmt.Sprintf("%s/switch/%s/command", c.baseTopic(), switchId)
}

func (c *MQTTClient) CoverStateTopic(coverId string) string {
	return fmt.Sprintf("%s/cover/%s/state", c.baseTopic(), coverId)
}

func (c *MQTTClient) CoverPositionTopic(coverId string) string {
	return fmt.Sprintf("%s/cover/%s/position", c.baseTopic(), coverId)
}

func (c *MQTTClient) CoverTiltStateTopic(coverId string) string {
	return fmt.Sprintf("%s/cover/%s/tilt", c.baseTopic(), coverId)
}

func (c *MQTTClient) CoverCommandTopic(coverId string) string {
	return fmt.Sprintf("%s/cover/%s/command", c.baseTopic(), coverId)
}

func (c *MQTTClient) CoverSetPositionTopic(coverId string) string {
	return fmt.Sprintf("%s/cover/%s/set_position", c.baseTopic(), coverId)
}

func (c *MQTTClient) CoverSetTiltTopic(coverId string) string {
	return fmt.Sprintf("%s/cover/%s/set_tilt", c.baseTopic(), coverId)
}

func (c *MQTTClient) ButtonPressTopic(buttonId string) string {
	return fmt.Sprintf("%s/button/%s/press", c.baseTopic(), buttonId)
}

// ParseMQTTCommand matches an inbound message against every command topic
// shape and returns the first hit.
func (c *MQTTClient) ParseMQTTCommand(msg mqtt.Message) (*ParsedMQTTCommand, error) {
	topic := msg.Topic()
	payload := string(msg.Payload())

	if id, ok := matchTopic(c.coverSetPositionRegexp, topic); ok {
		if _, err := strconv.Atoi(payload); err != nil {
			return nil, err
		}
		return &ParsedMQTTCommand{DeviceId: id, Command: COMMAND_COVER_POSITION, Payload: payload}, nil
	}
	if id, ok := matchTopic(c.coverSetTiltRegexp, topic); ok {
		if _, err := strconv.Atoi(payload); err != nil {
			return nil, err
		}
		return &ParsedMQTTCommand{DeviceId: id, Command: COMMAND_COVER_TILT, Payload: payload}, nil
	}
	if id, ok := matchTopic(c.coverCommandRegexp, topic); ok {
		return &ParsedMQTTCommand{DeviceId: id, Command: COMMAND_COVER, Payload: payload}, nil
	}
	if id, ok := matchTopic(c.buttonPressRegexp, topic); ok {
		return &ParsedMQTTCommand{DeviceId: id, Command: COMMAND_BUTTON, Payload: payload}, nil
	}
	if id, ok := matchTopic(c.switchCommandRegexp, topic); ok {
		return &ParsedMQTTCommand{DeviceId: id, Command: COMMAND_SWITCH, Payload: payload}, nil
	}
	return nil, errors.New("invalid command")
}

func (c *MQTTClient) Publish(topic string, payload any, qos byte, retain bool, continuation func(error), timeout time.Duration) {
	token := c.client.Publish(topic, qos, retain, payload)
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT publish timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) Subscribe(topic string, qos byte, handler mqtt.MessageHandler, continuation func(error), timeout time.Duration) {
	token := c.client.Subscribe(topic, qos, handler)
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT subscribe timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) SubscribeToCommandTopic(handler mqtt.MessageHandler, continuation func(error), timeout time.Duration) {
	c.Subscribe(c.commandTopic(), 1, handler, continuation, timeout)
}

func (c *MQTTClient) Unsubscribe(topic string, continuation func(error), timeout time.Duration) {
	token := c.client.Unsubscribe(topic)
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT unsubscribe timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) Connect(continuation func(error), timeout time.Duration) {
	token := c.client.Connect()
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT connect timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) Disconnect(timeout time.Duration) {
	c.client.Disconnect(uint(timeout.Milliseconds()))
}

func (c *MQTTClient) commandTopic() string {
	return fmt.Sprintf("%s/#", c.baseTopic())
}

func commandExtractor(baseTopic, platform, action string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf("%s/%s/([a-zA-Z0-9_]+)/%s", baseTopic, platform, action))
}

func matchTopic(re *regexp.Regexp, topic string) (string, bool) {
	matches := re.FindAllStringSubmatch(topic, 1)
	if len(matches) == 0 || len(matches[0]) != 2 {
		return "", false
	}
	return matches[0][1], true
}

func bridgeStateTopic(baseTopic string) string {
	return fmt.Sprintf("%s/bridge/state", baseTopic)
}
