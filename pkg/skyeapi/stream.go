package skyeapi

import (
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const wsPingInterval = 25 * time.Second

var wsSubscriptions = []string{
	"ROOF_STATUS_CHANGED",
	"SKYE2_STATUS_CHANGED",
	"ROOF_SELF_TEST_STATUS_CHANGED",
	"DIGITAL_INPUT_STATUS_CHANGED",
	"SYSTEM_STATUS_CHANGED",
}

// Protocol frames that carry no state
var wsProtocolTypes = map[string]bool{
	"Authenticated":        true,
	"SubscriptionsUpdated": true,
	"Ping":                 true,
	"Pong":                 true,
}

// EventStream holds the single push channel to the device. Listen blocks
// until the connection drops; reconnecting is the caller's job (the stream
// actor restarts under a backoff supervisor).
type EventStream struct {
	cfg    ClientConfig
	token  func() string
	logger *zap.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	writeMu sync.Mutex
	done    chan struct{}
}

func CreateEventStream(cfg ClientConfig, token func() string, logger *zap.Logger) *EventStream {
	return &EventStream{
		cfg:    cfg,
		token:  token,
		logger: logger,
	}
}

func (s *EventStream) url() string {
	base := strings.Replace(s.cfg.BaseURL(), "https://", "wss://", 1)
	return base + "/api/v1/ws/events"
}

// Listen connects, authenticates, subscribes and dispatches decoded status
// events to callback until the connection fails or Close is called.
func (s *EventStream) Listen(callback func(StatusEvent)) error {
	token := s.token()
	if token == "" {
		return ErrNotAuthenticated
	}

	dialer := websocket.Dialer{
		TLSClientConfig:  &tls.Config{InsecureSkipVerify: !s.cfg.VerifySSL},
		HandshakeTimeout: 10 * time.Second,
	}
	conn, _, err := dialer.Dial(s.url(), nil)
	if err != nil {
		return fmt.Errorf("skyeapi: websocket dial: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()
	defer s.teardown()

	if err := s.writeFrame("Authenticate", wsAuthenticateData{Bearer: token}); err != nil {
		return err
	}
	if err := s.writeFrame("Subscribe", wsSubscribeData{Subscriptions: wsSubscriptions}); err != nil {
		return err
	}

	go s.pingLoop(done)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-done:
				// closed on purpose
				return nil
			default:
			}
			return fmt.Errorf("skyeapi: websocket read: %w", err)
		}
		if event, ok := decodeEventFrame(raw, s.logger); ok {
			callback(event)
		}
	}
}

func (s *EventStream) Close() error {
	s.teardown()
	return nil
}

func (s *EventStream) teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		select {
		case <-s.done:
		default:
			close(s.done)
		}
	}
	if s.conn != nil {
		s.writeMu.Lock()
		_ = s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.writeMu.Unlock()
		s.conn.Close()
		s.conn = nil
	}
}

func (s *EventStream) pingLoop(done chan struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := s.writeFrame("Ping", struct{}{}); err != nil {
				return
			}
		}
	}
}

func (s *EventStream) writeFrame(frameType string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return errors.New("skyeapi: websocket not connected")
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return conn.WriteJSON(wsFrame{Type: frameType, Data: raw})
}

func decodeEventFrame(raw []byte, logger *zap.Logger) (StatusEvent, bool) {
	var frame wsFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		logger.Debug("stream: non-JSON frame", zap.ByteString("raw", truncate(raw, 200)))
		return StatusEvent{}, false
	}
	if wsProtocolTypes[frame.Type] {
		return StatusEvent{}, false
	}
	if !isSubscribedEvent(frame.Type) {
		logger.Debug("stream: unknown frame type", zap.String("type", frame.Type))
		return StatusEvent{}, false
	}
	var delta statusDelta
	if err := json.Unmarshal(frame.Data, &delta); err != nil {
		logger.Debug("stream: undecodable event data", zap.String("type", frame.Type), zap.Error(err))
		return StatusEvent{}, false
	}
	return StatusEvent{Type: frame.Type, delta: delta}, true
}

func isSubscribedEvent(frameType string) bool {
	for _, s := range wsSubscriptions {
		if s == frameType {
			return true
		}
	}
	return false
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
