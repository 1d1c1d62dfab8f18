package skyeapi

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

var (
	ErrAuthentication   = errors.New("skyeapi: authentication failed")
	ErrNotAuthenticated = errors.New("skyeapi: not authenticated, call Open first")
)

// RoofClient is the command/poll side of the device API. Push updates come
// through EventStream.
type RoofClient interface {
	Open() error
	Close() error
	GetInfo() (*DeviceInfo, error)
	GetStatus() (*RoofStatus, error)
	GetWeatherState() (string, error)
	OpenRoof() error
	CloseRoof() error
	StopRoof() error
	SetPosition(percent int) error
	SetTilt(degrees float64) error
	SetLocked(locked bool) error
	FullyOpenRoof() error
	FullyCloseRoof() error
	Token() string
}

type ClientConfig struct {
	Host      string
	Port      uint
	UserType  UserType
	Password  string
	VerifySSL bool
	Timeout   time.Duration
}

func (c ClientConfig) BaseURL() string {
	if c.Port == 0 || c.Port == 443 {
		return fmt.Sprintf("https://%s", c.Host)
	}
	return fmt.Sprintf("https://%s:%d", c.Host, c.Port)
}

// HTTPRoofClient talks to the device REST API. The token is shared between
// the roof actor (which opens and closes the session) and the stream actor's
// listen goroutine, so access to it is serialized.
type HTTPRoofClient struct {
	cfg  ClientConfig
	http *http.Client

	mu    sync.Mutex
	token string
}

func CreateHTTPRoofClient(cfg ClientConfig) (*HTTPRoofClient, error) {
	if cfg.Host == "" {
		return nil, errors.New("skyeapi: host is required")
	}
	if cfg.UserType == "" {
		cfg.UserType = USER_TYPE_USER
	}
	cfg.UserType = UserType(strings.ToLower(string(cfg.UserType)))
	if !cfg.UserType.Valid() {
		return nil, fmt.Errorf("skyeapi: invalid user type %q", cfg.UserType)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	transport := &http.Transport{
		// The device ships a self-signed certificate
		TLSClientConfig: &tls.Config{InsecureSkipVerify: !cfg.VerifySSL},
	}
	return &HTTPRoofClient{
		cfg: cfg,
		http: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
	}, nil
}

// Open authenticates against the device and stores the JWT bearer token.
func (c *HTTPRoofClient) Open() error {
	body, err := json.Marshal(authRequest{
		UserName: string(c.cfg.UserType),
		UserPwd:  c.cfg.Password,
	})
	if err != nil {
		return err
	}
	resp, err := c.http.Post(c.cfg.BaseURL()+"/api/v1/authenticate", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrAuthentication
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("skyeapi: authenticate returned status %d", resp.StatusCode)
	}
	var auth authResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return err
	}
	if auth.Token == "" {
		return fmt.Errorf("%w: no token in response", ErrAuthentication)
	}
	c.setToken(auth.Token)
	return nil
}

// Close logs out. The device may not implement the logout endpoint, so
// failures are swallowed and only the local token is dropped.
func (c *HTTPRoofClient) Close() error {
	token := c.Token()
	if token == "" {
		return nil
	}
	req, err := http.NewRequest(http.MethodPost, c.cfg.BaseURL()+"/api/v1/logout", nil)
	if err == nil {
		req.Header.Set("Authorization", "Bearer "+token)
		if resp, err := c.http.Do(req); err == nil {
			resp.Body.Close()
		}
	}
	c.setToken("")
	return nil
}

func (c *HTTPRoofClient) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *HTTPRoofClient) setToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// GetInfo describes the bridged device. The roof API has no info endpoint,
// so everything but the host is fixed.
func (c *HTTPRoofClient) GetInfo() (*DeviceInfo, error) {
	return &DeviceInfo{
		Manufacturer: "Renson",
		Model:        "Skye Pergola",
		Version:      "embedded",
		Serial:       c.cfg.Host,
	}, nil
}

func (c *HTTPRoofClient) GetStatus() (*RoofStatus, error) {
	var status RoofStatus
	if err := c.getJSON("/api/v1/roof", &status); err != nil {
		return nil, err
	}
	if status.State == "" {
		status.State = ROOF_STATE_UNKNOWN
	}
	status.Positions = ClampPositions(status.Positions)
	return &status, nil
}

// GetWeatherState returns the weather condition detected by the roof
// sensors. The endpoint answers either a bare JSON string or an object with
// a state key.
func (c *HTTPRoofClient) GetWeatherState() (string, error) {
	body, err := c.get("/api/v1/skye2/comfort/weather/state")
	if err != nil {
		return "", err
	}
	var asString string
	if err := json.Unmarshal(body, &asString); err == nil {
		return asString, nil
	}
	var asObject struct {
		State        string `json:"state"`
		WeatherState string `json:"weather_state"`
	}
	if err := json.Unmarshal(body, &asObject); err == nil {
		if asObject.State != "" {
			return asObject.State, nil
		}
		return asObject.WeatherState, nil
	}
	return strings.Trim(strings.TrimSpace(string(body)), `"`), nil
}

func (c *HTTPRoofClient) OpenRoof() error {
	return c.move(moveActionStack, 100)
}

func (c *HTTPRoofClient) CloseRoof() error {
	return c.move(moveActionStack, 0)
}

func (c *HTTPRoofClient) StopRoof() error {
	return c.putJSON("/api/v1/skye2/roof/stop", struct{}{})
}

func (c *HTTPRoofClient) SetPosition(percent int) error {
	return c.move(moveActionStack, clamp(float64(percent), 0, MaxStackPct))
}

func (c *HTTPRoofClient) SetTilt(degrees float64) error {
	return c.move(moveActionTilt, clamp(degrees, 0, MaxTiltDegrees))
}

// SetLocked toggles the roof lock. The device expects a plain text body.
func (c *HTTPRoofClient) SetLocked(locked bool) error {
	payload := "false"
	if locked {
		payload = "true"
	}
	return c.putRaw("/api/v1/skye2/roof/lock", "text/plain", []byte(payload))
}

func (c *HTTPRoofClient) FullyOpenRoof() error {
	if err := c.move(moveActionStack, MaxStackPct); err != nil {
		return err
	}
	return c.move(moveActionTilt, FullyOpenTiltDegrees)
}

func (c *HTTPRoofClient) FullyCloseRoof() error {
	if err := c.move(moveActionStack, 0); err != nil {
		return err
	}
	return c.move(moveActionTilt, 0)
}

func (c *HTTPRoofClient) move(action string, value float64) error {
	return c.putJSON("/api/v1/skye2/roof/move", moveRequest{Action: action, Value: value})
}

func (c *HTTPRoofClient) get(path string) ([]byte, error) {
	token := c.Token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	req, err := http.NewRequest(http.MethodGet, c.cfg.BaseURL()+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, path); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func (c *HTTPRoofClient) getJSON(path string, out any) error {
	body, err := c.get(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (c *HTTPRoofClient) putJSON(path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.putRaw(path, "application/json", body)
}

func (c *HTTPRoofClient) putRaw(path, contentType string, body []byte) error {
	token := c.Token()
	if token == "" {
		return ErrNotAuthenticated
	}
	req, err := http.NewRequest(http.MethodPut, c.cfg.BaseURL()+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", contentType)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp, path)
}

func checkStatus(resp *http.Response, path string) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrAuthentication
	case resp.StatusCode >= 400:
		return fmt.Errorf("skyeapi: %s returned status %d", path, resp.StatusCode)
	}
	return nil
}
