package skyeapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRoofServer struct {
	mu     sync.Mutex
	server *httptest.Server
	status RoofStatus
	moves  []moveRequest
	locks  []string
}

func newMockRoofServer(t *testing.T) *mockRoofServer {
	t.Helper()

	m := &mockRoofServer{
		status: RoofStatus{
			State:     ROOF_STATE_READY,
			Locked:    false,
			Positions: RoofPositions{Stack: 40, Tilt: 25},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/authenticate", func(w http.ResponseWriter, r *http.Request) {
		var auth authRequest
		if err := json.NewDecoder(r.Body).Decode(&auth); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if auth.UserPwd != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(authResponse{Token: "jwt-token", UserRole: auth.UserName})
	})
	mux.HandleFunc("GET /api/v1/roof", m.authed(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		json.NewEncoder(w).Encode(m.status)
	}))
	mux.HandleFunc("GET /api/v1/skye2/comfort/weather/state", m.authed(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode("sunny")
	}))
	mux.HandleFunc("PUT /api/v1/skye2/roof/move", m.authed(func(w http.ResponseWriter, r *http.Request) {
		var move moveRequest
		if err := json.NewDecoder(r.Body).Decode(&move); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		m.mu.Lock()
		m.moves = append(m.moves, move)
		m.mu.Unlock()
	}))
	mux.HandleFunc("PUT /api/v1/skye2/roof/stop", m.authed(func(w http.ResponseWriter, r *http.Request) {
	}))
	mux.HandleFunc("PUT /api/v1/skye2/roof/lock", m.authed(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		m.mu.Lock()
		m.locks = append(m.locks, string(body))
		m.mu.Unlock()
	}))

	m.server = httptest.NewTLSServer(mux)
	t.Cleanup(m.server.Close)
	return m
}

func (m *mockRoofServer) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer jwt-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (m *mockRoofServer) clientConfig(t *testing.T, password string) ClientConfig {
	t.Helper()

	u, err := url.Parse(m.server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	return ClientConfig{
		Host:     u.Hostname(),
		Port:     uint(port),
		UserType: USER_TYPE_USER,
		Password: password,
	}
}

func (m *mockRoofServer) recordedMoves() []moveRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]moveRequest, len(m.moves))
	copy(out, m.moves)
	return out
}

func TestClientAuthenticate(t *testing.T) {

	assert := assert.New(t)

	srv := newMockRoofServer(t)
	client, err := CreateHTTPRoofClient(srv.clientConfig(t, "secret"))
	require.NoError(t, err)

	assert.NoError(client.Open())
	assert.Equal("jwt-token", client.Token())

	assert.NoError(client.Close())
	assert.Equal("", client.Token())
}

func TestClientAuthenticateBadPassword(t *testing.T) {

	assert := assert.New(t)

	srv := newMockRoofServer(t)
	client, err := CreateHTTPRoofClient(srv.clientConfig(t, "wrong"))
	require.NoError(t, err)

	err = client.Open()
	assert.ErrorIs(err, ErrAuthentication)
	assert.Equal("", client.Token())
}

func TestClientRequiresToken(t *testing.T) {

	assert := assert.New(t)

	srv := newMockRoofServer(t)
	client, err := CreateHTTPRoofClient(srv.clientConfig(t, "secret"))
	require.NoError(t, err)

	_, err = client.GetStatus()
	assert.ErrorIs(err, ErrNotAuthenticated)
	assert.ErrorIs(client.StopRoof(), ErrNotAuthenticated)
}

func TestClientGetStatus(t *testing.T) {

	assert := assert.New(t)

	srv := newMockRoofServer(t)
	client, err := CreateHTTPRoofClient(srv.clientConfig(t, "secret"))
	require.NoError(t, err)
	require.NoError(t, client.Open())

	status, err := client.GetStatus()
	require.NoError(t, err)
	assert.Equal(ROOF_STATE_READY, status.State)
	assert.Equal(40.0, status.Positions.Stack)
	assert.Equal(25.0, status.Positions.Tilt)
	assert.False(status.Locked)

	weather, err := client.GetWeatherState()
	require.NoError(t, err)
	assert.Equal("sunny", weather)
}

func TestClientMoveCommands(t *testing.T) {

	assert := assert.New(t)

	srv := newMockRoofServer(t)
	client, err := CreateHTTPRoofClient(srv.clientConfig(t, "secret"))
	require.NoError(t, err)
	require.NoError(t, client.Open())

	assert.NoError(client.SetPosition(60))
	assert.NoError(client.SetTilt(62.5))
	assert.NoError(client.SetPosition(140))
	assert.NoError(client.FullyOpenRoof())

	moves := srv.recordedMoves()
	require.Len(t, moves, 5)
	assert.Equal(moveRequest{Action: moveActionStack, Value: 60}, moves[0])
	assert.Equal(moveRequest{Action: moveActionTilt, Value: 62.5}, moves[1])
	assert.Equal(moveRequest{Action: moveActionStack, Value: 100}, moves[2], "out-of-range target is clamped")
	assert.Equal(moveRequest{Action: moveActionStack, Value: 100}, moves[3])
	assert.Equal(moveRequest{Action: moveActionTilt, Value: FullyOpenTiltDegrees}, moves[4])
}

func TestClientSetLockedPayload(t *testing.T) {

	assert := assert.New(t)

	srv := newMockRoofServer(t)
	client, err := CreateHTTPRoofClient(srv.clientConfig(t, "secret"))
	require.NoError(t, err)
	require.NoError(t, client.Open())

	assert.NoError(client.SetLocked(true))
	assert.NoError(client.SetLocked(false))

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Equal([]string{"true", "false"}, srv.locks)
}

func TestClientTokenConcurrentAccess(t *testing.T) {

	assert := assert.New(t)

	srv := newMockRoofServer(t)
	client, err := CreateHTTPRoofClient(srv.clientConfig(t, "secret"))
	require.NoError(t, err)

	// the stream goroutine reads the token while the roof actor cycles the
	// session; run both sides under the race detector
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				token := client.Token()
				assert.Contains([]string{"", "jwt-token"}, token)
			}
		}
	}()

	for i := 0; i < 50; i++ {
		require.NoError(t, client.Open())
		require.NoError(t, client.Close())
	}
	close(done)
	wg.Wait()

	assert.Equal("", client.Token())
}

func TestClientInvalidUserType(t *testing.T) {

	assert := assert.New(t)

	_, err := CreateHTTPRoofClient(ClientConfig{Host: "example", UserType: "intruder"})
	assert.Error(err)
}
