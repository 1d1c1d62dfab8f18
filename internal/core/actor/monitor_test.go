package actor

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	adactor "pergola2mqtt/internal/adapter/actor"
	"pergola2mqtt/internal/core/domain"
	"pergola2mqtt/internal/util"
	"pergola2mqtt/pkg/skyeapi"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type eventRecorder struct {
	mu  sync.Mutex
	evs []any
}

func (r *eventRecorder) record(value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evs = append(r.evs, value)
}

func (r *eventRecorder) snapshot() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]any, len(r.evs))
	copy(out, r.evs)
	return out
}

func lastCoverPosition(evs []any) (int, bool) {
	value := 0
	found := false
	for _, ev := range evs {
		if cp, ok := ev.(domain.CoverPositionUpdateEvent); ok {
			value = cp.Value
			found = true
		}
	}
	return value, found
}

func lastCoverState(evs []any) (string, bool) {
	value := ""
	found := false
	for _, ev := range evs {
		if cs, ok := ev.(domain.CoverStateUpdateEvent); ok {
			value = cs.Value
			found = true
		}
	}
	return value, found
}

func lastTextSensor(evs []any, id string) (string, bool) {
	value := ""
	found := false
	for _, ev := range evs {
		if ts, ok := ev.(domain.TextSensorUpdateEvent); ok && ts.SensorId() == id {
			value = ts.Value
			found = true
		}
	}
	return value, found
}

func bridgeStates(evs []any) []bool {
	var out []bool
	for _, ev := range evs {
		if bs, ok := ev.(domain.BridgeStateUpdateEvent); ok {
			out = append(out, bs.Value)
		}
	}
	return out
}

func strPtr(s string) *string { return &s }

// flakyRoofActor stands in for the roof actor. While unhealthy every status
// and weather request fails as if the device were unreachable.
type flakyRoofActor struct {
	healthy atomic.Bool
}

func (a *flakyRoofActor) Receive(ctx actor.Context) {
	switch ctx.Message().(type) {
	case domain.GetRoofStatusRequest:
		if a.healthy.Load() {
			ctx.Respond(domain.GetRoofStatusResponse{
				Status: &skyeapi.RoofStatus{
					State:     skyeapi.ROOF_STATE_READY,
					Positions: skyeapi.RoofPositions{Stack: 40, Tilt: 25},
				},
			})
		} else {
			ctx.Respond(domain.GetRoofStatusResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: errors.New("device unreachable"),
				},
			})
		}
	case domain.GetWeatherStateRequest:
		if a.healthy.Load() {
			ctx.Respond(domain.GetWeatherStateResponse{WeatherState: "rain"})
		} else {
			ctx.Respond(domain.GetWeatherStateResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: errors.New("device unreachable"),
				},
			})
		}
	}
}

func TestMonitorMergesStreamDeltas(t *testing.T) {

	assert := assert.New(t)

	logger := zap.Must(zap.NewDevelopment())

	as := actor.NewActorSystem()
	context := as.Root

	cfg := util.LoadTestConfig()

	roofProps := actor.PropsFromProducer(func() actor.Actor {
		return adactor.NewRoofActor(skyeapi.CreateTestRoofClient(), logger)
	})
	roofPID := context.Spawn(roofProps)

	es := &eventstream.EventStream{}
	recorder := &eventRecorder{}
	sub := es.Subscribe(recorder.record)
	defer es.Unsubscribe(sub)

	monitorProps := actor.PropsFromProducer(func() actor.Actor {
		return NewMonitorActor(&cfg, roofPID, es, logger)
	})
	pid := context.Spawn(monitorProps)

	time.Sleep(1 * time.Second)

	// baseline from the first poll
	evs := recorder.snapshot()
	pos, ok := lastCoverPosition(evs)
	require.True(t, ok, "poll published a position")
	assert.Equal(40, pos)
	weather, ok := lastTextSensor(evs, "weather_state")
	require.True(t, ok)
	assert.Equal("sunny", weather)

	// a partial push merges over the last known status
	context.Send(pid, domain.RoofStatusPush{
		Event: skyeapi.StatusEventWith("ROOF_STATUS_CHANGED",
			strPtr(skyeapi.ROOF_STATE_MOVING), nil,
			&skyeapi.RoofPositions{Stack: 60, Tilt: 25}, nil),
	})
	time.Sleep(500 * time.Millisecond)

	evs = recorder.snapshot()
	pos, ok = lastCoverPosition(evs)
	require.True(t, ok)
	assert.Equal(60, pos)
	coverState, ok := lastCoverState(evs)
	require.True(t, ok)
	assert.Equal("opening", coverState, "moving with a higher stack than before")
	weather, ok = lastTextSensor(evs, "weather_state")
	require.True(t, ok)
	assert.Equal("sunny", weather, "fields absent from the delta keep the last value")

	context.Stop(pid)
	context.Stop(roofPID)
	as.Shutdown()
}

func TestMonitorDropsPushWithoutBaseline(t *testing.T) {

	assert := assert.New(t)

	logger := zap.Must(zap.NewDevelopment())

	as := actor.NewActorSystem()
	context := as.Root

	cfg := util.LoadTestConfig()

	flaky := &flakyRoofActor{}
	roofPID := context.Spawn(actor.PropsFromProducer(func() actor.Actor { return flaky }))

	es := &eventstream.EventStream{}
	recorder := &eventRecorder{}
	sub := es.Subscribe(recorder.record)
	defer es.Unsubscribe(sub)

	pid := context.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewMonitorActor(&cfg, roofPID, es, logger)
	}))

	// the first poll fails, so there is nothing to merge this over
	context.Send(pid, domain.RoofStatusPush{
		Event: skyeapi.StatusEventWith("ROOF_STATUS_CHANGED",
			strPtr(skyeapi.ROOF_STATE_MOVING), nil,
			&skyeapi.RoofPositions{Stack: 60, Tilt: 25}, nil),
	})
	time.Sleep(1 * time.Second)

	_, ok := lastCoverPosition(recorder.snapshot())
	assert.False(ok, "no entity updates without a baseline status")

	context.Stop(pid)
	context.Stop(roofPID)
	as.Shutdown()
}

func TestMonitorMarksBridgeOfflineAndRecovers(t *testing.T) {

	assert := assert.New(t)

	logger := zap.Must(zap.NewDevelopment())

	as := actor.NewActorSystem()
	context := as.Root

	cfg := util.LoadTestConfig()
	cfg.Pergola.PollIntervalMillis = 200

	flaky := &flakyRoofActor{}
	flaky.healthy.Store(true)
	roofPID := context.Spawn(actor.PropsFromProducer(func() actor.Actor { return flaky }))

	es := &eventstream.EventStream{}
	recorder := &eventRecorder{}
	sub := es.Subscribe(recorder.record)
	defer es.Unsubscribe(sub)

	pid := context.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewMonitorActor(&cfg, roofPID, es, logger)
	}))

	time.Sleep(500 * time.Millisecond)

	evs := recorder.snapshot()
	pos, ok := lastCoverPosition(evs)
	require.True(t, ok)
	assert.Equal(40, pos)
	weather, ok := lastTextSensor(evs, "weather_state")
	require.True(t, ok)
	assert.Equal("rain", weather, "weather merged from its own endpoint")
	assert.Empty(bridgeStates(evs), "no availability changes while polls succeed")

	// device goes dark: offline after several consecutive failed polls
	flaky.healthy.Store(false)
	time.Sleep(1 * time.Second)

	states := bridgeStates(recorder.snapshot())
	require.NotEmpty(t, states, "bridge reported offline")
	assert.Equal([]bool{false}, states, "offline exactly once")

	// device answers again: back online, weather carried across the gap
	flaky.healthy.Store(true)
	time.Sleep(600 * time.Millisecond)

	evs = recorder.snapshot()
	states = bridgeStates(evs)
	assert.Equal([]bool{false, true}, states)
	weather, ok = lastTextSensor(evs, "weather_state")
	require.True(t, ok)
	assert.Equal("rain", weather, "status payload has no weather field, last reading kept")

	context.Stop(pid)
	context.Stop(roofPID)
	as.Shutdown()
}
