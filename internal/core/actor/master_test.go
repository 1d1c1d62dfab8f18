package actor

import (
	"fmt"
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
	"go.uber.org/zap"
)

func TestMasterActor(t *testing.T) {

	as := actor.NewActorSystem()
	context := as.Root

	cfg := util.LoadTestConfig()
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	logger := zap.Must(logCfg.Build())

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMasterOfPuppetsActor(cfg, func() *adactor.RoofActor {
			return adactor.NewRoofActor(skyeapi.CreateTestRoofClient(), logger)
		}, func(es *eventstream.EventStream) *adactor.MQTTActor {
			return adactor.NewTestMQTTActor(&cfg, logger)
		}, nil, logger)
	})
	pid, err := context.SpawnNamed(props, "master")
	if err != nil {
		t.Error(err)
		return
	}

	time.Sleep(2 * time.Second)

	res, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		t.Error(err)
		//return
	}
	healthResp, ok := res.(domain.ActorHealthResponse)
	assert.True(t, ok)
	fmt.Printf("Health response: %+v\n", healthResp)
	assert.NotNil(t, healthResp)

	assert.True(t, healthResp.Healthy, "healthy is true")

	context.Stop(pid)

	as.Shutdown()
}

func TestMasterStartsStreamWhenRoofHealthy(t *testing.T) {

	as := actor.NewActorSystem()
	context := as.Root

	cfg := util.LoadTestConfig()
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	logger := zap.Must(logCfg.Build())

	var streamStarts atomic.Int32

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMasterOfPuppetsActor(cfg, func() *adactor.RoofActor {
			return adactor.NewRoofActor(skyeapi.CreateTestRoofClient(), logger)
		}, func(es *eventstream.EventStream) *adactor.MQTTActor {
			return adactor.NewTestMQTTActor(&cfg, logger)
		}, func(monitor *actor.PID) *adactor.StreamActor {
			assert.NotNil(t, monitor, "stream is wired to the monitor")
			streamStarts.Add(1)
			stream := skyeapi.CreateEventStream(skyeapi.ClientConfig{Host: "127.0.0.1", Port: 1},
				func() string { return "token" }, logger)
			return adactor.NewStreamActor(stream, monitor, logger)
		}, logger)
	})
	pid, err := context.SpawnNamed(props, "master")
	if err != nil {
		t.Error(err)
		return
	}

	time.Sleep(2 * time.Second)

	// the stream child spawns only after the roof actor reports healthy,
	// meaning the session token exists before the first Listen
	assert.GreaterOrEqual(t, streamStarts.Load(), int32(1), "stream spawned after roof health gate")

	res, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		t.Error(err)
	}
	healthResp, ok := res.(domain.ActorHealthResponse)
	assert.True(t, ok)
	assert.True(t, healthResp.Healthy, "healthy is true")

	context.Stop(pid)

	as.Shutdown()
}
