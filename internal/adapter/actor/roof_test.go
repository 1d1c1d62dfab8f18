package actor

import (
	"testing"
	"time"

	"pergola2mqtt/internal/core/domain"
	"pergola2mqtt/internal/util/actorutil"
	"pergola2mqtt/pkg/skyeapi"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestGetDeviceInfoRoofActor(t *testing.T) {

	assert := assert.New(t)

	client := skyeapi.CreateTestRoofClient()

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)

	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor { return NewRoofActor(client, logger) })
	pid := context.Spawn(props)

	time.Sleep(1 * time.Second)

	msg := domain.GetDeviceInfoRequest{}
	result, err := context.RequestFuture(pid, msg, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.GetDeviceInfoResponse)

	assert.Equal(resp.Info.Manufacturer, "Renson", "Roof manufacturer")
	assert.Equal(resp.Info.Model, "Skye Pergola", "Roof model")

	context.Stop(pid)

	as.Shutdown()
}

func TestGetRoofStatusRoofActor(t *testing.T) {

	assert := assert.New(t)

	client := skyeapi.CreateTestRoofClient()

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor { return NewRoofActor(client, logger) })
	pid := context.Spawn(props)

	time.Sleep(1 * time.Second)

	msg := domain.GetRoofStatusRequest{}

	result, err := context.RequestFuture(pid, msg, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.GetRoofStatusResponse)

	assert.Equal(resp.Status.State, skyeapi.ROOF_STATE_READY, "Roof state")
	assert.Equal(resp.Status.Positions.Stack, 40.0, "Stack position")
	assert.Equal(resp.Status.Positions.Tilt, 25.0, "Tilt degrees")
	assert.False(resp.Status.Locked, "Lock state")

	context.Stop(pid)

	as.Shutdown()
}

func TestRoofCommandsRoofActor(t *testing.T) {

	assert := assert.New(t)

	client := skyeapi.CreateTestRoofClient()

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor { return NewRoofActor(client, logger) })
	pid := context.Spawn(props)

	time.Sleep(1 * time.Second)

	commands := []domain.RoofCommandRequest{
		domain.RoofSetLockRequest{Locked: true},
		domain.RoofSetPositionRequest{Position: 60},
		domain.RoofFullyOpenRequest{},
		domain.RoofStopRequest{},
		domain.RoofSetTiltRequest{TiltPercent: 50},
	}
	for _, cmd := range commands {
		result, err := context.RequestFuture(pid, cmd, 15*time.Second).Result()
		if err != nil {
			t.Error(err)
			return
		}
		resp := result.(domain.RoofCommandDoneResponse)
		assert.False(resp.HasResponseError(), "command %s", cmd.RoofCommand())
	}

	assert.Equal([]string{"set_locked", "set_position", "fully_open", "stop", "set_tilt"},
		client.RecordedCommands(), "recorded device calls")

	// tilt percent is mapped to device degrees
	status, err := client.GetStatus()
	if err != nil {
		t.Error(err)
		return
	}
	assert.Equal(status.Positions.Tilt, skyeapi.TiltPercentToDegrees(50), "tilt degrees after set")

	context.Stop(pid)

	as.Shutdown()
}
