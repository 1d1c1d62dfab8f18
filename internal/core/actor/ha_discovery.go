package actor

import (
	"errors"
	"fmt"
	"time"

	"pergola2mqtt/internal/config"
	"pergola2mqtt/internal/core/domain"
	"pergola2mqtt/internal/core/events"
	"pergola2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

type HADiscoveryActor struct {
	config           *config.Config
	behavior         actor.Behavior
	stash            *actorutil.Stash
	roofActor        *actor.PID
	mqttActor        *actor.PID
	roofActorHealthy bool
	mqttActorHealthy bool
	healthyRecv      int

	logger *zap.Logger
}

func NewHADiscoveryActor(config *config.Config, roofActor *actor.PID, mqttActor *actor.PID, logger *zap.Logger) *HADiscoveryActor {
	act := &HADiscoveryActor{
		config:    config,
		roofActor: roofActor,
		mqttActor: mqttActor,
		behavior:  actor.NewBehavior(),
		stash:     &actorutil.Stash{},
		logger:    actorutil.ActorLogger(domain.ACTOR_ID_HA_DISCOVERY, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *HADiscoveryActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *HADiscoveryActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("hadiscovery@starting started")

		// Check roof and MQTT actor healthy
		state.healthyRecv = 0
		state.roofActorHealthy = false
		state.mqttActorHealthy = false
		// Roof Actor Request
		actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.roofActor, domain.ActorHealthRequest{}, 2*time.Second), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_ROOF,
				Healthy: false,
			}
		})
		// MQTT Actor Request
		actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.mqttActor, domain.ActorHealthRequest{}, 2*time.Second), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_MQTT,
				Healthy: false,
			}
		})
		state.behavior.Become(state.WaitingHealthyReceive)
	case *actor.Restarting:
	default:
		state.logger.Debug("hadiscovery@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *HADiscoveryActor) WaitingHealthyReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthResponse:
		state.logger.Debug("hadiscovery@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.healthyRecv++
		if msg.Healthy {
			switch msg.Id {
			case domain.ACTOR_ID_ROOF:
				state.roofActorHealthy = true
			case domain.ACTOR_ID_MQTT:
				state.mqttActorHealthy = true
			}
		}
		if state.healthyRecv == 2 {

			if state.roofActorHealthy && state.mqttActorHealthy {
				// Ask roof device info
				actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.roofActor, domain.GetDeviceInfoRequest{}, 2*time.Second), func(err error) any {
					return domain.GetDeviceInfoResponse{
						ActorResponseMixIn: domain.ActorResponseMixIn{
							ResponseError: err,
						},
					}
				})
				state.behavior.Become(state.WaitingInfoReceive)
				state.stash.UnstashAll(ctx)
			} else {
				panic(errors.New("MQTT Actor or Roof Actor are not healthy"))
			}
		}
	default:
		state.logger.Debug("hadiscovery@healthcheck: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *HADiscoveryActor) Done(ctx actor.Context) {

}

func (state *HADiscoveryActor) WaitingInfoReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.GetDeviceInfoResponse:
		if msg.HasResponseError() {
			panic(msg.GetResponseError())
		}
		state.logger.Debug("hadiscovery@info: GetDeviceInfoResponse", zap.Any("response", msg))

		var sensors []domain.GenericSensor
		var switches []domain.GenericSwitch
		var covers []domain.GenericCover
		var buttons []domain.GenericButton

		bridgeDevice := events.BridgeDevice(state.config.MQTT.BaseTopic)
		bridgeSensors := events.BridgeSensors(bridgeDevice)
		sensors = append(sensors, bridgeSensors...)

		roofDevice := events.RoofDevice(msg.Info)
		roofDevice.ViaDevice = bridgeDevice.Id
		covers = append(covers, events.RoofCover(roofDevice))

		roofSensors := events.RoofSensors(events.IdDevice(roofDevice))
		sensors = append(sensors, roofSensors...)

		switches = append(switches, events.RoofLockSwitch(events.IdDevice(roofDevice)))
		buttons = append(buttons, events.RoofButtons(events.IdDevice(roofDevice))...)

		ctx.Send(state.mqttActor, domain.PublishDiscoveryRequest{
			Sensors:  sensors,
			Switches: switches,
			Covers:   covers,
			Buttons:  buttons,
		})
		state.behavior.Become(state.Done)

	default:
		state.logger.Debug("hadiscovery@info: default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}
