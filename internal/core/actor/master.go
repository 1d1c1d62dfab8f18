package actor

import (
	"errors"
	"fmt"
	"log"
	"time"

	adactor "pergola2mqtt/internal/adapter/actor"
	"pergola2mqtt/internal/config"
	"pergola2mqtt/internal/core/domain"
	. "pergola2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

type MQTTActorProvider func(*eventstream.EventStream) *adactor.MQTTActor

type RoofActorProvider func() *adactor.RoofActor

type StreamActorProvider func(monitor *actor.PID) *adactor.StreamActor

type MasterOfPuppetsActor struct {
	config   config.Config
	behavior actor.Behavior
	stash    *Stash

	currentHealthCheck  healthCheckResult
	eventStream         *eventstream.EventStream
	roofActor           *actor.PID
	mqttActor           *actor.PID
	monitorActor        *actor.PID
	streamActor         *actor.PID
	roofActorProvider   RoofActorProvider
	mqttActorProvider   MQTTActorProvider
	streamActorProvider StreamActorProvider
	logger              *zap.Logger
}

type healthCheckResult struct {
	roofActorHealthy    bool
	mqttActorHealthy    bool
	monitorActorHealthy bool
	checksReceived      int
	respondTo           *actor.PID
}

type streamStartGate struct {
	healthy bool
}

func NewMasterOfPuppetsActor(config config.Config, roofActorProvider RoofActorProvider, mqttActorProvider MQTTActorProvider,
	streamActorProvider StreamActorProvider, logger *zap.Logger) *MasterOfPuppetsActor {
	act := &MasterOfPuppetsActor{
		config:              config,
		behavior:            actor.NewBehavior(),
		stash:               &Stash{},
		logger:              ActorLogger(domain.ACTOR_ID_MASTER, logger),
		eventStream:         &eventstream.EventStream{},
		roofActorProvider:   roofActorProvider,
		mqttActorProvider:   mqttActorProvider,
		streamActorProvider: streamActorProvider,
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MasterOfPuppetsActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MasterOfPuppetsActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("master@starting started")

		state.currentHealthCheck = healthCheckResult{}
		state.currentHealthCheck.reset()

		// start roof child
		roofActorPID, err := state.startRoofActor(ctx)
		if err != nil {
			panic(err)
		}
		state.roofActor = roofActorPID

		// start MQTT child
		mqttActorPID, err := state.startMQTTActor(ctx)
		if err != nil {
			panic(err)
		}
		state.mqttActor = mqttActorPID

		// start monitor child
		monitorActorPID, err := state.startMonitorActor(ctx)
		if err != nil {
			panic(err)
		}
		state.monitorActor = monitorActorPID

		// the stream child reuses the roof session token, so its spawn
		// waits until the roof actor has authenticated and reports healthy
		if state.streamActorProvider != nil {
			state.requestStreamStart(ctx)
		}

		// start HA Discovery
		if state.config.MQTT.HADiscoveryEnable {
			_, err := state.startHADiscoveryActor(ctx)
			if err != nil {
				panic(err)
			}
		}

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("master@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterOfPuppetsActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("master@default ActorHealthRequest")
		state.currentHealthCheck.reset()
		state.currentHealthCheck.respondTo = ctx.Sender()
		// Roof Actor Request
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.roofActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_ROOF,
				Healthy: false,
			}
		})
		// MQTT Actor Request
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.mqttActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_MQTT,
				Healthy: false,
			}
		})
		// Monitor Actor Request
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.monitorActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_MONITOR,
				Healthy: false,
			}
		})

		ctx.SetReceiveTimeout(1 * time.Second)

		state.behavior.BecomeStacked(state.HealthCheckReceive)
	case adactor.ParsedCommand:
		// redirect parsedCommand to actor
		state.logger.Debug("master@default parsedCommand", zap.Any("command", msg.Command))
		if msg.Command != nil {
			cmd, err := ParsedMQTTCommandToCommand(*msg.Command)
			if err == nil && cmd != nil {
				switch pcmd := cmd.(type) {
				case domain.RoofCyclePressRequest:
					ctx.Send(state.monitorActor, pcmd)
				case domain.RoofCommandRequest:
					ctx.Send(state.roofActor, pcmd)
				}
			}
		}
	case streamStartGate:
		if state.streamActor != nil {
			return
		}
		if !msg.healthy {
			state.logger.Warn("master@default roof not healthy yet, stream start delayed")
			state.requestStreamStart(ctx)
			return
		}
		streamActorPID, err := state.startStreamActor(ctx)
		if err != nil {
			panic(err)
		}
		state.streamActor = streamActorPID
	case *actor.Terminated:
		// if some actor fails on boot, terminate
		if msg.Who.Id == fmt.Sprintf("%s/%s", domain.ACTOR_ID_MASTER, domain.ACTOR_ID_ROOF) {
			state.logger.Error("master@default roof error")
			panic(errors.New("roof terminated"))
		}
	default:
		state.logger.Debug("master@default stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterOfPuppetsActor) HealthCheckReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.ReceiveTimeout:
		// if some actor does not respond to healthCheck, assume not healthy
		state.currentHealthCheck.respond(ctx)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthResponse:
		state.logger.Debug("master@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.currentHealthCheck.checksReceived++
		if msg.Healthy {
			if msg.Id == domain.ACTOR_ID_ROOF {
				state.currentHealthCheck.roofActorHealthy = true
			} else if msg.Id == domain.ACTOR_ID_MQTT {
				state.currentHealthCheck.mqttActorHealthy = true
			} else if msg.Id == domain.ACTOR_ID_MONITOR {
				state.currentHealthCheck.monitorActorHealthy = true
			}
		}
		if state.currentHealthCheck.allReceived() {

			state.currentHealthCheck.respond(ctx)

			state.behavior.UnbecomeStacked()
			state.stash.UnstashAll(ctx)
		} else {
			ctx.SetReceiveTimeout(1 * time.Second)
		}
	default:
		state.logger.Debug("master@healthcheck stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterOfPuppetsActor) startRoofActor(ctx actor.Context) (*actor.PID, error) {

	supervisor := actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second)

	roofProps := actor.PropsFromProducer(func() actor.Actor {
		return state.roofActorProvider()
	}, actor.WithSupervisor(supervisor))
	roofActorPID, err := ctx.SpawnNamed(roofProps, domain.ACTOR_ID_ROOF)
	if err != nil {
		return nil, err
	}

	return roofActorPID, nil
}

func (state *MasterOfPuppetsActor) startMonitorActor(ctx actor.Context) (*actor.PID, error) {

	decider := func(reason interface{}) actor.Directive {
		log.Printf("handling failure for child. reason: %v", reason)
		return actor.RestartDirective
	}
	supervisor := actor.NewOneForOneStrategy(1, 10*time.Second, decider)

	monitorProps := actor.PropsFromProducer(func() actor.Actor {
		return NewMonitorActor(&state.config, state.roofActor, state.eventStream, state.logger)
	}, actor.WithSupervisor(supervisor))
	monitorActorPID, err := ctx.SpawnNamed(monitorProps, domain.ACTOR_ID_MONITOR)
	if err != nil {
		return nil, err
	}

	return monitorActorPID, nil
}

// requestStreamStart probes the roof actor and re-enters with the result.
// The roof actor stashes the health request until its session is open, so a
// missing reply only means it is still connecting; the future timeout paces
// the retries.
func (state *MasterOfPuppetsActor) requestStreamStart(ctx actor.Context) {
	future := ctx.RequestFuture(state.roofActor, domain.ActorHealthRequest{}, 30*time.Second)
	ctx.ReenterAfter(future, func(res any, err error) {
		healthy := false
		if hr, ok := res.(domain.ActorHealthResponse); err == nil && ok {
			healthy = hr.Healthy
		}
		ctx.Send(ctx.Self(), streamStartGate{healthy: healthy})
	})
}

func (state *MasterOfPuppetsActor) startStreamActor(ctx actor.Context) (*actor.PID, error) {

	supervisor := actor.NewExponentialBackoffStrategy(1*time.Minute, 2*time.Second)

	streamProps := actor.PropsFromProducer(func() actor.Actor {
		return state.streamActorProvider(state.monitorActor)
	}, actor.WithSupervisor(supervisor))
	streamActorPID, err := ctx.SpawnNamed(streamProps, domain.ACTOR_ID_STREAM)
	if err != nil {
		return nil, err
	}

	return streamActorPID, nil
}

func (state *MasterOfPuppetsActor) startHADiscoveryActor(ctx actor.Context) (*actor.PID, error) {

	decider := func(reason interface{}) actor.Directive {
		log.Printf("handling failure for child. reason: %v", reason)
		return actor.RestartDirective
	}
	supervisor := actor.NewOneForOneStrategy(1, 10*time.Second, decider)

	haDiscProps := actor.PropsFromProducer(func() actor.Actor {
		return NewHADiscoveryActor(&state.config, state.roofActor, state.mqttActor, state.logger)
	}, actor.WithSupervisor(supervisor))
	haDiscPID, err := ctx.SpawnNamed(haDiscProps, domain.ACTOR_ID_HA_DISCOVERY)
	if err != nil {
		return nil, err
	}

	return haDiscPID, nil
}

func (state *MasterOfPuppetsActor) startMQTTActor(ctx actor.Context) (*actor.PID, error) {

	supervisor := actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second)

	mqttProps := actor.PropsFromProducer(func() actor.Actor {
		return state.mqttActorProvider(state.eventStream)
	}, actor.WithSupervisor(supervisor))
	mqttActorPID, err := ctx.SpawnNamed(mqttProps, domain.ACTOR_ID_MQTT)
	if err != nil {
		return nil, err
	}

	return mqttActorPID, nil
}

func (state *healthCheckResult) reset() {
	state.roofActorHealthy = false
	state.mqttActorHealthy = false
	state.monitorActorHealthy = false
	state.checksReceived = 0
}

func (state *healthCheckResult) allReceived() bool {
	return state.checksReceived == 3
}

func (state *healthCheckResult) allHealthy() bool {
	return state.roofActorHealthy && state.mqttActorHealthy && state.monitorActorHealthy
}

func (state *healthCheckResult) respond(ctx actor.Context) {
	resp := domain.ActorHealthResponse{
		Id:      domain.ACTOR_ID_MASTER,
		Healthy: state.allHealthy(),
	}
	if state.respondTo != nil {
		ctx.Send(state.respondTo, resp)
	}
}
