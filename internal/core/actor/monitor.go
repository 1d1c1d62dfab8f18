package actor

import (
	"fmt"
	"time"

	"pergola2mqtt/internal/config"
	"pergola2mqtt/internal/core/domain"
	"pergola2mqtt/internal/core/events"
	"pergola2mqtt/internal/core/service"
	. "pergola2mqtt/internal/util/actorutil"
	"pergola2mqtt/pkg/skyeapi"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

// Consecutive failed polls before the bridge is reported offline. One miss
// can be a blip; the stream actor usually still covers the gap.
const offlineAfterPollFailures = 3

// MonitorActor keeps the last known roof status. It polls the device over
// REST, merges WebSocket deltas pushed by the stream actor and publishes
// entity updates on the event bus. It also runs the cycle button sequence.
type MonitorActor struct {
	behavior  actor.Behavior
	stash     *Stash
	scheduler *scheduler.TimerScheduler

	roofActor           *actor.PID
	config              *config.Config
	eventStream         *eventstream.EventStream
	cycle               *service.CycleController
	lastStatus          *skyeapi.RoofStatus
	currentWeatherCount uint
	weatherCount        uint
	pollFailures        uint

	logger *zap.Logger
}

type monitorTick struct {
}

func NewMonitorActor(config *config.Config, roofActor *actor.PID, eventStream *eventstream.EventStream, logger *zap.Logger) *MonitorActor {
	act := &MonitorActor{
		config:              config,
		roofActor:           roofActor,
		behavior:            actor.NewBehavior(),
		stash:               &Stash{},
		logger:              ActorLogger(domain.ACTOR_ID_MONITOR, logger),
		eventStream:         eventStream,
		cycle:               service.NewCycleController(logger),
		currentWeatherCount: 2,
		weatherCount:        2,
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MonitorActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MonitorActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("monitor@starting started")

		if state.config.Pergola.PollIntervalMillis > 0 {
			state.scheduler = scheduler.NewTimerScheduler(ctx)
		}
		ctx.Send(ctx.Self(), monitorTick{})

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
	default:
		state.logger.Debug("monitor@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MonitorActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("monitor@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MONITOR,
			Healthy: true,
			State:   "idle",
		})
	case monitorTick:
		state.logger.Debug("monitor@default tick")
		// get roof status
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.roofActor, domain.GetRoofStatusRequest{}, 11*time.Second), func(err error) any {
			return domain.GetRoofStatusResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: err,
				},
			}
		})
		// get weather state every few ticks
		if state.currentWeatherCount == state.weatherCount {
			state.currentWeatherCount = 0
			PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.roofActor, domain.GetWeatherStateRequest{}, 11*time.Second), func(err error) any {
				return domain.GetWeatherStateResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				}
			})
		} else {
			state.currentWeatherCount++
		}

		// schedule next tick
		if state.scheduler != nil {
			state.scheduler.RequestOnce(time.Duration(state.config.Pergola.PollIntervalMillis)*time.Millisecond, ctx.Self(), monitorTick{})
		}
		state.behavior.BecomeStacked(state.WaitingStatusReceive)
	case domain.RoofStatusPush:
		state.logger.Debug("monitor@default RoofStatusPush", zap.String("type", msg.Event.Type))
		if state.lastStatus == nil {
			// no baseline to merge over yet, wait for the next poll
			return
		}
		merged := msg.Event.ApplyTo(*state.lastStatus)
		state.publishStatus(&merged)
	case domain.GetWeatherStateResponse:
		state.logger.Debug("monitor@default GetWeatherStateResponse")
		if !msg.HasResponseError() && state.lastStatus != nil {
			merged := *state.lastStatus
			merged.WeatherState = msg.WeatherState
			state.publishStatus(&merged)
		}
	case domain.RoofCyclePressRequest:
		command := state.cycle.Press()
		state.logger.Debug("monitor@default RoofCyclePressRequest", zap.String("command", command.String()))
		ctx.Send(state.roofActor, state.cycleToRoofCommand(command))
	default:
		state.logger.Debug("monitor@default: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MonitorActor) WaitingStatusReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.GetRoofStatusResponse:
		if msg.HasResponseError() {
			state.logger.Error("monitor@waiting GetRoofStatusResponse error", zap.Error(msg.GetResponseError()))
			state.pollFailures++
			if state.pollFailures == offlineAfterPollFailures {
				state.logger.Warn("monitor@waiting device unreachable, marking bridge offline")
				state.eventStream.Publish(events.BridgeStateUpdateEvent(false))
			}
			state.behavior.UnbecomeStacked()
			state.stash.UnstashAll(ctx)
			return
		}
		state.logger.Debug("monitor@waiting GetRoofStatusResponse")
		if state.pollFailures >= offlineAfterPollFailures {
			state.logger.Info("monitor@waiting device reachable again, marking bridge online")
			state.eventStream.Publish(events.BridgeStateUpdateEvent(true))
		}
		state.pollFailures = 0
		if msg.Status != nil {
			status := *msg.Status
			if state.lastStatus != nil && status.WeatherState == "" {
				status.WeatherState = state.lastStatus.WeatherState
			}
			state.publishStatus(&status)
		}
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("monitor@waiting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MonitorActor) publishStatus(status *skyeapi.RoofStatus) {
	evs := events.RoofStatusToUpdateEvents(status, state.lastStatus)
	for _, ev := range evs {
		state.eventStream.Publish(ev)
	}
	last := *status
	state.lastStatus = &last
}

func (state *MonitorActor) cycleToRoofCommand(command service.CycleCommand) domain.RoofCommandRequest {
	switch command {
	case service.CYCLE_COMMAND_OPEN:
		return domain.RoofFullyOpenRequest{}
	case service.CYCLE_COMMAND_CLOSE:
		return domain.RoofFullyCloseRequest{}
	default:
		return domain.RoofStopRequest{}
	}
}
