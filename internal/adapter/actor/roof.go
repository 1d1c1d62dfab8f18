package actor

import (
	"fmt"
	"time"

	"pergola2mqtt/internal/core/domain"
	"pergola2mqtt/internal/util/actorutil"
	"pergola2mqtt/pkg/skyeapi"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/reugn/go-quartz/logger"
	"go.uber.org/zap"
)

type RoofActor struct {
	behavior actor.Behavior
	stash    *actorutil.Stash
	client   skyeapi.RoofClient
	logger   *zap.Logger
}

type backgroundTaskResult struct {
	message any
	replyTo *actor.PID
}

func NewRoofActor(client skyeapi.RoofClient, logger *zap.Logger) *RoofActor {
	act := &RoofActor{
		client:   client,
		behavior: actor.NewBehavior(),
		stash:    &actorutil.Stash{},
		logger:   actorutil.ActorLogger("roof", logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *RoofActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *RoofActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("roof@starting started")
		if err := state.client.Open(); err != nil {
			panic(err)
		}
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
		state.client.Close()
	default:
		state.logger.Debug("roof@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *RoofActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("roof@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_ROOF,
			Healthy: true,
			State:   "idle",
		})
	case domain.GetDeviceInfoRequest:
		state.logger.Debug("roof@default: GetDeviceInfoRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		runTask(state, ctx, sender, state.getDeviceInfo, func(err error) any {
			return domain.GetDeviceInfoResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: err,
				},
			}
		})
	case domain.GetRoofStatusRequest:
		state.logger.Debug("roof@default: GetRoofStatusRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		runTask(state, ctx, sender, state.getRoofStatus, func(err error) any {
			return domain.GetRoofStatusResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: err,
				},
			}
		})
	case domain.GetWeatherStateRequest:
		state.logger.Debug("roof@default: GetWeatherStateRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		runTask(state, ctx, sender, state.getWeatherState, func(err error) any {
			return domain.GetWeatherStateResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: err,
				},
			}
		})
	case domain.RoofCommandRequest:
		state.logger.Debug("roof@default: RoofCommandRequest", zap.String("command", msg.RoofCommand()))
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		runTask(state, ctx, sender, func() (*domain.RoofCommandDoneResponse, error) {
			return state.execCommand(msg)
		}, func(err error) any {
			return domain.RoofCommandDoneResponse{
				RoofCommandResponseMixIn: domain.RoofCommandResponseMixIn{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
			}
		})
	case *actor.Stopping:
		state.client.Close()
	default:
		state.logger.Debug("roof@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *RoofActor) WaitingRoof(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case backgroundTaskResult:
		state.logger.Debug("roof@waitingRoof backgroundTaskResult", zap.String("type", fmt.Sprintf("%T", msg.message)))
		ctx.Send(msg.replyTo, msg.message)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case *actor.Stopping:
		state.client.Close()
	default:
		state.logger.Debug("roof@waitingRoof stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

// runTask performs a blocking device call off the actor goroutine and parks
// the actor in WaitingRoof until the result arrives.
func runTask[T any](state *RoofActor, ctx actor.Context, sender *actor.PID, fn func() (*T, error), recoverFn func(error) any) {
	actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, fn),
		mapTaskResult[T](sender)).Recover(func(err error) backgroundTaskResult {
		return backgroundTaskResult{
			message: recoverFn(err),
			replyTo: sender,
		}
	}).WithTimeout(10 * time.Second).PipeTo(ctx.Self())
	state.behavior.BecomeStacked(state.WaitingRoof)
}

func (state *RoofActor) getDeviceInfo() (*domain.GetDeviceInfoResponse, error) {
	info, err := state.client.GetInfo()
	if err != nil {
		logger.Error(err)
		return nil, err
	}
	return &domain.GetDeviceInfoResponse{
		Info: info,
	}, nil
}

func (state *RoofActor) getRoofStatus() (*domain.GetRoofStatusResponse, error) {
	status, err := state.client.GetStatus()
	if err != nil {
		logger.Error(err)
		return nil, err
	}
	return &domain.GetRoofStatusResponse{
		Status: status,
	}, nil
}

func (state *RoofActor) getWeatherState() (*domain.GetWeatherStateResponse, error) {
	weather, err := state.client.GetWeatherState()
	if err != nil {
		logger.Error(err)
		return nil, err
	}
	return &domain.GetWeatherStateResponse{
		WeatherState: weather,
	}, nil
}

func (state *RoofActor) execCommand(cmd domain.RoofCommandRequest) (*domain.RoofCommandDoneResponse, error) {
	var err error
	switch c := cmd.(type) {
	case domain.RoofOpenRequest:
		err = state.client.OpenRoof()
	case domain.RoofCloseRequest:
		err = state.client.CloseRoof()
	case domain.RoofStopRequest:
		err = state.client.StopRoof()
	case domain.RoofSetPositionRequest:
		err = state.client.SetPosition(c.Position)
	case domain.RoofSetTiltRequest:
		err = state.client.SetTilt(skyeapi.TiltPercentToDegrees(c.TiltPercent))
	case domain.RoofSetLockRequest:
		err = state.client.SetLocked(c.Locked)
	case domain.RoofFullyOpenRequest:
		err = state.client.FullyOpenRoof()
	case domain.RoofFullyCloseRequest:
		err = state.client.FullyCloseRoof()
	default:
		err = fmt.Errorf("unsupported roof command %T", cmd)
	}
	if err != nil {
		logger.Error(err)
		return nil, err
	}
	return &domain.RoofCommandDoneResponse{}, nil
}

func mapTaskResult[T any](sender *actor.PID) func(t *T) *backgroundTaskResult {
	return func(t *T) *backgroundTaskResult {
		return &backgroundTaskResult{
			message: *t,
			replyTo: sender,
		}
	}
}
