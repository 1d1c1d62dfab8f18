package actor

import (
	"fmt"

	"pergola2mqtt/internal/core/domain"
	"pergola2mqtt/internal/util/actorutil"
	"pergola2mqtt/pkg/skyeapi"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// StreamActor owns the device WebSocket. Status deltas are forwarded to the
// monitor actor; if the stream drops, the actor panics so the supervisor
// restarts it with backoff and a fresh connection.
type StreamActor struct {
	stream  *skyeapi.EventStream
	monitor *actor.PID
	logger  *zap.Logger
}

type streamClosed struct {
	err error
}

func NewStreamActor(stream *skyeapi.EventStream, monitor *actor.PID, logger *zap.Logger) *StreamActor {
	return &StreamActor{
		stream:  stream,
		monitor: monitor,
		logger:  actorutil.ActorLogger("stream", logger),
	}
}

func (state *StreamActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("stream started")
		self := ctx.Self()
		system := ctx.ActorSystem()
		go func() {
			err := state.stream.Listen(func(event skyeapi.StatusEvent) {
				system.Root.Send(self, domain.RoofStatusPush{Event: event})
			})
			system.Root.Send(self, streamClosed{err: err})
		}()
	case domain.RoofStatusPush:
		state.logger.Debug("stream event", zap.String("type", msg.Event.Type))
		ctx.Send(state.monitor, msg)
	case streamClosed:
		if msg.err != nil {
			state.logger.Error("stream closed with error", zap.Error(msg.err))
			panic(msg.err)
		}
		state.logger.Debug("stream closed")
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_STREAM,
			Healthy: true,
			State:   "listening",
		})
	case *actor.Stopping, *actor.Restarting:
		state.stream.Close()
	default:
		state.logger.Debug("stream default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}
