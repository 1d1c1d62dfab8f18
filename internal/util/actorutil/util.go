package actorutil

import (
	"log/slog"
	"strconv"
	"time"

	"pergola2mqtt/internal/core/domain"
	"pergola2mqtt/internal/core/events"
	"pergola2mqtt/internal/mqtt"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/lmittmann/tint"
	"go.uber.org/zap"
)

func PipeToSelfWithRecover(ctx actor.Context, future *actor.Future, mapFn func(error) any) {
	ctx.ReenterAfter(future, func(msg any, err error) {
		if err != nil {
			ctx.Send(ctx.Self(), mapFn(err))
			return
		}
		ctx.Send(ctx.Self(), msg)
	})
}

func NewActorSystemWithZapLogger(logger *zap.Logger) *actor.ActorSystem {
	stdOutLogger := zap.NewStdLog(logger)

	var slogLevel slog.Level = slog.LevelInfo

	switch logger.Level() {
	case zap.DebugLevel:
		slogLevel = slog.LevelDebug
	case zap.InfoLevel:
		slogLevel = slog.LevelInfo
	case zap.WarnLevel:
		slogLevel = slog.LevelWarn
	case zap.ErrorLevel:
		slogLevel = slog.LevelError
	case zap.PanicLevel:
		slogLevel = slog.LevelError
	}

	return actor.NewActorSystem(actor.WithLoggerFactory(func(system *actor.ActorSystem) *slog.Logger {

		// create a new logger
		return slog.New(tint.NewHandler(stdOutLogger.Writer(), &tint.Options{
			Level:      slogLevel,
			TimeFormat: time.DateTime,
		}))
	}))
}

func ActorLogger(actorName string, logger *zap.Logger) *zap.Logger {
	return logger.With(zap.String("actor", actorName))
}

func ParsedMQTTCommandToCommand(cmd mqtt.ParsedMQTTCommand) (domain.ActorRequest, error) {
	switch cmd.Command {
	case mqtt.COMMAND_SWITCH:
		if cmd.DeviceId == events.SWITCH_ID_ROOF_LOCK {
			return domain.RoofSetLockRequest{
				Locked: cmd.Payload == mqtt.MQTT_PAYLOAD_ON,
			}, nil
		}
	case mqtt.COMMAND_BUTTON:
		switch cmd.DeviceId {
		case events.BUTTON_ID_FULLY_OPEN:
			return domain.RoofFullyOpenRequest{}, nil
		case events.BUTTON_ID_FULLY_CLOSE:
			return domain.RoofFullyCloseRequest{}, nil
		case events.BUTTON_ID_CYCLE:
			return domain.RoofCyclePressRequest{}, nil
		}
	case mqtt.COMMAND_COVER:
		if cmd.DeviceId != events.COVER_ID_ROOF {
			return nil, nil
		}
		switch cmd.Payload {
		case mqtt.MQTT_PAYLOAD_OPEN:
			return domain.RoofOpenRequest{}, nil
		case mqtt.MQTT_PAYLOAD_CLOSE:
			return domain.RoofCloseRequest{}, nil
		case mqtt.MQTT_PAYLOAD_STOP:
			return domain.RoofStopRequest{}, nil
		}
	case mqtt.COMMAND_COVER_POSITION:
		if cmd.DeviceId != events.COVER_ID_ROOF {
			return nil, nil
		}
		value, err := strconv.ParseUint(cmd.Payload, 10, 8)
		if err != nil || value > 100 {
			return nil, err
		}
		return domain.RoofSetPositionRequest{
			Position: int(value),
		}, nil
	case mqtt.COMMAND_COVER_TILT:
		if cmd.DeviceId != events.COVER_ID_ROOF {
			return nil, nil
		}
		value, err := strconv.ParseUint(cmd.Payload, 10, 8)
		if err != nil || value > 100 {
			return nil, err
		}
		return domain.RoofSetTiltRequest{
			TiltPercent: int(value),
		}, nil
	}
	return nil, nil
}
