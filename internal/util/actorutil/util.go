package actorutil

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/berfenger/embernews2mqtt/internal/core/domain"
	"github.com/berfenger/embernews2mqtt/internal/mqtt"

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

// ParsedMQTTCommandToCommand maps an inbound MQTT command to a stove
// control request. Returns (nil, nil) for topics that are not commands.
func ParsedMQTTCommandToCommand(cmd mqtt.ParsedMQTTCommand) (domain.ActorRequest, error) {
	switch cmd.DeviceId {
	case domain.CAP_ONOFF:
		return domain.SetOnOffRequest{
			Enable: cmd.Payload == mqtt.MQTT_PAYLOAD_ON,
		}, nil
	case domain.CAP_WEEKLY_PROGRAM:
		return domain.SetWeeklyProgramRequest{
			Enable: cmd.Payload == mqtt.MQTT_PAYLOAD_ON,
		}, nil
	case domain.CAP_ECO_MODE:
		return domain.SetEcoModeRequest{
			Enable: cmd.Payload == mqtt.MQTT_PAYLOAD_ON,
		}, nil
	case domain.CAP_TARGET_TEMPERATURE:
		value, err := strconv.ParseFloat(cmd.Payload, 64)
		if err != nil {
			return nil, err
		}
		return domain.SetTargetTemperatureRequest{
			Celsius: value,
		}, nil
	case domain.CAP_PELLETS:
		value, err := strconv.ParseFloat(cmd.Payload, 64)
		if err != nil || value < 0 {
			return nil, err
		}
		return domain.SetPelletsRequest{
			Kg: value,
		}, nil
	}
	return nil, nil
}
