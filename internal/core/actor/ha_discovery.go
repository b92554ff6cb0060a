package actor

import (
	"errors"
	"fmt"
	"time"

	"github.com/berfenger/embernews2mqtt/internal/config"
	"github.com/berfenger/embernews2mqtt/internal/core/domain"
	"github.com/berfenger/embernews2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

type HADiscoveryActor struct {
	config            *config.Config
	behavior          actor.Behavior
	stash             *actorutil.Stash
	stoveActor        *actor.PID
	mqttActor         *actor.PID
	stoveActorHealthy bool
	mqttActorHealthy  bool
	healthyRecv       int

	logger *zap.Logger
}

func NewHADiscoveryActor(config *config.Config, stoveActor *actor.PID, mqttActor *actor.PID, logger *zap.Logger) *HADiscoveryActor {
	act := &HADiscoveryActor{
		config:     config,
		stoveActor: stoveActor,
		mqttActor:  mqttActor,
		behavior:   actor.NewBehavior(),
		stash:      &actorutil.Stash{},
		logger:     actorutil.ActorLogger(domain.ACTOR_ID_HA_DISCOVERY, logger),
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

		// Check stove and MQTT actor healthy
		state.healthyRecv = 0
		state.stoveActorHealthy = false
		state.mqttActorHealthy = false
		// Stove Actor Request
		actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.stoveActor, domain.ActorHealthRequest{}, 2*time.Second), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_STOVE,
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
			case domain.ACTOR_ID_STOVE:
				state.stoveActorHealthy = true
			case domain.ACTOR_ID_MQTT:
				state.mqttActorHealthy = true
			}
		}
		if state.healthyRecv == 2 {

			if state.stoveActorHealthy && state.mqttActorHealthy {
				// Ask stove for identity info
				actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.stoveActor, domain.GetStoveInfoRequest{}, 15*time.Second), func(err error) any {
					return domain.GetStoveInfoResponse{
						ActorResponseMixIn: domain.ActorResponseMixIn{
							ResponseError: err,
						},
					}
				})
				state.behavior.Become(state.WaitingInfoReceive)
				state.stash.UnstashAll(ctx)
			} else {
				panic(errors.New("MQTT Actor or Stove Actor are not healthy"))
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
	case domain.GetStoveInfoResponse:
		if msg.HasResponseError() {
			panic(msg.GetResponseError())
		}
		state.logger.Debug("hadiscovery@info: GetStoveInfoResponse", zap.Any("response", msg))

		var sensors []domain.GenericSensor
		var switches []domain.GenericSwitch
		var inputNumbers []domain.GenericInputNumber

		bridgeDevice := domain.BridgeDevice(state.config.MQTT.BaseTopic)
		bridgeSensors := domain.BridgeSensors(bridgeDevice)
		sensors = append(sensors, bridgeSensors...)

		stoveDevice := domain.StoveDevice(msg.Info)
		stoveDevice.ViaDevice = bridgeDevice.Id
		stoveSensors := domain.StoveBaseSensors(stoveDevice)
		for i := range stoveSensors {
			if i > 0 {
				stoveSensors[i].Device = domain.IdDevice(stoveDevice)
			}
			sensors = append(sensors, stoveSensors[i])
		}

		switches = append(switches, domain.StoveSwitches(domain.IdDevice(stoveDevice))...)
		inputNumbers = append(inputNumbers, domain.StoveInputNumbers(domain.IdDevice(stoveDevice), state.config.PelletsConfig.MaxKg)...)

		ctx.Send(state.mqttActor, domain.PublishDiscoveryRequest{
			Sensors:      sensors,
			Switches:     switches,
			InputNumbers: inputNumbers,
		})

		// clear retained state published under ids from older releases
		for oldId, newId := range domain.CapabilityMigrations() {
			state.logger.Debug("hadiscovery@info: clearing legacy capability slot",
				zap.String("old", oldId), zap.String("new", newId))
			ctx.Send(state.mqttActor, domain.PublishMessageRequest{
				Topic:   fmt.Sprintf("%s/sensor/%s/state", state.config.MQTT.BaseTopic, oldId),
				Payload: "",
				Retain:  true,
			})
		}
		state.behavior.Become(state.Done)

	default:
		state.logger.Debug("hadiscovery@info: default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}
