package actor

import (
	"fmt"
	"time"

	"github.com/berfenger/embernews2mqtt/internal/core/domain"
	"github.com/berfenger/embernews2mqtt/internal/util/actorutil"
	"github.com/berfenger/embernews2mqtt/pkg/pellet_stove"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/reugn/go-quartz/logger"
	"go.uber.org/zap"
)

const (
	stoveRequestTimeout = 10 * time.Second
)

type StoveActor struct {
	behavior actor.Behavior
	stash    *actorutil.Stash
	stove    pellet_stove.StoveReader
	logger   *zap.Logger
}

type backgroundTaskResult struct {
	message any
	replyTo *actor.PID
}

func NewStoveActor(stove pellet_stove.StoveReader, logger *zap.Logger) *StoveActor {
	act := &StoveActor{
		stove:    stove,
		behavior: actor.NewBehavior(),
		stash:    &actorutil.Stash{},
		logger:   actorutil.ActorLogger(domain.ACTOR_ID_STOVE, logger),
	}
	act.behavior.Become(act.DefaultReceive)
	return act
}

func (state *StoveActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *StoveActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("stove@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_STOVE,
			Healthy: true,
			State:   "idle",
		})
	case domain.GetStoveStatusRequest:
		state.logger.Debug("stove@default: GetStoveStatusRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)

		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, state.getStatus),
			mapTaskResult[domain.GetStoveStatusResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetStoveStatusResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(stoveRequestTimeout).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingStove)
	case domain.GetStoveInfoRequest:
		state.logger.Debug("stove@default: GetStoveInfoRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)

		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, state.getInfo),
			mapTaskResult[domain.GetStoveInfoResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetStoveInfoResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(stoveRequestTimeout).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingStove)
	case domain.SendStoveCommandRequest:
		state.logger.Debug("stove@default: SendStoveCommandRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)

		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, func() (*domain.SendStoveCommandResponse, error) {
			return state.sendCommand(msg.Payload)
		}),
			mapTaskResult[domain.SendStoveCommandResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.SendStoveCommandResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(stoveRequestTimeout).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingStove)
	default:
		state.logger.Debug("stove@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *StoveActor) WaitingStove(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case backgroundTaskResult:
		state.logger.Debug("stove@WaitingStove backgroundTaskResult", zap.String("type", fmt.Sprintf("%T", msg.message)))
		ctx.Send(msg.replyTo, msg.message)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("stove@WaitingStove stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (a *StoveActor) getStatus() (*domain.GetStoveStatusResponse, error) {
	status, err := a.stove.FetchStatus()
	if err != nil {
		logger.Error(err)
		return nil, err
	}
	return &domain.GetStoveStatusResponse{
		Status:    status,
		Flattened: pellet_stove.Flatten(status),
	}, nil
}

func (a *StoveActor) getInfo() (*domain.GetStoveInfoResponse, error) {
	status, err := a.stove.FetchStatus()
	if err != nil {
		logger.Error(err)
		return nil, err
	}
	info := pellet_stove.InfoFromStatus(status)
	return &domain.GetStoveInfoResponse{
		Info: &info,
	}, nil
}

func (a *StoveActor) sendCommand(payload map[string]any) (*domain.SendStoveCommandResponse, error) {
	err := a.stove.SendCommand(payload)
	if err != nil {
		logger.Error(err)
		return nil, err
	}
	return &domain.SendStoveCommandResponse{}, nil
}

func mapTaskResult[T any](sender *actor.PID) func(t *T) *backgroundTaskResult {
	return func(t *T) *backgroundTaskResult {
		return &backgroundTaskResult{
			message: *t,
			replyTo: sender,
		}
	}
}
