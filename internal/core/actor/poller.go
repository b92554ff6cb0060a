package actor

import (
	"fmt"
	"time"

	"github.com/berfenger/embernews2mqtt/internal/config"
	"github.com/berfenger/embernews2mqtt/internal/core/domain"
	"github.com/berfenger/embernews2mqtt/internal/core/events"
	"github.com/berfenger/embernews2mqtt/internal/core/port"
	"github.com/berfenger/embernews2mqtt/internal/core/service"
	. "github.com/berfenger/embernews2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

const (
	statusRequestTimeout  = 15 * time.Second
	commandRequestTimeout = 15 * time.Second

	maxTargetTemperature = 40.0
)

// PollerActor runs the reconciliation loop: a single repeating timer
// drives status polls, and every observation funnels through one pass
// that updates faults, pellets and capability state. Commands are
// serialized through the same actor, so no pass and no command ever
// overlap.
type PollerActor struct {
	behavior  actor.Behavior
	stash     *Stash
	scheduler *scheduler.TimerScheduler

	config      *config.Config
	stoveActor  *actor.PID
	eventStream *eventstream.EventStream
	store       port.StateStore

	estimator *service.PelletEstimator
	faults    *service.FaultTracker
	diff      *service.CapabilityDiff

	echo       *service.CommandEcho
	echoFields map[string]bool
	echoWindow time.Duration

	pollInterval time.Duration
	passInFlight bool
	deviceOnline bool
	failedPolls  uint
	lastStatus   map[string]any

	pendingCommand *pendingCommand

	logger *zap.Logger
}

type pollTick struct {
}

// pendingCommand tracks one in-flight write to the stove: where to
// reply, and how to wrap the outcome in the right response type.
type pendingCommand struct {
	payload map[string]any
	replyTo *actor.PID
	respond func(error) any
}

func NewPollerActor(config *config.Config, stoveActor *actor.PID, eventStream *eventstream.EventStream,
	store port.StateStore, logger *zap.Logger) *PollerActor {
	echoWindow := service.DefaultEchoWindow
	if config.MonitorConfig.CommandEchoWindowMillis > 0 {
		echoWindow = time.Duration(config.MonitorConfig.CommandEchoWindowMillis) * time.Millisecond
	}
	act := &PollerActor{
		config:       config,
		stoveActor:   stoveActor,
		behavior:     actor.NewBehavior(),
		stash:        &Stash{},
		eventStream:  eventStream,
		store:        store,
		faults:       service.NewFaultTracker(logger),
		diff:         service.NewCapabilityDiff(),
		echoWindow:   echoWindow,
		pollInterval: time.Duration(config.MonitorConfig.PollIntervalMillis) * time.Millisecond,
		logger:       ActorLogger(domain.ACTOR_ID_POLLER, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *PollerActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *PollerActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("poller@starting started")

		state.scheduler = scheduler.NewTimerScheduler(ctx)
		state.restorePelletState()

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)

		// first pass right away, then on the timer
		ctx.Send(ctx.Self(), pollTick{})
	case *actor.Restarting:
	default:
		state.logger.Debug("poller@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *PollerActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("poller@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_POLLER,
			Healthy: true,
			State:   "idle",
		})
	case pollTick:
		state.logger.Debug("poller@default tick")
		// schedule the next tick first: a failed pass never delays or
		// backs off the cadence
		state.scheduler.RequestOnce(state.pollInterval, ctx.Self(), pollTick{})
		if state.passInFlight {
			// previous pass still running, drop this tick
			state.logger.Debug("poller@default tick dropped, pass in flight")
			return
		}
		state.requestStatus(ctx)
	case domain.GetStoveStatusResponse:
		state.passInFlight = false
		if msg.HasResponseError() {
			state.handlePollFailure(msg.GetResponseError())
			return
		}
		state.handlePollSuccess(msg.Flattened)
	case domain.StoveControlRequest:
		state.handleControlRequest(ctx, msg)
	default:
		state.logger.Debug("poller@default: recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

// AwaitCommandReceive waits for the stove to acknowledge one write.
// Everything else, ticks included, is stashed until then.
func (state *PollerActor) AwaitCommandReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.SendStoveCommandResponse:
		pending := state.pendingCommand
		state.pendingCommand = nil
		state.behavior.UnbecomeStacked()

		if pending == nil {
			state.stash.UnstashAll(ctx)
			return
		}
		if msg.HasResponseError() {
			state.logger.Error("poller@awaitCommand: command failed", zap.Error(msg.GetResponseError()))
			ctx.Send(pending.replyTo, pending.respond(msg.GetResponseError()))
			state.stash.UnstashAll(ctx)
			return
		}
		state.logger.Debug("poller@awaitCommand: command accepted", zap.Any("payload", pending.payload))
		ctx.Send(pending.replyTo, pending.respond(nil))

		// hold the payload for read-back confirmation and trigger an
		// immediate verification pass
		state.echo = service.NewCommandEcho(pending.payload, time.Now(), state.echoWindow)
		state.echoFields = make(map[string]bool, len(pending.payload))
		for field := range pending.payload {
			state.echoFields[field] = true
		}
		state.stash.UnstashAll(ctx)
		if !state.passInFlight {
			state.requestStatus(ctx)
		}
	default:
		state.logger.Debug("poller@awaitCommand: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *PollerActor) requestStatus(ctx actor.Context) {
	state.passInFlight = true
	PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.stoveActor, domain.GetStoveStatusRequest{}, statusRequestTimeout), func(err error) any {
		return domain.GetStoveStatusResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{
				ResponseError: err,
			},
		}
	})
}

func (state *PollerActor) handlePollFailure(err error) {
	state.failedPolls++
	state.logger.Warn("poller: status poll failed", zap.Error(err), zap.Uint("failed_polls", state.failedPolls))
	if state.deviceOnline {
		state.deviceOnline = false
		state.eventStream.Publish(events.DeviceAvailabilityEvent(false))
	}
}

func (state *PollerActor) handlePollSuccess(flat map[string]any) {
	state.failedPolls = 0
	if !state.deviceOnline {
		state.deviceOnline = true
		state.eventStream.Publish(events.DeviceAvailabilityEvent(true))
	}
	state.lastStatus = flat

	state.checkCommandEcho(flat)
	state.reconcileFaults(flat)
	state.reconcilePellets(flat)
	state.publishCapabilityUpdates(flat)
}

func (state *PollerActor) checkCommandEcho(flat map[string]any) {
	if state.echo == nil {
		return
	}
	outcome, done := state.echo.Check(flat, time.Now())
	if !done {
		return
	}
	if outcome.Confirmed {
		state.logger.Debug("poller: command read-back confirmed")
	} else {
		// diagnostic only: the stove accepted the write, it just never
		// showed up in a poll within the window
		state.logger.Warn("poller: command read-back not confirmed",
			zap.Strings("fields", outcome.Mismatched))
	}
	state.echo = nil
	state.echoFields = nil
}

func (state *PollerActor) reconcileFaults(flat map[string]any) {
	effects := state.faults.Reconcile(flat)

	if effects.ForcePelletsEmpty {
		// hopper ran dry: inventory is zero no matter what the counter
		// says, and auto-reset waits until the fault clears
		if state.estimator.ForceEmpty() {
			state.publishPellets()
			state.persistPelletState()
		}
	}
	if effects.ReleaseHold {
		state.estimator.ReleaseHold()
	}

	switch {
	case effects.Entered:
		for _, ev := range events.FaultUpdateEvents(true, effects.Message) {
			state.eventStream.Publish(ev)
		}
		state.eventStream.Publish(domain.ErrorOccurredTrigger(effects.Code, effects.Message))
		state.eventStream.Publish(domain.NotificationEvent{Message: effects.Message})
	case effects.MessageChanged:
		// same code, new text: refresh the warning without re-firing
		// the trigger or the notification
		for _, ev := range events.FaultUpdateEvents(true, effects.Message) {
			state.eventStream.Publish(ev)
		}
	case effects.Cleared:
		for _, ev := range events.FaultUpdateEvents(false, "") {
			state.eventStream.Publish(ev)
		}
	}
}

func (state *PollerActor) reconcilePellets(flat map[string]any) {
	raw, ok := flat["consumption"]
	if !ok {
		return
	}
	value, ok := service.Coerce(domain.Capability{Type: domain.CapabilityNumber}, raw)
	if !ok {
		return
	}
	baseline := state.estimator.LastConsumptionKg()
	if state.estimator.OnConsumptionReport(value.(float64)) {
		state.publishPellets()
	}
	// a remaining change always moves the baseline too, so this guard
	// covers both persisted keys
	if state.estimator.LastConsumptionKg() != baseline {
		state.persistPelletState()
	}
}

func (state *PollerActor) publishCapabilityUpdates(flat map[string]any) {
	for _, ev := range events.StatusToCapabilityUpdateEvents(flat) {
		update, ok := ev.(domain.CapabilityUpdateEvent)
		if !ok {
			continue
		}
		id := update.CapabilityId()
		value := capabilityEventValue(ev)

		_, seen := state.diff.Peek(id)
		if !state.diff.Changed(id, value) {
			continue
		}
		state.eventStream.Publish(ev)

		// flow triggers fire on real transitions only: not on the
		// first delivery, and not for our own command read-backs
		if seen && !state.selfInduced(id) {
			state.publishChangeTrigger(id, value)
		}
	}
}

// selfInduced reports whether a capability change matches a pending
// command we issued ourselves.
func (state *PollerActor) selfInduced(capabilityId string) bool {
	if state.echoFields == nil {
		return false
	}
	for _, cap := range domain.MappedCapabilities() {
		if cap.Id == capabilityId {
			return state.echoFields[cap.StatusKey]
		}
	}
	return false
}

func (state *PollerActor) publishChangeTrigger(id string, value any) {
	switch id {
	case domain.CAP_WEEKLY_PROGRAM:
		if enabled, ok := value.(bool); ok {
			state.eventStream.Publish(domain.WeeklyProgramChangedTrigger(enabled))
		}
	case domain.CAP_ECO_MODE:
		if enabled, ok := value.(bool); ok {
			state.eventStream.Publish(domain.EcoModeChangedTrigger(enabled))
		}
	case domain.CAP_CLEANING_HOURS:
		if hours, ok := value.(float64); ok {
			state.eventStream.Publish(domain.CleaningDueChangedTrigger(hours))
		}
	case domain.CAP_MAINTENANCE_HOURS:
		if percent, ok := value.(float64); ok {
			state.eventStream.Publish(domain.AshLimitChangedTrigger(percent))
		}
	}
}

func (state *PollerActor) handleControlRequest(ctx actor.Context, msg domain.StoveControlRequest) {
	state.logger.Debug("poller@default: control request", zap.String("type", fmt.Sprintf("%T", msg)))
	replyTo := ForRequest(msg).ReplyTo(ctx)

	switch cmd := msg.(type) {
	case domain.SetOnOffRequest:
		state.sendStoveCommand(ctx, map[string]any{"prg": cmd.Enable}, replyTo, func(err error) any {
			return domain.SetOnOffResponse{
				StoveControlResponseMixIn: controlResponse(err),
			}
		})
	case domain.SetTargetTemperatureRequest:
		if state.boolStatus("wprg") {
			// the stove silently ignores setpoint writes while the
			// weekly program drives the temperature
			ctx.Send(replyTo, domain.SetTargetTemperatureResponse{
				StoveControlResponseMixIn: controlResponse(&domain.GuardViolation{
					Guard:  "weekly_program",
					Reason: "temperature is controlled by the weekly program",
				}),
			})
			return
		}
		if cmd.Celsius <= 0 || cmd.Celsius > maxTargetTemperature {
			ctx.Send(replyTo, domain.SetTargetTemperatureResponse{
				StoveControlResponseMixIn: controlResponse(&domain.ValidationError{
					Field:  "sp_temp",
					Reason: fmt.Sprintf("target temperature must be within (0, %.0f] °C", maxTargetTemperature),
				}),
			})
			return
		}
		state.sendStoveCommand(ctx, map[string]any{"sp_temp": cmd.Celsius}, replyTo, func(err error) any {
			return domain.SetTargetTemperatureResponse{
				StoveControlResponseMixIn: controlResponse(err),
			}
		})
	case domain.SetEcoModeRequest:
		if !state.boolStatus("eco_editable") {
			ctx.Send(replyTo, domain.SetEcoModeResponse{
				StoveControlResponseMixIn: controlResponse(&domain.GuardViolation{
					Guard:  "eco_editable",
					Reason: "eco mode is locked by the stove",
				}),
			})
			return
		}
		state.sendStoveCommand(ctx, map[string]any{"eco_mode": cmd.Enable}, replyTo, func(err error) any {
			return domain.SetEcoModeResponse{
				StoveControlResponseMixIn: controlResponse(err),
			}
		})
	case domain.SetWeeklyProgramRequest:
		state.sendStoveCommand(ctx, map[string]any{"wprg": cmd.Enable}, replyTo, func(err error) any {
			return domain.SetWeeklyProgramResponse{
				StoveControlResponseMixIn: controlResponse(err),
			}
		})
	case domain.SetPelletsRequest:
		// manual refill correction, handled locally
		if state.estimator.OnManualOverride(cmd.Kg) {
			state.publishPellets()
		}
		state.persistPelletState()
		ctx.Send(replyTo, domain.SetPelletsResponse{Kg: state.estimator.RemainingKg()})
	case domain.SetPelletsMaxRequest:
		if cmd.Kg <= 0 {
			ctx.Send(replyTo, domain.SetPelletsMaxResponse{
				StoveControlResponseMixIn: controlResponse(&domain.ValidationError{
					Field:  "max_kg",
					Reason: "hopper capacity must be > 0 kg",
				}),
			})
			return
		}
		if state.estimator.SetMaxKg(cmd.Kg) {
			state.publishPellets()
		}
		state.persistPelletState()
		ctx.Send(replyTo, domain.SetPelletsMaxResponse{Kg: state.estimator.MaxKg()})
	case domain.SetPelletsAutoResetRequest:
		if cmd.Mode != "off" && cmd.Mode != "15" && cmd.Mode != "30" {
			ctx.Send(replyTo, domain.SetPelletsAutoResetResponse{
				StoveControlResponseMixIn: controlResponse(&domain.ValidationError{
					Field:  "auto_reset",
					Reason: "auto reset must be one of: off, 15, 30",
				}),
			})
			return
		}
		state.estimator.SetAutoReset(service.AutoResetFromSetting(cmd.Mode))
		ctx.Send(replyTo, domain.SetPelletsAutoResetResponse{Mode: cmd.Mode})
	default:
		state.logger.Warn("poller@default: unsupported control request", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *PollerActor) sendStoveCommand(ctx actor.Context, payload map[string]any, replyTo *actor.PID, respond func(error) any) {
	if state.config.Stove.Host == "" {
		ctx.Send(replyTo, respond(&domain.ConfigurationError{Missing: "stove.host"}))
		return
	}
	state.pendingCommand = &pendingCommand{
		payload: payload,
		replyTo: replyTo,
		respond: respond,
	}
	PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.stoveActor, domain.SendStoveCommandRequest{Payload: payload}, commandRequestTimeout), func(err error) any {
		return domain.SendStoveCommandResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{
				ResponseError: err,
			},
		}
	})
	state.behavior.BecomeStacked(state.AwaitCommandReceive)
}

func (state *PollerActor) publishPellets() {
	for _, ev := range events.PelletsUpdateEvents(state.estimator.RemainingKg()) {
		state.eventStream.Publish(ev)
	}
	state.eventStream.Publish(domain.PelletsChangedTrigger(state.estimator.RemainingKg()))
}

func (state *PollerActor) restorePelletState() {
	remaining := state.config.PelletsConfig.MaxKg
	if value, found, err := state.store.GetFloat(port.STORE_KEY_PELLETS_REMAINING_KG); err != nil {
		state.logger.Error("poller: could not read pellet state", zap.Error(err))
	} else if found {
		remaining = value
	}

	state.estimator = service.NewPelletEstimator(remaining, state.config.PelletsConfig.MaxKg,
		service.AutoResetFromSetting(state.config.PelletsConfig.AutoReset), state.logger)

	if value, found, err := state.store.GetFloat(port.STORE_KEY_PELLETS_LAST_CONSUMED); err != nil {
		state.logger.Error("poller: could not read pellet baseline", zap.Error(err))
	} else if found {
		state.estimator.Restore(value)
	}
}

func (state *PollerActor) persistPelletState() {
	if err := state.store.PutFloat(port.STORE_KEY_PELLETS_REMAINING_KG, state.estimator.RemainingKg()); err != nil {
		state.logger.Error("poller: could not persist pellet state", zap.Error(err))
	}
	if err := state.store.PutFloat(port.STORE_KEY_PELLETS_LAST_CONSUMED, state.estimator.LastConsumptionKg()); err != nil {
		state.logger.Error("poller: could not persist pellet baseline", zap.Error(err))
	}
}

func (state *PollerActor) boolStatus(key string) bool {
	if state.lastStatus == nil {
		return false
	}
	value, ok := service.Coerce(domain.Capability{Type: domain.CapabilityBool}, state.lastStatus[key])
	if !ok {
		return false
	}
	return value.(bool)
}

func capabilityEventValue(ev any) any {
	switch e := ev.(type) {
	case domain.FloatCapabilityUpdateEvent:
		return e.Value
	case domain.InputNumberCapabilityUpdateEvent:
		return e.Value
	case domain.BinaryCapabilityUpdateEvent:
		return e.Value
	case domain.SwitchCapabilityUpdateEvent:
		return e.Value
	case domain.TextCapabilityUpdateEvent:
		return e.Value
	default:
		return nil
	}
}

func controlResponse(err error) domain.StoveControlResponseMixIn {
	return domain.StoveControlResponseMixIn{
		ActorResponseMixIn: domain.ActorResponseMixIn{
			ResponseError: err,
		},
	}
}
