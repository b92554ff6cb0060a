package actor

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	adactor "github.com/berfenger/embernews2mqtt/internal/adapter/actor"
	"github.com/berfenger/embernews2mqtt/internal/config"
	"github.com/berfenger/embernews2mqtt/internal/core/domain"
	"github.com/berfenger/embernews2mqtt/internal/core/port"
	"github.com/berfenger/embernews2mqtt/internal/storage"
	"github.com/berfenger/embernews2mqtt/internal/util"
	"github.com/berfenger/embernews2mqtt/internal/util/actorutil"
	"github.com/berfenger/embernews2mqtt/pkg/pellet_stove"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// eventRecorder collects everything published on the event stream so
// tests can assert on it after the fact.
type eventRecorder struct {
	mutex  sync.Mutex
	events []any
}

func (r *eventRecorder) record(event any) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) snapshot() []any {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]any{}, r.events...)
}

func (r *eventRecorder) capabilityValue(t *testing.T, capabilityId string) (any, bool) {
	t.Helper()
	var value any
	found := false
	for _, ev := range r.snapshot() {
		update, ok := ev.(domain.CapabilityUpdateEvent)
		if !ok || update.CapabilityId() != capabilityId {
			continue
		}
		switch e := ev.(type) {
		case domain.FloatCapabilityUpdateEvent:
			value = e.Value
		case domain.InputNumberCapabilityUpdateEvent:
			value = e.Value
		case domain.BinaryCapabilityUpdateEvent:
			value = e.Value
		case domain.SwitchCapabilityUpdateEvent:
			value = e.Value
		case domain.TextCapabilityUpdateEvent:
			value = e.Value
		}
		found = true
	}
	return value, found
}

func (r *eventRecorder) trigger(name string) (domain.TriggerEvent, bool) {
	for _, ev := range r.snapshot() {
		if trigger, ok := ev.(domain.TriggerEvent); ok && trigger.Name == name {
			return trigger, true
		}
	}
	return domain.TriggerEvent{}, false
}

// countingStore is an in-memory StateStore that counts writes.
type countingStore struct {
	mutex  sync.Mutex
	values map[string]float64
	puts   int
}

func newCountingStore() *countingStore {
	return &countingStore{values: make(map[string]float64)}
}

func (s *countingStore) GetFloat(key string) (float64, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	value, found := s.values[key]
	return value, found, nil
}

func (s *countingStore) PutFloat(key string, value float64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.values[key] = value
	s.puts++
	return nil
}

func (s *countingStore) Delete(key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.values, key)
	return nil
}

func (s *countingStore) Close() error {
	return nil
}

func (s *countingStore) putCount() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.puts
}

// ensure interface compliance
var _ port.StateStore = (*countingStore)(nil)

type pollerTestRig struct {
	system   *actor.ActorSystem
	context  *actor.RootContext
	poller   *actor.PID
	recorder *eventRecorder
	store    port.StateStore
}

func startPollerTestRig(t *testing.T, cfg config.Config, stove *pellet_stove.TestStoveClient) *pollerTestRig {
	t.Helper()

	store, err := storage.OpenSQLiteStateStore(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatal(err)
	}
	return startPollerTestRigWithStore(t, cfg, stove, store)
}

func startPollerTestRigWithStore(t *testing.T, cfg config.Config, stove *pellet_stove.TestStoveClient, store port.StateStore) *pollerTestRig {
	t.Helper()

	logger := zap.Must(zap.NewDevelopment())
	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	recorder := &eventRecorder{}
	stream := &eventstream.EventStream{}
	stream.Subscribe(recorder.record)

	stoveProps := actor.PropsFromProducer(func() actor.Actor {
		return adactor.NewStoveActor(stove, logger)
	})
	stoveActorPID := context.Spawn(stoveProps)

	pollerProps := actor.PropsFromProducer(func() actor.Actor {
		return NewPollerActor(&cfg, stoveActorPID, stream, store, logger)
	})
	pollerPID := context.Spawn(pollerProps)

	t.Cleanup(func() {
		context.Stop(pollerPID)
		context.Stop(stoveActorPID)
		as.Shutdown()
		_ = store.Close()
	})

	return &pollerTestRig{
		system:   as,
		context:  context,
		poller:   pollerPID,
		recorder: recorder,
		store:    store,
	}
}

func fastPollConfig() config.Config {
	cfg := util.LoadTestConfig()
	cfg.MonitorConfig.PollIntervalMillis = 200
	return cfg
}

func TestPollerPublishesStatus(t *testing.T) {

	rig := startPollerTestRig(t, fastPollConfig(), pellet_stove.CreateTestStoveClient())

	time.Sleep(1 * time.Second)

	hcr, err := healthCheck(rig.context, rig.poller)
	if err != nil {
		t.Error(err)
		return
	}
	assert.True(t, hcr.Healthy, "poller should be healthy")

	available := false
	for _, ev := range rig.recorder.snapshot() {
		if avail, ok := ev.(domain.DeviceAvailabilityUpdateEvent); ok && avail.Available {
			available = true
		}
	}
	assert.True(t, available, "device should be reported available")

	onoff, found := rig.recorder.capabilityValue(t, domain.CAP_ONOFF)
	assert.True(t, found)
	assert.Equal(t, true, onoff)

	spTemp, found := rig.recorder.capabilityValue(t, domain.CAP_TARGET_TEMPERATURE)
	assert.True(t, found)
	assert.Equal(t, 21.0, spTemp)

	mode, found := rig.recorder.capabilityValue(t, domain.CAP_OPERATING_MODE)
	assert.True(t, found)
	assert.Equal(t, "heating", mode)
}

func TestPollerCommandReadBack(t *testing.T) {

	rig := startPollerTestRig(t, fastPollConfig(), pellet_stove.CreateTestStoveClient())

	time.Sleep(500 * time.Millisecond)

	res, err := rig.context.RequestFuture(rig.poller, domain.SetTargetTemperatureRequest{Celsius: 19.5}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp, ok := res.(domain.SetTargetTemperatureResponse)
	assert.True(t, ok)
	assert.False(t, resp.HasResponseError(), "command should be accepted")

	// the scripted stove applies the write, so the next poll reads it
	// back and publishes the new value
	time.Sleep(1 * time.Second)

	spTemp, found := rig.recorder.capabilityValue(t, domain.CAP_TARGET_TEMPERATURE)
	assert.True(t, found)
	assert.Equal(t, 19.5, spTemp)
}

func TestPollerWeeklyProgramGuardBlocksSetpoint(t *testing.T) {

	stove := pellet_stove.CreateTestStoveClient()
	stove.Status["wprg"] = true

	rig := startPollerTestRig(t, fastPollConfig(), stove)

	time.Sleep(500 * time.Millisecond)

	res, err := rig.context.RequestFuture(rig.poller, domain.SetTargetTemperatureRequest{Celsius: 19.5}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp, ok := res.(domain.SetTargetTemperatureResponse)
	assert.True(t, ok)
	assert.True(t, resp.HasResponseError(), "setpoint write should be rejected")

	var guard *domain.GuardViolation
	assert.True(t, errors.As(resp.GetResponseError(), &guard))
}

func TestPollerInvalidSetpointRejected(t *testing.T) {

	rig := startPollerTestRig(t, fastPollConfig(), pellet_stove.CreateTestStoveClient())

	time.Sleep(500 * time.Millisecond)

	res, err := rig.context.RequestFuture(rig.poller, domain.SetTargetTemperatureRequest{Celsius: 95}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp, ok := res.(domain.SetTargetTemperatureResponse)
	assert.True(t, ok)
	assert.True(t, resp.HasResponseError(), "out of range setpoint should be rejected")

	var validation *domain.ValidationError
	assert.True(t, errors.As(resp.GetResponseError(), &validation))
}

func TestPollerHopperFaultForcesPelletsEmpty(t *testing.T) {

	stove := pellet_stove.CreateTestStoveClient()
	stove.Status["error"] = map[string]any{"nr": 21.0}

	rig := startPollerTestRig(t, fastPollConfig(), stove)

	time.Sleep(1 * time.Second)

	faultActive, found := rig.recorder.capabilityValue(t, domain.CAP_FAULT_ACTIVE)
	assert.True(t, found)
	assert.Equal(t, true, faultActive)

	faultText, found := rig.recorder.capabilityValue(t, domain.CAP_FAULT_TEXT)
	assert.True(t, found)
	assert.NotEmpty(t, faultText)

	trigger, found := rig.recorder.trigger(domain.TRIGGER_ERROR_OCCURRED)
	assert.True(t, found, "error trigger should fire")
	assert.Equal(t, "F021", trigger.Payload["error_code"])

	pellets, found := rig.recorder.capabilityValue(t, domain.CAP_PELLETS)
	assert.True(t, found)
	assert.Equal(t, 0.0, pellets)

	notified := false
	for _, ev := range rig.recorder.snapshot() {
		if _, ok := ev.(domain.NotificationEvent); ok {
			notified = true
		}
	}
	assert.True(t, notified, "fault should raise a notification")

	remaining, found, err := rig.store.GetFloat(port.STORE_KEY_PELLETS_REMAINING_KG)
	if err != nil {
		t.Error(err)
		return
	}
	assert.True(t, found)
	assert.Equal(t, 0.0, remaining)
}

func TestPollerSetPelletsOverride(t *testing.T) {

	rig := startPollerTestRig(t, fastPollConfig(), pellet_stove.CreateTestStoveClient())

	time.Sleep(500 * time.Millisecond)

	res, err := rig.context.RequestFuture(rig.poller, domain.SetPelletsRequest{Kg: 12.5}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp, ok := res.(domain.SetPelletsResponse)
	assert.True(t, ok)
	assert.False(t, resp.HasResponseError())
	assert.Equal(t, 12.5, resp.Kg)

	remaining, found, err := rig.store.GetFloat(port.STORE_KEY_PELLETS_REMAINING_KG)
	if err != nil {
		t.Error(err)
		return
	}
	assert.True(t, found)
	assert.Equal(t, 12.5, remaining)
}

func TestPollerSetAutoReset(t *testing.T) {

	rig := startPollerTestRig(t, fastPollConfig(), pellet_stove.CreateTestStoveClient())

	time.Sleep(500 * time.Millisecond)

	res, err := rig.context.RequestFuture(rig.poller, domain.SetPelletsAutoResetRequest{Mode: "45"}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp, ok := res.(domain.SetPelletsAutoResetResponse)
	assert.True(t, ok)
	assert.True(t, resp.HasResponseError(), "unknown refill size should be rejected")

	var validation *domain.ValidationError
	assert.True(t, errors.As(resp.GetResponseError(), &validation))

	res, err = rig.context.RequestFuture(rig.poller, domain.SetPelletsAutoResetRequest{Mode: "30"}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp, ok = res.(domain.SetPelletsAutoResetResponse)
	assert.True(t, ok)
	assert.False(t, resp.HasResponseError())
	assert.Equal(t, "30", resp.Mode)
}

func TestPollerSteadyPollsSkipStateWrites(t *testing.T) {

	store := newCountingStore()
	rig := startPollerTestRigWithStore(t, fastPollConfig(), pellet_stove.CreateTestStoveClient(), store)

	// several polls of an unchanging status document: only the first
	// one moves the consumption baseline and persists
	time.Sleep(1200 * time.Millisecond)

	assert.Equal(t, 2, store.putCount(), "one write per persisted key, then none")

	baseline, found, err := rig.store.GetFloat(port.STORE_KEY_PELLETS_LAST_CONSUMED)
	if err != nil {
		t.Error(err)
		return
	}
	assert.True(t, found)
	assert.Equal(t, 1543.2, baseline)
}
