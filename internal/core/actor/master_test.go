package actor

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	adactor "github.com/berfenger/embernews2mqtt/internal/adapter/actor"
	"github.com/berfenger/embernews2mqtt/internal/core/domain"
	"github.com/berfenger/embernews2mqtt/internal/storage"
	"github.com/berfenger/embernews2mqtt/internal/util"
	"github.com/berfenger/embernews2mqtt/pkg/pellet_stove"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMasterActor(t *testing.T) {

	as := actor.NewActorSystem()
	context := as.Root

	cfg := util.LoadTestConfig()
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	logger := zap.Must(logCfg.Build())

	store, err := storage.OpenSQLiteStateStore(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMasterOfPuppetsActor(cfg, func() *adactor.StoveActor {
			return adactor.NewStoveActor(pellet_stove.CreateTestStoveClient(), logger)
		}, func(es *eventstream.EventStream) *adactor.MQTTActor {
			return adactor.NewTestMQTTActor(&cfg, logger)
		}, store, logger)
	})
	pid, err := context.SpawnNamed(props, "master")
	if err != nil {
		t.Error(err)
		return
	}

	time.Sleep(2 * time.Second)

	res, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	healthResp, ok := res.(domain.ActorHealthResponse)
	assert.True(t, ok)
	fmt.Printf("Health response: %+v\n", healthResp)
	assert.NotNil(t, healthResp)

	assert.True(t, healthResp.Healthy, "healthy is true")

	context.Stop(pid)

	as.Shutdown()
}

func healthCheck(context *actor.RootContext, pid *actor.PID) (domain.ActorHealthResponse, error) {
	res, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 5*time.Second).Result()
	if err != nil {
		return domain.ActorHealthResponse{}, err
	}
	healthResp, ok := res.(domain.ActorHealthResponse)
	if !ok {
		return domain.ActorHealthResponse{}, fmt.Errorf("invalid response type %T", res)
	}
	return healthResp, nil
}
