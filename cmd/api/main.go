package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adactor "github.com/berfenger/embernews2mqtt/internal/adapter/actor"
	"github.com/berfenger/embernews2mqtt/internal/config"
	"github.com/berfenger/embernews2mqtt/internal/core/actor"
	"github.com/berfenger/embernews2mqtt/internal/server"
	"github.com/berfenger/embernews2mqtt/internal/storage"
	"github.com/berfenger/embernews2mqtt/internal/util/actorutil"
	"github.com/berfenger/embernews2mqtt/pkg/pellet_stove"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {

	// load and print config
	cfg, err := initConfig()
	if err != nil {
		slog.Error("config errors", "error", err)
		return
	}
	safePrintConfig(*cfg)

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())

	// init actor system
	as := actorutil.NewActorSystemWithZapLogger(logger)
	ctx := as.Root

	defer logger.Sync()

	// open pellet state store
	store, err := storage.OpenSQLiteStateStore(cfg.StorePath)
	if err != nil {
		logger.Error("could not open state store", zap.Error(err))
		return
	}
	defer store.Close()

	props := pactor.PropsFromProducer(func() pactor.Actor {
		return actor.NewMasterOfPuppetsActor(*cfg, stoveActorProvider(cfg, logger), mqttActorProvider(cfg, logger), store, logger)
	})
	pid, err := ctx.SpawnNamed(props, "master")
	if err != nil {
		return
	}

	server := server.NewServer(*cfg, ctx, pid)
	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(server, done)

	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Println("Graceful shutdown complete.")

	ctx.Stop(pid)
	as.Shutdown()
}

func initConfig() (*config.Config, error) {

	// alias PORT => EMBERNEWS_PORT
	if port := os.Getenv("PORT"); port != "" {
		os.Setenv("EMBERNEWS_PORT", port)
	}

	setConfigDefaults()

	viper.SetEnvPrefix("embernews")
	viper.AutomaticEnv()

	// if defined, try to load config from yaml file
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			viper.SetConfigFile(cfgFile)

			err = viper.ReadInConfig()
			if err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		}
	}

	var cfg config.Config

	err := viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	// parse log level
	switch viper.GetString("log_level") {
	case "trace":
		cfg.LogLevel = zap.DebugLevel
	case "debug":
		cfg.LogLevel = zap.DebugLevel
	case "info":
		cfg.LogLevel = zap.InfoLevel
	case "error":
		cfg.LogLevel = zap.ErrorLevel
	case "warn":
		cfg.LogLevel = zap.WarnLevel
	case "fatal":
		cfg.LogLevel = zap.FatalLevel
	default:
		cfg.LogLevel = zap.InfoLevel
	}

	// check and fix base topic
	baseTopic, err := config.CheckMQTTTopic(cfg.MQTT.BaseTopic)
	if err != nil {
		return nil, errors.New("invalid base topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.BaseTopic = baseTopic

	// check and fix homeassistant discovery topic
	hadBaseTopic, err := config.CheckMQTTTopic(cfg.MQTT.HADiscoveryTopic)
	if err != nil {
		return nil, errors.New("invalid homeassistant discovery topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.HADiscoveryTopic = hadBaseTopic

	// check bounds
	if cfg.Stove.Host == "" {
		return nil, errors.New("config param stove.host is required")
	}
	if cfg.Stove.Pin == "" {
		return nil, errors.New("config param stove.pin is required")
	}
	if cfg.MonitorConfig.PollIntervalMillis < 1000 {
		return nil, errors.New("config param monitor.poll_interval_millis should be >= 1000")
	}
	if cfg.PelletsConfig.MaxKg <= 0 {
		return nil, errors.New("config param pellets.max_kg should be > 0")
	}
	if reset := cfg.PelletsConfig.AutoReset; reset != "off" && reset != "15" && reset != "30" {
		return nil, errors.New("config param pellets.auto_reset should be one of: off, 15, 30")
	}

	return &cfg, nil
}

func stoveActorProvider(cfg *config.Config, logger *zap.Logger) actor.StoveActorProvider {
	address := pellet_stove.NormalizeAddress(cfg.Stove.Host, cfg.Stove.Port)
	timeout := time.Duration(cfg.Stove.RequestTimeoutMillis) * time.Millisecond
	return func() *adactor.StoveActor {
		return adactor.NewStoveActor(pellet_stove.CreateHTTPStoveClient(address, cfg.Stove.Pin, timeout, logger), logger)
	}
}

func mqttActorProvider(cfg *config.Config, logger *zap.Logger) actor.MQTTActorProvider {
	return func(stream *eventstream.EventStream) *adactor.MQTTActor {
		return adactor.NewMQTTActor(cfg, stream, logger)
	}
}

func setConfigDefaults() {
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("mqtt.ha_discovery_enable", false)
	viper.SetDefault("mqtt.base_topic", "embernews")
	viper.SetDefault("mqtt.ha_discovery_topic", "homeassistant")
	viper.SetDefault("stove.port", 80)
	viper.SetDefault("stove.request_timeout_millis", 10000)
	viper.SetDefault("monitor.poll_interval_millis", 5000)
	viper.SetDefault("monitor.command_echo_window_millis", 30000)
	viper.SetDefault("pellets.max_kg", 30)
	viper.SetDefault("pellets.auto_reset", "off")
	viper.SetDefault("store_path", "embernews_state.db")
	viper.SetDefault("port", 8080)
}

func safePrintConfig(cfg config.Config) {
	cfg.MQTT.Username = "*redacted*"
	cfg.MQTT.Password = "*redacted*"
	cfg.Stove.Pin = "*redacted*"
	slog.Info("Using", "config", cfg)
}
