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

	adactor "pergola2mqtt/internal/adapter/actor"
	"pergola2mqtt/internal/config"
	"pergola2mqtt/internal/core/actor"
	"pergola2mqtt/internal/server"
	"pergola2mqtt/internal/util/actorutil"
	"pergola2mqtt/pkg/skyeapi"

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

	// shared device client: the roof actor drives it, the stream actor
	// reuses its bearer token
	roofClient, err := skyeapi.CreateHTTPRoofClient(skyeapi.ClientConfig{
		Host:      cfg.Pergola.Host,
		Port:      cfg.Pergola.Port,
		UserType:  skyeapi.UserType(cfg.Pergola.UserType),
		Password:  cfg.Pergola.Password,
		VerifySSL: cfg.Pergola.VerifySSL,
		Timeout:   time.Duration(cfg.Pergola.TimeoutMillis) * time.Millisecond,
	})
	if err != nil {
		panic(err)
	}

	props := pactor.PropsFromProducer(func() pactor.Actor {
		return actor.NewMasterOfPuppetsActor(*cfg,
			roofActorProvider(roofClient, logger),
			mqttActorProvider(cfg, logger),
			streamActorProvider(cfg, roofClient, logger),
			logger)
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

	// alias PORT => PERGOLA_PORT
	if port := os.Getenv("PORT"); port != "" {
		os.Setenv("PERGOLA_PORT", port)
	}

	setConfigDefaults()

	viper.SetEnvPrefix("pergola")
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
	if cfg.Pergola.Host == "" {
		return nil, errors.New("config param pergola.host is required")
	}
	if !skyeapi.UserType(cfg.Pergola.UserType).Valid() {
		return nil, errors.New("config param pergola.user_type is not a valid user type")
	}
	if cfg.Pergola.PollIntervalMillis < 1000 {
		return nil, errors.New("config param pergola.poll_interval_millis should be >= 1000")
	}

	return &cfg, nil
}

func roofActorProvider(client skyeapi.RoofClient, logger *zap.Logger) actor.RoofActorProvider {
	return func() *adactor.RoofActor {
		return adactor.NewRoofActor(client, logger)
	}
}

func mqttActorProvider(cfg *config.Config, logger *zap.Logger) actor.MQTTActorProvider {
	return func(es *eventstream.EventStream) *adactor.MQTTActor {
		return adactor.NewMQTTActor(cfg, es, logger)
	}
}

func streamActorProvider(cfg *config.Config, client skyeapi.RoofClient, logger *zap.Logger) actor.StreamActorProvider {
	streamCfg := skyeapi.ClientConfig{
		Host:      cfg.Pergola.Host,
		Port:      cfg.Pergola.Port,
		VerifySSL: cfg.Pergola.VerifySSL,
	}
	return func(monitor *pactor.PID) *adactor.StreamActor {
		stream := skyeapi.CreateEventStream(streamCfg, client.Token, logger)
		return adactor.NewStreamActor(stream, monitor, logger)
	}
}

func setConfigDefaults() {
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("mqtt.ha_discovery_enable", false)
	viper.SetDefault("mqtt.base_topic", "pergola2mqtt")
	viper.SetDefault("mqtt.ha_discovery_topic", "homeassistant")
	viper.SetDefault("pergola.port", 443)
	viper.SetDefault("pergola.user_type", "user")
	viper.SetDefault("pergola.verify_ssl", false)
	viper.SetDefault("pergola.poll_interval_millis", 5000)
	viper.SetDefault("pergola.timeout_millis", 30000)
	viper.SetDefault("port", 8080)
}

func safePrintConfig(cfg config.Config) {
	cfg.MQTT.Username = "*redacted*"
	cfg.MQTT.Password = "*redacted*"
	cfg.Pergola.Password = "*redacted*"
	slog.Info("Using", "config", cfg)
}
