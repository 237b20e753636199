package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eclipse/paho.mqtt.golang"
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/matt-g-everett/ledanim/accessor"
	"github.com/matt-g-everett/ledanim/api"
	"github.com/matt-g-everett/ledanim/stream"
	"github.com/matt-g-everett/ledanim/util"
)

var (
	// configPath is set by the --config flag.
	configPath string

	// logLevel is set by the --log-level flag.
	logLevel string

	// dev switches to human readable logs.
	dev bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ledtx",
	Short: "Stream property animations to an ledrx device over MQTT",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return a.run(ctx)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the config and build every animation without connecting",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.sync()

		for _, anim := range a.animations {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d pixels, ok\n", anim.Name(), a.config.Stream.Pixels)
		}
		return nil
	},
}

var easesCmd = &cobra.Command{
	Use:   "eases",
	Short: "List the easing curves usable in animation config",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range util.EaseNames() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "YAML config file.")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error).")
	rootCmd.PersistentFlags().BoolVar(&dev, "dev", false, "Human readable logs.")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(easesCmd)
}

type app struct {
	config     stream.Config
	zap        *zap.Logger
	logger     logr.Logger
	registry   *prometheus.Registry
	animations []*stream.PropertyAnimation
}

func newApp() (*app, error) {
	a := new(app)

	z, err := newZap()
	if err != nil {
		return nil, err
	}
	a.zap = z
	a.logger = zapr.NewLogger(z)

	a.config, err = stream.ReadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", configPath, err)
	}
	a.logger.V(1).Info("config loaded", "path", configPath, "animations", len(a.config.Animations))

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector())
	metrics, err := accessor.NewPrometheusMetrics(a.registry)
	if err != nil {
		return nil, err
	}

	cache := accessor.NewCache(accessor.ReflectResolver{},
		accessor.WithLogger(a.logger.WithName("accessor")),
		accessor.WithMetrics(metrics))

	builder := stream.NewBuilder(cache, a.config.Stream.Pixels, a.logger.WithName("animation"))
	a.animations, err = builder.BuildAll(a.config.Animations)
	if err != nil {
		return nil, err
	}

	return a, nil
}

func newZap() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	if dev {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

func (a *app) sync() {
	_ = a.zap.Sync()
}

func (a *app) handleOnConnect(client mqtt.Client) {
	a.logger.Info("connected", "broker", a.config.Mqtt.URL)
}

func (a *app) handleConnectionLost(client mqtt.Client, err error) {
	a.logger.Error(err, "connection lost")
}

func (a *app) run(ctx context.Context) error {
	mqtt.ERROR = zap.NewStdLog(a.zap.Named("mqtt"))

	clientID := a.config.Mqtt.ClientID
	if clientID == "" {
		clientID = "ledtx-" + uuid.NewString()[:8]
	}

	options := mqtt.NewClientOptions().
		AddBroker(a.config.Mqtt.URL).
		SetClientID(clientID).
		SetUsername(a.config.Mqtt.Username).
		SetPassword(a.config.Mqtt.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetAutoReconnect(true).
		SetOnConnectHandler(a.handleOnConnect).
		SetConnectionLostHandler(a.handleConnectionLost)
	client := mqtt.NewClient(options)

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connecting to %s: %w", a.config.Mqtt.URL, token.Error())
	}
	defer client.Disconnect(250)

	controller := stream.NewController(a.animations, a.config.Stream.FrameRate,
		a.config.AnimationTime(), a.config.TransitionTime(), a.logger.WithName("controller"))
	streamer := stream.NewStreamer(client, a.config.Mqtt.Topics.Stream, a.config.Stream.FrameRate,
		controller, a.logger.WithName("streamer"))
	server := api.NewApi(a.config.API.Listen, a.config.API.Static, a.registry, controller,
		a.logger.WithName("api"))

	go func() {
		if err := server.Serve(ctx); err != nil {
			a.logger.Error(err, "api stopped")
		}
	}()
	go controller.Run(ctx)

	a.logger.Info("streaming", "topic", a.config.Mqtt.Topics.Stream, "frameRate", a.config.Stream.FrameRate)
	streamer.Run(ctx)
	a.logger.Info("stopped")
	return nil
}
