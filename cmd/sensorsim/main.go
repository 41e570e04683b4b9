// Command sensorsim publishes synthetic temperatures to the configured MQTT
// topic. It reads the same config.yml as the server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"thermowatch/internal/broker"
	"thermowatch/internal/config"
	"thermowatch/internal/logger"
	"thermowatch/internal/retry"
	"thermowatch/internal/simulator"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

func main() {
	cfg, err := config.Load("configs")
	if err != nil {
		logger.Get("info", "console").Fatalw("error reading config", "err", err)
	}
	log := logger.Get(cfg.Log.Level, cfg.Log.Format).With("component", "sensorsim")
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := broker.Options{
		Broker:         cfg.MQTT.Broker,
		ClientID:       cfg.Simulator.ClientID,
		Username:       cfg.MQTT.Username,
		Password:       cfg.MQTT.Password,
		Topic:          cfg.MQTT.Topic,
		QoS:            cfg.MQTT.QoS,
		ConnectTimeout: cfg.MQTT.ConnectTimeout,
		KeepAlive:      cfg.MQTT.KeepAlive,
	}

	// the broker may come up after us
	backoff := retry.ExponentialBackoff{
		MinInterval: cfg.MQTT.Backoff.MinInterval,
		MaxInterval: cfg.MQTT.Backoff.MaxInterval,
		NoJitter:    cfg.MQTT.Backoff.NoJitter,
		Logger:      log,
	}
	var client mqtt.Client
	err = backoff.Start(ctx, "sensorsim_connect", func(ctx context.Context) (bool, error) {
		c, err := broker.Dial(ctx, opts)
		if err != nil {
			return true, err
		}
		client = c
		return false, nil
	})
	if err != nil {
		log.Errorw("broker unreachable", "broker", opts.Broker, "err", err)
		os.Exit(1)
	}
	defer client.Disconnect(250)

	tick := cfg.Simulator.Tick
	if tick <= 0 {
		tick = time.Second
	}
	model := simulator.NewModel(cfg.Simulator.AmbientC, cfg.Simulator.PeakC, cfg.Simulator.NoiseC,
		cfg.Simulator.SpikeEach, time.Now().UnixNano())
	pub := broker.NewPublisher(client, opts.Topic, opts.QoS, opts.ConnectTimeout)

	log.Infow("publishing", "broker", opts.Broker, "topic", opts.Topic, "tick", tick)
	simulator.New(model, pub, log).Run(ctx, tick)
	log.Infow("stopped")
}
