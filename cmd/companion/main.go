// Command companion simulates the phone side of the weather exchange. It
// answers every request published by a watch with a fixed sample and pushes
// that sample whenever it (re)connects.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"watchcore/internal/appmsg"
	"watchcore/internal/companion"
	"watchcore/internal/config"
	"watchcore/internal/logging"
	"watchcore/internal/mqtt"
)

var version = "dev"
var appName = "watchcore-companion"

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	temp, cond, err := companion.SampleFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg, version, appName)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, temp, cond, logger); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}

	slog.Info("shutting down")
}

func run(ctx context.Context, cfg config.Config, temp *int32, cond *string, logger *slog.Logger) error {
	var responder *companion.Responder

	// the companion reads the watch's outbox and writes its inbox
	channel, err := mqtt.NewChannel(mqtt.Options{
		Broker:         cfg.MQTTBroker,
		Port:           cfg.MQTTPort,
		ClientID:       "companion-" + cfg.WatchID + "-" + uuid.NewString()[:8],
		SubscribeTopic: cfg.OutboxTopic(),
		PublishTopic:   cfg.InboxTopic(),
		InboxSize:      cfg.OutboxSize,
		OutboxSize:     cfg.InboxSize,
	}, mqtt.Handlers{
		OnReceived: func(d appmsg.Dict) { responder.Handle(d) },
		OnDropped: func(reason appmsg.Result, err error) {
			logger.Warn("request dropped", "reason", reason.String(), "error", err)
		},
		OnFailed: func(reason appmsg.Result, err error) {
			logger.Error("reply failed", "reason", reason.String(), "error", err)
		},
		OnConnectionChange: func(connected bool) {
			if !connected {
				return
			}
			go func() {
				if err := responder.Push(); err != nil {
					logger.Warn("initial push failed", "error", err)
				}
			}()
		},
	}, logger)
	if err != nil {
		return err
	}
	responder = companion.NewResponder(temp, cond, channel, logger)
	defer channel.Disconnect()

	slog.Info("companion starting",
		"watch_id", cfg.WatchID,
		"broker", cfg.MQTTBroker,
		"port", cfg.MQTTPort,
		"temperature", temp != nil,
		"conditions", cond != nil,
	)
	if err := channel.Connect(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	return ctx.Err()
}
