package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"watchcore/internal/appmsg"
	"watchcore/internal/battery"
	"watchcore/internal/ble"
	"watchcore/internal/clock"
	"watchcore/internal/config"
	"watchcore/internal/db"
	"watchcore/internal/haptics"
	"watchcore/internal/httpapi"
	"watchcore/internal/journal"
	"watchcore/internal/migrate"
	"watchcore/internal/mqtt"
	"watchcore/internal/watchface"
)

const eventBuffer = 32

// Run wires the watchface to its sources and serves the HTTP view until
// parent is done.
func Run(parent context.Context, cfg config.Config, logger *slog.Logger) error {
	ctx, stop := context.WithCancel(parent)
	defer stop()

	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"variant", cfg.Variant,
		"use24h", cfg.Use24h,
		"watchID", cfg.WatchID,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"inboxTopic", cfg.InboxTopic(),
		"outboxTopic", cfg.OutboxTopic(),
		"inboxSize", cfg.InboxSize,
		"outboxSize", cfg.OutboxSize,
		"weatherPollMinutes", cfg.WeatherPollMinutes,
		"batterySupply", cfg.BatterySupply,
		"connectivitySource", cfg.ConnectivitySource,
		"hapticGPIO", cfg.HapticGPIO,
		"sqlitePath", cfg.SQLitePath,
	)

	variant, err := watchface.LookupVariant(cfg.Variant)
	if err != nil {
		return err
	}

	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(dbConn); closeErr != nil {
			logger.Error("db close", "error", closeErr)
		}
	}()

	if _, err := migrate.Run(ctx, dbConn, logger); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	repo := journal.NewRepository(dbConn, cfg.WatchID)
	logger.Info("journal ready", "session", repo.Session())
	journalWriter := journal.NewWriter(repo, 0, logger)
	// inserts must outlive ctx so the buffer drains on shutdown
	go journalWriter.Run(context.WithoutCancel(ctx))
	defer journalWriter.Close()

	events := make(chan watchface.Event, eventBuffer)
	emit := func(ev watchface.Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	channel, err := mqtt.NewChannel(mqtt.Options{
		Broker:         cfg.MQTTBroker,
		Port:           cfg.MQTTPort,
		ClientID:       cfg.MQTTClientID,
		SubscribeTopic: cfg.InboxTopic(),
		PublishTopic:   cfg.OutboxTopic(),
		InboxSize:      cfg.InboxSize,
		OutboxSize:     cfg.OutboxSize,
	}, mqtt.Handlers{
		OnReceived: func(d appmsg.Dict) { emit(watchface.InboxReceived{Dict: d}) },
		OnDropped: func(reason appmsg.Result, err error) {
			emit(watchface.InboxDropped{Reason: reason, Err: err})
		},
		OnSent: func() { emit(watchface.OutboxSent{}) },
		OnFailed: func(reason appmsg.Result, err error) {
			emit(watchface.OutboxFailed{Reason: reason, Err: err})
		},
		OnConnectionChange: func(connected bool) {
			if cfg.ConnectivitySource == "mqtt" {
				emit(watchface.ConnectionChanged{Connected: connected})
			}
		},
	}, logger)
	if err != nil {
		return err
	}

	// A short timeout keeps startup going when the broker is down; paho keeps retrying.
	connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
	err = channel.Connect(connectCtx)
	connectCancel()
	if err != nil {
		logger.Warn("mqtt connection failed (continuing, will retry)", "error", err)
	}
	defer channel.Disconnect()

	var (
		connection watchface.ConnectionPeeker = channel
		presence   *ble.Presence
	)
	if cfg.ConnectivitySource == "ble" {
		listener := ble.NewListener(ble.Options{Adapter: cfg.BLEAdapter, Address: cfg.CompanionAddress}, logger)
		presence = ble.NewPresence(listener, cfg.CompanionTimeout, logger)
		presence.Start(ctx)
		connection = presence
	}

	batterySource := battery.NewSysfsSource(cfg.BatterySupply, cfg.BatteryPollInterval)

	motor, err := newMotor(cfg, logger)
	if err != nil {
		return err
	}
	player := haptics.NewPlayer(motor, logger)

	frames := watchface.NewFrameBuffer(variant.Name)
	ctrl, err := watchface.NewController(watchface.Options{
		Variant:     variant,
		Use24h:      cfg.Use24h,
		PollMinutes: cfg.WeatherPollMinutes,
		Surface:     watchface.MultiSurface{frames, watchface.LogSurface{Logger: logger}},
		Haptics:     player,
		Channel:     channel,
		Battery:     batterySource,
		Connection:  connection,
		Observer:    journalWriter,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	ctrl.Start()
	seeded := ctrl.State()

	var wg sync.WaitGroup
	goRun := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("worker stopped", "worker", name, "error", err)
			}
		}()
	}

	goRun("clock", func() error {
		return clock.NewTicker().Run(ctx, func(t time.Time) { emit(watchface.Tick{At: t}) })
	})
	if variant.Battery {
		goRun("battery", func() error {
			return batterySource.Run(ctx, seeded.BatteryPercent, func(p int) { emit(watchface.BatteryChanged{Percent: p}) })
		})
	}
	if presence != nil && variant.Connectivity {
		goRun("presence", func() error {
			return presence.Run(ctx, seeded.Connected, func(c bool) { emit(watchface.ConnectionChanged{Connected: c}) })
		})
	}
	goRun("watchface", func() error {
		return ctrl.Run(ctx, events)
	})

	srv := httpapi.NewServer(cfg.HTTPAddr, httpapi.Deps{
		DB:      dbConn,
		Display: frames,
		Journal: repo,
		Link:    channel,
		Logger:  logger,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stop()

	logger.Info("mqtt disconnecting")
	channel.Disconnect()

	if serveErr == nil {
		logger.Info("http shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		serveErr = <-errCh
	}

	wg.Wait()
	player.Wait()
	logger.Info("watchface stopped", "stats", fmt.Sprintf("%+v", ctrl.Stats()), "journal_dropped", journalWriter.Dropped())

	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return serveErr
	}
	return parent.Err()
}

func newMotor(cfg config.Config, logger *slog.Logger) (haptics.Motor, error) {
	if cfg.HapticGPIO == "" {
		return haptics.LogMotor{Logger: logger}, nil
	}
	m, err := haptics.OpenGPIO(cfg.HapticGPIO)
	if err != nil {
		return nil, fmt.Errorf("haptic gpio: %w", err)
	}
	return m, nil
}
