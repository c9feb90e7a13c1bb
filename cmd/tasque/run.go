package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/urfave/cli"

	"tasque/internal/config"
	"tasque/internal/eventbus"
	"tasque/internal/runner"
	"tasque/internal/storage"
	"tasque/internal/supervisor"
	"tasque/pkg/logx"
)

const shutdownTimeout = 10 * time.Second

var (
	emitEvents bool

	runFlags = []cli.Flag{
		configFlag,
		cli.BoolFlag{
			Name:        "emit, e",
			Usage:       "write every due task to stdout as a JSON line",
			Destination: &emitEvents,
		},
	}
)

func run(ctx *cli.Context) error {
	mgr, cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logSvc, log := logx.New(cfg.LogConfig())
	defer logSvc.Close()
	mgr.SetLogger(log.With(logx.String("comp", "config")))
	mgr.SetValidator(func(_ context.Context, c *config.Config) error { return config.Validate(c) })

	histLog := log.With(logx.String("comp", "history"))
	store, err := openHistory(cfg, histLog)
	if err != nil {
		return err
	}

	bus := eventbus.New()
	svc, err := runner.New(cfg, runner.Options{
		Log:   log.With(logx.String("comp", "runner")),
		Bus:   bus,
		Store: store,
		OpenStore: func(h config.HistoryConfig) (storage.Store, error) {
			sc, err := h.Storage()
			if err != nil {
				return nil, err
			}
			return storage.Open(sc, histLog)
		},
	})
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return err
	}
	defer svc.Close()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	sup := supervisor.New(sigCtx, supervisor.WithLogger(log), supervisor.WithCancelOnError(true))

	updates := mgr.Subscribe(4)
	logUpdates := mgr.Subscribe(4)
	defer mgr.Unsubscribe(updates)
	defer mgr.Unsubscribe(logUpdates)

	sup.Go("runner", func(ctx context.Context) error { return svc.Run(ctx, updates) })
	sup.GoRestart("config.watch", mgr.Watch)
	sup.Go("logging.apply", func(ctx context.Context) error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case c, ok := <-logUpdates:
				if !ok {
					return nil
				}
				logSvc.Apply(c.LogConfig())
			}
		}
	})
	if emitEvents {
		events, unsubscribe := bus.Subscribe(64, eventbus.TypeTaskDue)
		defer unsubscribe()
		sup.Go("emit", func(ctx context.Context) error { return emit(ctx, events) })
	}

	notifySystemd(log, daemon.SdNotifyReady)
	log.Info("tasque started", logx.String("config", mgr.Path()), logx.String("session", svc.Session()))

	<-sup.Context().Done()
	notifySystemd(log, daemon.SdNotifyStopping)

	waitCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = sup.Stop(waitCtx)
	log.Info("tasque stopped", logx.Int64("fired", int64(svc.Fired())), logx.Int64("dropped_events", int64(bus.Dropped())))
	return err
}

func emit(ctx context.Context, events <-chan eventbus.Event) error {
	enc := json.NewEncoder(os.Stdout)
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-events:
			if !ok {
				return nil
			}
			if err := enc.Encode(e); err != nil {
				return err
			}
		}
	}
}

// notifySystemd is a no-op outside a systemd unit with Type=notify.
func notifySystemd(log logx.Logger, state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		log.Warn("sd_notify failed", logx.String("state", state), logx.Err(err))
		return
	}
	if sent {
		log.Debug("sd_notify sent", logx.String("state", state))
	}
}
