package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/trader-arena/internal/arena"
	"github.com/yourusername/trader-arena/internal/cache"
	"github.com/yourusername/trader-arena/internal/health"
	"github.com/yourusername/trader-arena/internal/realtime"
	"github.com/yourusername/trader-arena/internal/scheduler"
)

var errRealtimeDisconnected = errors.New("realtime channel disconnected")

func newWatchCmd() *cobra.Command {
	var poolID string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow live pool updates",
		Long: `Connects to the realtime channel, keeps pool views fresh and prints
notifications as pools are created, updated, cancelled or change status.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), poolID)
		},
	}

	cmd.Flags().StringVarP(&poolID, "pool", "p", "", "Follow a single pool instead of the pool list")
	return cmd
}

func runWatch(ctx context.Context, poolID string) error {
	backend := newBackend()
	defer backend.Close()

	bus := realtime.NewBus(log)

	notifier := realtime.NewNotifier(cfg.NotificationTTL())
	notifier.OnChange(func(n *realtime.Notification) {
		if n != nil {
			fmt.Printf("[%s] %s\n", n.ShownAt.Format("15:04:05"), n.Message)
		}
	})

	synchronizer := realtime.NewSynchronizer(bus, backend.Views(), notifier, log)
	synchronizer.SetDisplayedPool(poolID)
	synchronizer.Start()
	defer synchronizer.Stop()

	streamCfg := realtime.DefaultStreamConfig(cfg.Realtime.URL)
	streamCfg.Room = cfg.Realtime.Room
	streamCfg.MaxReconnectAttempts = cfg.Realtime.MaxReconnectAttempts
	streamCfg.ReconnectDelay = cfg.ReconnectDelay()
	stream := realtime.NewStreamClient(streamCfg, bus, log)
	stream.OnStatusChange(func(s realtime.ConnectionStatus) {
		fmt.Printf("realtime: %s\n", s)
	})

	refresh := scheduler.NewAutoRefresh(func() {
		backend.Views().Invalidate(cache.PoolsKey, cache.ActivePoolsKey, cache.PoolKey(poolID))
		if err := showWatched(ctx, backend, poolID); err != nil {
			log.WithError(err).Warn("Auto-refresh failed")
		}
	}, cfg.RefreshInterval(), cfg.Refresh.Enabled, log)

	if err := showWatched(ctx, backend, poolID); err != nil {
		return err
	}
	refresh.Start()
	defer refresh.Stop()

	checks := map[string]health.Pinger{
		"realtime": health.CheckFunc(func(context.Context) error {
			if !stream.IsConnected() {
				return errRealtimeDisconnected
			}
			return nil
		}),
	}

	_, db, err := openHistory(ctx)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		checks["database"] = health.CheckFunc(db.HealthCheck)
	}

	var relay *realtime.RedisSource
	if cfg.Realtime.Redis.Enabled {
		relay = realtime.NewRedisSource(&redis.Options{
			Addr:     cfg.Realtime.Redis.Addr,
			Password: cfg.Realtime.Redis.Password,
			DB:       cfg.Realtime.Redis.DB,
		}, cfg.Realtime.Redis.Channel, bus, log)
		defer relay.Close()
		checks["redis"] = relay
	}

	if cfg.Metrics.Enabled {
		srv := health.NewServer(health.Config{
			ServiceName: cfg.App.Name,
			Version:     Version,
			Commit:      GitCommit,
			Port:        strconv.Itoa(cfg.Metrics.Port),
			MetricsPath: cfg.Metrics.Path,
			Logger:      log,
			Checks:      checks,
		})
		if err := srv.Start(ctx); err != nil {
			return err
		}
		srv.SetReady(true)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := stream.Run(gctx)
		if errors.Is(err, realtime.ErrMaxReconnectAttempts) {
			// Auto-refresh keeps the views current without push updates.
			fmt.Println("realtime: giving up, falling back to periodic refresh")
			return nil
		}
		return err
	})
	if relay != nil {
		g.Go(func() error {
			return relay.Run(gctx)
		})
	}

	log.WithFields(logrus.Fields{
		"url":  cfg.Realtime.URL,
		"room": cfg.Realtime.Room,
		"pool": poolID,
	}).Info("Watching pools")

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// showWatched prints the followed pool, or the active pool list.
func showWatched(ctx context.Context, backend *arena.CachedClient, poolID string) error {
	now := time.Now()
	if poolID != "" {
		pool, err := backend.Pool(ctx, poolID)
		if err != nil {
			return err
		}
		printPoolDetail(pool, now)
		return nil
	}

	pools, err := backend.ActivePools(ctx)
	if err != nil {
		return err
	}
	printPools(pools, now)
	return nil
}
