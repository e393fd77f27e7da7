package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"traitors-be/internal/api/http"
	"traitors-be/internal/config"
	"traitors-be/internal/logger"
	"traitors-be/internal/relay"
	"traitors-be/internal/service"
	"traitors-be/internal/session"
	"traitors-be/internal/state"
)

func main() {
	cfg := config.InitConfig()

	logger.InitLogger(cfg.LogLevel)
	defer zap.L().Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := relay.NewHub(relay.Config{
		MaxPlayers:      cfg.Relay.MaxPlayers,
		IdleTimeout:     cfg.Relay.RoomIdleTimeout,
		CleanupInterval: cfg.Relay.CleanupInterval,
		OutboxSize:      cfg.Relay.OutboxSize,
	})

	roomSvc := service.NewRoomService(ctx, hub, service.Config{
		Session: session.Config{
			TickInterval:      cfg.Session.TickInterval,
			TimerSyncInterval: cfg.Session.TimerSyncInterval,
		},
		Defaults:     cfg.Game,
		BotThinkTime: cfg.Session.BotThinkTime,
		MaxBots:      cfg.Session.MaxBots,
	})

	appState := state.NewAppState(cfg, hub, roomSvc)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hub.Run(gctx)
	})

	g.Go(func() error {
		return http.RunServer(gctx, appState)
	})

	g.Go(func() error {
		<-gctx.Done()
		roomSvc.Close()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		zap.L().Error("server stopped", zap.Error(err))
		os.Exit(1)
	}

	zap.L().Info("server stopped")
}
