package http

import (
	"context"
	"fmt"
	"time"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"traitors-be/internal/api/http/websocket"
	"traitors-be/internal/state"
)

const shutdownTimeout = 5 * time.Second

func NewApp(appState *state.AppState) *iris.Application {
	app := iris.New()
	app.Logger().SetLevel(appState.Cfg.LogLevel)
	app.UseRouter(requestLogger)

	if dir := appState.Cfg.StaticDir; dir != "" {
		app.HandleDir(
			"/",
			iris.Dir(dir),
			iris.DirOptions{
				IndexName: "index.html",
				SPA:       true,
				Compress:  true,
			},
		)
	}

	app.Get("/healthz", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	api := app.Party("/api/v1")

	api.Post("/rooms/create", CreateRoom(appState))
	api.Get("/rooms/{roomId:string}", GetRoom(appState))
	api.Post("/rooms/{roomId:string}/bots", AddBot(appState))

	api.Get("/cards", ListCards(appState))
	api.Get("/cards/{code:string}/qr", CardQR(appState))

	api.Get("/ws/join", websocket.JoinRoom(appState))

	return app
}

// RunServer serves until ctx is cancelled, then shuts down gracefully.
func RunServer(ctx context.Context, appState *state.AppState) error {
	app := NewApp(appState)

	addr := fmt.Sprintf(
		"%s:%d",
		appState.Cfg.Host,
		appState.Cfg.Port,
	)

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := app.Shutdown(shutdownCtx); err != nil {
			zap.L().Warn("http shutdown", zap.Error(err))
		}
	}()

	zap.L().Info("http server listening", zap.String("addr", addr))

	err := app.Listen(
		addr,
		iris.WithoutInterruptHandler,
		iris.WithoutServerError(iris.ErrServerClosed),
		iris.WithoutStartupLog,
	)
	if err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func requestLogger(ctx iris.Context) {
	start := time.Now()
	ctx.Next()

	zap.L().Debug(
		"http request",
		zap.String("method", ctx.Method()),
		zap.String("path", ctx.Path()),
		zap.Int("status", ctx.GetStatusCode()),
		zap.Duration("took", time.Since(start)),
	)
}
