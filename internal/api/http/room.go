package http

import (
	"errors"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"traitors-be/internal/card"
	"traitors-be/internal/game"
	"traitors-be/internal/relay"
	"traitors-be/internal/service"
	"traitors-be/internal/service/dto"
	"traitors-be/internal/state"
)

func CreateRoom(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		var req dto.CreateRoomRequest

		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StatusCode(iris.StatusBadRequest)
			ctx.JSON(iris.Map{
				"error": "invalid request body",
			})
			return
		}

		resp, err := appState.RoomSvc.CreateRoom(req)
		if err != nil {
			writeError(ctx, err)
			return
		}

		ctx.JSON(resp)
	}
}

func GetRoom(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		resp, err := appState.RoomSvc.RoomInfo(ctx.Params().Get("roomId"))
		if err != nil {
			writeError(ctx, err)
			return
		}

		ctx.JSON(resp)
	}
}

func AddBot(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		var req dto.AddBotRequest

		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StatusCode(iris.StatusBadRequest)
			ctx.JSON(iris.Map{
				"error": "invalid request body",
			})
			return
		}

		resp, err := appState.RoomSvc.AddBot(ctx.Params().Get("roomId"), req)
		if err != nil {
			writeError(ctx, err)
			return
		}

		ctx.StatusCode(iris.StatusCreated)
		ctx.JSON(resp)
	}
}

func ListCards(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		ctx.JSON(appState.RoomSvc.Cards())
	}
}

func CardQR(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		png, err := appState.RoomSvc.CardQR(ctx.Params().Get("code"))
		if err != nil {
			writeError(ctx, err)
			return
		}

		ctx.ContentType("image/png")
		ctx.Header("Cache-Control", "public, max-age=86400")
		ctx.Write(png)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, relay.ErrRoomNotFound), errors.Is(err, relay.ErrRoomClosed), errors.Is(err, card.ErrUnknownCard):
		return iris.StatusNotFound
	case errors.Is(err, relay.ErrNotOwner):
		return iris.StatusForbidden
	case errors.Is(err, game.ErrGameInProgress), errors.Is(err, relay.ErrRoomFull), errors.Is(err, relay.ErrRoomLocked), errors.Is(err, service.ErrTooManyBots):
		return iris.StatusConflict
	case errors.Is(err, service.ErrOwnerNameRequired), errors.Is(err, card.ErrInvalidCode):
		return iris.StatusBadRequest
	default:
		return iris.StatusInternalServerError
	}
}

func writeError(ctx iris.Context, err error) {
	status := statusFor(err)
	if status == iris.StatusInternalServerError {
		zap.L().Error("request failed", zap.String("path", ctx.Path()), zap.Error(err))
	}

	ctx.StatusCode(status)
	ctx.JSON(iris.Map{
		"error": err.Error(),
	})
}
