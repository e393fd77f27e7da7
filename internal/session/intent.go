package session

import (
	"errors"

	"go.uber.org/zap"

	"traitors-be/internal/card"
	"traitors-be/internal/game"
	"traitors-be/internal/protocol"
)

func (s *Session) handle(env protocol.Envelope) {
	// membership comes from the relay itself, which leaves PlayerID empty
	fromRelay := env.PlayerID == ""

	switch env.Type {
	case protocol.MSG_ROOM_JOINED:
		if p := protocol.TryUnwrap[protocol.RoomJoinedPayload](env, env.Type); fromRelay && p != nil && p.PlayerID == s.conn.ID() {
			s.syncRoster(p.OwnerID, p.Players)
		}

	case protocol.MSG_PLAYER_LIST_UPDATED:
		if p := protocol.TryUnwrap[protocol.PlayerListUpdatedPayload](env, env.Type); fromRelay && p != nil {
			s.syncRoster(p.OwnerID, p.Players)
		}

	case protocol.MSG_START_GAME:
		p := protocol.TryUnwrap[protocol.StartGamePayload](env, env.Type)
		if p == nil {
			return
		}
		if err := s.engine.Start(env.PlayerID, p.Settings); err != nil {
			s.reject(env, err)
			return
		}
		s.announceGame()

	case protocol.MSG_PLAYER_READY:
		if err := s.engine.MarkReady(env.PlayerID); err != nil {
			s.reject(env, err)
		}

	case protocol.MSG_NIGHT_ACTION_UPDATED:
		p := protocol.TryUnwrap[protocol.NightActionUpdatedPayload](env, env.Type)
		if p == nil {
			return
		}
		action := p.Action
		action.PlayerID = env.PlayerID
		action.Result = nil
		if err := s.engine.SubmitNightAction(action); err != nil {
			s.reject(env, err)
		}

	case protocol.MSG_VOTE_CAST:
		p := protocol.TryUnwrap[protocol.VoteCastPayload](env, env.Type)
		if p == nil {
			return
		}
		if err := s.engine.SubmitVote(env.PlayerID, p.TargetID); err != nil {
			s.reject(env, err)
		}

	case protocol.MSG_SKIP_TO_VOTE:
		if err := s.engine.SkipToVote(env.PlayerID); err != nil {
			s.reject(env, err)
		}

	case protocol.MSG_RETURN_TO_LOBBY:
		if err := s.engine.ReturnToLobby(env.PlayerID); err != nil {
			s.reject(env, err)
			return
		}
		// members who left mid-game drop out of the lobby roster
		s.syncRoster(s.ownerID, s.members)

	case protocol.MSG_CARD_QR_SCANNED:
		if p := protocol.TryUnwrap[protocol.CardQRScannedPayload](env, env.Type); p != nil {
			s.scanCard(env.PlayerID, p.Token)
		}

	case protocol.MSG_CARD_CONFIRM:
		if p := protocol.TryUnwrap[protocol.CardConfirmPayload](env, env.Type); p != nil {
			s.confirmCard(env.PlayerID, p.EffectID, p.TargetID)
		}

	case protocol.MSG_REQUEST_SNAPSHOT:
		s.sendSnapshot(env.PlayerID)
	}
}

// announceGame tells each player the roster as they are allowed to see it.
func (s *Session) announceGame() {
	g := s.engine.Game()
	for _, p := range s.engine.Players() {
		s.unicast(p.ID, protocol.MSG_GAME_STARTED, protocol.GameStartedPayload{
			GameID:   g.ID,
			Players:  s.engine.Snapshot(p.ID).Players,
			Settings: g.Settings,
		})
	}
}

func (s *Session) scanCard(playerID, token string) {
	preview, err := s.engine.ScanCard(playerID, token)
	if err != nil {
		s.cardError(playerID, err)
		return
	}

	s.unicast(playerID, protocol.MSG_CARD_PREVIEW, protocol.CardPreviewPayload{
		Code:        preview.Code,
		EffectID:    preview.EffectID,
		Title:       preview.Title,
		Text:        preview.Text,
		NeedsTarget: preview.NeedsTarget,
	})
}

func (s *Session) confirmCard(playerID string, effectID card.EffectID, targetID string) {
	app, err := s.engine.ConfirmCard(playerID, effectID, targetID)
	if err != nil {
		s.cardError(playerID, err)
		return
	}

	s.unicast(playerID, protocol.MSG_CARD_APPLIED_PRIVATE, protocol.CardAppliedPrivatePayload{
		Code:     app.Code,
		EffectID: app.EffectID,
		Title:    app.Title,
		Text:     app.PrivateText,
		ActorID:  app.ActorID,
		TargetID: app.TargetID,
	})

	if app.TargetText != "" && app.TargetID != "" {
		s.unicast(app.TargetID, protocol.MSG_CARD_APPLIED_PRIVATE, protocol.CardAppliedPrivatePayload{
			Code:     app.Code,
			EffectID: app.EffectID,
			Title:    app.Title,
			Text:     app.TargetText,
			ActorID:  app.ActorID,
			TargetID: app.TargetID,
		})
	}

	if app.PublicText != "" {
		s.broadcast(protocol.MSG_CARD_APPLIED, protocol.CardAppliedPayload{
			EffectID: app.EffectID,
			Title:    app.Title,
			Text:     app.PublicText,
			ActorID:  app.ActorID,
			TargetID: app.TargetID,
		})
	}
}

// cardError answers a failed scan or confirm with a CARD_PREVIEW carrying the reason.
func (s *Session) cardError(playerID string, err error) {
	zap.L().Info(
		"card rejected",
		zap.String("room_id", s.roomID),
		zap.String("player_id", playerID),
		zap.Error(err),
	)

	s.unicast(playerID, protocol.MSG_CARD_PREVIEW, protocol.CardPreviewPayload{
		Error: cardErrorText(err),
	})
}

func cardErrorText(err error) string {
	switch {
	case errors.Is(err, card.ErrUnknownCard), errors.Is(err, card.ErrInvalidCode):
		return "Bu kart tanınmadı."
	case errors.Is(err, card.ErrCardExhausted):
		return "Bu kart bu oyunda zaten kullanıldı."
	case errors.Is(err, card.ErrWrongPhase):
		return "Bu kart şu an oynanamaz."
	case errors.Is(err, game.ErrNotYourTurn):
		return "Kart çekme sırası sende değil."
	case errors.Is(err, game.ErrNoPendingCard):
		return "Önce bir kart okut."
	case errors.Is(err, game.ErrInvalidTarget):
		return "Geçersiz hedef."
	default:
		return err.Error()
	}
}
