package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traitors-be/internal/game"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		frame   string
		wantErr error
	}{
		{"vote", `{"type":"VOTE_CAST","payload":{"voterId":"a","targetId":"b"},"timestamp":1}`, nil},
		{"no payload", `{"type":"REQUEST_SNAPSHOT"}`, nil},
		{"broken json", `{"type":`, ErrMalformed},
		{"missing type", `{"payload":{}}`, ErrMalformed},
		{"unknown type", `{"type":"DANCE"}`, ErrUnknownType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.frame))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTryUnwrap(t *testing.T) {
	env := Wrap(MSG_VOTE_CAST, VoteCastPayload{VoterID: "a", TargetID: game.VoteSkip})

	vote := TryUnwrap[VoteCastPayload](env, MSG_VOTE_CAST)
	require.NotNil(t, vote)
	assert.Equal(t, "a", vote.VoterID)
	assert.Equal(t, game.VoteSkip, vote.TargetID)

	assert.Nil(t, TryUnwrap[VoteCastPayload](env, MSG_CARD_CONFIRM))

	bad := Envelope{Type: MSG_VOTE_CAST, Payload: json.RawMessage(`"oops"`)}
	assert.Nil(t, TryUnwrap[VoteCastPayload](bad, MSG_VOTE_CAST))

	empty := Envelope{Type: MSG_PLAYER_READY}
	assert.NotNil(t, TryUnwrap[PlayerReadyPayload](empty, MSG_PLAYER_READY))
}

func TestSnapshotPayloadIsFlat(t *testing.T) {
	env := Wrap(MSG_STATE_SNAPSHOT, StateSnapshotPayload{
		Snapshot:    game.Snapshot{CurrentPhase: game.PhaseNight, CurrentTurn: 2},
		InitiatorID: "auth",
	})

	var raw map[string]any
	require.NoError(t, json.Unmarshal(env.Payload, &raw))
	assert.Equal(t, "NIGHT", raw["currentPhase"])
	assert.Equal(t, float64(2), raw["currentTurn"])
	assert.Equal(t, "auth", raw["initiatorId"])

	back := TryUnwrap[StateSnapshotPayload](env, MSG_STATE_SNAPSHOT)
	require.NotNil(t, back)
	assert.Equal(t, game.PhaseNight, back.CurrentPhase)
}

func TestWrapTo(t *testing.T) {
	env := WrapError("p1", ERR_ROOM_FULL, "full")
	assert.Equal(t, "p1", env.To)
	assert.Equal(t, MSG_ERROR, env.Type)
	assert.NotZero(t, env.Timestamp)

	p := TryUnwrap[ErrorPayload](env, MSG_ERROR)
	require.NotNil(t, p)
	assert.Equal(t, ERR_ROOM_FULL, p.Code)
}
