package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Envelope is the only frame on the wire. The relay stamps RoomID, PlayerID and
// Timestamp on everything a member sends; relay-originated frames carry no PlayerID.
// A non-empty To turns a broadcast into a unicast.
type Envelope struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RoomID    string          `json:"roomId,omitempty"`
	PlayerID  string          `json:"playerId,omitempty"`
	To        string          `json:"to,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

var (
	ErrMalformed   = errors.New("malformed envelope")
	ErrUnknownType = errors.New("unknown message type")
)

// Wrap builds an envelope with a JSON payload.
func Wrap(msgType string, payload any) Envelope {
	return Envelope{
		Type:      msgType,
		Payload:   mustMarshal(payload),
		Timestamp: time.Now().UnixMilli(),
	}
}

// WrapTo builds an envelope addressed to a single member.
func WrapTo(to, msgType string, payload any) Envelope {
	env := Wrap(msgType, payload)
	env.To = to
	return env
}

func WrapError(to, code, message string) Envelope {
	return WrapTo(to, MSG_ERROR, ErrorPayload{Code: code, Message: message})
}

// Decode parses one inbound frame. Unknown types and broken JSON are reported so the
// caller can drop the frame.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	if !IsKnownType(env.Type) {
		return Envelope{}, fmt.Errorf("%w: %s", ErrUnknownType, env.Type)
	}
	return env, nil
}

// TryUnwrap decodes the payload when the envelope has the given type. It returns nil
// for other types and for payloads that do not decode.
func TryUnwrap[T any](env Envelope, msgType string) *T {
	if env.Type != msgType {
		return nil
	}

	var payload T
	if len(env.Payload) == 0 {
		return &payload
	}

	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		zap.L().Debug(
			"failed to unwrap payload",
			zap.String("type", env.Type),
			zap.String("player_id", env.PlayerID),
			zap.Error(err),
		)
		return nil
	}

	return &payload
}

func mustMarshal(v any) json.RawMessage {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		panic("Failed to marshal: " + err.Error())
	}

	return data
}
