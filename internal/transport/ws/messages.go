package ws

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MessageType represents the type of an inbound WebSocket message
type MessageType string

// Client → Server message types
const (
	MsgCreateRoom   MessageType = "create-room"
	MsgJoinRoom     MessageType = "join-room"
	MsgGetRoomState MessageType = "get-room-state"
	MsgStartGame    MessageType = "start-game"
	MsgFlipCard     MessageType = "flip-card"
	MsgCastVote     MessageType = "cast-vote"
	MsgSkipToVoting MessageType = "skip-to-voting"
	MsgResetGame    MessageType = "reset-game"
	MsgPing         MessageType = "ping"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// CreateRoomPayload is the payload for create-room
type CreateRoomPayload struct {
	Nickname string `json:"nickname" validate:"required,max=24"`
}

// JoinRoomPayload is the payload for join-room
type JoinRoomPayload struct {
	RoomCode string `json:"roomCode" validate:"required,len=6,numeric"`
	Nickname string `json:"nickname" validate:"required,max=24"`
}

// RoomPayload is the payload for messages that only name the room
type RoomPayload struct {
	RoomCode string `json:"roomCode" validate:"omitempty,len=6,numeric"`
}

// StartGamePayload is the payload for start-game
type StartGamePayload struct {
	RoomCode   string `json:"roomCode" validate:"omitempty,len=6,numeric"`
	CategoryID string `json:"categoryId" validate:"max=32"`
}

// CastVotePayload is the payload for cast-vote
type CastVotePayload struct {
	RoomCode       string `json:"roomCode" validate:"omitempty,len=6,numeric"`
	TargetPlayerID string `json:"targetPlayerId" validate:"required"`
}

type normalizer interface {
	normalize()
}

func (p *CreateRoomPayload) normalize() {
	p.Nickname = strings.TrimSpace(p.Nickname)
}

func (p *JoinRoomPayload) normalize() {
	p.RoomCode = strings.TrimSpace(p.RoomCode)
	p.Nickname = strings.TrimSpace(p.Nickname)
}

func (p *StartGamePayload) normalize() {
	p.CategoryID = strings.ToLower(strings.TrimSpace(p.CategoryID))
}

var validate = newValidator()

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodePayload unmarshals and validates a message payload. An absent payload
// decodes to the zero value so field rules decide what is required.
func decodePayload[T any](raw json.RawMessage) (*T, error) {
	var payload T
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, err
		}
	}

	if n, ok := any(&payload).(normalizer); ok {
		n.normalize()
	}

	if err := validate.Struct(&payload); err != nil {
		return nil, describeValidation(err)
	}
	return &payload, nil
}

// describeValidation turns validator output into a short client-facing message
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return errors.New(field + " is required")
	case "len", "numeric":
		return errors.New(field + " must be a 6-digit code")
	case "max":
		return errors.New(field + " is too long")
	default:
		return errors.New(field + " is invalid")
	}
}
