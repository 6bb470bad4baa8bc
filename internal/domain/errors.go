package domain

import "errors"

// Domain errors
var (
	ErrRoomNotFound            = errors.New("room not found")
	ErrPlayerNotFound          = errors.New("player not found")
	ErrNotHost                 = errors.New("only host can perform this action")
	ErrWrongPhase              = errors.New("invalid action for current phase")
	ErrNotYourTurn             = errors.New("not your turn to flip")
	ErrAlreadyFlipped          = errors.New("card already flipped this game")
	ErrAlreadyVoted            = errors.New("already voted this game")
	ErrAlreadyStarting         = errors.New("game is already starting")
	ErrRoomFull                = errors.New("room is full")
	ErrTooFewPlayers           = errors.New("not enough players to start")
	ErrUnknownTarget           = errors.New("vote target is not in this room")
	ErrDuplicateActiveNickname = errors.New("nickname is used by a connected player")
	ErrGameInProgress          = errors.New("game already in progress")
	ErrUnknownCategory         = errors.New("unknown category")
	ErrCodeSpaceExhausted      = errors.New("failed to generate unique room code")
	ErrInvalidTransition       = errors.New("invalid phase transition")
)

// ErrorKind is the machine-readable error name sent to clients.
type ErrorKind string

const (
	KindRoomNotFound            ErrorKind = "RoomNotFound"
	KindPlayerNotFound          ErrorKind = "PlayerNotFound"
	KindNotHost                 ErrorKind = "NotHost"
	KindWrongPhase              ErrorKind = "WrongPhase"
	KindNotYourTurn             ErrorKind = "NotYourTurn"
	KindAlreadyFlipped          ErrorKind = "AlreadyFlipped"
	KindAlreadyVoted            ErrorKind = "AlreadyVoted"
	KindAlreadyStarting         ErrorKind = "AlreadyStarting"
	KindRoomFull                ErrorKind = "RoomFull"
	KindTooFewPlayers           ErrorKind = "TooFewPlayers"
	KindUnknownTarget           ErrorKind = "UnknownTarget"
	KindDuplicateActiveNickname ErrorKind = "DuplicateActiveNickname"
	KindGameInProgress          ErrorKind = "GameInProgress"
	KindUnknownCategory         ErrorKind = "UnknownCategory"
	KindInvalidMessage          ErrorKind = "InvalidMessage"
	KindRateLimited             ErrorKind = "RateLimited"
	KindInternal                ErrorKind = "Internal"
)

var errorKinds = map[error]ErrorKind{
	ErrRoomNotFound:            KindRoomNotFound,
	ErrPlayerNotFound:          KindPlayerNotFound,
	ErrNotHost:                 KindNotHost,
	ErrWrongPhase:              KindWrongPhase,
	ErrNotYourTurn:             KindNotYourTurn,
	ErrAlreadyFlipped:          KindAlreadyFlipped,
	ErrAlreadyVoted:            KindAlreadyVoted,
	ErrAlreadyStarting:         KindAlreadyStarting,
	ErrRoomFull:                KindRoomFull,
	ErrTooFewPlayers:           KindTooFewPlayers,
	ErrUnknownTarget:           KindUnknownTarget,
	ErrDuplicateActiveNickname: KindDuplicateActiveNickname,
	ErrGameInProgress:          KindGameInProgress,
	ErrUnknownCategory:         KindUnknownCategory,
}

// KindOf maps an error to the kind reported to clients. Anything that is not
// an expected rejection is Internal.
func KindOf(err error) ErrorKind {
	for target, kind := range errorKinds {
		if errors.Is(err, target) {
			return kind
		}
	}
	return KindInternal
}

// IsRejection reports whether err is an expected, user-facing rejection.
func IsRejection(err error) bool {
	return KindOf(err) != KindInternal
}
