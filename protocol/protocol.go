// Package protocol implements the game's websocket packet dialect: each text
// frame is a JSON array whose first element is the opcode as a numeric string
// and whose remaining elements are positional arguments. The inbound and
// outbound opcode namespaces are disjoint and fixed by the unmodified clients,
// so the tables here must not be "cleaned up".
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Inbound opcodes (client to server).
const (
	InJoinRequest       = "13"
	InHostInformInLobby = "11"
	InHostInformInGame  = "40"
	InChangeOwnTeam     = "6"
	InChatMessage       = "10"
	InSetReady          = "16"
	InMapRequest        = "27"
	InFriendRequest     = "35"
	InSetTabbed         = "44"
	InLockTeams         = "7"
	InKickBanPlayer     = "9"
	InChangeMode        = "20"
	InChangeRounds      = "21"
	InChangeMap         = "23"
	InChangeOtherTeam   = "26"
	InChangeBalance     = "29"
	InToggleTeams       = "32"
	InTransferHost      = "34"
	InCountdownStart    = "36"
	InCountdownAbort    = "37"
	InSendInputs        = "4"
	InStartGame         = "5"
	InReturnToLobby     = "14"
	InSaveReplay        = "33"
	InTimesync          = "18"
)

// Outbound opcodes (server to client). Opcode 18 doubles for team and balance
// updates; the argument object's keys tell the client which one it got.
const (
	OutServerInform      = "3"
	OutHostInformInLobby = "21"
	OutHostInformInGame  = "48"
	OutPlayerJoined      = "4"
	OutPlayerLeft        = "5"
	OutHostLeft          = "6"
	OutChangeTeam        = "18"
	OutChangeBalance     = "18"
	OutChatMessage       = "20"
	OutSetReady          = "8"
	OutMapRequestHost    = "33"
	OutMapRequestNonHost = "34"
	OutFriendRequest     = "42"
	OutSetTabbed         = "52"
	OutLockTeams         = "19"
	OutChangeMode        = "26"
	OutChangeRounds      = "27"
	OutChangeMap         = "29"
	OutToggleTeams       = "39"
	OutTransferHost      = "41"
	OutCountdownStart    = "43"
	OutCountdownAbort    = "44"
	OutSendInputs        = "7"
	OutStartGame         = "15"
	OutReturnToLobby     = "13"
	OutSaveReplay        = "40"
	OutReplyTimesync     = "23"
	OutErrorMessage      = "16"
)

// Error codes carried by OutErrorMessage. The strings are shown by the client
// and must match it byte for byte.
const (
	ErrCodeRoomClosed            = "room_closed"
	ErrCodeBanned                = "banned"
	ErrCodeJoinRateLimited       = "join_rate_limited"
	ErrCodeAlreadyInRoom         = "already_in_this_room"
	ErrCodeUsernameTooLong       = "username_too_long"
	ErrCodeUsernameEmpty         = "username_empty"
	ErrCodeUsernameInvalid       = "username_invalid"
	ErrCodeGuestsNotAllowed      = "guests_not_allowed"
	ErrCodeXPTooLow              = "players_xp_too_low"
	ErrCodeXPTooHigh             = "players_xp_too_high"
	ErrCodeXPInvalid             = "player_xp_invalid"
	ErrCodePasswordWrong         = "password_wrong"
	ErrCodeRoomFull              = "room_full"
	ErrCodeNotHosting            = "not_hosting"
	ErrCodeChatRateLimit         = "chat_rate_limit"
	ErrCodeTeamsRateLimit        = "rate_limit_teams"
	ErrCodeReadyRateLimit        = "rate_limit_ready"
	ErrCodeHostChangeRateLimited = "host_change_rate_limited"
)

var (
	ErrBadFrame  = errors.New("malformed frame")
	ErrBadOpcode = errors.New("opcode is not a string")
)

// Decode splits a text frame into its opcode and positional arguments.
// The arguments are returned raw; each handler knows its own shapes.
func Decode(frame []byte) (string, []json.RawMessage, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(frame, &parts); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBadFrame, err)
	}
	if len(parts) == 0 {
		return "", nil, ErrBadFrame
	}
	var op string
	if err := json.Unmarshal(parts[0], &op); err != nil {
		return "", nil, ErrBadOpcode
	}
	return op, parts[1:], nil
}

// Encode builds a text frame from an opcode and positional arguments.
func Encode(op string, args ...any) ([]byte, error) {
	parts := make([]any, 0, len(args)+1)
	parts = append(parts, op)
	parts = append(parts, args...)
	frame, err := json.Marshal(parts)
	if err != nil {
		return nil, fmt.Errorf("encode %q: %w", op, err)
	}
	return frame, nil
}
