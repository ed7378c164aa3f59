package server

import (
	"encoding/json"
	"log/slog"

	"github.com/bonkhost/bonk-room/protocol"
)

// rateActions is the one table binding inbound opcodes to their ratelimit
// action class. Opcodes missing here are never limited.
var rateActions = map[string]Action{
	protocol.InJoinRequest:     ActionJoining,
	protocol.InChatMessage:     ActionChatting,
	protocol.InChangeOwnTeam:   ActionChangingTeams,
	protocol.InLockTeams:       ActionChangingTeams,
	protocol.InChangeOtherTeam: ActionChangingTeams,
	protocol.InSetReady:        ActionReadying,
	protocol.InTransferHost:    ActionTransferringHost,
	protocol.InChangeMode:      ActionChangingMode,
	protocol.InChangeMap:       ActionChangingMap,
	protocol.InCountdownStart:  ActionStartGameCountdown,
	protocol.InCountdownAbort:  ActionStartGameCountdown,
	protocol.InStartGame:       ActionStartingEndingGame,
	protocol.InReturnToLobby:   ActionStartingEndingGame,
}

// rateErrorCodes maps the action classes that answer a refusal with an error
// packet. Classes missing here refuse silently.
var rateErrorCodes = map[Action]string{
	ActionJoining:          protocol.ErrCodeJoinRateLimited,
	ActionChatting:         protocol.ErrCodeChatRateLimit,
	ActionChangingTeams:    protocol.ErrCodeTeamsRateLimit,
	ActionReadying:         protocol.ErrCodeReadyRateLimit,
	ActionTransferringHost: protocol.ErrCodeHostChangeRateLimited,
}

// hostOnly lists the opcodes only the sitting host may send. Changing one's
// own team is conditionally host-only (locked teams) and is checked in its
// handler instead.
var hostOnly = map[string]bool{
	protocol.InHostInformInLobby: true,
	protocol.InHostInformInGame:  true,
	protocol.InLockTeams:         true,
	protocol.InKickBanPlayer:     true,
	protocol.InChangeMode:        true,
	protocol.InChangeRounds:      true,
	protocol.InChangeMap:         true,
	protocol.InChangeOtherTeam:   true,
	protocol.InChangeBalance:     true,
	protocol.InToggleTeams:       true,
	protocol.InTransferHost:      true,
	protocol.InCountdownStart:    true,
	protocol.InCountdownAbort:    true,
	protocol.InStartGame:         true,
	protocol.InReturnToLobby:     true,
}

// dispatch decodes one inbound frame and runs its handler. It is called from
// the connection's read goroutine and holds the room lock for the whole
// handler, so packets mutate the room one at a time.
func (s *Server) dispatch(c *Client, frame []byte) {
	// A handler fault must not take the connection down or corrupt the
	// room, so validation happens before mutation everywhere below.
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in packet handler", "conn", c.ID, "panic", r)
		}
	}()

	op, args, err := protocol.Decode(frame)
	if err != nil {
		slog.Debug("bad frame", "conn", c.ID, "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Clients run timesync while the join dialog is still open, so it works
	// without a slot.
	if op == protocol.InTimesync {
		s.handleTimesync(c, args)
		return
	}

	// The join request runs the joining limiter at its place inside the
	// admission order, not here.
	if op == protocol.InJoinRequest {
		s.handleJoin(c, args)
		return
	}

	if c.PlayerID < 0 {
		slog.Debug("packet before join", "conn", c.ID, "op", op)
		return
	}

	if action, ok := rateActions[op]; ok && !s.limits.Hit(c.Addr, action) {
		if code, errored := rateErrorCodes[action]; errored {
			s.sendTo(c, protocol.OutErrorMessage, code)
		}
		return
	}

	if hostOnly[op] && c.PlayerID != s.room.HostID {
		s.sendTo(c, protocol.OutErrorMessage, protocol.ErrCodeNotHosting)
		return
	}

	switch op {
	case protocol.InChangeOwnTeam:
		s.handleChangeOwnTeam(c, args)
	case protocol.InChatMessage:
		s.handleChat(c, args)
	case protocol.InSetReady:
		s.handleSetReady(c, args)
	case protocol.InMapRequest:
		s.handleMapRequest(c, args)
	case protocol.InFriendRequest:
		s.handleFriendRequest(c, args)
	case protocol.InSetTabbed:
		s.handleSetTabbed(c, args)
	case protocol.InLockTeams:
		s.handleLockTeams(c, args)
	case protocol.InKickBanPlayer:
		s.handleKickBan(c, args)
	case protocol.InChangeMode:
		s.handleChangeMode(c, args)
	case protocol.InChangeRounds:
		s.handleChangeRounds(c, args)
	case protocol.InChangeMap:
		s.handleChangeMap(c, args)
	case protocol.InChangeOtherTeam:
		s.handleChangeOtherTeam(c, args)
	case protocol.InChangeBalance:
		s.handleChangeBalance(c, args)
	case protocol.InToggleTeams:
		s.handleToggleTeams(c, args)
	case protocol.InTransferHost:
		s.handleTransferHost(c, args)
	case protocol.InCountdownStart:
		s.broadcast(protocol.OutCountdownStart, c.PlayerID)
	case protocol.InCountdownAbort:
		s.broadcast(protocol.OutCountdownAbort, c.PlayerID)
	case protocol.InHostInformInLobby:
		s.handleHostInformLobby(c, args)
	case protocol.InHostInformInGame:
		s.handleHostInformGame(c, args)
	case protocol.InSendInputs:
		s.handleSendInputs(c, args)
	case protocol.InStartGame:
		s.handleStartGame(c, args)
	case protocol.InReturnToLobby:
		s.handleReturnToLobby(c)
	case protocol.InSaveReplay:
		s.broadcast(protocol.OutSaveReplay, c.PlayerID)
	default:
		slog.Debug("unknown opcode", "conn", c.ID, "op", op)
	}
}

// handleTimesync answers the client clock probe. The id is echoed untouched.
func (s *Server) handleTimesync(c *Client, args []json.RawMessage) {
	if len(args) == 0 {
		return
	}
	var d struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(args[0], &d); err != nil {
		return
	}
	s.sendTo(c, protocol.OutReplyTimesync, timesyncReply{ID: d.ID, Result: s.now().UnixMilli()})
}

type timesyncReply struct {
	ID     json.RawMessage `json:"id"`
	Result int64           `json:"result"`
}
