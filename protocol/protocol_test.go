package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeBuildsArrayFrames(t *testing.T) {
	tests := []struct {
		name string
		op   string
		args []any
		want string
	}{
		{
			name: "no args",
			op:   OutReturnToLobby,
			want: `["13"]`,
		},
		{
			name: "single string arg",
			op:   OutErrorMessage,
			args: []any{ErrCodeRoomFull},
			want: `["16","room_full"]`,
		},
		{
			name: "scalar args keep order",
			op:   OutPlayerLeft,
			args: []any{3, 1520},
			want: `["5",3,1520]`,
		},
		{
			name: "raw payload relayed verbatim",
			op:   OutSendInputs,
			args: []any{0, json.RawMessage(`{"i":12,"f":881}`)},
			want: `["7",0,{"i":12,"f":881}]`,
		},
		{
			name: "null arg",
			op:   OutServerInform,
			args: []any{0, 0, []any{}, 0, false, 0, "invalid", nil},
			want: `["3",0,0,[],0,false,0,"invalid",null]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := Encode(tt.op, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(frame))
		})
	}
}

func TestDecodeSplitsOpcodeAndArgs(t *testing.T) {
	op, args, err := Decode([]byte(`["13",{"userName":"alice","guest":false,"level":5}]`))
	require.NoError(t, err)
	assert.Equal(t, InJoinRequest, op)
	require.Len(t, args, 1)
	assert.JSONEq(t, `{"userName":"alice","guest":false,"level":5}`, string(args[0]))
}

func TestDecodeRejectsBadFrames(t *testing.T) {
	tests := []struct {
		name  string
		frame string
	}{
		{"not json", `hello`},
		{"not an array", `{"type":"join"}`},
		{"empty array", `[]`},
		{"numeric opcode", `[13,{}]`},
		{"null opcode", `[null]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode([]byte(tt.frame))
			assert.Error(t, err)
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	frames := []struct {
		op   string
		args []any
	}{
		{InJoinRequest, []any{map[string]any{"userName": "bob", "guest": true, "level": "12", "avatar": map[string]any{}, "roomPassword": nil}}},
		{InChatMessage, []any{map[string]any{"message": "hi there"}}},
		{OutTransferHost, []any{map[string]any{"oldHost": 0, "newHost": 1}}},
		{OutStartGame, []any{1719328501123, json.RawMessage(`{"seed":4}`), json.RawMessage(`{"map":"ILAcJA","gt":2}`)}},
		{OutHostLeft, []any{1, 0, 44512}},
	}

	for _, f := range frames {
		frame, err := Encode(f.op, f.args...)
		require.NoError(t, err)

		op, args, err := Decode(frame)
		require.NoError(t, err)
		assert.Equal(t, f.op, op)
		require.Len(t, args, len(f.args))

		for i, want := range f.args {
			wantJSON, err := json.Marshal(want)
			require.NoError(t, err)
			assert.JSONEq(t, string(wantJSON), string(args[i]))
		}
	}
}
