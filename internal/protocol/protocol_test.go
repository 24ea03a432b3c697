package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCommand(t *testing.T) {
	cmd, err := DecodeCommand([]byte(`{"command":"load_frame","frame_idx":5}`))
	require.NoError(t, err)
	assert.Equal(t, CommandLoadFrame, cmd.Name)
	assert.NotContains(t, cmd.Args, "command")

	idx, ok := cmd.IntArg(ArgFrameIdx)
	assert.True(t, ok)
	assert.Equal(t, 5, idx)
}

func TestDecodeCommandErrors(t *testing.T) {
	for name, payload := range map[string]string{
		"not json":        `{"command":`,
		"plain text":      `hello`,
		"array":           `["load_frame"]`,
		"null":            `null`,
		"missing command": `{"frame_idx":1}`,
		"null command":    `{"command":null}`,
		"numeric command": `{"command":3}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeCommand([]byte(payload))
			var decodeErr *DecodeError
			assert.ErrorAs(t, err, &decodeErr)
		})
	}
}

func TestIntArg(t *testing.T) {
	for raw, want := range map[string]struct {
		idx int
		ok  bool
	}{
		`0`:          {0, true},
		`-4`:         {-4, true},
		`123456789`:  {123456789, true},
		`5.0`:        {5, true},
		`2e1`:        {20, true},
		`5.5`:        {0, false},
		`"5"`:        {0, false},
		`true`:       {0, false},
		`null`:       {0, false},
		`[1]`:        {0, false},
		`{"a":1}`:    {0, false},
		`1e400`:      {0, false},
		`-9.3e18000`: {0, false},
	} {
		cmd, err := DecodeCommand([]byte(`{"command":"load_frame","frame_idx":` + raw + `}`))
		require.NoError(t, err, raw)
		idx, ok := cmd.IntArg(ArgFrameIdx)
		assert.Equal(t, want.ok, ok, raw)
		assert.Equal(t, want.idx, idx, raw)
	}

	cmd, err := DecodeCommand([]byte(`{"command":"load_frame"}`))
	require.NoError(t, err)
	_, ok := cmd.IntArg(ArgFrameIdx)
	assert.False(t, ok)
}

func TestLoadFrameEncode(t *testing.T) {
	b, err := LoadFrame(-3).Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"command":"load_frame","frame_idx":-3}`, string(b))

	cmd, err := DecodeCommand(b)
	require.NoError(t, err)
	idx, ok := cmd.IntArg(ArgFrameIdx)
	assert.True(t, ok)
	assert.Equal(t, -3, idx)
}

func TestEncodeServerMessages(t *testing.T) {
	b, err := Encode(NewInit(3, true, false))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"init","total_frames":3,"show_axes":true,"show_rings":false}`, string(b))

	b, err = Encode(NewPointCloud(2, [][3]float64{{0, 0, 0}, {1, 1, 1}}, [][3]float64{{0, 0, 1}, {0, 0, 1}}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"point_cloud","frame_idx":2,"points":[[0,0,0],[1,1,1]],"colors":[[0,0,1],[0,0,1]]}`, string(b))

	b, err = Encode(NewPointCloud(0, nil, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"point_cloud","frame_idx":0,"points":[],"colors":[]}`, string(b))

	b, err = Encode(NewErrorReply("jump", "unknown command"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"error","command":"jump","error":"unknown command"}`, string(b))
}

func TestDecodeServerMessage(t *testing.T) {
	msg, err := DecodeServerMessage([]byte(`{"type":"point_cloud","frame_idx":1,"points":[[1,2,3]],"colors":[[0,0,1]]}`))
	require.NoError(t, err)
	pc, ok := msg.(*PointCloud)
	require.True(t, ok)
	assert.Equal(t, 1, pc.FrameIdx)
	assert.Equal(t, [][3]float64{{1, 2, 3}}, pc.Points)

	msg, err = DecodeServerMessage([]byte(`{"type":"init","total_frames":30,"show_axes":true,"show_rings":true}`))
	require.NoError(t, err)
	assert.Equal(t, NewInit(30, true, true), msg)

	_, err = DecodeServerMessage([]byte(`{"type":"bogus"}`))
	assert.Error(t, err)
}
