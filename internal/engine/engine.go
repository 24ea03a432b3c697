package engine

import (
	"fmt"

	"github.com/JackWithOneEye/pcviewer/internal/animation"
	"github.com/JackWithOneEye/pcviewer/internal/lrucache"
	"github.com/JackWithOneEye/pcviewer/internal/protocol"
)

type EngineConfig interface {
	ShowAxes() bool
	ShowRings() bool
	FrameCacheSize() int
}

// Engine turns client messages into replies. It holds no per-session state
// and is safe for concurrent use by every session.
type Engine interface {
	Handshake() ([]byte, error)
	Dispatch(cmd *protocol.Command) (protocol.ServerMessage, error)
	SubmitMessage(b []byte) (Reply, error)
	TotalFrames() int
}

// Reply is the outcome of one SubmitMessage call. Command is empty when the
// message could not be decoded; Payload is nil when nothing is to be sent.
type Reply struct {
	Command  string
	FrameIdx int
	Payload  []byte
}

// UnknownCommandError is returned alongside an error reply.
type UnknownCommandError struct {
	Command string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q", e.Command)
}

type engine struct {
	cfg    EngineConfig
	buffer *animation.Buffer
	frames lrucache.LruCache[int, []byte]
}

func NewEngine(cfg EngineConfig, buffer *animation.Buffer) Engine {
	return &engine{
		cfg:    cfg,
		buffer: buffer,
		frames: lrucache.NewLruCache[int, []byte](cfg.FrameCacheSize()),
	}
}

func (e *engine) TotalFrames() int {
	return e.buffer.FrameCount()
}

func (e *engine) Handshake() ([]byte, error) {
	return protocol.Encode(protocol.NewInit(e.buffer.FrameCount(), e.cfg.ShowAxes(), e.cfg.ShowRings()))
}

func (e *engine) Dispatch(cmd *protocol.Command) (protocol.ServerMessage, error) {
	switch cmd.Name {
	case protocol.CommandLoadFrame:
		idx := e.frameIdx(cmd)
		f := e.buffer.FrameAt(idx)
		return protocol.NewPointCloud(idx, f.Points, f.Colors), nil
	default:
		return protocol.NewErrorReply(cmd.Name, "unknown command"), &UnknownCommandError{Command: cmd.Name}
	}
}

func (e *engine) SubmitMessage(b []byte) (Reply, error) {
	cmd, err := protocol.DecodeCommand(b)
	if err != nil {
		return Reply{FrameIdx: -1}, err
	}

	r := Reply{Command: cmd.Name, FrameIdx: -1}
	if cmd.Name == protocol.CommandLoadFrame {
		r.FrameIdx = e.frameIdx(cmd)
		if p, ok := e.frames.Get(r.FrameIdx); ok {
			r.Payload = p
			return r, nil
		}
	}

	msg, dispatchErr := e.Dispatch(cmd)
	if msg == nil {
		return r, dispatchErr
	}
	p, err := protocol.Encode(msg)
	if err != nil {
		return r, fmt.Errorf("handle command error: %w", err)
	}
	r.Payload = p
	if msg.MessageType() == protocol.TypePointCloud {
		e.frames.Add(r.FrameIdx, p)
	}
	return r, dispatchErr
}

// frameIdx resolves the wrapped frame; a missing or non-integer frame_idx means 0.
func (e *engine) frameIdx(cmd *protocol.Command) int {
	idx, _ := cmd.IntArg(protocol.ArgFrameIdx)
	return e.buffer.Wrap(idx)
}
