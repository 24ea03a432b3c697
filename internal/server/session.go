package server

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/JackWithOneEye/pcviewer/internal/engine"
	"github.com/JackWithOneEye/pcviewer/internal/metrics"
	"github.com/JackWithOneEye/pcviewer/internal/protocol"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const writeTimeout = 10 * time.Second

var errBinaryFrame = errors.New("binary frames are not supported")

// Session is one connected viewer. Its command loop runs on the goroutine
// that accepted the connection.
type Session struct {
	id        string
	remote    string
	conn      *websocket.Conn
	log       zerolog.Logger
	connected time.Time
	frames    atomic.Int64
	commands  atomic.Int64
}

func newSession(conn *websocket.Conn, remote string, logger zerolog.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		id:        id,
		remote:    remote,
		conn:      conn,
		log:       logger.With().Str("session", id).Str("remote", remote).Logger(),
		connected: time.Now(),
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) RemoteAddr() string {
	return s.remote
}

func (s *Session) FramesServed() int64 {
	return s.frames.Load()
}

func (s *Session) write(ctx context.Context, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := s.conn.Write(ctx, websocket.MessageText, payload); err != nil {
		return err
	}
	metrics.BytesSent.Add(float64(len(payload)))
	return nil
}

// serve answers commands one at a time until the transport fails. Bad
// messages are logged and skipped. A zero idle disables the idle timeout.
func (s *Session) serve(ctx context.Context, eng engine.Engine, idle time.Duration) error {
	for {
		readCtx, cancel := ctx, context.CancelFunc(func() {})
		if idle > 0 {
			readCtx, cancel = context.WithTimeout(ctx, idle)
		}
		typ, data, err := s.conn.Read(readCtx)
		cancel()
		if err != nil {
			return err
		}
		s.commands.Add(1)

		if typ != websocket.MessageText {
			metrics.MessagesTotal.WithLabelValues("", metrics.StatusDecodeError).Inc()
			s.log.Warn().Err(errBinaryFrame).Int("bytes", len(data)).Msg("dropping client message")
			continue
		}

		s.log.Trace().Bytes("message", data).Msg("received message")
		reply, err := eng.SubmitMessage(data)
		metrics.MessagesTotal.WithLabelValues(commandLabel(reply.Command), status(err)).Inc()
		if err != nil {
			s.log.Warn().Err(err).Msg("websocket command produced an error")
		}
		if reply.Payload == nil {
			continue
		}

		if err := s.write(ctx, reply.Payload); err != nil {
			return err
		}
		if reply.Command == protocol.CommandLoadFrame && err == nil {
			s.frames.Add(1)
			metrics.FramesServed.Inc()
			s.log.Debug().Int("frame", reply.FrameIdx).Int("bytes", len(reply.Payload)).Msg("sent frame")
		}
	}
}

func (s *Session) close(code websocket.StatusCode, reason string) {
	if s.conn == nil {
		return
	}
	if err := s.conn.Close(code, reason); err != nil {
		s.log.Debug().Err(err).Msg("close")
	}
}

// commandLabel keeps arbitrary client input out of metric labels.
func commandLabel(cmd string) string {
	switch cmd {
	case "", protocol.CommandLoadFrame:
		return cmd
	default:
		return "other"
	}
}

func status(err error) string {
	var decodeErr *protocol.DecodeError
	var unknownErr *engine.UnknownCommandError
	switch {
	case err == nil:
		return metrics.StatusOK
	case errors.As(err, &decodeErr):
		return metrics.StatusDecodeError
	case errors.As(err, &unknownErr):
		return metrics.StatusUnknownCommand
	default:
		return metrics.StatusEncodeError
	}
}
