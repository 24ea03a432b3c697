package tui

import (
	"context"
	"fmt"
	"net/url"

	"github.com/JackWithOneEye/pcviewer/internal/protocol"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"
)

// readLimit bounds a single point_cloud message.
const readLimit = 1 << 25

type wsMessage struct {
	Message protocol.ServerMessage
	Err     error
}

type connectionResult struct {
	Conn *websocket.Conn
	Err  error
}

func connectToServer(addr string) tea.Cmd {
	return func() tea.Msg {
		u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
		conn, _, err := websocket.Dial(context.Background(), u.String(), nil)
		if err != nil {
			return connectionResult{Err: fmt.Errorf("websocket connection failed: %w", err)}
		}
		conn.SetReadLimit(readLimit)
		return connectionResult{Conn: conn}
	}
}

func listenForMessages(conn *websocket.Conn) tea.Cmd {
	return func() tea.Msg {
		_, data, err := conn.Read(context.Background())
		if err != nil {
			return wsMessage{Err: err}
		}
		msg, err := protocol.DecodeServerMessage(data)
		if err != nil {
			return wsMessage{Err: fmt.Errorf("failed to decode server message: %w", err)}
		}
		return wsMessage{Message: msg}
	}
}

func sendLoadFrame(conn *websocket.Conn, idx int) tea.Cmd {
	return func() tea.Msg {
		b, err := protocol.LoadFrame(idx).Encode()
		if err != nil {
			log.Error().Err(err).Int("frame_idx", idx).Msg("could not encode load_frame")
			return nil
		}
		if err := conn.Write(context.Background(), websocket.MessageText, b); err != nil {
			log.Error().Err(err).Int("frame_idx", idx).Msg("error sending load_frame")
		}
		return nil
	}
}
