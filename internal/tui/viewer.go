package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/JackWithOneEye/pcviewer/internal/lrucache"
	"github.com/JackWithOneEye/pcviewer/internal/protocol"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/coder/websocket"
)

const (
	minFPS     = 1
	maxFPS     = 60
	defaultFPS = 30
)

type tickMsg struct{}

// sgrPrefixCache caches the SGR prefix for a color, used by the RLE renderer
var sgrPrefixCache = lrucache.NewLruCache[uint32, string](2048)

type viewerModel struct {
	addr      string
	conn      *websocket.Conn
	connected bool
	err       error
	spinner   spinner.Model

	totalFrames int
	frame       int
	showAxes    bool
	playing     bool
	pending     bool
	fps         int

	cloud     *protocol.PointCloud
	extent    float64
	width     int
	height    int
	termWidth int
	rows      []string
}

func newViewerModel(addr string) *viewerModel {
	return &viewerModel{
		addr:      addr,
		fps:       defaultFPS,
		width:     80,
		height:    20,
		termWidth: 82,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
	}
}

func tick(fps int) tea.Cmd {
	return tea.Tick(time.Second/time.Duration(fps), func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func getSGRPrefix(color uint32) string {
	if s, ok := sgrPrefixCache.Get(color); ok {
		return s
	}
	r := (color >> 16) & 0xff
	g := (color >> 8) & 0xff
	b := color & 0xff
	prefix := fmt.Sprintf("\x1b[38;2;%d;%d;%dm", r, g, b)
	sgrPrefixCache.Add(color, prefix)
	return prefix
}

func (m *viewerModel) Init() tea.Cmd {
	m.rerender()
	return tea.Batch(connectToServer(m.addr), m.spinner.Tick, tick(m.fps))
}

func (m *viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case " ":
			m.playing = !m.playing
		case "h", "left":
			m.playing = false
			return m, m.load(m.frame - 1)
		case "l", "right":
			m.playing = false
			return m, m.load(m.frame + 1)
		case "home", "0":
			return m, m.load(0)
		case "+", "=":
			m.fps = min(m.fps+1, maxFPS)
		case "-":
			m.fps = max(m.fps-1, minFPS)
		case "a":
			m.showAxes = !m.showAxes
			m.rerender()
		}
	case quitMessage:
		if m.conn != nil {
			m.conn.Close(websocket.StatusNormalClosure, "")
			m.conn = nil
		}
		m.connected = false
	case connectionResult:
		m.err = msg.Err
		m.conn = msg.Conn
		m.connected = msg.Conn != nil
		if m.isConnected() {
			return m, listenForMessages(m.conn)
		}
	case wsMessage:
		if msg.Err != nil {
			m.err = msg.Err
			m.connected = false
			return m, nil
		}
		cmd := m.handleServerMessage(msg.Message)
		if m.isConnected() {
			return m, tea.Batch(cmd, listenForMessages(m.conn))
		}
		return m, cmd
	case tickMsg:
		var cmd tea.Cmd
		if m.playing && !m.pending {
			cmd = m.load(m.frame + 1)
		}
		return m, tea.Batch(cmd, tick(m.fps))
	case spinner.TickMsg:
		if !m.connected && m.err == nil {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		// 1 header line, 1 status line and the frame borders
		if msg.Height > 4 && msg.Width > 2 {
			m.height = msg.Height - 4
			m.width = msg.Width - 2
			m.rerender()
		}
	}
	return m, nil
}

func (m *viewerModel) handleServerMessage(msg protocol.ServerMessage) tea.Cmd {
	switch msg := msg.(type) {
	case *protocol.Init:
		m.totalFrames = msg.TotalFrames
		m.showAxes = msg.ShowAxes
		m.rerender()
		return m.load(0)
	case *protocol.PointCloud:
		m.pending = false
		m.frame = msg.FrameIdx
		m.cloud = msg
		m.extent = max(m.extent, maxExtent(msg))
		m.rerender()
	case *protocol.ErrorReply:
		m.pending = false
		m.err = fmt.Errorf("server rejected %s: %s", msg.Command, msg.Message)
	}
	return nil
}

// load asks for frame idx. The server wraps out-of-range indices.
func (m *viewerModel) load(idx int) tea.Cmd {
	if !m.isConnected() {
		return nil
	}
	m.pending = true
	return sendLoadFrame(m.conn, idx)
}

func (m *viewerModel) isConnected() bool {
	return m.connected && m.conn != nil
}

func (m *viewerModel) rerender() {
	extent := m.extent
	if extent == 0 {
		extent = 1
	}
	grid := rasterize(m.cloud, m.width, m.height, extent)
	m.rows = make([]string, m.height)
	for y := range grid {
		m.rows[y] = m.renderRowRLE(grid[y], y)
	}
}

// renderRowRLE renders one row, emitting an SGR sequence only when the color changes
func (m *viewerModel) renderRowRLE(row []uint32, y int) string {
	var b strings.Builder
	b.Grow(len(row) + 64)

	axisRow := m.showAxes && y == m.height/2
	axisCol := len(row) / 2

	current := emptyCell
	open := false
	for x, color := range row {
		if color != current {
			if open {
				b.WriteString("\x1b[0m")
				open = false
			}
			if color != emptyCell {
				b.WriteString(getSGRPrefix(color))
				open = true
			}
			current = color
		}
		switch {
		case color != emptyCell:
			b.WriteString("•")
		case axisRow && x == axisCol:
			b.WriteString(axisStyle.Render("┼"))
		case axisRow:
			b.WriteString(axisStyle.Render("─"))
		case m.showAxes && x == axisCol:
			b.WriteString(axisStyle.Render("│"))
		default:
			b.WriteString(" ")
		}
	}
	if open {
		b.WriteString("\x1b[0m")
	}
	return b.String()
}

func (m *viewerModel) View() string {
	var s strings.Builder

	title := titleStyle.Render("pcviewer")
	if !m.connected && m.err == nil {
		title += " " + m.spinner.View()
	}
	frame := "-"
	if m.totalFrames > 0 {
		frame = fmt.Sprintf("%d/%d", m.frame+1, m.totalFrames)
	}
	points := 0
	if m.cloud != nil {
		points = len(m.cloud.Points)
	}
	status := statusStyle.Render(fmt.Sprintf("%s • %s • Frame: %s • Points: %d • FPS: %d",
		playingStatus(m.playing),
		connectedStatus(m.connected),
		frame, points, m.fps))

	availableWidth := m.termWidth - 2
	header := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1).Width(m.termWidth).Render(
		lipgloss.JoinHorizontal(lipgloss.Top,
			title,
			lipgloss.NewStyle().Width(max(0, availableWidth-lipgloss.Width(title)-lipgloss.Width(status))).Render(""),
			status))
	s.WriteString(header)
	s.WriteString("\n")

	grid := lipgloss.NewStyle().Width(m.width).Render(lipgloss.JoinVertical(lipgloss.Left, m.rows...))
	s.WriteString(frameStyle.Render(grid))
	s.WriteString("\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	} else {
		s.WriteString(hintStyle.Render("[space] play/pause  [←/→] step  [?] help  [q] quit"))
	}
	return s.String()
}
