package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dd0wney/cluso-netviz/pkg/engine"
	"github.com/dd0wney/cluso-netviz/pkg/logging"
	"github.com/dd0wney/cluso-netviz/pkg/network"
	"github.com/dd0wney/cluso-netviz/pkg/telemetry"
)

// headerLines is the number of rows above the canvas.
const headerLines = 1

type frameMsg time.Time

type telemetryMsg telemetry.Message

// SourceDoneMsg reports that the telemetry source returned.
type SourceDoneMsg struct{ Err error }

// Model is the bubbletea model. Its Update loop owns the engine: every
// engine call happens there or in View.
type Model struct {
	eng    *engine.Engine
	msgs   <-chan telemetry.Message
	errs   <-chan error
	logger logging.Logger

	keys keyMap
	help help.Model

	frame  time.Duration
	width  int
	height int
	proj   Projector

	hovered   *network.NodeID
	overPopup bool
	dragging  *network.NodeID

	status    string
	statusErr bool
}

// Option configures a Model.
type Option func(*Model)

// WithMessages feeds decoded telemetry into the engine. The channel is
// read until it is closed.
func WithMessages(msgs <-chan telemetry.Message) Option {
	return func(m *Model) { m.msgs = msgs }
}

// WithSourceErrors carries the source's exit error. A value sent on errs
// before the message channel closes ends up in SourceDoneMsg.Err.
func WithSourceErrors(errs <-chan error) Option {
	return func(m *Model) { m.errs = errs }
}

// WithLogger sets the model logger.
func WithLogger(logger logging.Logger) Option {
	return func(m *Model) { m.logger = logger }
}

// NewModel creates a model driving eng.
func NewModel(eng *engine.Engine, opts ...Option) *Model {
	m := &Model{
		eng:    eng,
		logger: logging.NewNopLogger(),
		keys:   keys,
		help:   help.New(),
		frame:  eng.Config().Server.FrameInterval,
	}
	if m.frame <= 0 {
		m.frame = 16 * time.Millisecond
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(logging.Component("tui"))
	m.layout(80, 24)
	return m
}

func frameCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func waitForMessage(msgs <-chan telemetry.Message, errs <-chan error) tea.Cmd {
	if msgs == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-msgs
		if !ok {
			var done SourceDoneMsg
			select {
			case done.Err = <-errs:
			default:
			}
			return done
		}
		return telemetryMsg(msg)
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(frameCmd(m.frame), waitForMessage(m.msgs, m.errs))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout(msg.Width, msg.Height)
		m.help.Width = msg.Width

	case frameMsg:
		m.eng.Frame(time.Time(msg))
		return m, frameCmd(m.frame)

	case telemetryMsg:
		m.eng.HandleMessage(telemetry.Message(msg))
		return m, waitForMessage(m.msgs, m.errs)

	case SourceDoneMsg:
		if msg.Err != nil {
			m.setStatus(fmt.Sprintf("telemetry source stopped: %v", msg.Err), true)
		} else {
			m.setStatus("telemetry source finished", false)
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Stop):
			m.control("stop")
		case key.Matches(msg, m.keys.Start):
			m.control("start")
		case key.Matches(msg, m.keys.Reset):
			m.control("reset")
			m.hovered, m.dragging, m.overPopup = nil, nil, false
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.layout(m.width, m.height)
		}

	case tea.MouseMsg:
		m.pointer(msg, time.Now())
	}
	return m, nil
}

func (m *Model) control(action string) {
	if err := m.eng.Control(action); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.setStatus(action, false)
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status, m.statusErr = s, isErr
	if isErr {
		m.logger.Warn("tui status", logging.String("status", s))
	}
}

// layout sizes the canvas to the terminal and keeps the projection in sync
// with the engine viewport.
func (m *Model) layout(width, height int) {
	m.width, m.height = width, height
	helpLines := 1
	if m.help.ShowAll {
		helpLines = len(m.keys.FullHelp()) + 1
	}
	vp := m.eng.Graph().Config().Layout
	m.proj = Projector{
		Width:  vp.Width,
		Height: vp.Height,
		Cols:   max(width, 1),
		Rows:   max(height-headerLines-helpLines, 1),
	}
}

// pointer turns terminal mouse events into popup and drag events.
func (m *Model) pointer(msg tea.MouseMsg, now time.Time) {
	x, y := m.proj.ToWorld(msg.X, msg.Y-headerLines)
	popup := m.eng.Popup()

	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if n, ok := m.eng.Graph().NodeAt(x, y); ok {
			id := n.ID
			m.dragging = &id
			popup.DragStart(id)
		}
	case msg.Action == tea.MouseActionRelease:
		if m.dragging != nil {
			popup.DragEnd(*m.dragging, popup.Contains(x, y))
			m.dragging = nil
		}
	case msg.Action == tea.MouseActionMotion && m.dragging != nil:
		if err := popup.DragMove(*m.dragging, x, y); err != nil {
			m.logger.Debug("drag rejected", logging.Error(err))
		}
		return
	}
	m.hover(x, y, now)
}

func (m *Model) hover(x, y float64, now time.Time) {
	popup := m.eng.Popup()

	var over *network.NodeID
	if n, ok := m.eng.Graph().NodeAt(x, y); ok {
		id := n.ID
		over = &id
	}
	inPopup := popup.Contains(x, y)

	if !sameNode(over, m.hovered) {
		if m.hovered != nil {
			popup.HoverLeaveNode(*m.hovered, inPopup, now)
		}
		if over != nil {
			popup.HoverEnterNode(*over)
		}
		m.hovered = over
	}

	if inPopup != m.overPopup {
		if inPopup {
			popup.HoverEnterPopup()
		} else {
			owner, _ := popup.Owner()
			popup.HoverLeavePopup(over != nil && *over == owner, now)
		}
		m.overPopup = inPopup
	}
}

func sameNode(a, b *network.NodeID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (m *Model) View() string {
	snap := m.eng.Snapshot()

	c := NewCanvas(m.proj.Cols, m.proj.Rows)
	DrawSnapshot(c, snap, m.proj)

	var b strings.Builder
	b.WriteString(m.header(snap))
	b.WriteByte('\n')
	b.WriteString(c.Render(canvasStyles))
	b.WriteByte('\n')
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) header(snap *engine.Snapshot) string {
	if !snap.Drawn {
		return headerStyle.Render("netviz") + statusStyle.Render(fmt.Sprintf("  waiting for topology (%d buffered)", snap.Buffered))
	}
	state := snap.Scheduler.State
	if snap.Scheduler.Stopped {
		state += " (stopped)"
	}
	line := headerStyle.Render("netviz") + statusStyle.Render(fmt.Sprintf("  layers %v  epoch %d  loss %s  %s  queued %d",
		snap.Graph.Layers, snap.Graph.Epoch, snap.Graph.Loss, state, snap.Scheduler.Queued))
	if m.status != "" {
		st := statusStyle
		if m.statusErr {
			st = errorStyle
		}
		line += "  " + st.Render(m.status)
	}
	return line
}
