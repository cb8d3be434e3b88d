// Package tui is the interactive clip editor: a bubbletea program that
// renders the edit session and feeds keys, pointer input and player events
// into it.
package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	zone "github.com/lrstanley/bubblezone"
	"github.com/user/clipedit-cli/config"
	"github.com/user/clipedit-cli/editor"
	"github.com/user/clipedit-cli/logging"
	"github.com/user/clipedit-cli/mpv"
	"github.com/user/clipedit-cli/playback"
	"github.com/user/clipedit-cli/tui/components"
	"github.com/user/clipedit-cli/tui/forms"
	"github.com/user/clipedit-cli/tui/layout"
)

const (
	// defaultPollInterval is how often connection state and notices are
	// refreshed when no config value is given.
	defaultPollInterval = 2 * time.Second
	// defaultStepSize is the default seek step size in seconds.
	defaultStepSize = 1.0
	// resultDisplayDuration is how long to show command results.
	resultDisplayDuration = 3 * time.Second
	// saveIndicatorDuration is how long the saving indicator stays up.
	saveIndicatorDuration = 300 * time.Millisecond
	// cropHitTolerance is how far from a crop handle, in cells, a press
	// still grabs it.
	cropHitTolerance = 1.0
)

// stepSizes are the seek step sizes cycled with < and >.
var stepSizes = []float64{0.1, 0.5, 1, 2, 5, 10, 30}

// EventSource delivers player events. *mpv.Client satisfies it.
type EventSource interface {
	Events() <-chan mpv.Event
	IsConnected() bool
}

// Collection reports what the clip store did with the last notification.
// *db.Collection satisfies it.
type Collection interface {
	TakeStatus() string
	Created() []string
}

// Options wires the editor to its collaborators. Session and Adapter are
// required; everything else may be nil.
type Options struct {
	Session       *editor.Session
	Adapter       *playback.Adapter
	Events        EventSource
	Collection    Collection
	Logger        *logging.Logger
	ConfigUpdates <-chan *config.Config
	Title         string
	PollInterval  time.Duration
}

type (
	tickMsg        time.Time
	clearResultMsg struct{}
	saveDoneMsg    struct{}
	mpvEventMsg    mpv.Event
	mpvClosedMsg   struct{}
	configMsg      *config.Config
)

type formKind int

const (
	formNone formKind = iota
	formCrop
	formDelete
)

// Model is the bubbletea model of the editor.
type Model struct {
	session    *editor.Session
	adapter    *playback.Adapter
	scrubber   *editor.Scrubber
	events     EventSource
	eventCh    <-chan mpv.Event
	collection Collection
	logger     *logging.Logger
	configCh   <-chan *config.Config
	title      string
	poll       time.Duration
	keys       keyMap

	width     int
	height    int
	stepSize  float64
	connected bool
	quitting  bool
	showHelp  bool
	notice    string

	commandInput components.CommandInput

	form          *huh.Form
	formKind      formKind
	cropResult    *forms.CropFormResult
	confirmDelete bool

	// scrubbing is set while a timeline press is tracked, cropDrag while
	// a crop handle is held.
	scrubbing bool
	cropDrag  bool
}

// NewModel creates the editor model.
func NewModel(opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	poll := opts.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}
	m := &Model{
		session:      opts.Session,
		adapter:      opts.Adapter,
		scrubber:     editor.NewScrubber(opts.Session, 0),
		events:       opts.Events,
		collection:   opts.Collection,
		logger:       logger,
		configCh:     opts.ConfigUpdates,
		title:        opts.Title,
		poll:         poll,
		keys:         defaultKeyMap(),
		stepSize:     defaultStepSize,
		commandInput: components.NewCommandInput(),
	}
	if m.title == "" {
		m.title = opts.Session.ID()
	}
	if m.events != nil {
		m.eventCh = m.events.Events()
		m.connected = m.events.IsConnected()
	}
	return m
}

// Init starts the ticker and the event pumps.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), waitForEvent(m.eventCh), waitForConfig(m.configCh))
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.poll, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForEvent turns the next player event into a message. The command is
// re-issued after every event so events are applied one at a time on the
// UI loop.
func waitForEvent(ch <-chan mpv.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return mpvClosedMsg{}
		}
		return mpvEventMsg(ev)
	}
}

func waitForConfig(ch <-chan *config.Config) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		cfg, ok := <-ch
		if !ok {
			return nil
		}
		return configMsg(cfg)
	}
}

func clearResultCmd() tea.Cmd {
	return tea.Tick(resultDisplayDuration, func(time.Time) tea.Msg {
		return clearResultMsg{}
	})
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tickMsg:
		if m.events != nil {
			m.connected = m.events.IsConnected()
		}
		return m, tea.Batch(m.tickCmd(), m.collectStatus())

	case mpvEventMsg:
		mpv.Dispatch(mpv.Event(msg), m.adapter)
		return m, tea.Batch(waitForEvent(m.eventCh), m.collectStatus())

	case mpvClosedMsg:
		m.connected = false
		m.eventCh = nil
		m.logger.Warn("player connection closed")
		return m, m.flash("Player connection closed", true)

	case configMsg:
		m.applyConfig(msg)
		return m, waitForConfig(m.configCh)

	case clearResultMsg:
		m.commandInput.ClearResult()
		m.notice = ""
		return m, nil

	case saveDoneMsg:
		m.session.FinishSave()
		return m, m.collectStatus()
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		if m.commandInput.Active() {
			return m.handleCommandInput(msg)
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	if m.commandInput.Active() {
		return m, m.commandInput.Update(msg)
	}
	return m, nil
}

// resize recomputes the scrub track and crop grid for the terminal size.
func (m *Model) resize() {
	n := components.TimelineTrackWidth(m.width)
	m.scrubber.SetWidth(float64(n - 1))

	preview, _ := m.previewSize()
	cols, rows := components.PreviewGrid(preview.width, preview.height)
	if cols < 3 || rows < 3 {
		m.session.SetContainerSize(0, 0)
		return
	}
	g := components.GridGeometry(cols, rows)
	m.session.SetContainerSize(g.Container.Width, g.Container.Height)
}

type box struct{ width, height int }

// previewSize returns the preview box and whether the side panel is shown.
func (m *Model) previewSize() (box, bool) {
	preview, _, showPanel := layout.ComputeColumnWidths(m.width)
	return box{width: preview, height: m.columnHeight()}, showPanel
}

// columnHeight is what is left between the status bar on top and the
// timeline and command line at the bottom.
func (m *Model) columnHeight() int {
	return max(0, m.height-1-components.TimelineHeight-1)
}

func (m *Model) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	m.adapter.SetHysteresis(cfg.Playback.SeekHysteresis)
	if cfg.Playback.PollInterval > 0 {
		m.poll = cfg.Playback.PollInterval
	}
	if err := m.logger.SetLevel(cfg.Log.Level); err != nil {
		m.logger.Warn("ignoring log level from config", "error", err)
	}
	m.logger.Info("config reloaded", "hysteresis", cfg.Playback.SeekHysteresis, "level", cfg.Log.Level)
}

// flash shows msg on the command line for a few seconds.
func (m *Model) flash(msg string, isError bool) tea.Cmd {
	if msg == "" {
		return nil
	}
	m.commandInput.SetResult(msg, isError)
	return clearResultCmd()
}

// collectStatus picks up session notices and collection status messages.
func (m *Model) collectStatus() tea.Cmd {
	if n := m.session.TakeNotice(); n != "" {
		m.notice = n
		return m.flash(n, true)
	}
	if m.collection != nil {
		if s := m.collection.TakeStatus(); s != "" {
			return m.flash(s, strings.HasPrefix(s, "Failed"))
		}
	}
	return nil
}

// afterEdit runs after every user command: it quits once the session is
// closed and otherwise reports what happened.
func (m *Model) afterEdit() tea.Cmd {
	if m.session.Closed() {
		m.quitting = true
		return tea.Quit
	}
	return m.collectStatus()
}

// Run starts the editor and blocks until it exits.
func Run(opts Options) error {
	zone.NewGlobal()
	defer zone.Close()

	model := NewModel(opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
