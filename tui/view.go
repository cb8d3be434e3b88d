package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/user/clipedit-cli/editor"
	"github.com/user/clipedit-cli/pkg/timeutil"
	"github.com/user/clipedit-cli/tui/components"
	"github.com/user/clipedit-cli/tui/layout"
	"github.com/user/clipedit-cli/tui/styles"
)

// View renders the editor. Zone markers are resolved here so pointer
// events can be hit-tested against the last frame.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading…"
	}
	return zone.Scan(m.render())
}

func (m *Model) render() string {
	st := m.session.State()
	bar := m.statusBarState(st)

	if m.showHelp {
		return components.HelpOverlay(m.width, m.height)
	}
	if m.form != nil {
		return components.StatusBar(bar, m.width) + "\n" + layout.Center(m.form.View(), m.width, m.height-1)
	}
	if m.width < layout.MinTerminalWidth || m.height < layout.MinTerminalHeight {
		return m.renderCompact(bar)
	}

	preview, showPanel := m.previewSize()
	previewView := components.Preview(components.PreviewState{
		Mode:       st.Mode,
		Playing:    st.Playing,
		Position:   st.Position,
		Crop:       st.VisibleCrop(),
		DragHandle: st.DragHandle,
		Notice:     m.notice,
	}, preview.width, preview.height)

	columns := previewView
	if showPanel {
		_, panelWidth, _ := layout.ComputeColumnWidths(m.width)
		panel := m.renderPanel(st, panelWidth, preview.height)
		columns = layout.JoinColumns([]string{previewView, panel}, []int{preview.width, panelWidth}, preview.height)
	} else {
		columns = strings.Join(layout.NormalizeLines(strings.Split(previewView, "\n"), preview.height), "\n")
	}

	return strings.Join([]string{
		components.StatusBar(bar, m.width),
		columns,
		components.Timeline(m.timelineState(st), m.width),
		m.renderCommandLine(st),
	}, "\n")
}

func (m *Model) statusBarState(st editor.State) components.StatusBarState {
	return components.StatusBarState{
		Title:     m.title,
		Mode:      st.Mode,
		Playing:   st.Playing,
		Position:  st.Position,
		Duration:  st.EffectiveDuration(),
		Rate:      st.Rate,
		StepSize:  m.stepSize,
		Saving:    st.Saving,
		Connected: m.connected,
		Crop:      st.Crop,
	}
}

func (m *Model) timelineState(st editor.State) components.TimelineState {
	mapper := st.Mapper()
	ts := components.TimelineState{
		Position:    st.Position,
		Duration:    mapper.EffectiveDuration(),
		RawStart:    mapper.ActiveStart(),
		RawEnd:      mapper.ActiveEnd(),
		RawDuration: st.RawDuration,
		Rate:        st.Rate,
	}
	if st.TempTrim != nil {
		ts.Trimming = true
		ts.MarkStart = st.TempTrim.Start
		ts.MarkEnd = st.TempTrim.End
	}
	return ts
}

// renderPanel renders the side panel: mode, clip summary and the controls
// for the current mode.
func (m *Model) renderPanel(st editor.State, width, height int) string {
	blocks := []string{
		components.ModeIndicator(st.Mode, modeDetail(st), width),
		components.RenderInfoBox("Details", m.clipLines(st), width),
	}
	for _, g := range components.ControlGroups(st.Mode) {
		blocks = append(blocks, components.RenderControlBox(g, width))
	}
	return layout.Container{Width: width, Height: height}.Render(strings.Join(blocks, "\n"))
}

func modeDetail(st editor.State) string {
	switch st.Mode {
	case editor.ModeTrimming:
		if st.TempTrim != nil {
			return fmt.Sprintf("%s – %s",
				timeutil.FormatClock(min(st.TempTrim.Start, st.TempTrim.End)),
				timeutil.FormatClock(max(st.TempTrim.Start, st.TempTrim.End)))
		}
	case editor.ModeCropping:
		if st.Dragging() {
			return "dragging " + st.DragHandle.String()
		}
		return "drag or arrows"
	}
	return ""
}

func (m *Model) clipLines(st editor.State) []string {
	dim := styles.SecondaryText
	text := styles.PrimaryText
	cropText := "full frame"
	if st.Crop != nil {
		cropText = st.Crop.String()
	}
	mapper := st.Mapper()
	return []string{
		text.Render(" " + layout.Ellipsize(m.title, 30)),
		dim.Render(" id " + layout.Ellipsize(st.ClipID, 30)),
		dim.Render(fmt.Sprintf(" source %s – %s", timeutil.FormatPrecise(mapper.ActiveStart()), timeutil.FormatPrecise(mapper.ActiveEnd()))),
		dim.Render(" speed " + components.FormatRate(st.Rate)),
		dim.Render(" crop " + cropText),
	}
}

// renderCommandLine shows the prompt or last result, or a one-line key
// summary when idle.
func (m *Model) renderCommandLine(st editor.State) string {
	if m.commandInput.Active() || m.commandInput.Result != "" {
		return m.commandInput.View(m.width)
	}
	return lipgloss.NewStyle().Background(styles.DarkPurple).Render(components.ControlsDisplay(st.Mode, m.width))
}

// renderCompact is the layout for terminals too small for the preview.
func (m *Model) renderCompact(bar components.StatusBarState) string {
	card := components.RenderMiniPlayer(bar, min(m.width, 44))
	body := lipgloss.JoinVertical(lipgloss.Left, card, m.commandInput.View(min(m.width, 44)))
	return layout.Center(body, m.width, m.height)
}
