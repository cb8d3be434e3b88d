package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/user/clipedit-cli/editor"
	"github.com/user/clipedit-cli/pkg/crop"
	"github.com/user/clipedit-cli/tui/forms"
)

// nudgeStep is how far one arrow press moves the crop box, as a fraction of
// the frame.
const nudgeStep = 0.01

type keyMap struct {
	Play      key.Binding
	Back      key.Binding
	Forward   key.Binding
	StepDown  key.Binding
	StepUp    key.Binding
	Speed     key.Binding
	Trim      key.Binding
	TrimStart key.Binding
	TrimEnd   key.Binding
	ResetTrim key.Binding
	Crop      key.Binding
	CropForm  key.Binding
	Presets   []key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Apply     key.Binding
	Discard   key.Binding
	Split     key.Binding
	Duplicate key.Binding
	Save      key.Binding
	Delete    key.Binding
	Command   key.Binding
	Help      key.Binding
	Close     key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Play:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		Back:      key.NewBinding(key.WithKeys("h", "H"), key.WithHelp("h", "step back")),
		Forward:   key.NewBinding(key.WithKeys("l", "L"), key.WithHelp("l", "step forward")),
		StepDown:  key.NewBinding(key.WithKeys("<", ","), key.WithHelp("<", "smaller step")),
		StepUp:    key.NewBinding(key.WithKeys(">", "."), key.WithHelp(">", "larger step")),
		Speed:     key.NewBinding(key.WithKeys("s", "S"), key.WithHelp("s", "cycle speed")),
		Trim:      key.NewBinding(key.WithKeys("t", "T"), key.WithHelp("t", "trim")),
		TrimStart: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "trim start")),
		TrimEnd:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "trim end")),
		ResetTrim: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset trim")),
		Crop:      key.NewBinding(key.WithKeys("c", "C"), key.WithHelp("c", "crop")),
		CropForm:  key.NewBinding(key.WithKeys("e", "E"), key.WithHelp("e", "edit crop")),
		Presets: []key.Binding{
			key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "full")),
			key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "80%")),
			key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "90%")),
		},
		Up:        key.NewBinding(key.WithKeys("up", "k")),
		Down:      key.NewBinding(key.WithKeys("down", "j")),
		Left:      key.NewBinding(key.WithKeys("left")),
		Right:     key.NewBinding(key.WithKeys("right")),
		Apply:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		Discard:   key.NewBinding(key.WithKeys("x", "X"), key.WithHelp("x", "discard")),
		Split:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "split")),
		Duplicate: key.NewBinding(key.WithKeys("d", "D"), key.WithHelp("d", "duplicate")),
		Save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Delete:    key.NewBinding(key.WithKeys("delete"), key.WithHelp("del", "delete")),
		Command:   key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Close:     key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "close")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// handleKey handles a key outside the command line and forms.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	mode := m.session.Mode()

	switch {
	case key.Matches(msg, k.Quit):
		m.session.Close()
		return m, m.afterEdit()

	case key.Matches(msg, k.Close):
		// pending trim and crop edits are dropped; only the rate is kept
		m.cropDrag = false
		m.session.Close()
		return m, m.afterEdit()

	case key.Matches(msg, k.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, k.Command):
		return m, m.commandInput.Activate()

	case key.Matches(msg, k.Play):
		m.togglePlay()
		return m, nil

	case key.Matches(msg, k.StepDown):
		m.decreaseStepSize()
		return m, nil

	case key.Matches(msg, k.StepUp):
		m.increaseStepSize()
		return m, nil

	case key.Matches(msg, k.Speed):
		if _, err := m.session.CycleRate(); err != nil {
			return m, m.flash(err.Error(), true)
		}
		return m, m.afterEdit()

	case key.Matches(msg, k.Trim):
		m.session.ToggleTrim()
		return m, m.afterEdit()

	case key.Matches(msg, k.TrimStart):
		m.setTrimPoint(editor.EdgeStart)
		return m, nil

	case key.Matches(msg, k.TrimEnd):
		m.setTrimPoint(editor.EdgeEnd)
		return m, nil

	case key.Matches(msg, k.ResetTrim):
		m.session.ResetTrim()
		return m, m.afterEdit()

	case key.Matches(msg, k.Crop):
		m.session.ToggleCrop()
		return m, m.afterEdit()

	case key.Matches(msg, k.Apply):
		switch mode {
		case editor.ModeTrimming:
			m.session.CommitTrim()
		case editor.ModeCropping:
			m.session.CommitCrop()
		}
		return m, m.afterEdit()

	case key.Matches(msg, k.Discard):
		m.cropDrag = false
		m.session.Cancel()
		return m, nil

	case key.Matches(msg, k.Split):
		return m, m.split()

	case key.Matches(msg, k.Duplicate):
		m.session.Duplicate()
		return m, m.afterEdit()

	case key.Matches(msg, k.Save):
		return m, m.save()

	case key.Matches(msg, k.Delete):
		return m, m.openDeleteForm()
	}

	if mode == editor.ModeCropping {
		return m, m.handleCropKey(msg)
	}

	switch {
	case key.Matches(msg, k.Back, k.Left):
		m.session.SeekBy(-m.stepSize)
	case key.Matches(msg, k.Forward, k.Right):
		m.session.SeekBy(m.stepSize)
	}
	return m, nil
}

func (m *Model) handleCropKey(msg tea.KeyMsg) tea.Cmd {
	k := m.keys
	for i, b := range k.Presets {
		if key.Matches(msg, b) && i < len(crop.Presets) {
			m.session.ApplyPreset(crop.Presets[i])
			return nil
		}
	}
	switch {
	case key.Matches(msg, k.CropForm):
		return m.openCropForm()
	case key.Matches(msg, k.Up):
		m.session.NudgeCrop(0, -nudgeStep)
	case key.Matches(msg, k.Down):
		m.session.NudgeCrop(0, nudgeStep)
	case key.Matches(msg, k.Left, k.Back):
		m.session.NudgeCrop(-nudgeStep, 0)
	case key.Matches(msg, k.Right, k.Forward):
		m.session.NudgeCrop(nudgeStep, 0)
	}
	return nil
}

// togglePlay starts playback from the beginning when the preview sits at
// the end of the clip.
func (m *Model) togglePlay() {
	st := m.session.State()
	d := st.EffectiveDuration()
	if !st.Playing && d > 0 && st.Position >= d {
		m.session.Seek(0)
	}
	m.session.TogglePlay()
}

// setTrimPoint marks one end of the trim at the playhead, entering trim
// mode first if needed.
func (m *Model) setTrimPoint(edge editor.Edge) {
	pos := m.session.Position()
	if m.session.Mode() != editor.ModeTrimming {
		m.session.EnterTrim()
	}
	m.session.SetTrimPoint(edge, pos)
}

// split cuts the clip at the playhead. When the store accepts the cut the
// session narrows to the first half, which keeps this clip's ID.
func (m *Model) split() tea.Cmd {
	if m.session.Mode() != editor.ModeNormal {
		return m.flash("Finish the current edit before splitting", true)
	}
	before := 0
	if m.collection != nil {
		before = len(m.collection.Created())
	}
	at := m.session.Split()
	if m.collection != nil && len(m.collection.Created()) > before {
		m.session.EnterTrim()
		m.session.SetTrimPoint(editor.EdgeStart, 0)
		m.session.SetTrimPoint(editor.EdgeEnd, at)
		m.session.CommitTrim()
	}
	return m.afterEdit()
}

func (m *Model) save() tea.Cmd {
	if !m.session.Save() {
		return nil
	}
	return tea.Tick(saveIndicatorDuration, func(time.Time) tea.Msg {
		return saveDoneMsg{}
	})
}

func (m *Model) decreaseStepSize() {
	i := m.findStepSizeIndex()
	if i > 0 {
		m.stepSize = stepSizes[i-1]
	}
}

func (m *Model) increaseStepSize() {
	i := m.findStepSizeIndex()
	if i < len(stepSizes)-1 {
		m.stepSize = stepSizes[i+1]
	}
}

// findStepSizeIndex returns the index of the current step size, or of the
// closest smaller one.
func (m *Model) findStepSizeIndex() int {
	for i, size := range stepSizes {
		if m.stepSize == size {
			return i
		}
	}
	for i, size := range stepSizes {
		if m.stepSize < size {
			return max(0, i-1)
		}
	}
	return len(stepSizes) - 1
}

func (m *Model) openCropForm() tea.Cmd {
	m.cropResult = forms.NewCropFormResult(m.session.State().VisibleCrop())
	m.form = forms.NewCropForm(m.cropResult)
	m.formKind = formCrop
	return m.form.Init()
}

func (m *Model) openDeleteForm() tea.Cmd {
	m.confirmDelete = false
	m.form = forms.NewConfirmDeleteForm(m.title, &m.confirmDelete)
	m.formKind = formDelete
	return m.form.Init()
}

// updateForm feeds msg to the open form and applies its result once it
// completes.
func (m *Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		m.closeForm()
		return m, nil
	}

	model, cmd := m.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.closeForm()
		return m, nil
	case huh.StateCompleted:
		kind := m.formKind
		m.closeForm()
		return m, m.finishForm(kind)
	}
	return m, cmd
}

func (m *Model) closeForm() {
	m.form = nil
	m.formKind = formNone
}

func (m *Model) finishForm(kind formKind) tea.Cmd {
	switch kind {
	case formCrop:
		r, err := m.cropResult.Rect(m.session.State().VisibleCrop())
		if err != nil {
			return m.flash(err.Error(), true)
		}
		m.session.SetTempCrop(r)
		return m.flash("Crop "+r.String(), false)
	case formDelete:
		if !m.confirmDelete {
			return nil
		}
		m.session.Delete()
		return m.afterEdit()
	}
	return nil
}
