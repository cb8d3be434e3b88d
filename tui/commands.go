package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/user/clipedit-cli/editor"
	"github.com/user/clipedit-cli/pkg/crop"
	"github.com/user/clipedit-cli/pkg/timeutil"
	"github.com/user/clipedit-cli/tui/components"
)

const commandHelp = "Commands: seek <time>, speed [rate], trim <start> <end>, trim reset, crop <x> <y> <w> <h>, preset <1-3>, split, dup, save, step <s>, quit"

// handleCommandInput handles keys while the ':' prompt is open.
func (m *Model) handleCommandInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.commandInput.Cancel()
		return m, nil
	case tea.KeyCtrlC:
		m.commandInput.Cancel()
		m.session.Close()
		return m, m.afterEdit()
	case tea.KeyEnter:
		line := m.commandInput.Submit()
		if strings.TrimSpace(line) == "" {
			return m, nil
		}
		result, cmd, err := m.executeCommand(line)
		if m.session.Closed() {
			return m, m.afterEdit()
		}
		if err != nil {
			return m, m.flash("Error: "+err.Error(), true)
		}
		if result == "" {
			return m, tea.Batch(cmd, m.collectStatus())
		}
		return m, tea.Batch(cmd, m.flash(result, false))
	}
	return m, m.commandInput.Update(msg)
}

// executeCommand runs one command line and returns the message to show and
// any follow-up command.
func (m *Model) executeCommand(line string) (string, tea.Cmd, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return "", nil, nil
	}
	name, args := parts[0], parts[1:]

	switch name {
	case "seek":
		if len(args) < 1 {
			return "", nil, fmt.Errorf("seek requires a time argument (e.g., seek 1:30 or seek 90)")
		}
		t, err := timeutil.ParseTimeToSeconds(args[0])
		if err != nil {
			return "", nil, err
		}
		if m.session.Mode() == editor.ModeCropping {
			return "", nil, fmt.Errorf("cannot seek while cropping")
		}
		m.session.Seek(t)
		return "Seeked to " + timeutil.FormatPrecise(m.session.Position()), nil, nil

	case "speed":
		if len(args) < 1 {
			return "Speed: " + components.FormatRate(m.session.Rate()), nil, nil
		}
		rate, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "x"), 64)
		if err != nil {
			return "", nil, fmt.Errorf("invalid speed: %s", args[0])
		}
		if err := m.session.SetRate(rate); err != nil {
			return "", nil, err
		}
		return "Speed set to " + components.FormatRate(rate), nil, nil

	case "trim":
		result, err := m.trimCommand(args)
		return result, nil, err

	case "crop":
		result, err := m.cropCommand(args)
		return result, nil, err

	case "preset":
		if len(args) < 1 {
			return "", nil, fmt.Errorf("preset requires a number 1-%d", len(crop.Presets))
		}
		i, err := strconv.Atoi(args[0])
		if err != nil || i < 1 || i > len(crop.Presets) {
			return "", nil, fmt.Errorf("unknown preset: %s", args[0])
		}
		m.session.EnterCrop()
		m.session.ApplyPreset(crop.Presets[i-1])
		return "Preset " + crop.Presets[i-1].Name + " (press c to apply)", nil, nil

	case "split":
		return "", m.split(), nil

	case "dup", "duplicate":
		m.session.Duplicate()
		return "", nil, nil

	case "save", "w":
		return "Saving", m.save(), nil

	case "step":
		if len(args) < 1 {
			return "Step: " + components.FormatStepSize(m.stepSize), nil, nil
		}
		v, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "s"), 64)
		if err != nil || v <= 0 {
			return "", nil, fmt.Errorf("invalid step: %s", args[0])
		}
		m.stepSize = v
		return "Step set to " + components.FormatStepSize(v), nil, nil

	case "q", "quit":
		m.session.Close()
		return "", nil, nil

	case "help", "h":
		return commandHelp, nil, nil

	default:
		return "", nil, fmt.Errorf("unknown command: %s", name)
	}
}

// trimCommand handles "trim <start> <end>" in effective time and
// "trim reset".
func (m *Model) trimCommand(args []string) (string, error) {
	if len(args) == 1 && args[0] == "reset" {
		m.session.ResetTrim()
		return "Trim reset", nil
	}
	if len(args) != 2 {
		return "", fmt.Errorf("usage: trim <start> <end> or trim reset")
	}
	start, err := timeutil.ParseTimeToSeconds(args[0])
	if err != nil {
		return "", err
	}
	end, err := timeutil.ParseTimeToSeconds(args[1])
	if err != nil {
		return "", err
	}
	if m.session.Mode() != editor.ModeTrimming {
		m.session.EnterTrim()
	}
	m.session.SetTrimPoint(editor.EdgeStart, start)
	m.session.SetTrimPoint(editor.EdgeEnd, end)
	if !m.session.CommitTrim() {
		return "", fmt.Errorf("trim end must be after start")
	}
	return fmt.Sprintf("Trimmed to %s", timeutil.FormatPrecise(m.session.EffectiveDuration())), nil
}

// cropCommand handles "crop <x> <y> <w> <h>" in frame fractions and
// "crop reset".
func (m *Model) cropCommand(args []string) (string, error) {
	r := crop.Full
	if !(len(args) == 1 && args[0] == "reset") {
		if len(args) != 4 {
			return "", fmt.Errorf("usage: crop <x> <y> <w> <h> or crop reset")
		}
		var v [4]float64
		for i, a := range args {
			f, err := strconv.ParseFloat(a, 64)
			if err != nil {
				return "", fmt.Errorf("invalid crop value: %s", a)
			}
			v[i] = f
		}
		r = crop.Clamp(crop.Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]})
	}
	m.session.EnterCrop()
	m.session.SetTempCrop(r)
	m.session.CommitCrop()
	return "Crop " + r.String(), nil
}
