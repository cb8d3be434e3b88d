package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/user/clipedit-cli/tui/styles"
)

// historyLimit caps the remembered commands.
const historyLimit = 50

// CommandInput is the ':' command line. It shows the prompt while active,
// otherwise the result of the last command.
type CommandInput struct {
	input   textinput.Model
	history []string
	// browse indexes history while walking it with up/down; len(history)
	// means the fresh line.
	browse int

	Result  string
	IsError bool
}

// NewCommandInput returns an inactive command line.
func NewCommandInput() CommandInput {
	ti := textinput.New()
	ti.Prompt = ":"
	ti.PromptStyle = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	ti.TextStyle = styles.PrimaryText
	ti.CharLimit = 256
	return CommandInput{input: ti}
}

// Active reports whether the prompt has focus.
func (c *CommandInput) Active() bool { return c.input.Focused() }

// Value returns the text typed so far.
func (c *CommandInput) Value() string { return c.input.Value() }

// Activate focuses an empty prompt.
func (c *CommandInput) Activate() tea.Cmd {
	c.input.SetValue("")
	c.browse = len(c.history)
	c.ClearResult()
	return c.input.Focus()
}

// Cancel leaves the prompt without running anything.
func (c *CommandInput) Cancel() {
	c.input.Blur()
	c.input.SetValue("")
}

// Submit leaves the prompt and returns what was typed. Non-empty commands
// are added to the history.
func (c *CommandInput) Submit() string {
	cmd := c.input.Value()
	c.Cancel()
	if cmd != "" && (len(c.history) == 0 || c.history[len(c.history)-1] != cmd) {
		c.history = append(c.history, cmd)
		if len(c.history) > historyLimit {
			c.history = c.history[len(c.history)-historyLimit:]
		}
	}
	return cmd
}

// History returns the remembered commands, oldest first.
func (c *CommandInput) History() []string { return c.history }

// Update feeds a key to the prompt. Up and down walk the history.
func (c *CommandInput) Update(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.Type {
		case tea.KeyUp:
			if c.browse > 0 {
				c.browse--
				c.input.SetValue(c.history[c.browse])
				c.input.CursorEnd()
			}
			return nil
		case tea.KeyDown:
			if c.browse < len(c.history) {
				c.browse++
				if c.browse == len(c.history) {
					c.input.SetValue("")
				} else {
					c.input.SetValue(c.history[c.browse])
				}
				c.input.CursorEnd()
			}
			return nil
		}
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd
}

// SetResult sets the message shown after a command.
func (c *CommandInput) SetResult(msg string, isError bool) {
	c.Result = msg
	c.IsError = isError
}

// ClearResult clears the result message.
func (c *CommandInput) ClearResult() {
	c.Result = ""
	c.IsError = false
}

// View renders the command line at width.
func (c *CommandInput) View(width int) string {
	line := lipgloss.NewStyle().Background(styles.DarkPurple).Width(width)
	if c.Active() {
		c.input.Width = max(1, width-2)
		return line.Render(c.input.View())
	}
	if c.Result != "" {
		style := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
		if c.IsError {
			style = lipgloss.NewStyle().Foreground(styles.Pink).Bold(true)
		}
		return line.Render(" " + style.Render(c.Result))
	}
	return line.Render(" ")
}
