// Package styles provides Lipgloss styles for the editor using the Ciapre
// colour palette.
package styles

import "github.com/charmbracelet/lipgloss"

// Ciapre palette (Gogh).
const (
	DeepPurple    = lipgloss.Color("#191C27") // background
	DarkPurple    = lipgloss.Color("#181818") // bars and panels
	Purple        = lipgloss.Color("#5C4F4B") // borders, unplayed track
	BrightPurple  = lipgloss.Color("#724D7C") // played track, focus
	Lavender      = lipgloss.Color("#AEA47A") // secondary text
	LightLavender = lipgloss.Color("#F3DBB2") // primary text
	Pink          = lipgloss.Color("#D33061") // headers, playhead
	Cyan          = lipgloss.Color("#3097C6") // shortcuts, crop box
	Amber         = lipgloss.Color("#CC8B3F") // trim markers
	Red           = lipgloss.Color("#AC3835")
	Green         = lipgloss.Color("#A6A75D")
)

// Background fills the whole editor.
var Background = lipgloss.NewStyle().Background(DeepPurple)

// Header is used for box titles.
var Header = lipgloss.NewStyle().Foreground(Pink).Bold(true)

// BorderLine colours box-drawing characters.
var BorderLine = lipgloss.NewStyle().Foreground(Purple)

// PrimaryText is the style for primary text content.
var PrimaryText = lipgloss.NewStyle().Foreground(LightLavender)

// SecondaryText is the style for less prominent text.
var SecondaryText = lipgloss.NewStyle().Foreground(Lavender)

// Shortcut renders key names.
var Shortcut = lipgloss.NewStyle().Foreground(Cyan).Bold(true)

// Warning is the style for warnings and errors.
var Warning = lipgloss.NewStyle().Foreground(Red).Bold(true)

// Success is the style for confirmations.
var Success = lipgloss.NewStyle().Foreground(Green).Bold(true)

// Mode badges, one per editing mode.
var (
	ModeNormal = lipgloss.NewStyle().Background(Purple).Foreground(LightLavender).Bold(true).Padding(0, 1)
	ModeTrim   = lipgloss.NewStyle().Background(Amber).Foreground(DarkPurple).Bold(true).Padding(0, 1)
	ModeCrop   = lipgloss.NewStyle().Background(Cyan).Foreground(DarkPurple).Bold(true).Padding(0, 1)
)

// Timeline and crop overlay pieces.
var (
	TrackPlayed   = lipgloss.NewStyle().Foreground(BrightPurple)
	TrackUnplayed = lipgloss.NewStyle().Foreground(Purple)
	TrackTrimmed  = lipgloss.NewStyle().Foreground(Amber)
	Playhead      = lipgloss.NewStyle().Foreground(Pink).Bold(true)
	TrimMarker    = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	CropBox       = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	CropHandle    = lipgloss.NewStyle().Foreground(Pink).Bold(true)
	CropOutside   = lipgloss.NewStyle().Foreground(Purple)
	CropInside    = lipgloss.NewStyle().Foreground(Lavender)
)
