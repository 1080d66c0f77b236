// Package styles holds the lipgloss palette and shared styles of the TUI.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette. The names are historical; the values are a dark warm theme.
const (
	// DeepPurple is the main background.
	DeepPurple = lipgloss.Color("#191C27")
	// DarkPurple is the bar background.
	DarkPurple = lipgloss.Color("#181818")
	// Purple draws borders and empty track.
	Purple = lipgloss.Color("#5C4F4B")
	// BrightPurple marks focus and selection.
	BrightPurple = lipgloss.Color("#724D7C")
	// Lavender is secondary text.
	Lavender = lipgloss.Color("#AEA47A")
	// LightLavender is primary text.
	LightLavender = lipgloss.Color("#F3DBB2")
	// Pink is box titles and the playhead.
	Pink = lipgloss.Color("#D33061")
	// Cyan is shortcuts and information.
	Cyan = lipgloss.Color("#3097C6")
	// Amber is sub-headers and the opponent.
	Amber = lipgloss.Color("#CC8B3F")
	// Red is errors and misses.
	Red = lipgloss.Color("#AC3835")
	// Green is success and landed strikes.
	Green = lipgloss.Color("#A6A75D")
)

// Fight roles. Attack phases and the athlete share a colour, as do defense
// phases and the opponent, so the timeline and the event list read alike.
const (
	Athlete  = Cyan
	Opponent = Amber
	Attack   = Cyan
	Defense  = Amber
	Round    = BrightPurple
)

// Highlight is the selected row.
var Highlight = lipgloss.NewStyle().
	Background(BrightPurple).
	Foreground(LightLavender).
	Bold(true)

// PrimaryText is body text.
var PrimaryText = lipgloss.NewStyle().
	Foreground(LightLavender)

// SecondaryText is dimmed text.
var SecondaryText = lipgloss.NewStyle().
	Foreground(Lavender)

// Header is a section title inside a box.
var Header = lipgloss.NewStyle().
	Foreground(Pink).
	Bold(true)

// Warning is error text.
var Warning = lipgloss.NewStyle().
	Foreground(Red).
	Bold(true)

// Success is confirmation text.
var Success = lipgloss.NewStyle().
	Foreground(Green).
	Bold(true)

// Bar is the full-width background of the status and command lines.
var Bar = lipgloss.NewStyle().
	Background(DarkPurple).
	Foreground(LightLavender)
