package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	pkgtypes "github.com/vietdv277/cirrus/pkg/types"
)

// Box drawing characters
const (
	TopLeft     = "╭"
	TopRight    = "╮"
	BottomLeft  = "╰"
	BottomRight = "╯"
	Horizontal  = "─"
	Vertical    = "│"
	LeftT       = "├"
	RightT      = "┤"
	TopT        = "┬"
	BottomT     = "┴"
	Cross       = "┼"
)

// Color palette
const (
	ColorBorder  = "240"
	ColorHeader  = "252"
	ColorID      = "214"
	ColorName    = "81"
	ColorIP      = "252"
	ColorType    = "252"
	ColorRegion  = "252"
	ColorRunning = "82"
	ColorStopped = "245"
	ColorPending = "214"
	ColorError   = "196"
	ColorMuted   = "240"
	ColorHint    = "245"
	ColorAWS     = "208"
)

// Shared styles
var (
	BorderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBorder))
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorHeader))
	IDStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorID))
	NameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorName))
	IPStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorIP))
	TypeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorType))
	RegionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRegion))
	RunningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRunning))
	StoppedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorStopped))
	PendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPending))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError))
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPending))
	MutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorMuted))
	HintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHint))
	AWSStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAWS))
)

// padRight pads a string to the specified display width using runewidth
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return runewidth.Truncate(s, width, "...")
	}
	return s + strings.Repeat(" ", width-sw)
}

// StateIndicator returns the glyph shown next to a lifecycle state
func StateIndicator(state string) string {
	switch state {
	case pkgtypes.StateRunning:
		return "●"
	case pkgtypes.StatePending, pkgtypes.StateStopping, pkgtypes.StateShuttingDown:
		return "◐"
	default:
		return "○"
	}
}

// StateStyle returns the style used to render a lifecycle state
func StateStyle(state string) lipgloss.Style {
	switch state {
	case pkgtypes.StateRunning:
		return RunningStyle
	case pkgtypes.StatePending, pkgtypes.StateStopping, pkgtypes.StateShuttingDown:
		return PendingStyle
	case pkgtypes.StateTerminated:
		return ErrorStyle
	default:
		return StoppedStyle
	}
}

// FormatState renders a state with its indicator, e.g. "● running"
func FormatState(state string) string {
	return StateStyle(state).Render(StateIndicator(state) + " " + state)
}

func formatOptional(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
