package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/vietdv277/cirrus/pkg/provider"
)

const (
	listHeight = 10
	minWidth   = 50
	maxWidth   = 100
)

// ChoiceModel is the bubbletea model for a filterable single selection
type ChoiceModel struct {
	title        string
	choices      []provider.Choice
	filtered     []provider.Choice
	cursor       int
	offset       int // for scrolling
	search       string
	selected     *provider.Choice
	quitting     bool
	cancelled    bool
	termWidth    int
	contentWidth int // width inside the box (excluding borders)
}

// NewChoiceModel creates a new selector model
func NewChoiceModel(title string, choices []provider.Choice) ChoiceModel {
	m := ChoiceModel{
		title:     title,
		choices:   choices,
		filtered:  choices,
		termWidth: 80, // default
	}
	m.calculateWidths()
	return m
}

func (m *ChoiceModel) calculateWidths() {
	m.contentWidth = m.termWidth - 2
	if m.contentWidth < minWidth {
		m.contentWidth = minWidth
	}
	if m.contentWidth > maxWidth {
		m.contentWidth = maxWidth
	}
}

// Selected returns the chosen entry, nil when cancelled or still running
func (m ChoiceModel) Selected() *provider.Choice {
	return m.selected
}

// Cancelled reports whether the user left without choosing
func (m ChoiceModel) Cancelled() bool {
	return m.cancelled
}

// Init implements tea.Model
func (m ChoiceModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update implements tea.Model
func (m ChoiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.calculateWidths()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			m.cancelled = true
			return m, tea.Quit

		case tea.KeyEnter:
			if len(m.filtered) > 0 {
				selected := m.filtered[m.cursor]
				m.selected = &selected
				m.quitting = true
				return m, tea.Quit
			}

		case tea.KeyUp:
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}

		case tea.KeyDown:
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
				if m.cursor >= m.offset+listHeight {
					m.offset = m.cursor - listHeight + 1
				}
			}

		case tea.KeyBackspace:
			if len(m.search) > 0 {
				m.search = m.search[:len(m.search)-1]
				m.filterChoices()
			}

		case tea.KeyRunes:
			m.search += string(msg.Runes)
			m.filterChoices()
		}
	}

	return m, nil
}

// filterChoices narrows the list to entries matching the search query
func (m *ChoiceModel) filterChoices() {
	if m.search == "" {
		m.filtered = m.choices
	} else {
		query := strings.ToLower(m.search)
		m.filtered = nil
		for _, c := range m.choices {
			if strings.Contains(strings.ToLower(c.Title), query) ||
				strings.Contains(strings.ToLower(c.Description), query) {
				m.filtered = append(m.filtered, c)
			}
		}
	}
	// Reset cursor if out of bounds
	if m.cursor >= len(m.filtered) {
		if len(m.filtered) > 0 {
			m.cursor = len(m.filtered) - 1
		} else {
			m.cursor = 0
		}
	}
	m.offset = 0
}

// View implements tea.Model
func (m ChoiceModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	w := m.contentWidth

	// Top border
	sb.WriteString(BorderStyle.Render(TopLeft))
	sb.WriteString(BorderStyle.Render(strings.Repeat(Horizontal, w)))
	sb.WriteString(BorderStyle.Render(TopRight))
	sb.WriteString("\n")

	// Title
	sb.WriteString(m.boxLine(HeaderStyle.Render(padRight(" "+m.title, w))))

	// Separator
	sb.WriteString(BorderStyle.Render(LeftT))
	sb.WriteString(BorderStyle.Render(strings.Repeat(Horizontal, w)))
	sb.WriteString(BorderStyle.Render(RightT))
	sb.WriteString("\n")

	// Search input
	sb.WriteString(m.boxLine(NameStyle.Render(padRight(" > "+m.search, w))))
	sb.WriteString(m.boxLine(strings.Repeat(" ", w)))

	// Choice list
	visibleEnd := m.offset + listHeight
	if visibleEnd > len(m.filtered) {
		visibleEnd = len(m.filtered)
	}
	for i := m.offset; i < visibleEnd; i++ {
		sb.WriteString(m.renderRow(i))
	}
	if len(m.filtered) == 0 {
		sb.WriteString(m.boxLine(MutedStyle.Render(padRight("   No matches", w))))
		visibleEnd++
	}
	// Fill remaining lines if list is short
	for i := visibleEnd; i < m.offset+listHeight; i++ {
		sb.WriteString(m.boxLine(strings.Repeat(" ", w)))
	}

	// Description of the highlighted entry
	desc := ""
	if len(m.filtered) > 0 {
		desc = m.filtered[m.cursor].Description
	}
	sb.WriteString(m.boxLine(MutedStyle.Render(padRight(" "+desc, w))))

	// Bottom border
	sb.WriteString(BorderStyle.Render(BottomLeft))
	sb.WriteString(BorderStyle.Render(strings.Repeat(Horizontal, w)))
	sb.WriteString(BorderStyle.Render(BottomRight))
	sb.WriteString("\n")

	// Status bar
	sb.WriteString(m.renderStatusBar())

	return sb.String()
}

func (m ChoiceModel) boxLine(content string) string {
	return BorderStyle.Render(Vertical) + content + BorderStyle.Render(Vertical) + "\n"
}

func (m ChoiceModel) renderRow(idx int) string {
	c := m.filtered[idx]
	w := m.contentWidth

	cursor := "   "
	style := NameStyle
	if idx == m.cursor {
		cursor = " > "
		style = HeaderStyle
	}

	return m.boxLine(cursor + style.Render(padRight(c.Title, w-3)))
}

func (m ChoiceModel) renderStatusBar() string {
	var sb strings.Builder
	w := m.contentWidth + 2 // include border width for status bar

	countInfo := fmt.Sprintf("  %d/%d", len(m.filtered), len(m.choices))
	hintsPlain := "[Enter:select] [Esc:back]"

	countWidth := runewidth.StringWidth(countInfo)
	hintsWidth := runewidth.StringWidth(hintsPlain)
	padding := w - countWidth - hintsWidth

	sb.WriteString(countInfo)
	if padding > 0 {
		sb.WriteString(strings.Repeat(" ", padding))
	}
	sb.WriteString(HintStyle.Render(hintsPlain))
	sb.WriteString("\n")

	return sb.String()
}

// SelectChoice runs the interactive selector and returns the chosen value
func SelectChoice(title string, choices []provider.Choice) (string, error) {
	if len(choices) == 0 {
		return "", fmt.Errorf("nothing to select")
	}

	m := NewChoiceModel(title, choices)
	p := tea.NewProgram(m)

	finalModel, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("error running selector: %w", err)
	}

	result := finalModel.(ChoiceModel)
	if result.cancelled || result.selected == nil {
		return "", provider.ErrCancelled
	}

	return result.selected.Value, nil
}
