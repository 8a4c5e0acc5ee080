package ui

import (
	"errors"

	"github.com/charmbracelet/huh"

	"github.com/vietdv277/cirrus/pkg/provider"
)

// Prompter implements provider.Prompter on the terminal. Single selections
// use the filterable box selector; confirmations and multi-selections use
// huh fields.
type Prompter struct{}

// NewPrompter creates a terminal prompter
func NewPrompter() *Prompter {
	return &Prompter{}
}

// SelectOne implements provider.Prompter
func (p *Prompter) SelectOne(title string, choices []provider.Choice) (string, error) {
	return SelectChoice(title, choices)
}

// Confirm implements provider.Prompter
func (p *Prompter) Confirm(message string, initial bool) (bool, error) {
	confirmed := initial
	err := huh.NewConfirm().
		Title(message).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed).
		Run()
	if err != nil {
		return false, mapAbort(err)
	}
	return confirmed, nil
}

// MultiSelect implements provider.Prompter
func (p *Prompter) MultiSelect(title string, choices []provider.Choice) ([]string, error) {
	options := make([]huh.Option[string], 0, len(choices))
	for _, c := range choices {
		options = append(options, huh.NewOption(c.Title, c.Value).Selected(c.Selected))
	}

	var selected []string
	err := huh.NewMultiSelect[string]().
		Title(title).
		Description("Space to select. Enter to submit. / to filter").
		Options(options...).
		Filterable(true).
		Height(listHeight + 4).
		Value(&selected).
		Run()
	if err != nil {
		return nil, mapAbort(err)
	}
	return selected, nil
}

func mapAbort(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return provider.ErrCancelled
	}
	return err
}

// AssumeYes wraps a Prompter and answers every confirmation with yes
type AssumeYes struct {
	provider.Prompter
}

// Confirm implements provider.Prompter
func (a AssumeYes) Confirm(message string, initial bool) (bool, error) {
	return true, nil
}
