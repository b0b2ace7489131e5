package tui

import (
	"strings"

	"expired/internal/model"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	fieldTitle = iota
	fieldExpiry
	fieldMemo
	fieldCount
)

// addForm collects a new product. Enter moves to the next field and submits on the last.
type addForm struct {
	inputs  []textinput.Model
	focused int
}

func newAddForm() *addForm {
	inputs := make([]textinput.Model, fieldCount)

	inputs[fieldTitle] = textinput.New()
	inputs[fieldTitle].Prompt = "Title:   "
	inputs[fieldTitle].Placeholder = "Milk"
	inputs[fieldTitle].CharLimit = 120

	inputs[fieldExpiry] = textinput.New()
	inputs[fieldExpiry].Prompt = "Expires: "
	inputs[fieldExpiry].Placeholder = model.DateLayout
	inputs[fieldExpiry].CharLimit = 32

	inputs[fieldMemo] = textinput.New()
	inputs[fieldMemo].Prompt = "Memo:    "
	inputs[fieldMemo].Placeholder = "optional"
	inputs[fieldMemo].CharLimit = 500

	f := &addForm{inputs: inputs}
	f.inputs[fieldTitle].Focus()
	return f
}

// formResult is what the form reports back after handling a key.
type formResult int

const (
	formEditing formResult = iota
	formSubmitted
	formCancelled
)

func (f *addForm) update(msg tea.KeyMsg) (formResult, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return formCancelled, nil
	case "tab", "down":
		f.focus(f.focused + 1)
		return formEditing, nil
	case "shift+tab", "up":
		f.focus(f.focused - 1)
		return formEditing, nil
	case "enter":
		if f.focused == fieldCount-1 {
			return formSubmitted, nil
		}
		f.focus(f.focused + 1)
		return formEditing, nil
	}

	var cmd tea.Cmd
	f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)
	return formEditing, cmd
}

func (f *addForm) focus(i int) {
	i = (i + fieldCount) % fieldCount
	f.inputs[f.focused].Blur()
	f.focused = i
	f.inputs[f.focused].Focus()
}

func (f *addForm) request() model.ProductRequest {
	return model.ProductRequest{
		Title:      strings.TrimSpace(f.inputs[fieldTitle].Value()),
		ExpiryDate: strings.TrimSpace(f.inputs[fieldExpiry].Value()),
		Memo:       strings.TrimSpace(f.inputs[fieldMemo].Value()),
	}
}

func (f *addForm) view() string {
	lines := make([]string, 0, fieldCount+2)
	lines = append(lines, titleStyle.Render("Add product"))
	for _, in := range f.inputs {
		lines = append(lines, in.View())
	}
	lines = append(lines, statusStyle.Render("enter: next/save  esc: cancel"))
	return dialogStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
