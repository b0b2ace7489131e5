// Package tui renders the product list view as a bubbletea program.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"expired/internal/listview"
	"expired/internal/model"
	"expired/internal/service"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model is the bubbletea model of the product list screen.
type Model struct {
	ctx     context.Context
	view    *listview.View
	service service.ProductService

	keys keyMap
	help help.Model

	cursor int
	form   *addForm
	status string
	err    error
}

// New creates the list screen. Writes go through svc, the list state through view.
func New(ctx context.Context, view *listview.View, svc service.ProductService) Model {
	return Model{
		ctx:     ctx,
		view:    view,
		service: svc,
		keys:    defaultKeyMap(),
		help:    help.New(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.form != nil {
			return m.updateForm(msg)
		}
		if m.view.ShowingDeleteAlert() {
			return m.updateDeleteAlert(msg), nil
		}
		if m.view.ShowingMemo() {
			if key.Matches(msg, m.keys.Memo, m.keys.Cancel) {
				m.view.HideMemo()
			}
			return m, nil
		}
		return m.updateList(msg)
	}

	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.NextFilter):
		m.view.SelectFilter(m.view.Filter().Next())
		m.cursor = 0

	case key.Matches(msg, m.keys.PrevFilter):
		m.view.SelectFilter(m.view.Filter().Prev())
		m.cursor = 0

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.view.Filtered())-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Add):
		m.form = newAddForm()
		m.err = nil

	case key.Matches(msg, m.keys.Delete):
		if !m.view.IsEmpty() {
			m.view.RequestDelete([]int{m.cursor})
		}

	case key.Matches(msg, m.keys.Memo):
		if err := m.view.ShowMemo(m.cursor); err != nil {
			m.err = err
		}

	case key.Matches(msg, m.keys.Reload):
		m.service.Reload(m.ctx)
		m.clampCursor()
		m.status = "Reloaded"

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

func (m Model) updateDeleteAlert(msg tea.KeyMsg) Model {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		// The service confirms through its own view under the write lock and
		// discards the pending deletes if the save fails.
		pending := m.view.PendingDelete()
		m.view.CancelDelete()
		if err := m.service.DeleteAt(m.ctx, m.view.Filter(), pending); err != nil {
			m.err = err
			return m
		}
		m.err = nil
		m.status = "Deleted"
		m.clampCursor()
	case key.Matches(msg, m.keys.Cancel):
		m.view.CancelDelete()
	}
	return m
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	result, cmd := m.form.update(msg)
	switch result {
	case formCancelled:
		m.form = nil
	case formSubmitted:
		req := m.form.request()
		product, err := m.service.Create(m.ctx, &req)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.form = nil
		m.err = nil
		m.status = fmt.Sprintf("Added %s", product.Title)
	}
	return m, cmd
}

func (m *Model) clampCursor() {
	n := len(m.view.Filtered())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Expired"))
	b.WriteString("\n")
	b.WriteString(m.tabs())
	b.WriteString("\n\n")

	products := m.view.Filtered()
	if len(products) == 0 {
		b.WriteString(emptyStyle.Render(listview.EmptyMessage))
		b.WriteString("\n")
	}

	policy := m.view.Policy()
	now := policy.CurrentTime()
	for i, p := range products {
		marker := "  "
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
		}
		row := fmt.Sprintf("%-28s %s  %s", truncate(p.Title, 28), p.ExpiryDate.Format(model.DateLayout), daysLeftLabel(p.DaysLeft(now)))
		b.WriteString(marker + bucketStyle(policy.Status(p)).Render(row) + "\n")
	}

	switch {
	case m.form != nil:
		b.WriteString(m.form.view())
		b.WriteString("\n")
	case m.view.ShowingDeleteAlert():
		b.WriteString(alertStyle.Render(listview.DeletePrompt + "\n" + statusStyle.Render("y: delete  n: cancel")))
		b.WriteString("\n")
	case m.view.ShowingMemo():
		if p := m.view.MemoProduct(); p != nil {
			memo := p.Memo
			if memo == "" {
				memo = statusStyle.Render("(no memo)")
			}
			b.WriteString(dialogStyle.Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(p.Title), memo)))
			b.WriteString("\n")
		}
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render(errorText(m.err)))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m Model) tabs() string {
	filters := model.AllFilters()
	rendered := make([]string, len(filters))
	for i, f := range filters {
		if f == m.view.Filter() {
			rendered[i] = activeTabStyle.Render(string(f))
		} else {
			rendered[i] = tabStyle.Render(string(f))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func daysLeftLabel(days int) string {
	switch {
	case days < -1:
		return fmt.Sprintf("expired %d days ago", -days)
	case days == -1:
		return "expired yesterday"
	case days == 0:
		return "expires today"
	case days == 1:
		return "1 day left"
	default:
		return fmt.Sprintf("%d days left", days)
	}
}

func errorText(err error) string {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Run starts the program on the terminal and blocks until the user quits.
func Run(ctx context.Context, view *listview.View, svc service.ProductService) error {
	p := tea.NewProgram(New(ctx, view, svc), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run terminal UI: %w", err)
	}
	return nil
}
