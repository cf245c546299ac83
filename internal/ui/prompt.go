// internal/ui/prompt.go
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrAborted is returned when the user leaves a prompt with Ctrl+C or Esc.
var ErrAborted = errors.New("prompt aborted")

// textModel запрашивает одну строку с проверкой значения.
type textModel struct {
	label    string
	input    textinput.Model
	validate func(string) error
	err      error
	value    string
	done     bool
	aborted  bool
}

func newTextModel(label, placeholder string, validate func(string) error) textModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Width = 48
	ti.Focus()
	return textModel{label: label, input: ti, validate: validate}
}

func (m textModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m textModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit
		case tea.KeyEnter:
			value := strings.TrimSpace(m.input.Value())
			if m.validate != nil {
				if err := m.validate(value); err != nil {
					m.err = err
					return m, nil
				}
			}
			m.value = value
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.err = nil
	return m, cmd
}

func (m textModel) View() string {
	if m.done || m.aborted {
		return ""
	}
	view := styles.Prompt.Render(m.label) + "\n" + m.input.View() + "\n"
	if m.err != nil {
		view += styles.Error.Render(m.err.Error()) + "\n"
	}
	return view
}

// confirmModel задаёт вопрос да/нет; Enter выбирает «нет».
type confirmModel struct {
	question string
	answer   bool
	done     bool
	aborted  bool
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.aborted = true
		return m, tea.Quit
	case tea.KeyEnter:
		m.done = true
		return m, tea.Quit
	}
	switch strings.ToLower(key.String()) {
	case "y", "s":
		m.answer, m.done = true, true
		return m, tea.Quit
	case "n":
		m.answer, m.done = false, true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done || m.aborted {
		return ""
	}
	return styles.Prompt.Render(m.question) + styles.Muted.Render(" [y/N] ") + "\n"
}

// TeaPrompter показывает подсказки через bubbletea.
type TeaPrompter struct {
	in  io.Reader
	out io.Writer
}

func NewTeaPrompter(in io.Reader, out io.Writer) *TeaPrompter {
	return &TeaPrompter{in: in, out: out}
}

func (p *TeaPrompter) run(ctx context.Context, model tea.Model) (tea.Model, error) {
	program := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
	)
	final, err := program.Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("run prompt: %w", err)
	}
	return final, nil
}

// Text запрашивает строку; validate вызывается на каждый Enter.
func (p *TeaPrompter) Text(ctx context.Context, label, placeholder string, validate func(string) error) (string, error) {
	final, err := p.run(ctx, newTextModel(label, placeholder, validate))
	if err != nil {
		return "", err
	}
	m := final.(textModel)
	if m.aborted {
		return "", ErrAborted
	}
	return m.value, nil
}

// Confirm задаёт вопрос да/нет.
func (p *TeaPrompter) Confirm(ctx context.Context, question string) (bool, error) {
	final, err := p.run(ctx, confirmModel{question: question})
	if err != nil {
		return false, err
	}
	m := final.(confirmModel)
	if m.aborted {
		return false, ErrAborted
	}
	return m.answer, nil
}
