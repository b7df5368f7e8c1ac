// Package tui implements the interactive ask REPL.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/openaudit/govquery/internal/core/domain"
	"github.com/openaudit/govquery/internal/core/ports/driving"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	historyStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	questionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	highConfStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	midConfStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	lowConfStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	degradedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Italic(true)
	breakdownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

// turn is one question/answer pair rendered in the transcript.
type turn struct {
	question string
	response *domain.Response
	err      error
}

// Model is the Bubble Tea model for the ask REPL.
type Model struct {
	chat      driving.ChatService
	input     textinput.Model
	viewport  viewport.Model
	turns     []turn
	sessionID string
	status    string
	ready     bool
}

// Ensure Model implements tea.Model.
var _ tea.Model = (*Model)(nil)

// New creates the REPL model over the chat service.
func New(chat driving.ChatService) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the budget or operational records"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		chat:     chat,
		input:    ti,
		viewport: vp,
		status:   "Ready. Type a question and press Enter.",
	}
}

// Init starts the text input cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, hh := historyStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + ih + hh // header, status, frames
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width-4)
		m.viewport.Height = vh
		m.input.Width = maxInt(20, msg.Width-8)
		m.viewport.SetContent(m.renderTranscript())
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			m.viewport.SetYOffset(m.viewport.YOffset - 1)
			return m, nil
		case tea.KeyDown:
			m.viewport.SetYOffset(m.viewport.YOffset + 1)
			return m, nil
		case tea.KeyEnter:
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				return m, nil
			}
			m = m.ask(q)
			m.input.SetValue("")
			m.viewport.SetContent(m.renderTranscript())
			m.viewport.GotoBottom()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(question string) Model {
	reply, resp, err := m.chat.Ask(context.Background(), m.sessionID, question, nil)
	if err != nil {
		m.turns = append(m.turns, turn{question: question, err: err})
		m.status = "Error: " + err.Error()
		return m
	}
	m.sessionID = reply.SessionID
	m.turns = append(m.turns, turn{question: question, response: resp})
	m.status = fmt.Sprintf("Answered via %s, confidence %.2f, audit %s",
		resp.Method, resp.Confidence, resp.Evidence.AuditID)
	return m
}

// View renders the REPL layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("govquery ask")
	history := historyStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + history + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.turns) == 0 {
		return "No questions yet."
	}
	var b strings.Builder
	for i, t := range m.turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(questionStyle.Render("You: " + t.question))
		b.WriteString("\n")
		if t.err != nil {
			b.WriteString(degradedStyle.Render("Error: " + t.err.Error()))
			continue
		}
		b.WriteString(renderResponse(t.response))
	}
	return b.String()
}

func renderResponse(resp *domain.Response) string {
	var b strings.Builder
	b.WriteString(resp.Result.Answer)

	for _, row := range resp.Result.Breakdown {
		b.WriteString("\n")
		b.WriteString(breakdownStyle.Render(
			fmt.Sprintf("  %-32s %12.1f  %5.1f%%", row.Group, row.Amount, row.Percentage)))
	}
	for i, hit := range resp.Result.Hits {
		line := hit.Record
		if line == "" {
			line = hit.Content
		}
		b.WriteString(fmt.Sprintf("\n  [%d] %s (%.2f)", i+1, line, hit.Score))
	}
	if resp.Result.Err != "" {
		b.WriteString("\n")
		b.WriteString(degradedStyle.Render("Degraded: " + resp.Result.Err))
	}

	b.WriteString("\n")
	b.WriteString(confidenceStyle(resp.Confidence).Render(
		fmt.Sprintf("%s  confidence %.2f", resp.Method, resp.Confidence)))
	return b.String()
}

func confidenceStyle(score float64) lipgloss.Style {
	switch {
	case score >= 0.8:
		return highConfStyle
	case score >= 0.5:
		return midConfStyle
	default:
		return lowConfStyle
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
