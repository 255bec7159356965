// Package tui provides a terminal chat console that talks to the bot handler
// directly, without Telegram.
package tui

import (
	"context"
	"strings"

	"github.com/Digital-Shane/cinemabot/internal/bot"
	"github.com/Digital-Shane/cinemabot/internal/keyboard"
	"github.com/Digital-Shane/cinemabot/internal/tui/components"
	"github.com/Digital-Shane/cinemabot/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConsoleChatID identifies the console conversation to the handler.
const ConsoleChatID int64 = 1

const (
	maxButtonLabel = 24
	chromeHeight   = 4 // header, input, status bar, spacer
)

type focusArea int

const (
	focusInput focusArea = iota
	focusKeyboard
)

// replyMsg carries the answer to something the user typed or pressed.
type replyMsg struct {
	reply bot.Reply
}

// deliveryMsg carries a reply produced later, e.g. by /wait.
type deliveryMsg struct {
	reply bot.Reply
}

// ConsoleModel is the bubbletea model of the chat console.
type ConsoleModel struct {
	ctx      context.Context
	handler  *bot.Handler
	theme    theme.Theme
	input    textinput.Model
	viewport *viewport.Model

	transcript []string
	keyboard   [][]keyboard.Button
	selection  components.Selection
	focus      focusArea
	busy       bool

	deliveries chan bot.Reply

	width  int
	height int
}

// NewConsoleModel creates the console for handler. ctx bounds every catalog
// call the console triggers.
func NewConsoleModel(ctx context.Context, handler *bot.Handler, th theme.Theme) *ConsoleModel {
	input := textinput.New()
	input.Placeholder = "Type a title or /help"
	input.Prompt = th.Icon("user") + " "
	input.Focus()

	m := &ConsoleModel{
		ctx:        ctx,
		handler:    handler,
		theme:      th,
		input:      input,
		viewport:   components.NewViewport(80, 20, th),
		deliveries: make(chan bot.Reply, 4),
		width:      80,
		height:     24,
	}
	m.appendBot(handler.Help())
	return m
}

// Init starts the cursor blink and the listener for delayed replies.
func (m *ConsoleModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForDelivery())
}

func (m *ConsoleModel) waitForDelivery() tea.Cmd {
	return func() tea.Msg {
		select {
		case reply := <-m.deliveries:
			return deliveryMsg{reply: reply}
		case <-m.ctx.Done():
			return nil
		}
	}
}

// deliver hands delayed replies to the program. It may block until the
// model reads them, never past the console lifetime.
func (m *ConsoleModel) deliver(reply bot.Reply) {
	select {
	case m.deliveries <- reply:
	case <-m.ctx.Done():
	}
}

// Update handles messages and user input.
func (m *ConsoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case replyMsg:
		m.busy = false
		m.appendBot(msg.reply)
		return m, nil

	case deliveryMsg:
		m.appendBot(msg.reply)
		return m, m.waitForDelivery()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *ConsoleModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyTab:
		m.toggleFocus()
		return m, nil
	case tea.KeyPgUp:
		m.viewport.HalfPageUp()
		return m, nil
	case tea.KeyPgDown:
		m.viewport.HalfPageDown()
		return m, nil
	}

	if m.focus == focusKeyboard {
		return m.handleKeyboardKey(msg)
	}

	if msg.Type == tea.KeyEnter {
		return m, m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *ConsoleModel) handleKeyboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		m.selection = m.selection.Move(m.keyboard, -1, 0)
	case tea.KeyDown:
		m.selection = m.selection.Move(m.keyboard, 1, 0)
	case tea.KeyLeft:
		m.selection = m.selection.Move(m.keyboard, 0, -1)
	case tea.KeyRight:
		m.selection = m.selection.Move(m.keyboard, 0, 1)
	case tea.KeyEnter:
		return m, m.press()
	}
	return m, nil
}

func (m *ConsoleModel) toggleFocus() {
	if m.focus == focusKeyboard || len(m.keyboard) == 0 {
		m.focus = focusInput
		m.input.Focus()
		return
	}
	m.focus = focusKeyboard
	m.input.Blur()
}

// submit sends the typed line to the handler.
func (m *ConsoleModel) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.busy {
		return nil
	}
	m.input.Reset()
	m.appendUser(text)
	m.busy = true

	ctx, handler, deliver := m.ctx, m.handler, m.deliver
	return func() tea.Msg {
		return replyMsg{reply: handler.Message(ctx, ConsoleChatID, text, deliver)}
	}
}

// press activates the selected button. Link buttons only print their URL.
func (m *ConsoleModel) press() tea.Cmd {
	button, ok := m.selection.Button(m.keyboard)
	if !ok || m.busy {
		return nil
	}
	if button.URL != "" {
		m.appendLine(m.theme.Icon("link") + " " + button.Text + ": " + m.theme.LinkStyle().Render(button.URL))
		return nil
	}

	m.appendUser("[" + button.Text + "]")
	m.busy = true
	m.focus = focusInput
	m.input.Focus()

	ctx, handler, data := m.ctx, m.handler, button.CallbackData
	return func() tea.Msg {
		return replyMsg{reply: handler.Callback(ctx, data)}
	}
}

func (m *ConsoleModel) appendUser(text string) {
	m.appendLine(m.theme.UserStyle().Render(m.theme.Icon("user") + " " + text))
}

func (m *ConsoleModel) appendBot(reply bot.Reply) {
	var b strings.Builder
	b.WriteString(m.theme.Icon("bot") + " ")
	if reply.PhotoURL != "" {
		b.WriteString(m.theme.Icon("poster") + " " + m.theme.LinkStyle().Render(reply.PhotoURL) + "\n")
	}
	b.WriteString(strings.TrimRight(RenderHTML(reply.Text, m.theme), "\n"))

	m.keyboard = reply.Keyboard
	m.selection = components.Selection{}
	if len(m.keyboard) == 0 && m.focus == focusKeyboard {
		m.focus = focusInput
		m.input.Focus()
	}
	m.appendLine(b.String())
}

func (m *ConsoleModel) appendLine(line string) {
	m.transcript = append(m.transcript, line)
	m.refresh()
}

func (m *ConsoleModel) refresh() {
	m.viewport.Height = max(3, m.height-chromeHeight-len(m.keyboard))
	content := strings.Join(m.transcript, "\n\n")
	m.viewport.SetContent(lipgloss.NewStyle().Width(m.contentWidth()).Render(content))
	m.viewport.GotoBottom()
}

func (m *ConsoleModel) resize() {
	m.viewport.Width = m.width
	m.input.Width = max(10, m.width-4)
	m.refresh()
}

func (m *ConsoleModel) contentWidth() int {
	return max(20, m.width-2*m.theme.Spacing().PanelPadding)
}

// View renders the console.
func (m *ConsoleModel) View() string {
	header := m.theme.HeaderStyle().Width(m.width).Render(m.theme.Icon("bot") + " Cinemabot console")
	keys := components.RenderKeyboard(m.keyboard, m.selection, m.focus == focusKeyboard, maxButtonLabel, m.theme)

	parts := []string{header, m.viewport.View()}
	if keys != "" {
		parts = append(parts, keys)
	}
	parts = append(parts, m.input.View(), m.statusBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *ConsoleModel) statusBar() string {
	mode := m.theme.BadgeStyle(theme.BadgeInfo).Render("INPUT")
	hint := "Enter send • Tab buttons • PgUp/PgDn scroll • Esc quit"
	if m.focus == focusKeyboard {
		mode = m.theme.BadgeStyle(theme.BadgeSuccess).Render("BUTTONS")
		hint = m.theme.Icon("arrows") + " move • Enter press • Tab input"
	}
	if m.busy {
		hint = m.theme.Icon("pending") + " waiting for the catalog…"
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, mode, " ", hint)
	return m.theme.StatusBarStyle().Width(m.width).Render(bar)
}

// Transcript returns the rendered conversation so far.
func (m *ConsoleModel) Transcript() []string {
	out := make([]string, len(m.transcript))
	copy(out, m.transcript)
	return out
}

// Keyboard returns the buttons of the last reply.
func (m *ConsoleModel) Keyboard() [][]keyboard.Button {
	return m.keyboard
}

// Run starts the console in the terminal and blocks until the user quits.
func Run(ctx context.Context, handler *bot.Handler, th theme.Theme) error {
	model := NewConsoleModel(ctx, handler, th)
	_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
