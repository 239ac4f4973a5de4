// Package tui is the interactive terminal front end: a chat window where a
// student submits writing for evaluation or talks with the tutor, plus a
// settings row for grade, subject, writing type, and mode.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/geulmoi/geulssaem/internal/events"
	"github.com/geulmoi/geulssaem/internal/model"
	"github.com/geulmoi/geulssaem/internal/session"
	"github.com/geulmoi/geulssaem/internal/tutor"
)

// focusPanel tracks which part of the screen has keyboard focus.
type focusPanel int

const (
	focusInput    focusPanel = iota // typing in the chat box
	focusSettings                   // cycling through the settings row
)

// settingsField is one slot in the settings row.
type settingsField int

const (
	fieldGrade settingsField = iota
	fieldSubject
	fieldType
	fieldMode
	fieldCount
)

// messages
type evalDoneMsg struct {
	result model.EvaluationResult
}

type chatDoneMsg struct {
	result tutor.ConverseResult
}

// TUI runs the interactive tutor.
type TUI struct {
	Tutor    *tutor.Tutor
	Sessions *session.Registry
	Events   *events.Store // nil disables the debug event line
	Theme    Theme
	Settings tutor.Settings // initial study settings; empty fields use defaults
}

// tuiModel implements tea.Model.
type tuiModel struct {
	ctx      context.Context
	tut      *tutor.Tutor
	registry *session.Registry
	events   *events.Store
	st       styles

	sessionID string
	settings  tutor.Settings
	mode      model.Mode

	input      textinput.Model
	focus      focusPanel
	field      settingsField
	pending    bool
	debug      bool
	message    string
	messageErr bool
	scroll     int // lines scrolled up from the bottom of the chat

	width  int
	height int
}

func (t *TUI) Run(ctx context.Context) error {
	ti := textinput.New()
	ti.CharLimit = 4096
	ti.Width = 80
	ti.Focus()

	sess := t.Sessions.Create(t.Settings, model.ModeEvaluate)
	m := &tuiModel{
		ctx:       ctx,
		tut:       t.Tutor,
		registry:  t.Sessions,
		events:    t.Events,
		st:        newStyles(t.Theme),
		sessionID: sess.ID,
		settings:  sess.Settings,
		mode:      sess.Mode,
		input:     ti,
	}
	m.refreshPlaceholder()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *tuiModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *tuiModel) refreshPlaceholder() {
	if m.mode == model.ModeChat {
		m.input.Placeholder = "현재 모드: 자유 대화 💬 - 여기에 입력하세요..."
	} else {
		m.input.Placeholder = "현재 모드: 평가 받기 📝 - 여기에 입력하세요..."
	}
}

// ensureSession recreates the session if the registry expired it while the
// student was idle. Local settings and mode survive the recreation; only
// the old history is lost, which is what expiry means.
func (m *tuiModel) ensureSession() {
	if _, ok := m.registry.Get(m.sessionID); ok {
		return
	}
	sess := m.registry.Create(m.settings, m.mode)
	m.sessionID = sess.ID
}

func (m *tuiModel) setMode(mode model.Mode) {
	if m.mode == mode {
		return
	}
	m.mode = mode
	m.ensureSession()
	m.registry.SetMode(m.sessionID, mode)
	m.refreshPlaceholder()
}

func (m *tuiModel) applySettings() {
	m.ensureSession()
	m.registry.SetSettings(m.sessionID, m.settings)
}

// submit sends the typed text to the tutor in the current mode. The student
// turn is appended to the session first, so chat prompts see it in history.
func (m *tuiModel) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.pending {
		return nil
	}
	m.input.SetValue("")
	m.message = ""
	m.messageErr = false
	m.ensureSession()

	sess, ok := m.registry.Append(m.sessionID, model.StudentTurn(text))
	if !ok {
		m.message = "세션을 찾을 수 없어요. 다시 시도해 주세요."
		m.messageErr = true
		return nil
	}

	m.pending = true
	m.scroll = 0

	tut, ctx, id, settings := m.tut, m.ctx, m.sessionID, m.settings
	if m.mode == model.ModeChat {
		history := sess.Turns
		return func() tea.Msg {
			res := tut.Converse(ctx, tutor.ConverseRequest{
				Utterance: text,
				Settings:  settings,
				History:   history,
				SessionID: id,
			})
			return chatDoneMsg{result: res}
		}
	}
	return func() tea.Msg {
		res := tut.Evaluate(ctx, tutor.EvaluateRequest{
			Text:      text,
			Settings:  settings,
			SessionID: id,
		})
		return evalDoneMsg{result: res}
	}
}

// resetConversation clears the history and puts the session back in
// evaluate mode, the same state a brand-new session starts in.
func (m *tuiModel) resetConversation() {
	m.ensureSession()
	m.registry.Reset(m.sessionID)
	m.setMode(model.ModeEvaluate)
	m.events.Drop(m.sessionID)
	m.events.Record(events.Event{SessionID: m.sessionID, Kind: events.KindReset})
	m.message = "✅ 대화가 초기화되었습니다!"
	m.messageErr = false
	m.scroll = 0
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4
		return m, nil

	case evalDoneMsg:
		m.pending = false
		m.registry.Append(m.sessionID, model.ScoredTutorTurn(msg.result.Feedback, msg.result.Score))
		m.scroll = 0
		return m, nil

	case chatDoneMsg:
		m.pending = false
		m.registry.Append(m.sessionID, model.TutorTurn(msg.result.Reply))
		m.scroll = 0
		return m, nil
	}

	return m, nil
}

func (m *tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys work regardless of focus.
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+e":
		m.setMode(model.ModeEvaluate)
		return m, nil
	case "ctrl+d":
		m.setMode(model.ModeChat)
		return m, nil
	case "ctrl+r":
		m.resetConversation()
		return m, nil
	case "ctrl+b":
		m.debug = !m.debug
		return m, nil
	}

	if m.focus == focusSettings {
		return m.handleSettingsKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m *tuiModel) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit

	case "tab":
		m.focus = focusSettings
		m.field = fieldGrade
		m.input.Blur()
		return m, nil

	case "enter":
		return m, m.submit()

	case "up":
		if m.scroll < m.maxScroll() {
			m.scroll++
		}
		return m, nil

	case "down":
		if m.scroll > 0 {
			m.scroll--
		}
		return m, nil

	case "pgup":
		m.scroll += m.chatHeight() / 2
		if m.scroll > m.maxScroll() {
			m.scroll = m.maxScroll()
		}
		return m, nil

	case "pgdown":
		m.scroll -= m.chatHeight() / 2
		if m.scroll < 0 {
			m.scroll = 0
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *tuiModel) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "tab", "enter":
		m.focus = focusInput
		m.input.Focus()
		return m, textinput.Blink

	case "left", "h":
		if m.field > 0 {
			m.field--
		}
		return m, nil

	case "right", "l":
		if m.field < fieldCount-1 {
			m.field++
		}
		return m, nil

	case "up", "k":
		m.cycleField(-1)
		return m, nil

	case "down", "j", " ":
		m.cycleField(1)
		return m, nil
	}

	return m, nil
}

// cycleField steps the focused settings field through its values.
func (m *tuiModel) cycleField(delta int) {
	switch m.field {
	case fieldGrade:
		m.settings.Grade = cycle(model.Grades(), m.settings.Grade, delta)
		m.applySettings()
	case fieldSubject:
		m.settings.Subject = cycle(model.Subjects(), m.settings.Subject, delta)
		m.applySettings()
	case fieldType:
		m.settings.WritingType = cycle(model.WritingTypes(), m.settings.WritingType, delta)
		m.applySettings()
	case fieldMode:
		if m.mode == model.ModeEvaluate {
			m.setMode(model.ModeChat)
		} else {
			m.setMode(model.ModeEvaluate)
		}
	}
}

func cycle(values []string, current string, delta int) string {
	for i, v := range values {
		if v == current {
			return values[(i+delta+len(values))%len(values)]
		}
	}
	return values[0]
}

func (m *tuiModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	// Header: title + keybindings
	b.WriteString(m.st.title.Render("✍️ AI 글쓰기 튜터"))
	b.WriteString("  ")
	if m.focus == focusSettings {
		b.WriteString(m.st.dim.Render("←→=항목  ↑↓=변경  Tab/Enter=완료"))
	} else {
		b.WriteString(m.st.dim.Render("Enter=보내기  Tab=설정  Ctrl+E=평가  Ctrl+D=대화  Ctrl+R=초기화  Esc=종료"))
	}
	b.WriteString("\n")

	b.WriteString(m.settingsLine())
	b.WriteString("\n")
	b.WriteString(m.bannerLine())
	b.WriteString("\n")
	b.WriteString(m.st.border.Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")

	// Chat area
	lines := m.chatLines(m.width)
	h := m.chatHeight()
	start := len(lines) - h - m.scroll
	if start < 0 {
		start = 0
	}
	end := start + h
	if end > len(lines) {
		end = len(lines)
	}
	for _, line := range lines[start:end] {
		b.WriteString(line)
		b.WriteString("\n")
	}
	for i := end - start; i < h; i++ {
		b.WriteString("\n")
	}

	b.WriteString(m.st.border.Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.st.dim.Render("💡 평가 받기: 글을 제출하면 AI가 루브릭에 따라 채점해줘요 | 💬 자유 대화: 글쓰기에 대한 질문이나 조언을 구할 수 있어요"))
	b.WriteString("\n")

	if m.message != "" {
		style := m.st.status
		if m.messageErr {
			style = m.st.err
		}
		b.WriteString(style.Render(m.message))
		b.WriteString("\n")
	}
	if m.debug {
		b.WriteString(m.st.dim.Render(m.debugLine()))
		b.WriteString("\n")
	}

	return b.String()
}

// settingsLine renders the settings row, highlighting the focused field.
func (m *tuiModel) settingsLine() string {
	modeLabel := "📝 평가 받기"
	if m.mode == model.ModeChat {
		modeLabel = "💬 자유롭게 대화하기"
	}
	fields := []struct {
		label string
		value string
		field settingsField
	}{
		{"학년", m.settings.Grade, fieldGrade},
		{"과목", m.settings.Subject, fieldSubject},
		{"글 종류", m.settings.WritingType, fieldType},
		{"모드", modeLabel, fieldMode},
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		value := m.st.fieldValue.Render(f.value)
		if m.focus == focusSettings && m.field == f.field {
			value = m.st.fieldActive.Render(f.value)
		}
		parts = append(parts, m.st.fieldLabel.Render(f.label+" ")+value)
	}
	return m.st.fieldLabel.Render("📝 학습 설정  ") + strings.Join(parts, m.st.fieldLabel.Render("  |  "))
}

func (m *tuiModel) bannerLine() string {
	if m.mode == model.ModeChat {
		return m.st.banner.Render("💬 대화 모드: AI 선생님과 자유롭게 글쓰기에 대해 대화할 수 있습니다.")
	}
	return m.st.banner.Render("📝 평가 모드: 글을 입력하면 AI가 채점하고 피드백을 제공합니다.")
}

// chatHeight is the number of rows available for the conversation.
func (m *tuiModel) chatHeight() int {
	// header + settings + banner + 2 separators + input + caption, plus
	// the status and debug lines when present
	used := 7
	if m.message != "" {
		used++
	}
	if m.debug {
		used++
	}
	h := m.height - used
	if h < 3 {
		h = 3
	}
	return h
}

func (m *tuiModel) maxScroll() int {
	n := len(m.chatLines(m.width)) - m.chatHeight()
	if n < 0 {
		return 0
	}
	return n
}

// chatLines renders the whole conversation as wrapped terminal lines,
// oldest first, with the pending spinner at the bottom.
func (m *tuiModel) chatLines(width int) []string {
	var lines []string

	sess, ok := m.registry.Get(m.sessionID)
	if ok && len(sess.Turns) > 0 {
		for _, turn := range sess.Turns {
			lines = append(lines, m.renderTurn(turn, width)...)
			lines = append(lines, "")
		}
	} else if !m.pending {
		lines = append(lines,
			m.st.dim.Render("글을 제출하여 평가받거나, AI 튜터와 자유롭게 대화하며 글쓰기 실력을 키워보세요! 🌟"))
	}

	if m.pending {
		spinner := "📝 AI 선생님이 꼼꼼히 평가하고 있어요..."
		if m.mode == model.ModeChat {
			spinner = "💭 AI 선생님이 생각하고 있어요..."
		}
		lines = append(lines, m.st.pending.Render(spinner))
	}
	return lines
}

// renderTurn renders one turn as a styled label line followed by the
// wrapped turn text. Scored turns carry the banded score line next to
// the label.
func (m *tuiModel) renderTurn(turn model.Turn, width int) []string {
	label := m.st.student.Render(turn.Role.Label())
	if turn.Role == model.RoleTutor {
		label = m.st.tutor.Render(turn.Role.Label())
	}
	if turn.Score != nil {
		label += "  " + m.st.scoreStyle(*turn.Score).Render(model.FormatScoreLine(*turn.Score))
	}

	lines := []string{label}
	bodyWidth := width - 2
	if bodyWidth < 10 {
		bodyWidth = 10
	}
	body := lipgloss.NewStyle().Width(bodyWidth).Render(turn.Text)
	for _, l := range strings.Split(body, "\n") {
		lines = append(lines, "  "+m.st.text.Render(l))
	}
	return lines
}

func (m *tuiModel) debugLine() string {
	sess, _ := m.registry.Get(m.sessionID)
	turns := 0
	if sess != nil {
		turns = len(sess.Turns)
	}
	line := fmt.Sprintf("🔧 모드=%s 메시지=%d 세션=%s 모델=%s/%s",
		m.mode, turns, shortID(m.sessionID), m.tut.Gen.Provider(), m.tut.Gen.Model())
	if recent := m.events.Recent(time.Now().UTC(), 1); len(recent) == 1 {
		kind := recent[0].Kind
		if events.IsFailure(kind) {
			kind += "⚠️"
		}
		line += fmt.Sprintf(" 마지막 이벤트=%s", kind)
	}
	return line
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
