package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/geulmoi/geulssaem/internal/events"
	"github.com/geulmoi/geulssaem/internal/model"
	"github.com/geulmoi/geulssaem/internal/session"
	"github.com/geulmoi/geulssaem/internal/tutor"
)

// stubGenerator implements llm.Generator with a single canned reply.
type stubGenerator struct {
	text    string
	err     error
	prompts []string
}

func (g *stubGenerator) Provider() string { return "stub" }
func (g *stubGenerator) Model() string    { return "stub-model" }

func (g *stubGenerator) Generate(_ context.Context, req model.GenerationRequest) (*model.Reply, error) {
	g.prompts = append(g.prompts, req.Prompt)
	if g.err != nil {
		return nil, g.err
	}
	return &model.Reply{Text: g.text}, nil
}

const submission = "오늘은 가족과 함께 공원에 가서 즐거운 시간을 보냈습니다."

// newTestModel builds a tuiModel around a stub generator and a fresh
// session, sized for view rendering.
func newTestModel(gen *stubGenerator) *tuiModel {
	reg := session.NewRegistry(time.Hour)
	sess := reg.Create(tutor.Settings{}, model.ModeEvaluate)

	ti := textinput.New()
	ti.CharLimit = 4096
	ti.Width = 80
	ti.Focus()

	m := &tuiModel{
		ctx:       context.Background(),
		tut:       &tutor.Tutor{Gen: gen},
		registry:  reg,
		events:    events.NewStore(0),
		st:        newStyles(DarkTheme()),
		sessionID: sess.ID,
		settings:  sess.Settings,
		mode:      sess.Mode,
		input:     ti,
		width:     100,
		height:    30,
	}
	m.refreshPlaceholder()
	return m
}

func TestModeSwitchKeys(t *testing.T) {
	m := newTestModel(&stubGenerator{})

	_, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlD})
	if m.mode != model.ModeChat {
		t.Fatalf("expected chat mode after ctrl+d, got %s", m.mode)
	}
	if !strings.Contains(m.input.Placeholder, "자유 대화") {
		t.Fatalf("expected chat placeholder, got %q", m.input.Placeholder)
	}
	sess, _ := m.registry.Get(m.sessionID)
	if sess.Mode != model.ModeChat {
		t.Fatalf("expected registry mode updated, got %s", sess.Mode)
	}

	_, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlE})
	if m.mode != model.ModeEvaluate {
		t.Fatalf("expected evaluate mode after ctrl+e, got %s", m.mode)
	}
	if !strings.Contains(m.input.Placeholder, "평가 받기") {
		t.Fatalf("expected evaluate placeholder, got %q", m.input.Placeholder)
	}
}

func TestSubmit_EmptyInputDoesNothing(t *testing.T) {
	m := newTestModel(&stubGenerator{})
	m.input.SetValue("   ")

	if cmd := m.submit(); cmd != nil {
		t.Fatalf("expected no command for blank input")
	}
	if m.pending {
		t.Fatalf("expected no pending state for blank input")
	}
}

func TestSubmit_EvaluateFlow(t *testing.T) {
	gen := &stubGenerator{text: `{"score": 85, "feedback": "구성이 좋아요"}`}
	m := newTestModel(gen)
	m.input.SetValue(submission)

	cmd := m.submit()
	if cmd == nil {
		t.Fatalf("expected a command from submit")
	}
	if !m.pending {
		t.Fatalf("expected pending while evaluating")
	}
	if m.input.Value() != "" {
		t.Fatalf("expected input cleared after submit")
	}

	msg := cmd()
	done, ok := msg.(evalDoneMsg)
	if !ok {
		t.Fatalf("expected evalDoneMsg, got %T", msg)
	}
	if done.result.Score != 85 {
		t.Fatalf("expected score 85, got %d", done.result.Score)
	}

	_, _ = m.Update(done)
	if m.pending {
		t.Fatalf("expected pending cleared after result")
	}
	sess, _ := m.registry.Get(m.sessionID)
	if len(sess.Turns) != 2 {
		t.Fatalf("expected student + tutor turns, got %d", len(sess.Turns))
	}
	if sess.Turns[0].Role != model.RoleStudent || sess.Turns[0].Text != submission {
		t.Fatalf("unexpected student turn %+v", sess.Turns[0])
	}
	if sess.Turns[1].Score == nil || *sess.Turns[1].Score != 85 {
		t.Fatalf("expected scored tutor turn, got %+v", sess.Turns[1])
	}
}

func TestSubmit_ChatFlowCarriesHistory(t *testing.T) {
	gen := &stubGenerator{text: "참 좋은 질문이에요!"}
	m := newTestModel(gen)
	m.setMode(model.ModeChat)
	m.input.SetValue("비유법이 뭐예요?")

	cmd := m.submit()
	if cmd == nil {
		t.Fatalf("expected a command from submit")
	}
	msg := cmd()
	done, ok := msg.(chatDoneMsg)
	if !ok {
		t.Fatalf("expected chatDoneMsg, got %T", msg)
	}
	if done.result.Reply != "참 좋은 질문이에요!" {
		t.Fatalf("unexpected reply %q", done.result.Reply)
	}

	// The student's new utterance is in the transcript the prompt carries.
	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], "학생: 비유법이 뭐예요?") {
		t.Fatalf("expected new utterance inside the prompt transcript")
	}

	_, _ = m.Update(done)
	sess, _ := m.registry.Get(m.sessionID)
	if len(sess.Turns) != 2 || sess.Turns[1].Text != "참 좋은 질문이에요!" {
		t.Fatalf("expected tutor reply appended, got %+v", sess.Turns)
	}
}

func TestSubmit_ChatFailureShowsApology(t *testing.T) {
	gen := &stubGenerator{err: errors.New("quota exceeded")}
	m := newTestModel(gen)
	m.setMode(model.ModeChat)
	m.input.SetValue("선생님 안녕하세요!")

	msg := m.submit()()
	done := msg.(chatDoneMsg)
	if !done.result.Fallback {
		t.Fatalf("expected fallback reply")
	}
	_, _ = m.Update(done)
	sess, _ := m.registry.Get(m.sessionID)
	if len(sess.Turns) != 2 || !strings.Contains(sess.Turns[1].Text, "죄송해요") {
		t.Fatalf("expected apology appended, got %+v", sess.Turns)
	}
}

func TestSubmit_BlockedWhilePending(t *testing.T) {
	m := newTestModel(&stubGenerator{text: `{"score": 70, "feedback": "f"}`})
	m.pending = true
	m.input.SetValue(submission)

	if cmd := m.submit(); cmd != nil {
		t.Fatalf("expected submit blocked while a reply is pending")
	}
}

func TestResetKey_ClearsConversation(t *testing.T) {
	m := newTestModel(&stubGenerator{})
	m.setMode(model.ModeChat)
	m.registry.Append(m.sessionID, model.StudentTurn("하나"), model.TutorTurn("둘"))

	_, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlR})

	sess, _ := m.registry.Get(m.sessionID)
	if len(sess.Turns) != 0 {
		t.Fatalf("expected history cleared, got %d turns", len(sess.Turns))
	}
	if m.mode != model.ModeEvaluate || sess.Mode != model.ModeEvaluate {
		t.Fatalf("expected evaluate mode after reset, got %s and %s", m.mode, sess.Mode)
	}
	if !strings.Contains(m.message, "초기화") {
		t.Fatalf("expected reset confirmation message, got %q", m.message)
	}
	recent := m.events.Recent(time.Now().UTC(), 1)
	if len(recent) != 1 || recent[0].Kind != events.KindReset {
		t.Fatalf("expected reset event recorded, got %v", recent)
	}
}

func TestSettingsFocusAndCycle(t *testing.T) {
	m := newTestModel(&stubGenerator{})

	_, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != focusSettings {
		t.Fatalf("expected settings focus after tab")
	}

	// Default grade is the middle band; down cycles to the next one.
	_, _ = m.handleSettingsKey(tea.KeyMsg{Type: tea.KeyDown})
	if m.settings.Grade != "5-6학년군" {
		t.Fatalf("expected grade cycled to 5-6학년군, got %s", m.settings.Grade)
	}
	sess, _ := m.registry.Get(m.sessionID)
	if sess.Settings.Grade != "5-6학년군" {
		t.Fatalf("expected registry settings updated, got %s", sess.Settings.Grade)
	}

	// Right moves to the subject field; up cycles backwards with wrap.
	_, _ = m.handleSettingsKey(tea.KeyMsg{Type: tea.KeyRight})
	_, _ = m.handleSettingsKey(tea.KeyMsg{Type: tea.KeyUp})
	if m.settings.Subject != "그 외" {
		t.Fatalf("expected subject wrapped to 그 외, got %s", m.settings.Subject)
	}

	// The mode field toggles between the two modes.
	m.field = fieldMode
	_, _ = m.handleSettingsKey(tea.KeyMsg{Type: tea.KeyDown})
	if m.mode != model.ModeChat {
		t.Fatalf("expected mode toggled to chat, got %s", m.mode)
	}

	_, _ = m.handleSettingsKey(tea.KeyMsg{Type: tea.KeyEsc})
	if m.focus != focusInput {
		t.Fatalf("expected focus back on input after esc")
	}
}

func TestView_RendersConversation(t *testing.T) {
	m := newTestModel(&stubGenerator{})
	m.registry.Append(m.sessionID,
		model.StudentTurn("제 일기를 봐주세요"),
		model.ScoredTutorTurn("정말 잘 썼어요", 85),
	)

	// Styles render as plain text without a TTY, so substring checks hold.
	view := m.View()
	for _, want := range []string{
		"AI 글쓰기 튜터",
		"평가 모드",
		"학생",
		"제 일기를 봐주세요",
		"🎉 훌륭해요! 총점: 85점 / 100점",
		"정말 잘 썼어요",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestView_PendingSpinner(t *testing.T) {
	m := newTestModel(&stubGenerator{})
	m.pending = true

	if !strings.Contains(m.View(), "꼼꼼히 평가하고 있어요") {
		t.Fatalf("expected evaluation spinner in view")
	}

	m.mode = model.ModeChat
	if !strings.Contains(m.View(), "생각하고 있어요") {
		t.Fatalf("expected chat spinner in view")
	}
}

func TestScrollClamping(t *testing.T) {
	m := newTestModel(&stubGenerator{})
	m.height = 12
	for i := 0; i < 30; i++ {
		m.registry.Append(m.sessionID, model.StudentTurn("줄을 채우는 메시지입니다"))
	}

	max := m.maxScroll()
	if max <= 0 {
		t.Fatalf("expected scrollable history, maxScroll=%d", max)
	}
	for i := 0; i < max+10; i++ {
		_, _ = m.handleInputKey(tea.KeyMsg{Type: tea.KeyUp})
	}
	if m.scroll != max {
		t.Fatalf("expected scroll clamped at %d, got %d", max, m.scroll)
	}
	for i := 0; i < max+10; i++ {
		_, _ = m.handleInputKey(tea.KeyMsg{Type: tea.KeyDown})
	}
	if m.scroll != 0 {
		t.Fatalf("expected scroll back at bottom, got %d", m.scroll)
	}
}

func TestCycleWrapsAround(t *testing.T) {
	values := []string{"a", "b", "c"}
	if got := cycle(values, "c", 1); got != "a" {
		t.Fatalf("expected wrap to a, got %s", got)
	}
	if got := cycle(values, "a", -1); got != "c" {
		t.Fatalf("expected wrap to c, got %s", got)
	}
	if got := cycle(values, "unknown", 1); got != "a" {
		t.Fatalf("expected fallback to first value, got %s", got)
	}
}
