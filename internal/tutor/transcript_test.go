package tutor

import (
	"fmt"
	"strings"
	"testing"

	"github.com/geulmoi/geulssaem/internal/model"
)

func TestFormatTranscript_LabelsAndOrder(t *testing.T) {
	turns := []model.Turn{
		model.StudentTurn("제 글을 봐주세요"),
		model.TutorTurn("물론이죠!"),
	}

	got := FormatTranscript(turns)
	want := "학생: 제 글을 봐주세요\n선생님: 물론이죠!\n"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFormatTranscript_ScoredTurnCarriesScorePrefix(t *testing.T) {
	turns := []model.Turn{
		model.ScoredTutorTurn("잘 썼어요", 85),
	}

	got := FormatTranscript(turns)
	if got != "선생님: (점수: 85점) 잘 썼어요\n" {
		t.Fatalf("unexpected transcript %q", got)
	}
}

func TestFormatTranscript_KeepsOnlyLastEight(t *testing.T) {
	var turns []model.Turn
	for i := 1; i <= 10; i++ {
		turns = append(turns, model.StudentTurn(fmt.Sprintf("메시지 %d번", i)))
	}

	got := FormatTranscript(turns)
	if strings.Contains(got, "메시지 1번") || strings.Contains(got, "메시지 2번") {
		t.Fatalf("expected first two turns dropped, got %q", got)
	}
	if !strings.Contains(got, "메시지 3번") || !strings.Contains(got, "메시지 10번") {
		t.Fatalf("expected turns 3..10 kept, got %q", got)
	}
	if lines := strings.Count(got, "\n"); lines != 8 {
		t.Fatalf("expected 8 lines, got %d", lines)
	}
}

func TestFormatTranscript_TruncatesLongTurnsByRune(t *testing.T) {
	long := strings.Repeat("가", 150)
	got := FormatTranscript([]model.Turn{model.StudentTurn(long)})

	want := "학생: " + strings.Repeat("가", 97) + "...\n"
	if got != want {
		t.Fatalf("expected 97-rune cut with ellipsis, got %q", got)
	}
}

func TestFormatTranscript_HundredRunesUntouched(t *testing.T) {
	exact := strings.Repeat("나", 100)
	got := FormatTranscript([]model.Turn{model.StudentTurn(exact)})

	if got != "학생: "+exact+"\n" {
		t.Fatalf("expected 100-rune turn kept whole, got %q", got)
	}
}

func TestFormatTranscript_Empty(t *testing.T) {
	if got := FormatTranscript(nil); got != "" {
		t.Fatalf("expected empty transcript, got %q", got)
	}
}
