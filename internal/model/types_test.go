package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFormatScoreLine(t *testing.T) {
	tests := []struct {
		name  string
		score int
		want  string
	}{
		{name: "top band", score: 100, want: "🎉 훌륭해요! 총점: 100점 / 100점"},
		{name: "lower edge of top band", score: 80, want: "🎉 훌륭해요! 총점: 80점 / 100점"},
		{name: "good band", score: 79, want: "📝 좋아요! 총점: 79점 / 100점"},
		{name: "lower edge of good band", score: 60, want: "📝 좋아요! 총점: 60점 / 100점"},
		{name: "keep-going band", score: 45, want: "📚 조금 더! 총점: 45점 / 100점"},
		{name: "cheer-up band", score: 30, want: "💪 힘내요! 총점: 30점 / 100점"},
		{name: "lowest non-zero", score: 1, want: "💪 힘내요! 총점: 1점 / 100점"},
		{name: "zero renders as error", score: 0, want: "❌ 평가 중 오류가 발생했습니다"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatScoreLine(tt.score); got != tt.want {
				t.Errorf("FormatScoreLine(%d) = %q, want %q", tt.score, got, tt.want)
			}
		})
	}
}

func TestRole_Label(t *testing.T) {
	if got := RoleStudent.Label(); got != "학생" {
		t.Errorf("RoleStudent.Label() = %q, want 학생", got)
	}
	if got := RoleTutor.Label(); got != "선생님" {
		t.Errorf("RoleTutor.Label() = %q, want 선생님", got)
	}
}

func TestScoredTutorTurn_ScoreInJSON(t *testing.T) {
	// Score=0 is a valid evaluation outcome (too-short guard). It must appear
	// in JSON output: the pointer distinguishes "no score" from "zero score".
	turn := ScoredTutorTurn("글이 너무 짧아요.", 0)

	data, err := json.Marshal(turn)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if !strings.Contains(string(data), `"score":0`) {
		t.Errorf("JSON output missing \"score\":0, got: %s", string(data))
	}
}

func TestTutorTurn_NoScoreInJSON(t *testing.T) {
	turn := TutorTurn("좋은 질문이에요!")

	data, err := json.Marshal(turn)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if strings.Contains(string(data), "score") {
		t.Errorf("conversation turn must not carry a score, got: %s", string(data))
	}
}

func TestLabelSets_ContainDefaults(t *testing.T) {
	tests := []struct {
		name string
		set  []string
		def  string
	}{
		{name: "grades", set: Grades(), def: DefaultGrade},
		{name: "subjects", set: Subjects(), def: DefaultSubject},
		{name: "writing types", set: WritingTypes(), def: DefaultWritingType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := false
			for _, v := range tt.set {
				if v == tt.def {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("default %q not in %v", tt.def, tt.set)
			}
		})
	}
}

func TestTokenUsage_Add(t *testing.T) {
	total := TokenUsage{InputTokens: 100, OutputTokens: 20}
	total.Add(TokenUsage{InputTokens: 150, OutputTokens: 30, CacheReadInputTokens: 50})

	if total.InputTokens != 250 || total.OutputTokens != 50 || total.CacheReadInputTokens != 50 {
		t.Errorf("unexpected accumulated usage: %+v", total)
	}
}
