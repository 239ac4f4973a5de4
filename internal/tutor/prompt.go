package tutor

import (
	_ "embed"
	"fmt"
)

// evaluationPromptTemplate is the rubric prompt sent in evaluation mode.
// Slots: 1=grade, 2=subject, 3=writing type, 4=student text.
// Loaded from prompts/evaluation.md at compile time.
//
//go:embed prompts/evaluation.md
var evaluationPromptTemplate string

// conversationPromptTemplate is the free-conversation prompt.
// Slots: 1=grade, 2=subject, 3=writing type, 4=transcript, 5=new utterance.
// Loaded from prompts/conversation.md at compile time.
//
//go:embed prompts/conversation.md
var conversationPromptTemplate string

// Settings is the study context every prompt embeds. The values are carried
// as opaque strings: unknown labels flow into the prompt unchanged.
type Settings struct {
	Grade       string `json:"grade"`
	Subject     string `json:"subject"`
	WritingType string `json:"writing_type"`
}

// BuildEvaluationPrompt renders the rubric prompt for one submission.
func BuildEvaluationPrompt(s Settings, studentText string) string {
	return fmt.Sprintf(evaluationPromptTemplate, s.Grade, s.Subject, s.WritingType, studentText)
}

// BuildConversationPrompt renders the conversation prompt around the
// transcript of recent turns and the student's new utterance.
func BuildConversationPrompt(s Settings, transcript, utterance string) string {
	return fmt.Sprintf(conversationPromptTemplate, s.Grade, s.Subject, s.WritingType, transcript, utterance)
}
