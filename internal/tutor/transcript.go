package tutor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/geulmoi/geulssaem/internal/model"
)

const (
	// historyWindow is how many recent turns the conversation prompt carries.
	historyWindow = 8
	// turnDisplayLimit is the rune count above which turn text is truncated.
	turnDisplayLimit = 100
	// turnTruncateAt is where truncated text is cut before the ellipsis.
	turnTruncateAt = 97
)

// FormatTranscript renders recent turns for the conversation prompt, oldest
// first. Only the last 8 turns are included to keep token usage bounded, and
// long turn text is cut at 97 runes with an ellipsis. Tutor turns that
// delivered an evaluation keep their score as a "(점수: N점)" prefix so the
// model sees how the student has been doing.
func FormatTranscript(turns []model.Turn) string {
	recent := turns
	if len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}

	var b strings.Builder
	for _, turn := range recent {
		text := turn.Text
		if utf8.RuneCountInString(text) > turnDisplayLimit {
			text = string([]rune(text)[:turnTruncateAt]) + "..."
		}
		if turn.Score != nil {
			fmt.Fprintf(&b, "%s: (점수: %d점) %s\n", turn.Role.Label(), *turn.Score, text)
		} else {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role.Label(), text)
		}
	}
	return b.String()
}
