package tutor

import "strings"

// normalizeReply prepares a raw model reply for JSON parsing: surrounding
// whitespace is trimmed and a markdown code fence (with optional language
// tag, e.g. ```json) is removed. When the fence structure is ambiguous,
// such as an opening fence with no body or no closing fence, the trimmed
// reply is returned unchanged and the parser decides what to make of it.
func normalizeReply(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	rest := text[3:]
	// The language tag, if any, occupies the remainder of the opening line.
	idx := strings.IndexByte(rest, '\n')
	if idx < 0 {
		return text
	}
	rest = rest[idx+1:]

	if !strings.HasSuffix(rest, "```") {
		return text
	}
	return strings.TrimSpace(strings.TrimSuffix(rest, "```"))
}
