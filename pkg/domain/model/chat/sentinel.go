package chat

import "strings"

// Sentinel is the marker the model appends to its reply once every piece of
// required information has been gathered.
const Sentinel = "###GATHERLY_DONE###"

// CompletionPreamble is prepended to every system prompt.
const CompletionPreamble = "When, and only when, you have collected every piece of information you need from the user, end your reply with the single line:\n" +
	Sentinel + "\n" +
	"Before that final line, continue the conversation normally: ask follow-up questions, acknowledge answers, and provide guidance.\n" +
	"Do not include \"" + Sentinel + "\" anywhere until you are completely ready to generate the final document."

// SystemPrompt joins the completion preamble and an agent's prompt.
func SystemPrompt(agentPrompt string) string {
	return CompletionPreamble + "\n\n" + agentPrompt
}

// DetectCompletion reports whether text contains the sentinel anywhere.
func DetectCompletion(text string) bool {
	return strings.Contains(text, Sentinel)
}

// StripSentinel removes every occurrence of the sentinel and trims the result.
// Removal repeats because joining the text around one occurrence can form
// another.
func StripSentinel(text string) string {
	for strings.Contains(text, Sentinel) {
		text = strings.ReplaceAll(text, Sentinel, "")
	}
	return strings.TrimSpace(text)
}

// LastMessageCompletes reports whether the final message carries the sentinel.
func LastMessageCompletes(msgs []Message) bool {
	if len(msgs) == 0 {
		return false
	}
	return DetectCompletion(msgs[len(msgs)-1].Content)
}

// DisplayMessages returns msgs with the sentinel removed from every
// assistant message. Stored messages keep the sentinel.
func DisplayMessages(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = m
		if m.Role == RoleAssistant {
			out[i].Content = StripSentinel(m.Content)
		}
	}
	return out
}
