package usecase

import (
	"strings"

	"github.com/xavierca1/voyage-leads/internal/entity"
)

// AssembleConversation returns the lead's conversation as ordered turns.
// Chat history takes precedence over voice transcripts; a lead with neither
// yields an empty slice.
func AssembleConversation(lead entity.Lead) []Message {
	if lead.ChatHistory != nil {
		msgs := make([]Message, 0, len(lead.ChatHistory))
		for _, m := range lead.ChatHistory {
			msgs = append(msgs, Message{Role: m.Role, Content: m.Content})
		}
		return msgs
	}

	msgs := make([]Message, 0, len(lead.VoiceTranscripts))
	for _, t := range lead.VoiceTranscripts {
		role := entity.RoleAssistant
		if t.Speaker == entity.SpeakerCustomer {
			role = entity.RoleUser
		}
		msgs = append(msgs, Message{Role: role, Content: t.Text})
	}
	return msgs
}

// FlattenConversation renders one "<role>: <content>" line per turn.
func FlattenConversation(msgs []Message) string {
	lines := make([]string, len(msgs))
	for i, m := range msgs {
		lines[i] = string(m.Role) + ": " + m.Content
	}
	return strings.Join(lines, "\n")
}
