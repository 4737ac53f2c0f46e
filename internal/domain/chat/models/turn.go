package models

// Role identifies the author of a chat turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is a single message in a conversation. Turns are immutable once sent.
type ChatTurn struct {
	Role    Role   `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// LastUserTurn returns the index of the most recent user turn, or -1 if there is none.
func LastUserTurn(turns []ChatTurn) int {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == RoleUser {
			return i
		}
	}
	return -1
}

// ReplaceTurn returns a copy of turns with the content at index i replaced.
func ReplaceTurn(turns []ChatTurn, i int, content string) []ChatTurn {
	out := make([]ChatTurn, len(turns))
	copy(out, turns)
	out[i].Content = content
	return out
}
