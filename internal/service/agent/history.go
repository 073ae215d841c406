package agent

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/medgraph/internal/core"
)

var (
	tokenizerOnce sync.Once
	tokenizer     *tiktoken.Tiktoken
)

func getTokenizer() *tiktoken.Tiktoken {
	tokenizerOnce.Do(func() {
		tk, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			// Offline fallback below estimates instead.
			return
		}
		tokenizer = tk
	})
	return tokenizer
}

func countTokens(text string) int {
	if tk := getTokenizer(); tk != nil {
		return len(tk.Encode(text, nil, nil))
	}
	// Rough estimate when the encoding is unavailable.
	return len(text)/4 + 1
}

// windowByTokens keeps the most recent messages that fit the budget,
// preserving chronological order. A tool result is only kept together with
// the assistant message that requested it, so the model never sees an
// orphaned tool call.
func windowByTokens(messages []core.Message, budget int) []core.Message {
	if budget <= 0 || len(messages) == 0 {
		return messages
	}

	total := 0
	start := len(messages)
	for i := len(messages) - 1; i >= 0; i-- {
		cost := countTokens(messages[i].Content)
		for _, tc := range messages[i].ToolCalls {
			cost += countTokens(tc.Function.Name) + countTokens(tc.Function.Arguments)
		}
		if total+cost > budget && start < len(messages) {
			break
		}
		total += cost
		start = i
	}

	window := messages[start:]
	return dropOrphanedToolMessages(window)
}

func dropOrphanedToolMessages(messages []core.Message) []core.Message {
	known := make(map[string]bool)
	out := make([]core.Message, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == core.RoleTool {
			if !known[msg.ToolCallID] {
				continue
			}
		}
		for _, tc := range msg.ToolCalls {
			known[tc.ID] = true
		}
		out = append(out, msg)
	}
	return out
}
