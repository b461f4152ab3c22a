package notify

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Action is an interactive affordance attached to a message, rendered by the
// channel as a button that calls back with the given payload.
type Action struct {
	Label    string `json:"label"`
	Callback string `json:"callback"`
}

// Channel delivers rendered notification text to a destination. Delivery is
// best-effort; the channel enforces a per-message text length limit.
type Channel interface {
	Send(ctx context.Context, destination, text string, action *Action) error
	MaxTextLength() int
}

// SplitText splits text into ordered chunks of at most limit runes each,
// preferring to break at line boundaries. A non-positive limit disables
// splitting.
func SplitText(text string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, string(current))
			current = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		runes := []rune(line)
		for len(runes) > limit {
			flush()
			chunks = append(chunks, string(runes[:limit]))
			runes = runes[limit:]
		}
		if len(current) > 0 && len(current)+1+len(runes) > limit {
			flush()
		}
		if len(current) > 0 {
			current = append(current, '\n')
		}
		current = append(current, runes...)
	}
	flush()

	if len(chunks) == 0 {
		chunks = []string{""}
	}
	return chunks
}
