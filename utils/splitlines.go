package utils

import "strings"

// SplitMessageByLines breaks content into chunks of at most maxLen characters,
// preferring line boundaries and splitting oversized lines mid-line. Blank
// lines are dropped. Used to relay evidence text within platform message
// limits.
func SplitMessageByLines(content string, maxLen int) []string {
	if maxLen <= 0 || strings.TrimSpace(content) == "" {
		return nil
	}

	var chunks []string
	current := ""

	flush := func() {
		if current != "" {
			chunks = append(chunks, current)
			current = ""
		}
	}

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(strings.TrimRight(raw, "\r"))
		if line == "" {
			continue
		}

		if current != "" && len(current)+1+len(line) <= maxLen {
			current += "\n" + line
			continue
		}

		flush()

		if len(line) <= maxLen {
			current = line
			continue
		}

		for len(line) > maxLen {
			chunks = append(chunks, line[:maxLen])
			line = line[maxLen:]
		}
		current = line
	}

	flush()
	return chunks
}
