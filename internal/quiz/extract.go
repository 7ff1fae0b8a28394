package quiz

import (
	"regexp"
	"strings"
)

// Extraction strategies for JSON buried in LLM output, tried in order.
// Each is a pure function returning the extracted text and whether it
// matched. The first non-empty match wins; the trimmed raw text is the
// last resort.

type extractFunc func(string) (string, bool)

var (
	fencedJSONRe = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	fencedAnyRe  = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

var extractors = []extractFunc{
	extractFencedJSON,
	extractFencedAny,
	extractBracketSpan,
}

// extractJSON runs the cascade over raw model output.
func extractJSON(text string) string {
	for _, extract := range extractors {
		if match, ok := extract(text); ok && match != "" {
			return match
		}
	}
	return strings.TrimSpace(text)
}

func extractFencedJSON(text string) (string, bool) {
	m := fencedJSONRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func extractFencedAny(text string) (string, bool) {
	m := fencedAnyRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// extractBracketSpan takes the substring from the first '[' to the last ']'.
func extractBracketSpan(text string) (string, bool) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
