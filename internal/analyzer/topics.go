package analyzer

import (
	"encoding/json"
	"strings"

	"github.com/BerylCAtieno/document-analyzer-api/internal/models"
)

// parseTopics coerces model output into a string array. The model is asked
// for a bare JSON array but often wraps it in prose or code fences, so the
// text is trimmed to the first '[' and last ']' before parsing. If that
// still fails the result degrades to a single fallback topic, never nil.
func parseTopics(raw string) []string {
	text := strings.TrimSpace(raw)

	if idx := strings.Index(text, "["); idx > 0 {
		text = text[idx:]
	}
	if idx := strings.LastIndex(text, "]"); idx >= 0 && idx < len(text)-1 {
		text = text[:idx+1]
	}

	var topics []string
	if err := json.Unmarshal([]byte(text), &topics); err != nil || topics == nil {
		return []string{models.TopicExtractionFailed}
	}

	return topics
}
