// Package dialogue renders the negotiation engine's strategic output into
// natural-language shopkeeper replies via an OpenAI-compatible chat
// completion endpoint, with the engine's price treated as ground truth
// regardless of what the model proposes.
package dialogue

import (
	"fmt"
	"regexp"
)

const maxBuyerMessageLen = 500

// injectionPattern matches common prompt-injection phrasings so they can be
// redacted before ever reaching a template or the model.
var injectionPattern = regexp.MustCompile(`(?i)(ignore\s+(all\s+)?previous|system\s*:|you\s+are\s+now|forget\s+(your|all)|disregard\s+(above|instructions))`)

// controlChars matches C0 control characters other than newline, plus DEL.
var controlChars = regexp.MustCompile("[\x00-\x09\x0b-\x1f\x7f]")

// SanitizeBuyerMessage truncates, strips control characters, and redacts
// likely prompt-injection attempts from a raw buyer chat message before it
// is interpolated into a model prompt.
func SanitizeBuyerMessage(msg string) string {
	if len(msg) > maxBuyerMessageLen {
		msg = msg[:maxBuyerMessageLen]
	}
	msg = controlChars.ReplaceAllString(msg, "")
	if injectionPattern.MatchString(msg) {
		return "[message redacted]"
	}
	return msg
}

const maxTemplateValueLen = 200

// sanitizeTemplateValue applies the same control-char stripping and
// injection redaction as SanitizeBuyerMessage to a single scalar before it
// is interpolated into a prompt template, capping its length to prevent
// prompt stuffing through an oversized field like a product name.
func sanitizeTemplateValue(v any) string {
	s := fmt.Sprintf("%v", v)
	s = controlChars.ReplaceAllString(s, "")
	if injectionPattern.MatchString(s) {
		return "[redacted]"
	}
	if len(s) > maxTemplateValueLen {
		s = s[:maxTemplateValueLen]
	}
	return s
}
