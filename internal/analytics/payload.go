package analytics

import (
	"encoding/json"
	"sort"
	"strings"
)

// Message type labels produced by classification. The fallback label is
// whatever the stored type column says, or LabelNone when absent.
const (
	LabelTemplate = "template"
	LabelSticker  = "sticker"
	LabelImage    = "image"
	LabelAudio    = "audio"
	LabelNone     = "—"
)

// Decoded is the result of decoding a raw message payload: the most
// human-readable text that could be extracted plus a classification label.
type Decoded struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// preferredTextKeys is the ordered list of object keys checked first when
// searching a payload for display text. The order matters: "text" and "body"
// carry the actual message in WhatsApp-style payloads, while "description"
// and "value" are last-resort metadata.
var preferredTextKeys = []string{
	"text", "body", "title", "message", "content", "caption", "label", "description", "value",
}

// containerKeys name top-level envelopes whose interior is searched before
// the generic full-object walk, so a button label inside "interactive" wins
// over unrelated strings elsewhere in the payload.
var containerKeys = []string{"interactive", "postback", "template", "flows", "quickReply"}

// maxSearchDepth bounds the recursive text search.
const maxSearchDepth = 10

// payloadValue is the tagged decode of a raw message field: either plain
// text (parsed=false) or a generic JSON value, with the original string kept
// for fallbacks and substring probes.
type payloadValue struct {
	raw    string
	val    any
	parsed bool
}

// parsePayload JSON-decodes a raw message field. A decoded value that is
// itself a string is decoded once more to cover double-encoded payloads; if
// the inner decode fails the inner string is kept as-is. A failed outer
// decode yields a plain-text value.
func parsePayload(raw string) payloadValue {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return payloadValue{raw: raw}
	}
	if s, ok := v.(string); ok {
		var inner any
		if err := json.Unmarshal([]byte(s), &inner); err == nil {
			return payloadValue{raw: raw, val: inner, parsed: true}
		}
		return payloadValue{raw: raw, val: s, parsed: true}
	}
	return payloadValue{raw: raw, val: v, parsed: true}
}

// classifierRule pairs a predicate with the label it produces. Rules are
// evaluated first-match-wins in declaration order; the order is load-bearing
// (sticker payloads also contain "image/webp", so sticker must run before
// image, and template envelopes before any generic probing).
type classifierRule struct {
	label string
	match func(pv payloadValue, storedType string) bool
}

var classifierRules = []classifierRule{
	{LabelTemplate, func(pv payloadValue, storedType string) bool {
		if m, ok := pv.val.(map[string]any); ok {
			if _, ok := m["notification"]; ok {
				return true
			}
			if _, ok := m["template"]; ok {
				return true
			}
			if t, _ := m["type"].(string); t == LabelTemplate {
				return true
			}
		}
		return storedType == LabelTemplate
	}},
	{LabelSticker, func(pv payloadValue, storedType string) bool {
		if payloadType(pv) == LabelSticker || storedType == LabelSticker {
			return true
		}
		return strings.Contains(pv.raw, "sticker") && strings.Contains(pv.raw, "image/webp")
	}},
	{LabelImage, func(pv payloadValue, storedType string) bool {
		switch payloadType(pv) {
		case LabelImage, "photo":
			return true
		}
		switch storedType {
		case LabelImage, "photo":
			return true
		}
		return strings.Contains(pv.raw, "image/")
	}},
	{LabelAudio, func(pv payloadValue, storedType string) bool {
		if payloadType(pv) == LabelAudio || storedType == LabelAudio {
			return true
		}
		if strings.Contains(pv.raw, "audio/") {
			return true
		}
		lower := strings.ToLower(pv.raw)
		return strings.Contains(lower, "opus") && strings.Contains(lower, "audio")
	}},
}

// payloadType returns the "type" field of a JSON object payload, or "".
func payloadType(pv payloadValue) string {
	if m, ok := pv.val.(map[string]any); ok {
		t, _ := m["type"].(string)
		return t
	}
	return ""
}

// Decode turns a raw message field (plain string, JSON, or double-encoded
// JSON) into display text and a classification label. It never fails: every
// malformed or unexpected shape degrades to a best-effort string and the
// stored-type fallback label.
func Decode(raw, storedType string) Decoded {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Decoded{Text: "", Label: fallbackLabel(storedType)}
	}
	pv := parsePayload(raw)
	return Decoded{Text: extractText(pv), Label: classify(pv, storedType)}
}

func classify(pv payloadValue, storedType string) string {
	for _, rule := range classifierRules {
		if rule.match(pv, storedType) {
			return rule.label
		}
	}
	return fallbackLabel(storedType)
}

func fallbackLabel(storedType string) string {
	if storedType != "" {
		return storedType
	}
	return LabelNone
}

// extractText pulls the most human-readable string out of a decoded payload.
// Known container envelopes are searched first, then the whole value. When
// nothing is found the raw string is returned verbatim so the dashboard
// still shows something inspectable.
func extractText(pv payloadValue) string {
	if pv.parsed {
		if m, ok := pv.val.(map[string]any); ok {
			for _, key := range containerKeys {
				if nested, ok := m[key]; ok {
					if found := findText(nested, 0); found != "" {
						return found
					}
				}
			}
		}
		if found := findText(pv.val, 0); found != "" {
			return found
		}
		if s, ok := pv.val.(string); ok && len(s) > 2 {
			return s
		}
	}
	return pv.raw
}

// findText is a depth-first search over a generic JSON value. Preferred keys
// are checked in order before anything else; a "payload" key holding a
// JSON-encoded string is re-decoded and searched; remaining object values
// are walked in sorted key order so repeated decodes of the same payload
// always return the same string. Strings shorter than three runes are
// ignored (they are almost always codes, not text).
func findText(v any, depth int) string {
	if depth > maxSearchDepth || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		if len(val) > 2 {
			return val
		}
	case map[string]any:
		for _, key := range preferredTextKeys {
			nested, ok := val[key]
			if !ok {
				continue
			}
			if s, ok := nested.(string); ok && len(s) > 2 {
				return s
			}
			if found := findText(nested, depth+1); found != "" {
				return found
			}
		}
		if p, ok := val["payload"]; ok {
			if s, ok := p.(string); ok {
				inner := parsePayload(s)
				switch inner.val.(type) {
				case map[string]any, []any:
					if found := findText(inner.val, depth+1); found != "" {
						return found
					}
				}
				if len(s) > 2 {
					return s
				}
			} else if found := findText(p, depth+1); found != "" {
				return found
			}
		}
		keys := make([]string, 0, len(val))
		for key := range val {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			switch val[key].(type) {
			case map[string]any, []any, string:
				if found := findText(val[key], depth+1); found != "" {
					return found
				}
			}
		}
	case []any:
		for _, item := range val {
			if found := findText(item, depth+1); found != "" {
				return found
			}
		}
	}
	return ""
}

// Truncate caps a string at n runes, appending an ellipsis when cut. Used by
// handlers to keep message previews table-sized.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
