package chat

import (
	"regexp"
	"strings"
)

// MaxMessageLen caps the sanitized message body, in runes.
const MaxMessageLen = 1000

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	tagRe         = regexp.MustCompile(`<[^>]*>`)
)

// SanitizeBody strips script blocks wholesale (contents included), then any
// remaining tag-like markup, then surrounding whitespace. Length is validated
// by the message store after sanitization, not truncated here.
func SanitizeBody(body string) string {
	s := scriptBlockRe.ReplaceAllString(body, "")
	s = tagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
