package mailbox

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)

	// A 6-digit run following the portal's verification keywords wins over a
	// bare run elsewhere in the text; the portal's emails interleave
	// marketing numerals with the real code.
	keywordCodePattern = regexp.MustCompile(`(?:인증|코드)[^0-9]{0,16}([0-9]{6})`)
	bareCodePattern    = regexp.MustCompile(`(?:^|[^0-9])([0-9]{6})(?:[^0-9]|$)`)
)

// stripHTML flattens an HTML body into plain text before pattern matching.
func stripHTML(body string) string {
	text := tagPattern.ReplaceAllString(body, " ")
	text = html.UnescapeString(text)
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

// extractCode pulls the 6-digit verification code out of a decoded message
// body. A bare 6-digit run only counts when the verification keyword appears
// somewhere in the text; an unrelated number alone is not a code.
func extractCode(body string) (string, bool) {
	text := stripHTML(body)

	if m := keywordCodePattern.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	if !strings.Contains(text, "인증") && !strings.Contains(text, "코드") {
		return "", false
	}
	if m := bareCodePattern.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	return "", false
}
