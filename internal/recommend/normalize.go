package recommend

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	controlChars     = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	multipleNewlines = regexp.MustCompile(`\n{3,}`)

	// invisibleReplacer normalizes line endings and drops or flattens
	// Unicode format and spacing characters.
	invisibleReplacer = strings.NewReplacer(
		"\r\n", "\n",
		"\r", "\n",
		"\u2060", "", // word joiner
		"\uFEFF", "", // byte order mark
		"\u00AD", "", // soft hyphen
		"\u200E", "",
		"\u200F", "",
		"\u2028", "\n",
		"\u2029", "\n\n",
		"\u200B", " ",
		"\u200C", " ",
		"\u2009", " ",
		"\u202F", " ",
		"\u3000", " ",
	)
)

// NormalizeText cleans a farmer's question before it reaches the model.
// Whitespace inside each line collapses to single spaces and paragraphs
// keep at most one blank line between them.
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}
	s = invisibleReplacer.Replace(s)
	s = controlChars.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.FieldsFunc(line, unicode.IsSpace), " ")
	}
	s = strings.Join(lines, "\n")
	s = multipleNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
