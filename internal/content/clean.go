package content

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

type rule struct {
	re   *regexp.Regexp
	repl string
}

// markdownRules run in order. Code blocks go first so their bodies are not
// picked apart by the inline rules.
var markdownRules = []rule{
	{regexp.MustCompile("```[\\s\\S]*?```"), ""},
	{regexp.MustCompile(`#{1,6}\s+`), ""},
	{regexp.MustCompile(`\*\*(.*?)\*\*`), "$1"},
	{regexp.MustCompile(`\*(.*?)\*`), "$1"},
	{regexp.MustCompile("`(.*?)`"), "$1"},
	{regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`), ""},
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "$1"},
	{regexp.MustCompile(`>\s+`), ""},
	{regexp.MustCompile(`(?m)^\s*[-*+]\s+`), ""},
	{regexp.MustCompile(`(?m)^\s*\d+\.\s+`), ""},
	{regexp.MustCompile(`\|[^|\n]*\|`), ""},
	{regexp.MustCompile(`---+`), ""},
	{regexp.MustCompile(`\n{3,}`), "\n\n"},
	{regexp.MustCompile(`\s+`), " "},
}

// CleanMarkdown strips markdown syntax, leaving text that reads naturally
// aloud.
func CleanMarkdown(markdown string) string {
	s := markdown
	for _, r := range markdownRules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return strings.TrimSpace(s)
}

var (
	webChrome = regexp.MustCompile(`(?i)\b(click here|learn more|read more|see more|view all|show more|back to top|skip to content|continue reading|home|menu|search|share|tweet|like|follow|subscribe|next|previous|prev)\b`)

	quotes = strings.NewReplacer(
		"“", `"`, "”", `"`, "„", `"`,
		"‘", "'", "’", "'",
		"–", "-", "—", "-",
	)

	separators   = regexp.MustCompile(`\s*[|>»]\s*`)
	spaces       = regexp.MustCompile(`\s+`)
	doublePeriod = regexp.MustCompile(`\.\s*\.`)
	spacedPunct  = regexp.MustCompile(`\s+([.!?])`)
)

// SanitizeForSpeech removes web chrome phrases and characters that read
// badly, such as breadcrumb separators and typographic quotes.
func SanitizeForSpeech(text string) string {
	s := norm.NFKC.String(text)
	s = webChrome.ReplaceAllString(s, "")
	s = quotes.Replace(s)
	s = separators.ReplaceAllString(s, ". ")
	s = spaces.ReplaceAllString(s, " ")
	s = doublePeriod.ReplaceAllString(s, ".")
	s = spacedPunct.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

// collapse trims and folds runs of whitespace into single spaces.
func collapse(text string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(text, " "))
}

// Summary returns text cut to at most maxLen characters at a word boundary,
// with "..." appended when anything was cut.
func Summary(text string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultSummaryLength
	}
	cleaned := collapse(text)
	runes := []rune(cleaned)
	if len(runes) <= maxLen {
		return cleaned
	}

	truncated := string(runes[:maxLen])
	if i := strings.LastIndex(truncated, " "); i > 0 {
		return truncated[:i] + "..."
	}
	return truncated + "..."
}
