package conv

import (
	"html"
	"regexp"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var (
	extensions  = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	htmlFlags   = mdhtml.CommonFlags | mdhtml.HrefTargetBlank
	tgPolicy    = bluemonday.NewPolicy()
	plainPolicy = bluemonday.StrictPolicy()

	blockTags = regexp.MustCompile(`(?i)</(p|li|h[1-6]|pre|blockquote|tr)>|<br\s*/?>`)
	spaces    = regexp.MustCompile(`[ \t]+`)
)

func init() {
	// Allowed tags https://core.telegram.org/bots/api#html-style
	tgPolicy.AllowElements("b", "strong", "i", "em", "u", "ins", "s", "strike", "del", "code", "pre", "blockquote")
	tgPolicy.AllowAttrs("href").OnElements("a")
	tgPolicy.AllowAttrs("class").OnElements("code")
}

func render(md []byte) []byte {
	p := parser.NewWithExtensions(extensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: htmlFlags})
	return markdown.Render(p.Parse(md), renderer)
}

func MarkdownToTelegramHTML(md []byte) string {
	return string(tgPolicy.SanitizeBytes(render(md)))
}

// MarkdownToSpeech renders markdown as plain sentences fit for a speech
// engine: no emphasis markers, bullets, headings or links, one line per block.
func MarkdownToSpeech(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}

	rendered := blockTags.ReplaceAllString(string(render([]byte(md))), "$0\n")
	text := html.UnescapeString(plainPolicy.Sanitize(rendered))

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(spaces.ReplaceAllString(line, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
