// Package conv renders LLM markdown output for reply channels that do not
// accept raw markdown: Telegram's HTML subset and LINE's plain text.
package conv

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/inbucket/html2text"
	"github.com/microcosm-cc/bluemonday"
)

var (
	extensions = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	htmlFlags  = html.CommonFlags | html.HrefTargetBlank
	tgPolicy   = bluemonday.NewPolicy()
)

func init() {
	// Allowed tags https://core.telegram.org/bots/api#html-style
	tgPolicy.AllowElements("b", "strong", "i", "em", "u", "ins", "s", "strike", "del", "code", "pre", "blockquote")
	tgPolicy.AllowAttrs("href").OnElements("a")
	tgPolicy.AllowAttrs("class").OnElements("code")
}

func renderHTML(md []byte) []byte {
	p := parser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	return markdown.Render(p.Parse(md), renderer)
}

func MarkdownToTelegramHTML(md []byte) string {
	return string(tgPolicy.SanitizeBytes(renderHTML(md)))
}

// MarkdownToPlainText flattens markdown for channels that render text
// verbatim. Formatting is dropped, link targets are kept.
func MarkdownToPlainText(md []byte) string {
	text, err := html2text.FromString(string(renderHTML(md)), html2text.Options{
		OmitLinks: false,
		TextOnly:  true,
	})
	if err != nil {
		// Renderer failure should never eat the reply.
		return strings.TrimSpace(string(md))
	}
	return strings.TrimSpace(text)
}
