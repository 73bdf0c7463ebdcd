// Package markdown renders the small Markdown dialect used in post bodies.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

var (
	reBold             = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBoldUnderscore   = regexp.MustCompile(`__(.+?)__`)
	reItalic           = regexp.MustCompile(`\*([^*]+)\*`)
	reItalicUnderscore = regexp.MustCompile(`\b_([^_]+)_\b`)
	reInlineCode       = regexp.MustCompile("`([^`]+)`")
	reImage            = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)`)
	reLink             = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
	reOrderedItem      = regexp.MustCompile(`^\d+\.\s`)
)

// Markdown returns a templ.Component that renders md as HTML.
func Markdown(md string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		Render(&buf, md)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

type block int

const (
	blockNone block = iota
	blockPara
	blockList
	blockOrdered
	blockQuote
	blockTable
	blockCode
)

var closers = map[block]string{
	blockPara:    "</p>",
	blockList:    "</ul>",
	blockOrdered: "</ol>",
	blockQuote:   "</blockquote>",
	blockCode:    "</code></pre>",
}

type renderer struct {
	buf     *bytes.Buffer
	open    block
	tbody   bool // table body started
	codeTag bool // code block wrapped in a language badge div
	anchors map[string]int
}

// Render writes the HTML for md to buf.
func Render(buf *bytes.Buffer, md string) {
	r := &renderer{buf: buf, anchors: make(map[string]int)}
	for _, raw := range strings.Split(md, "\n") {
		r.line(strings.TrimRight(raw, "\r"))
	}
	r.close()
}

func (r *renderer) close() {
	switch r.open {
	case blockNone:
		return
	case blockTable:
		if r.tbody {
			r.buf.WriteString("</tbody>")
		}
		r.buf.WriteString("</table>")
		r.tbody = false
	case blockCode:
		r.buf.WriteString(closers[blockCode])
		if r.codeTag {
			r.buf.WriteString("</div>")
			r.codeTag = false
		}
	default:
		r.buf.WriteString(closers[r.open])
	}
	r.open = blockNone
}

// enter closes the current block unless it is already b, and reports whether
// a new block was opened.
func (r *renderer) enter(b block, openTag string) bool {
	if r.open == b {
		return false
	}
	r.close()
	r.buf.WriteString(openTag)
	r.open = b
	return true
}

func (r *renderer) line(line string) {
	if strings.HasPrefix(line, "```") {
		if r.open == blockCode {
			r.close()
			return
		}
		r.close()
		if lang := strings.TrimSpace(line[3:]); lang != "" {
			l := html.EscapeString(lang)
			r.buf.WriteString(`<div class="code-block"><span class="code-lang">` + l + `</span>`)
			r.buf.WriteString(`<pre><code class="language-` + l + `">`)
			r.codeTag = true
		} else {
			r.buf.WriteString("<pre><code>")
		}
		r.open = blockCode
		return
	}
	if r.open == blockCode {
		r.buf.WriteString(html.EscapeString(line))
		r.buf.WriteByte('\n')
		return
	}

	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		r.close()
	case strings.HasPrefix(line, "---"):
		r.close()
		r.buf.WriteString("<hr/>")
	case headingLevel(line) > 0:
		r.close()
		r.heading(headingLevel(line), line)
	case strings.HasPrefix(line, "|"):
		r.tableRow(line)
	case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
		r.enter(blockList, "<ul>")
		r.item(line[2:])
	case reOrderedItem.MatchString(line):
		r.enter(blockOrdered, "<ol>")
		r.item(reOrderedItem.ReplaceAllString(line, ""))
	case strings.HasPrefix(line, "> "):
		if !r.enter(blockQuote, "<blockquote>") {
			r.buf.WriteByte(' ')
		}
		r.buf.WriteString(FormatInline(strings.TrimSpace(line[2:])))
	default:
		if !r.enter(blockPara, "<p>") {
			r.buf.WriteByte(' ')
		}
		r.buf.WriteString(FormatInline(trimmed))
	}
}

func (r *renderer) item(text string) {
	r.buf.WriteString("<li>")
	r.buf.WriteString(FormatInline(strings.TrimSpace(text)))
	r.buf.WriteString("</li>")
}

func (r *renderer) heading(level int, line string) {
	text := strings.TrimSpace(line[level+1:])
	tag := "h" + strconv.Itoa(level)
	id := Anchor(text)
	if n := r.anchors[id]; n > 0 {
		r.anchors[id] = n + 1
		id += "-" + strconv.Itoa(n)
	} else {
		r.anchors[id] = 1
	}
	r.buf.WriteString("<" + tag + ` id="` + id + `">`)
	r.buf.WriteString(FormatInline(text))
	r.buf.WriteString("</" + tag + ">")
}

func (r *renderer) tableRow(line string) {
	if r.enter(blockTable, "<table><thead><tr>") {
		for _, cell := range tableCells(line) {
			r.buf.WriteString("<th>" + FormatInline(cell) + "</th>")
		}
		r.buf.WriteString("</tr></thead>")
		return
	}
	if !r.tbody {
		r.buf.WriteString("<tbody>")
		r.tbody = true
	}
	if isTableSeparator(line) {
		return
	}
	r.buf.WriteString("<tr>")
	for _, cell := range tableCells(line) {
		r.buf.WriteString("<td>" + FormatInline(cell) + "</td>")
	}
	r.buf.WriteString("</tr>")
}

// headingLevel returns 1-3 for "# ", "## " and "### " lines, else 0.
func headingLevel(line string) int {
	for level := 3; level >= 1; level-- {
		if strings.HasPrefix(line, strings.Repeat("#", level)+" ") {
			return level
		}
	}
	return 0
}

func tableCells(line string) []string {
	line = strings.Trim(strings.TrimSpace(line), "|")
	parts := strings.Split(line, "|")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func isTableSeparator(line string) bool {
	for _, cell := range tableCells(line) {
		if strings.Trim(cell, "-:") != "" {
			return false
		}
	}
	return true
}

// Heading is one entry of a post outline.
type Heading struct {
	Level int
	Text  string
	ID    string
}

// Headings lists the level 2 and 3 headings of md outside code blocks, with
// the same ids Render assigns.
func Headings(md string) []Heading {
	var out []Heading
	anchors := make(map[string]int)
	inCode := false
	for _, raw := range strings.Split(md, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.HasPrefix(line, "```") {
			inCode = !inCode
			continue
		}
		level := headingLevel(line)
		if inCode || level == 0 {
			continue
		}
		text := strings.TrimSpace(line[level+1:])
		id := Anchor(text)
		if n := anchors[id]; n > 0 {
			anchors[id] = n + 1
			id += "-" + strconv.Itoa(n)
		} else {
			anchors[id] = 1
		}
		if level >= 2 {
			out = append(out, Heading{Level: level, Text: text, ID: id})
		}
	}
	return out
}

// Anchor turns heading text into an element id: lowercase ASCII letters and
// digits separated by single dashes.
func Anchor(text string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	id := strings.TrimRight(b.String(), "-")
	if id == "" {
		return "section"
	}
	return id
}

// outsideTags applies fn to the text between HTML tags only, so emphasis
// patterns never rewrite attribute values.
func outsideTags(s string, fn func(string) string) string {
	var b strings.Builder
	for len(s) > 0 {
		lt := strings.IndexByte(s, '<')
		if lt < 0 {
			b.WriteString(fn(s))
			break
		}
		b.WriteString(fn(s[:lt]))
		gt := strings.IndexByte(s[lt:], '>')
		if gt < 0 {
			b.WriteString(s[lt:])
			break
		}
		b.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return b.String()
}

// FormatInline escapes s and applies images, links, code spans and emphasis.
func FormatInline(s string) string {
	out := html.EscapeString(s)

	// Code spans are swapped for placeholders first so nothing inside them
	// is treated as a link or emphasis.
	var spans []string
	out = reInlineCode.ReplaceAllStringFunc(out, func(m string) string {
		spans = append(spans, "<code>"+reInlineCode.FindStringSubmatch(m)[1]+"</code>")
		return "\x00" + strconv.Itoa(len(spans)-1) + "\x00"
	})

	out = reImage.ReplaceAllStringFunc(out, func(m string) string {
		match := reImage.FindStringSubmatch(m)
		src := SafeURL(match[2])
		if src == "" {
			return match[1]
		}
		return `<img src="` + src + `" alt="` + match[1] + `" loading="lazy" decoding="async"/>`
	})
	out = reLink.ReplaceAllStringFunc(out, func(m string) string {
		match := reLink.FindStringSubmatch(m)
		href := SafeURL(match[2])
		if href == "" {
			return match[1]
		}
		attrs := ""
		if isExternal(href) {
			attrs = ` target="_blank" rel="noopener noreferrer"`
		}
		return `<a href="` + href + `"` + attrs + `>` + match[1] + `</a>`
	})
	out = outsideTags(out, func(seg string) string {
		seg = reBold.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reBoldUnderscore.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reItalic.ReplaceAllString(seg, "<em>$1</em>")
		return reItalicUnderscore.ReplaceAllString(seg, "<em>$1</em>")
	})
	for i, span := range spans {
		out = strings.Replace(out, "\x00"+strconv.Itoa(i)+"\x00", span, 1)
	}
	return out
}

// isExternal reports whether href leaves the site, including
// protocol-relative URLs.
func isExternal(href string) bool {
	return strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") ||
		strings.HasPrefix(href, "//")
}

// SafeURL returns raw escaped for an attribute, or "" when its scheme is not
// allowed. References without a scheme (relative paths, fragments and
// protocol-relative URLs) are allowed.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" || strings.Contains(val, `\`) {
		return ""
	}
	u, err := url.Parse(val)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	}
	return ""
}
