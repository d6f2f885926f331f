// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markdown converts untrusted assistant text into a small, safe
// HTML subset (bold, italic, code, headings, list items, links,
// paragraphs).
//
// The renderer is a fixed chain of regex passes. The order is a strict
// contract: escaping runs first so no later pass can smuggle raw markup,
// and each pass operates on the output of the previous one. The passes
// are NOT commutative - do not reorder them.
//
// Render is not idempotent: feeding rendered HTML back through Render
// re-escapes it. Callers must always render from the original raw
// buffer. This is why streaming re-renders the whole accumulated text
// on every chunk instead of concatenating rendered fragments.
package markdown

import (
	"regexp"
	"strings"
)

// codeNewline is the sentinel standing in for newlines inside fenced
// code while the line-oriented passes run. NUL cannot appear in valid
// text at this point because the escaper has already run.
const codeNewline = "\x00"

// htmlEscaper escapes the five HTML-significant characters. A single
// Replacer pass cannot be tricked into double-escaping its own output.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

var (
	boldStars       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	boldUnderscores = regexp.MustCompile(`__(.+?)__`)
	italicStar      = regexp.MustCompile(`\*([^*\n]+)\*`)
	italicUnder     = regexp.MustCompile(`_([^_\n]+)_`)
	fencedCode      = regexp.MustCompile("(?s)```(.*?)```")
	inlineCode      = regexp.MustCompile("`([^`\n]+)`")
	unorderedItem   = regexp.MustCompile(`(?m)^- (.+)$`)
	orderedItem     = regexp.MustCompile(`(?m)^\d+\. (.+)$`)
	heading3        = regexp.MustCompile(`(?m)^### (.+)$`)
	heading2        = regexp.MustCompile(`(?m)^## (.+)$`)
	heading1        = regexp.MustCompile(`(?m)^# (.+)$`)
	// Runs after escaping, so a URL can never contain a live '<'.
	bareURL = regexp.MustCompile(`https?://[^\s<]+`)
	// Matches runs of adjacent <li> elements for list grouping.
	listRun = regexp.MustCompile(`(?s)<li>.*?</li>(?:<li>.*?</li>)*`)
)

// Render converts text to the safe HTML subset. Pass order per the
// package contract:
//
//  1. escape HTML characters
//  2. bold (**x** or __x__)
//  3. italic (*x* or _x_)
//  4. fenced code blocks
//  5. inline code
//  6. list item lines
//  7. headings (longest prefix first: ###, ##, #)
//  8. bare URLs
//  9. paragraph / line breaks
// 10. wrap in one paragraph
func Render(text string) string {
	out := htmlEscaper.Replace(text)

	out = boldStars.ReplaceAllString(out, "<strong>$1</strong>")
	out = boldUnderscores.ReplaceAllString(out, "<strong>$1</strong>")

	out = italicStar.ReplaceAllString(out, "<em>$1</em>")
	out = italicUnder.ReplaceAllString(out, "<em>$1</em>")

	// Newlines inside fenced blocks are swapped for a sentinel so the
	// list, heading and line-break passes below cannot touch them; they
	// are restored verbatim at the end.
	out = fencedCode.ReplaceAllStringFunc(out, func(block string) string {
		inner := fencedCode.FindStringSubmatch(block)[1]
		inner = strings.ReplaceAll(inner, "\n", codeNewline)
		return "<pre><code>" + inner + "</code></pre>"
	})
	out = inlineCode.ReplaceAllString(out, "<code>$1</code>")

	out = unorderedItem.ReplaceAllString(out, "<li>$1</li>")
	out = orderedItem.ReplaceAllString(out, "<li>$1</li>")

	out = heading3.ReplaceAllString(out, "<h3>$1</h3>")
	out = heading2.ReplaceAllString(out, "<h2>$1</h2>")
	out = heading1.ReplaceAllString(out, "<h1>$1</h1>")

	out = bareURL.ReplaceAllStringFunc(out, func(url string) string {
		return `<a href="` + url + `" target="_blank" rel="noopener noreferrer">` + url + `</a>`
	})

	out = strings.ReplaceAll(out, "\n\n", "</p><p>")
	out = strings.ReplaceAll(out, "\n", "<br>")

	out = strings.ReplaceAll(out, codeNewline, "\n")

	return "<p>" + out + "</p>"
}

// WrapListItems groups runs of adjacent <li> elements in rendered HTML
// into a <ul> container. Render itself only tags individual lines; export
// surfaces that want well-formed lists apply this pass on top.
func WrapListItems(html string) string {
	// Render turns the newline between consecutive list lines into <br>;
	// drop those separators so the run regex sees adjacent items.
	html = strings.ReplaceAll(html, "</li><br><li>", "</li><li>")
	return listRun.ReplaceAllStringFunc(html, func(run string) string {
		return "<ul>" + run + "</ul>"
	})
}
