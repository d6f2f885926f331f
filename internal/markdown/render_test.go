// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import (
	"strings"
	"testing"
)

// Escaping must run before any formatting pass so raw markup can never
// survive into the output.
func TestRenderEscapesScriptTags(t *testing.T) {
	inputs := []string{
		"<script>alert(1)</script>",
		"**bold** <script>alert(1)</script>",
		"`<script>`",
		"# heading <script>x</script>",
	}

	for _, input := range inputs {
		out := Render(input)
		if strings.Contains(out, "<script>") {
			t.Errorf("Render(%q) contains live <script> tag: %s", input, out)
		}
		if !strings.Contains(out, "&lt;script&gt;") {
			t.Errorf("Render(%q) missing escaped script tag: %s", input, out)
		}
	}
}

func TestRenderEscapesAllSignificantChars(t *testing.T) {
	out := Render(`& < > " '`)
	for _, want := range []string{"&amp;", "&lt;", "&gt;", "&quot;", "&#39;"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestRenderBoldAndItalic(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"**strong**", "<strong>strong</strong>"},
		{"__strong__", "<strong>strong</strong>"},
		{"*emph*", "<em>emph</em>"},
		{"_emph_", "<em>emph</em>"},
		{"**a** and *b*", "<strong>a</strong> and <em>b</em>"},
	}

	for _, tt := range tests {
		out := Render(tt.input)
		if !strings.Contains(out, tt.want) {
			t.Errorf("Render(%q) = %q, missing %q", tt.input, out, tt.want)
		}
	}
}

func TestRenderCode(t *testing.T) {
	out := Render("```\nfunc main() {}\n```")
	if !strings.Contains(out, "<pre><code>") {
		t.Errorf("fenced block missing pre/code wrapper: %q", out)
	}

	out = Render("use `go test` here")
	if !strings.Contains(out, "<code>go test</code>") {
		t.Errorf("inline code not wrapped: %q", out)
	}
}

func TestRenderFencedCodePreservesNewlines(t *testing.T) {
	out := Render("```\nline1\nline2\n```")
	start := strings.Index(out, "<pre><code>")
	end := strings.Index(out, "</code></pre>")
	if start < 0 || end < 0 || end < start {
		t.Fatalf("malformed code block: %q", out)
	}
	inner := out[start+len("<pre><code>") : end]
	if !strings.Contains(inner, "line1\nline2") {
		t.Errorf("code block newlines not preserved: %q", inner)
	}
	if strings.Contains(inner, "<br>") {
		t.Errorf("line-break pass leaked into code block: %q", inner)
	}
}

func TestRenderListItems(t *testing.T) {
	out := Render("- first\n- second")
	if strings.Count(out, "<li>") != 2 {
		t.Errorf("expected 2 list items, got %q", out)
	}

	out = Render("1. one\n2. two\n10. ten")
	if strings.Count(out, "<li>") != 3 {
		t.Errorf("expected 3 ordered items, got %q", out)
	}
}

func TestRenderHeadings(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"# Title", "<h1>Title</h1>"},
		{"## Sub", "<h2>Sub</h2>"},
		{"### Deep", "<h3>Deep</h3>"},
	}

	for _, tt := range tests {
		out := Render(tt.input)
		if !strings.Contains(out, tt.want) {
			t.Errorf("Render(%q) = %q, missing %q", tt.input, out, tt.want)
		}
	}

	// Longest prefix wins: "### x" must not become an h1 of "## x".
	out := Render("### x")
	if strings.Contains(out, "<h1>") || strings.Contains(out, "<h2>") {
		t.Errorf("heading prefix matched too short: %q", out)
	}
}

func TestRenderBareURLs(t *testing.T) {
	out := Render("see https://example.com/path for details")
	want := `<a href="https://example.com/path" target="_blank" rel="noopener noreferrer">https://example.com/path</a>`
	if !strings.Contains(out, want) {
		t.Errorf("URL not linked: %q", out)
	}
	if !strings.Contains(out, "for details") {
		t.Errorf("trailing text lost: %q", out)
	}
}

func TestRenderParagraphs(t *testing.T) {
	out := Render("para one\n\npara two\nsame para")

	if !strings.HasPrefix(out, "<p>") || !strings.HasSuffix(out, "</p>") {
		t.Errorf("output not wrapped in paragraph: %q", out)
	}
	if !strings.Contains(out, "</p><p>") {
		t.Errorf("double newline not a paragraph break: %q", out)
	}
	if !strings.Contains(out, "same para") || !strings.Contains(out, "<br>") {
		t.Errorf("single newline not a line break: %q", out)
	}
}

// Render is intentionally not idempotent: rendering rendered output
// re-escapes the markup. This pins the contract that callers must keep
// the raw buffer around.
func TestRenderNotIdempotent(t *testing.T) {
	once := Render("**x**")
	twice := Render(once)
	if once == twice {
		t.Error("expected double render to differ (re-escaped)")
	}
	if strings.Contains(twice, "<strong>") {
		t.Errorf("double render kept live markup: %q", twice)
	}
}

func TestWrapListItems(t *testing.T) {
	out := WrapListItems(Render("- a\n- b\n\ntail"))
	if !strings.Contains(out, "<ul><li>a</li><li>b</li></ul>") {
		t.Errorf("list run not wrapped: %q", out)
	}
	if strings.Contains(out, "<ul></ul>") {
		t.Errorf("empty list emitted: %q", out)
	}
}
