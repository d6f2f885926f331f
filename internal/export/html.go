// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/jeranaias/tagwise-tui/internal/markdown"
	"github.com/jeranaias/tagwise-tui/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports conversations to HTML with embedded CSS. All
// message bodies pass through the safe renderer; titles and source
// fields are escaped individually.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a conversation to HTML format.
func (e *HTMLExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}
	if len(conv.Messages) == 0 {
		return nil, fmt.Errorf("conversation has no messages")
	}

	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(conv.GetTitle())))
	sb.WriteString("    <meta name=\"generator\" content=\"tagwise-tui\">\n")
	if !conv.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("    <meta name=\"date\" content=\"%s\">\n", conv.CreatedAt.Format(time.RFC3339)))
	}
	sb.WriteString(e.getCSS())
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", e.options.Theme))
	sb.WriteString("    <div class=\"container\">\n")

	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString(fmt.Sprintf("            <h1>%s</h1>\n", html.EscapeString(conv.GetTitle())))
	sb.WriteString(fmt.Sprintf("            <div class=\"metadata\">%s</div>\n", model.FormatMessageCount(len(conv.Messages))))
	sb.WriteString("        </header>\n")

	sb.WriteString("        <main class=\"conversation\">\n")
	for _, msg := range conv.Messages {
		sb.WriteString(e.renderMessage(msg))
	}
	sb.WriteString("        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	sb.WriteString(fmt.Sprintf("            <p>Exported from <strong>tagwise</strong> on %s</p>\n",
		formatTimestamp(time.Now())))
	sb.WriteString("        </footer>\n")

	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

// renderMessage renders a single message bubble.
func (e *HTMLExporter) renderMessage(msg *model.Message) string {
	var sb strings.Builder

	roleClass := msg.Role.String()
	if msg.IsError {
		roleClass += " error"
	}
	sb.WriteString(fmt.Sprintf("            <div class=\"message %s-message\">\n", roleClass))

	sb.WriteString("                <div class=\"message-header\">\n")
	sb.WriteString(fmt.Sprintf("                    <span class=\"role-label\">%s</span>\n", msg.Role.DisplayName()))
	if !msg.Timestamp.IsZero() {
		sb.WriteString(fmt.Sprintf("                    <span class=\"timestamp\">%s</span>\n", msg.Timestamp.Format("15:04")))
	}
	sb.WriteString("                </div>\n")

	// Always render from the plain-text buffer: rendered HTML must
	// never round-trip through the renderer a second time.
	sb.WriteString("                <div class=\"message-content\">\n")
	sb.WriteString("                    " + markdown.WrapListItems(markdown.Render(msg.Content)) + "\n")
	sb.WriteString("                </div>\n")

	if e.options.IncludeSources && msg.HasSources() {
		sb.WriteString(e.renderSources(msg.Sources))
	}

	sb.WriteString("            </div>\n")

	return sb.String()
}

// renderSources renders the cited bookmark list under an assistant
// message.
func (e *HTMLExporter) renderSources(sources []model.Source) string {
	var sb strings.Builder

	sb.WriteString("                <div class=\"sources\">\n")
	sb.WriteString("                    <span class=\"sources-label\">Sources</span>\n")
	sb.WriteString("                    <ul>\n")
	for _, src := range sources {
		title := src.Title
		if title == "" {
			title = src.URL
		}
		sb.WriteString(fmt.Sprintf("                        <li><a href=\"%s\" target=\"_blank\" rel=\"noopener noreferrer\">%s</a></li>\n",
			html.EscapeString(src.URL), html.EscapeString(title)))
	}
	sb.WriteString("                    </ul>\n")
	sb.WriteString("                </div>\n")

	return sb.String()
}

// getCSS returns the embedded stylesheet.
func (e *HTMLExporter) getCSS() string {
	return `    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        :root {
            --font-sans: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            --font-mono: "SF Mono", "Monaco", "Inconsolata", "Fira Code", "Source Code Pro", monospace;
        }

        .dark-theme {
            --bg-primary: #1a1b26;
            --bg-secondary: #24283b;
            --text-primary: #c0caf5;
            --text-muted: #565f89;
            --border-color: #414868;
            --user-bg: #1f2335;
            --assistant-bg: #24283b;
            --code-bg: #16161e;
            --accent-blue: #7aa2f7;
            --accent-red: #f7768e;
        }

        .light-theme {
            --bg-primary: #ffffff;
            --bg-secondary: #f5f5f7;
            --text-primary: #24292f;
            --text-muted: #6e7781;
            --border-color: #d0d7de;
            --user-bg: #f6f8fa;
            --assistant-bg: #ffffff;
            --code-bg: #f6f8fa;
            --accent-blue: #0969da;
            --accent-red: #cf222e;
        }

        body {
            font-family: var(--font-sans);
            background: var(--bg-primary);
            color: var(--text-primary);
            line-height: 1.6;
        }

        .container {
            max-width: 860px;
            margin: 0 auto;
            padding: 2rem 1rem;
        }

        .header {
            border-bottom: 1px solid var(--border-color);
            padding-bottom: 1rem;
            margin-bottom: 2rem;
        }

        .metadata {
            color: var(--text-muted);
            font-size: 0.9rem;
        }

        .message {
            border: 1px solid var(--border-color);
            border-radius: 8px;
            padding: 1rem;
            margin-bottom: 1rem;
        }

        .user-message { background: var(--user-bg); }
        .assistant-message { background: var(--assistant-bg); }
        .error .message-content { color: var(--accent-red); }

        .message-header {
            display: flex;
            justify-content: space-between;
            margin-bottom: 0.5rem;
        }

        .role-label {
            font-weight: 600;
            color: var(--accent-blue);
        }

        .timestamp {
            color: var(--text-muted);
            font-size: 0.85rem;
        }

        code, pre {
            font-family: var(--font-mono);
            background: var(--code-bg);
            border-radius: 4px;
        }

        code { padding: 0.15em 0.35em; }
        pre {
            padding: 0.75rem;
            overflow-x: auto;
            white-space: pre;
        }

        a {
            color: var(--accent-blue);
        }

        .sources {
            border-top: 1px solid var(--border-color);
            margin-top: 0.75rem;
            padding-top: 0.5rem;
            font-size: 0.9rem;
        }

        .sources-label {
            font-weight: 600;
            color: var(--text-muted);
        }

        .sources ul {
            margin-left: 1.25rem;
        }

        .footer {
            border-top: 1px solid var(--border-color);
            margin-top: 2rem;
            padding-top: 1rem;
            color: var(--text-muted);
            font-size: 0.85rem;
            text-align: center;
        }
    </style>
`
}
