package report

import (
	"strings"
	"time"
)

// DefaultTitle is used when the configuration does not override the report title.
const DefaultTitle = "Backup Report"

const timestampLayout = "2006-01-02 15:04:05"

var separator = strings.Repeat("=", 40)

// Format renders the full notification message for one log: a header with
// title, timestamp, source label and status line, followed by the log body
// escaped and wrapped in a <pre> block. The result is valid Telegram HTML.
//
// The timestamp is taken from at rather than a global clock so callers (and
// tests) control what is rendered.
func Format(logText, sourceLabel, title string, at time.Time) string {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}

	var b strings.Builder
	b.WriteString("🔔 <b>" + title + "</b>\n")
	b.WriteString("📅 " + at.Format(timestampLayout) + "\n")
	b.WriteString("📋 Log: " + sourceLabel + "\n")
	b.WriteString(separator + "\n\n")
	b.WriteString(statusLine(Classify(logText)) + "\n\n")
	b.WriteString("<pre>" + EscapeHTML(logText) + "</pre>")
	return b.String()
}

func statusLine(s Status) string {
	switch s {
	case StatusSuccess:
		return "✅ <b>Status: SUCCESS</b>"
	case StatusSkipped:
		return "ℹ️ <b>Status: SKIPPED (No Changes)</b>"
	default:
		return "❌ <b>Status: FAILED</b>"
	}
}

// EscapeHTML escapes the three characters Telegram's HTML parse mode cares
// about. The ampersand is replaced first so the entities introduced for
// '<' and '>' are not double-escaped. Exactly these three replacements, in
// this order, are part of the message contract; html.EscapeString is not
// used because it also rewrites quotes.
func EscapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
