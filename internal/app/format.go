package app

import (
	"html"
	"strings"

	"github.com/robdiste97/telegram-offerte-bot/internal/offers"
	"github.com/robdiste97/telegram-offerte-bot/internal/text"
)

// maxSummaryLen keeps the message well under Telegram's 4096-char cap and
// leaves the link preview room to breathe.
const maxSummaryLen = 300

// FormatOffer renders the HTML message for one candidate.
func FormatOffer(c offers.Candidate) string {
	var b strings.Builder

	b.WriteString("🔥 <b>" + html.EscapeString(c.Title) + "</b>\n")
	if c.Summary != "" {
		b.WriteString("\n" + html.EscapeString(text.Truncate(c.Summary, maxSummaryLen)) + "\n")
	}
	b.WriteString("\n👉 <a href=\"" + html.EscapeString(c.Link) + "\">Vai all'offerta</a>")

	return b.String()
}
