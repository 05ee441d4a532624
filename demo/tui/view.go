package tui

import (
	"fmt"
	"strings"
	"time"

	"rreader/types"
)

// View implements tea.Model interface
func (m Model) View() string {
	var b strings.Builder

	// Title
	b.WriteString(TitleStyle.Render("📡 RReader Feed Health"))
	b.WriteString("\n\n")

	if !m.Connected {
		if m.Err != nil {
			b.WriteString(ErrorStyle.Render(fmt.Sprintf("❌ Not connected: %v", m.Err)))
		} else {
			b.WriteString(StatusStyle.Render("⏳ Connecting..."))
		}
		b.WriteString("\n\n")
		b.WriteString(InfoStyle.Render("Press 'q' or Ctrl+C to quit"))
		return b.String()
	}

	if len(m.Feeds) == 0 {
		b.WriteString(InfoStyle.Render("No subscriptions yet. POST /api/feeds to add one."))
		b.WriteString("\n\n")
	}

	for i, feed := range m.Feeds {
		cursor := "  "
		if i == m.Selected {
			cursor = "> "
		}

		line := fmt.Sprintf("%s%-40s %s", cursor, truncate(feedTitle(feed), 40), healthBadge(feed))
		if i == m.Selected {
			b.WriteString(HighlightStyle.Render(line))
		} else {
			b.WriteString(InfoStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	// Detail panel for the selected feed
	if feed := m.SelectedFeed(); feed != nil {
		var d strings.Builder
		d.WriteString(fmt.Sprintf("URL: %s\n", feed.FeedURL))
		d.WriteString(fmt.Sprintf("Last fetched: %s\n", formatTime(feed.LastFetchedAt)))
		d.WriteString(fmt.Sprintf("Consecutive failures: %d\n", feed.Health.ConsecutiveFailures))
		if feed.Health.LastError != "" {
			d.WriteString(fmt.Sprintf("Last error: %s\n", truncate(feed.Health.LastError, 60)))
		}
		if feed.Health.Disabled() {
			d.WriteString(ErrorStyle.Render("DISABLED - press 'e' to re-enable"))
		}
		b.WriteString(BoxStyle.Render(strings.TrimRight(d.String(), "\n")))
		b.WriteString("\n\n")
	}

	// Logs
	if len(m.Logs) > 0 {
		b.WriteString(InfoStyle.Render("📝 Recent Activity:"))
		b.WriteString("\n")
		for _, entry := range m.Logs {
			b.WriteString(InfoStyle.Render(fmt.Sprintf("   %s %s", entry.Timestamp.Format("15:04:05"), entry.Message)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(InfoStyle.Render("↑/↓ select | 'r' refresh | 'e' enable | 'q' quit"))
	return b.String()
}

func feedTitle(feed *types.Feed) string {
	if feed.Title != "" {
		return feed.Title
	}
	return feed.FeedURL
}

func healthBadge(feed *types.Feed) string {
	switch {
	case feed.Health.Disabled():
		return ErrorStyle.Render("✖ disabled")
	case feed.Health.ConsecutiveFailures > 0:
		return WarnStyle.Render(fmt.Sprintf("⚠ %d failures", feed.Health.ConsecutiveFailures))
	default:
		return StatusStyle.Render("✔ healthy")
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Format("2006-01-02 15:04")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
