package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// pollFeeds creates a command to fetch the feed list
func pollFeeds(client *ReaderClient) tea.Cmd {
	return func() tea.Msg {
		feeds, err := client.ListFeeds()
		return FeedsUpdateMsg{Feeds: feeds, Err: err}
	}
}

// triggerRefresh creates a command to queue a forced fetch
func triggerRefresh(client *ReaderClient, feedID int64) tea.Cmd {
	return func() tea.Msg {
		err := client.RefreshFeed(feedID)
		return ActionDoneMsg{Action: "refresh", FeedID: feedID, Err: err}
	}
}

// triggerEnable creates a command to re-enable a disabled feed
func triggerEnable(client *ReaderClient, feedID int64) tea.Cmd {
	return func() tea.Msg {
		err := client.EnableFeed(feedID)
		return ActionDoneMsg{Action: "enable", FeedID: feedID, Err: err}
	}
}

// tickCmd creates a command that ticks every 2s for polling
func tickCmd() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}
