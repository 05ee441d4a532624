package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"rreader/types"
)

// LogEntry represents a single log line with timestamp
type LogEntry struct {
	Timestamp time.Time
	Message   string
}

const maxLogs = 8

// Model represents the dashboard state (thin client over the reader API)
type Model struct {
	Client *ReaderClient

	Feeds    []*types.Feed
	Selected int
	Logs     []LogEntry

	Connected bool
	Err       error
}

// NewModel creates a new dashboard model
func NewModel(serverURL string) Model {
	return Model{
		Client: NewReaderClient(serverURL),
		Logs:   make([]LogEntry, 0),
	}
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	// Start polling immediately
	return tea.Batch(
		pollFeeds(m.Client),
		tickCmd(),
	)
}

// AddLog appends a log line, keeping only the most recent entries
func (m Model) AddLog(message string) Model {
	m.Logs = append(m.Logs, LogEntry{Timestamp: time.Now(), Message: message})
	if len(m.Logs) > maxLogs {
		m.Logs = m.Logs[len(m.Logs)-maxLogs:]
	}
	return m
}

// SelectedFeed returns the feed under the cursor, or nil
func (m Model) SelectedFeed() *types.Feed {
	if m.Selected < 0 || m.Selected >= len(m.Feeds) {
		return nil
	}
	return m.Feeds[m.Selected]
}
