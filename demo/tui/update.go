package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case TickMsg:
		return m, tea.Batch(pollFeeds(m.Client), tickCmd())
	case FeedsUpdateMsg:
		return m.handleFeedsUpdate(msg)
	case ActionDoneMsg:
		return m.handleActionDone(msg)
	}
	return m, nil
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Feeds)-1 {
			m.Selected++
		}
	case "r", "R":
		if feed := m.SelectedFeed(); feed != nil {
			m = m.AddLog(fmt.Sprintf("Refreshing feed %d...", feed.ID))
			return m, triggerRefresh(m.Client, feed.ID)
		}
	case "e", "E":
		if feed := m.SelectedFeed(); feed != nil && feed.Health.Disabled() {
			m = m.AddLog(fmt.Sprintf("Re-enabling feed %d...", feed.ID))
			return m, triggerEnable(m.Client, feed.ID)
		}
	}
	return m, nil
}

// handleFeedsUpdate processes a poll result
func (m Model) handleFeedsUpdate(msg FeedsUpdateMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.Connected = false
		m.Err = msg.Err
		return m, nil
	}

	m.Connected = true
	m.Err = nil
	m.Feeds = msg.Feeds
	if m.Selected >= len(m.Feeds) {
		m.Selected = len(m.Feeds) - 1
	}
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m, nil
}

// handleActionDone processes refresh/enable completion
func (m Model) handleActionDone(msg ActionDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m = m.AddLog(fmt.Sprintf("%s failed for feed %d: %v", msg.Action, msg.FeedID, msg.Err))
		return m, nil
	}
	m = m.AddLog(fmt.Sprintf("%s queued for feed %d", msg.Action, msg.FeedID))
	return m, pollFeeds(m.Client)
}
