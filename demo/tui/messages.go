package tui

import (
	"time"

	"rreader/types"
)

// Messages for the tea program (polling-based)

// FeedsUpdateMsg is sent when we receive the feed list from the server
type FeedsUpdateMsg struct {
	Feeds []*types.Feed
	Err   error
}

// TickMsg is sent periodically to trigger polling
type TickMsg struct {
	Time time.Time
}

// ActionDoneMsg is sent after a refresh or enable request completes
type ActionDoneMsg struct {
	Action string
	FeedID int64
	Err    error
}
