package queue

import (
	"context"
	"testing"
)

type recordingEnqueuer struct {
	feedIDs []int64
	forced  []bool
}

func (r *recordingEnqueuer) EnqueueFetch(feedID int64, forced bool) {
	r.feedIDs = append(r.feedIDs, feedID)
	r.forced = append(r.forced, forced)
}

func TestFetchCommandHandler(t *testing.T) {
	tests := []struct {
		name        string
		message     string
		wantMark    bool
		wantEnqueue bool
		wantForced  bool
	}{
		{
			name:        "valid command",
			message:     `{"feed_id": 42, "forced": true}`,
			wantMark:    true,
			wantEnqueue: true,
			wantForced:  true,
		},
		{
			name:        "scheduled refresh",
			message:     `{"feed_id": 7}`,
			wantMark:    true,
			wantEnqueue: true,
		},
		{
			name:     "missing feed id is skipped",
			message:  `{"forced": true}`,
			wantMark: true,
		},
		{
			name:     "malformed json is skipped",
			message:  `{not json`,
			wantMark: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enq := &recordingEnqueuer{}
			handler := NewFetchCommandHandler(enq)

			mark, err := handler.HandleMessage(context.Background(), []byte(tt.message))
			if err != nil {
				t.Fatalf("HandleMessage returned error: %v", err)
			}
			if mark != tt.wantMark {
				t.Errorf("mark = %v, want %v", mark, tt.wantMark)
			}

			if !tt.wantEnqueue {
				if len(enq.feedIDs) != 0 {
					t.Fatalf("enqueued %v, want nothing", enq.feedIDs)
				}
				return
			}
			if len(enq.feedIDs) != 1 {
				t.Fatalf("enqueued %d commands, want 1", len(enq.feedIDs))
			}
			if enq.forced[0] != tt.wantForced {
				t.Errorf("forced = %v, want %v", enq.forced[0], tt.wantForced)
			}
		})
	}
}
