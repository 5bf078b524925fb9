package source

import (
	"context"
	"time"
)

// Reel identifies a video attachment. MediaID is the stable identifier used
// for cache keying; VideoURL is ephemeral (signed) and only good for download.
type Reel struct {
	MediaID  string
	VideoURL string
}

// Event is one inbound direct message carrying a reel. Immutable once read
// from the source; produced by the poller and consumed exactly once by a
// processing worker.
type Event struct {
	MessageID      string
	SenderID       string
	SenderUsername string
	Timestamp      time.Time
	Reel           Reel
	Text           string
}

// HasReel reports whether the message carries a fetchable video.
func (e Event) HasReel() bool {
	return e.Reel.MediaID != "" && e.Reel.VideoURL != ""
}

// PendingRequest is a message request awaiting approval.
type PendingRequest struct {
	ThreadID    string
	RequesterID string
}

// Client is the message-source surface the pipeline depends on. All methods
// may fail with transport errors and must be safe to call repeatedly;
// AcceptRequest in particular is idempotent.
type Client interface {
	// Verify checks that the configured credentials are usable. Called once at
	// startup; a failure keeps the loops from starting.
	Verify(ctx context.Context) error

	// ListMessages returns the current inbox snapshot. The source exposes no
	// "since" filter; callers dedup by timestamp.
	ListMessages(ctx context.Context) ([]Event, error)

	// ListPendingRequests returns message requests awaiting approval.
	ListPendingRequests(ctx context.Context) ([]PendingRequest, error)

	// AcceptRequest approves a pending request. Accepting an already-accepted
	// request is not an error.
	AcceptRequest(ctx context.Context, threadID string) error

	// DownloadReel fetches the reel video into dir and returns the local path.
	DownloadReel(ctx context.Context, reel Reel, dir string) (string, error)

	// SendMessage delivers a text reply to a user.
	SendMessage(ctx context.Context, recipientID, text string) error
}
