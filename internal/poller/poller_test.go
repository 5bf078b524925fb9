package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ebreen/luffe/internal/config"
	"github.com/ebreen/luffe/internal/logging"
	"github.com/ebreen/luffe/internal/queue"
	"github.com/ebreen/luffe/internal/services"
	"github.com/ebreen/luffe/internal/source"
)

type fakeClient struct {
	events    []source.Event
	listErr   error
	pending   []source.PendingRequest
	accepted  []string
	acceptErr map[string]error
}

func (f *fakeClient) Verify(ctx context.Context) error { return nil }

func (f *fakeClient) ListMessages(ctx context.Context) ([]source.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.events, nil
}

func (f *fakeClient) ListPendingRequests(ctx context.Context) ([]source.PendingRequest, error) {
	return f.pending, nil
}

func (f *fakeClient) AcceptRequest(ctx context.Context, threadID string) error {
	if err := f.acceptErr[threadID]; err != nil {
		return err
	}
	f.accepted = append(f.accepted, threadID)
	return nil
}

func (f *fakeClient) DownloadReel(ctx context.Context, reel source.Reel, dir string) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeClient) SendMessage(ctx context.Context, recipientID, text string) error {
	return nil
}

func newTestPoller(t *testing.T, client source.Client) (*Poller, *queue.Queue[source.Event]) {
	t.Helper()
	cfg := config.Default()
	cfg.Instagram.Username = "luffe.bot"
	q := queue.New[source.Event]()
	t.Cleanup(q.Close)
	return New(&cfg, client, q, logging.NewNop()), q
}

func reelEvent(id string, ts time.Time) source.Event {
	return source.Event{
		MessageID:      "msg-" + id,
		SenderID:       "42",
		SenderUsername: "monkey.d",
		Timestamp:      ts,
		Reel:           source.Reel{MediaID: id, VideoURL: "https://cdn.test/" + id + ".mp4"},
	}
}

func TestPollMessagesEnqueuesNewestReelOnly(t *testing.T) {
	now := time.Now().UTC()
	client := &fakeClient{events: []source.Event{
		reelEvent("reel-1", now.Add(-2*time.Second)),
		{MessageID: "msg-text", SenderID: "42", Timestamp: now.Add(-1500 * time.Millisecond), Text: "hi"},
		reelEvent("reel-2", now.Add(-time.Second)),
	}}
	p, q := newTestPoller(t, client)
	p.pollMessages(context.Background())

	event, ok := q.Dequeue()
	if !ok {
		t.Fatal("expected a queued event")
	}
	if event.Reel.MediaID != "reel-2" {
		t.Fatalf("expected newest reel, got %q", event.Reel.MediaID)
	}
	if q.Len() != 0 {
		t.Fatalf("older reel must be dropped, queue len %d", q.Len())
	}
}

func TestPollMessagesCursorAdvancesAndNeverRewinds(t *testing.T) {
	now := time.Now().UTC()
	client := &fakeClient{events: []source.Event{reelEvent("reel-1", now)}}
	p, q := newTestPoller(t, client)

	p.pollMessages(context.Background())
	if _, ok := q.Dequeue(); !ok {
		t.Fatal("expected first reel queued")
	}
	first := p.Cursor()
	if !first.Equal(now) {
		t.Fatalf("cursor %v, want %v", first, now)
	}

	// A second cycle returning the same (now stale) inbox must be a no-op.
	p.pollMessages(context.Background())
	if q.Len() != 0 {
		t.Fatal("stale reel must not requeue")
	}
	if p.Cursor().Before(first) {
		t.Fatal("cursor rewound")
	}
}

func TestPollMessagesSkipsOwnMessages(t *testing.T) {
	now := time.Now().UTC()
	own := reelEvent("reel-own", now)
	own.SenderUsername = "Luffe.Bot"
	client := &fakeClient{events: []source.Event{own}}
	p, q := newTestPoller(t, client)

	p.pollMessages(context.Background())
	if q.Len() != 0 {
		t.Fatal("own messages must not be queued")
	}
}

func TestPollMessagesSurvivesListError(t *testing.T) {
	client := &fakeClient{listErr: services.ErrTransientSource}
	p, q := newTestPoller(t, client)

	p.pollMessages(context.Background())
	if q.Len() != 0 {
		t.Fatal("failed cycle must not enqueue")
	}

	// The next cycle proceeds normally after a failure.
	client.listErr = nil
	client.events = []source.Event{reelEvent("reel-1", time.Now().UTC())}
	p.pollMessages(context.Background())
	if q.Len() != 1 {
		t.Fatal("poller must recover after a failed cycle")
	}
}

func TestSweepPendingAcceptsAllAndContinuesOnError(t *testing.T) {
	client := &fakeClient{
		pending: []source.PendingRequest{
			{ThreadID: "t1", RequesterID: "1"},
			{ThreadID: "t2", RequesterID: "2"},
			{ThreadID: "t3", RequesterID: "3"},
		},
		acceptErr: map[string]error{"t2": services.ErrTransientSource},
	}
	p, _ := newTestPoller(t, client)

	p.sweepPending(context.Background())
	if len(client.accepted) != 2 {
		t.Fatalf("expected t1 and t3 accepted, got %v", client.accepted)
	}
	if client.accepted[0] != "t1" || client.accepted[1] != "t3" {
		t.Fatalf("unexpected accept order %v", client.accepted)
	}
}

func TestCursorStartsGraceWindowInThePast(t *testing.T) {
	p, _ := newTestPoller(t, &fakeClient{})
	grace := 120 * time.Second
	cursor := p.Cursor()
	age := time.Since(cursor)
	if age < grace-5*time.Second || age > grace+5*time.Second {
		t.Fatalf("cursor age %v, want about %v", age, grace)
	}
}

func TestStartStop(t *testing.T) {
	client := &fakeClient{}
	p, _ := newTestPoller(t, client)
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := p.Start(context.Background()); err == nil {
		t.Fatal("second Start must fail while running")
	}
	p.Stop()
	// Stop is idempotent.
	p.Stop()
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("restart after Stop: %v", err)
	}
	p.Stop()
}
