package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/ebreen/luffe/internal/services"
	"github.com/ebreen/luffe/internal/source"
)

// clipMediaTypeVideo is the media_type value Instagram assigns to video clips.
const clipMediaTypeVideo = 2

type inboxResponse struct {
	Inbox struct {
		Threads []thread `json:"threads"`
	} `json:"inbox"`
}

type pendingResponse struct {
	Inbox struct {
		Threads []thread `json:"threads"`
	} `json:"inbox"`
}

type thread struct {
	ThreadID string       `json:"thread_id"`
	Users    []threadUser `json:"users"`
	Items    []threadItem `json:"items"`
}

type threadUser struct {
	PK       int64  `json:"pk"`
	Username string `json:"username"`
}

type threadItem struct {
	ItemID    string `json:"item_id"`
	UserID    int64  `json:"user_id"`
	Timestamp int64  `json:"timestamp"`
	Text      string `json:"text"`
	Clip      *struct {
		ID        string `json:"id"`
		MediaType int    `json:"media_type"`
		VideoURL  string `json:"video_url"`
	} `json:"clip"`
}

// Verify checks the session token by loading the current user.
func (c *Client) Verify(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/accounts/current_user/", nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req, "verify")
	if err != nil {
		return err
	}
	defer drainAndClose(resp)
	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrAuth, "instagram", "verify", fmt.Sprintf("status %d", resp.StatusCode), nil)
	}
	return nil
}

// ListMessages returns every inbox message, oldest first. Threads are
// flattened; only the fields the pipeline needs survive parsing.
func (c *Client) ListMessages(ctx context.Context) ([]source.Event, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/direct_v2/inbox/", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req, "list messages")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed inboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, services.Wrap(services.ErrTransientSource, "instagram", "list messages", "decode inbox", err)
	}

	var events []source.Event
	for _, th := range parsed.Inbox.Threads {
		usernames := make(map[int64]string, len(th.Users))
		for _, user := range th.Users {
			usernames[user.PK] = user.Username
		}
		for _, item := range th.Items {
			event := source.Event{
				MessageID:      item.ItemID,
				SenderID:       fmt.Sprintf("%d", item.UserID),
				SenderUsername: usernames[item.UserID],
				Timestamp:      time.UnixMicro(item.Timestamp).UTC(),
				Text:           item.Text,
			}
			if item.Clip != nil && item.Clip.MediaType == clipMediaTypeVideo {
				event.Reel = source.Reel{
					MediaID:  item.Clip.ID,
					VideoURL: item.Clip.VideoURL,
				}
			}
			events = append(events, event)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	return events, nil
}

// ListPendingRequests returns message requests awaiting approval.
func (c *Client) ListPendingRequests(ctx context.Context) ([]source.PendingRequest, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/direct_v2/pending_inbox/", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req, "list pending requests")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed pendingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, services.Wrap(services.ErrTransientSource, "instagram", "list pending requests", "decode pending inbox", err)
	}

	var pending []source.PendingRequest
	for _, th := range parsed.Inbox.Threads {
		request := source.PendingRequest{ThreadID: th.ThreadID}
		if len(th.Users) > 0 {
			request.RequesterID = fmt.Sprintf("%d", th.Users[0].PK)
		}
		pending = append(pending, request)
	}
	return pending, nil
}

// AcceptRequest approves a pending thread. Instagram answers an
// already-approved thread with a conflict, which counts as success.
func (c *Client) AcceptRequest(ctx context.Context, threadID string) error {
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		return services.Wrap(services.ErrValidation, "instagram", "accept request", "empty thread id", nil)
	}
	path := fmt.Sprintf("/direct_v2/threads/%s/approve/", url.PathEscape(threadID))
	req, err := c.newRequest(ctx, http.MethodPost, path, nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req, "accept request")
	if err != nil {
		return err
	}
	defer drainAndClose(resp)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusConflict:
		return nil
	default:
		return services.Wrap(services.ErrTransientSource, "instagram", "accept request", fmt.Sprintf("status %d", resp.StatusCode), nil)
	}
}

// SendMessage delivers a text reply to a user.
func (c *Client) SendMessage(ctx context.Context, recipientID, text string) error {
	form := url.Values{}
	form.Set("recipient_users", fmt.Sprintf("[[%s]]", recipientID))
	form.Set("text", text)

	req, err := c.newRequest(ctx, http.MethodPost, "/direct_v2/threads/broadcast/text/", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.do(req, "send message")
	if err != nil {
		return err
	}
	defer drainAndClose(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return services.Wrap(services.ErrTransientSource, "instagram", "send message", fmt.Sprintf("status %d", resp.StatusCode), nil)
	}
	return nil
}
