package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ebreen/luffe/internal/config"
)

const userAgent = "Luffe/0.1.0"

// Service defines the notification surface exposed to the daemon and
// processing pipeline.
type Service interface {
	NotifyStartup(ctx context.Context, username string) error
	NotifySongIdentified(ctx context.Context, title, artist, requester string) error
	NotifyAuthFailure(ctx context.Context, err error) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:    topic,
		client:      &http.Client{Timeout: timeout},
		sendStartup: cfg.Notifications.Startup,
		sendErrors:  cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	sendStartup bool
	sendErrors  bool
}

func (n *ntfyService) NotifyStartup(ctx context.Context, username string) error {
	if !n.sendStartup {
		return nil
	}
	username = strings.TrimSpace(username)
	data := payload{
		title:   "Luffe - Started",
		message: fmt.Sprintf("Watching the inbox of @%s", username),
		tags:    []string{"luffe", "startup"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySongIdentified(ctx context.Context, title, artist, requester string) error {
	title = strings.TrimSpace(title)
	artist = strings.TrimSpace(artist)
	requester = strings.TrimSpace(requester)
	data := payload{
		title:   "Luffe - Song Identified",
		message: fmt.Sprintf("%s by %s (for @%s)", title, artist, requester),
		tags:    []string{"luffe", "identified"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyAuthFailure(ctx context.Context, err error) error {
	message := "Session token rejected, manual refresh required"
	if err != nil {
		message = fmt.Sprintf("%s: %s", message, strings.TrimSpace(err.Error()))
	}
	data := payload{
		title:    "Luffe - Auth Failure",
		message:  message,
		tags:     []string{"luffe", "auth", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.sendErrors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Luffe - Error",
		message:  builder.String(),
		tags:     []string{"luffe", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Luffe - Test",
		message:  "Notification system test",
		tags:     []string{"luffe", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyStartup(context.Context, string) error { return nil }
func (noopService) NotifySongIdentified(context.Context, string, string, string) error {
	return nil
}
func (noopService) NotifyAuthFailure(context.Context, error) error   { return nil }
func (noopService) NotifyError(context.Context, error, string) error { return nil }
func (noopService) TestNotification(context.Context) error           { return nil }
