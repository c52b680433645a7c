package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"greenroom/internal/config"
)

const userAgent = "Greenroom/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifySubmissionIngested(ctx context.Context, sessionTitle string, speakers int) error
	NotifySpeakerConfirmed(ctx context.Context, speakerName, sessionTitle string) error
	NotifySpeakerDeclined(ctx context.Context, speakerName, sessionTitle string) error
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
		endpoint:      topic,
		client:        &http.Client{Timeout: timeout},
		ingested:      cfg.Notifications.Ingested,
		confirmations: cfg.Notifications.Confirmations,
		errors:        cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint      string
	client        *http.Client
	ingested      bool
	confirmations bool
	errors        bool
}

func (n *ntfyService) NotifySubmissionIngested(ctx context.Context, sessionTitle string, speakers int) error {
	if !n.ingested {
		return nil
	}
	sessionTitle = strings.TrimSpace(sessionTitle)
	noun := "speakers"
	if speakers == 1 {
		noun = "speaker"
	}
	data := payload{
		title:   "Greenroom - Submission Ingested",
		message: fmt.Sprintf("New session: %s (%d %s)", sessionTitle, speakers, noun),
		tags:    []string{"greenroom", "ingest", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySpeakerConfirmed(ctx context.Context, speakerName, sessionTitle string) error {
	if !n.confirmations {
		return nil
	}
	data := payload{
		title:   "Greenroom - Speaker Confirmed",
		message: confirmationMessage("confirmed", speakerName, sessionTitle),
		tags:    []string{"greenroom", "confirm", "accepted"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySpeakerDeclined(ctx context.Context, speakerName, sessionTitle string) error {
	if !n.confirmations {
		return nil
	}
	data := payload{
		title:    "Greenroom - Speaker Declined",
		message:  confirmationMessage("declined", speakerName, sessionTitle),
		tags:     []string{"greenroom", "confirm", "declined"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
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
		title:    "Greenroom - Error",
		message:  builder.String(),
		tags:     []string{"greenroom", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Greenroom - Test",
		message:  "Notification system test",
		tags:     []string{"greenroom", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func confirmationMessage(verb, speakerName, sessionTitle string) string {
	speakerName = strings.TrimSpace(speakerName)
	sessionTitle = strings.TrimSpace(sessionTitle)
	if sessionTitle == "" {
		return fmt.Sprintf("%s %s", speakerName, verb)
	}
	return fmt.Sprintf("%s %s for: %s", speakerName, verb, sessionTitle)
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

func (noopService) NotifySubmissionIngested(context.Context, string, int) error  { return nil }
func (noopService) NotifySpeakerConfirmed(context.Context, string, string) error { return nil }
func (noopService) NotifySpeakerDeclined(context.Context, string, string) error  { return nil }
func (noopService) NotifyError(context.Context, error, string) error             { return nil }
func (noopService) TestNotification(context.Context) error                       { return nil }
