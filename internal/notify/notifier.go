// ABOUTME: Notifier implementations for reminder delivery.
// ABOUTME: Console output, desktop notify-send, and JSON webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"time"

	"github.com/fatih/color"
)

// ErrPermissionDenied is returned when the notifier refuses to deliver.
var ErrPermissionDenied = errors.New("notification permission denied")

// Notifier delivers reminder notifications.
type Notifier interface {
	Name() string
	RequestPermission(ctx context.Context) (bool, error)
	Notify(ctx context.Context, title, body string) error
}

// New builds the notifier named by kind.
func New(kind, webhookURL string, out io.Writer) (Notifier, error) {
	switch kind {
	case "", "console":
		return NewConsole(out), nil
	case "desktop":
		return NewDesktop(), nil
	case "webhook":
		return NewWebhook(webhookURL), nil
	default:
		return nil, fmt.Errorf("unknown notifier: %q", kind)
	}
}

// PermissionHelp explains how to enable delivery for a notifier.
func PermissionHelp(n Notifier) string {
	switch n.Name() {
	case "desktop":
		return "Install notify-send (libnotify) or switch notifiers with:\n  nowfocus config set notifier console"
	case "webhook":
		return "Set a webhook URL with:\n  nowfocus config set webhook_url https://..."
	default:
		return "Enable notifications in settings:\n  nowfocus config set notifier console"
	}
}

// Console prints notifications to a writer.
type Console struct {
	out io.Writer
}

// NewConsole creates a console notifier writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Name() string { return "console" }

// RequestPermission always grants.
func (c *Console) RequestPermission(context.Context) (bool, error) { return true, nil }

// Notify prints the title and body.
func (c *Console) Notify(_ context.Context, title, body string) error {
	if _, err := color.New(color.FgCyan, color.Bold).Fprintf(c.out, "🔔 %s\n", title); err != nil {
		return err
	}
	_, err := fmt.Fprintf(c.out, "   %s\n", body)
	return err
}

// Desktop sends notifications through notify-send.
type Desktop struct {
	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) error
}

// NewDesktop creates a desktop notifier.
func NewDesktop() *Desktop {
	return &Desktop{
		lookPath: exec.LookPath,
		run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
}

func (d *Desktop) Name() string { return "desktop" }

// RequestPermission grants when notify-send is installed.
func (d *Desktop) RequestPermission(context.Context) (bool, error) {
	_, err := d.lookPath("notify-send")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Notify runs notify-send.
func (d *Desktop) Notify(ctx context.Context, title, body string) error {
	path, err := d.lookPath("notify-send")
	if err != nil {
		return fmt.Errorf("%w: notify-send not found", ErrPermissionDenied)
	}
	if err := d.run(ctx, path, "--app-name=nowfocus", title, body); err != nil {
		return fmt.Errorf("notify-send: %w", err)
	}
	return nil
}

// Webhook posts notifications as JSON.
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook creates a webhook notifier for url.
func NewWebhook(url string) *Webhook {
	return &Webhook{url: url, client: &http.Client{Timeout: 10 * time.Second}}
}

func (w *Webhook) Name() string { return "webhook" }

// RequestPermission grants when a URL is configured.
func (w *Webhook) RequestPermission(context.Context) (bool, error) {
	return w.url != "", nil
}

type webhookPayload struct {
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sent_at"`
}

// Notify posts the payload and expects a 2xx response.
func (w *Webhook) Notify(ctx context.Context, title, body string) error {
	if w.url == "" {
		return fmt.Errorf("%w: no webhook URL configured", ErrPermissionDenied)
	}

	payload, err := json.Marshal(webhookPayload{Title: title, Body: body, SentAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}
