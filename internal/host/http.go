package host

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"stashbatch/internal/config"
	"stashbatch/internal/logging"
)

// HTTPDoer describes the HTTP client used by the bridge.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPBridge talks JSON to the browser-side shim.
type HTTPBridge struct {
	baseURL string
	token   string
	client  HTTPDoer
	logger  *slog.Logger

	retryInterval time.Duration
}

// NewHTTPBridge constructs a bridge from application config.
func NewHTTPBridge(cfg *config.Config, logger *slog.Logger) *HTTPBridge {
	timeout := time.Duration(cfg.Bridge.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	retry := time.Duration(cfg.Watch.EventRetryInterval) * time.Second
	if retry <= 0 {
		retry = 5 * time.Second
	}
	return &HTTPBridge{
		baseURL:       strings.TrimRight(cfg.Bridge.URL, "/"),
		token:         cfg.Bridge.Token,
		client:        &http.Client{Timeout: timeout},
		logger:        logging.WithComponent(logger, "bridge"),
		retryInterval: retry,
	}
}

// NewHTTPBridgeWithClient constructs a bridge with a custom HTTP client (used in tests).
func NewHTTPBridgeWithClient(baseURL, token string, client HTTPDoer, logger *slog.Logger) *HTTPBridge {
	return &HTTPBridge{
		baseURL:       strings.TrimRight(baseURL, "/"),
		token:         token,
		client:        client,
		logger:        logging.WithComponent(logger, "bridge"),
		retryInterval: 100 * time.Millisecond,
	}
}

type pagePayload struct {
	Path string `json:"path"`
	HTML string `json:"html"`
}

type clickPayload struct {
	Selector string `json:"selector"`
}

type progressPayload struct {
	Percent float64 `json:"percent"`
}

type confirmPayload struct {
	Prompt string `json:"prompt"`
}

type confirmResponse struct {
	Accepted bool `json:"accepted"`
}

type controlPayload struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Anchor   string `json:"anchor"`
	Position string `json:"position"`
}

type labelPayload struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type sortPayload struct {
	Selector string `json:"selector"`
}

type eventsResponse struct {
	Events []struct {
		Kind    string `json:"kind"`
		Path    string `json:"path"`
		Control string `json:"control"`
	} `json:"events"`
}

func (b *HTTPBridge) Snapshot(ctx context.Context) (*Page, error) {
	var out pagePayload
	if err := b.do(ctx, http.MethodGet, "/page", nil, &out); err != nil {
		return nil, err
	}
	return &Page{Path: out.Path, HTML: out.HTML}, nil
}

func (b *HTTPBridge) Click(ctx context.Context, ref ElementRef) error {
	return b.do(ctx, http.MethodPost, "/click", clickPayload{Selector: string(ref)}, nil)
}

func (b *HTTPBridge) SetProgress(ctx context.Context, percent float64) error {
	return b.do(ctx, http.MethodPost, "/progress", progressPayload{Percent: percent}, nil)
}

func (b *HTTPBridge) Confirm(ctx context.Context, prompt string) (bool, error) {
	var out confirmResponse
	if err := b.do(ctx, http.MethodPost, "/confirm", confirmPayload{Prompt: prompt}, &out); err != nil {
		return false, err
	}
	return out.Accepted, nil
}

func (b *HTTPBridge) MountControl(ctx context.Context, control Control) error {
	payload := controlPayload{
		ID:       control.ID,
		Label:    control.Label,
		Anchor:   control.Anchor,
		Position: control.Position,
	}
	return b.do(ctx, http.MethodPost, "/controls", payload, nil)
}

func (b *HTTPBridge) SetControlLabel(ctx context.Context, id, label string) error {
	return b.do(ctx, http.MethodPost, "/controls/label", labelPayload{ID: id, Label: label}, nil)
}

func (b *HTTPBridge) SortSiblings(ctx context.Context, ref ElementRef) error {
	return b.do(ctx, http.MethodPost, "/sort", sortPayload{Selector: string(ref)}, nil)
}

// Events long-polls the shim's event endpoint and fans results into a
// channel. Transport failures are logged and retried; the subscription only
// ends with the context.
func (b *HTTPBridge) Events(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event, 16)
	go func() {
		defer close(ch)
		for {
			var out eventsResponse
			err := b.do(ctx, http.MethodGet, "/events", nil, &out)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				b.logger.Warn("event poll failed", logging.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(b.retryInterval):
				}
				continue
			}
			for _, ev := range out.Events {
				select {
				case <-ctx.Done():
					return
				case ch <- Event{Kind: EventKind(ev.Kind), Path: ev.Path, Control: ev.Control}:
				}
			}
		}
	}()
	return ch, nil
}

func (b *HTTPBridge) do(ctx context.Context, method, path string, in, out any) error {
	if b.baseURL == "" {
		return ErrBridgeUnavailable
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode bridge request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build bridge request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBridgeUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("bridge %s %s returned %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode bridge response: %w", err)
	}
	return nil
}
