package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stashbatch/internal/config"
	"stashbatch/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyRunStarted(context.Background(), 3, 2); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsMessages(t *testing.T) {
	type captured struct {
		title    string
		tags     string
		priority string
		body     string
	}

	tests := []struct {
		name           string
		send           func(svc notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "run started",
			send: func(svc notifications.Service) error {
				return svc.NotifyRunStarted(context.Background(), 3, 2)
			},
			expectTitle:   "Stashbatch - Run Started",
			expectMessage: "Started run: 3 creates, 2 tag links",
			expectTags:    "stashbatch,run,started",
		},
		{
			name: "run completed",
			send: func(svc notifications.Service) error {
				return svc.NotifyRunCompleted(context.Background(), 5, 0, 42*time.Second)
			},
			expectTitle:   "Stashbatch - Run Complete",
			expectMessage: "Run complete: 5 items processed in 42s",
			expectTags:    "stashbatch,run,completed",
		},
		{
			name: "run completed with failures",
			send: func(svc notifications.Service) error {
				return svc.NotifyRunCompleted(context.Background(), 4, 1, time.Minute)
			},
			expectTitle:   "Stashbatch - Run Complete (with errors)",
			expectMessage: "Run complete: 4 processed, 1 unresolved in 1m0s",
			expectTags:    "stashbatch,run,completed",
		},
		{
			name: "error",
			send: func(svc notifications.Service) error {
				return svc.NotifyError(context.Background(), errors.New("catalog unreachable"), "tag resolution")
			},
			expectTitle:    "Stashbatch - Error",
			expectMessage:  "Error with tag resolution: catalog unreachable",
			expectTags:     "stashbatch,error,alert",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got captured
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				got.title = r.Header.Get("Title")
				got.tags = r.Header.Get("Tags")
				got.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				got.body = string(body)
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5
			cfg.Notifications.Runs = true
			cfg.Notifications.Errors = true

			svc := notifications.NewService(&cfg)
			if err := tc.send(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if got.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, got.title)
			}
			if got.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, got.body)
			}
			if got.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, got.tags)
			}
			if got.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, got.priority)
			}
		})
	}
}

func TestNtfyServiceHonorsCategoryToggles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for disabled category: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Runs = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(&cfg)
	if err := svc.NotifyRunStarted(context.Background(), 1, 1); err != nil {
		t.Fatalf("disabled run notification errored: %v", err)
	}
	if err := svc.NotifyError(context.Background(), errors.New("boom"), "run"); err != nil {
		t.Fatalf("disabled error notification errored: %v", err)
	}
}
