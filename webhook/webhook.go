package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/use-agent/tiercards/models"
)

// EventSnapshotWritten is sent after a scrape run replaced the snapshot.
const EventSnapshotWritten = "snapshot.written"

// SignatureHeader carries the HMAC-SHA256 of the body when a secret is set.
const SignatureHeader = "X-Tiercards-Signature"

// Event is the payload sent to webhook endpoints.
type Event struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data"`
}

// SnapshotData describes a freshly written snapshot.
type SnapshotData struct {
	Path       string                 `json:"path"`
	Total      int                    `json:"total"`
	ByCategory []models.CategoryCount `json:"by_category"`
}

// retryDelays are the waits before each attempt made by Notify.
var retryDelays = []time.Duration{0, 1 * time.Second, 5 * time.Second}

// SnapshotWritten builds the event for a snapshot at path holding records.
func SnapshotWritten(path string, records []models.CardRecord) *Event {
	data := SnapshotData{Path: path, Total: len(records), ByCategory: []models.CategoryCount{}}
	index := make(map[string]int)
	for _, r := range records {
		i, ok := index[r.Category]
		if !ok {
			i = len(data.ByCategory)
			index[r.Category] = i
			data.ByCategory = append(data.ByCategory, models.CategoryCount{Category: r.Category})
		}
		data.ByCategory[i].Count++
	}
	return &Event{
		Type:      EventSnapshotWritten,
		Timestamp: time.Now().Unix(),
		Data:      data,
	}
}

// Deliver sends a webhook event once.
// The request body is signed with HMAC-SHA256 if secret is non-empty.
// Header: X-Tiercards-Signature: sha256=<hex>
func Deliver(ctx context.Context, url, secret string, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Tiercards-Webhook/1.0")

	if secret != "" {
		req.Header.Set(SignatureHeader, "sha256="+Sign(body, secret))
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Notify delivers event synchronously, retrying on failure. It never
// returns an error: by the time it runs the snapshot is already on disk,
// so delivery problems are only logged. It reports whether delivery
// succeeded.
func Notify(ctx context.Context, url, secret string, event *Event) bool {
	for attempt, delay := range retryDelays {
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				slog.Warn("webhook delivery abandoned", "url", url, "event", event.Type, "error", ctx.Err())
				return false
			}
		}
		attemptCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := Deliver(attemptCtx, url, secret, event)
		cancel()
		if err == nil {
			slog.Info("webhook delivered",
				"url", url,
				"event", event.Type,
				"attempt", attempt+1,
			)
			return true
		}
		slog.Warn("webhook delivery failed",
			"url", url,
			"event", event.Type,
			"attempt", attempt+1,
			"error", err,
		)
	}
	slog.Error("webhook delivery exhausted all retries",
		"url", url,
		"event", event.Type,
	)
	return false
}
