package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/wesleyorama2/riposte/http"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "history.db")
	manager, err := NewManager(dbPath)
	if err != nil {
		t.Fatalf("Error creating history manager: %v", err)
	}
	t.Cleanup(func() { manager.Close() })

	return manager
}

func successResult() *http.CallResult {
	started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &http.CallResult{
		StartedAt: started,
		EndedAt:   started.Add(120 * time.Millisecond),
		Duration:  120 * time.Millisecond,
		Request: &http.RequestSpec{
			URL:     "https://api.example.com/widgets/1",
			Method:  "GET",
			Headers: map[string]string{"Accept": "application/json"},
		},
		Response: &http.ResponseCapture{
			StatusCode: 200,
			Status:     "200 OK",
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"id":1}`,
		},
	}
}

func failedResult() *http.CallResult {
	return &http.CallResult{
		StartedAt: time.Now(),
		Duration:  35 * time.Millisecond,
		Request: &http.RequestSpec{
			URL:     "https://unreachable.example.com/",
			Method:  "GET",
			Headers: map[string]string{},
		},
		Failure: &http.Failure{Kind: http.FailureTransport, Message: "connection refused"},
	}
}

func TestManager_SaveAndRecent(t *testing.T) {
	manager := newTestManager(t)

	if err := manager.Save("call-1", successResult()); err != nil {
		t.Fatalf("Error saving result: %v", err)
	}

	entries, err := manager.Recent(10)
	if err != nil {
		t.Fatalf("Error loading history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}

	entry := entries[0]
	if entry.CallID != "call-1" {
		t.Errorf("Expected call id call-1, got %s", entry.CallID)
	}
	if entry.Method != "GET" || entry.URL != "https://api.example.com/widgets/1" {
		t.Errorf("Unexpected request fields: %+v", entry)
	}
	if entry.RequestHeaders["Accept"] != "application/json" {
		t.Errorf("Expected request headers to round-trip, got %v", entry.RequestHeaders)
	}
	if entry.StatusCode != 200 || entry.Status != "200 OK" {
		t.Errorf("Unexpected response fields: %+v", entry)
	}
	if entry.ResponseBody != `{"id":1}` {
		t.Errorf("Expected response body to round-trip, got %s", entry.ResponseBody)
	}
	if entry.DurationMs != 120 {
		t.Errorf("Expected duration 120ms, got %d", entry.DurationMs)
	}
	if entry.FailureKind != "" {
		t.Errorf("Expected no failure, got %s", entry.FailureKind)
	}
	if entry.StartedAt.IsZero() {
		t.Error("Expected started timestamp to round-trip")
	}
}

func TestManager_SaveFailure(t *testing.T) {
	manager := newTestManager(t)

	if err := manager.Save("call-2", failedResult()); err != nil {
		t.Fatalf("Error saving result: %v", err)
	}

	entries, err := manager.Recent(10)
	if err != nil {
		t.Fatalf("Error loading history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}

	entry := entries[0]
	if entry.StatusCode != 0 || entry.Status != "" {
		t.Errorf("Expected no response fields, got %+v", entry)
	}
	if entry.FailureKind != "transport_error" {
		t.Errorf("Expected transport_error, got %s", entry.FailureKind)
	}
	if entry.FailureMessage != "connection refused" {
		t.Errorf("Expected failure message, got %s", entry.FailureMessage)
	}
}

func TestManager_RecentOrderAndLimit(t *testing.T) {
	manager := newTestManager(t)

	for i := 0; i < 5; i++ {
		result := successResult()
		result.Request.URL = result.Request.URL + "?" + string(rune('a'+i))
		if err := manager.Save("call", result); err != nil {
			t.Fatalf("Error saving result: %v", err)
		}
	}

	entries, err := manager.Recent(3)
	if err != nil {
		t.Fatalf("Error loading history: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}

	// Newest first
	if entries[0].ID <= entries[1].ID || entries[1].ID <= entries[2].ID {
		t.Errorf("Expected descending ids, got %d %d %d", entries[0].ID, entries[1].ID, entries[2].ID)
	}
}

func TestManager_CountAndClear(t *testing.T) {
	manager := newTestManager(t)

	manager.Save("call-1", successResult())
	manager.Save("call-2", failedResult())

	count, err := manager.Count()
	if err != nil {
		t.Fatalf("Error counting history: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 entries, got %d", count)
	}

	if err := manager.Clear(); err != nil {
		t.Fatalf("Error clearing history: %v", err)
	}

	count, err = manager.Count()
	if err != nil {
		t.Fatalf("Error counting history: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 entries after clear, got %d", count)
	}
}

func TestManager_SaveRejectsEmptyResult(t *testing.T) {
	manager := newTestManager(t)

	if err := manager.Save("call-x", nil); err == nil {
		t.Error("Expected error for nil result")
	}
	if err := manager.Save("call-y", &http.CallResult{}); err == nil {
		t.Error("Expected error for result without request")
	}
}
