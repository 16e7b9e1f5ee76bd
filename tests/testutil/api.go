package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/nhle/storefront/internal/model"
)

// TestToken is the bearer token FakeAPI accepts.
const TestToken = "test-token"

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token returns the token.
func (t StaticToken) Token() string { return string(t) }

// RecordedRequest is one request observed by FakeAPI.
type RecordedRequest struct {
	Method string
	Path   string
	Auth   string
}

// failure is a canned error response served once for a route.
type failure struct {
	status int
	body   string
}

// FakeAPI is an in-memory implementation of the storefront notification
// endpoints served over httptest. Unread is derived from the stored
// records, the way the real service computes it.
type FakeAPI struct {
	Server *httptest.Server

	mu       sync.Mutex
	records  []model.Notification
	requests []RecordedRequest
	failures map[string][]failure
}

// NewFakeAPI starts a fake API seeded with records (newest first). The
// server is closed when the test completes.
func NewFakeAPI(t *testing.T, records ...model.Notification) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		records:  append([]model.Notification(nil), records...),
		failures: make(map[string][]failure),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /notifications/notifications/{$}", f.handleList)
	mux.HandleFunc("GET /notifications/notifications/unread/{$}", f.handleUnread)
	mux.HandleFunc("POST /notifications/notifications/{id}/mark_as_read/{$}", f.handleMarkRead)
	mux.HandleFunc("POST /notifications/notifications/mark_all_as_read/{$}", f.handleMarkAllRead)

	f.Server = httptest.NewServer(f.middleware(mux))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL of the fake API.
func (f *FakeAPI) URL() string { return f.Server.URL }

// SetRecords replaces the stored notifications.
func (f *FakeAPI) SetRecords(records ...model.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append([]model.Notification(nil), records...)
}

// Records returns a copy of the stored notifications.
func (f *FakeAPI) Records() []model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Notification(nil), f.records...)
}

// FailNext makes the next request to path answer with status and body.
func (f *FakeAPI) FailNext(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[path] = append(f.failures[path], failure{status: status, body: body})
}

// Requests returns every request received so far.
func (f *FakeAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// RequestCount returns how many requests hit path.
func (f *FakeAPI) RequestCount(path string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Path == path {
			n++
		}
	}
	return n
}

func (f *FakeAPI) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
		})
		var fail *failure
		if queue := f.failures[r.URL.Path]; len(queue) > 0 {
			fail = &queue[0]
			f.failures[r.URL.Path] = queue[1:]
		}
		f.mu.Unlock()

		if fail != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(fail.status)
			_, _ = w.Write([]byte(fail.body))
			return
		}

		if r.Header.Get("Authorization") != "Bearer "+TestToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "Authentication credentials were not provided.",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, f.Records())
}

func (f *FakeAPI) handleUnread(w http.ResponseWriter, _ *http.Request) {
	unread := []model.Notification{}
	for _, n := range f.Records() {
		if !n.IsRead {
			unread = append(unread, n)
		}
	}
	writeJSON(w, http.StatusOK, unread)
}

func (f *FakeAPI) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		if f.records[i].ID == id {
			f.records[i].IsRead = true
			writeJSON(w, http.StatusOK, f.records[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func (f *FakeAPI) handleMarkAllRead(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	for i := range f.records {
		f.records[i].IsRead = true
	}
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Notification builds a record with a deterministic timestamp derived
// from id, so larger ids are newer.
func Notification(id int64, read bool) model.Notification {
	return model.Notification{
		ID:        id,
		Type:      model.TypeNewOrder,
		Title:     "Order update " + strconv.FormatInt(id, 10),
		Message:   "Something happened to an order",
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Minute),
		IsRead:    read,
	}
}
