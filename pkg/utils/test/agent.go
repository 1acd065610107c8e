package testutils

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// FakeAgent is an httptest server speaking the agent HTTP surface. Replies
// are served in order; the last one repeats.
type FakeAgent struct {
	*httptest.Server

	mu       sync.Mutex
	replies  []string
	sessions []string
	messages []string

	// SessionStatus, when non-zero, fails session creation with that status.
	SessionStatus int
	// RunError makes /run and /run_sse report an agent error event.
	RunError string
	// StreamDelay pauses /run_sse before every frame.
	StreamDelay time.Duration
}

// NewFakeAgent starts a fake agent answering with replies. Call Close when
// done.
func NewFakeAgent(replies ...string) *FakeAgent {
	f := &FakeAgent{replies: replies}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /apps/{app}/users/{user}/sessions/{session}", f.createSession)
	mux.HandleFunc("POST /run", f.run)
	mux.HandleFunc("POST /run_sse", f.runSSE)
	f.Server = httptest.NewServer(mux)
	return f
}

// Sessions returns the ids of the sessions created so far.
func (f *FakeAgent) Sessions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sessions...)
}

// Messages returns the user messages received so far.
func (f *FakeAgent) Messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

func (f *FakeAgent) createSession(w http.ResponseWriter, r *http.Request) {
	if f.SessionStatus != 0 {
		http.Error(w, "session refused", f.SessionStatus)
		return
	}

	id := r.PathValue("session")
	f.mu.Lock()
	f.sessions = append(f.sessions, id)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      id,
		"appName": r.PathValue("app"),
		"userId":  r.PathValue("user"),
		"state":   map[string]any{},
	})
}

type runBody struct {
	NewMessage struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"newMessage"`
}

// next records the request message and returns the reply to send.
func (f *FakeAgent) next(r *http.Request) string {
	var body runBody
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	defer f.mu.Unlock()

	if len(body.NewMessage.Parts) > 0 {
		f.messages = append(f.messages, body.NewMessage.Parts[0].Text)
	}
	if len(f.replies) == 0 {
		return ""
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply
}

func (f *FakeAgent) run(w http.ResponseWriter, r *http.Request) {
	reply := f.next(r)
	w.Header().Set("Content-Type", "application/json")

	if f.RunError != "" {
		_ = json.NewEncoder(w).Encode(map[string]string{"error": f.RunError})
		return
	}
	_ = json.NewEncoder(w).Encode([]any{textEvent(reply)})
}

// runSSE streams the reply as growing snapshots, one word at a time.
func (f *FakeAgent) runSSE(w http.ResponseWriter, r *http.Request) {
	reply := f.next(r)
	w.Header().Set("Content-Type", "text/event-stream")
	flusher, _ := w.(http.Flusher)

	if f.RunError != "" {
		b, _ := json.Marshal(map[string]string{"error": f.RunError})
		fmt.Fprintf(w, "data: %s\n\n", b)
		return
	}

	words := strings.SplitAfter(reply, " ")
	var snapshot strings.Builder
	for _, word := range words {
		if f.StreamDelay > 0 {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(f.StreamDelay):
			}
		}
		snapshot.WriteString(word)
		b, _ := json.Marshal(textEvent(snapshot.String()))
		fmt.Fprintf(w, "data: %s\n\n", b)
		if flusher != nil {
			flusher.Flush()
		}
	}
	_, _ = io.WriteString(w, "data: [DONE]\n\n")
}

func textEvent(text string) map[string]any {
	return map[string]any{
		"author": "meal_planner",
		"content": map[string]any{
			"role":  "model",
			"parts": []map[string]string{{"text": text}},
		},
	}
}
