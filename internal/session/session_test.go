// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/tagwise-tui/internal/api"
	"github.com/jeranaias/tagwise-tui/internal/model"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// recordingView captures callbacks for assertions.
type recordingView struct {
	mu               sync.Mutex
	transcriptEvents int
	sidebarEvents    int
	titles           []string
	notices          []string
	slow             int
}

func (v *recordingView) TranscriptChanged() {
	v.mu.Lock()
	v.transcriptEvents++
	v.mu.Unlock()
}

func (v *recordingView) SidebarChanged() {
	v.mu.Lock()
	v.sidebarEvents++
	v.mu.Unlock()
}

func (v *recordingView) TitleChanged(id, title string) {
	v.mu.Lock()
	v.titles = append(v.titles, title)
	v.mu.Unlock()
}

func (v *recordingView) NoticeShown(text string) {
	v.mu.Lock()
	v.notices = append(v.notices, text)
	v.mu.Unlock()
}

func (v *recordingView) NoticeDone(text string) {}
func (v *recordingView) NoticeRemoved()         {}

func (v *recordingView) SlowResponse() {
	v.mu.Lock()
	v.slow++
	v.mu.Unlock()
}

// backend is a minimal in-memory TagWise server for session tests.
type backend struct {
	mu        sync.Mutex
	askCalls  int32
	getCalls  int32
	creates   int32
	nextID    int
	askBody   func(w http.ResponseWriter, r *http.Request)
	initState string
}

func newBackend() *backend {
	return &backend{nextID: 1, initState: "success"}
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/chatbot/init/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": b.initState})
	})

	mux.HandleFunc("/api/chatbot/ask/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.askCalls, 1)
		if b.askBody != nil {
			b.askBody(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		fmt.Fprintln(w, `{"type":"content","chunk":"hi"}`)
		fmt.Fprintln(w, `{"type":"completion","sources":[]}`)
	})

	mux.HandleFunc("/api/chatbot/conversations/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "tok", Path: "/"})

		path := strings.TrimPrefix(r.URL.Path, "/api/chatbot/conversations/")
		switch {
		case path == "" && r.Method == http.MethodGet:
			writeJSON(w, map[string]any{
				"status": "success",
				"conversations": []map[string]any{
					{"id": 1, "title": "Go links"},
				},
			})
		case path == "new/":
			b.mu.Lock()
			id := b.nextID
			b.nextID++
			b.mu.Unlock()
			atomic.AddInt32(&b.creates, 1)
			writeJSON(w, map[string]any{
				"status":       "success",
				"conversation": map[string]any{"id": id, "title": "New Conversation"},
			})
		case strings.HasSuffix(path, "/delete/"):
			writeJSON(w, map[string]string{"status": "success", "message": "deleted"})
		case strings.HasSuffix(path, "/rename/"):
			writeJSON(w, map[string]string{"status": "success", "message": "renamed"})
		default:
			atomic.AddInt32(&b.getCalls, 1)
			writeJSON(w, map[string]any{
				"status": "success",
				"conversation": map[string]any{
					"title": "Go links",
					"messages": []map[string]any{
						{"is_user": true, "content": "what did I save about go?"},
						{"is_user": false, "content": "You saved **three** articles."},
					},
				},
			})
		}
	})

	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func newTestSession(t *testing.T, b *backend, view View) *Session {
	t.Helper()
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	client, err := api.NewClient(srv.URL)
	require.NoError(t, err)
	return New(client, view)
}

// =============================================================================
// TESTS
// =============================================================================

func TestSendEmptyInputIgnored(t *testing.T) {
	b := newBackend()
	s := newTestSession(t, b, nil)

	require.NoError(t, s.Send(context.Background(), "   "))
	assert.Equal(t, int32(0), atomic.LoadInt32(&b.askCalls))
	assert.Len(t, s.Messages(), 1) // welcome only
}

func TestSendGuardAllowsOneCall(t *testing.T) {
	b := newBackend()
	release := make(chan struct{})
	entered := make(chan struct{})
	b.askBody = func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		w.Header().Set("Content-Type", "application/x-ndjson")
		fmt.Fprintln(w, `{"type":"completion","sources":[]}`)
	}
	s := newTestSession(t, b, nil)

	done := make(chan error, 1)
	go func() { done <- s.Send(context.Background(), "first") }()

	<-entered
	// Second send while the first is suspended in the ask call.
	err := s.Send(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, int32(1), atomic.LoadInt32(&b.askCalls))
	assert.False(t, s.Processing())
}

func TestLoadConversationActiveIDGuard(t *testing.T) {
	b := newBackend()
	s := newTestSession(t, b, nil)
	ctx := context.Background()

	require.NoError(t, s.LoadConversation(ctx, "1"))
	require.NoError(t, s.LoadConversation(ctx, "1"))

	assert.Equal(t, int32(1), atomic.LoadInt32(&b.getCalls))
	assert.Equal(t, "1", s.CurrentID())
}

func TestLoadConversationReplacesTranscript(t *testing.T) {
	b := newBackend()
	s := newTestSession(t, b, nil)

	require.NoError(t, s.LoadConversation(context.Background(), "1"))

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)
	assert.Contains(t, msgs[1].HTML, "<strong>three</strong>")
	assert.Equal(t, "Go links", s.Title())
}

func TestFirstSendEndToEnd(t *testing.T) {
	b := newBackend()
	b.askBody = func(w http.ResponseWriter, r *http.Request) {
		var req api.AskRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.GenerateTitle)
		assert.Equal(t, "hello", req.Message)

		w.Header().Set("Content-Type", "application/x-ndjson")
		fmt.Fprintln(w, `{"type":"metadata","conversation_id":1}`)
		fmt.Fprintln(w, `{"type":"content","chunk":"Here are "}`)
		fmt.Fprintln(w, `{"type":"content","chunk":"your bookmarks."}`)
		fmt.Fprintln(w, `{"type":"status","message":"Generating title..."}`)
		fmt.Fprintln(w, `{"type":"title","title":"Bookmark question"}`)
		fmt.Fprintln(w, `{"type":"completion","sources":[{"title":"Go blog","url":"https://go.dev/blog"}]}`)
	}
	view := &recordingView{}
	s := newTestSession(t, b, view)

	require.NoError(t, s.Send(context.Background(), "hello"))

	// One conversation was created lazily.
	assert.Equal(t, int32(1), atomic.LoadInt32(&b.creates))

	msgs := s.Messages()
	require.Len(t, msgs, 3) // welcome, user, assistant
	assert.Equal(t, "hello", msgs[1].Content)
	assert.Equal(t, "Here are your bookmarks.", msgs[2].Content)
	assert.False(t, msgs[2].Streaming)
	require.Len(t, msgs[2].Sources, 1)
	assert.Equal(t, "Go blog", msgs[2].Sources[0].Title)

	view.mu.Lock()
	defer view.mu.Unlock()
	assert.Contains(t, view.titles, "Bookmark question")
	assert.Contains(t, view.notices, "Generating title...")
	assert.GreaterOrEqual(t, view.transcriptEvents, 3)
	assert.False(t, s.Processing())
}

func TestSendServerErrorSurfaced(t *testing.T) {
	b := newBackend()
	b.askBody = func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":"error","message":"boom"}`, http.StatusInternalServerError)
	}
	s := newTestSession(t, b, nil)

	require.NoError(t, s.Send(context.Background(), "hello"))

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	last := msgs[len(msgs)-1]
	assert.True(t, last.IsError)
	assert.Equal(t, sendFailedText, last.Content)
	assert.False(t, s.Processing())
}

func TestSendErrorEventReplacesContent(t *testing.T) {
	b := newBackend()
	b.askBody = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		fmt.Fprintln(w, `{"type":"content","chunk":"partial"}`)
		fmt.Fprintln(w, `{"type":"error","message":"model unavailable"}`)
	}
	s := newTestSession(t, b, nil)

	require.NoError(t, s.Send(context.Background(), "hello"))

	last := s.Messages()[2]
	assert.True(t, last.IsError)
	assert.Equal(t, "model unavailable", last.Content)
}

func TestSendTruncatedStreamKeepsContent(t *testing.T) {
	b := newBackend()
	b.askBody = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		fmt.Fprintln(w, `{"type":"content","chunk":"partial answer"}`)
		// No terminal event: connection drops here.
	}
	s := newTestSession(t, b, nil)

	require.NoError(t, s.Send(context.Background(), "hello"))

	last := s.Messages()[2]
	assert.False(t, last.IsError)
	assert.Equal(t, "partial answer", last.Content)
	assert.False(t, last.Streaming)
}

func TestSendBlockedByStickyInitError(t *testing.T) {
	b := newBackend()
	b.initState = "error"
	s := newTestSession(t, b, nil)

	require.NoError(t, s.Send(context.Background(), "hello"))
	assert.True(t, s.APIError())
	assert.Equal(t, int32(0), atomic.LoadInt32(&b.askCalls))

	last := s.Messages()[len(s.Messages())-1]
	assert.True(t, last.IsError)
	assert.Equal(t, initFailedText, last.Content)

	// Subsequent sends short-circuit without touching the network.
	require.NoError(t, s.Send(context.Background(), "again"))
	assert.Equal(t, int32(0), atomic.LoadInt32(&b.askCalls))

	// Reset clears the sticky flag.
	s.Reset(context.Background())
	assert.False(t, s.APIError())
}

func TestSlowResponseNotice(t *testing.T) {
	b := newBackend()
	b.askBody = func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(80 * time.Millisecond)
		w.Header().Set("Content-Type", "application/x-ndjson")
		fmt.Fprintln(w, `{"type":"content","chunk":"late but complete"}`)
		fmt.Fprintln(w, `{"type":"completion","sources":[]}`)
	}
	view := &recordingView{}
	s := newTestSession(t, b, view).WithTimings(20*time.Millisecond, time.Millisecond)

	require.NoError(t, s.Send(context.Background(), "hello"))

	view.mu.Lock()
	slow := view.slow
	view.mu.Unlock()
	assert.Equal(t, 1, slow)

	// The late response still overwrote the notice.
	assert.Equal(t, "late but complete", s.Messages()[2].Content)
}

func TestSyncFallbackMatchesStreaming(t *testing.T) {
	b := newBackend()
	b.askBody = func(w http.ResponseWriter, r *http.Request) {
		var req api.AskRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		writeJSON(w, map[string]any{
			"status":             "success",
			"message":            "One-shot answer",
			"sources":            []map[string]any{{"title": "Go blog", "url": "https://go.dev/blog"}},
			"conversation_id":    1,
			"conversation_title": "Bookmark question",
		})
	}
	view := &recordingView{}
	s := newTestSession(t, b, view).WithStreaming(false)

	require.NoError(t, s.Send(context.Background(), "hello"))

	last := s.Messages()[2]
	assert.Equal(t, "One-shot answer", last.Content)
	require.Len(t, last.Sources, 1)
	assert.False(t, last.Streaming)
	assert.Equal(t, "Bookmark question", s.Title())
}

func TestNewConversationResetsTranscript(t *testing.T) {
	b := newBackend()
	s := newTestSession(t, b, nil)

	require.NoError(t, s.NewConversation(context.Background()))

	assert.NotEmpty(t, s.CurrentID())
	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, WelcomeText, msgs[0].Content)
	_, listed := s.Sidebar().Get(s.CurrentID())
	assert.True(t, listed)
}

func TestDeleteActiveConversationClearsState(t *testing.T) {
	b := newBackend()
	s := newTestSession(t, b, nil)
	ctx := context.Background()

	require.NoError(t, s.NewConversation(ctx))
	id := s.CurrentID()

	require.NoError(t, s.DeleteConversation(ctx, id))
	assert.Empty(t, s.CurrentID())
	_, listed := s.Sidebar().Get(id)
	assert.False(t, listed)
	assert.Equal(t, WelcomeText, s.Messages()[0].Content)
}

func TestRenameConversation(t *testing.T) {
	b := newBackend()
	view := &recordingView{}
	s := newTestSession(t, b, view)
	ctx := context.Background()

	require.NoError(t, s.NewConversation(ctx))
	id := s.CurrentID()

	require.NoError(t, s.RenameConversation(ctx, id, "Reading list"))
	assert.Equal(t, "Reading list", s.Title())
	entry, _ := s.Sidebar().Get(id)
	assert.Equal(t, "Reading list", entry.Title)

	// Unchanged title is a no-op.
	require.NoError(t, s.RenameConversation(ctx, id, "Reading list"))

	// Empty title is a no-op.
	require.NoError(t, s.RenameConversation(ctx, id, "   "))
	assert.Equal(t, "Reading list", s.Title())
}

func TestRefreshListSync(t *testing.T) {
	b := newBackend()
	s := newTestSession(t, b, nil)

	s.RefreshList(context.Background())
	require.Equal(t, 1, s.Sidebar().Len())
	assert.Equal(t, "Go links", s.Sidebar().Entries()[0].Title)
}

// renderingView signals a separate render goroutine on every transcript
// change, the way the TUI bridge hands callbacks to the update loop.
type renderingView struct {
	NopView
	renders chan struct{}
}

func (v *renderingView) TranscriptChanged() {
	select {
	case v.renders <- struct{}{}:
	default:
	}
}

// A render goroutine snapshots the transcript and sidebar on every
// change while the streaming exchange keeps mutating both. Run with the
// race detector to verify the snapshots fully isolate the reader.
func TestConcurrentRenderDuringStream(t *testing.T) {
	b := newBackend()
	b.askBody = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		f, _ := w.(http.Flusher)
		for i := 0; i < 50; i++ {
			fmt.Fprintln(w, `{"type":"content","chunk":"chunk "}`)
			if f != nil {
				f.Flush()
			}
		}
		fmt.Fprintln(w, `{"type":"completion","sources":[]}`)
	}

	view := &renderingView{renders: make(chan struct{}, 1)}
	s := newTestSession(t, b, view)

	var reads int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range view.renders {
			for _, msg := range s.Messages() {
				_ = len(msg.Content) + len(msg.HTML)
			}
			for _, e := range s.Sidebar().Entries() {
				_ = e.Title
			}
			atomic.AddInt32(&reads, 1)
		}
	}()

	require.NoError(t, s.Send(context.Background(), "stream a lot"))
	close(view.renders)
	<-done

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, strings.Repeat("chunk ", 50), msgs[2].Content)
	assert.Positive(t, atomic.LoadInt32(&reads))
}
