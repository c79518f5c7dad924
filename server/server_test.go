package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthub/agenthub/agent"
	"github.com/agenthub/agenthub/checkpoint"
	"github.com/agenthub/agenthub/core"
	"github.com/agenthub/agenthub/hub"
	"github.com/agenthub/agenthub/oracle"
	"github.com/agenthub/agenthub/stream"
)

func newTestServer(replies ...oracle.Reply) *Server {
	cps := checkpoint.NewInMemoryStore()
	h := hub.New(cps)
	h.Register(agent.NewChatAgent("chatbot", oracle.NewScripted(replies...), cps))
	return New(h)
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestServer_StreamChat(t *testing.T) {
	srv := newTestServer(oracle.Reply{Text: "Hi there"})

	rec := postJSON(t, srv.Handler(), "/v1/chat/stream", map[string]any{"content": "Hello"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))
	assert.NotEmpty(t, rec.Header().Get("X-Thread-ID"))

	decoded, err := stream.Decode(rec.Body)
	require.NoError(t, err)
	assert.True(t, decoded.Done)

	var tokens strings.Builder
	var msgs []core.Message
	for _, ev := range decoded.Events {
		switch ev.Kind {
		case core.EventToken:
			tokens.WriteString(ev.Token)
		case core.EventMessage:
			msgs = append(msgs, *ev.Message)
		}
	}
	assert.Equal(t, "Hi there", tokens.String())
	require.Len(t, msgs, 1)
	assert.Equal(t, "Hi there", msgs[0].Content)
}

func TestServer_StreamReusesThread(t *testing.T) {
	srv := newTestServer(oracle.Reply{Text: "first"}, oracle.Reply{Text: "second"})
	handler := srv.Handler()

	rec := postJSON(t, handler, "/v1/chat/stream", map[string]any{"content": "one"})
	require.Equal(t, http.StatusOK, rec.Code)
	threadID := rec.Header().Get("X-Thread-ID")
	require.NotEmpty(t, threadID)

	rec = postJSON(t, handler, "/v1/chat/stream", map[string]any{"content": "two", "thread_id": threadID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, threadID, rec.Header().Get("X-Thread-ID"))

	req := httptest.NewRequest(http.MethodGet, "/v1/chat/history/"+threadID, nil)
	hist := httptest.NewRecorder()
	handler.ServeHTTP(hist, req)
	require.Equal(t, http.StatusOK, hist.Code)

	var body struct {
		ThreadID string         `json:"thread_id"`
		Messages []core.Message `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(hist.Body).Decode(&body))
	assert.Equal(t, threadID, body.ThreadID)
	require.Len(t, body.Messages, 4)
	assert.Equal(t, "one", body.Messages[0].Content)
	assert.Equal(t, "second", body.Messages[3].Content)
}

func TestServer_StreamRejectsEmptyBody(t *testing.T) {
	srv := newTestServer()

	rec := postJSON(t, srv.Handler(), "/v1/chat/stream", map[string]any{})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Contains(t, body["error"], "content or resume")
}

func TestServer_StreamRejectsUnknownAgent(t *testing.T) {
	srv := newTestServer(oracle.Reply{Text: "hi"})

	rec := postJSON(t, srv.Handler(), "/v1/chat/stream", map[string]any{
		"content":  "Hello",
		"agent_id": "nope",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_HistoryUnknownThread(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/v1/chat/history/missing", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_CancelUnknownThread(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/cancel/missing", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Cancel(t *testing.T) {
	srv := newTestServer(oracle.Reply{Text: "done"})
	handler := srv.Handler()

	rec := postJSON(t, handler, "/v1/chat/stream", map[string]any{"content": "hi"})
	threadID := rec.Header().Get("X-Thread-ID")
	require.NotEmpty(t, threadID)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/cancel/"+threadID, nil)
	cancel := httptest.NewRecorder()
	handler.ServeHTTP(cancel, req)
	assert.Equal(t, http.StatusNoContent, cancel.Code)
}

func TestServer_Agents(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/v1/agents", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Agents []hub.AgentInfo `json:"agents"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Agents, 1)
	assert.Equal(t, "chatbot", body.Agents[0].ID)
}

func TestServer_Healthz(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
