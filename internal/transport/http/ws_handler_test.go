package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"elsa-proficiency-test/internal/app"
	"elsa-proficiency-test/internal/catalog"
	"elsa-proficiency-test/internal/domain"
	"elsa-proficiency-test/internal/infra/memory"
	"github.com/gorilla/websocket"
)

func TestWebSocketActionFlow(t *testing.T) {
	service := newTestService(t)
	wsHandler := NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?catalogId=" + catalog.ReferenceID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Expect joined event first, carrying a generated attempt ID.
	_, payload := readNext(conn, t, "joined")
	if id, _ := payload["attemptId"].(string); id == "" {
		t.Fatalf("expected generated attempt id, got %v", payload["attemptId"])
	}

	_, payload = readNext(conn, t, "view")
	if payload["mode"] != string(domain.ModeNotStarted) {
		t.Fatalf("expected not-started view, got %v", payload["mode"])
	}

	send(conn, t, map[string]any{"type": "start"})
	_, payload = readNext(conn, t, "view")
	if payload["mode"] != string(domain.ModeInProgress) {
		t.Fatalf("expected in-progress view, got %v", payload["mode"])
	}

	send(conn, t, map[string]any{"type": "select", "payload": map[string]any{"option": 1}})
	_, payload = readNext(conn, t, "view")
	question, _ := payload["question"].(map[string]any)
	if question == nil || question["selected"] != float64(1) {
		t.Fatalf("expected option 1 selected, got %v", payload["question"])
	}

	// completing with an unsubmitted question is refused
	send(conn, t, map[string]any{"type": "complete"})
	readNext(conn, t, "error")

	send(conn, t, map[string]any{"type": "dance"})
	readNext(conn, t, "error")

	send(conn, t, map[string]any{"type": "select", "payload": "oops"})
	readNext(conn, t, "error")
}

func TestWebSocketReconnectReportsSessionCatalog(t *testing.T) {
	wsHandler := NewWSHandler(newTestService(t))
	server := httptest.NewServer(http.HandlerFunc(wsHandler.ServeWS))
	defer server.Close()
	base := "ws" + server.URL[len("http"):] + "/ws?attemptId=a1&catalogId="

	first, _, err := websocket.DefaultDialer.Dial(base+catalog.ReferenceID, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer first.Close()
	_, payload := readNext(first, t, "joined")
	if payload["catalogId"] != catalog.ReferenceID {
		t.Fatalf("expected reference catalog, got %v", payload["catalogId"])
	}

	// the first connection keeps the attempt alive
	second, _, err := websocket.DefaultDialer.Dial(base+catalog.FullBankID, nil)
	if err != nil {
		t.Fatalf("dial again: %v", err)
	}
	defer second.Close()
	_, payload = readNext(second, t, "joined")
	if payload["attemptId"] != "a1" || payload["catalogId"] != catalog.ReferenceID {
		t.Fatalf("expected attempt a1 on the reference catalog, got %v", payload)
	}
	view, _ := payload["view"].(map[string]any)
	if view == nil || view["catalogId"] != catalog.ReferenceID {
		t.Fatalf("expected view on the reference catalog, got %v", payload["view"])
	}
}

func TestWebSocketRequiresCatalog(t *testing.T) {
	wsHandler := NewWSHandler(newTestService(t))
	server := httptest.NewServer(http.HandlerFunc(wsHandler.ServeWS))
	defer server.Close()

	resp, err := http.Get(server.URL + "/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestWebSocketUnknownCatalog(t *testing.T) {
	wsHandler := NewWSHandler(newTestService(t))
	server := httptest.NewServer(http.HandlerFunc(wsHandler.ServeWS))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[len("http"):]+"/ws?catalogId=nope", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readNext(conn, t, "error")
}

func TestDecodeActionRecording(t *testing.T) {
	action, err := decodeAction(inboundMessage{
		Type:    "recording",
		Payload: []byte(`{"recording":"aGVsbG8="}`),
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if action.Type != app.ActionRecording || string(action.Recording) != "hello" {
		t.Fatalf("unexpected action %+v", action)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

func send(conn *websocket.Conn, t *testing.T, msg map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %v: %v", msg["type"], err)
	}
}

func newTestService(t *testing.T) *app.TestService {
	t.Helper()
	reference, err := catalog.Reference()
	if err != nil {
		t.Fatalf("reference: %v", err)
	}
	fullBank, err := catalog.FullBank()
	if err != nil {
		t.Fatalf("full bank: %v", err)
	}
	repo := memory.NewCatalogRepository(memory.NewStaticCatalogLoader(map[string]domain.Catalog{
		catalog.ReferenceID: reference,
		catalog.FullBankID:  fullBank,
	}), time.Minute)
	return app.NewTestService(memory.NewSessionStore(), repo)
}

// completeAttempt drives a fresh attempt to the end with every answer correct.
func completeAttempt(t *testing.T, service *app.TestService, attemptID string) {
	t.Helper()
	ctx := context.Background()
	dispatch := func(a app.Action) {
		t.Helper()
		if _, err := service.Dispatch(ctx, attemptID, a); err != nil {
			t.Fatalf("%s: %v", a.Type, err)
		}
	}

	if _, err := service.Open(ctx, catalog.ReferenceID, attemptID); err != nil {
		t.Fatalf("open: %v", err)
	}
	reference, _ := catalog.Reference()
	dispatch(app.Action{Type: app.ActionStart})
	for _, section := range reference.Sections {
		for i, q := range section.Questions {
			i := i
			dispatch(app.Action{Type: app.ActionSelect, Question: &i, Option: q.CorrectAnswer})
			dispatch(app.Action{Type: app.ActionSubmit, Question: &i})
		}
		if section.Prompt != nil {
			switch section.Prompt.Kind {
			case domain.PromptWriting:
				dispatch(app.Action{Type: app.ActionText, Text: "Dear team, the delivery arrived late and two items were damaged in transit."})
			case domain.PromptSpeaking:
				dispatch(app.Action{Type: app.ActionRecording, Recording: []byte("voice")})
			}
		}
		dispatch(app.Action{Type: app.ActionComplete})
	}
}
