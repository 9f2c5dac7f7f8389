package http

import (
	"encoding/json"
	"log"
	"net/http"

	"elsa-proficiency-test/internal/app"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.TestService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.TestService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// actionPayload carries the optional arguments of an action. Recording is base64 in JSON.
type actionPayload struct {
	Question  *int   `json:"question"`
	Option    int    `json:"option"`
	Text      string `json:"text"`
	Recording []byte `json:"recording"`
}

// joinedPayload names the catalog the attempt actually runs, which differs from the
// query when reconnecting to an existing attempt.
type joinedPayload struct {
	AttemptID string   `json:"attemptId"`
	CatalogID string   `json:"catalogId"`
	View      app.View `json:"view"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the test use cases.
// Query: catalogId (required), attemptId (optional, generated when absent).
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	catalogID := r.URL.Query().Get("catalogId")
	attemptID := r.URL.Query().Get("attemptId")
	if catalogID == "" {
		http.Error(w, "missing catalogId", http.StatusBadRequest)
		return
	}
	if attemptID == "" {
		attemptID = uuid.NewString()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	view, err := h.service.Open(r.Context(), catalogID, attemptID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	updates, cancel, err := h.service.Subscribe(r.Context(), attemptID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer func() {
		cancel()
		h.service.Leave(r.Context(), attemptID)
	}()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// joined is queued before any view so clients learn the attempt ID first
	send <- outboundMessage[any]{Type: "joined", Payload: joinedPayload{
		AttemptID: attemptID,
		CatalogID: view.CatalogID,
		View:      view,
	}}

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "view", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		action, err := decodeAction(inbound)
		if err != nil {
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid " + inbound.Type + " payload"}}
			continue
		}
		// successful actions reach the client through the subscription
		if _, err := h.service.Dispatch(r.Context(), attemptID, action); err != nil {
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func decodeAction(in inboundMessage) (app.Action, error) {
	action := app.Action{Type: app.ActionType(in.Type)}
	if len(in.Payload) == 0 || string(in.Payload) == "null" {
		return action, nil
	}
	var payload actionPayload
	if err := json.Unmarshal(in.Payload, &payload); err != nil {
		return app.Action{}, err
	}
	action.Question = payload.Question
	action.Option = payload.Option
	action.Text = payload.Text
	action.Recording = payload.Recording
	return action, nil
}
