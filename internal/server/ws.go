package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func registerWSRoute(mux *http.ServeMux, hub *Hub, sessions SessionManager) {
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("ws upgrade error: %v", err)
			return
		}
		defer func() { _ = conn.Close() }()

		if err := writeEvent(conn, ConnectionEvent{
			Event:     newEvent("connection", time.Now().UTC()),
			Connected: true,
		}); err != nil {
			return
		}

		// Follow with the current session snapshot so a client joining
		// mid-call renders the transcript and activity immediately instead
		// of waiting for the next broadcast.
		if sessions != nil {
			if err := writeEvent(conn, SessionStateEvent{
				Event: newEvent("session_state", time.Now().UTC()),
				State: sessions.Snapshot(),
			}); err != nil {
				return
			}
		}

		ch := hub.Subscribe()
		defer hub.Unsubscribe(ch)

		for msg := range ch {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	})
}

func writeEvent(conn *websocket.Conn, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("event marshal error: %v", err)
		return nil
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}
