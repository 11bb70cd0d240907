package booking

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins — adjust for production if needed
		return true
	},
}

var (
	subscribers = make(map[string][]*websocket.Conn)
	mu          sync.Mutex
)

// HandleWS subscribes a client to live booking updates for one agenda.
// GET /ws/agendas/:id/bookings
func HandleWS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	agendaID := ps.ByName("id")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "WebSocket upgrade failed", http.StatusBadRequest)
		return
	}

	mu.Lock()
	subscribers[agendaID] = append(subscribers[agendaID], conn)
	mu.Unlock()

	for {
		// This keeps the connection alive until the client disconnects
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	// Clean up on disconnect
	mu.Lock()
	conns := subscribers[agendaID]
	newList := make([]*websocket.Conn, 0, len(conns))
	for _, c := range conns {
		if c != conn {
			newList = append(newList, c)
		}
	}
	subscribers[agendaID] = newList
	mu.Unlock()

	conn.Close()
}

type wsMessage struct {
	Type     string `json:"type"`
	AgendaID string `json:"agendaId"`
}

// broadcastUpdate tells every subscriber of an agenda to reload its list.
func broadcastUpdate(agendaID string) {
	data, _ := json.Marshal(wsMessage{Type: "bookings-updated", AgendaID: agendaID})
	broadcast(agendaID, data)
}

func broadcast(agendaID string, val []byte) {
	mu.Lock()
	defer mu.Unlock()

	conns := subscribers[agendaID]
	newList := conns[:0]

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, val); err == nil {
			newList = append(newList, conn)
		} else {
			conn.Close()
		}
	}

	subscribers[agendaID] = newList
}
