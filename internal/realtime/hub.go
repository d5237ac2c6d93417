package realtime

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// EventType mirrors the row-level change kinds of the store.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Change is one row-level change notification. New and Old carry the row
// after/before the mutation; DELETE events only populate Old.
type Change struct {
	Table string      `json:"table"`
	Event EventType   `json:"event"`
	New   interface{} `json:"new,omitempty"`
	Old   interface{} `json:"old,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsClient struct {
	conn  *websocket.Conn
	table string // "" means all tables
}

type subscriber struct {
	ch    chan Change
	table string
}

// Hub fans row-level change events out to websocket clients and in-process
// subscribers. The store is the only publisher; subscribers are read-only
// consumers, so the active-plates cache has a single writer by construction.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]wsClient
	subs    map[int]subscriber
	nextSub int
	log     *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]wsClient),
		subs:    make(map[int]subscriber),
		log:     log,
	}
}

// Publish delivers a change to every matching consumer. Websocket writes that
// fail evict the client; in-process subscribers that are full drop the event
// rather than block the store's write path.
func (h *Hub) Publish(change Change) {
	data, _ := json.Marshal(change)

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, cl := range h.clients {
		if cl.table != "" && cl.table != change.Table {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}

	for id, sub := range h.subs {
		if sub.table != "" && sub.table != change.Table {
			continue
		}
		select {
		case sub.ch <- change:
		default:
			h.log.WithFields(logrus.Fields{"subscriber": id, "table": change.Table}).
				Warn("dropping change event for slow subscriber")
		}
	}
}

// Subscribe registers an in-process consumer for one table ("" for all).
// The returned cancel func must be called to release the subscription.
func (h *Hub) Subscribe(table string) (<-chan Change, func()) {
	h.mu.Lock()
	id := h.nextSub
	h.nextSub++
	sub := subscriber{ch: make(chan Change, 64), table: table}
	h.subs[id] = sub
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if s, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(s.ch)
		}
		h.mu.Unlock()
	}
	return sub.ch, cancel
}

// HandleWebSocket upgrades the connection and keeps it registered until the
// peer goes away. ?table= narrows the feed to one table.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade error")
		return
	}

	h.mu.Lock()
	h.clients[conn] = wsClient{conn: conn, table: c.Query("table")}
	h.mu.Unlock()

	go h.readPump(conn)
}

func (h *Hub) readPump(conn *websocket.Conn) {
	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// ClientCount reports connected websocket clients, for the health endpoint.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
