// Package transport is the visualization boundary spec.md §6 calls
// render(): it fans a MusicResult's JSON export out to connected piano-
// roll clients over a websocket. Shaped after the teacher's
// midi/registry_device.go DeviceRegistry — a mutex-guarded registry of
// live connections plus a Command method for admin-style introspection —
// repointed from MIDI device selection at transport management, since
// spec.md's Non-goals exclude real MIDI I/O entirely.
package transport

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mzacho/musicdsl/notify"
)

// Hub accepts websocket connections on /ws and broadcasts every
// Broadcast payload to all of them. It implements control.Broadcaster.
// Each connection gets a uuid-tagged id for diagnostics, the same
// request-correlation idiom the pack's magda-api middleware applies to
// incoming HTTP requests.
type Hub struct {
	mutex    *sync.RWMutex
	clients  map[string]*websocket.Conn
	addr     string
	upgrader websocket.Upgrader
}

func NewHub(addr string) *Hub {
	return &Hub{
		mutex:   new(sync.RWMutex),
		clients: map[string]*websocket.Conn{},
		addr:    addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Hub) Addr() string { return h.addr }

// HandleWS upgrades an incoming HTTP request to a websocket connection
// and registers it for broadcast.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		notify.Print(notify.Error(err))
		return
	}
	id := uuid.New().String()
	h.mutex.Lock()
	h.clients[id] = conn
	h.mutex.Unlock()
	notify.Debugf("transport.hub connect id=%s", id)
	go h.drain(id, conn)
}

// drain discards inbound frames (the protocol is render-only, output
// never flows back from the visualizer) until the connection closes.
func (h *Hub) drain(id string, conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.mutex.Lock()
	delete(h.clients, id)
	h.mutex.Unlock()
	conn.Close()
	notify.Debugf("transport.hub disconnect id=%s", id)
}

// Broadcast implements control.Broadcaster: sends payload — the JSON
// export of a MusicResult (core/json.go) — to every connected client.
func (h *Hub) Broadcast(payload []byte) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	for id, c := range h.clients {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			notify.Debugf("transport.hub write failed id=%s: %v", id, err)
		}
	}
}

// Command mirrors the teacher's DeviceRegistry.Command admin idiom,
// repointed at transport introspection instead of MIDI device selection.
func (h *Hub) Command(args []string) notify.Message {
	if len(args) == 0 {
		h.mutex.RLock()
		n := len(h.clients)
		h.mutex.RUnlock()
		return notify.Infof("listen address %s, %d client(s) connected", h.addr, n)
	}
	switch args[0] {
	case "addr":
		if len(args) != 2 {
			return notify.Warning("missing address")
		}
		h.addr = args[1]
		return notify.Infof("listen address set to %s", h.addr)
	default:
		return notify.Warningf("unknown transport command: %s", args[0])
	}
}

// ListenAndServe blocks, serving the websocket endpoint at h.Addr().
func (h *Hub) ListenAndServe() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleWS)
	notify.Debugf("transport.hub listening on %s", h.addr)
	return http.ListenAndServe(h.addr, mux)
}
