// Package stream serves the simulation over websockets: each client gets the
// mesh once, then every frame, and may send grab and playback commands back.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/clothsim/internal/logger"
	"github.com/Faultbox/clothsim/internal/sim"
)

const (
	commandBuffer = 64
	frameBuffer   = 4
	writeTimeout  = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub fans frames out to connected clients and funnels their commands to
// the driver.
type Hub struct {
	path string
	mesh []byte

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
	last    []byte

	cmds   chan sim.Command
	frames chan []byte

	log *zap.Logger
}

// NewHub creates a hub for s serving on path. It must be called on the
// driver goroutine.
func NewHub(s *sim.Sim, path string) (*Hub, error) {
	if path == "" {
		path = "/ws"
	}
	mesh, err := json.Marshal(newMeshMessage(s))
	if err != nil {
		return nil, err
	}
	last, err := json.Marshal(newFrameMessage(s))
	if err != nil {
		return nil, err
	}
	h := &Hub{
		path:    path,
		mesh:    mesh,
		clients: make(map[*websocket.Conn]*sync.Mutex),
		last:    last,
		cmds:    make(chan sim.Command, commandBuffer),
		frames:  make(chan []byte, frameBuffer),
		log:     logger.Named("stream"),
	}
	return h, nil
}

// Commands returns the channel the driver should drain between frames.
func (h *Hub) Commands() <-chan sim.Command { return h.cmds }

// Publish snapshots s and queues it for broadcast. It must be called on the
// driver goroutine. When the broadcaster lags the frame is dropped; the
// snapshot still becomes the one new clients start from.
func (h *Hub) Publish(s *sim.Sim) {
	data, err := json.Marshal(newFrameMessage(s))
	if err != nil {
		h.log.Error("encoding frame", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.last = data
	h.mu.Unlock()

	select {
	case h.frames <- data:
	default:
		h.log.Debug("frame dropped", zap.Int("frame", s.Scene.Frame()))
	}
}

// NumClients returns the number of open connections.
func (h *Hub) NumClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Handler returns an http.Handler serving the websocket endpoint.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(h.path, h.handleWebSocket)
	return mux
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	connMutex := &sync.Mutex{}

	// Register with the connection locked so no frame overtakes the greeting.
	h.mu.Lock()
	h.clients[conn] = connMutex
	connMutex.Lock()
	last := h.last
	h.mu.Unlock()

	err = h.write(conn, h.mesh)
	if err == nil && last != nil {
		err = h.write(conn, last)
	}
	connMutex.Unlock()

	defer h.remove(conn)
	if err != nil {
		h.log.Warn("websocket greeting", zap.Error(err))
		return
	}
	h.log.Info("client connected", zap.String("remote", r.RemoteAddr), zap.Int("clients", h.NumClients()))

	for {
		var cmd sim.Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("websocket read", zap.Error(err))
			}
			break
		}
		select {
		case h.cmds <- cmd:
		default:
			h.log.Warn("command dropped", zap.String("type", string(cmd.Type)))
		}
	}
	h.log.Info("client disconnected", zap.String("remote", r.RemoteAddr))
}

func (h *Hub) write(conn *websocket.Conn, data []byte) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

// Broadcast writes queued frames to every client until ctx is done.
func (h *Hub) Broadcast(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-h.frames:
			h.broadcast(data)
		}
	}
}

func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	var failed []*websocket.Conn
	for client, mutex := range h.clients {
		mutex.Lock()
		err := h.write(client, data)
		mutex.Unlock()
		if err != nil {
			h.log.Debug("websocket write", zap.Error(err))
			client.Close()
			failed = append(failed, client)
		}
	}
	h.mu.RUnlock()

	if len(failed) > 0 {
		h.mu.Lock()
		for _, client := range failed {
			delete(h.clients, client)
		}
		h.mu.Unlock()
	}
}

// ListenAndServe serves the hub on addr and broadcasts until ctx is done.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: h.Handler()}

	go h.Broadcast(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	h.log.Info("serving frames", zap.String("addr", addr), zap.String("path", h.path))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
