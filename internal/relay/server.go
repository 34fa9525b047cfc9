package relay

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/marionette/internal/protocol"
)

// Options are the websocket limits and keepalive timings.
type Options struct {
	ReadLimit    int64
	PingInterval time.Duration
	PongWait     time.Duration
	WriteWait    time.Duration
	SendBuffer   int
}

func DefaultOptions() Options {
	return Options{
		ReadLimit:    1 << 20, // 1MB
		PingInterval: 25 * time.Second,
		PongWait:     60 * time.Second,
		WriteWait:    10 * time.Second,
		SendBuffer:   256,
	}
}

// Server upgrades HTTP requests to websocket clients of a Hub.
type Server struct {
	hub      *Hub
	opts     Options
	upgrader websocket.Upgrader
	log      *log.Logger
}

func NewServer(h *Hub, opts Options) *Server {
	def := DefaultOptions()
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = def.ReadLimit
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = def.PingInterval
	}
	if opts.PongWait <= 0 {
		opts.PongWait = def.PongWait
	}
	if opts.WriteWait <= 0 {
		opts.WriteWait = def.WriteWait
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = def.SendBuffer
	}
	return &Server{
		hub:  h,
		opts: opts,
		upgrader: websocket.Upgrader{
			// Phones load the page from other hosts on the LAN.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log.Default(),
	}
}

func (s *Server) SetLogger(l *log.Logger) { s.log = l }

// Handler serves the websocket endpoint at /ws and a JSON status at /status.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.ServeWS)
	mux.HandleFunc("/status", s.serveStatus)
	return mux
}

func (s *Server) serveStatus(w http.ResponseWriter, r *http.Request) {
	reply := make(chan HubStatus, 1)
	if err := s.hub.Post(Status{Reply: reply}); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	st, err := await(s.hub, reply)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(st)
}

func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("upgrade:", err)
		return
	}

	ws.SetReadLimit(s.opts.ReadLimit)
	_ = ws.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	})

	c := newWSConn(ws, s.opts)
	go c.writePump()
	defer c.Close()

	role, err := s.readRole(ws)
	if err != nil {
		s.log.Println("handshake:", err)
		return
	}

	reply := make(chan Registered, 1)
	if err := s.hub.Post(Register{Conn: c, Role: role, Reply: reply}); err != nil {
		return
	}
	reg, err := await(s.hub, reply)
	if err != nil {
		return
	}
	if reg.Err != nil {
		s.log.Println("register:", reg.Err)
		return
	}
	defer s.hub.Post(Unregister{ID: reg.ID})

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Printf("read %s: %v", reg.ID, err)
			}
			return
		}
		if role != protocol.RolePhone {
			continue
		}
		m, err := decodeMotion(msg)
		if err != nil {
			s.log.Printf("bad message from %s: %v", reg.ID, err)
			continue
		}
		if err := s.hub.Post(Forward{ID: reg.ID, Motion: m}); err != nil {
			return
		}
	}
}

func (s *Server) readRole(ws *websocket.Conn) (string, error) {
	_, msg, err := ws.ReadMessage()
	if err != nil {
		return "", err
	}
	env, err := protocol.DecodeEnvelope(msg)
	if err != nil {
		return "", err
	}
	if env.T != protocol.MsgDevice {
		return "", fmt.Errorf("expected %q first, got %q", protocol.MsgDevice, env.T)
	}
	d, err := protocol.DecodePayload[protocol.Device](env)
	if err != nil {
		return "", err
	}
	return d.Role, nil
}

func decodeMotion(b []byte) (protocol.Motion, error) {
	env, err := protocol.DecodeEnvelope(b)
	if err != nil {
		return protocol.Motion{}, err
	}
	if env.T != protocol.MsgMotion {
		return protocol.Motion{}, fmt.Errorf("unexpected message type %q", env.T)
	}
	return protocol.DecodePayload[protocol.Motion](env)
}

// wsConn queues outgoing messages for a single writer goroutine, which also
// sends the keepalive pings.
type wsConn struct {
	ws   *websocket.Conn
	opts Options
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newWSConn(ws *websocket.Conn, opts Options) *wsConn {
	return &wsConn{
		ws:   ws,
		opts: opts,
		send: make(chan []byte, opts.SendBuffer),
		done: make(chan struct{}),
	}
}

func (c *wsConn) Send(b []byte) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.send <- b:
		return nil
	default:
		return ErrSlowConsumer
	}
}

func (c *wsConn) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

func (c *wsConn) writePump() {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case b := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.opts.WriteWait))
			return
		}
	}
}
