package net

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"NodeBoard/internal/state"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Scheme prefixes share links, e.g. nodeboard://192.168.1.4:8888.
	Scheme = "nodeboard://"
	// Path is where the host serves the board socket.
	Path = "/board"

	writeWait = 5 * time.Second
)

// Peer is one end of a share connection. A peer that is still joining
// queues what it is sent until its snapshot has gone out.
type Peer struct {
	conn    *websocket.Conn
	mu      sync.Mutex
	joining bool
	pending []Message
}

// Send writes a message. Writes are serialized per peer.
func (p *Peer) Send(msg Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.joining {
		p.pending = append(p.pending, msg)
		return nil
	}
	return p.writeLocked(msg)
}

// welcome sends the snapshot, then everything queued while it was taken.
func (p *Peer) welcome(snapshot *Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.joining = false
	pending := p.pending
	p.pending = nil
	if snapshot != nil {
		if err := p.writeLocked(*snapshot); err != nil {
			return err
		}
	}
	for _, msg := range pending {
		if err := p.writeLocked(msg); err != nil {
			return err
		}
	}
	return nil
}

func (p *Peer) writeLocked(msg Message) error {
	_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return p.conn.WriteJSON(msg)
}

func (p *Peer) Addr() string { return p.conn.RemoteAddr().String() }

// Hub is run by the HOST. It hands each joining peer the current board,
// applies what peers send and relays it to everyone else.
type Hub struct {
	peers    map[*Peer]struct{}
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	log      *zap.Logger

	// Snapshot returns the board sent to a joining peer.
	Snapshot func() state.Snapshot
	// OnOp receives every op a peer sends, before it is relayed.
	OnOp func(state.Op)
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		peers: make(map[*Peer]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: log.Named("hub"),
	}
}

func (h *Hub) add(p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.peers[p] = struct{}{}
	h.log.Info("peer connected", zap.String("addr", p.Addr()))
}

func (h *Hub) remove(p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.peers, p)
	h.log.Info("peer disconnected", zap.String("addr", p.Addr()))
}

// Len returns the number of connected peers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Broadcast sends msg to every peer except exclude, which may be nil.
func (h *Hub) Broadcast(msg Message, exclude *Peer) {
	h.mu.RLock()
	peers := make([]*Peer, 0, len(h.peers))
	for p := range h.peers {
		if p != exclude {
			peers = append(peers, p)
		}
	}
	h.mu.RUnlock()

	for _, p := range peers {
		if err := p.Send(msg); err != nil {
			h.log.Warn("send failed", zap.String("addr", p.Addr()), zap.Error(err))
		}
	}
}

// BroadcastOp relays a local board op to all peers.
func (h *Hub) BroadcastOp(op state.Op) {
	h.Broadcast(opMessage(op), nil)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", zap.String("addr", r.RemoteAddr), zap.Error(err))
		return
	}
	peer := &Peer{conn: conn, joining: true}
	defer conn.Close()

	// Register before taking the snapshot: any change made meanwhile is
	// queued on the peer and sent right after it.
	h.add(peer)
	defer h.remove(peer)

	var welcome *Message
	if h.Snapshot != nil {
		snap := h.Snapshot()
		welcome = &Message{Type: MsgSnapshot, Snapshot: &snap}
	}
	if err := peer.welcome(welcome); err != nil {
		h.log.Warn("snapshot send failed", zap.String("addr", peer.Addr()), zap.Error(err))
		return
	}

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("read ended", zap.String("addr", peer.Addr()), zap.Error(err))
			}
			return
		}
		if msg.Type != MsgOp || msg.Op == nil {
			h.log.Warn("ignoring message", zap.String("type", string(msg.Type)), zap.String("addr", peer.Addr()))
			continue
		}
		h.log.Debug("op received", zap.String("op", string(msg.Op.Type)), zap.String("addr", peer.Addr()))
		if h.OnOp != nil {
			h.OnOp(*msg.Op)
		}
		h.Broadcast(msg, peer)
	}
}

// Listen binds the host port, so a taken port is reported before the
// board is advertised.
func Listen(port int) (net.Listener, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", port, err)
	}
	return ln, nil
}

// Serve serves the hub on ln until ctx is cancelled.
func (h *Hub) Serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle(Path, h)
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	h.log.Info("host listening", zap.String("addr", ln.Addr().String()))
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve board on %s: %w", ln.Addr(), err)
	}
	return nil
}

// Client is a joiner's connection to a host.
type Client struct {
	peer *Peer
	log  *zap.Logger
}

// Dial connects to addr, given as host:port or as a share link.
func Dial(ctx context.Context, addr string, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	url := "ws://" + TrimLink(addr) + Path
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Client{peer: &Peer{conn: conn}, log: log.Named("client")}, nil
}

// LocalAddr identifies this client to the host.
func (c *Client) LocalAddr() string { return c.peer.conn.LocalAddr().String() }

// SendOp forwards a local board op to the host.
func (c *Client) SendOp(op state.Op) {
	if err := c.peer.Send(opMessage(op)); err != nil {
		c.log.Warn("send op failed", zap.String("op", string(op.Type)), zap.Error(err))
	}
}

// Listen delivers messages from the host until the connection closes or
// ctx is cancelled.
func (c *Client) Listen(ctx context.Context, handle func(Message)) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = c.peer.conn.Close()
		case <-done:
		}
	}()
	for {
		var msg Message
		if err := c.peer.conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read from host: %w", err)
		}
		handle(msg)
	}
}

func (c *Client) Close() error {
	_ = c.peer.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	return c.peer.conn.Close()
}

// Link builds the share link for a host address.
func Link(ip string, port int) string {
	return fmt.Sprintf("%s%s:%d", Scheme, ip, port)
}

// TrimLink strips the scheme and trailing slash from a share link.
func TrimLink(link string) string {
	link = strings.TrimPrefix(link, Scheme)
	return strings.TrimSuffix(link, "/")
}
