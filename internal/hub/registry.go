package hub

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Conn is the part of a websocket connection the hub needs.
type Conn interface {
	WriteJSON(v interface{}) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is one registered live-update channel. Writes to the underlying
// connection are serialized because websocket connections allow only one
// concurrent writer.
type Client struct {
	ID   string
	conn Conn
	mu   sync.Mutex
}

// Send writes v as a JSON text frame, giving up after timeout.
func (c *Client) Send(v interface{}, timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if timeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}
	}
	return c.conn.WriteJSON(v)
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Registry is the set of open live-update channels.
type Registry struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	onSize  func(n int)
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[*Client]struct{})}
}

// OnSizeChange installs a callback invoked with the member count after every
// membership change. It must be set before the registry is shared, and runs
// under the registry lock so it must not call back into the registry.
func (r *Registry) OnSizeChange(fn func(n int)) {
	r.onSize = fn
}

// Register adds conn and returns its handle.
func (r *Registry) Register(conn Conn) *Client {
	c := &Client{ID: uuid.NewString(), conn: conn}

	r.mu.Lock()
	r.clients[c] = struct{}{}
	r.notifySize()
	r.mu.Unlock()

	return c
}

// Unregister removes the given handles. Unknown handles are ignored.
func (r *Registry) Unregister(clients ...*Client) {
	if len(clients) == 0 {
		return
	}

	r.mu.Lock()
	for _, c := range clients {
		delete(r.clients, c)
	}
	r.notifySize()
	r.mu.Unlock()
}

// Snapshot returns the current members. The slice is owned by the caller.
func (r *Registry) Snapshot() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		out = append(out, c)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

func (r *Registry) Contains(c *Client) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[c]
	return ok
}

// notifySize must be called with r.mu held so reported counts arrive in
// the order the changes were made.
func (r *Registry) notifySize() {
	if r.onSize != nil {
		r.onSize(len(r.clients))
	}
}

// CloseAll removes and closes every member. Used on shutdown.
func (r *Registry) CloseAll() {
	clients := r.Snapshot()
	r.Unregister(clients...)
	for _, c := range clients {
		_ = c.Close()
	}
}
