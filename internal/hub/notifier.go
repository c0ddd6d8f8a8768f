package hub

import (
	"time"

	"go.uber.org/zap"
)

const defaultWriteTimeout = 5 * time.Second

// Notifier fans events out to every member of a Registry.
type Notifier struct {
	registry     *Registry
	logger       *zap.Logger
	writeTimeout time.Duration
	onFailure    func()
}

type NotifierOption func(*Notifier)

// WithWriteTimeout bounds how long a single viewer may block a broadcast.
func WithWriteTimeout(d time.Duration) NotifierOption {
	return func(n *Notifier) { n.writeTimeout = d }
}

// WithFailureHook is called once per failed send.
func WithFailureHook(fn func()) NotifierOption {
	return func(n *Notifier) { n.onFailure = fn }
}

func NewNotifier(registry *Registry, logger *zap.Logger, opts ...NotifierOption) *Notifier {
	n := &Notifier{
		registry:     registry,
		logger:       logger,
		writeTimeout: defaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Broadcast sends event once to each member present when the call starts.
// Members whose send fails are removed in one batch and closed. Delivery is
// best-effort: nothing is queued or retried.
func (n *Notifier) Broadcast(event interface{}) {
	clients := n.registry.Snapshot()
	if len(clients) == 0 {
		return
	}

	var dead []*Client
	for _, c := range clients {
		if err := c.Send(event, n.writeTimeout); err != nil {
			n.logger.Debug("dropping viewer after failed send",
				zap.String("client_id", c.ID), zap.Error(err))
			dead = append(dead, c)
			if n.onFailure != nil {
				n.onFailure()
			}
		}
	}
	if len(dead) == 0 {
		return
	}

	n.registry.Unregister(dead...)
	for _, c := range dead {
		_ = c.Close()
	}
	n.logger.Info("pruned dead viewers",
		zap.Int("pruned", len(dead)), zap.Int("remaining", n.registry.Len()))
}
