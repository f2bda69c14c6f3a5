package query

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

const observerBuffer = 8

// Observer follows the entry of one key. Updates delivers every transition
// while the observer is open; a slow reader only loses intermediate states,
// never the latest one.
type Observer struct {
	client *Client
	key    string
	id     uint64

	mu      sync.Mutex
	closed  bool
	updates chan Entry
}

// Observe starts following key.
func (c *Client) Observe(key string) *Observer {
	o := &Observer{
		client:  c,
		key:     key,
		id:      c.nextID.Add(1),
		updates: make(chan Entry, observerBuffer),
	}
	set, _ := c.observers.LoadOrCompute(key, func() *xsync.MapOf[uint64, *Observer] {
		return xsync.NewMapOf[uint64, *Observer]()
	})
	set.Store(o.id, o)
	return o
}

// Key returns the observed key.
func (o *Observer) Key() string { return o.key }

// Current returns the entry as it is now.
func (o *Observer) Current() Entry { return o.client.Entry(o.key) }

// Updates returns the transition stream. It is closed by Close.
func (o *Observer) Updates() <-chan Entry { return o.updates }

// Close stops delivery. Transitions after Close are discarded.
func (o *Observer) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	close(o.updates)

	if set, ok := o.client.observers.Load(o.key); ok {
		set.Delete(o.id)
	}
}

func (o *Observer) deliver(e Entry) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	for {
		select {
		case o.updates <- e:
			return
		default:
		}
		// full: drop the oldest pending transition
		select {
		case <-o.updates:
		default:
		}
	}
}

func (c *Client) notify(key string, e Entry) {
	set, ok := c.observers.Load(key)
	if !ok {
		return
	}
	set.Range(func(_ uint64, o *Observer) bool {
		o.deliver(e)
		return true
	})
}
