package query

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Mutation is a write with a declared invalidation set.
type Mutation[In, Out any] struct {
	Name string
	Fn   func(ctx context.Context, in In) (Out, error)
	// Invalidates returns the key prefixes the write can have changed. It runs
	// after a successful Fn and before any invalidation, so it can read
	// snapshots of the entries about to go stale.
	Invalidates func(ctx context.Context, in In, out Out) []string
}

// Run calls Fn once and, only on success, invalidates the declared prefixes.
func (m Mutation[In, Out]) Run(ctx context.Context, c *Client, in In) (Out, error) {
	started := c.now()
	out, err := m.Fn(ctx, in)
	if err != nil {
		c.log.WithField("mutation", m.Name).WithError(err).Debug("mutation failed")
		c.bus.Publish(TopicMutation, MutationEvent{Name: m.Name, Duration: time.Since(started), Err: err})
		return out, err
	}

	var prefixes []string
	if m.Invalidates != nil {
		prefixes = m.Invalidates(ctx, in, out)
	}

	// the write already happened upstream, so an invalidation failure is only logged
	if ierr := c.Invalidate(context.WithoutCancel(ctx), prefixes...); ierr != nil {
		c.log.WithField("mutation", m.Name).WithError(ierr).Warn("mutation invalidation failed")
	}

	c.log.WithFields(logrus.Fields{"mutation": m.Name, "invalidated": prefixes}).Debug("mutation succeeded")
	c.bus.Publish(TopicMutation, MutationEvent{Name: m.Name, Duration: time.Since(started), Invalidated: prefixes})
	return out, nil
}
