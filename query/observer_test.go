package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-storefront/querykey"
)

func drain(ch <-chan Entry) []Status {
	var out []Status
	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, e.Status)
		default:
			return out
		}
	}
}

func TestObserver_SeesTransitions(t *testing.T) {
	c := newTestClient(t)
	key := querykey.Default.Notifications("u1", 1, 20)

	o := c.Observe(key)
	defer o.Close()
	assert.Equal(t, StatusIdle, o.Current().Status)

	_, err := Fetch(context.Background(), c, key, func(context.Context) (string, error) { return "n", nil })
	require.NoError(t, err)

	assert.Equal(t, []Status{StatusLoading, StatusSuccess}, drain(o.Updates()))
	assert.Equal(t, StatusSuccess, o.Current().Status)

	require.NoError(t, c.Invalidate(context.Background(), querykey.Default.NotificationsAll("u1")))
	e := <-o.Updates()
	assert.True(t, e.Stale)
}

func TestObserver_ErrorTransition(t *testing.T) {
	c := newTestClient(t)
	key := querykey.Default.Orders("u1", 1, 20)
	o := c.Observe(key)
	defer o.Close()

	_, _ = Fetch(context.Background(), c, key, func(context.Context) (string, error) { return "", errors.New("down") })
	assert.Equal(t, []Status{StatusLoading, StatusError}, drain(o.Updates()))
}

func TestObserver_DiscardsAfterClose(t *testing.T) {
	c := newTestClient(t)
	key := querykey.Default.Cart("u1")

	o := c.Observe(key)
	o.Close()
	o.Close()

	_, err := Fetch(context.Background(), c, key, func(context.Context) (string, error) { return "cart", nil })
	require.NoError(t, err)

	_, ok := <-o.Updates()
	assert.False(t, ok)
	assert.Equal(t, StatusSuccess, o.Current().Status)
}

func TestObserver_SlowReaderKeepsLatest(t *testing.T) {
	c := newTestClient(t)
	key := querykey.Default.Product("p1")
	o := c.Observe(key)
	defer o.Close()

	ctx := context.Background()
	for i := 0; i < observerBuffer*2; i++ {
		require.NoError(t, c.Invalidate(ctx, key))
		_, err := Fetch(ctx, c, key, func(context.Context) (int, error) { return i, nil })
		require.NoError(t, err)
	}

	var last Entry
	for len(o.Updates()) > 0 {
		last = <-o.Updates()
	}
	assert.Equal(t, StatusSuccess, last.Status)
	assert.Equal(t, observerBuffer*2-1, last.Data)
}
