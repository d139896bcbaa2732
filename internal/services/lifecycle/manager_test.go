package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestShutdownRunsHooksInReverseOrder(t *testing.T) {
	m := New(time.Second, nil)
	var order []string

	m.Register("postgres", func(context.Context) error {
		order = append(order, "postgres")
		return nil
	})
	m.RegisterCloser("bolt", closerFunc(func() error {
		order = append(order, "bolt")
		return errors.New("file locked")
	}))
	m.RegisterStop("monitor", func() { order = append(order, "monitor") })
	m.Register("nil", nil)

	err := m.Shutdown(context.Background())
	assert.EqualError(t, err, "file locked")
	assert.Equal(t, []string{"monitor", "bolt", "postgres"}, order)

	assert.NoError(t, m.Shutdown(context.Background()))
}

func TestShutdownStopsAtDeadline(t *testing.T) {
	m := New(time.Second, nil)
	called := false
	m.Register("late", func(context.Context) error {
		called = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.Shutdown(ctx), context.Canceled)
	assert.False(t, called)
}
