package shutdown

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManager_ReverseOrderOnce(t *testing.T) {
	m := NewManager()
	var order []string
	m.OnShutdown("journal", func(context.Context) error { order = append(order, "journal"); return nil })
	m.OnShutdown("broken", func(context.Context) error { order = append(order, "broken"); return errors.New("boom") })
	m.OnShutdown("http", func(context.Context) error { order = append(order, "http"); return nil })

	m.Shutdown(context.Background())
	m.Shutdown(context.Background())

	assert.Equal(t, []string{"http", "broken", "journal"}, order)
}
