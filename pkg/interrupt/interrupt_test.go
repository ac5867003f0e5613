package interrupt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRequest(t *testing.T) {
	var order []int
	AddHandler(func() { order = append(order, 1) })
	AddHandler(func() { order = append(order, 2) })
	require.False(t, Requested())
	Request()
	Request()
	select {
	case <-HandlersDone():
	case <-time.After(5 * time.Second):
		t.Fatal("handlers did not run")
	}
	require.True(t, Requested())
	require.Equal(t, []int{2, 1}, order)
	require.Contains(t, GoroutineDump(), "goroutine")
}
