// Package interrupt runs shutdown handlers when the process is interrupted or
// a shutdown is requested. Handlers run once, most recently added first.
package interrupt

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/Hubmakerlabs/cyan/pkg/slog"
)

var log = slog.GetStd()

type handlerWithSource struct {
	source string
	fn     func()
}

var (
	requested atomic.Bool
	mx        sync.Mutex
	handlers  []handlerWithSource

	// signals is the list of signals that cause the interrupt
	signals = []os.Signal{os.Interrupt, syscall.SIGTERM}

	listening   sync.Once
	requestOnce sync.Once
	shutdown    = make(chan struct{})
	// handlersDone is closed after all handlers have run.
	handlersDone = make(chan struct{})
)

func listener() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, signals...)
	defer signal.Stop(ch)
	select {
	case sig := <-ch:
		log.D.Ln("received interrupt signal", sig)
	case <-shutdown:
		log.D.Ln("received shutdown request")
	}
	requested.Store(true)
	mx.Lock()
	hh := handlers
	handlers = nil
	mx.Unlock()
	log.D.Ln("running interrupt callbacks", len(hh))
	for i := len(hh) - 1; i >= 0; i-- {
		log.T.Ln("running callback", i, hh[i].source)
		hh[i].fn()
	}
	log.D.Ln("interrupt handlers finished")
	close(handlersDone)
}

// AddHandler adds a handler to call when an interrupt or shutdown request is
// received.
func AddHandler(handler func()) {
	_, loc, line, _ := runtime.Caller(1)
	msg := fmt.Sprintf("%s:%d", loc, line)
	log.T.Ln("handler added by:", msg)
	mx.Lock()
	handlers = append(handlers, handlerWithSource{msg, handler})
	mx.Unlock()
	listening.Do(func() { go listener() })
}

// Request programmatically requests a shutdown. Only the first call has any
// effect.
func Request() {
	_, f, l, _ := runtime.Caller(1)
	log.D.Ln("interrupt requested", f, l)
	listening.Do(func() { go listener() })
	requestOnce.Do(func() { close(shutdown) })
}

// Requested returns true if an interrupt has been received or requested.
func Requested() bool { return requested.Load() }

// HandlersDone is closed once the handlers have all run.
func HandlersDone() <-chan struct{} { return handlersDone }

// GoroutineDump returns a string with the current goroutine dump in order to
// show what's going on in case of timeout.
func GoroutineDump() string {
	buf := make([]byte, 1<<18)
	n := runtime.Stack(buf, true)
	return string(buf[:n])
}
