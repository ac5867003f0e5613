package relay

import (
	"github.com/Hubmakerlabs/cyan/pkg/context"
)

// Task is an Open running in its own goroutine.
type Task struct {
	Relay *T
	done  chan struct{}
	err   error
}

// Start opens r in the background.
func Start(c context.T, r *T) (t *Task) {
	t = &Task{Relay: r, done: make(chan struct{})}
	go func() {
		defer close(t.done)
		t.err = r.Open(c)
	}()
	return
}

// Done is closed when the Open has returned.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the Open has returned and gives its result.
func (t *Task) Wait() error {
	<-t.done
	return t.err
}

// WaitAll waits for every task and returns the relays that opened and the
// errors of those that did not.
func WaitAll(tasks []*Task) (opened []*T, errs []error) {
	for _, t := range tasks {
		if err := t.Wait(); err != nil {
			errs = append(errs, err)
			continue
		}
		opened = append(opened, t.Relay)
	}
	return
}
