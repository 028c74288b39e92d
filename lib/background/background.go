// Package background runs recurring work off the caller's goroutine.
package background

import (
	"sync"
	"time"
)

// Loop calls a function once per interval until stopped.
// Calls never overlap and Stop only returns once no call is in flight,
// so nothing runs after Stop.
type Loop struct {
	done     chan struct{}
	exited   chan struct{}
	stopOnce sync.Once
}

func Repeat(do func(), interval time.Duration) *Loop {
	l := &Loop{
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	t := time.NewTicker(interval)

	go func() {
		defer close(l.exited)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				// Stop may have raced with the tick.
				select {
				case <-l.done:
					return
				default:
				}
				do()
			case <-l.done:
				return
			}
		}
	}()

	return l
}

// Stop cancels the loop and waits for an in-flight call to return.
// It must not be called from inside the loop's own function.
func (l *Loop) Stop() {
	if l == nil {
		return
	}
	l.stopOnce.Do(func() {
		close(l.done)
	})
	<-l.exited
}
