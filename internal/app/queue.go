package app

import "errors"

var ErrQueueClosed = errors.New("command queue closed")

// Queue feeds commands from asynchronous drivers (bots, remote patches)
// into a single goroutine so arrival order is execution order. Commands are
// plain closures over the Service; the Service mutex makes direct calls
// safe too, but the queue additionally guarantees ordering across sources.
type Queue struct {
	cmds chan func()
	stop chan struct{}
	done chan struct{}
}

// NewQueue starts the command loop with the given buffer size.
func NewQueue(buffer int) *Queue {
	q := &Queue{
		cmds: make(chan func(), buffer),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go q.loop()
	return q
}

func (q *Queue) loop() {
	defer close(q.done)
	for {
		select {
		case cmd := <-q.cmds:
			cmd()
		case <-q.stop:
			// Drain what was accepted before the close.
			for {
				select {
				case cmd := <-q.cmds:
					cmd()
				default:
					return
				}
			}
		}
	}
}

// Dispatch enqueues a command for execution in arrival order.
func (q *Queue) Dispatch(cmd func()) error {
	select {
	case <-q.stop:
		return ErrQueueClosed
	default:
	}
	select {
	case q.cmds <- cmd:
		return nil
	case <-q.stop:
		return ErrQueueClosed
	}
}

// Close stops the loop after draining accepted commands and waits for it to
// exit.
func (q *Queue) Close() {
	close(q.stop)
	<-q.done
}
