package worker

// lane is the single-goroutine FIFO serialization point spec.md §5
// requires: every mutation of worker state, the document manager, or the
// diagnostic cache happens only on this goroutine. No mutex guards worker
// state because the lane itself is the lock.
type lane struct {
	tasks chan func()
	done  chan struct{}
}

func newLane(capacity int) *lane {
	l := &lane{
		tasks: make(chan func(), capacity),
		done:  make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *lane) run() {
	for task := range l.tasks {
		task()
	}
	close(l.done)
}

// post enqueues fn to run on the lane, returning immediately. Used for
// fire-and-forget work (notification handling, async-callback re-posting).
func (l *lane) post(fn func()) {
	l.tasks <- fn
}

// call enqueues fn and blocks the caller until it has run on the lane,
// returning fn's result. Used by every public request/response operation
// so the caller observes a consistent snapshot of worker state.
func call[T any](l *lane, fn func() T) T {
	result := make(chan T, 1)
	l.tasks <- func() {
		result <- fn()
	}
	return <-result
}

// close drains remaining tasks and stops the lane goroutine. Safe to call
// once, on worker shutdown.
func (l *lane) close() {
	close(l.tasks)
	<-l.done
}
