package resource

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// defaultUploadWorkers bounds the background upload pool. Texture decodes are
// CPU-bound but uploads serialize on the queue, so a small pool is enough.
const defaultUploadWorkers = 2

// UploadTicket is the completion fence for a background upload. The texture
// handle it belongs to stays pending until the ticket completes; binding
// groups referencing a pending texture are refused, so waiting on the ticket
// is the ordering point between upload and first use.
type UploadTicket struct {
	done chan struct{}

	mu  sync.Mutex
	err error
}

// Done returns a channel closed when the upload has finished (successfully
// or not). Select on it to overlap other work with the upload.
//
// Returns:
//   - <-chan struct{}: closed on completion
func (t *UploadTicket) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the upload has finished and returns its error, if any.
//
// Returns:
//   - error: the upload error, or nil on success
func (t *UploadTicket) Wait() error {
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Err returns the upload error without blocking. Only meaningful after Done
// is closed.
//
// Returns:
//   - error: the upload error, or nil
func (t *UploadTicket) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// uploadQueue wraps the shared dynamic worker pool for background uploads.
type uploadQueue struct {
	pool worker.DynamicWorkerPool
}

// newUploadQueue creates the upload pool. Queue size of 256 accommodates
// batch texture loads with headroom; idle workers wind down after a second.
func newUploadQueue(workers int) *uploadQueue {
	return &uploadQueue{
		pool: worker.NewDynamicWorkerPool(workers, 256, 1*time.Second),
	}
}

// submit schedules fn on the pool and returns its completion ticket.
func (q *uploadQueue) submit(id int, fn func() error) *UploadTicket {
	ticket := &UploadTicket{done: make(chan struct{})}
	q.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			err := fn()
			ticket.mu.Lock()
			ticket.err = err
			ticket.mu.Unlock()
			close(ticket.done)
			return nil, err
		},
	})
	return ticket
}
